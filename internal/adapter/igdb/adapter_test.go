package igdb

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"GameIngest/internal/config"
	"GameIngest/internal/interfaces"
	"GameIngest/internal/model"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *Adapter {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger, _ := test.NewNullLogger()
	return NewIGDBAdapter(&config.ProviderConfig{
		BaseURL:  srv.URL,
		ClientID: "client-id",
		Timeout:  5,
	}, logger)
}

func TestAdapter_FindGameBySlug(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v4/games", r.URL.Path)
		assert.Equal(t, "client-id", r.Header.Get("Client-ID"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `where slug = "pokemon-red";`)
		assert.Contains(t, string(body), "limit 1;")

		_, _ = w.Write([]byte(`[{"id":1561,"name":"Pokémon Red","slug":"pokemon-red","rating":81.5,"cover":77,"first_release_date":825465600,"summary":"Catch them all"}]`))
	})

	game, err := a.FindGameBySlug(context.Background(), "tok", "pokemon-red")
	require.NoError(t, err)
	assert.Equal(t, uint64(1561), game.ID)
	assert.Equal(t, "Pokémon Red", game.Name)
	assert.Equal(t, 81.5, game.Rating)
	assert.Equal(t, uint64(77), game.Cover)
	assert.Equal(t, 1996, game.ReleaseYear())
	assert.Equal(t, "Catch them all", game.Summary)
}

func TestAdapter_FindGameBySlug_EmptyIsNotFound(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	game, err := a.FindGameBySlug(context.Background(), "tok", "missing-game")
	assert.Nil(t, game)
	assert.ErrorIs(t, err, interfaces.ErrGameNotFound)
}

func TestAdapter_FindGameBySlug_HTTPError(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"Too Many Requests"}`))
	})

	_, err := a.FindGameBySlug(context.Background(), "tok", "pokemon-red")
	require.Error(t, err)
	assert.NotErrorIs(t, err, interfaces.ErrGameNotFound)
	assert.Contains(t, err.Error(), "429")
}

func TestAdapter_FindGameBySlug_EscapesQuotes(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `where slug = "bad\"slug";`)
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := a.FindGameBySlug(context.Background(), "tok", `bad"slug`)
	assert.ErrorIs(t, err, interfaces.ErrGameNotFound)
}

func TestAdapter_FindCoverByID(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v4/covers", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "where id = 77;")
		_, _ = w.Write([]byte(`[{"id":77,"image_id":"co1abc"}]`))
	})

	cover, err := a.FindCoverByID(context.Background(), "tok", 77)
	require.NoError(t, err)
	assert.Equal(t, "co1abc", cover.ImageID)
	assert.Equal(t, DefaultImageBaseURL+"/co1abc", a.CoverURL(cover))
}

func TestAdapter_FindCoverByID_NoCover(t *testing.T) {
	called := false
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := a.FindCoverByID(context.Background(), "tok", 0)
	assert.ErrorIs(t, err, interfaces.ErrCoverNotFound)
	assert.False(t, called)

	_, err = a.FindCoverByID(context.Background(), "tok", 5)
	assert.ErrorIs(t, err, interfaces.ErrCoverNotFound)
	assert.True(t, called)
}

func TestAdapter_CoverURL(t *testing.T) {
	logger, _ := test.NewNullLogger()
	a := NewIGDBAdapter(&config.ProviderConfig{ImageBaseURL: "https://cdn.example/covers/"}, logger)

	assert.Equal(t, "https://cdn.example/covers/xyz", a.CoverURL(&model.CoverRecord{ImageID: "xyz"}))
	assert.Empty(t, a.CoverURL(nil))
}

func TestTwitchTokenFetcher_FetchToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "id", r.URL.Query().Get("client_id"))
		assert.Equal(t, "secret", r.URL.Query().Get("client_secret"))
		assert.Equal(t, "client_credentials", r.URL.Query().Get("grant_type"))
		_, _ = w.Write([]byte(`{"access_token":"twitch-abc","expires_in":5000000,"token_type":"bearer"}`))
	}))
	defer srv.Close()

	logger, _ := test.NewNullLogger()
	f := NewTwitchTokenFetcher(&config.ProviderConfig{OAuthURL: srv.URL, ClientID: "id", ClientSecret: "secret"}, logger)

	tok, err := f.FetchToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, config.ProviderCatalog, f.Provider())
	assert.Equal(t, "twitch-abc", tok.AccessToken)
	assert.Equal(t, int64(5000000), tok.ExpiresIn)
}

func TestTwitchTokenFetcher_Rejects(t *testing.T) {
	t.Run("non-200", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"status":400,"message":"invalid client"}`))
		}))
		defer srv.Close()
		logger, _ := test.NewNullLogger()
		f := NewTwitchTokenFetcher(&config.ProviderConfig{OAuthURL: srv.URL}, logger)

		_, err := f.FetchToken(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "400")
	})

	t.Run("empty token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"expires_in":100}`))
		}))
		defer srv.Close()
		logger, _ := test.NewNullLogger()
		f := NewTwitchTokenFetcher(&config.ProviderConfig{OAuthURL: srv.URL}, logger)

		_, err := f.FetchToken(context.Background())
		assert.Error(t, err)
	})
}
