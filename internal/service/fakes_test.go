package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"GameIngest/internal/interfaces"
	"GameIngest/internal/model"
	"GameIngest/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const releasedIn1996 = 822873600

func nullLogger() *logrus.Logger {
	l, _ := test.NewNullLogger()
	return l
}

// fakeCatalog 对任意 slug 返回一条记录，notFound 中的 slug 返回 ErrGameNotFound
type fakeCatalog struct {
	mu       sync.Mutex
	notFound map[string]bool
	gameErr  error
	coverErr error
	slugs    []string
	tokens   []string
}

func (c *fakeCatalog) GetName() string { return "fake" }

func (c *fakeCatalog) FindGameBySlug(ctx context.Context, accessToken, slug string) (*model.CatalogGameRecord, error) {
	c.mu.Lock()
	c.slugs = append(c.slugs, slug)
	c.tokens = append(c.tokens, accessToken)
	c.mu.Unlock()

	if c.gameErr != nil {
		return nil, c.gameErr
	}
	if c.notFound[slug] {
		return nil, interfaces.ErrGameNotFound
	}
	return &model.CatalogGameRecord{
		ID:               uint64(len(slug)),
		Name:             strings.ToUpper(slug),
		Slug:             slug,
		Rating:           80.25,
		Cover:            42,
		FirstReleaseDate: releasedIn1996,
		Summary:          "summary of " + slug,
	}, nil
}

func (c *fakeCatalog) FindCoverByID(ctx context.Context, accessToken string, coverID uint64) (*model.CoverRecord, error) {
	if c.coverErr != nil {
		return nil, c.coverErr
	}
	return &model.CoverRecord{ID: coverID, ImageID: fmt.Sprintf("co%d", coverID)}, nil
}

func (c *fakeCatalog) CoverURL(cover *model.CoverRecord) string {
	if cover == nil {
		return ""
	}
	return "https://img.test/" + cover.ImageID
}

type fakePrice struct {
	quote *model.PriceQuote
	err   error
}

func (p *fakePrice) GetName() string { return "fake-price" }

func (p *fakePrice) ResolvePrice(ctx context.Context, accessToken, searchKey string) (*model.PriceQuote, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.quote == nil {
		return nil, interfaces.ErrPriceUnavailable
	}
	q := *p.quote
	q.SearchKey = searchKey
	return &q, nil
}

func fixedQuote() *model.PriceQuote {
	return &model.PriceQuote{Amount: decimal.RequireFromString("24.90"), Currency: "EUR", Source: "fake"}
}

// fakeRepo 记录写入单元，不落库
type fakeRepo struct {
	mu         sync.Mutex
	backlog    []*model.SearchDemand
	backlogErr error
	persistErr error
	markErr    error
	units      []*model.PersistenceUnit
	marked     [][]uint64
	runs       []*model.IngestRun
}

func (r *fakeRepo) FetchBacklog(ctx context.Context, limit int) ([]*model.SearchDemand, error) {
	if r.backlogErr != nil {
		return nil, r.backlogErr
	}
	if len(r.backlog) > limit {
		return r.backlog[:limit], nil
	}
	return r.backlog, nil
}

func (r *fakeRepo) PersistEnriched(ctx context.Context, unit *model.PersistenceUnit) (*model.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.persistErr != nil {
		return nil, r.persistErr
	}
	r.units = append(r.units, unit)
	game := unit.Game
	game.ID = uint64(len(r.units))
	return &game, nil
}

func (r *fakeRepo) MarkProcessed(ctx context.Context, ids []uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.markErr != nil {
		return r.markErr
	}
	r.marked = append(r.marked, append([]uint64(nil), ids...))
	return nil
}

func (r *fakeRepo) SaveRun(ctx context.Context, run *model.IngestRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	return nil
}

// fakeTokens 计数令牌请求
type fakeTokens struct {
	mu    sync.Mutex
	calls map[string]int
	err   map[string]error
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{calls: map[string]int{}, err: map[string]error{}}
}

func (t *fakeTokens) Token(ctx context.Context, provider string) (model.CachedToken, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls[provider]++
	if err := t.err[provider]; err != nil {
		return model.CachedToken{}, err
	}
	return model.CachedToken{Provider: provider, AccessToken: provider + "-token"}, nil
}

func (t *fakeTokens) total() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, c := range t.calls {
		n += c
	}
	return n
}

// newTestDB 内存 sqlite，迁移全部表并写入参考数据
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.AllModels()...))
	require.NoError(t, repository.NewReferenceRepository(db).SeedReferenceData(context.Background()))
	return db
}

func demands(n int, count7d int, keyFormat string) []*model.SearchDemand {
	out := make([]*model.SearchDemand, 0, n)
	for i := 1; i <= n; i++ {
		key := fmt.Sprintf(keyFormat, i)
		out = append(out, &model.SearchDemand{
			ID:        uint64(i),
			RawQuery:  strings.ReplaceAll(key, "-", " "),
			SearchKey: key,
			Count7d:   count7d,
		})
	}
	return out
}

var errBoom = errors.New("boom")
