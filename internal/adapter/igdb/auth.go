package igdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"GameIngest/internal/config"
	"GameIngest/internal/interfaces"
	"GameIngest/internal/model"
	"GameIngest/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// TwitchTokenFetcher IGDB 使用 Twitch 的 client_credentials 授权
type TwitchTokenFetcher struct {
	cfg        *config.ProviderConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

var _ interfaces.TokenFetcher = (*TwitchTokenFetcher)(nil)

func NewTwitchTokenFetcher(cfg *config.ProviderConfig, logger *logrus.Logger) *TwitchTokenFetcher {
	return &TwitchTokenFetcher{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
	}
}

func (f *TwitchTokenFetcher) Provider() string {
	return config.ProviderCatalog
}

// FetchToken POST {oauth_url}?client_id=..&client_secret=..&grant_type=client_credentials
func (f *TwitchTokenFetcher) FetchToken(ctx context.Context) (*model.TokenResponse, error) {
	q := url.Values{}
	q.Set("client_id", f.cfg.ClientID)
	q.Set("client_secret", f.cfg.ClientSecret)
	q.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.OAuthURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("构建Twitch授权请求失败: %w", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求Twitch授权失败: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			f.logger.Errorf("关闭Twitch响应体失败: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("Twitch授权返回状态码 %d: %s", resp.StatusCode, string(body))
	}

	var token model.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("解析Twitch授权响应失败: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("Twitch授权响应缺少 access_token")
	}
	return &token, nil
}
