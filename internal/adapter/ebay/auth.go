package ebay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"GameIngest/internal/config"
	"GameIngest/internal/interfaces"
	"GameIngest/internal/model"
	"GameIngest/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// DefaultScope eBay 应用级令牌的默认 scope
const DefaultScope = "https://api.ebay.com/oauth/api_scope"

// AppTokenFetcher 申请 eBay 应用级令牌（client_credentials + HTTP Basic）
type AppTokenFetcher struct {
	cfg        *config.ProviderConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

var _ interfaces.TokenFetcher = (*AppTokenFetcher)(nil)

func NewAppTokenFetcher(cfg *config.ProviderConfig, logger *logrus.Logger) *AppTokenFetcher {
	return &AppTokenFetcher{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
	}
}

func (f *AppTokenFetcher) Provider() string {
	return config.ProviderMarketplace
}

func (f *AppTokenFetcher) FetchToken(ctx context.Context) (*model.TokenResponse, error) {
	scope := f.cfg.Scope
	if scope == "" {
		scope = DefaultScope
	}
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", scope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.OAuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("构建eBay授权请求失败: %w", err)
	}
	req.SetBasicAuth(f.cfg.ClientID, f.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求eBay授权失败: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			f.logger.Errorf("关闭eBay响应体失败: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("eBay授权返回状态码 %d: %s", resp.StatusCode, string(body))
	}

	var token model.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("解析eBay授权响应失败: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("eBay授权响应缺少 access_token")
	}
	return &token, nil
}
