// Package auth 管理外部服务的访问令牌缓存
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"GameIngest/internal/interfaces"
	"GameIngest/internal/model"

	"github.com/sirupsen/logrus"
)

// TokenCache 每个外部服务一个令牌槽位，过期后惰性刷新。
// 同一时刻只应有一次运行在使用它（由 service.RunLock 保证），mutex 只防止误用时的数据竞争。
type TokenCache struct {
	mu       sync.Mutex
	fetchers map[string]interfaces.TokenFetcher
	slots    map[string]model.CachedToken
	now      func() time.Time
	logger   *logrus.Logger
}

// NewTokenCache 以 provider 名称注册各自的 TokenFetcher
func NewTokenCache(logger *logrus.Logger, fetchers ...interfaces.TokenFetcher) *TokenCache {
	c := &TokenCache{
		fetchers: make(map[string]interfaces.TokenFetcher, len(fetchers)),
		slots:    make(map[string]model.CachedToken, len(fetchers)),
		now:      time.Now,
		logger:   logger,
	}
	for _, f := range fetchers {
		c.fetchers[f.Provider()] = f
	}
	return c
}

// WithClock 替换时钟（测试用）
func (c *TokenCache) WithClock(now func() time.Time) *TokenCache {
	c.now = now
	return c
}

// Token 返回 provider 的有效令牌：槽位为空或已过期时重新申请并覆盖，否则直接返回缓存
func (c *TokenCache) Token(ctx context.Context, provider string) (model.CachedToken, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if cached, ok := c.slots[provider]; ok && !cached.Expired(now) {
		return cached, nil
	}

	fetcher, ok := c.fetchers[provider]
	if !ok {
		return model.CachedToken{}, fmt.Errorf("未注册的令牌提供方: %s", provider)
	}
	resp, err := fetcher.FetchToken(ctx)
	if err != nil {
		return model.CachedToken{}, fmt.Errorf("刷新%s令牌失败: %w", provider, err)
	}

	token := model.CachedToken{
		Provider:    provider,
		AccessToken: resp.AccessToken,
		TokenType:   resp.TokenType,
		ExpiresAt:   now.Add(time.Duration(resp.ExpiresIn) * time.Second),
	}
	c.slots[provider] = token
	c.logger.WithFields(logrus.Fields{
		"provider":   provider,
		"expires_at": token.ExpiresAt.Format(time.RFC3339),
	}).Info("令牌已刷新")
	return token, nil
}

// Invalidate 清空槽位，下次调用 Token 时强制刷新
func (c *TokenCache) Invalidate(provider string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.slots, provider)
}
