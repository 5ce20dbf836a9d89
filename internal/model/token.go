package model

import "time"

// TokenResponse OAuth client_credentials 响应（Twitch 与 eBay 结构一致）
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"` // 秒
	TokenType   string `json:"token_type"`
}

// CachedToken 缓存的访问令牌，只存在于内存
type CachedToken struct {
	Provider    string
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// Expired 当前时间晚于过期时间即视为过期
func (t CachedToken) Expired(now time.Time) bool {
	return t.AccessToken == "" || now.After(t.ExpiresAt)
}

// RunCredentials 单次运行开始前获取的两个令牌，运行期间不再刷新
type RunCredentials struct {
	Catalog     CachedToken
	Marketplace CachedToken
}
