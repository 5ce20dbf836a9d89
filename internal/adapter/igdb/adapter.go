package igdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"GameIngest/internal/config"
	"GameIngest/internal/interfaces"
	"GameIngest/internal/model"
	"GameIngest/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// DefaultImageBaseURL 封面大图地址前缀
const DefaultImageBaseURL = "https://images.igdb.com/igdb/image/upload/t_cover_big_2x"

type Adapter struct {
	cfg        *config.ProviderConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

var _ interfaces.CatalogClient = (*Adapter)(nil)

func NewIGDBAdapter(cfg *config.ProviderConfig, logger *logrus.Logger) *Adapter {
	return &Adapter{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
	}
}

// GetName ========== 实现CatalogClient接口 ==========
func (a *Adapter) GetName() string {
	return "IGDB"
}

func (a *Adapter) FindGameBySlug(ctx context.Context, accessToken, slug string) (*model.CatalogGameRecord, error) {
	query := fmt.Sprintf(`fields name,rating,cover,first_release_date,summary,slug; where slug = "%s"; limit 1;`, escapeQueryString(slug))

	var games []model.CatalogGameRecord
	if err := a.query(ctx, accessToken, "games", query, &games); err != nil {
		return nil, fmt.Errorf("查询IGDB游戏失败(slug=%s): %w", slug, err)
	}
	if len(games) == 0 {
		a.logger.WithField("slug", slug).Warn("IGDB中未找到该游戏")
		return nil, interfaces.ErrGameNotFound
	}
	return &games[0], nil
}

func (a *Adapter) FindCoverByID(ctx context.Context, accessToken string, coverID uint64) (*model.CoverRecord, error) {
	if coverID == 0 {
		return nil, interfaces.ErrCoverNotFound
	}
	query := fmt.Sprintf(`fields image_id; where id = %d; limit 1;`, coverID)

	var covers []model.CoverRecord
	if err := a.query(ctx, accessToken, "covers", query, &covers); err != nil {
		return nil, fmt.Errorf("查询IGDB封面失败(cover=%d): %w", coverID, err)
	}
	if len(covers) == 0 || covers[0].ImageID == "" {
		return nil, interfaces.ErrCoverNotFound
	}
	return &covers[0], nil
}

func (a *Adapter) CoverURL(cover *model.CoverRecord) string {
	if cover == nil || cover.ImageID == "" {
		return ""
	}
	base := a.cfg.ImageBaseURL
	if base == "" {
		base = DefaultImageBaseURL
	}
	return strings.TrimSuffix(base, "/") + "/" + cover.ImageID
}

// query 以 IGDB 查询语言 POST {base_url}/v4/{endpoint}，响应为 JSON 数组
func (a *Adapter) query(ctx context.Context, accessToken, endpoint, body string, out interface{}) error {
	reqURL := fmt.Sprintf("%s/v4/%s", strings.TrimSuffix(a.cfg.BaseURL, "/"), endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("构建请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Client-ID", a.cfg.ClientID)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("请求失败: %w", err)
	}
	// 确保响应体关闭，并处理关闭时的错误
	defer func() {
		if err := resp.Body.Close(); err != nil {
			a.logger.Errorf("关闭IGDB响应体失败: %v", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("状态码 %d: %s", resp.StatusCode, string(msg))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("解析响应失败: %w", err)
	}
	return nil
}

// escapeQueryString 转义查询语言字符串字面量中的反斜杠与双引号
func escapeQueryString(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
