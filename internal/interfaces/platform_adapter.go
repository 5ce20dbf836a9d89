package interfaces

import (
	"context"
	"errors"

	"GameIngest/internal/model"
)

var (
	// ErrGameNotFound 目录中没有匹配 slug 的游戏（软失败，需求保持未处理）
	ErrGameNotFound = errors.New("目录中未找到游戏")
	// ErrCoverNotFound 游戏无封面或封面查询为空
	ErrCoverNotFound = errors.New("目录中未找到封面")
	// ErrPriceUnavailable 价格来源暂不可用
	ErrPriceUnavailable = errors.New("价格不可用")
)

// TokenFetcher 向外部服务的 Token 颁发地址申请 client_credentials 令牌
type TokenFetcher interface {
	Provider() string
	FetchToken(ctx context.Context) (*model.TokenResponse, error)
}

// CatalogClient 游戏元数据目录
type CatalogClient interface {
	GetName() string
	// FindGameBySlug 按 slug 查询最匹配的一条，空结果返回 ErrGameNotFound
	FindGameBySlug(ctx context.Context, accessToken, slug string) (*model.CatalogGameRecord, error)
	// FindCoverByID 按封面 ID 查询，空结果返回 ErrCoverNotFound
	FindCoverByID(ctx context.Context, accessToken string, coverID uint64) (*model.CoverRecord, error)
	// CoverURL 由封面 image_id 生成图片地址
	CoverURL(cover *model.CoverRecord) string
}

// PriceResolver 价格解析能力，无报价时返回 ErrPriceUnavailable
type PriceResolver interface {
	GetName() string
	ResolvePrice(ctx context.Context, accessToken, searchKey string) (*model.PriceQuote, error)
}

// IngestRepository 入库任务使用的仓储接口
type IngestRepository interface {
	FetchBacklog(ctx context.Context, limit int) ([]*model.SearchDemand, error)
	PersistEnriched(ctx context.Context, unit *model.PersistenceUnit) (*model.Game, error)
	MarkProcessed(ctx context.Context, ids []uint64) error
	SaveRun(ctx context.Context, run *model.IngestRun) error
}

// TokenSource 按 provider 返回当前有效的访问令牌（由 auth.TokenCache 实现）
type TokenSource interface {
	Token(ctx context.Context, provider string) (model.CachedToken, error)
}
