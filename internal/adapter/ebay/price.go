package ebay

import (
	"context"

	"GameIngest/internal/adapter"
	"GameIngest/internal/config"
	"GameIngest/internal/interfaces"
	"GameIngest/internal/model"

	"github.com/sirupsen/logrus"
)

// BackendName 在 ingest.price_backend 中使用的名称
const BackendName = "ebay"

func init() {
	adapter.RegisterPriceResolver(BackendName, NewPriceResolver)
}

// PriceResolver eBay 价格来源，尚未接入 Browse API，始终返回 ErrPriceUnavailable。
// TODO: 接入 Browse API item_summary/search 后按已售均价生成报价。
type PriceResolver struct {
	cfg    *config.ProviderConfig
	logger *logrus.Logger
}

var _ interfaces.PriceResolver = (*PriceResolver)(nil)

func NewPriceResolver(cfg *config.ProviderConfig, logger *logrus.Logger) interfaces.PriceResolver {
	return &PriceResolver{cfg: cfg, logger: logger}
}

func (p *PriceResolver) GetName() string {
	return "eBay"
}

func (p *PriceResolver) ResolvePrice(ctx context.Context, accessToken, searchKey string) (*model.PriceQuote, error) {
	_ = ctx
	_ = accessToken
	p.logger.WithField("search_key", searchKey).Debug("eBay价格查询尚未实现")
	return nil, interfaces.ErrPriceUnavailable
}
