package adapter

import (
	"context"

	"GameIngest/internal/config"
	"GameIngest/internal/interfaces"
	"GameIngest/internal/model"

	"github.com/sirupsen/logrus"
)

// NewPriceResolver 按 ingest.price_backend 创建价格解析器；
// 未配置或未注册时退回 UnavailablePriceResolver，流水线无需关心具体实现
func NewPriceResolver(cfg *config.Config, logger *logrus.Logger) interfaces.PriceResolver {
	name := cfg.Ingest.PriceBackend
	if name == "" {
		logger.Info("未配置价格来源，使用占位实现（始终不可用）")
		return NewUnavailablePriceResolver()
	}

	factory, ok := GetPriceResolverFactory(name)
	if !ok {
		logger.WithFields(logrus.Fields{
			"price_backend": name,
			"registered":    ListPriceResolvers(),
		}).Warn("未找到对应的价格来源工厂函数（init未注册？），使用占位实现")
		return NewUnavailablePriceResolver()
	}

	providerCfg := cfg.Providers[config.ProviderMarketplace]
	resolver := factory(&providerCfg, logger)
	if resolver == nil {
		logger.WithField("price_backend", name).Error("工厂函数返回nil价格解析器，使用占位实现")
		return NewUnavailablePriceResolver()
	}
	logger.WithField("price_backend", resolver.GetName()).Info("价格解析器初始化成功")
	return resolver
}

// UnavailablePriceResolver 占位实现：始终返回 ErrPriceUnavailable
type UnavailablePriceResolver struct{}

func NewUnavailablePriceResolver() *UnavailablePriceResolver {
	return &UnavailablePriceResolver{}
}

func (u *UnavailablePriceResolver) GetName() string {
	return "unavailable"
}

func (u *UnavailablePriceResolver) ResolvePrice(ctx context.Context, accessToken, searchKey string) (*model.PriceQuote, error) {
	_ = ctx
	return nil, interfaces.ErrPriceUnavailable
}
