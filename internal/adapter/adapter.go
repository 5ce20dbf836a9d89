// internal/adapter/adapter.go
package adapter

import (
	"GameIngest/internal/config"
	"GameIngest/internal/interfaces"
	"fmt"

	"github.com/sirupsen/logrus"
)

// PriceResolverFactory 价格解析器工厂函数签名
// 入参：marketplace 外部服务配置、日志实例
type PriceResolverFactory func(cfg *config.ProviderConfig, logger *logrus.Logger) interfaces.PriceResolver

// ========== 全局工厂函数注册表 ==========
var priceFactories = make(map[string]PriceResolverFactory)

// RegisterPriceResolver 供价格适配器 init 函数调用，注册工厂函数
func RegisterPriceResolver(name string, factory PriceResolverFactory) {
	if factory == nil {
		panic(fmt.Sprintf("价格来源%s的工厂函数不能为nil", name))
	}
	if _, exists := priceFactories[name]; exists {
		logrus.Warnf("价格来源%s已注册，将覆盖原有实现", name)
	}
	priceFactories[name] = factory
}

// GetPriceResolverFactory 获取指定价格来源的工厂函数
func GetPriceResolverFactory(name string) (PriceResolverFactory, bool) {
	f, ok := priceFactories[name]
	return f, ok
}

// ListPriceResolvers 列出所有已注册的价格来源
func ListPriceResolvers() []string {
	var names []string
	for n := range priceFactories {
		names = append(names, n)
	}
	return names
}
