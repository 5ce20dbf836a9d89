package service

import (
	"context"
	"errors"
	"fmt"

	"GameIngest/internal/interfaces"
	"GameIngest/internal/model"
	"GameIngest/internal/slug"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// EnrichmentPipeline 单条搜索需求的富化流程：解析 → 目录查询 → 封面/价格 → 编码校验 → 入库
type EnrichmentPipeline struct {
	catalog interfaces.CatalogClient
	price   interfaces.PriceResolver
	repo    interfaces.IngestRepository
	logger  *logrus.Logger
}

func NewEnrichmentPipeline(catalog interfaces.CatalogClient, price interfaces.PriceResolver, repo interfaces.IngestRepository, logger *logrus.Logger) *EnrichmentPipeline {
	return &EnrichmentPipeline{
		catalog: catalog,
		price:   price,
		repo:    repo,
		logger:  logger,
	}
}

// Enrich 处理单条需求。条目级错误只体现在返回的 ItemOutcome 中，不会中断批次
func (p *EnrichmentPipeline) Enrich(ctx context.Context, creds model.RunCredentials, item *model.SearchDemand) model.ItemOutcome {
	outcome := model.ItemOutcome{DemandID: item.ID, SearchKey: item.SearchKey}
	log := p.logger.WithFields(logrus.Fields{
		"demand_id":  item.ID,
		"search_key": item.SearchKey,
	})

	// 1. 解析搜索键
	parsed := slug.Parse(item.SearchKey)
	log.WithFields(logrus.Fields{
		"title":     parsed.Title,
		"platform":  parsed.Platform,
		"condition": parsed.Condition,
		"region":    parsed.Region,
	}).Debug("搜索键解析完成")

	// 2. 目录查询
	record, err := p.catalog.FindGameBySlug(ctx, creds.Catalog.AccessToken, parsed.Title)
	if err != nil {
		if errors.Is(err, interfaces.ErrGameNotFound) {
			log.Info("目录中无此游戏，保持未处理，下次运行重试")
			return outcome.Skip("目录中未找到")
		}
		return outcome.Fail(fmt.Errorf("目录查询失败: %w", err))
	}

	// 3. 封面与价格并发获取，各自失败只退化对应字段
	var (
		image string
		quote *model.PriceQuote
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cover, err := p.catalog.FindCoverByID(gctx, creds.Catalog.AccessToken, record.Cover)
		if err != nil {
			log.WithError(err).Warn("封面获取失败，图片置空")
			return nil
		}
		image = p.catalog.CoverURL(cover)
		return nil
	})
	g.Go(func() error {
		q, err := p.price.ResolvePrice(gctx, creds.Marketplace.AccessToken, item.SearchKey)
		if err != nil {
			if !errors.Is(err, interfaces.ErrPriceUnavailable) {
				log.WithError(err).Warn("价格获取失败")
			}
			return nil
		}
		quote = q
		log.WithFields(logrus.Fields{
			"amount":   q.Amount.String(),
			"currency": q.Currency,
			"source":   q.Source,
		}).Info("获取到价格")
		return nil
	})
	_ = g.Wait()

	// 4. 编码校验，不合法的编码不做任何数据库查询
	if err := parsed.ValidateCodes(); err != nil {
		return outcome.Fail(err)
	}

	// 5. 原子写入 Game + GameVariant
	unit := &model.PersistenceUnit{
		DemandID: item.ID,
		Game: model.Game{
			Title:       record.Name,
			Year:        record.ReleaseYear(),
			Image:       image,
			Rate:        record.Rating,
			Description: record.Summary,
			CatalogID:   record.ID,
		},
		Platform:  parsed.Platform,
		Condition: parsed.Condition,
		Region:    parsed.Region,
		Price:     quote,
	}
	game, err := p.repo.PersistEnriched(ctx, unit)
	if err != nil {
		return outcome.Fail(fmt.Errorf("入库失败: %w", err))
	}

	outcome.Status = model.ItemSucceeded
	outcome.GameID = game.ID
	log.WithField("game_id", game.ID).Info("游戏入库成功")
	return outcome
}
