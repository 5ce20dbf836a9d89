package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"GameIngest/internal/config"
	"GameIngest/internal/interfaces"
	"GameIngest/internal/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

const (
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Enricher 单条需求的富化入口，EnrichmentPipeline 为默认实现
type Enricher interface {
	Enrich(ctx context.Context, creds model.RunCredentials, item *model.SearchDemand) model.ItemOutcome
}

// IngestService 批处理调度：读取积压 → 过滤 → 取令牌 → 分批并发富化 → 标记已处理
type IngestService struct {
	repo     interfaces.IngestRepository
	tokens   interfaces.TokenSource
	enricher Enricher
	lock     RunLock
	cfg      config.IngestConfig
	logger   *logrus.Logger

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

func NewIngestService(
	repo interfaces.IngestRepository,
	tokens interfaces.TokenSource,
	enricher Enricher,
	lock RunLock,
	cfg config.IngestConfig,
	logger *logrus.Logger,
) *IngestService {
	if cfg.BacklogLimit <= 0 {
		cfg.BacklogLimit = 10
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	if lock == nil {
		lock = NewLocalRunLock()
	}
	return &IngestService{
		repo:     repo,
		tokens:   tokens,
		enricher: enricher,
		lock:     lock,
		cfg:      cfg,
		logger:   logger,
		sleep:    sleepContext,
		now:      time.Now,
	}
}

// WithSleep 替换批次间等待（测试用）
func (s *IngestService) WithSleep(sleep func(ctx context.Context, d time.Duration) error) *IngestService {
	s.sleep = sleep
	return s
}

// RunOnce 执行一次完整的入库运行。
// 条目级失败只记入汇总；积压查询、令牌、标记已处理失败或上下文取消会中止运行并返回错误
func (s *IngestService) RunOnce(ctx context.Context) (*model.RunSummary, error) {
	release, err := s.lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	summary := &model.RunSummary{
		RunID:     uuid.NewString(),
		Succeeded: []uint64{},
		Skipped:   []uint64{},
		Failures:  []model.ItemFailure{},
		StartedAt: s.now(),
	}
	log := s.logger.WithField("run_id", summary.RunID)
	log.Info("入库运行开始")

	runErr := s.run(ctx, summary, log)
	summary.FinishedAt = s.now()
	s.saveRun(ctx, summary, runErr, log)

	fields := logrus.Fields{
		"fetched":   summary.Fetched,
		"eligible":  summary.Eligible,
		"batches":   summary.Batches,
		"succeeded": len(summary.Succeeded),
		"skipped":   len(summary.Skipped),
		"failed":    len(summary.Failures),
		"cost":      summary.FinishedAt.Sub(summary.StartedAt).String(),
	}
	if runErr != nil {
		log.WithFields(fields).WithError(runErr).Error("入库运行中止")
		return summary, runErr
	}
	log.WithFields(fields).Info("入库运行完成")
	return summary, nil
}

func (s *IngestService) run(ctx context.Context, summary *model.RunSummary, log *logrus.Entry) error {
	// 1. 读取积压
	backlog, err := s.repo.FetchBacklog(ctx, s.cfg.BacklogLimit)
	if err != nil {
		return fmt.Errorf("读取搜索需求积压失败: %w", err)
	}
	summary.Fetched = len(backlog)

	// 2. 热度过滤，低于阈值的保持未处理
	eligible := make([]*model.SearchDemand, 0, len(backlog))
	for _, item := range backlog {
		if item.Count7d < s.cfg.MinDemand {
			log.WithFields(logrus.Fields{
				"demand_id": item.ID,
				"count7d":   item.Count7d,
			}).Debug("搜索热度不足，本轮跳过")
			continue
		}
		eligible = append(eligible, item)
	}
	summary.Eligible = len(eligible)
	if len(eligible) == 0 {
		log.Info("没有需要处理的搜索需求")
		return nil
	}

	// 3. 本轮使用的令牌，批次开始前取好
	creds, err := s.credentials(ctx)
	if err != nil {
		return err
	}

	// 4. 分批处理，批次严格串行
	for start := 0; start < len(eligible); start += s.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := start + s.cfg.BatchSize
		if end > len(eligible) {
			end = len(eligible)
		}
		batch := eligible[start:end]
		outcomes := s.processBatch(ctx, creds, batch)
		summary.Batches++

		succeeded := make([]uint64, 0, len(outcomes))
		for _, o := range outcomes {
			switch o.Status {
			case model.ItemSucceeded:
				succeeded = append(succeeded, o.DemandID)
			case model.ItemSkipped:
				summary.Skipped = append(summary.Skipped, o.DemandID)
			default:
				summary.Failures = append(summary.Failures, model.ItemFailure{
					DemandID:  o.DemandID,
					SearchKey: o.SearchKey,
					Reason:    o.Reason,
				})
				log.WithError(o.Err).WithField("demand_id", o.DemandID).Warn("搜索需求处理失败")
			}
		}

		if err := s.repo.MarkProcessed(ctx, succeeded); err != nil {
			return err
		}
		summary.Succeeded = append(summary.Succeeded, succeeded...)
		log.WithFields(logrus.Fields{
			"batch":     summary.Batches,
			"size":      len(batch),
			"succeeded": len(succeeded),
		}).Info("批次处理完成")

		// 每批之后等待，连续运行之间同样遵守目录服务的限流窗口
		if s.cfg.BatchDelay > 0 {
			if err := s.sleep(ctx, s.cfg.BatchDelay); err != nil {
				return err
			}
			summary.Delays++
		}
	}
	return nil
}

func (s *IngestService) credentials(ctx context.Context) (model.RunCredentials, error) {
	var creds model.RunCredentials
	catalog, err := s.tokens.Token(ctx, config.ProviderCatalog)
	if err != nil {
		return creds, fmt.Errorf("获取目录服务令牌失败: %w", err)
	}
	marketplace, err := s.tokens.Token(ctx, config.ProviderMarketplace)
	if err != nil {
		return creds, fmt.Errorf("获取行情服务令牌失败: %w", err)
	}
	creds.Catalog = catalog
	creds.Marketplace = marketplace
	return creds, nil
}

// processBatch 批内条目并发富化，结果互不影响，按输入顺序返回
func (s *IngestService) processBatch(ctx context.Context, creds model.RunCredentials, batch []*model.SearchDemand) []model.ItemOutcome {
	outcomes := make([]model.ItemOutcome, len(batch))
	var g errgroup.Group
	g.SetLimit(s.cfg.BatchSize)
	for i, item := range batch {
		i, item := i, item
		g.Go(func() error {
			outcomes[i] = s.enricher.Enrich(ctx, creds, item)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// saveRun 写入审计记录，失败只记日志
func (s *IngestService) saveRun(ctx context.Context, summary *model.RunSummary, runErr error, log *logrus.Entry) {
	failures, err := json.Marshal(summary.Failures)
	if err != nil {
		log.WithError(err).Error("序列化失败明细出错")
		failures = []byte("[]")
	}
	run := &model.IngestRun{
		RunUUID:    summary.RunID,
		Status:     RunStatusCompleted,
		Fetched:    summary.Fetched,
		Eligible:   summary.Eligible,
		Succeeded:  len(summary.Succeeded),
		Skipped:    len(summary.Skipped),
		Failed:     len(summary.Failures),
		Batches:    summary.Batches,
		Delays:     summary.Delays,
		Failures:   datatypes.JSON(failures),
		StartedAt:  summary.StartedAt,
		FinishedAt: summary.FinishedAt,
	}
	if runErr != nil {
		run.Status = RunStatusFailed
		run.Error = runErr.Error()
	}
	// 运行可能因上下文取消而中止，审计记录仍需写入
	if err := s.repo.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		log.WithError(err).Error("保存运行记录失败")
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsRunInProgress 判断错误是否因已有运行在进行
func IsRunInProgress(err error) bool {
	return errors.Is(err, ErrRunInProgress)
}
