package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Scheduler 进程内定时触发 RunOnce，与 HTTP 触发共用同一把运行锁
type Scheduler struct {
	svc      *IngestService
	interval time.Duration
	logger   *logrus.Logger
}

func NewScheduler(svc *IngestService, interval time.Duration, logger *logrus.Logger) *Scheduler {
	return &Scheduler{svc: svc, interval: interval, logger: logger}
}

// Start 阻塞直到 ctx 取消；interval <= 0 时直接返回
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.logger.Infof("定时入库已启动，间隔: %s", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("定时入库已停止")
			return
		case <-ticker.C:
			if _, err := s.svc.RunOnce(ctx); err != nil {
				if IsRunInProgress(err) {
					s.logger.Info("上一次入库仍在运行，本次定时触发跳过")
					continue
				}
				s.logger.WithError(err).Error("定时入库失败")
			}
		}
	}
}
