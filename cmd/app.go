package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"GameIngest/internal/adapter"
	ebayadapter "GameIngest/internal/adapter/ebay"
	"GameIngest/internal/adapter/igdb"
	"GameIngest/internal/api"
	"GameIngest/internal/auth"
	"GameIngest/internal/config"
	"GameIngest/internal/database"
	"GameIngest/internal/repository"
	"GameIngest/internal/service"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// application 进程内共享的依赖
type application struct {
	cfg    *config.Config
	logger *logrus.Logger
	db     *gorm.DB
	redis  *redis.Client

	ingest   *service.IngestService
	variants repository.VariantRepository
	refs     repository.ReferenceRepository
}

func newLogger(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if cfg.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

func newApp(dir string) (_ *application, err error) {
	// 1. 加载配置文件
	cfg, err := config.LoadConfigFrom(dir)
	if err != nil {
		return nil, fmt.Errorf("加载配置文件失败: %w", err)
	}

	// 2. 初始化日志
	logger := newLogger(cfg.Log)
	logger.Info("配置文件加载成功")

	// 3. 初始化 PostgreSQL 连接并迁移
	db, err := database.Open(&cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	app := &application{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		variants: repository.NewVariantRepository(db),
		refs:     repository.NewReferenceRepository(db),
	}
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	// 4. 外部服务：目录、令牌、价格
	catalogCfg, err := cfg.Provider(config.ProviderCatalog)
	if err != nil {
		return nil, err
	}
	marketplaceCfg, err := cfg.Provider(config.ProviderMarketplace)
	if err != nil {
		return nil, err
	}
	catalog := igdb.NewIGDBAdapter(catalogCfg, logger)
	tokens := auth.NewTokenCache(logger,
		igdb.NewTwitchTokenFetcher(catalogCfg, logger),
		ebayadapter.NewAppTokenFetcher(marketplaceCfg, logger),
	)
	price := adapter.NewPriceResolver(cfg, logger)

	// 5. 运行锁：配置了 redis 时使用分布式锁
	var lock service.RunLock = service.NewLocalRunLock()
	if cfg.Redis.Addr != "" {
		app.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("连接Redis失败: %w", err)
		}
		lock = service.NewRedisRunLock(app.redis, cfg.Redis.LockKey, cfg.Redis.LockTTL, logger)
		logger.WithField("addr", cfg.Redis.Addr).Info("使用Redis运行锁")
	}

	repo := repository.NewIngestRepository(db)
	pipeline := service.NewEnrichmentPipeline(catalog, price, repo, logger)
	app.ingest = service.NewIngestService(repo, tokens, pipeline, lock, cfg.Ingest, logger)
	return app, nil
}

func (a *application) seed(ctx context.Context) error {
	if err := a.refs.SeedReferenceData(ctx); err != nil {
		return err
	}
	a.logger.Info("参考数据写入完成")
	return nil
}

func (a *application) runOnce(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := a.ingest.RunOnce(ctx)
	if summary != nil {
		out, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(out))
	}
	return err
}

func (a *application) router() *gin.Engine {
	gin.SetMode(a.cfg.Server.Mode)
	r := gin.Default()

	// 注册pprof 方便调试和监测性能问题
	if a.cfg.Server.Pprof {
		pprof.Register(r)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	ingestHandler := api.NewIngestHandler(a.ingest, a.cfg.Server.APISecret, a.logger)
	r.POST("/api/game/retrieve-info", ingestHandler.RetrieveInfo)

	// 版本查询接口（给前端页面用）
	variantHandler := api.NewVariantHandler(a.variants, a.logger)
	r.GET("/api/variants", variantHandler.ListVariants)
	return r
}

func (a *application) serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.cfg.Server.APISecret == "" {
		a.logger.Warn("未配置 API_SECRET，触发接口将拒绝所有请求")
	}
	go service.NewScheduler(a.ingest, a.cfg.Ingest.Interval, a.logger).Start(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler: a.router(),
	}
	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("服务启动成功，端口：%d", a.cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("启动服务失败: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("正在关闭服务…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Close 释放数据库与 Redis 连接
func (a *application) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.WithError(err).Warn("关闭Redis连接失败")
		}
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
