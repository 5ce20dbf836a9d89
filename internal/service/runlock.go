package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrRunInProgress 已有一次入库运行正在进行
var ErrRunInProgress = errors.New("入库任务正在运行")

// RunLock 保证同一时刻只有一次入库运行
type RunLock interface {
	// Acquire 成功时返回释放函数；锁被占用时返回 ErrRunInProgress
	Acquire(ctx context.Context) (release func(), err error)
}

// LocalRunLock 单进程锁
type LocalRunLock struct {
	mu sync.Mutex
}

func NewLocalRunLock() *LocalRunLock {
	return &LocalRunLock{}
}

func (l *LocalRunLock) Acquire(ctx context.Context) (func(), error) {
	_ = ctx
	if !l.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	var once sync.Once
	return func() { once.Do(l.mu.Unlock) }, nil
}

// 仅当锁仍归属当前持有者时才删除
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisRunLock 多副本部署时的分布式锁（SET NX PX + 持有者令牌）
type RedisRunLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *logrus.Logger
}

// NewRedisRunLock ttl 需覆盖一次完整运行的耗时，进程崩溃后锁在 ttl 后自动失效
func NewRedisRunLock(client *redis.Client, key string, ttl time.Duration, logger *logrus.Logger) *RedisRunLock {
	if key == "" {
		key = "gameingest:run-lock"
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisRunLock{client: client, key: key, ttl: ttl, logger: logger}
}

func (l *RedisRunLock) Acquire(ctx context.Context) (func(), error) {
	owner := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, owner, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("获取运行锁失败: %w", err)
	}
	if !ok {
		return nil, ErrRunInProgress
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			// 请求上下文可能已取消，释放使用独立超时
			rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(rctx, l.client, []string{l.key}, owner).Err(); err != nil {
				l.logger.WithError(err).WithField("key", l.key).Error("释放运行锁失败")
			}
		})
	}
	return release, nil
}
