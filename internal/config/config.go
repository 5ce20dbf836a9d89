package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 外部服务提供方在 providers 下的键名
const (
	ProviderCatalog     = "catalog"     // 游戏元数据目录（IGDB，经 Twitch 授权）
	ProviderMarketplace = "marketplace" // 价格来源（eBay）
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server    ServerConfig              `mapstructure:"server"`    // 服务器配置
	Database  DatabaseConfig            `mapstructure:"database"`  // PostgreSQL配置
	Redis     RedisConfig               `mapstructure:"redis"`     // 分布式运行锁（可选）
	Log       LogConfig                 `mapstructure:"log"`       // 日志配置
	Ingest    IngestConfig              `mapstructure:"ingest"`    // 入库批处理配置
	Providers map[string]ProviderConfig `mapstructure:"providers"` // 外部服务独立配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port      int    `mapstructure:"port"`       // 服务端口
	Mode      string `mapstructure:"mode"`       // Gin运行模式：debug/release/test
	APISecret string `mapstructure:"api_secret"` // 触发接口的 Bearer 密钥
	Pprof     bool   `mapstructure:"pprof"`      // 是否注册 pprof 路由
}

// DatabaseConfig PostgreSQL数据库配置
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN（URL形式）
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
	LogSQL          bool          `mapstructure:"log_sql"`           // 是否打印SQL
}

// RedisConfig Redis 配置，Addr 为空时使用进程内锁
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LockKey  string        `mapstructure:"lock_key"` // 运行锁的键名
	LockTTL  time.Duration `mapstructure:"lock_ttl"` // 运行锁过期时间，须大于单次运行耗时
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"` // debug/info/warn/error
	JSON  bool   `mapstructure:"json"`  // 是否输出JSON格式
}

// IngestConfig 单次运行的调度参数
type IngestConfig struct {
	BacklogLimit int           `mapstructure:"backlog_limit"` // 每次运行读取的未处理需求上限
	MinDemand    int           `mapstructure:"min_demand"`    // 7日搜索次数阈值，低于该值本轮忽略
	BatchSize    int           `mapstructure:"batch_size"`    // 每批并发处理的条数
	BatchDelay   time.Duration `mapstructure:"batch_delay"`   // 批次之间的等待时间
	Interval     time.Duration `mapstructure:"interval"`      // 进程内定时触发间隔，0 表示仅由外部触发
	PriceBackend string        `mapstructure:"price_backend"` // 价格解析实现，空表示不可用
}

// ProviderConfig 单个外部服务的独立配置
type ProviderConfig struct {
	BaseURL      string  `mapstructure:"base_url"`       // API基础地址
	OAuthURL     string  `mapstructure:"oauth_url"`      // Token 颁发地址
	ClientID     string  `mapstructure:"client_id"`      // 客户端ID
	ClientSecret string  `mapstructure:"client_secret"`  // 客户端密钥
	Scope        string  `mapstructure:"scope"`          // OAuth scope（eBay 用）
	ImageBaseURL string  `mapstructure:"image_base_url"` // 封面图片地址前缀（IGDB 用）
	Timeout      int     `mapstructure:"timeout"`        // 请求超时（秒）
	RateLimit    float64 `mapstructure:"rate_limit"`     // 每秒请求上限，0 表示不限
	Proxy        string  `mapstructure:"proxy"`          // 代理地址
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	return LoadConfigFrom("./config")
}

// LoadConfigFrom 从指定目录加载 config.yaml
func LoadConfigFrom(dir string) (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	v.SetTypeByDefaultValue(true)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("redis.lock_key", "gameingest:run-lock")
	v.SetDefault("redis.lock_ttl", 10*time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("ingest.backlog_limit", 10)
	v.SetDefault("ingest.min_demand", 10)
	v.SetDefault("ingest.batch_size", 5)
	v.SetDefault("ingest.batch_delay", 500*time.Millisecond)
	v.SetDefault("ingest.interval", time.Duration(0))
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}
	c := cfg.Providers[ProviderCatalog]
	if v := os.Getenv("TWITCH_OAUTH_URL"); v != "" {
		c.OAuthURL = v
	}
	if v := os.Getenv("TWITCH_API_CLIENT_ID"); v != "" {
		c.ClientID = v
	}
	if v := os.Getenv("TWITCH_API_SECRET"); v != "" {
		c.ClientSecret = v
	}
	if v := os.Getenv("IGDB_ENDPOINT"); v != "" {
		c.BaseURL = v
	}
	cfg.Providers[ProviderCatalog] = c

	m := cfg.Providers[ProviderMarketplace]
	if v := os.Getenv("EBAY_CLIENT_ID"); v != "" {
		m.ClientID = v
	}
	if v := os.Getenv("EBAY_CLIENT_SECRET"); v != "" {
		m.ClientSecret = v
	}
	cfg.Providers[ProviderMarketplace] = m

	if v := os.Getenv("API_SECRET"); v != "" {
		cfg.Server.APISecret = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
}

// Provider 获取指定外部服务配置，不存在时返回错误
func (c *Config) Provider(name string) (*ProviderConfig, error) {
	p, ok := c.Providers[name]
	if !ok {
		return nil, fmt.Errorf("未获取到外部服务配置: %s", name)
	}
	return &p, nil
}

// GetGORMConfig 获取GORM配置，log_sql 打开时输出全部SQL
func (d *DatabaseConfig) GetGORMConfig() gorm.Config {
	level := logger.Warn
	if d.LogSQL {
		level = logger.Info
	}
	return gorm.Config{Logger: logger.Default.LogMode(level)}
}
