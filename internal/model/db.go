package model

import (
	"time"

	"gorm.io/datatypes"
)

// SearchDemand 用户搜索需求积压表，由搜索日志写入，本任务只读取并回写 processed
type SearchDemand struct {
	ID          uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	RawQuery    string     `gorm:"column:raw_query;type:varchar(256);not null"`                 // 用户原始输入
	SearchKey   string     `gorm:"column:search_key;type:varchar(256);not null;index"`          // 规范化后的搜索键，如 pokemon-red-pal-cib
	Count7d     int        `gorm:"column:count7d;type:int;not null;default:0"`                  // 近 7 日出现次数
	Processed   bool       `gorm:"column:processed;type:boolean;not null;default:false;index"` // 是否已入库
	ProcessedAt *time.Time `gorm:"column:processed_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// Game 游戏主表，一个游戏可对应多个版本
type Game struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Title       string    `gorm:"column:title;type:varchar(256);not null"`
	Year        int       `gorm:"column:year;type:int"` // 首发年份，目录无发售日期时为 0
	Image       string    `gorm:"column:image;type:varchar(512)"`
	Rate        float64   `gorm:"column:rate;type:numeric(10,4);default:0"`
	Description string    `gorm:"column:description;type:text"`
	CatalogID   uint64    `gorm:"column:catalog_id;type:bigint;index"` // 外部目录中的游戏 ID
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

// GameVariant 游戏版本（平台/品相/区域），三项外键必须全部存在
type GameVariant struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	GameID      uint64    `gorm:"column:game_id;type:bigint;not null;index"`
	PlatformID  uint64    `gorm:"column:platform_id;type:bigint;not null"`
	ConditionID uint64    `gorm:"column:condition_id;type:bigint;not null"`
	RegionID    uint64    `gorm:"column:region_id;type:bigint;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`

	Game      Game      `gorm:"foreignKey:GameID"`
	Platform  Platform  `gorm:"foreignKey:PlatformID"`
	Condition Condition `gorm:"foreignKey:ConditionID"`
	Region    Region    `gorm:"foreignKey:RegionID"`
}

// Platform 平台参考表（静态数据）
type Platform struct {
	ID   uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Code string `gorm:"column:code;type:varchar(16);uniqueIndex;not null"`
	Name string `gorm:"column:name;type:varchar(64);not null"`
}

// Condition 品相参考表（静态数据）
type Condition struct {
	ID   uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Code string `gorm:"column:code;type:varchar(16);uniqueIndex;not null"`
	Name string `gorm:"column:name;type:varchar(64);not null"`
}

// Region 区域参考表（静态数据）
type Region struct {
	ID   uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Code string `gorm:"column:code;type:varchar(16);uniqueIndex;not null"`
	Name string `gorm:"column:name;type:varchar(64);not null"`
}

// IngestRun 每次运行的审计记录，Failures 保存逐条失败原因
type IngestRun struct {
	ID         uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	RunUUID    string         `gorm:"column:run_uuid;type:varchar(64);uniqueIndex;not null"`
	Status     string         `gorm:"column:status;type:varchar(16);not null"` // completed/failed
	Error      string         `gorm:"column:error;type:text"`
	Fetched    int            `gorm:"column:fetched;type:int;default:0"`
	Eligible   int            `gorm:"column:eligible;type:int;default:0"`
	Succeeded  int            `gorm:"column:succeeded;type:int;default:0"`
	Skipped    int            `gorm:"column:skipped;type:int;default:0"`
	Failed     int            `gorm:"column:failed;type:int;default:0"`
	Batches    int            `gorm:"column:batches;type:int;default:0"`
	Delays     int            `gorm:"column:delays;type:int;default:0"`
	Failures   datatypes.JSON `gorm:"column:failures"`
	StartedAt  time.Time      `gorm:"column:started_at;type:timestamp;not null"`
	FinishedAt time.Time      `gorm:"column:finished_at;type:timestamp;not null"`
}

func (SearchDemand) TableName() string { return "search_demands" }
func (Game) TableName() string         { return "games" }
func (GameVariant) TableName() string  { return "game_variants" }
func (Platform) TableName() string     { return "platforms" }
func (Condition) TableName() string    { return "conditions" }
func (Region) TableName() string       { return "regions" }
func (IngestRun) TableName() string    { return "ingest_runs" }

// AllModels 按依赖顺序返回需要迁移的模型
func AllModels() []interface{} {
	return []interface{}{
		&Platform{},
		&Condition{},
		&Region{},
		&SearchDemand{},
		&Game{},
		&GameVariant{},
		&IngestRun{},
	}
}
