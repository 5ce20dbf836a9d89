package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ========== IGDB 官方 API 响应结构（POST /v4/games、/v4/covers，返回 JSON 数组） ==========

// CatalogGameRecord 目录中的游戏记录（只读投影）
type CatalogGameRecord struct {
	ID               uint64  `json:"id"`
	Name             string  `json:"name"`
	Slug             string  `json:"slug"`
	Rating           float64 `json:"rating"`
	Cover            uint64  `json:"cover"`              // 封面 ID，0 表示无封面
	FirstReleaseDate int64   `json:"first_release_date"` // Unix 秒
	Summary          string  `json:"summary"`
}

// ReleaseYear 首发年份（UTC），无发售日期时返回 0
func (r *CatalogGameRecord) ReleaseYear() int {
	if r.FirstReleaseDate == 0 {
		return 0
	}
	return time.Unix(r.FirstReleaseDate, 0).UTC().Year()
}

// CoverRecord 封面记录
type CoverRecord struct {
	ID      uint64 `json:"id"`
	ImageID string `json:"image_id"`
}

// PriceQuote 价格报价，目前不落库
type PriceQuote struct {
	SearchKey string
	Amount    decimal.Decimal
	Currency  string
	Source    string
	QuotedAt  time.Time
}

// PersistenceUnit 单条需求富化后的原子写入单元
type PersistenceUnit struct {
	DemandID  uint64
	Game      Game
	Platform  PlatformCode
	Condition ConditionCode
	Region    RegionCode
	// Price 预留的价格写入位，仓储当前不消费
	Price *PriceQuote
}
