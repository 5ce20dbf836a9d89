package model

import "time"

// ItemStatus 单条需求的处理结果
type ItemStatus string

const (
	ItemSucceeded ItemStatus = "succeeded"
	ItemSkipped   ItemStatus = "skipped" // 目录中未找到，保持未处理，下次运行重试
	ItemFailed    ItemStatus = "failed"
)

// ItemOutcome 单条需求富化结果
type ItemOutcome struct {
	DemandID  uint64     `json:"demand_id"`
	SearchKey string     `json:"search_key"`
	Status    ItemStatus `json:"status"`
	GameID    uint64     `json:"game_id,omitempty"`
	Err       error      `json:"-"`
	Reason    string     `json:"reason,omitempty"`
}

// ItemFailure 汇总中的失败明细
type ItemFailure struct {
	DemandID  uint64 `json:"demand_id"`
	SearchKey string `json:"search_key"`
	Reason    string `json:"reason"`
}

// RunSummary 单次运行汇总
type RunSummary struct {
	RunID      string        `json:"run_id"`
	Fetched    int           `json:"fetched"`  // 读取到的未处理需求数
	Eligible   int           `json:"eligible"` // 通过热度阈值的条数
	Batches    int           `json:"batches"`
	Delays     int           `json:"delays"`
	Succeeded  []uint64      `json:"succeeded"` // 已标记为 processed 的需求 ID
	Skipped    []uint64      `json:"skipped"`
	Failures   []ItemFailure `json:"failures"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Skip 目录未命中，条目保持未处理
func (o ItemOutcome) Skip(reason string) ItemOutcome {
	o.Status = ItemSkipped
	o.Reason = reason
	return o
}

// Fail 条目失败，原因写入汇总
func (o ItemOutcome) Fail(err error) ItemOutcome {
	o.Status = ItemFailed
	o.Err = err
	if err != nil {
		o.Reason = err.Error()
	}
	return o
}
