package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"GameIngest/internal/interfaces"
	"GameIngest/internal/model"

	"gorm.io/gorm"
)

// ErrReferenceNotFound 平台/品相/区域参考行不存在，整条写入回滚
var ErrReferenceNotFound = errors.New("参考数据不存在")

// DefaultBacklogLimit 每次运行读取的需求上限
const DefaultBacklogLimit = 10

type IngestRepository struct {
	db *gorm.DB
}

func NewIngestRepository(db *gorm.DB) interfaces.IngestRepository {
	return &IngestRepository{db: db}
}

// FetchBacklog 按插入顺序读取未处理的搜索需求
func (r *IngestRepository) FetchBacklog(ctx context.Context, limit int) ([]*model.SearchDemand, error) {
	if limit <= 0 {
		limit = DefaultBacklogLimit
	}
	var demands []*model.SearchDemand
	if err := r.db.WithContext(ctx).
		Where("processed = ?", false).
		Order("id ASC").
		Limit(limit).
		Find(&demands).Error; err != nil {
		return nil, fmt.Errorf("查询未处理搜索需求失败: %w", err)
	}
	return demands, nil
}

// PersistEnriched 在同一事务中解析三项参考行并写入 Game 与 GameVariant，任一步失败整体回滚
func (r *IngestRepository) PersistEnriched(ctx context.Context, unit *model.PersistenceUnit) (*model.Game, error) {
	// 开启事务
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("开启事务失败: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	// 1. 解析参考行
	var platform model.Platform
	var condition model.Condition
	var region model.Region
	lookups := []struct {
		kind string
		code string
		dest interface{}
	}{
		{"platform", string(unit.Platform), &platform},
		{"condition", string(unit.Condition), &condition},
		{"region", string(unit.Region), &region},
	}
	for _, l := range lookups {
		if err := tx.Where("code = ?", l.code).First(l.dest).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: %s=%q", ErrReferenceNotFound, l.kind, l.code)
			}
			return nil, fmt.Errorf("查询%s参考行失败: %w", l.kind, err)
		}
	}

	// 2. 保存Game
	game := unit.Game
	if err := tx.Create(&game).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("保存Game失败: %w, title: %s", err, game.Title)
	}

	// 3. 保存GameVariant
	variant := &model.GameVariant{
		GameID:      game.ID,
		PlatformID:  platform.ID,
		ConditionID: condition.ID,
		RegionID:    region.ID,
	}
	if err := tx.Omit("Game", "Platform", "Condition", "Region").Create(variant).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("保存GameVariant失败: %w, game_id: %d", err, game.ID)
	}

	// unit.Price 暂不写入（价格快照表尚未设计）

	// 提交事务
	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("提交事务失败: %w", err)
	}
	return &game, nil
}

// MarkProcessed 将给定需求标记为已处理，调用方只传入富化成功的 ID
func (r *IngestRepository) MarkProcessed(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&model.SearchDemand{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"processed":    true,
			"processed_at": time.Now(),
		}).Error; err != nil {
		return fmt.Errorf("标记需求已处理失败: %w, ids: %v", err, ids)
	}
	return nil
}

// SaveRun 保存运行审计记录
func (r *IngestRepository) SaveRun(ctx context.Context, run *model.IngestRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("保存运行记录失败: %w, run: %s", err, run.RunUUID)
	}
	return nil
}
