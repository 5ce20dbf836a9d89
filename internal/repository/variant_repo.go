package repository

import (
	"context"

	"GameIngest/internal/model"

	"gorm.io/gorm"
)

// VariantRepository 已入库游戏版本的查询（给展示页用）
type VariantRepository interface {
	// ListVariants 分页查询版本，预加载游戏与三项参考数据
	ListVariants(ctx context.Context, page, pageSize int) ([]*model.GameVariant, int64, error)
}

type variantRepository struct {
	db *gorm.DB
}

// NewVariantRepository 创建 VariantRepository 实例
func NewVariantRepository(db *gorm.DB) VariantRepository {
	return &variantRepository{db: db}
}

func (r *variantRepository) ListVariants(ctx context.Context, page, pageSize int) ([]*model.GameVariant, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&model.GameVariant{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []*model.GameVariant
	if err := db.
		Preload("Game").
		Preload("Platform").
		Preload("Condition").
		Preload("Region").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
