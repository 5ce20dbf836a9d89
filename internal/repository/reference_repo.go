package repository

import (
	"context"
	"fmt"

	"GameIngest/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 静态参考数据，与运营侧种子数据保持一致
var (
	seedPlatforms = []model.Platform{
		{Code: string(model.PlatformGB), Name: "Game Boy"},
		{Code: string(model.PlatformGBC), Name: "Game Boy Color"},
		{Code: string(model.PlatformGBA), Name: "Game Boy Advance"},
		{Code: string(model.PlatformNES), Name: "Nintendo Entertainment System"},
		{Code: string(model.PlatformSNES), Name: "Super Nintendo"},
		{Code: string(model.PlatformSMS), Name: "Sega Master System"},
		{Code: string(model.PlatformSMD), Name: "Sega Mega Drive"},
	}
	seedConditions = []model.Condition{
		{Code: string(model.ConditionLoose), Name: "Loose"},
		{Code: string(model.ConditionCIB), Name: "Complete"},
		{Code: string(model.ConditionSealed), Name: "Sealed"},
	}
	seedRegions = []model.Region{
		{Code: string(model.RegionPAL), Name: "PAL"},
		{Code: string(model.RegionNTSC), Name: "NTSC"},
		{Code: string(model.RegionJAP), Name: "Japan"},
	}
)

// ReferenceRepository 参考表（平台/品相/区域）仓储，入库流水线只读
type ReferenceRepository interface {
	// SeedReferenceData 幂等写入静态参考数据（code 冲突时忽略）
	SeedReferenceData(ctx context.Context) error
	ListPlatforms(ctx context.Context) ([]*model.Platform, error)
	ListConditions(ctx context.Context) ([]*model.Condition, error)
	ListRegions(ctx context.Context) ([]*model.Region, error)
}

type referenceRepository struct {
	db *gorm.DB
}

func NewReferenceRepository(db *gorm.DB) ReferenceRepository {
	return &referenceRepository{db: db}
}

func (r *referenceRepository) SeedReferenceData(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		onConflict := clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}

		platforms := append([]model.Platform(nil), seedPlatforms...)
		if err := tx.Clauses(onConflict).Create(&platforms).Error; err != nil {
			return fmt.Errorf("写入平台参考数据失败: %w", err)
		}
		conditions := append([]model.Condition(nil), seedConditions...)
		if err := tx.Clauses(onConflict).Create(&conditions).Error; err != nil {
			return fmt.Errorf("写入品相参考数据失败: %w", err)
		}
		regions := append([]model.Region(nil), seedRegions...)
		if err := tx.Clauses(onConflict).Create(&regions).Error; err != nil {
			return fmt.Errorf("写入区域参考数据失败: %w", err)
		}
		return nil
	})
}

func (r *referenceRepository) ListPlatforms(ctx context.Context) ([]*model.Platform, error) {
	var list []*model.Platform
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *referenceRepository) ListConditions(ctx context.Context) ([]*model.Condition, error) {
	var list []*model.Condition
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *referenceRepository) ListRegions(ctx context.Context) ([]*model.Region, error) {
	var list []*model.Region
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
