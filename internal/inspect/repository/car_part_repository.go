package repository

import (
	"context"

	"github.com/bitfantasy/nimo-inspect/internal/inspect/entity"
	"gorm.io/gorm"
)

type CarPartRepository struct {
	db *gorm.DB
}

func NewCarPartRepository(db *gorm.DB) *CarPartRepository {
	return &CarPartRepository{db: db}
}

// List 获取全部部件
func (r *CarPartRepository) List(ctx context.Context) ([]entity.CarPart, error) {
	var parts []entity.CarPart
	err := r.db.WithContext(ctx).Order("id ASC").Find(&parts).Error
	return parts, err
}

// FindByID 根据ID查找部件
func (r *CarPartRepository) FindByID(ctx context.Context, id int) (*entity.CarPart, error) {
	var part entity.CarPart
	if err := r.db.WithContext(ctx).First(&part, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &part, nil
}

type CostRuleRepository struct {
	db *gorm.DB
}

func NewCostRuleRepository(db *gorm.DB) *CostRuleRepository {
	return &CostRuleRepository{db: db}
}

// Find 精确匹配 (部件, 损伤类型, 维修/更换) 的费用规则
func (r *CostRuleRepository) Find(ctx context.Context, carPartID int, damageType entity.DamageType, repairReplace entity.RepairReplace) (*entity.CostRule, error) {
	var rule entity.CostRule
	err := r.db.WithContext(ctx).
		Where("car_part_id = ? AND damage_type_id = ? AND repair_replace_id = ?", carPartID, damageType, repairReplace).
		First(&rule).Error
	if err != nil {
		return nil, translate(err)
	}
	return &rule, nil
}
