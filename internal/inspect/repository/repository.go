package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// 错误定义
var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 仓库集合
type Repositories struct {
	db               *gorm.DB
	CarPart          *CarPartRepository
	CostRule         *CostRuleRepository
	ImageAssessment  *ImageAssessmentRepository
	DamageAssessment *DamageAssessmentRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:               db,
		CarPart:          NewCarPartRepository(db),
		CostRule:         NewCostRuleRepository(db),
		ImageAssessment:  NewImageAssessmentRepository(db),
		DamageAssessment: NewDamageAssessmentRepository(db),
	}
}

// Transaction 在同一事务内执行 fn，fn 返回错误时整体回滚
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// translate 将 gorm 的未找到错误统一为 ErrNotFound
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
