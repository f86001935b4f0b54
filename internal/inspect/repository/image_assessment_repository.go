package repository

import (
	"context"

	"github.com/bitfantasy/nimo-inspect/internal/inspect/entity"
	"gorm.io/gorm"
)

type ImageAssessmentRepository struct {
	db *gorm.DB
}

func NewImageAssessmentRepository(db *gorm.DB) *ImageAssessmentRepository {
	return &ImageAssessmentRepository{db: db}
}

// ListByReferenceNo 获取参考号下全部评估记录
func (r *ImageAssessmentRepository) ListByReferenceNo(ctx context.Context, referenceNo string) ([]entity.ImageAssessment, error) {
	var items []entity.ImageAssessment
	err := r.db.WithContext(ctx).
		Where("reference_no = ?", referenceNo).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

// FirstByReferenceNo 参考号对应的第一条评估记录
func (r *ImageAssessmentRepository) FirstByReferenceNo(ctx context.Context, referenceNo string) (*entity.ImageAssessment, error) {
	var item entity.ImageAssessment
	err := r.db.WithContext(ctx).
		Where("reference_no = ?", referenceNo).
		Order("id ASC").
		First(&item).Error
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

// Create 创建评估记录
func (r *ImageAssessmentRepository) Create(ctx context.Context, item *entity.ImageAssessment) error {
	return r.db.WithContext(ctx).Create(item).Error
}
