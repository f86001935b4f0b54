package repository

import (
	"context"

	"github.com/bitfantasy/nimo-inspect/internal/inspect/entity"
	"gorm.io/gorm"
)

type DamageAssessmentRepository struct {
	db *gorm.DB
}

func NewDamageAssessmentRepository(db *gorm.DB) *DamageAssessmentRepository {
	return &DamageAssessmentRepository{db: db}
}

// ListByReferenceAndImage 按参考号和图片名获取损伤评估（仅包含部件存在的记录）
func (r *DamageAssessmentRepository) ListByReferenceAndImage(ctx context.Context, referenceNo, imageName string) ([]entity.DamageAssessment, error) {
	var items []entity.DamageAssessment
	err := r.db.WithContext(ctx).
		Preload("CarPart").
		Joins("JOIN ml_image_assessments ia ON ia.id = ml_case_image_assessments.image_assessment_id").
		Joins("JOIN car_part_masters cp ON cp.id = ml_case_image_assessments.car_part_id").
		Where("ia.reference_no = ? AND ml_case_image_assessments.image_name = ?", referenceNo, imageName).
		Order("ml_case_image_assessments.id ASC").
		Find(&items).Error
	return items, err
}

// ListByImageAssessmentIDs 批量获取多个评估记录的损伤（避免N+1）
func (r *DamageAssessmentRepository) ListByImageAssessmentIDs(ctx context.Context, ids []uint) ([]entity.DamageAssessment, error) {
	var items []entity.DamageAssessment
	if len(ids) == 0 {
		return items, nil
	}
	err := r.db.WithContext(ctx).
		Preload("CarPart").
		Joins("JOIN car_part_masters cp ON cp.id = ml_case_image_assessments.car_part_id").
		Where("ml_case_image_assessments.image_assessment_id IN ?", ids).
		Order("ml_case_image_assessments.id ASC").
		Find(&items).Error
	return items, err
}

// ListByAssessmentAndImage 评估记录下指定图片的损伤
func (r *DamageAssessmentRepository) ListByAssessmentAndImage(ctx context.Context, imageAssessmentID uint, imageName string) ([]entity.DamageAssessment, error) {
	var items []entity.DamageAssessment
	err := r.db.WithContext(ctx).
		Preload("CarPart").
		Where("image_assessment_id = ? AND image_name = ?", imageAssessmentID, imageName).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

// FindByID 根据ID查找
func (r *DamageAssessmentRepository) FindByID(ctx context.Context, id uint) (*entity.DamageAssessment, error) {
	var item entity.DamageAssessment
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

// FindByImageAndPart 批量保存的匹配键：(图片名, 部件)
func (r *DamageAssessmentRepository) FindByImageAndPart(ctx context.Context, imageName string, carPartID int) (*entity.DamageAssessment, error) {
	var item entity.DamageAssessment
	err := r.db.WithContext(ctx).
		Where("image_name = ? AND car_part_id = ?", imageName, carPartID).
		Order("id ASC").
		First(&item).Error
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

// Create 创建损伤评估
func (r *DamageAssessmentRepository) Create(ctx context.Context, item *entity.DamageAssessment) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateFields 整体替换可编辑字段
func (r *DamageAssessmentRepository) UpdateFields(ctx context.Context, id uint, carPartID int, damageType entity.DamageType, repairReplace entity.RepairReplace, cost float64) error {
	return r.db.WithContext(ctx).
		Model(&entity.DamageAssessment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"car_part_id":        carPartID,
			"damage_type_id":     damageType,
			"repair_replace_id":  repairReplace,
			"actual_cost_repair": cost,
		}).Error
}

// Delete 删除损伤评估，记录不存在时不报错
func (r *DamageAssessmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.DamageAssessment{}, "id = ?", id).Error
}
