package entity

import "time"

// ImageAssessment 检测案件（按参考号归属的图片评估主记录）
type ImageAssessment struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	ReferenceNo        string    `json:"reference_no" gorm:"size:64;not null;index"`
	S3AssessedImageURL string    `json:"s3_assessed_image_url" gorm:"size:1024"`
	Status             string    `json:"status" gorm:"size:32"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (ImageAssessment) TableName() string {
	return "ml_image_assessments"
}

// DamageAssessment 单张图片上某个部件的损伤评估（审核人员可编辑的权威记录）
type DamageAssessment struct {
	ID                uint          `json:"id" gorm:"primaryKey"`
	ImageAssessmentID uint          `json:"image_assessment_id" gorm:"not null;index"`
	CarPartID         int           `json:"car_part_id" gorm:"not null;index:idx_damage_image_part"`
	DamageTypeID      DamageType    `json:"damage_type_id" gorm:"not null"`
	RepairReplaceID   RepairReplace `json:"repair_replace_id" gorm:"not null"`
	ActualCostRepair  float64       `json:"actual_cost_repair" gorm:"type:decimal(10,2)"`
	ImageName         string        `json:"image_name" gorm:"size:256;not null;index:idx_damage_image_part"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`

	// 关联
	ImageAssessment *ImageAssessment `json:"image_assessment,omitempty" gorm:"foreignKey:ImageAssessmentID"`
	CarPart         *CarPart         `json:"car_part,omitempty" gorm:"foreignKey:CarPartID"`
}

func (DamageAssessment) TableName() string {
	return "ml_case_image_assessments"
}
