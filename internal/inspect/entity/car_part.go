package entity

// CarPart 车辆部件主数据（只读）
type CarPart struct {
	ID       int    `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name     string `json:"name" gorm:"size:128;not null"`
	PartType string `json:"part_type" gorm:"size:64"`
}

func (CarPart) TableName() string {
	return "car_part_masters"
}

// CostRule 维修费用规则，按 (部件, 损伤类型, 维修/更换) 唯一
type CostRule struct {
	ID              uint          `json:"id" gorm:"primaryKey"`
	CarPartID       int           `json:"car_part_id" gorm:"not null;uniqueIndex:idx_cost_rule_key"`
	DamageTypeID    DamageType    `json:"damage_type_id" gorm:"not null;uniqueIndex:idx_cost_rule_key"`
	RepairReplaceID RepairReplace `json:"repair_replace_id" gorm:"not null;uniqueIndex:idx_cost_rule_key"`
	CostOfRepair    float64       `json:"cost_of_repair" gorm:"type:decimal(10,2);not null"`
}

func (CostRule) TableName() string {
	return "cost_of_repairs"
}
