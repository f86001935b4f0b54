package entity

// Models 需要 AutoMigrate 的全部实体
func Models() []interface{} {
	return []interface{}{
		&CarPart{},
		&CostRule{},
		&ImageAssessment{},
		&DamageAssessment{},
	}
}
