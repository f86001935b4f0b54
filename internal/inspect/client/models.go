package client

// Box 损伤框，width/height 可能为负
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DamageBox 模型检测出的一处损伤
type DamageBox struct {
	RepairReplace string `json:"repair_replace"`
	Coordinates   Box    `json:"coordinates"`
}

// Dimensions 图片像素尺寸
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// AnnotatedImage 图片及其损伤框
type AnnotatedImage struct {
	ReferenceNo     string      `json:"reference_no"`
	ImageName       string      `json:"image_name"`
	ImageURL        string      `json:"image_url"`
	ImageDimensions Dimensions  `json:"image_dimensions"`
	DamageInfo      []DamageBox `json:"damage_info"`
}

// CarPart 部件选项
type CarPart struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Estimate 费用估算
type Estimate struct {
	CostOfRepair float64 `json:"CostOfRepair"`
	Source       string  `json:"source"`
}

// Annotation 已保存的损伤评估
type Annotation struct {
	ID               uint    `json:"id"`
	CarPartID        int     `json:"car_part_id"`
	CarPartName      string  `json:"car_part_name"`
	PartType         string  `json:"part_type"`
	DamageTypeID     int     `json:"damage_type_id"`
	RepairReplaceID  int     `json:"repair_replace_id"`
	ActualCostRepair float64 `json:"actual_cost_repair"`
	ImageName        string  `json:"image_name"`
}

// AnnotationInput 新增/批量保存的请求行
type AnnotationInput struct {
	ReferenceNo      string  `json:"reference_no"`
	ImageName        string  `json:"image_name"`
	CarPartID        int     `json:"car_part_id"`
	DamageTypeID     int     `json:"damage_type_id"`
	RepairReplaceID  int     `json:"repair_replace_id"`
	ActualCostRepair float64 `json:"actual_cost_repair"`
}

// AnnotationUpdate 更新请求
type AnnotationUpdate struct {
	CarPartID        int     `json:"car_part_id"`
	DamageTypeID     int     `json:"damage_type_id"`
	RepairReplaceID  int     `json:"repair_replace_id"`
	ActualCostRepair float64 `json:"actual_cost_repair"`
}

// SaveResult 批量保存单行结果
type SaveResult struct {
	Index     int    `json:"index"`
	ImageName string `json:"image_name"`
	CarPartID int    `json:"car_part_id"`
	Status    string `json:"status"`
	ID        uint   `json:"id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BatchResult 批量保存结果
type BatchResult struct {
	Atomic  bool         `json:"atomic"`
	Results []SaveResult `json:"results"`
	Failed  int          `json:"failed"`
}

// DamageLine 报告行
type DamageLine struct {
	ID               uint    `json:"id"`
	ImageName        string  `json:"image_name"`
	CarPartID        int     `json:"car_part_id"`
	CarPartName      string  `json:"car_part_name"`
	PartType         string  `json:"part_type"`
	DamageTypeID     int     `json:"damage_type_id"`
	DamageType       string  `json:"damage_type"`
	RepairReplaceID  int     `json:"repair_replace_id"`
	RepairReplace    string  `json:"repair_replace"`
	ActualCostRepair float64 `json:"actual_cost_repair"`
}

// ImageReport 单个检测记录的报告
type ImageReport struct {
	ImageID    uint         `json:"image_id"`
	ImageURL   string       `json:"image_url"`
	Status     string       `json:"status"`
	DamageInfo []DamageLine `json:"damage_info"`
	TotalCost  float64      `json:"total_cost"`
}

// Report 参考号汇总报告
type Report struct {
	ReferenceNo string        `json:"reference_no"`
	Images      []ImageReport `json:"images"`
	TotalCost   float64       `json:"total_cost"`
	DamageCount int           `json:"damage_count"`
}
