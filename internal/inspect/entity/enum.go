package entity

// DamageType 损伤类型（持久化编码）
type DamageType int

const (
	DamageScratch DamageType = 0
	DamageDent    DamageType = 1
	DamageBroken  DamageType = 2
	DamageNA      DamageType = 3
)

// String 损伤类型显示名，未知编码返回 Unknown
func (t DamageType) String() string {
	switch t {
	case DamageScratch:
		return "Scratch"
	case DamageDent:
		return "Dent"
	case DamageBroken:
		return "Broken"
	default:
		return "Unknown"
	}
}

// RepairReplace 维修/更换决定（持久化编码，0=Repair）
//
// 与坐标文件中的类型标记（"1" 表示 Repair）是两套独立编码，互不换算。
type RepairReplace int

const (
	RepairReplaceRepair  RepairReplace = 0
	RepairReplaceReplace RepairReplace = 1
	RepairReplaceNA      RepairReplace = 2
)

func (r RepairReplace) String() string {
	switch r {
	case RepairReplaceRepair:
		return "Repair"
	case RepairReplaceReplace:
		return "Replace"
	case RepairReplaceNA:
		return "NA"
	default:
		return "Unknown"
	}
}
