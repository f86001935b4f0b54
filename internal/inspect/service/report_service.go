package service

import (
	"context"
	"fmt"
	"math"

	"github.com/bitfantasy/nimo-inspect/internal/inspect/entity"
	"github.com/bitfantasy/nimo-inspect/internal/inspect/repository"
	"github.com/xuri/excelize/v2"
)

// DamageLine 报告中的一条损伤
type DamageLine struct {
	ID               uint                 `json:"id"`
	ImageName        string               `json:"image_name"`
	CarPartID        int                  `json:"car_part_id"`
	CarPartName      string               `json:"car_part_name"`
	PartType         string               `json:"part_type"`
	DamageTypeID     entity.DamageType    `json:"damage_type_id"`
	DamageType       string               `json:"damage_type"`
	RepairReplaceID  entity.RepairReplace `json:"repair_replace_id"`
	RepairReplace    string               `json:"repair_replace"`
	ActualCostRepair float64              `json:"actual_cost_repair"`
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

// ImageDetails 单图报告头部
type ImageDetails struct {
	ReferenceNo        string `json:"reference_no"`
	S3AssessedImageURL string `json:"s3_assessed_image_url"`
	Status             string `json:"status"`
}

// SingleImageReport 单图报告
type SingleImageReport struct {
	ImageDetails      ImageDetails `json:"image_details"`
	DamageAnnotations []DamageLine `json:"damage_annotations"`
}

// ReportService 报告服务
type ReportService struct {
	repos *repository.Repositories
}

// NewReportService 创建报告服务
func NewReportService(repos *repository.Repositories) *ReportService {
	return &ReportService{repos: repos}
}

// ImageReports 参考号下全部检测记录及其损伤，没有检测记录时返回 repository.ErrNotFound
func (s *ReportService) ImageReports(ctx context.Context, referenceNo string) (*Report, error) {
	assessments, err := s.repos.ImageAssessment.ListByReferenceNo(ctx, referenceNo)
	if err != nil {
		return nil, fmt.Errorf("list image assessments: %w", err)
	}
	if len(assessments) == 0 {
		return nil, fmt.Errorf("reference %s: %w", referenceNo, repository.ErrNotFound)
	}

	ids := make([]uint, len(assessments))
	for i, a := range assessments {
		ids[i] = a.ID
	}
	damages, err := s.repos.DamageAssessment.ListByImageAssessmentIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list damage assessments: %w", err)
	}
	byAssessment := make(map[uint][]entity.DamageAssessment, len(assessments))
	for _, d := range damages {
		byAssessment[d.ImageAssessmentID] = append(byAssessment[d.ImageAssessmentID], d)
	}

	report := &Report{ReferenceNo: referenceNo, Images: make([]ImageReport, len(assessments))}
	for i, a := range assessments {
		lines := toDamageLines(byAssessment[a.ID])
		img := ImageReport{
			ImageID:    a.ID,
			ImageURL:   a.S3AssessedImageURL,
			Status:     a.Status,
			DamageInfo: lines,
			TotalCost:  sumCost(lines),
		}
		report.Images[i] = img
		report.TotalCost += img.TotalCost
		report.DamageCount += len(lines)
	}
	report.TotalCost = roundCents(report.TotalCost)
	return report, nil
}

// SingleImage 参考号首个检测记录下指定图片的损伤
//
// 没有检测记录或该图片没有损伤时返回 repository.ErrNotFound。
func (s *ReportService) SingleImage(ctx context.Context, referenceNo, imageName string) (*SingleImageReport, error) {
	assessment, err := s.repos.ImageAssessment.FirstByReferenceNo(ctx, referenceNo)
	if err != nil {
		return nil, fmt.Errorf("find image assessment: %w", err)
	}
	damages, err := s.repos.DamageAssessment.ListByAssessmentAndImage(ctx, assessment.ID, imageName)
	if err != nil {
		return nil, fmt.Errorf("list damage assessments: %w", err)
	}
	if len(damages) == 0 {
		return nil, fmt.Errorf("image %s: %w", imageName, repository.ErrNotFound)
	}
	return &SingleImageReport{
		ImageDetails: ImageDetails{
			ReferenceNo:        assessment.ReferenceNo,
			S3AssessedImageURL: assessment.S3AssessedImageURL,
			Status:             assessment.Status,
		},
		DamageAnnotations: toDamageLines(damages),
	}, nil
}

var reportExportHeaders = []string{"图片", "部件", "部件类型", "损伤类型", "维修/更换", "费用"}

// ExportXLSX 导出报告为xlsx，末行为合计
func (s *ReportService) ExportXLSX(ctx context.Context, referenceNo string) (*excelize.File, string, error) {
	report, err := s.ImageReports(ctx, referenceNo)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	sheet := "Report"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	for i, h := range reportExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	row := 2
	for _, img := range report.Images {
		for _, d := range img.DamageInfo {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), d.ImageName)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), d.CarPartName)
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), d.PartType)
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), d.DamageType)
			f.SetCellValue(sheet, fmt.Sprintf("E%d", row), d.RepairReplace)
			f.SetCellValue(sheet, fmt.Sprintf("F%d", row), d.ActualCostRepair)
			row++
		}
	}

	totalStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "合计")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("损伤数: %d", report.DamageCount))
	f.SetCellValue(sheet, fmt.Sprintf("F%d", row), report.TotalCost)
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("F%d", row), totalStyle)

	colWidths := []float64{28, 20, 12, 12, 12, 12}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	return f, fmt.Sprintf("Report_%s.xlsx", referenceNo), nil
}

func toDamageLines(items []entity.DamageAssessment) []DamageLine {
	lines := make([]DamageLine, len(items))
	for i, item := range items {
		lines[i] = DamageLine{
			ID:               item.ID,
			ImageName:        item.ImageName,
			CarPartID:        item.CarPartID,
			DamageTypeID:     item.DamageTypeID,
			DamageType:       item.DamageTypeID.String(),
			RepairReplaceID:  item.RepairReplaceID,
			RepairReplace:    item.RepairReplaceID.String(),
			ActualCostRepair: item.ActualCostRepair,
		}
		if item.CarPart != nil {
			lines[i].CarPartName = item.CarPart.Name
			lines[i].PartType = item.CarPart.PartType
		}
	}
	return lines
}

func sumCost(lines []DamageLine) float64 {
	var total float64
	for _, l := range lines {
		total += l.ActualCostRepair
	}
	return roundCents(total)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
