package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bitfantasy/nimo-inspect/internal/inspect/entity"
	"github.com/bitfantasy/nimo-inspect/internal/inspect/repository"
	"go.uber.org/zap"
)

// CreateAnnotationRequest 新增损伤评估请求
type CreateAnnotationRequest struct {
	ReferenceNo      string               `json:"reference_no" binding:"required"`
	ImageName        string               `json:"image_name" binding:"required"`
	CarPartID        int                  `json:"car_part_id" binding:"required"`
	DamageTypeID     entity.DamageType    `json:"damage_type_id" binding:"min=0"`
	RepairReplaceID  entity.RepairReplace `json:"repair_replace_id" binding:"min=0"`
	ActualCostRepair float64              `json:"actual_cost_repair" binding:"min=0"`
}

// SaveAnnotationRow 批量保存的请求行
//
// 不带 binding 校验，逐行校验由 SaveAll 完成，单行不合法只影响该行。
type SaveAnnotationRow struct {
	ReferenceNo      string               `json:"reference_no"`
	ImageName        string               `json:"image_name"`
	CarPartID        int                  `json:"car_part_id"`
	DamageTypeID     entity.DamageType    `json:"damage_type_id"`
	RepairReplaceID  entity.RepairReplace `json:"repair_replace_id"`
	ActualCostRepair float64              `json:"actual_cost_repair"`
}

// SaveRowsToRequests 转换为 SaveAll 的入参
func SaveRowsToRequests(rows []SaveAnnotationRow) []CreateAnnotationRequest {
	items := make([]CreateAnnotationRequest, len(rows))
	for i, row := range rows {
		items[i] = CreateAnnotationRequest(row)
	}
	return items
}

// UpdateAnnotationRequest 更新请求，四个字段整体替换
type UpdateAnnotationRequest struct {
	CarPartID        int                  `json:"car_part_id" binding:"required"`
	DamageTypeID     entity.DamageType    `json:"damage_type_id" binding:"min=0"`
	RepairReplaceID  entity.RepairReplace `json:"repair_replace_id" binding:"min=0"`
	ActualCostRepair float64              `json:"actual_cost_repair" binding:"min=0"`
}

// AnnotationView 损伤评估列表项（含部件信息）
type AnnotationView struct {
	ID               uint                 `json:"id"`
	CarPartID        int                  `json:"car_part_id"`
	CarPartName      string               `json:"car_part_name"`
	PartType         string               `json:"part_type"`
	DamageTypeID     entity.DamageType    `json:"damage_type_id"`
	RepairReplaceID  entity.RepairReplace `json:"repair_replace_id"`
	ActualCostRepair float64              `json:"actual_cost_repair"`
	ImageName        string               `json:"image_name"`
}

// 批量保存单行结果
const (
	SaveUpdated    = "updated"
	SaveInserted   = "inserted"
	SaveFailed     = "failed"
	SaveSkipped    = "skipped"     // 事务模式下失败行之后未执行
	SaveRolledBack = "rolled_back" // 事务模式下失败行之前已执行但被回滚
)

// SaveResult 批量保存中单行的结果
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

// OK 全部行成功
func (b *BatchResult) OK() bool {
	return b.Failed == 0
}

// ErrBatchFailed 批量保存存在失败行
var ErrBatchFailed = errors.New("batch save failed")

// AnnotationService 损伤评估维护
type AnnotationService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewAnnotationService 创建损伤评估服务
func NewAnnotationService(repos *repository.Repositories, logger *zap.Logger) *AnnotationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnotationService{repos: repos, logger: logger}
}

// List 参考号下某张图片的损伤评估
func (s *AnnotationService) List(ctx context.Context, referenceNo, imageName string) ([]AnnotationView, error) {
	items, err := s.repos.DamageAssessment.ListByReferenceAndImage(ctx, referenceNo, imageName)
	if err != nil {
		return nil, fmt.Errorf("list damage assessments: %w", err)
	}
	return toAnnotationViews(items), nil
}

// Insert 新增一条损伤评估，参考号没有检测案件时返回 repository.ErrNotFound
func (s *AnnotationService) Insert(ctx context.Context, req *CreateAnnotationRequest) (*entity.DamageAssessment, error) {
	if err := validateAnnotation(req); err != nil {
		return nil, err
	}
	if err := checkCarPart(ctx, s.repos, req.CarPartID); err != nil {
		return nil, err
	}
	assessment, err := s.repos.ImageAssessment.FirstByReferenceNo(ctx, req.ReferenceNo)
	if err != nil {
		return nil, fmt.Errorf("find image assessment: %w", err)
	}

	item := &entity.DamageAssessment{
		ImageAssessmentID: assessment.ID,
		CarPartID:         req.CarPartID,
		DamageTypeID:      req.DamageTypeID,
		RepairReplaceID:   req.RepairReplaceID,
		ActualCostRepair:  req.ActualCostRepair,
		ImageName:         req.ImageName,
	}
	if err := s.repos.DamageAssessment.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create damage assessment: %w", err)
	}
	return item, nil
}

// Update 整体替换可编辑字段，记录不存在时返回 repository.ErrNotFound
func (s *AnnotationService) Update(ctx context.Context, id uint, req *UpdateAnnotationRequest) (*entity.DamageAssessment, error) {
	if req.CarPartID <= 0 || req.ActualCostRepair < 0 || req.DamageTypeID < 0 || req.RepairReplaceID < 0 {
		return nil, ErrInvalidInput
	}
	item, err := s.repos.DamageAssessment.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find damage assessment: %w", err)
	}
	if err := checkCarPart(ctx, s.repos, req.CarPartID); err != nil {
		return nil, err
	}
	if err := s.repos.DamageAssessment.UpdateFields(ctx, id, req.CarPartID, req.DamageTypeID, req.RepairReplaceID, req.ActualCostRepair); err != nil {
		return nil, fmt.Errorf("update damage assessment: %w", err)
	}
	item.CarPartID = req.CarPartID
	item.DamageTypeID = req.DamageTypeID
	item.RepairReplaceID = req.RepairReplaceID
	item.ActualCostRepair = req.ActualCostRepair
	return item, nil
}

// Delete 删除损伤评估，不区分记录是否存在
func (s *AnnotationService) Delete(ctx context.Context, id uint) error {
	if err := s.repos.DamageAssessment.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete damage assessment: %w", err)
	}
	return nil
}

// SaveAll 按 (图片名, 部件) 批量更新或插入
//
// 默认逐行执行且不包事务：某行失败不影响后续行，已成功的行不回滚。
// atomic 为 true 时整批在一个事务内执行，遇到第一个失败即回滚。
// 存在失败行时返回的 error 包装 ErrBatchFailed，同时返回完整的逐行结果。
func (s *AnnotationService) SaveAll(ctx context.Context, items []CreateAnnotationRequest, atomic bool) (*BatchResult, error) {
	if atomic {
		return s.saveAtomic(ctx, items)
	}

	result := &BatchResult{Results: make([]SaveResult, len(items))}
	for i := range items {
		res, err := s.saveOne(ctx, s.repos, i, &items[i])
		if err != nil {
			s.logger.Warn("Save damage annotation failed",
				zap.Int("index", i),
				zap.String("image_name", items[i].ImageName),
				zap.Int("car_part_id", items[i].CarPartID),
				zap.Error(err),
			)
			result.Failed++
		}
		result.Results[i] = res
	}
	if !result.OK() {
		return result, fmt.Errorf("%w: %d of %d rows", ErrBatchFailed, result.Failed, len(items))
	}
	return result, nil
}

func (s *AnnotationService) saveAtomic(ctx context.Context, items []CreateAnnotationRequest) (*BatchResult, error) {
	result := &BatchResult{Atomic: true, Results: make([]SaveResult, len(items))}
	for i := range items {
		result.Results[i] = SaveResult{
			Index:     i,
			ImageName: items[i].ImageName,
			CarPartID: items[i].CarPartID,
			Status:    SaveSkipped,
		}
	}

	failedAt := -1
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		for i := range items {
			res, err := s.saveOne(ctx, tx, i, &items[i])
			result.Results[i] = res
			if err != nil {
				failedAt = i
				return err
			}
		}
		return nil
	})
	if err == nil {
		return result, nil
	}

	s.logger.Warn("Atomic batch save rolled back", zap.Int("failed_index", failedAt), zap.Error(err))
	for i := 0; i < failedAt; i++ {
		result.Results[i].Status = SaveRolledBack
		result.Results[i].ID = 0
	}
	if failedAt < 0 {
		// 提交本身失败
		for i := range result.Results {
			result.Results[i].Status = SaveFailed
			result.Results[i].Error = err.Error()
		}
		result.Failed = len(items)
	} else {
		result.Failed = 1
	}
	return result, fmt.Errorf("%w: %v", ErrBatchFailed, err)
}

func (s *AnnotationService) saveOne(ctx context.Context, repos *repository.Repositories, index int, item *CreateAnnotationRequest) (SaveResult, error) {
	res := SaveResult{Index: index, ImageName: item.ImageName, CarPartID: item.CarPartID}
	fail := func(err error) (SaveResult, error) {
		res.Status = SaveFailed
		res.Error = err.Error()
		return res, err
	}

	if err := validateAnnotation(item); err != nil {
		return fail(err)
	}
	if err := checkCarPart(ctx, repos, item.CarPartID); err != nil {
		return fail(err)
	}

	existing, err := repos.DamageAssessment.FindByImageAndPart(ctx, item.ImageName, item.CarPartID)
	switch {
	case err == nil:
		if err := repos.DamageAssessment.UpdateFields(ctx, existing.ID, item.CarPartID, item.DamageTypeID, item.RepairReplaceID, item.ActualCostRepair); err != nil {
			return fail(fmt.Errorf("update damage assessment: %w", err))
		}
		res.Status = SaveUpdated
		res.ID = existing.ID
		return res, nil
	case !errors.Is(err, repository.ErrNotFound):
		return fail(fmt.Errorf("match damage assessment: %w", err))
	}

	assessment, err := repos.ImageAssessment.FirstByReferenceNo(ctx, item.ReferenceNo)
	if err != nil {
		return fail(fmt.Errorf("find image assessment: %w", err))
	}
	created := &entity.DamageAssessment{
		ImageAssessmentID: assessment.ID,
		CarPartID:         item.CarPartID,
		DamageTypeID:      item.DamageTypeID,
		RepairReplaceID:   item.RepairReplaceID,
		ActualCostRepair:  item.ActualCostRepair,
		ImageName:         item.ImageName,
	}
	if err := repos.DamageAssessment.Create(ctx, created); err != nil {
		return fail(fmt.Errorf("create damage assessment: %w", err))
	}
	res.Status = SaveInserted
	res.ID = created.ID
	return res, nil
}

func validateAnnotation(req *CreateAnnotationRequest) error {
	switch {
	case req.ReferenceNo == "":
		return fmt.Errorf("%w: reference_no is required", ErrInvalidInput)
	case req.ImageName == "":
		return fmt.Errorf("%w: image_name is required", ErrInvalidInput)
	case req.CarPartID <= 0:
		return fmt.Errorf("%w: car_part_id must be positive", ErrInvalidInput)
	case req.DamageTypeID < 0:
		return fmt.Errorf("%w: damage_type_id must not be negative", ErrInvalidInput)
	case req.RepairReplaceID < 0:
		return fmt.Errorf("%w: repair_replace_id must not be negative", ErrInvalidInput)
	case req.ActualCostRepair < 0:
		return fmt.Errorf("%w: actual_cost_repair must not be negative", ErrInvalidInput)
	}
	return nil
}

// checkCarPart 部件必须存在于部件表，否则报告中无法展示该记录
func checkCarPart(ctx context.Context, repos *repository.Repositories, carPartID int) error {
	if _, err := repos.CarPart.FindByID(ctx, carPartID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: car_part_id %d does not exist", ErrInvalidInput, carPartID)
		}
		return fmt.Errorf("find car part: %w", err)
	}
	return nil
}

func toAnnotationViews(items []entity.DamageAssessment) []AnnotationView {
	views := make([]AnnotationView, len(items))
	for i, item := range items {
		views[i] = AnnotationView{
			ID:               item.ID,
			CarPartID:        item.CarPartID,
			DamageTypeID:     item.DamageTypeID,
			RepairReplaceID:  item.RepairReplaceID,
			ActualCostRepair: item.ActualCostRepair,
			ImageName:        item.ImageName,
		}
		if item.CarPart != nil {
			views[i].CarPartName = item.CarPart.Name
			views[i].PartType = item.CarPart.PartType
		}
	}
	return views
}
