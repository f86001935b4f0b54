package handler

import (
	"errors"
	"strconv"

	"github.com/bitfantasy/nimo-inspect/internal/inspect/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AnnotationHandler struct {
	svc    *service.AnnotationService
	logger *zap.Logger
}

func NewAnnotationHandler(svc *service.AnnotationService, logger *zap.Logger) *AnnotationHandler {
	return &AnnotationHandler{svc: svc, logger: logger}
}

// List GET /damageannotations/:referenceNo/:imageName
func (h *AnnotationHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), c.Param("referenceNo"), c.Param("imageName"))
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	Success(c, items)
}

// Create POST /damageannotations
func (h *AnnotationHandler) Create(c *gin.Context) {
	var req service.CreateAnnotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	item, err := h.svc.Insert(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, "参考号不存在")
		return
	}
	Created(c, item)
}

// Update PUT /damageannotations/:id
func (h *AnnotationHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req service.UpdateAnnotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	item, err := h.svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.logger, err, "损伤评估不存在")
		return
	}
	Success(c, item)
}

// Delete DELETE /damageannotations/:id
func (h *AnnotationHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	Success(c, gin.H{"id": id})
}

// SaveAll POST /damageannotations/save[?atomic=true]
func (h *AnnotationHandler) SaveAll(c *gin.Context) {
	var rows []service.SaveAnnotationRow
	if err := c.ShouldBindJSON(&rows); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	items := service.SaveRowsToRequests(rows)
	atomic, _ := strconv.ParseBool(c.DefaultQuery("atomic", "false"))

	result, err := h.svc.SaveAll(c.Request.Context(), items, atomic)
	if err != nil {
		if errors.Is(err, service.ErrBatchFailed) {
			h.logger.Warn("Batch save incomplete", zap.Bool("atomic", atomic), zap.Int("failed", result.Failed), zap.Int("total", len(items)))
			ErrorWithData(c, CodeBatchIncomplete, err.Error(), result)
			return
		}
		respondError(c, h.logger, err, "")
		return
	}
	Success(c, result)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, "无效的ID")
		return 0, false
	}
	return uint(id), true
}
