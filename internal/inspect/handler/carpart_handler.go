package handler

import (
	"strconv"

	"github.com/bitfantasy/nimo-inspect/internal/inspect/entity"
	"github.com/bitfantasy/nimo-inspect/internal/inspect/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CarPartHandler struct {
	parts  *service.CarPartService
	cost   *service.CostService
	logger *zap.Logger
}

func NewCarPartHandler(parts *service.CarPartService, cost *service.CostService, logger *zap.Logger) *CarPartHandler {
	return &CarPartHandler{parts: parts, cost: cost, logger: logger}
}

// List GET /carparts
func (h *CarPartHandler) List(c *gin.Context) {
	parts, err := h.parts.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	Success(c, parts)
}

// CostOfRepair GET /carparts/costofrepair?carPartMasterId=&damageTypeId=&repairReplaceId=
func (h *CarPartHandler) CostOfRepair(c *gin.Context) {
	var ids [3]int
	for i, name := range []string{"carPartMasterId", "damageTypeId", "repairReplaceId"} {
		raw := c.Query(name)
		if raw == "" {
			BadRequest(c, "缺少参数 "+name)
			return
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			BadRequest(c, "参数 "+name+" 必须为整数")
			return
		}
		ids[i] = v
	}

	est, err := h.cost.Estimate(c.Request.Context(), ids[0], entity.DamageType(ids[1]), entity.RepairReplace(ids[2]))
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	Success(c, est)
}
