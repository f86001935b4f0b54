package handler

import (
	"github.com/bitfantasy/nimo-inspect/internal/inspect/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReportHandler struct {
	svc    *service.ReportService
	logger *zap.Logger
}

func NewReportHandler(svc *service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{svc: svc, logger: logger}
}

// ImageReports GET /imageReports/:referenceNo
func (h *ReportHandler) ImageReports(c *gin.Context) {
	report, err := h.svc.ImageReports(c.Request.Context(), c.Param("referenceNo"))
	if err != nil {
		respondError(c, h.logger, err, "No images found for this reference number")
		return
	}
	Success(c, report)
}

// SingleImage GET /singleimage/:referenceNo/:imageName
func (h *ReportHandler) SingleImage(c *gin.Context) {
	report, err := h.svc.SingleImage(c.Request.Context(), c.Param("referenceNo"), c.Param("imageName"))
	if err != nil {
		respondError(c, h.logger, err, "No damage data found for the specified image")
		return
	}
	Success(c, report)
}

// Export GET /imageReports/:referenceNo/export
func (h *ReportHandler) Export(c *gin.Context) {
	f, filename, err := h.svc.ExportXLSX(c.Request.Context(), c.Param("referenceNo"))
	if err != nil {
		respondError(c, h.logger, err, "No images found for this reference number")
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		h.logger.Error("Write xlsx failed", zap.Error(err))
	}
}
