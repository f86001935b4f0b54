package handler

import (
	"errors"

	"github.com/bitfantasy/nimo-inspect/internal/inspect/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ImageHandler struct {
	svc    *service.ImageService
	logger *zap.Logger
}

func NewImageHandler(svc *service.ImageService, logger *zap.Logger) *ImageHandler {
	return &ImageHandler{svc: svc, logger: logger}
}

// List GET /images/:referenceNo
func (h *ImageHandler) List(c *gin.Context) {
	referenceNo := c.Param("referenceNo")

	images, err := h.svc.ListAnnotatedImages(c.Request.Context(), referenceNo)
	if err != nil {
		if errors.Is(err, service.ErrNoImages) {
			Error(c, CodeNoImages, service.ErrNoImages.Error())
			return
		}
		respondError(c, h.logger, err, "")
		return
	}
	Success(c, images)
}
