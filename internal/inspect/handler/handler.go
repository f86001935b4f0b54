package handler

import (
	"errors"

	"github.com/bitfantasy/nimo-inspect/internal/inspect/repository"
	"github.com/bitfantasy/nimo-inspect/internal/inspect/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 业务错误码，HTTP 状态码 = code / 100
const (
	CodeOK              = 0
	CodeBadRequest      = 40000
	CodeNotFound        = 40400
	CodeNoImages        = 40401
	CodeInternal        = 50000
	CodeBatchIncomplete = 50001
)

// Handlers 处理器集合
type Handlers struct {
	Image      *ImageHandler
	CarPart    *CarPartHandler
	Report     *ReportHandler
	Annotation *AnnotationHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		Image:      NewImageHandler(svc.Image, logger),
		CarPart:    NewCarPartHandler(svc.CarPart, svc.Cost, logger),
		Report:     NewReportHandler(svc.Report, logger),
		Annotation: NewAnnotationHandler(svc.Annotation, logger),
	}
}

// RegisterRoutes 注册 /api/v1 下的业务路由
func RegisterRoutes(api *gin.RouterGroup, h *Handlers) {
	api.GET("/images/:referenceNo", h.Image.List)

	carparts := api.Group("/carparts")
	{
		carparts.GET("", h.CarPart.List)
		carparts.GET("/costofrepair", h.CarPart.CostOfRepair)
	}

	api.GET("/imageReports/:referenceNo", h.Report.ImageReports)
	api.GET("/imageReports/:referenceNo/export", h.Report.Export)
	api.GET("/singleimage/:referenceNo/:imageName", h.Report.SingleImage)

	annotations := api.Group("/damageannotations")
	{
		annotations.GET("/:referenceNo/:imageName", h.Annotation.List)
		annotations.POST("", h.Annotation.Create)
		annotations.POST("/save", h.Annotation.SaveAll)
		annotations.PUT("/:id", h.Annotation.Update)
		annotations.DELETE("/:id", h.Annotation.Delete)
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    CodeOK,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    CodeOK,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	ErrorWithData(c, code, message, nil)
}

// ErrorWithData 带数据的错误响应
func ErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, CodeBadRequest, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, CodeNotFound, message)
}

// InternalError 服务器错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, CodeInternal, message)
}

// respondError 按错误类型映射响应，5xx 的细节只写日志
func respondError(c *gin.Context, logger *zap.Logger, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		BadRequest(c, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, notFoundMsg)
	default:
		logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		InternalError(c, "服务器内部错误")
	}
}
