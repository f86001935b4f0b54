package service

import (
	"github.com/bitfantasy/nimo-inspect/internal/config"
	"github.com/bitfantasy/nimo-inspect/internal/inspect/repository"
	"github.com/bitfantasy/nimo-inspect/internal/inspect/storage"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services 服务集合
type Services struct {
	Image      *ImageService
	Cost       *CostService
	CarPart    *CarPartService
	Annotation *AnnotationService
	Report     *ReportService
}

// NewServices 创建服务集合，rdb 可为 nil
func NewServices(repos *repository.Repositories, store storage.ObjectStore, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *Services {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Services{
		Image: NewImageService(store, ImageServiceOptions{
			RootPrefix:   cfg.Storage.RootPrefix,
			SignedURLTTL: cfg.Storage.SignedURLTTL,
			FetchTimeout: cfg.Storage.FetchTimeout,
			Concurrency:  cfg.Storage.Concurrency,
		}, logger.Named("image")),
		Cost:       NewCostService(repos.CostRule, rdb, cfg.Cost.CacheTTL, logger.Named("cost")),
		CarPart:    NewCarPartService(repos.CarPart, rdb, cfg.Cost.CacheTTL, logger.Named("carpart")),
		Annotation: NewAnnotationService(repos, logger.Named("annotation")),
		Report:     NewReportService(repos),
	}
}
