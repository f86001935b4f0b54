package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-inspect/internal/inspect/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const carPartsCacheKey = "carparts:all"

// CarPartOption 部件下拉选项
type CarPartOption struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CarPartService 部件主数据服务
type CarPartService struct {
	repo     *repository.CarPartRepository
	rdb      *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCarPartService 创建部件服务
func NewCarPartService(repo *repository.CarPartRepository, rdb *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *CarPartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CarPartService{repo: repo, rdb: rdb, cacheTTL: cacheTTL, logger: logger}
}

// List 全部部件，按 id 排序
func (s *CarPartService) List(ctx context.Context) ([]CarPartOption, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, carPartsCacheKey).Result(); err == nil {
			var opts []CarPartOption
			if json.Unmarshal([]byte(cached), &opts) == nil {
				return opts, nil
			}
		}
	}

	parts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list car parts: %w", err)
	}
	opts := make([]CarPartOption, len(parts))
	for i, p := range parts {
		opts[i] = CarPartOption{ID: p.ID, Name: p.Name}
	}

	if s.rdb != nil {
		if data, err := json.Marshal(opts); err == nil {
			if err := s.rdb.Set(ctx, carPartsCacheKey, data, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("Car part cache write failed", zap.Error(err))
			}
		}
	}
	return opts, nil
}
