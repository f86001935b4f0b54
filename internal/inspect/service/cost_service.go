package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bitfantasy/nimo-inspect/internal/inspect/entity"
	"github.com/bitfantasy/nimo-inspect/internal/inspect/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// 费用来源
const (
	CostSourceRule     = "rule"
	CostSourceFallback = "fallback"
)

// 没有费用规则时按损伤类型取固定值
var fallbackCosts = map[entity.DamageType]float64{
	entity.DamageScratch: 200,
	entity.DamageDent:    300,
	entity.DamageBroken:  500,
}

// FallbackCost 默认费用，其余损伤类型为 0
func FallbackCost(damageType entity.DamageType) float64 {
	return fallbackCosts[damageType]
}

// Estimate 费用估算结果
type Estimate struct {
	CostOfRepair float64 `json:"CostOfRepair"`
	Source       string  `json:"source"`
}

// CostService 维修费用估算
type CostService struct {
	repo     *repository.CostRuleRepository
	rdb      *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCostService 创建费用服务，rdb 为 nil 时不缓存
func NewCostService(repo *repository.CostRuleRepository, rdb *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *CostService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CostService{repo: repo, rdb: rdb, cacheTTL: cacheTTL, logger: logger}
}

func costCacheKey(carPartID int, damageType entity.DamageType, repairReplace entity.RepairReplace) string {
	return "cost:" + strconv.Itoa(carPartID) + ":" + strconv.Itoa(int(damageType)) + ":" + strconv.Itoa(int(repairReplace))
}

// Estimate 精确匹配规则取规则费用，否则按损伤类型取默认值
//
// 未匹配不是错误，只有数据库故障才返回 error。
func (s *CostService) Estimate(ctx context.Context, carPartID int, damageType entity.DamageType, repairReplace entity.RepairReplace) (Estimate, error) {
	cacheKey := costCacheKey(carPartID, damageType, repairReplace)
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var est Estimate
			if json.Unmarshal([]byte(cached), &est) == nil {
				return est, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("Cost cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	est := Estimate{CostOfRepair: FallbackCost(damageType), Source: CostSourceFallback}
	rule, err := s.repo.Find(ctx, carPartID, damageType, repairReplace)
	switch {
	case err == nil:
		est = Estimate{CostOfRepair: rule.CostOfRepair, Source: CostSourceRule}
	case errors.Is(err, repository.ErrNotFound):
	default:
		return Estimate{}, fmt.Errorf("find cost rule: %w", err)
	}

	// 只缓存规则命中，默认值不缓存，新增规则后立即生效
	if s.rdb != nil && est.Source == CostSourceRule {
		if data, err := json.Marshal(est); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, data, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("Cost cache write failed", zap.String("key", cacheKey), zap.Error(err))
			}
		}
	}
	return est, nil
}
