package service

import (
	"context"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-inspect/internal/inspect/entity"
	"github.com/bitfantasy/nimo-inspect/internal/inspect/repository"
	"github.com/bitfantasy/nimo-inspect/internal/inspect/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCostService_Estimate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedCarPart(t, db, 7, "Front Bumper", "Exterior")
	testutil.SeedCostRule(t, db, 7, entity.DamageDent, entity.RepairReplaceRepair, 450.5)

	svc := NewCostService(repository.NewCostRuleRepository(db), nil, 0, nil)
	ctx := context.Background()

	tests := []struct {
		name          string
		part          int
		damage        entity.DamageType
		repairReplace entity.RepairReplace
		wantCost      float64
		wantSource    string
	}{
		{"exact rule", 7, entity.DamageDent, entity.RepairReplaceRepair, 450.5, CostSourceRule},
		{"other decision falls back", 7, entity.DamageDent, entity.RepairReplaceReplace, 300, CostSourceFallback},
		{"scratch fallback", 99, entity.DamageScratch, entity.RepairReplaceRepair, 200, CostSourceFallback},
		{"broken fallback", 99, entity.DamageBroken, entity.RepairReplaceNA, 500, CostSourceFallback},
		{"na fallback", 99, entity.DamageNA, entity.RepairReplaceRepair, 0, CostSourceFallback},
		{"unknown damage fallback", 99, entity.DamageType(42), entity.RepairReplaceRepair, 0, CostSourceFallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est, err := svc.Estimate(ctx, tt.part, tt.damage, tt.repairReplace)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCost, est.CostOfRepair)
			assert.Equal(t, tt.wantSource, est.Source)
		})
	}
}

func TestCostService_DatabaseFailureIsSurfaced(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewCostService(repository.NewCostRuleRepository(db), nil, 0, nil)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = svc.Estimate(context.Background(), 1, entity.DamageScratch, entity.RepairReplaceRepair)
	assert.Error(t, err)
}

func TestFallbackCost(t *testing.T) {
	assert.Equal(t, 200.0, FallbackCost(entity.DamageScratch))
	assert.Equal(t, 300.0, FallbackCost(entity.DamageDent))
	assert.Equal(t, 500.0, FallbackCost(entity.DamageBroken))
	assert.Equal(t, 0.0, FallbackCost(entity.DamageType(-1)))
}

func TestCarPartService_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedCarPart(t, db, 3, "Hood", "Exterior")
	testutil.SeedCarPart(t, db, 1, "Door", "Exterior")

	svc := NewCarPartService(repository.NewCarPartRepository(db), nil, 0, nil)
	parts, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []CarPartOption{{ID: 1, Name: "Door"}, {ID: 3, Name: "Hood"}}, parts)
}

func TestCostService_CachesOnlyRuleHits(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedCarPart(t, db, 7, "Front Bumper", "Exterior")
	testutil.SeedCostRule(t, db, 7, entity.DamageDent, entity.RepairReplaceRepair, 450.5)

	// 不可达的 redis：每次写缓存都会留下一条告警
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	core, logs := observer.New(zapcore.WarnLevel)
	svc := NewCostService(repository.NewCostRuleRepository(db), rdb, time.Minute, zap.New(core))
	ctx := context.Background()

	est, err := svc.Estimate(ctx, 7, entity.DamageScratch, entity.RepairReplaceRepair)
	require.NoError(t, err)
	assert.Equal(t, CostSourceFallback, est.Source)
	assert.Zero(t, logs.FilterMessage("Cost cache write failed").Len())

	est, err = svc.Estimate(ctx, 7, entity.DamageDent, entity.RepairReplaceRepair)
	require.NoError(t, err)
	assert.Equal(t, CostSourceRule, est.Source)
	assert.Equal(t, 1, logs.FilterMessage("Cost cache write failed").Len())

	// 之前走默认值的组合新增规则后立即生效
	testutil.SeedCostRule(t, db, 7, entity.DamageScratch, entity.RepairReplaceRepair, 120)
	est, err = svc.Estimate(ctx, 7, entity.DamageScratch, entity.RepairReplaceRepair)
	require.NoError(t, err)
	assert.Equal(t, CostSourceRule, est.Source)
	assert.InDelta(t, 120, est.CostOfRepair, 0.001)
}
