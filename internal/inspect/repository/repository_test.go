package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/bitfantasy/nimo-inspect/internal/inspect/entity"
	"github.com/bitfantasy/nimo-inspect/internal/inspect/repository"
	"github.com/bitfantasy/nimo-inspect/internal/inspect/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDamageAssessment_ListByReferenceAndImage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedCarPart(t, db, 1, "Door", "Exterior")
	ia := testutil.SeedImageAssessment(t, db, "REF1", "")
	other := testutil.SeedImageAssessment(t, db, "REF2", "")
	testutil.SeedDamage(t, db, ia.ID, "a.jpg", 1, entity.DamageDent, entity.RepairReplaceRepair, 300)
	testutil.SeedDamage(t, db, ia.ID, "a.jpg", 77, entity.DamageDent, entity.RepairReplaceRepair, 300)
	testutil.SeedDamage(t, db, other.ID, "a.jpg", 1, entity.DamageDent, entity.RepairReplaceRepair, 300)

	repos := repository.NewRepositories(db)
	items, err := repos.DamageAssessment.ListByReferenceAndImage(context.Background(), "REF1", "a.jpg")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].CarPart)
	assert.Equal(t, "Door", items[0].CarPart.Name)
}

func TestDamageAssessment_FindAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ia := testutil.SeedImageAssessment(t, db, "REF1", "")
	d := testutil.SeedDamage(t, db, ia.ID, "a.jpg", 1, entity.DamageDent, entity.RepairReplaceRepair, 300)
	repos := repository.NewRepositories(db)
	ctx := context.Background()

	found, err := repos.DamageAssessment.FindByImageAndPart(ctx, "a.jpg", 1)
	require.NoError(t, err)
	assert.Equal(t, d.ID, found.ID)

	_, err = repos.DamageAssessment.FindByImageAndPart(ctx, "a.jpg", 2)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repos.DamageAssessment.Delete(ctx, d.ID))
	_, err = repos.DamageAssessment.FindByID(ctx, d.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, repos.DamageAssessment.Delete(ctx, d.ID))
}

func TestRepositories_TransactionRollsBack(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.ImageAssessment.Create(ctx, &entity.ImageAssessment{ReferenceNo: "REF1"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repos.ImageAssessment.FirstByReferenceNo(ctx, "REF1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCostRule_Find(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedCostRule(t, db, 5, entity.DamageScratch, entity.RepairReplaceReplace, 120)
	repos := repository.NewRepositories(db)
	ctx := context.Background()

	rule, err := repos.CostRule.Find(ctx, 5, entity.DamageScratch, entity.RepairReplaceReplace)
	require.NoError(t, err)
	assert.InDelta(t, 120, rule.CostOfRepair, 0.001)

	_, err = repos.CostRule.Find(ctx, 5, entity.DamageScratch, entity.RepairReplaceRepair)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCarPart_FindByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedCarPart(t, db, 3, "Headlamp", "Lighting")
	repos := repository.NewRepositories(db)

	part, err := repos.CarPart.FindByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Headlamp", part.Name)

	_, err = repos.CarPart.FindByID(context.Background(), 4)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}
