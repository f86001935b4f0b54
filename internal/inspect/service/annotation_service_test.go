package service

import (
	"context"
	"testing"

	"github.com/bitfantasy/nimo-inspect/internal/inspect/entity"
	"github.com/bitfantasy/nimo-inspect/internal/inspect/repository"
	"github.com/bitfantasy/nimo-inspect/internal/inspect/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAnnotations(t *testing.T) (*gorm.DB, *AnnotationService, *entity.ImageAssessment) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.SeedCarPart(t, db, 1, "Front Bumper", "Exterior")
	testutil.SeedCarPart(t, db, 2, "Hood", "Exterior")
	ia := testutil.SeedImageAssessment(t, db, "REF1", "https://bucket/REF1.jpg")
	return db, NewAnnotationService(repository.NewRepositories(db), nil), ia
}

func countDamages(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&entity.DamageAssessment{}).Count(&n).Error)
	return n
}

func TestAnnotationService_InsertAndList(t *testing.T) {
	_, svc, ia := setupAnnotations(t)
	ctx := context.Background()

	created, err := svc.Insert(ctx, &CreateAnnotationRequest{
		ReferenceNo:      "REF1",
		ImageName:        "a.jpg",
		CarPartID:        1,
		DamageTypeID:     entity.DamageDent,
		RepairReplaceID:  entity.RepairReplaceReplace,
		ActualCostRepair: 300,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, ia.ID, created.ImageAssessmentID)

	views, err := svc.List(ctx, "REF1", "a.jpg")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Front Bumper", views[0].CarPartName)
	assert.Equal(t, "Exterior", views[0].PartType)
	assert.Equal(t, entity.DamageDent, views[0].DamageTypeID)

	other, err := svc.List(ctx, "REF1", "b.jpg")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestAnnotationService_InsertUnknownReference(t *testing.T) {
	_, svc, _ := setupAnnotations(t)
	_, err := svc.Insert(context.Background(), &CreateAnnotationRequest{
		ReferenceNo: "MISSING",
		ImageName:   "a.jpg",
		CarPartID:   1,
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAnnotationService_InsertRejectsInvalidInput(t *testing.T) {
	_, svc, _ := setupAnnotations(t)
	_, err := svc.Insert(context.Background(), &CreateAnnotationRequest{ReferenceNo: "REF1", ImageName: "a.jpg"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAnnotationService_UpdateAndDelete(t *testing.T) {
	db, svc, ia := setupAnnotations(t)
	ctx := context.Background()
	d := testutil.SeedDamage(t, db, ia.ID, "a.jpg", 1, entity.DamageScratch, entity.RepairReplaceRepair, 200)

	updated, err := svc.Update(ctx, d.ID, &UpdateAnnotationRequest{
		CarPartID:        2,
		DamageTypeID:     entity.DamageBroken,
		RepairReplaceID:  entity.RepairReplaceReplace,
		ActualCostRepair: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.CarPartID)

	var stored entity.DamageAssessment
	require.NoError(t, db.First(&stored, d.ID).Error)
	assert.Equal(t, 2, stored.CarPartID)
	assert.Equal(t, entity.DamageBroken, stored.DamageTypeID)
	assert.Equal(t, entity.RepairReplaceReplace, stored.RepairReplaceID)
	assert.InDelta(t, 500, stored.ActualCostRepair, 0.001)
	assert.Equal(t, "a.jpg", stored.ImageName)

	_, err = svc.Update(ctx, 9999, &UpdateAnnotationRequest{CarPartID: 1})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, d.ID))
	assert.Equal(t, int64(0), countDamages(t, db))
	// 不存在的记录同样视为成功
	assert.NoError(t, svc.Delete(ctx, d.ID))
}

func TestAnnotationService_SaveAllUpsertsByImageAndPart(t *testing.T) {
	db, svc, ia := setupAnnotations(t)
	ctx := context.Background()
	existing := testutil.SeedDamage(t, db, ia.ID, "a.jpg", 1, entity.DamageScratch, entity.RepairReplaceRepair, 200)

	result, err := svc.SaveAll(ctx, []CreateAnnotationRequest{
		{ReferenceNo: "REF1", ImageName: "a.jpg", CarPartID: 1, DamageTypeID: entity.DamageDent, RepairReplaceID: entity.RepairReplaceReplace, ActualCostRepair: 320},
		{ReferenceNo: "REF1", ImageName: "a.jpg", CarPartID: 2, DamageTypeID: entity.DamageScratch, ActualCostRepair: 200},
	}, false)
	require.NoError(t, err)
	require.True(t, result.OK())
	assert.Equal(t, SaveUpdated, result.Results[0].Status)
	assert.Equal(t, existing.ID, result.Results[0].ID)
	assert.Equal(t, SaveInserted, result.Results[1].Status)
	assert.Equal(t, int64(2), countDamages(t, db))

	var stored entity.DamageAssessment
	require.NoError(t, db.First(&stored, existing.ID).Error)
	assert.Equal(t, entity.DamageDent, stored.DamageTypeID)
	assert.InDelta(t, 320, stored.ActualCostRepair, 0.001)
}

func TestAnnotationService_SaveAllContinuesAfterFailure(t *testing.T) {
	db, svc, _ := setupAnnotations(t)

	result, err := svc.SaveAll(context.Background(), []CreateAnnotationRequest{
		{ReferenceNo: "MISSING", ImageName: "a.jpg", CarPartID: 1},
		{ReferenceNo: "REF1", ImageName: "a.jpg", CarPartID: 2, ActualCostRepair: 10},
	}, false)
	require.ErrorIs(t, err, ErrBatchFailed)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, SaveFailed, result.Results[0].Status)
	assert.NotEmpty(t, result.Results[0].Error)
	assert.Equal(t, SaveInserted, result.Results[1].Status)
	assert.Equal(t, int64(1), countDamages(t, db))
}

func TestAnnotationService_SaveAllAtomicRollsBack(t *testing.T) {
	db, svc, _ := setupAnnotations(t)

	result, err := svc.SaveAll(context.Background(), []CreateAnnotationRequest{
		{ReferenceNo: "REF1", ImageName: "a.jpg", CarPartID: 1, ActualCostRepair: 10},
		{ReferenceNo: "MISSING", ImageName: "a.jpg", CarPartID: 2},
		{ReferenceNo: "REF1", ImageName: "b.jpg", CarPartID: 1},
	}, true)
	require.ErrorIs(t, err, ErrBatchFailed)
	assert.True(t, result.Atomic)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, SaveRolledBack, result.Results[0].Status)
	assert.Zero(t, result.Results[0].ID)
	assert.Equal(t, SaveFailed, result.Results[1].Status)
	assert.Equal(t, SaveSkipped, result.Results[2].Status)
	assert.Equal(t, int64(0), countDamages(t, db))
}

func TestAnnotationService_SaveAllAtomicCommits(t *testing.T) {
	db, svc, _ := setupAnnotations(t)

	result, err := svc.SaveAll(context.Background(), []CreateAnnotationRequest{
		{ReferenceNo: "REF1", ImageName: "a.jpg", CarPartID: 1},
		{ReferenceNo: "REF1", ImageName: "b.jpg", CarPartID: 1},
	}, true)
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Equal(t, SaveInserted, result.Results[1].Status)
	assert.Equal(t, int64(2), countDamages(t, db))
}

func TestAnnotationService_RejectsUnknownCarPart(t *testing.T) {
	db, svc, ia := setupAnnotations(t)
	ctx := context.Background()

	_, err := svc.Insert(ctx, &CreateAnnotationRequest{ReferenceNo: "REF1", ImageName: "a.jpg", CarPartID: 42})
	assert.ErrorIs(t, err, ErrInvalidInput)

	d := testutil.SeedDamage(t, db, ia.ID, "a.jpg", 1, entity.DamageScratch, entity.RepairReplaceRepair, 200)
	_, err = svc.Update(ctx, d.ID, &UpdateAnnotationRequest{CarPartID: 42})
	assert.ErrorIs(t, err, ErrInvalidInput)

	result, err := svc.SaveAll(ctx, []CreateAnnotationRequest{
		{ReferenceNo: "REF1", ImageName: "b.jpg", CarPartID: 42},
	}, false)
	require.ErrorIs(t, err, ErrBatchFailed)
	assert.Equal(t, SaveFailed, result.Results[0].Status)
	assert.Contains(t, result.Results[0].Error, "car_part_id 42 does not exist")
	assert.Equal(t, int64(1), countDamages(t, db))
}

func TestAnnotationService_SaveAllInvalidRowDoesNotStopBatch(t *testing.T) {
	db, svc, _ := setupAnnotations(t)

	rows := []SaveAnnotationRow{
		{ReferenceNo: "REF1", ImageName: "a.jpg"},
		{ReferenceNo: "REF1", ImageName: "b.jpg", CarPartID: 1, DamageTypeID: -1},
		{ReferenceNo: "REF1", ImageName: "c.jpg", CarPartID: 1, ActualCostRepair: 99},
	}
	result, err := svc.SaveAll(context.Background(), SaveRowsToRequests(rows), false)
	require.ErrorIs(t, err, ErrBatchFailed)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, SaveFailed, result.Results[0].Status)
	assert.Contains(t, result.Results[0].Error, "car_part_id must be positive")
	assert.Equal(t, SaveFailed, result.Results[1].Status)
	assert.Equal(t, SaveInserted, result.Results[2].Status)
	assert.Equal(t, int64(1), countDamages(t, db))
}
