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

func seedReport(t *testing.T) (*gorm.DB, *ReportService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.SeedCarPart(t, db, 1, "Front Bumper", "Exterior")
	testutil.SeedCarPart(t, db, 2, "Headlamp", "Lighting")
	first := testutil.SeedImageAssessment(t, db, "REF1", "https://bucket/front.jpg")
	second := testutil.SeedImageAssessment(t, db, "REF1", "https://bucket/rear.jpg")
	testutil.SeedImageAssessment(t, db, "REF2", "https://bucket/other.jpg")

	testutil.SeedDamage(t, db, first.ID, "front.jpg", 1, entity.DamageDent, entity.RepairReplaceRepair, 300)
	testutil.SeedDamage(t, db, first.ID, "front.jpg", 2, entity.DamageBroken, entity.RepairReplaceReplace, 500.25)
	testutil.SeedDamage(t, db, second.ID, "rear.jpg", 1, entity.DamageType(9), entity.RepairReplaceNA, 0)
	// 部件不存在的记录不出现在报告中
	testutil.SeedDamage(t, db, second.ID, "rear.jpg", 404, entity.DamageScratch, entity.RepairReplaceRepair, 999)

	return db, NewReportService(repository.NewRepositories(db))
}

func TestReportService_ImageReports(t *testing.T) {
	_, svc := seedReport(t)

	report, err := svc.ImageReports(context.Background(), "REF1")
	require.NoError(t, err)
	require.Len(t, report.Images, 2)
	assert.Equal(t, 3, report.DamageCount)
	assert.InDelta(t, 800.25, report.TotalCost, 0.001)

	front := report.Images[0]
	assert.Equal(t, "https://bucket/front.jpg", front.ImageURL)
	require.Len(t, front.DamageInfo, 2)
	assert.Equal(t, "Dent", front.DamageInfo[0].DamageType)
	assert.Equal(t, "Repair", front.DamageInfo[0].RepairReplace)
	assert.Equal(t, "Headlamp", front.DamageInfo[1].CarPartName)
	assert.Equal(t, "Replace", front.DamageInfo[1].RepairReplace)
	assert.InDelta(t, 800.25, front.TotalCost, 0.001)

	rear := report.Images[1]
	require.Len(t, rear.DamageInfo, 1)
	assert.Equal(t, "Unknown", rear.DamageInfo[0].DamageType)
	assert.Equal(t, "NA", rear.DamageInfo[0].RepairReplace)
}

func TestReportService_ImageReportsNotFound(t *testing.T) {
	_, svc := seedReport(t)
	_, err := svc.ImageReports(context.Background(), "NOPE")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReportService_SingleImage(t *testing.T) {
	_, svc := seedReport(t)
	ctx := context.Background()

	single, err := svc.SingleImage(ctx, "REF1", "front.jpg")
	require.NoError(t, err)
	assert.Equal(t, "REF1", single.ImageDetails.ReferenceNo)
	assert.Equal(t, "assessed", single.ImageDetails.Status)
	require.Len(t, single.DamageAnnotations, 2)
	assert.Equal(t, "Front Bumper", single.DamageAnnotations[0].CarPartName)

	_, err = svc.SingleImage(ctx, "REF1", "missing.jpg")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.SingleImage(ctx, "NOPE", "front.jpg")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReportService_ExportXLSX(t *testing.T) {
	_, svc := seedReport(t)

	f, filename, err := svc.ExportXLSX(context.Background(), "REF1")
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "Report_REF1.xlsx", filename)

	rows, err := f.GetRows("Report")
	require.NoError(t, err)
	// 表头 + 3 条损伤 + 合计
	require.Len(t, rows, 5)
	assert.Equal(t, reportExportHeaders, rows[0])
	assert.Equal(t, "front.jpg", rows[1][0])
	assert.Equal(t, "Front Bumper", rows[1][1])
	assert.Equal(t, "合计", rows[4][0])
	assert.Equal(t, "800.25", rows[4][5])
}
