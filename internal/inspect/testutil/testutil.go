package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-inspect/internal/inspect/entity"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const TestSchema = "test_inspect"

var sqliteSeq atomic.Int64

// TestEnv holds test environment resources
type TestEnv struct {
	DB     *gorm.DB
	Router *gin.Engine
	T      *testing.T
}

// projectRoot returns the project root directory by looking for go.mod
func projectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// loadEnv loads .env from the project root
func loadEnv() {
	root := projectRoot()
	if root != "" {
		godotenv.Load(filepath.Join(root, ".env"))
	}
}

// SetupTestDB returns an isolated, migrated database for one test.
// In-memory SQLite is used by default; TEST_DB_DRIVER=postgres switches to a
// dedicated Postgres schema that is dropped when the test finishes.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	loadEnv()

	var db *gorm.DB
	if getEnv("TEST_DB_DRIVER", "sqlite") == "postgres" {
		db = setupPostgres(t)
	} else {
		db = setupSQLite(t)
	}

	if err := db.AutoMigrate(entity.Models()...); err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}
	return db
}

func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:inspect_%d_%d?mode=memory&cache=shared", time.Now().UnixNano(), sqliteSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("Failed to open sqlite test database: %v", err)
	}
	// a single connection keeps the in-memory database alive and serialises writers
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "inspect")
	password := getEnv("DB_PASSWORD", "inspect")
	dbname := getEnv("DB_NAME", "inspect")

	baseDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
	schemaName := fmt.Sprintf("%s_%d", TestSchema, time.Now().UnixNano()%1000000)

	setupDB, err := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Skipf("Postgres unavailable: %v", err)
	}
	setupDB.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schemaName))
	sqlSetup, _ := setupDB.DB()
	sqlSetup.Close()

	testDSN := fmt.Sprintf("%s search_path=%s", baseDSN, schemaName)
	db, err := gorm.Open(postgres.Open(testDSN), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		cleanDB, cleanErr := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if cleanErr == nil {
			cleanDB.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schemaName))
			if sqlClean, _ := cleanDB.DB(); sqlClean != nil {
				sqlClean.Close()
			}
		}
	})
	return db
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// DoRequest executes an HTTP request against the test router
func DoRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON envelope into a map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SeedCarPart creates a car part
func SeedCarPart(t *testing.T, db *gorm.DB, id int, name, partType string) *entity.CarPart {
	t.Helper()
	part := &entity.CarPart{ID: id, Name: name, PartType: partType}
	if err := db.Create(part).Error; err != nil {
		t.Fatalf("Failed to seed car part: %v", err)
	}
	return part
}

// SeedCostRule creates a cost rule
func SeedCostRule(t *testing.T, db *gorm.DB, carPartID int, damageType entity.DamageType, repairReplace entity.RepairReplace, cost float64) *entity.CostRule {
	t.Helper()
	rule := &entity.CostRule{
		CarPartID:       carPartID,
		DamageTypeID:    damageType,
		RepairReplaceID: repairReplace,
		CostOfRepair:    cost,
	}
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("Failed to seed cost rule: %v", err)
	}
	return rule
}

// SeedImageAssessment creates the owning assessment row for a reference number
func SeedImageAssessment(t *testing.T, db *gorm.DB, referenceNo, imageURL string) *entity.ImageAssessment {
	t.Helper()
	ia := &entity.ImageAssessment{
		ReferenceNo:        referenceNo,
		S3AssessedImageURL: imageURL,
		Status:             "assessed",
	}
	if err := db.Create(ia).Error; err != nil {
		t.Fatalf("Failed to seed image assessment: %v", err)
	}
	return ia
}

// SeedDamage creates a damage assessment row
func SeedDamage(t *testing.T, db *gorm.DB, imageAssessmentID uint, imageName string, carPartID int, damageType entity.DamageType, repairReplace entity.RepairReplace, cost float64) *entity.DamageAssessment {
	t.Helper()
	d := &entity.DamageAssessment{
		ImageAssessmentID: imageAssessmentID,
		CarPartID:         carPartID,
		DamageTypeID:      damageType,
		RepairReplaceID:   repairReplace,
		ActualCostRepair:  cost,
		ImageName:         imageName,
	}
	if err := db.Create(d).Error; err != nil {
		t.Fatalf("Failed to seed damage assessment: %v", err)
	}
	return d
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
