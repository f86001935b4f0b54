package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelope(w http.ResponseWriter, status, code int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"code": code, "message": message, "data": data})
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/images/REF1", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, 200, 0, "success", []map[string]interface{}{{
			"reference_no":     "REF1",
			"image_name":       "front.jpg",
			"image_url":        "https://example.test/front.jpg",
			"image_dimensions": map[string]int{"width": 800, "height": 600},
			"damage_info": []map[string]interface{}{{
				"repair_replace": "Replace",
				"coordinates":    map[string]float64{"x": 10, "y": 20, "width": 30, "height": -5},
			}},
		}})
	})
	mux.HandleFunc("/api/v1/images/EMPTY", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, 404, 40401, "No images found for this reference", nil)
	})
	mux.HandleFunc("/api/v1/carparts/costofrepair", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.URL.Query().Get("carPartMasterId"))
		assert.Equal(t, "2", r.URL.Query().Get("damageTypeId"))
		envelope(w, 200, 0, "success", map[string]interface{}{"CostOfRepair": 500, "source": "fallback"})
	})
	mux.HandleFunc("/api/v1/carparts", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, 200, 0, "success", []map[string]interface{}{{"id": 7, "name": "Bonnet"}})
	})
	mux.HandleFunc("/api/v1/imageReports/REF1", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, 200, 0, "success", map[string]interface{}{
			"reference_no": "REF1",
			"total_cost":   300.5,
			"damage_count": 1,
			"images": []map[string]interface{}{{
				"image_id":   1,
				"status":     "assessed",
				"total_cost": 300.5,
				"damage_info": []map[string]interface{}{{
					"car_part_name": "Bonnet", "part_type": "Panel", "damage_type": "Scratch",
					"repair_replace": "Repair", "actual_cost_repair": 300.5, "image_name": "front.jpg",
				}},
			}},
		})
	})
	mux.HandleFunc("/api/v1/imageReports/REF1/export", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		_, _ = w.Write([]byte("PK-xlsx"))
	})
	mux.HandleFunc("/api/v1/damageannotations/save", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("atomic"))
		envelope(w, 500, 50001, "batch incomplete", map[string]interface{}{
			"atomic": true,
			"failed": 1,
			"results": []map[string]interface{}{
				{"index": 0, "image_name": "front.jpg", "car_part_id": 7, "status": "rolled_back"},
				{"index": 1, "image_name": "front.jpg", "car_part_id": 0, "status": "failed", "error": "invalid input"},
			},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append([]string{"--server", srv.URL}, args...))
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		imagesJSON = false
		reportXLSX = ""
		saveAtomic = false
	})
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"images", "cost", "carparts", "report", "save", "review"} {
		assert.Contains(t, names, want)
	}
}

func TestImagesCmd(t *testing.T) {
	srv := newTestServer(t)
	out, err := execute(t, srv, "images", "REF1")
	require.NoError(t, err)
	assert.Contains(t, out, "[1] front.jpg  800x600  1 damage box(es)")
	assert.Contains(t, out, "h=-5.0")
}

func TestImagesCmd_NotFound(t *testing.T) {
	srv := newTestServer(t)
	_, err := execute(t, srv, "images", "EMPTY")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No images found for this reference")
}

func TestImagesCmd_RequiresArg(t *testing.T) {
	srv := newTestServer(t)
	_, err := execute(t, srv, "images")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestCostAndCarPartsCmd(t *testing.T) {
	srv := newTestServer(t)
	out, err := execute(t, srv, "cost", "--part", "7", "--damage-type", "2", "--repair-replace", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "500.00 (fallback)")

	out, err = execute(t, srv, "carparts")
	require.NoError(t, err)
	assert.Contains(t, out, "Bonnet")
}

func TestReportCmd(t *testing.T) {
	srv := newTestServer(t)
	out, err := execute(t, srv, "report", "REF1")
	require.NoError(t, err)
	assert.Contains(t, out, "Reference REF1: 1 damage item(s), total 300.50")
	assert.Contains(t, out, "Bonnet")

	path := filepath.Join(t.TempDir(), "report.xlsx")
	out, err = execute(t, srv, "report", "REF1", "--xlsx", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Report written to")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "PK-xlsx", string(data))
}

func TestSaveCmd_ReportsRowsOnFailure(t *testing.T) {
	srv := newTestServer(t)
	path := filepath.Join(t.TempDir(), "rows.json")
	rows := `[{"reference_no":"REF1","image_name":"front.jpg","car_part_id":7},{"reference_no":"REF1","image_name":"front.jpg"}]`
	require.NoError(t, os.WriteFile(path, []byte(rows), 0o600))

	out, err := execute(t, srv, "save", path, "--atomic")
	require.Error(t, err)
	assert.Contains(t, out, "[0] front.jpg part=7 rolled_back")
	assert.Contains(t, out, "[1] front.jpg part=0 failed error=invalid input")
}
