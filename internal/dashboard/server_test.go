package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/zulandar/trestle/internal/db"
	"github.com/zulandar/trestle/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openDashboardTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return gdb
}

func getJSON(t *testing.T, gdb *gorm.DB, path string) (int, map[string]any) {
	t.Helper()
	router := newRouter(gdb)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(rec, req)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %s response: %v", path, err)
	}
	return rec.Code, body
}

func TestStart_NilDB(t *testing.T) {
	err := Start(context.Background(), StartOpts{DB: nil})
	if err == nil {
		t.Fatal("expected error for nil db")
	}
	if !strings.Contains(err.Error(), "db is required") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "db is required")
	}
}

func TestHealthz(t *testing.T) {
	gdb := openDashboardTestDB(t)
	code, body := getJSON(t, gdb, "/healthz")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v", body["status"])
	}
}

func TestActivity_Counters(t *testing.T) {
	gdb := openDashboardTestDB(t)
	msgID := "msg-1"
	now := time.Now()
	fixtures := []any{
		&models.User{UserID: "u1", FeedbackPoints: 3},
		&models.User{UserID: "u2", IsBlocked: true},
		&models.Thread{ThreadID: "t1", OwnerID: "u1", CollaboratorCount: 1},
		&models.ThreadUser{ThreadID: "t1", UserID: "u1", ActiveContractMessageID: &msgID, LastContractPosted: &now},
		&models.ThreadUser{ThreadID: "t1", UserID: "u2"},
	}
	for _, f := range fixtures {
		if err := gdb.Create(f).Error; err != nil {
			t.Fatalf("create fixture: %v", err)
		}
	}

	code, body := getJSON(t, gdb, "/api/activity")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	checks := map[string]float64{
		"users":          2,
		"blocked_users":  1,
		"threads":        1,
		"open_contracts": 1,
	}
	for field, want := range checks {
		if got, _ := body[field].(float64); got != want {
			t.Errorf("%s = %v, want %v", field, body[field], want)
		}
	}
}

func TestSyncReports_FilterAndLimit(t *testing.T) {
	gdb := openDashboardTestDB(t)
	rows := []models.SyncReport{
		{RunID: "run-a", UserID: "u1", RoleID: "r1", Action: models.SyncActionAdd},
		{RunID: "run-a", UserID: "u2", RoleID: "r1", Action: models.SyncActionAdd, Error: "missing permission"},
		{RunID: "run-b", UserID: "u1", RoleID: "r1", Action: models.SyncActionRemove},
	}
	for i := range rows {
		if err := gdb.Create(&rows[i]).Error; err != nil {
			t.Fatalf("create report: %v", err)
		}
	}

	code, body := getJSON(t, gdb, "/api/syncreports?run_id=run-a")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	reports, _ := body["reports"].([]any)
	if len(reports) != 2 {
		t.Errorf("run-a reports = %d, want 2", len(reports))
	}

	code, body = getJSON(t, gdb, "/api/syncreports?limit=1")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	reports, _ = body["reports"].([]any)
	if len(reports) != 1 {
		t.Errorf("limited reports = %d, want 1", len(reports))
	}

	code, _ = getJSON(t, gdb, "/api/syncreports?limit=bogus")
	if code != http.StatusBadRequest {
		t.Errorf("bogus limit status = %d, want 400", code)
	}
}
