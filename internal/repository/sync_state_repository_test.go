package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	syncdomain "health-companion-app/internal/domain/sync"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "repo-test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&syncdomain.State{}, &syncdomain.Run{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestLoadOrSeedCreatesSingletonOnce(t *testing.T) {
	repo := NewSyncStateRepository(newTestDB(t))
	ctx := context.Background()

	seed := syncdomain.State{ServerIP: "192.168.9.20", FrontendPort: "8080", BackendPort: "8000"}
	first, err := repo.LoadOrSeed(ctx, seed)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if first.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if first.ServerIP != "192.168.9.20" || first.BackendPort != "8000" {
		t.Fatalf("unexpected seeded state: %+v", first)
	}

	// 第二次加载必须返回已有行，seed 参数被忽略。
	second, err := repo.LoadOrSeed(ctx, syncdomain.State{ServerIP: "10.0.0.1"})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if second.ID != first.ID || second.ServerIP != "192.168.9.20" {
		t.Fatalf("expected existing row, got %+v", second)
	}
}

func TestSavePersistsSettingsChanges(t *testing.T) {
	repo := NewSyncStateRepository(newTestDB(t))
	ctx := context.Background()

	state, err := repo.LoadOrSeed(ctx, syncdomain.State{ServerIP: "192.168.9.20"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	state.ServerIP = "10.0.0.5"
	state.Token = "new-token"
	state.AutoSync = true
	if err := repo.Save(ctx, state); err != nil {
		t.Fatalf("save: %v", err)
	}

	reloaded, err := repo.LoadOrSeed(ctx, syncdomain.State{})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.ServerIP != "10.0.0.5" || reloaded.Token != "new-token" || !reloaded.AutoSync {
		t.Fatalf("unexpected state after save: %+v", reloaded)
	}
}

func TestTouchLastSync(t *testing.T) {
	repo := NewSyncStateRepository(newTestDB(t))
	ctx := context.Background()

	state, err := repo.LoadOrSeed(ctx, syncdomain.State{})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	ts := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	if err := repo.TouchLastSync(ctx, state.ID, ts); err != nil {
		t.Fatalf("touch: %v", err)
	}

	reloaded, err := repo.LoadOrSeed(ctx, syncdomain.State{})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.LastSyncAt == nil || !reloaded.LastSyncAt.Equal(ts) {
		t.Fatalf("expected last sync %v, got %v", ts, reloaded.LastSyncAt)
	}

	if err := repo.TouchLastSync(ctx, state.ID+99, ts); err != gorm.ErrRecordNotFound {
		t.Fatalf("expected ErrRecordNotFound for unknown id, got %v", err)
	}
}

func TestRecentRunsOrdersNewestFirst(t *testing.T) {
	repo := NewSyncStateRepository(newTestDB(t))
	ctx := context.Background()

	for _, datum := range []string{"2024-03-01", "2024-03-02", "2024-03-03"} {
		if err := repo.RecordRun(ctx, &syncdomain.Run{
			RunID:   "run-" + datum,
			Datum:   datum,
			Trigger: syncdomain.TriggerAutomatic,
			Success: true,
		}); err != nil {
			t.Fatalf("record run %s: %v", datum, err)
		}
	}

	runs, err := repo.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Datum != "2024-03-03" || runs[1].Datum != "2024-03-02" {
		t.Fatalf("expected newest first, got %s then %s", runs[0].Datum, runs[1].Datum)
	}
}
