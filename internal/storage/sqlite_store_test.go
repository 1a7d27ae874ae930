package storage

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/dailycode/internal/models"
)

func setupSQLiteStore(t *testing.T) (*SQLiteStore, string, func()) {
	dbPath := filepath.Join(t.TempDir(), "dailycode.db")
	store := NewSQLiteStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	cleanup := func() {
		store.Close()
	}

	return store, dbPath, cleanup
}

func TestSQLiteLoadUninitialized(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "missing.db"))

	err := store.Load()
	if err == nil {
		t.Fatal("Load should fail for a missing database")
	}
	if !strings.Contains(err.Error(), "dailycode init") {
		t.Errorf("expected init hint, got: %v", err)
	}
}

func TestSQLiteInitIsIdempotent(t *testing.T) {
	store, _, cleanup := setupSQLiteStore(t)
	defer cleanup()

	tasks := models.DailyTasks{Leetcode: true, LastReset: "2024-03-04"}
	if err := store.SetPartial(Patch{Tasks: &tasks}); err != nil {
		t.Fatalf("SetPartial failed: %v", err)
	}

	if err := store.Init(); err != nil {
		t.Fatalf("second Init failed: %v", err)
	}

	snap, err := store.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if snap.Tasks == nil || *snap.Tasks != tasks {
		t.Errorf("tasks lost across Init: %+v", snap.Tasks)
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	store, dbPath, cleanup := setupSQLiteStore(t)
	defer cleanup()

	settings := models.Settings{ReminderInterval: 60, QuietHoursStart: 22, QuietHoursEnd: 8, LeetcodeEnabled: true}
	if err := store.SetPartial(Patch{Settings: &settings}); err != nil {
		t.Fatalf("SetPartial failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := NewSQLiteStore(dbPath)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer reopened.Close()

	snap, err := reopened.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if snap.Settings == nil || *snap.Settings != settings {
		t.Errorf("settings = %+v, want %+v", snap.Settings, settings)
	}
}

func TestSQLiteMissingSettingKeysUseDefaults(t *testing.T) {
	store, _, cleanup := setupSQLiteStore(t)
	defer cleanup()

	if _, err := store.GetDB().Exec("INSERT INTO settings (key, value) VALUES ('quietHoursStart', '0')"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	snap, err := store.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	want := models.DefaultSettings()
	want.QuietHoursStart = 0
	if snap.Settings == nil || *snap.Settings != want {
		t.Errorf("settings = %+v, want %+v", snap.Settings, want)
	}
}

func TestSQLiteNotLoaded(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "dailycode.db"))

	if _, err := store.GetAll(); err == nil {
		t.Error("GetAll should fail before Init/Load")
	}
	tasks := models.DailyTasks{}
	if err := store.SetPartial(Patch{Tasks: &tasks}); err == nil {
		t.Error("SetPartial should fail before Init/Load")
	}
}
