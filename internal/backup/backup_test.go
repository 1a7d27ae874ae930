package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/dailycode/internal/constants"
	"github.com/julianstephens/dailycode/internal/models"
	"github.com/julianstephens/dailycode/internal/storage"
)

func setupTestDB(t *testing.T) (string, func()) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store := storage.NewSQLiteStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	tasks := models.DailyTasks{Leetcode: true, LastReset: "2026-10-18"}
	if err := store.SetPartial(storage.Patch{Tasks: &tasks}); err != nil {
		t.Fatalf("failed to write tasks: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}

	return dbPath, func() {}
}

func newTestManager(dbPath string, at time.Time) *Manager {
	m := NewManager(dbPath)
	m.now = func() time.Time { return at }
	return m
}

func readTasks(t *testing.T, dbPath string) models.DailyTasks {
	t.Helper()
	store := storage.NewSQLiteStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("failed to load store: %v", err)
	}
	defer store.Close()

	snap, err := store.GetAll()
	if err != nil {
		t.Fatalf("failed to read store: %v", err)
	}
	if snap.Tasks == nil {
		t.Fatal("expected tasks in store")
	}
	return *snap.Tasks
}

func TestCreateBackup(t *testing.T) {
	dbPath, cleanup := setupTestDB(t)
	defer cleanup()

	mgr := newTestManager(dbPath, time.Date(2026, 10, 18, 9, 30, 0, 0, time.Local))
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	want := filepath.Join(mgr.GetBackupDir(), constants.BackupFilePrefix+"20261018-0930"+constants.BackupFileSuffix)
	if backupPath != want {
		t.Errorf("expected backup path %s, got %s", want, backupPath)
	}

	if err := VerifyBackup(backupPath); err != nil {
		t.Errorf("backup verification failed: %v", err)
	}
	if got := readTasks(t, backupPath); !got.Leetcode || got.LastReset != "2026-10-18" {
		t.Errorf("backup does not hold source data: %+v", got)
	}
}

func TestCreateBackupMissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.CreateBackup(); err == nil {
		t.Error("expected error when database does not exist")
	}
}

func TestCreateBackupRejectsForeignDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "other.db")
	if err := os.WriteFile(dbPath, []byte("not a database"), 0600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if _, err := NewManager(dbPath).CreateBackup(); err == nil {
		t.Error("expected error for a file that is not a dailycode store")
	}
}

func TestUniqueBackupFilenames(t *testing.T) {
	dbPath, cleanup := setupTestDB(t)
	defer cleanup()

	mgr := newTestManager(dbPath, time.Date(2026, 10, 18, 9, 30, 15, 0, time.Local))
	seen := map[string]bool{}
	for i := 0; i < 4; i++ {
		path, err := mgr.CreateBackup()
		if err != nil {
			t.Fatalf("CreateBackup %d failed: %v", i, err)
		}
		if seen[path] {
			t.Fatalf("duplicate backup path %s", path)
		}
		seen[path] = true
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 4 {
		t.Errorf("expected 4 backups, got %d", len(backups))
	}
}

func TestBackupRotation(t *testing.T) {
	dbPath, cleanup := setupTestDB(t)
	defer cleanup()

	start := time.Date(2026, 10, 1, 8, 0, 0, 0, time.Local)
	mgr := NewManager(dbPath)
	for i := 0; i < constants.MaxBackups+3; i++ {
		at := start.AddDate(0, 0, i)
		mgr.now = func() time.Time { return at }
		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatalf("CreateBackup %d failed: %v", i, err)
		}
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != constants.MaxBackups {
		t.Fatalf("expected %d backups after rotation, got %d", constants.MaxBackups, len(backups))
	}

	newest := start.AddDate(0, 0, constants.MaxBackups+2)
	if !backups[0].Timestamp.Equal(newest) {
		t.Errorf("expected newest backup at %v, got %v", newest, backups[0].Timestamp)
	}
	oldest := start.AddDate(0, 0, 3)
	if !backups[len(backups)-1].Timestamp.Equal(oldest) {
		t.Errorf("expected oldest kept backup at %v, got %v", oldest, backups[len(backups)-1].Timestamp)
	}
}

func TestListBackups(t *testing.T) {
	dbPath, cleanup := setupTestDB(t)
	defer cleanup()

	mgr := NewManager(dbPath)

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected no backups before the directory exists, got %d", len(backups))
	}

	if err := os.MkdirAll(mgr.GetBackupDir(), 0700); err != nil {
		t.Fatalf("failed to create backup dir: %v", err)
	}
	names := []string{
		constants.BackupFilePrefix + "20261016-0800" + constants.BackupFileSuffix,
		constants.BackupFilePrefix + "20261018-0800" + constants.BackupFileSuffix,
		constants.BackupFilePrefix + "20261017-080000-1" + constants.BackupFileSuffix,
		"notes.txt",
		constants.BackupFilePrefix + "garbage" + constants.BackupFileSuffix,
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(mgr.GetBackupDir(), name), []byte("x"), 0600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	backups, err = mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 backups, got %d", len(backups))
	}
	for i, day := range []int{18, 17, 16} {
		if backups[i].Timestamp.Day() != day {
			t.Errorf("backup %d: expected day %d, got %v", i, day, backups[i].Timestamp)
		}
		if backups[i].Size != 1 {
			t.Errorf("backup %d: expected size 1, got %d", i, backups[i].Size)
		}
	}
}

func TestRestoreBackup(t *testing.T) {
	dbPath, cleanup := setupTestDB(t)
	defer cleanup()

	mgr := newTestManager(dbPath, time.Date(2026, 10, 18, 9, 0, 0, 0, time.Local))
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	store := storage.NewSQLiteStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("failed to load store: %v", err)
	}
	changed := models.DailyTasks{Codeforces: true, LastReset: "2026-10-19"}
	if err := store.SetPartial(storage.Patch{Tasks: &changed}); err != nil {
		t.Fatalf("failed to write tasks: %v", err)
	}
	store.Close()

	mgr.now = func() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.Local) }
	previous, err := mgr.RestoreBackup(backupPath)
	if err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}

	got := readTasks(t, dbPath)
	if !got.Leetcode || got.Codeforces || got.LastReset != "2026-10-18" {
		t.Errorf("restore did not bring back backed up tasks: %+v", got)
	}

	if previous == "" {
		t.Fatal("expected a pre-restore backup path")
	}
	if pre := readTasks(t, previous); !pre.Codeforces || pre.LastReset != "2026-10-19" {
		t.Errorf("pre-restore backup should hold the replaced data: %+v", pre)
	}
}

func TestRestoreBackupErrors(t *testing.T) {
	dbPath, cleanup := setupTestDB(t)
	defer cleanup()
	mgr := NewManager(dbPath)

	corrupt := filepath.Join(t.TempDir(), "corrupt.db")
	if err := os.WriteFile(corrupt, []byte("corrupted"), 0600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.db")},
		{"corrupted file", corrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := mgr.RestoreBackup(tt.path); err == nil {
				t.Error("expected restore to fail")
			}
		})
	}

	if got := readTasks(t, dbPath); !got.Leetcode {
		t.Errorf("failed restore must leave the database untouched: %+v", got)
	}
}

func TestParseStamp(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
		want string
	}{
		{constants.BackupFilePrefix + "20261018-0930" + constants.BackupFileSuffix, true, "2026-10-18 09:30:00"},
		{constants.BackupFilePrefix + "20261018-093015" + constants.BackupFileSuffix, true, "2026-10-18 09:30:15"},
		{constants.BackupFilePrefix + "20261018-093015-7" + constants.BackupFileSuffix, true, "2026-10-18 09:30:15"},
		{"daylit-20261018-0930.db", false, ""},
		{constants.BackupFilePrefix + "20261018-0930.bak", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, ok := parseStamp(tt.name)
			if ok != tt.ok {
				t.Fatalf("parseStamp(%q) ok = %v, want %v", tt.name, ok, tt.ok)
			}
			if ok {
				if got := ts.Format("2006-01-02 15:04:05"); got != tt.want {
					t.Errorf("parseStamp(%q) = %s, want %s", tt.name, got, tt.want)
				}
			}
		})
	}
}

func ExampleManager_GetBackupDir() {
	fmt.Println(filepath.Base(NewManager("/tmp/dailycode/dailycode.db").GetBackupDir()))
	// Output: backups
}
