package storage

import (
	"fmt"

	"github.com/julianstephens/dailycode/internal/models"
)

// Snapshot holds the three persisted records. A nil field means the record
// has never been written.
type Snapshot struct {
	Settings *models.Settings
	Tasks    *models.DailyTasks
	Stats    *models.Stats
}

// Patch is a partial write. Only non-nil records are stored; all of them
// land together or not at all.
type Patch struct {
	Settings *models.Settings
	Tasks    *models.DailyTasks
	Stats    *models.Stats
}

// Empty reports whether the patch writes nothing.
func (p Patch) Empty() bool {
	return p.Settings == nil && p.Tasks == nil && p.Stats == nil
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Records
	GetAll() (Snapshot, error)
	SetPartial(Patch) error

	GetConfigPath() string
}

// EnsureDefaults writes default records for any that are absent and returns
// the complete snapshot. Tasks created here start on today.
func EnsureDefaults(p Provider, today string) (Snapshot, error) {
	snap, err := p.GetAll()
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read records: %w", err)
	}

	var patch Patch
	if snap.Settings == nil {
		s := models.DefaultSettings()
		patch.Settings = &s
		snap.Settings = &s
	}
	if snap.Tasks == nil {
		t := models.WithDefaultTasks(nil, today)
		patch.Tasks = &t
		snap.Tasks = &t
	}
	if snap.Stats == nil {
		st := models.WithDefaultStats(nil)
		patch.Stats = &st
		snap.Stats = &st
	}

	if !patch.Empty() {
		if err := p.SetPartial(patch); err != nil {
			return Snapshot{}, fmt.Errorf("failed to write default records: %w", err)
		}
	}

	return snap, nil
}

// Complete returns the records with defaults applied to any absent or
// out-of-bounds fields.
func (s Snapshot) Complete(today string) (models.Settings, models.DailyTasks, models.Stats) {
	return models.WithDefaultSettings(s.Settings),
		models.WithDefaultTasks(s.Tasks, today),
		models.WithDefaultStats(s.Stats)
}
