package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/julianstephens/dailycode/internal/models"
)

// jsonFile is the on-disk layout. Absent records are omitted.
type jsonFile struct {
	Settings   *models.Settings   `json:"settings,omitempty"`
	DailyTasks *models.DailyTasks `json:"dailyTasks,omitempty"`
	Stats      *models.Stats      `json:"stats,omitempty"`
}

type JSONStore struct {
	path string

	mu    sync.Mutex
	store *jsonFile
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

// Init creates an empty store file if none exists, then loads it.
func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		s.mu.Lock()
		s.store = &jsonFile{}
		err := s.save()
		s.mu.Unlock()
		if err != nil {
			return err
		}
	}

	return s.Load()
}

func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'dailycode init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	store := &jsonFile{}
	if err := json.Unmarshal(data, store); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}

	s.mu.Lock()
	s.store = store
	s.mu.Unlock()
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

// save writes the store through a temp file so readers never see a partial write.
// Callers hold s.mu.
func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}

	return nil
}

func (s *JSONStore) GetAll() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return Snapshot{}, fmt.Errorf("storage not loaded")
	}

	var snap Snapshot
	if s.store.Settings != nil {
		v := *s.store.Settings
		snap.Settings = &v
	}
	if s.store.DailyTasks != nil {
		v := *s.store.DailyTasks
		snap.Tasks = &v
	}
	if s.store.Stats != nil {
		v := *s.store.Stats
		v.History = append([]models.HistoryEntry(nil), s.store.Stats.History...)
		snap.Stats = &v
	}
	return snap, nil
}

func (s *JSONStore) SetPartial(p Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}
	if p.Empty() {
		return nil
	}

	prev := *s.store
	next := prev
	if p.Settings != nil {
		v := *p.Settings
		next.Settings = &v
	}
	if p.Tasks != nil {
		v := *p.Tasks
		next.DailyTasks = &v
	}
	if p.Stats != nil {
		v := *p.Stats
		v.History = append([]models.HistoryEntry{}, p.Stats.History...)
		next.Stats = &v
	}

	s.store = &next
	if err := s.save(); err != nil {
		s.store = &prev
		return err
	}
	return nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}
