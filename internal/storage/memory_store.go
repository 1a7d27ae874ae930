package storage

import (
	"sync"

	"github.com/julianstephens/dailycode/internal/models"
)

// MemoryStore keeps records in process memory. It counts reads and writes
// and can be told to fail, which makes it the store of choice for tests
// and dry runs.
type MemoryStore struct {
	mu       sync.Mutex
	snap     Snapshot
	reads    int
	writes   int
	failRead error
	failSave error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreWith returns a store seeded with snap.
func NewMemoryStoreWith(snap Snapshot) *MemoryStore {
	s := &MemoryStore{}
	s.snap = copySnapshot(snap)
	return s
}

func (s *MemoryStore) Init() error  { return nil }
func (s *MemoryStore) Load() error  { return nil }
func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) GetAll() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reads++
	if s.failRead != nil {
		return Snapshot{}, s.failRead
	}
	return copySnapshot(s.snap), nil
}

func (s *MemoryStore) SetPartial(p Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writes++
	if s.failSave != nil {
		return s.failSave
	}

	merged := copySnapshot(Snapshot(p))
	if merged.Settings != nil {
		s.snap.Settings = merged.Settings
	}
	if merged.Tasks != nil {
		s.snap.Tasks = merged.Tasks
	}
	if merged.Stats != nil {
		s.snap.Stats = merged.Stats
	}
	return nil
}

func (s *MemoryStore) GetConfigPath() string {
	return MemoryLocation
}

// Counts returns the number of GetAll and SetPartial calls so far.
func (s *MemoryStore) Counts() (reads, writes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads, s.writes
}

// FailWith makes subsequent reads and/or writes return the given errors.
// A nil error restores normal behavior for that operation.
func (s *MemoryStore) FailWith(readErr, saveErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRead = readErr
	s.failSave = saveErr
}

func copySnapshot(in Snapshot) Snapshot {
	var out Snapshot
	if in.Settings != nil {
		v := *in.Settings
		out.Settings = &v
	}
	if in.Tasks != nil {
		v := *in.Tasks
		out.Tasks = &v
	}
	if in.Stats != nil {
		v := *in.Stats
		v.History = append([]models.HistoryEntry{}, in.Stats.History...)
		out.Stats = &v
	}
	return out
}
