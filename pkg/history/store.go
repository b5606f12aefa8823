package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

const runsFile = "runs.json"

// Store keeps runs in a JSON file under a data directory
type Store struct {
	dataDir string
	runs    map[string]*Run
	mu      sync.RWMutex
}

// NewStore creates a new file-backed run store
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("history directory is empty")
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}
	s := &Store{
		dataDir: dataDir,
		runs:    make(map[string]*Run),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// SaveRun stores a run, replacing one with the same id
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return s.save()
}

// GetRun retrieves a run by id
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, nil
}

// ListRuns returns the most recent runs first
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs := make([]*Run, 0, len(s.runs))
	for _, r := range s.runs {
		runs = append(runs, r)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *Store) Ping(ctx context.Context) error {
	_, err := os.Stat(s.dataDir)
	return err
}

func (s *Store) Close() error { return nil }

func (s *Store) load() error {
	data, err := os.ReadFile(filepath.Join(s.dataDir, runsFile))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	var runs []*Run
	if err := json.Unmarshal(data, &runs); err != nil {
		return fmt.Errorf("failed to decode %s: %w", runsFile, err)
	}
	for _, r := range runs {
		s.runs[r.ID] = r
	}
	return nil
}

// save must be called with the lock held
func (s *Store) save() error {
	runs := make([]*Run, 0, len(s.runs))
	for _, r := range s.runs {
		runs = append(runs, r)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID < runs[j].ID })
	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dataDir, runsFile), data, 0644)
}
