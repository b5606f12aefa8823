package history

import (
	"context"
	"strings"
)

// RunStore defines the interface for run persistence
type RunStore interface {
	SaveRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	// ListRuns returns the most recent runs first, at most limit of them
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	Ping(ctx context.Context) error
	Close() error
}

// Open returns a PostgreSQL store for postgres:// URLs and a file store
// rooted at the directory otherwise
func Open(ctx context.Context, databaseURL string) (RunStore, error) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return NewPGStore(ctx, databaseURL)
	}
	return NewStore(strings.TrimPrefix(databaseURL, "file://"))
}
