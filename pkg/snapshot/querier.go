package snapshot

import (
	"context"
	"fmt"

	"github.com/dd0wney/cluso-crosscheck/pkg/client"
)

// Recorder forwards queries and keeps every answered response.
// Transport failures are not recorded.
type Recorder struct {
	next client.Querier
	snap *Snapshot
}

// NewRecorder records the traffic of next into snap
func NewRecorder(next client.Querier, snap *Snapshot) *Recorder {
	return &Recorder{next: next, snap: snap}
}

func (r *Recorder) Query(ctx context.Context, url, query string) (*client.Response, error) {
	resp, err := r.next.Query(ctx, url, query)
	if err != nil {
		return nil, err
	}
	r.snap.Put(url, query, resp)
	return resp, nil
}

// Replayer answers queries from a snapshot without touching the network
type Replayer struct {
	snap *Snapshot
}

// NewReplayer serves the entries of snap
func NewReplayer(snap *Snapshot) *Replayer {
	return &Replayer{snap: snap}
}

func (r *Replayer) Query(ctx context.Context, url, query string) (*client.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, ok := r.snap.Get(url, query)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRecorded, Key(url, query))
	}
	return resp, nil
}
