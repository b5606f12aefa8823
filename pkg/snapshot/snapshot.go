// Package snapshot records the traffic of a comparison run and replays it,
// so a run can be repeated against frozen endpoint answers.
package snapshot

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/golang/snappy"
	"golang.org/x/crypto/blake2b"

	"github.com/dd0wney/cluso-crosscheck/pkg/client"
)

const (
	magic        = "XCSNAP01"
	formatPlain  = byte(0)
	formatSealed = byte(1) // AES-GCM with a passphrase derived key
	version      = 1
)

var (
	// ErrNotRecorded is returned on replay for a query the snapshot does not hold
	ErrNotRecorded = errors.New("query not recorded in snapshot")
	ErrInvalidFile = errors.New("not a snapshot file")
)

// Entry is one recorded round trip
type Entry struct {
	URL      string          `json:"url"`
	Query    string          `json:"query"`
	Response client.Response `json:"response"`
}

// Snapshot is a set of recorded entries keyed by Key(url, query)
type Snapshot struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

type document struct {
	Version int              `json:"version"`
	Entries map[string]Entry `json:"entries"`
}

// New creates an empty snapshot
func New() *Snapshot {
	return &Snapshot{entries: make(map[string]Entry)}
}

// Key identifies a query sent to an endpoint
func Key(url, query string) string {
	sum := blake2b.Sum256([]byte(url + "\n" + query))
	return hex.EncodeToString(sum[:])
}

// Put stores resp for (url, query), replacing an earlier answer
func (s *Snapshot) Put(url, query string, resp *client.Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[Key(url, query)] = Entry{URL: url, Query: query, Response: *resp}
}

// Get returns a copy of the recorded response
func (s *Snapshot) Get(url, query string) (*client.Response, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[Key(url, query)]
	if !ok {
		return nil, false
	}
	resp := e.Response
	return &resp, true
}

// Len returns the number of entries
func (s *Snapshot) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Queries lists the recorded queries sorted by key
func (s *Snapshot) Queries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Entry, len(keys))
	for i, k := range keys {
		out[i] = s.entries[k]
	}
	return out
}

// Encode serializes the snapshot: a magic header, a format byte and a
// snappy-compressed JSON body, sealed when passphrase is set.
func (s *Snapshot) Encode(passphrase string) ([]byte, error) {
	s.mu.RLock()
	body, err := json.Marshal(document{Version: version, Entries: s.entries})
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	compressed := snappy.Encode(nil, body)

	var buf bytes.Buffer
	buf.WriteString(magic)
	if passphrase == "" {
		buf.WriteByte(formatPlain)
		buf.Write(compressed)
		return buf.Bytes(), nil
	}
	sealed, err := seal(compressed, passphrase)
	if err != nil {
		return nil, err
	}
	buf.WriteByte(formatSealed)
	buf.Write(sealed)
	return buf.Bytes(), nil
}

// Decode parses data produced by Encode
func Decode(data []byte, passphrase string) (*Snapshot, error) {
	if len(data) < len(magic)+1 || string(data[:len(magic)]) != magic {
		return nil, ErrInvalidFile
	}
	format, payload := data[len(magic)], data[len(magic)+1:]
	switch format {
	case formatPlain:
	case formatSealed:
		if passphrase == "" {
			return nil, errors.New("snapshot is sealed and no passphrase was given")
		}
		var err error
		if payload, err = open(payload, passphrase); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown format %d", ErrInvalidFile, format)
	}

	body, err := snappy.Decode(nil, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
	}
	var doc document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if doc.Version != version {
		return nil, fmt.Errorf("unsupported snapshot version %d", doc.Version)
	}
	if doc.Entries == nil {
		doc.Entries = make(map[string]Entry)
	}
	return &Snapshot{entries: doc.Entries}, nil
}

// Load reads and decodes a snapshot from store
func Load(ctx context.Context, store Store, passphrase string) (*Snapshot, error) {
	data, err := store.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", store, err)
	}
	return Decode(data, passphrase)
}

// Save encodes the snapshot and writes it to store
func (s *Snapshot) Save(ctx context.Context, store Store, passphrase string) error {
	data, err := s.Encode(passphrase)
	if err != nil {
		return err
	}
	if err := store.Write(ctx, data); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", store, err)
	}
	return nil
}
