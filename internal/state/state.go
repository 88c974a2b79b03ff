// Package state persists the last parsed batches of a project between
// runs so that a skipped latexmk build can republish them.
package state

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/blake3"

	"texdiag/internal/texlog"
)

// Current schema version - increment when Snapshot format changes
const schemaVersion uint16 = 1

// Store keeps one snapshot file per project root.
// Thread-safe for concurrent access.
type Store struct {
	mu  sync.RWMutex
	dir string
}

// Record is the stored form of a texlog.Entry.
type Record struct {
	Kind   uint8  `msgpack:"k"`
	File   string `msgpack:"f"`
	Line   int    `msgpack:"l"`
	Text   string `msgpack:"t"`
	Anchor string `msgpack:"a,omitempty"`
}

// Snapshot is the persisted state of one project.
type Snapshot struct {
	// Schema version for safe invalidation when format changes
	Schema uint16    `msgpack:"schema"`
	Root   string    `msgpack:"root"`
	Saved  time.Time `msgpack:"saved"`

	// Batches by family name
	Batches map[string][]Record `msgpack:"batches"`
}

// NewSnapshot creates an empty snapshot for root.
func NewSnapshot(root string) *Snapshot {
	return &Snapshot{
		Schema:  schemaVersion,
		Root:    root,
		Batches: make(map[string][]Record, len(texlog.Families)),
	}
}

// Put stores the batch of family f.
func (s *Snapshot) Put(f texlog.Family, entries []texlog.Entry) {
	recs := make([]Record, len(entries))
	for i, e := range entries {
		recs[i] = Record{Kind: uint8(e.Kind), File: e.File, Line: e.Line, Text: e.Text, Anchor: e.Anchor}
	}
	s.Batches[f.String()] = recs
}

// Entries returns the stored batch of family f, nil when absent.
func (s *Snapshot) Entries(f texlog.Family) []texlog.Entry {
	recs, ok := s.Batches[f.String()]
	if !ok {
		return nil
	}
	out := make([]texlog.Entry, len(recs))
	for i, r := range recs {
		out[i] = texlog.Entry{Kind: texlog.Kind(r.Kind), File: r.File, Line: r.Line, Text: r.Text, Anchor: r.Anchor}
	}
	return out
}

// Open initializes the store under $XDG_CACHE_HOME/<app>/state.
func Open(app string) (*Store, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDir(filepath.Join(base, app, "state"))
}

// OpenDir initializes the store in dir.
func OpenDir(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("state dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory holding snapshot files.
func (s *Store) Dir() string {
	return s.dir
}

// Key derives the file key of a project root.
func Key(root string) string {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	sum := blake3.Sum256([]byte(root))
	return hex.EncodeToString(sum[:])
}

func (s *Store) pathFor(root string) string {
	return filepath.Join(s.dir, Key(root)+".mp")
}

// Save writes snap atomically.
func (s *Store) Save(snap *Snapshot) error {
	if s == nil || snap == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap.Schema = schemaVersion
	if snap.Saved.IsZero() {
		snap.Saved = time.Now()
	}
	p := s.pathFor(snap.Root)
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := msgpack.NewEncoder(f).Encode(snap); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode state: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// Атомарная замена
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Load reads the snapshot of root. A missing file or a snapshot written
// by another schema version reports ok == false without error.
func (s *Store) Load(root string) (snap *Snapshot, ok bool, err error) {
	if s == nil {
		return nil, false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(s.pathFor(root))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	var out Snapshot
	if err := msgpack.NewDecoder(f).Decode(&out); err != nil {
		return nil, false, fmt.Errorf("decode state: %w", err)
	}
	if out.Schema != schemaVersion {
		return nil, false, nil
	}
	if out.Batches == nil {
		out.Batches = make(map[string][]Record)
	}
	return &out, true, nil
}

// Drop removes the snapshot of root.
func (s *Store) Drop(root string) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.pathFor(root))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// DropAll invalidates every snapshot, useful after format changes.
func (s *Store) DropAll() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(s.dir, old); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
