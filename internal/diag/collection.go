package diag

import (
	"sort"
	"sync"
)

// Sink receives complete diagnostic snapshots. Replace must drop everything
// the sink held before: files missing from the new snapshot are cleared.
type Sink interface {
	Replace(files map[string][]Diagnostic)
}

// Collection is a named Sink holding the diagnostics of one tool family.
// Safe for concurrent readers; writers are expected to be the single
// parsing goroutine that owns it.
type Collection struct {
	mu      sync.RWMutex
	name    string
	files   map[string][]Diagnostic
	dropped []string
	gen     uint64
}

// NewCollection creates an empty collection.
func NewCollection(name string) *Collection {
	return &Collection{
		name:  name,
		files: make(map[string][]Diagnostic),
	}
}

// Name returns the collection name (tool family).
func (c *Collection) Name() string {
	return c.name
}

// Replace swaps the stored snapshot for files. The map and slices are copied.
func (c *Collection) Replace(files map[string][]Diagnostic) {
	next := make(map[string][]Diagnostic, len(files))
	for path, diags := range files {
		next[path] = append([]Diagnostic(nil), diags...)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropped = c.dropped[:0]
	for path := range c.files {
		if _, ok := next[path]; !ok {
			c.dropped = append(c.dropped, path)
		}
	}
	sort.Strings(c.dropped)
	c.files = next
	c.gen++
}

// Clear removes every file from the collection.
func (c *Collection) Clear() {
	c.Replace(nil)
}

// Get returns the diagnostics stored for path.
func (c *Collection) Get(path string) []Diagnostic {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Diagnostic(nil), c.files[path]...)
}

// Files returns the stored file paths in sorted order.
func (c *Collection) Files() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.files))
	for path := range c.files {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// Dropped lists files that were present before the last Replace and are
// absent from the current snapshot.
func (c *Collection) Dropped() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.dropped...)
}

// Len returns the total number of diagnostics over all files.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, diags := range c.files {
		n += len(diags)
	}
	return n
}

// Snapshot returns a deep copy of the stored diagnostics.
func (c *Collection) Snapshot() map[string][]Diagnostic {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string][]Diagnostic, len(c.files))
	for path, diags := range c.files {
		out[path] = append([]Diagnostic(nil), diags...)
	}
	return out
}

// Generation increments on every Replace; callers use it to notice updates.
func (c *Collection) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}
