package source

import (
	"errors"
	"os"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultTTL is how long disk content stays cached when no TTL is configured.
const DefaultTTL = 5 * time.Minute

// Store is the source content cache. Disk reads expire after the TTL so
// edits made between builds are picked up; overlays installed with Set
// never expire and take precedence over disk content.
type Store struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// NewStore creates a store. ttl <= 0 selects DefaultTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		cache: gocache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// Load reads a file from disk, strips a UTF-8 BOM, normalizes CRLF and
// caches the result.
func (s *Store) Load(path string) (*File, error) {
	// #nosec G304 -- path comes from the build log
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)

	flags := FileFlags(0)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	f := newFile(path, content, flags)
	s.cache.Set(f.Path, f, gocache.DefaultExpiration)
	return f, nil
}

// Set installs in-memory content for path (an unsaved editor buffer).
func (s *Store) Set(path string, content []byte) *File {
	content, _ = normalizeCRLF(content)
	f := newFile(path, content, FileVirtual)
	s.cache.Set(f.Path, f, gocache.NoExpiration)
	return f
}

// Invalidate forgets cached content for path.
func (s *Store) Invalidate(path string) {
	s.cache.Delete(normalizePath(path))
}

// File returns the cached file or loads it from disk.
func (s *Store) File(path string) (*File, bool) {
	if path == "" {
		return nil, false
	}
	if v, ok := s.cache.Get(normalizePath(path)); ok {
		if f, ok := v.(*File); ok {
			return f, true
		}
	}
	f, err := s.Load(path)
	if err != nil {
		return nil, false
	}
	return f, true
}

// Content returns the whole content of path.
func (s *Store) Content(path string) (string, bool) {
	f, ok := s.File(path)
	if !ok {
		return "", false
	}
	return string(f.Content), true
}

// Line returns the 1-based line n of path.
func (s *Store) Line(path string, n int) (string, bool) {
	f, ok := s.File(path)
	if !ok {
		return "", false
	}
	return f.Line(n)
}

// Exists reports whether path exists on disk.
func Exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}
