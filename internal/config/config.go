// Package config loads texdiag.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"texdiag/internal/fnenc"
	"texdiag/internal/source"
)

// FileName is the name of the project configuration file.
const FileName = "texdiag.toml"

// Output formats.
const (
	FormatPretty = "pretty"
	FormatShort  = "short"
	FormatJSON   = "json"
	FormatLSP    = "lsp"
)

// DefaultMaxDiagnostics bounds printed diagnostics when unset.
const DefaultMaxDiagnostics = 100

var (
	// ErrInvalidFormat indicates an unknown [output].format.
	ErrInvalidFormat = errors.New("invalid [output].format")
	// ErrInvalidTTL indicates an unparsable [cache].ttl.
	ErrInvalidTTL = errors.New("invalid [cache].ttl")
)

// Config is the effective configuration of one project.
type Config struct {
	// Path of the loaded file; empty when running on defaults.
	Path string
	// Dir is the directory relative paths are resolved against.
	Dir string

	// Root is the root .tex file passed to the log parsers.
	Root string

	ConvertFilenameEncoding bool
	Encodings               []string

	CacheTTL time.Duration
	State    bool

	Format         string
	MaxDiagnostics int
}

type fileConfig struct {
	Project struct {
		Root string `toml:"root"`
	} `toml:"project"`
	Message struct {
		ConvertFilenameEncoding bool     `toml:"convert_filename_encoding"`
		Encodings               []string `toml:"encodings"`
	} `toml:"message"`
	Cache struct {
		TTL   string `toml:"ttl"`
		State bool   `toml:"state"`
	} `toml:"cache"`
	Output struct {
		Format         string `toml:"format"`
		MaxDiagnostics int    `toml:"max_diagnostics"`
	} `toml:"output"`
}

// Default returns the configuration used without a texdiag.toml.
func Default() Config {
	return Config{
		Dir:                     ".",
		ConvertFilenameEncoding: true,
		Encodings:               append([]string(nil), fnenc.DefaultEncodings...),
		CacheTTL:                source.DefaultTTL,
		State:                   true,
		Format:                  FormatPretty,
		MaxDiagnostics:          DefaultMaxDiagnostics,
	}
}

// Find walks up from startDir to locate texdiag.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load parses path on top of the defaults. Keys missing from the file
// keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	var fc fileConfig
	meta, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	cfg.Path = path
	cfg.Dir = filepath.Dir(path)

	if meta.IsDefined("project", "root") {
		if root := strings.TrimSpace(fc.Project.Root); root != "" {
			cfg.Root = Resolve(cfg.Dir, root)
		}
	}
	if meta.IsDefined("message", "convert_filename_encoding") {
		cfg.ConvertFilenameEncoding = fc.Message.ConvertFilenameEncoding
	}
	if meta.IsDefined("message", "encodings") {
		cfg.Encodings = fc.Message.Encodings
	}
	if meta.IsDefined("cache", "ttl") {
		ttl, err := time.ParseDuration(strings.TrimSpace(fc.Cache.TTL))
		if err != nil || ttl < 0 {
			return Config{}, fmt.Errorf("%s: %w %q", path, ErrInvalidTTL, fc.Cache.TTL)
		}
		cfg.CacheTTL = ttl
	}
	if meta.IsDefined("cache", "state") {
		cfg.State = fc.Cache.State
	}
	if meta.IsDefined("output", "format") {
		cfg.Format = strings.ToLower(strings.TrimSpace(fc.Output.Format))
	}
	if meta.IsDefined("output", "max_diagnostics") {
		cfg.MaxDiagnostics = fc.Output.MaxDiagnostics
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Discover loads the nearest texdiag.toml above startDir, or returns the
// defaults when there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		cfg := Default()
		if startDir != "" {
			cfg.Dir = startDir
		}
		return cfg, nil
	}
	return Load(path)
}

// Validate checks the value ranges.
func (c Config) Validate() error {
	if !ValidFormat(c.Format) {
		return fmt.Errorf("%w %q", ErrInvalidFormat, c.Format)
	}
	if c.MaxDiagnostics < 0 {
		return fmt.Errorf("invalid [output].max_diagnostics %d: must be >= 0", c.MaxDiagnostics)
	}
	return nil
}

// ValidFormat reports whether name is a known output format.
func ValidFormat(name string) bool {
	switch name {
	case FormatPretty, FormatShort, FormatJSON, FormatLSP:
		return true
	}
	return false
}

// Resolve joins a relative path onto dir.
func Resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(dir, filepath.FromSlash(path))
}
