// Package prefs persists the last-used CLI parameters as TOML.
//
// The file lives at $XDG_CONFIG_HOME/hmaputil/config.toml (see
// os.UserConfigDir) and is rewritten after every successful render unless
// the user passes --no-save. Missing keys fall back to the pipeline
// defaults, so an empty or partial file is valid.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/hmaputil/pkg/heightmap"
	"github.com/matzehuels/hmaputil/pkg/pipeline"
)

// FileName is the preferences file name inside the config directory.
const FileName = "config.toml"

// Prefs are the persisted parameters.
type Prefs struct {
	Source     string  `toml:"source"`
	Multiplier float64 `toml:"multiplier"`
	LowerBound float64 `toml:"lower_bound"`
	UpperBound float64 `toml:"upper_bound"`
	TrackMask  string  `toml:"track_mask"`
	Colors     Colors  `toml:"colors"`
}

// Colors holds the recolor quad as six-digit hex strings.
type Colors struct {
	Red   string `toml:"red"`
	Green string `toml:"green"`
	Blue  string `toml:"blue"`
	Black string `toml:"black"`
}

// Default returns the preferences of a fresh installation.
func Default() Prefs {
	return FromRequest("", pipeline.DefaultRequest())
}

// FromRequest captures the parameters of req.
func FromRequest(source string, req pipeline.Request) Prefs {
	hex := req.Colors.Hex()
	return Prefs{
		Source:     source,
		Multiplier: req.Multiplier,
		LowerBound: req.LowerBound,
		UpperBound: req.UpperBound,
		TrackMask:  req.TrackMaskPath,
		Colors:     Colors{Red: hex[0], Green: hex[1], Blue: hex[2], Black: hex[3]},
	}
}

// ColorQuad parses the stored colors.
func (p Prefs) ColorQuad() (heightmap.ColorQuad, error) {
	return heightmap.ParseColorQuad(p.Colors.Red, p.Colors.Green, p.Colors.Blue, p.Colors.Black)
}

// Request returns a request carrying the stored parameters. Product
// toggles are not persisted and stay off.
func (p Prefs) Request() (pipeline.Request, error) {
	q, err := p.ColorQuad()
	if err != nil {
		return pipeline.Request{}, err
	}
	return pipeline.Request{
		Multiplier:    p.Multiplier,
		LowerBound:    p.LowerBound,
		UpperBound:    p.UpperBound,
		TrackMaskPath: p.TrackMask,
		Colors:        q,
	}, nil
}

// Store reads and writes the preferences file.
type Store struct {
	mu   sync.Mutex
	path string
}

// DefaultPath returns $XDG_CONFIG_HOME/hmaputil/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(dir, "hmaputil", FileName), nil
}

// NewStore returns a store for path. An empty path selects DefaultPath.
func NewStore(path string) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &Store{path: path}, nil
}

// Path returns the preferences file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the preferences. A missing file yields Default.
func (s *Store) Load() (Prefs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Default()
	if _, err := toml.DecodeFile(s.path, &p); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("parse %s: %w", s.path, err)
	}
	return p, nil
}

// Save writes p, replacing the previous file atomically.
func (s *Store) Save(p Prefs) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".config-*.toml")
	if err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := toml.NewEncoder(tmp).Encode(p); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}

// Reset removes the preferences file.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove preferences: %w", err)
	}
	return nil
}
