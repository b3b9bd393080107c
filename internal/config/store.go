package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the settings file used when none is configured.
const DefaultPath = "settings.json"

// ErrCorrupt is returned by Load when the settings file exists but cannot
// be decoded. Callers treat it as a fatal startup condition.
var ErrCorrupt = errors.New("config: settings file is corrupt")

// Store persists Settings to a single file. The codec is picked from the
// file extension: .yaml and .yml use YAML, everything else JSON.
type Store struct {
	path string
}

// NewStore returns a store backed by path. An empty path means DefaultPath.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

func (s *Store) isYAML() bool {
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Load reads the settings file on top of the defaults, so fields absent
// from the file keep their default values. If the file does not exist the
// defaults are written to it and returned.
func (s *Store) Load() (Settings, error) {
	cfg := Default()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := s.Save(cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", s.path, err)
	}

	if err := s.decode(data, &cfg); err != nil {
		return Default(), fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	return cfg, nil
}

// LoadInto decodes the settings file over base. Unlike Load it never writes
// and reports a missing file as an error; it is used for live reloads.
func (s *Store) LoadInto(base Settings) (Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return base, fmt.Errorf("config: read %s: %w", s.path, err)
	}
	if err := s.decode(data, &base); err != nil {
		return base, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	return base, nil
}

func (s *Store) decode(data []byte, cfg *Settings) error {
	if s.isYAML() {
		return yaml.Unmarshal(data, cfg)
	}
	return json.Unmarshal(data, cfg)
}

func (s *Store) encode(cfg Settings) ([]byte, error) {
	if s.isYAML() {
		return yaml.Marshal(cfg)
	}
	return json.MarshalIndent(cfg, "", "  ")
}

// Save writes cfg atomically: the data goes to a temp file in the same
// directory which is then renamed over the target.
func (s *Store) Save(cfg Settings) error {
	encoded, err := s.encode(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-settings-*")
	if err != nil {
		return fmt.Errorf("config: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(encoded); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("config: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("config: close temp: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("config: chmod temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("config: rename temp: %w", err)
	}
	success = true
	return nil
}
