package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

const (
	// SnapshotVersion is the current snapshot file format version
	SnapshotVersion = 1
	// DefaultStateDir is the directory under $HOME for state files
	DefaultStateDir = ".local/state/yabaiindicator"
	// DefaultStateFile is the snapshot file name
	DefaultStateFile = "state.json"
)

// GetStatePath returns the full path to the snapshot file
func GetStatePath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, DefaultStateDir, DefaultStateFile)
}

// Store persists model snapshots so other processes can inspect them
type Store struct {
	path string
}

// NewStore creates a store at path, or the default path if empty
func NewStore(path string) *Store {
	if path == "" {
		path = GetStatePath()
	}
	return &Store{path: path}
}

// Path returns the snapshot file path
func (s *Store) Path() string {
	return s.path
}

// Load reads the snapshot, returning an empty one if the file doesn't exist
func (s *Store) Load() (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Snapshot{Version: SnapshotVersion}, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}

	if snap.Version > SnapshotVersion {
		return nil, fmt.Errorf("state file version %d is newer than supported %d", snap.Version, SnapshotVersion)
	}

	return &snap, nil
}

// Save writes the snapshot atomically using temp file + rename
func (s *Store) Save(snap Snapshot) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath) // Clean up temp file on failure
		return fmt.Errorf("failed to rename state file: %w", err)
	}

	return nil
}

// Observer returns a model observer that saves every snapshot
func (s *Store) Observer(logger zerolog.Logger) func(Snapshot) {
	return func(snap Snapshot) {
		if err := s.Save(snap); err != nil {
			logger.Warn().Err(err).Str("path", s.path).Msg("failed to save snapshot")
		}
	}
}
