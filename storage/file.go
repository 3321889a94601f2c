package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// FileStore persists the ledger snapshot as a flat JSON map on disk
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed snapshot store at the given path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the snapshot file. A missing file yields an empty ledger.
func (s *FileStore) Load(_ context.Context) (map[string]int64, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			log.WithField("path", s.path).Info("No ledger snapshot found, starting empty")
			return map[string]int64{}, nil
		}
		return nil, fmt.Errorf("failed to read ledger snapshot: %w", err)
	}

	var balances map[string]int64
	if err := json.Unmarshal(data, &balances); err != nil {
		return nil, fmt.Errorf("failed to parse ledger snapshot: %w", err)
	}
	if balances == nil {
		balances = map[string]int64{}
	}
	return balances, nil
}

// Save writes the snapshot through a temp file and rename so a crash mid-write
// never leaves a truncated snapshot behind
func (s *FileStore) Save(_ context.Context, balances map[string]int64) error {
	data, err := json.MarshalIndent(balances, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ledger snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp snapshot: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace ledger snapshot: %w", err)
	}
	return nil
}
