package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/isoscene/pkg/domain"
)

const (
	snapshotExt = ".json"
	tmpPrefix   = "tmp-"
)

// Store implements ports.SnapshotStore using the local filesystem.
// Each snapshot is one file in BasePath; keys are query-escaped into file names.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".isoscene/snapshots".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".isoscene", "snapshots")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(key string) string {
	return filepath.Join(s.BasePath, url.QueryEscape(key)+snapshotExt)
}

// Save writes the snapshot atomically: temp file, fsync, rename.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("snapshot key cannot be empty")
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure snapshot directory: %w", err)
	}

	// Same directory as the destination so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, tmpPrefix+"*"+snapshotExt)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path(key)); err != nil {
		return fmt.Errorf("failed to rename temp file to snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot file.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("snapshot key cannot be empty")
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	return data, nil
}

// Delete removes the snapshot file.
func (s *Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("snapshot key cannot be empty")
	}

	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete snapshot file: %w", err)
	}
	return nil
}

// List returns all stored keys in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	keys := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != snapshotExt || strings.HasPrefix(name, tmpPrefix) {
			continue
		}
		key, err := url.QueryUnescape(strings.TrimSuffix(name, snapshotExt))
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}
