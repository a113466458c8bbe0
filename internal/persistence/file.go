package persistence

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
	"sync"

	"github.com/rs/zerolog"
)

const fileExt = ".json"

// FileStore implements Store with one file per key under a base directory.
// Keys are path-escaped into file names.
type FileStore struct {
	statsCounter

	baseDir string
	logger  zerolog.Logger
	mu      sync.RWMutex
}

// NewFileStore creates the base directory if needed
func NewFileStore(baseDir string, logger zerolog.Logger) (*FileStore, error) {
	if baseDir == "" {
		return nil, errors.New("file store needs a base directory")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FileStore{
		baseDir: baseDir,
		logger:  logger.With().Str("component", "file_store").Str("base_dir", baseDir).Logger(),
	}, nil
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.baseDir, url.PathEscape(key)+fileExt)
}

func (f *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.RLock()
	data, err := os.ReadFile(f.path(key))
	f.mu.RUnlock()
	if errors.Is(err, fs.ErrNotExist) {
		err = ErrKeyNotFound
	} else if err != nil {
		err = fmt.Errorf("read %q: %w", key, err)
	}
	f.recordRead(err)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set writes to a temporary file and renames it over the target
func (f *FileStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	err := f.writeAtomic(f.path(key), value)
	f.mu.Unlock()
	f.recordWrite(err)
	if err != nil {
		f.logger.Error().Err(err).Str("key", key).Msg("Failed to write file")
		return fmt.Errorf("write %q: %w", key, err)
	}
	f.logger.Debug().Str("key", key).Int("bytes", len(value)).Msg("Wrote file")
	return nil
}

func (f *FileStore) writeAtomic(path string, value []byte) error {
	tmp, err := os.CreateTemp(f.baseDir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// Remove deletes the key's file; a missing file is not an error
func (f *FileStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	err := os.Remove(f.path(key))
	f.mu.Unlock()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	f.recordDelete()
	return nil
}

func (f *FileStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.RLock()
	entries, err := os.ReadDir(f.baseDir)
	f.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", f.baseDir, err)
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) || strings.HasPrefix(name, ".tmp-") {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, fileExt))
		if err != nil {
			f.logger.Warn().Str("file", name).Msg("Skipping file with invalid name")
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *FileStore) Close() error { return nil }
