package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrSnapshotNotFound - снимок ещё ни разу не сохранялся.
var ErrSnapshotNotFound = errors.New("catalog snapshot not found")

// SnapshotStore хранит последний опубликованный список командиров как JSON-массив строк.
type SnapshotStore interface {
	// Load возвращает сохранённый список и время его записи.
	Load(ctx context.Context) ([]string, time.Time, error)
	// Save заменяет снимок целиком. Читатель никогда не видит частично записанный снимок.
	Save(ctx context.Context, commanders []string) error
}

type fileSnapshotStore struct {
	path string
}

func NewFileSnapshotStore(path string) (SnapshotStore, error) {
	if path == "" {
		return nil, errors.New("snapshot file path is required")
	}
	return &fileSnapshotStore{path: path}, nil
}

func (s *fileSnapshotStore) Load(ctx context.Context) ([]string, time.Time, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, time.Time{}, ErrSnapshotNotFound
		}
		return nil, time.Time{}, fmt.Errorf("failed to open snapshot %s: %w", s.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to stat snapshot %s: %w", s.path, err)
	}

	commanders, err := decodeSnapshot(f)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("snapshot %s: %w", s.path, err)
	}
	return commanders, info.ModTime().UTC(), nil
}

// Save пишет во временный файл в том же каталоге и переименовывает его поверх старого.
func (s *fileSnapshotStore) Save(ctx context.Context, commanders []string) error {
	data, err := encodeSnapshot(commanders)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp snapshot: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temp snapshot: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp snapshot: %w", err)
	}
	if err = os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot %s: %w", s.path, err)
	}
	return nil
}

func encodeSnapshot(commanders []string) ([]byte, error) {
	if commanders == nil {
		commanders = []string{}
	}
	data, err := json.Marshal(commanders)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

func decodeSnapshot(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []string{}, nil
	}
	var commanders []string
	if err := json.Unmarshal(data, &commanders); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if commanders == nil {
		commanders = []string{}
	}
	return commanders, nil
}
