package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var _ Slot = (*FileSlot)(nil)

// FileSlot stores the value in one file. Writes go to a tmp file that is
// fsynced and renamed over the target, so a crash leaves either the old or
// the new value.
type FileSlot struct {
	path string
}

func NewFileSlot(path string) (*FileSlot, error) {
	if path == "" {
		return nil, errors.New("storage: required file slot path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("storage: create slot dir: %w", err)
	}
	return &FileSlot{path: path}, nil
}

func (s *FileSlot) Path() string {
	return s.path
}

func (s *FileSlot) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrSlotEmpty
		}
		return nil, fmt.Errorf("storage: read slot file: %w", err)
	}
	return data, nil
}

func (s *FileSlot) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tmpPath := s.path + ".tmp"
	f, err := os.OpenFile(
		tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC,
		0o644,
	)
	if err != nil {
		return fmt.Errorf("storage: open tmp: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		closeErr := f.Close()
		if closeErr != nil {
			return fmt.Errorf("storage: write: %v: close:%w", err, closeErr)
		}
		return fmt.Errorf("storage: write: %w", err)
	} else if err := f.Sync(); err != nil {
		closeErr := f.Close()
		if closeErr != nil {
			return fmt.Errorf("storage: fsync: %v: close:%w", err, closeErr)
		}
		return fmt.Errorf("storage: fsync: %w", err)
	} else if err := f.Close(); err != nil {
		return fmt.Errorf("storage: close: %w", err)
	} else if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("storage: rename tmp: %w", err)
	} else {
		return nil
	}
}

// Close is a no-op, the file is not held open between calls.
func (s *FileSlot) Close() error {
	return nil
}
