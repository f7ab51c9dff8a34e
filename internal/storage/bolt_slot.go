package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var _ Slot = (*BoltSlot)(nil)

type BoltSlot struct {
	db  *bolt.DB
	key []byte
}

const boltSlotBucket = "task-manager"

func NewBoltSlot(path, key string, openTimeout time.Duration) (*BoltSlot, error) {
	if path == "" {
		return nil, errors.New("storage: required bolt path")
	}
	if key == "" {
		key = DefaultSlotKey
	}
	if openTimeout <= 0 {
		openTimeout = time.Second
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("storage: create bolt dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600,
		&bolt.Options{Timeout: openTimeout},
	)
	if err != nil {
		return nil, fmt.Errorf("storage: opening bolt: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, berr := tx.CreateBucketIfNotExists([]byte(boltSlotBucket))
		return berr
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: cant init bucket: %w", err)
	}

	return &BoltSlot{db: db, key: []byte(key)}, nil
}

func (s *BoltSlot) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *BoltSlot) Load(ctx context.Context) ([]byte, error) {
	if s.db == nil {
		return nil, errors.New("storage: bolt not init")
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	if err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(boltSlotBucket))
		if bucket == nil {
			return errors.New("storage: bucket miss")
		}
		value := bucket.Get(s.key)
		if value == nil {
			return nil
		}
		// value is only valid inside the tx
		data = append([]byte(nil), value...)
		return nil
	}); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrSlotEmpty
	}
	return data, nil
}

func (s *BoltSlot) Save(ctx context.Context, data []byte) error {
	if s.db == nil {
		return errors.New("storage: bolt not init")
	} else if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(boltSlotBucket))
		if bucket == nil {
			return errors.New("storage: bucket miss")
		}
		if data == nil {
			data = []byte{}
		}
		return bucket.Put(s.key, data)
	})
}
