package storage

import (
	"context"
	"errors"
)

// DefaultSlotKey is the name the task collection is stored under.
const DefaultSlotKey = "tasks"

// ErrSlotEmpty is returned by Load when nothing was saved yet.
var ErrSlotEmpty = errors.New("storage: slot is empty")

// Slot is a single named value in durable storage holding the serialized
// task collection. Save replaces the whole value. Implementations need not
// merge concurrent writers: the last Save wins.
type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Close() error
}
