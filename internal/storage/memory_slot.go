package storage

import (
	"context"
	"errors"
	"sync"
)

var _ Slot = (*MemorySlot)(nil)

// MemorySlot keeps the value in process memory. Nothing survives a restart
// unless the same MemorySlot is handed to a new store.
type MemorySlot struct {
	mu     sync.Mutex
	data   []byte
	saves  int
	closed bool
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

// NewMemorySlotWith returns a slot pre-filled with data, as if saved earlier.
func NewMemorySlotWith(data []byte) *MemorySlot {
	return &MemorySlot{data: append([]byte(nil), data...)}
}

func (s *MemorySlot) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errors.New("storage: memory slot closed")
	}
	if s.data == nil {
		return nil, ErrSlotEmpty
	}
	return append([]byte(nil), s.data...), nil
}

func (s *MemorySlot) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("storage: memory slot closed")
	}
	s.data = append(make([]byte, 0, len(data)), data...)
	s.saves++
	return nil
}

// Saves returns how many times Save succeeded.
func (s *MemorySlot) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *MemorySlot) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
