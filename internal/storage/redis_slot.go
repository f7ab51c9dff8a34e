package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ Slot = (*RedisSlot)(nil)

// RedisSlot stores the value under one redis key. Several processes may share
// it; the last Save wins.
type RedisSlot struct {
	client *redis.Client
	key    string
}

func NewRedisSlot(url, key string, pingTimeout time.Duration) (*RedisSlot, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("storage: invalid redis url: %w", err)
	}
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("storage: connect redis: %w", err)
	}
	return NewRedisSlotFromClient(client, key), nil
}

// NewRedisSlotFromClient wraps an existing client. The slot owns it after this call.
func NewRedisSlotFromClient(client *redis.Client, key string) *RedisSlot {
	if key == "" {
		key = DefaultSlotKey
	}
	return &RedisSlot{client: client, key: key}
}

func (s *RedisSlot) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSlotEmpty
		}
		return nil, fmt.Errorf("storage: read redis slot: %w", err)
	}
	return data, nil
}

func (s *RedisSlot) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("storage: write redis slot: %w", err)
	}
	return nil
}

func (s *RedisSlot) Close() error {
	return s.client.Close()
}
