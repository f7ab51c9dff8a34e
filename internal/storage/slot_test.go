package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/mauzec/task-manager/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// testSlot runs the behaviour every Slot must have.
func testSlot(t *testing.T, slot storage.Slot) {
	t.Helper()
	ctx := context.Background()

	_, err := slot.Load(ctx)
	require.ErrorIs(t, err, storage.ErrSlotEmpty)

	require.NoError(t, slot.Save(ctx, []byte(`[{"id":"a"}]`)))
	got, err := slot.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, `[{"id":"a"}]`, string(got))

	// last write wins, whole value replaced
	require.NoError(t, slot.Save(ctx, []byte(`[]`)))
	got, err = slot.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, `[]`, string(got))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	require.Error(t, slot.Save(cancelled, []byte(`[1]`)))
	got, err = slot.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, `[]`, string(got), "cancelled save must not write")
}

func TestMemorySlot(t *testing.T) {
	t.Parallel()
	slot := storage.NewMemorySlot()
	testSlot(t, slot)
	require.Equal(t, 2, slot.Saves())

	require.NoError(t, slot.Close())
	_, err := slot.Load(context.Background())
	require.Error(t, err)
}

func TestMemorySlotCopiesData(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	buf := []byte(`[]`)
	slot := storage.NewMemorySlotWith(buf)
	buf[0] = 'x'

	got, err := slot.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, `[]`, string(got))

	got[0] = 'y'
	again, err := slot.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, `[]`, string(again))
}

func TestFileSlot(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "tasks.json")
	slot, err := storage.NewFileSlot(path)
	require.NoError(t, err)
	defer slot.Close()

	testSlot(t, slot)
	require.NoFileExists(t, path+".tmp")
	require.FileExists(t, path)

	// a new slot over the same path sees the value, like after a restart
	reopened, err := storage.NewFileSlot(path)
	require.NoError(t, err)
	got, err := reopened.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, `[]`, string(got))
}

func TestFileSlotRequiresPath(t *testing.T) {
	t.Parallel()
	_, err := storage.NewFileSlot("")
	require.Error(t, err)
}

func TestBoltSlot(t *testing.T) {
	t.Parallel()
	dbPath := filepath.Join(t.TempDir(), "tasks.db")
	slot, err := storage.NewBoltSlot(dbPath, "", time.Second)
	require.NoError(t, err)

	testSlot(t, slot)
	require.NoError(t, slot.Close())
	require.NoError(t, slot.Close(), "double close is fine")

	slot, err = storage.NewBoltSlot(dbPath, storage.DefaultSlotKey, time.Second)
	require.NoError(t, err)
	defer func() { _ = slot.Close() }()

	got, err := slot.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, `[]`, string(got))

	other, err := storage.NewBoltSlot(filepath.Join(t.TempDir(), "other.db"), "other-key", time.Second)
	require.NoError(t, err)
	defer func() { _ = other.Close() }()
	_, err = other.Load(context.Background())
	require.ErrorIs(t, err, storage.ErrSlotEmpty)
}

func TestSQLiteSlot(t *testing.T) {
	t.Parallel()
	slot, err := storage.NewSQLiteSlot(":memory:", "")
	require.NoError(t, err)
	defer slot.Close()

	testSlot(t, slot)
}

func TestSQLiteSlotPersists(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "tasks.sqlite")

	slot, err := storage.NewSQLiteSlot(dbPath, "tasks")
	require.NoError(t, err)
	require.NoError(t, slot.Save(ctx, []byte(`["first"]`)))
	require.NoError(t, slot.Save(ctx, []byte(`["second"]`)))
	require.NoError(t, slot.Close())

	slot, err = storage.NewSQLiteSlot(dbPath, "tasks")
	require.NoError(t, err)
	defer slot.Close()
	got, err := slot.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, `["second"]`, string(got))

	other, err := storage.NewSQLiteSlot(dbPath, "other")
	require.NoError(t, err)
	defer other.Close()
	_, err = other.Load(ctx)
	require.ErrorIs(t, err, storage.ErrSlotEmpty)
}

func TestRedisSlot(t *testing.T) {
	t.Parallel()
	m, err := miniredis.Run()
	require.NoError(t, err)
	defer m.Close()

	slot, err := storage.NewRedisSlot("redis://"+m.Addr()+"/0", "tasks-test", time.Second)
	require.NoError(t, err)
	defer slot.Close()

	testSlot(t, slot)

	raw, err := m.Get("tasks-test")
	require.NoError(t, err)
	require.Equal(t, `[]`, raw)
}

func TestRedisSlotSharedKeyLastWriterWins(t *testing.T) {
	t.Parallel()
	m, err := miniredis.Run()
	require.NoError(t, err)
	defer m.Close()
	ctx := context.Background()

	a := storage.NewRedisSlotFromClient(redis.NewClient(&redis.Options{Addr: m.Addr()}), "")
	b := storage.NewRedisSlotFromClient(redis.NewClient(&redis.Options{Addr: m.Addr()}), "")
	defer a.Close()
	defer b.Close()

	require.NoError(t, a.Save(ctx, []byte(`["a"]`)))
	require.NoError(t, b.Save(ctx, []byte(`["b"]`)))

	got, err := a.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, `["b"]`, string(got))
}

func TestRedisSlotBadURL(t *testing.T) {
	t.Parallel()
	_, err := storage.NewRedisSlot("not-a-url", "", time.Second)
	require.Error(t, err)
}
