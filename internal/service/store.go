package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/mauzec/task-manager/internal/core"
	"github.com/mauzec/task-manager/internal/storage"
	"go.uber.org/zap"
)

// maxIDAttempts bounds retries when the generator returns a taken id.
const maxIDAttempts = 3

// TaskStore owns the task collection. Every mutation is written to the slot
// before it becomes visible; callers only ever get copies.
type TaskStore struct {
	slot  storage.Slot
	idGen IDGenerator

	// tasks keeps insertion order.
	tasks []core.Task

	mu     sync.Mutex
	now    func() time.Time
	logger *zap.Logger
}

func NewTaskStore(
	ctx context.Context,
	slot storage.Slot,
	idGen IDGenerator,
	now func() time.Time,
	logger *zap.Logger,
) (*TaskStore, error) {
	const op = "service.NewTaskStore"
	if slot == nil {
		return nil, core.NewAppErrorBuilder(core.ErrorCodeInternal).
			Message("task slot required").
			SafeToShow(false).
			Oper(op).
			Build()
	}
	if idGen == nil {
		return nil, core.NewAppErrorBuilder(core.ErrorCodeInternal).
			Message("id gen required").
			SafeToShow(false).
			Oper(op).
			Build()
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ts := &TaskStore{
		slot:   slot,
		idGen:  idGen,
		now:    now,
		logger: logger,
	}
	ts.tasks = ts.load(ctx)
	logger.Info("task store ready", zap.Int("tasks", len(ts.tasks)))

	return ts, nil
}

// ListAll returns a copy of every task in insertion order.
func (ts *TaskStore) ListAll(ctx context.Context) ([]core.Task, error) {
	const op = "service.TaskStore.ListAll"

	if err := ctx.Err(); err != nil {
		return nil, internalError(op, "ctx error", err)
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()
	res := make([]core.Task, len(ts.tasks))
	copy(res, ts.tasks)
	return res, nil
}

// GetByID returns only one task by id.
func (ts *TaskStore) GetByID(ctx context.Context, id string) (core.Task, error) {
	const op = "service.TaskStore.GetByID"

	if err := ctx.Err(); err != nil {
		return core.Task{}, internalError(op, "ctx error", err)
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()
	i := ts.indexOf(id)
	if i < 0 {
		return core.Task{}, core.NewTaskNotFoundError(id, op)
	}
	return ts.tasks[i], nil
}

func (ts *TaskStore) Create(ctx context.Context, d core.Draft) (core.Task, error) {
	const op = "service.TaskStore.Create"

	if err := ctx.Err(); err != nil {
		return core.Task{}, internalError(op, "ctx error", err)
	}
	if err := d.Validate(); err != nil {
		return core.Task{}, tryAsAppError(err, op)
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	id, err := ts.freshID(op)
	if err != nil {
		return core.Task{}, err
	}
	t := core.NewTask(id, ts.now().UTC(), d)

	next := append(core.CloneTasks(ts.tasks), t)
	if err := ts.commit(ctx, op, next); err != nil {
		return core.Task{}, err
	}

	ts.logger.Debug("task created",
		zap.String("task_id", t.ID),
		zap.String("category", t.Category.String()),
		zap.String("priority", t.Priority.String()),
	)
	return t, nil
}

// Update merges patch into the task. Id and CreatedAt never change.
func (ts *TaskStore) Update(ctx context.Context, id string, patch core.Patch) (core.Task, error) {
	const op = "service.TaskStore.Update"

	if err := ctx.Err(); err != nil {
		return core.Task{}, internalError(op, "ctx error", err)
	}
	if err := patch.Validate(); err != nil {
		return core.Task{}, tryAsAppError(err, op)
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	i := ts.indexOf(id)
	if i < 0 {
		return core.Task{}, core.NewTaskNotFoundError(id, op)
	}

	next := core.CloneTasks(ts.tasks)
	next[i] = patch.Apply(next[i])
	if err := ts.commit(ctx, op, next); err != nil {
		return core.Task{}, err
	}

	ts.logger.Debug("task updated", zap.String("task_id", id), zap.Bool("noop", patch.IsEmpty()))
	return next[i], nil
}

// Delete removes the task and reports whether something was removed.
// A missing id gives false and a not found error; the slot is left alone.
func (ts *TaskStore) Delete(ctx context.Context, id string) (bool, error) {
	const op = "service.TaskStore.Delete"

	if err := ctx.Err(); err != nil {
		return false, internalError(op, "ctx error", err)
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	i := ts.indexOf(id)
	if i < 0 {
		return false, core.NewTaskNotFoundError(id, op)
	}

	next := make([]core.Task, 0, len(ts.tasks)-1)
	next = append(next, ts.tasks[:i]...)
	next = append(next, ts.tasks[i+1:]...)
	if err := ts.commit(ctx, op, next); err != nil {
		return false, err
	}

	ts.logger.Debug("task deleted", zap.String("task_id", id))
	return true, nil
}

// ReplaceAll swaps the whole collection, e.g. for an import. Every task must
// be complete and ids must be unique, otherwise nothing changes.
func (ts *TaskStore) ReplaceAll(ctx context.Context, tasks []core.Task) ([]core.Task, error) {
	const op = "service.TaskStore.ReplaceAll"

	if err := ctx.Err(); err != nil {
		return nil, internalError(op, "ctx error", err)
	}

	next := make([]core.Task, 0, len(tasks))
	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			return nil, tryAsAppError(err, op)
		}
		if seen[t.ID] {
			return nil, core.NewTaskConflictError(t.ID, op)
		}
		seen[t.ID] = true
		t.CreatedAt = t.CreatedAt.UTC()
		next = append(next, t)
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()
	if err := ts.commit(ctx, op, next); err != nil {
		return nil, err
	}

	ts.logger.Info("tasks replaced", zap.Int("tasks", len(next)))
	return core.CloneTasks(next), nil
}

// commit persists next and only then makes it the live collection.
// Caller holds ts.mu.
func (ts *TaskStore) commit(ctx context.Context, op string, next []core.Task) error {
	data, err := storage.EncodeTasks(next)
	if err != nil {
		return internalError(op, "encode tasks", err)
	}
	if err := ts.slot.Save(ctx, data); err != nil {
		ts.logger.Error("cant persist tasks",
			zap.String("op", op),
			zap.Int("tasks", len(next)),
			zap.Error(err),
		)
		return internalError(op, "persist tasks", err)
	}
	ts.tasks = next
	return nil
}

// freshID asks the generator for an id not used in the collection.
// Caller holds ts.mu.
func (ts *TaskStore) freshID(op string) (string, error) {
	var id string
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		var err error
		id, err = ts.idGen.NewID()
		if err != nil {
			return "", internalError(op, "gen id error", err)
		}
		if id != "" && ts.indexOf(id) < 0 {
			return id, nil
		}
		ts.logger.Warn("generated id already taken", zap.String("task_id", id))
	}
	return "", core.NewTaskConflictError(id, op)
}

func (ts *TaskStore) indexOf(id string) int {
	for i := range ts.tasks {
		if ts.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// load reads the persisted collection. Missing, unreadable or malformed
// data is never an error here: the store starts empty and logs why.
func (ts *TaskStore) load(ctx context.Context) []core.Task {
	const op = "service.TaskStore.load"

	data, err := ts.slot.Load(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSlotEmpty) {
			ts.logger.Debug("no persisted tasks, starting empty")
			return []core.Task{}
		}
		ts.recovered(core.NewPersistenceReadError("read slot", err, op))
		return []core.Task{}
	}

	tasks, err := storage.DecodeTasks(data)
	if err != nil {
		if errors.Is(err, storage.ErrMalformed) {
			ts.recovered(core.NewPersistenceReadError("decode slot", err, op))
			return []core.Task{}
		}
		ts.recovered(core.NewPersistenceReadError("skip invalid records", err, op).
			WithMeta("kept", strconv.Itoa(len(tasks))))
	}
	return tasks
}

func (ts *TaskStore) recovered(err *core.AppError) {
	fields := []zap.Field{
		zap.String("op", err.Operation),
		zap.String("code", err.Code.String()),
		zap.Error(err),
	}
	for k, v := range err.Meta {
		fields = append(fields, zap.String(k, v))
	}
	ts.logger.Warn("persisted tasks recovered", fields...)
}

func tryAsAppError(err error, op string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := core.AsAppError(err); ok {
		return appErr.WithOper(op)
	}
	return internalError(op, "unexpected error", err)
}

func internalError(op, msg string, err error) error {
	return core.NewAppErrorBuilder(core.ErrorCodeInternal).
		Message(msg).
		Err(err).
		SafeToShow(false).
		Oper(op).
		Build()
}
