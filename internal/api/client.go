package api

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/mauzec/task-manager/internal/core"
	"go.uber.org/zap"
)

// DefaultDelay mimics network latency of a remote backend.
const DefaultDelay = 300 * time.Millisecond

type taskStore interface {
	ListAll(ctx context.Context) ([]core.Task, error)
	GetByID(ctx context.Context, id string) (core.Task, error)
	Create(ctx context.Context, d core.Draft) (core.Task, error)
	Update(ctx context.Context, id string, p core.Patch) (core.Task, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Sleeper waits d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ListParams narrows and orders GetAllTasks results.
type ListParams struct {
	Filter core.Filter
	Sort   core.SortMode
}

type ClientOptions struct {
	Store taskStore
	// Delay before each call. Zero disables it.
	Delay  time.Duration
	Sleep  Sleeper
	Logger *zap.Logger
}

// Client exposes the store as an async-looking API with an envelope result.
type Client struct {
	store  taskStore
	delay  time.Duration
	sleep  Sleeper
	logger *zap.Logger
}

func NewClient(opts ClientOptions) (*Client, error) {
	const op = "api.NewClient"
	if opts.Store == nil {
		return nil, core.NewAppErrorBuilder(core.ErrorCodeInternal).
			Message("task store required").
			SafeToShow(false).
			Oper(op).
			Build()
	}
	if opts.Delay < 0 {
		return nil, core.NewAppErrorBuilder(core.ErrorCodeValidation).
			Message("delay must not be negative").
			SafeToShow(true).
			Oper(op).
			Build()
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepCtx
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Client{
		store:  opts.Store,
		delay:  opts.Delay,
		sleep:  opts.Sleep,
		logger: opts.Logger,
	}, nil
}

func (c *Client) GetAllTasks(ctx context.Context, params ListParams) Response[[]core.Task] {
	const op = "api.Client.GetAllTasks"
	done := c.begin(op, "")

	if err := c.wait(ctx); err != nil {
		return finish(done, failedCtx[[]core.Task](err))
	}
	tasks, err := c.store.ListAll(ctx)
	if err != nil {
		return finish(done, failed[[]core.Task](err))
	}
	tasks = core.Query(tasks, params.Filter, params.Sort)
	return finish(done, ok(tasks, "fetched "+strconv.Itoa(len(tasks))+" tasks"))
}

func (c *Client) GetTaskByID(ctx context.Context, id string) Response[*core.Task] {
	const op = "api.Client.GetTaskByID"
	done := c.begin(op, id)

	if err := c.wait(ctx); err != nil {
		return finish(done, failedCtx[*core.Task](err))
	}
	t, err := c.store.GetByID(ctx, id)
	if err != nil {
		return finish(done, failed[*core.Task](err))
	}
	return finish(done, ok(taskPtr(t), "task found"))
}

func (c *Client) CreateTask(ctx context.Context, d core.Draft) Response[*core.Task] {
	const op = "api.Client.CreateTask"
	done := c.begin(op, "")

	if err := c.wait(ctx); err != nil {
		return finish(done, failedCtx[*core.Task](err))
	}
	t, err := c.store.Create(ctx, d)
	if err != nil {
		return finish(done, failed[*core.Task](err))
	}
	done.taskID = t.ID
	return finish(done, ok(taskPtr(t), "task created"))
}

func (c *Client) UpdateTask(ctx context.Context, id string, p core.Patch) Response[*core.Task] {
	const op = "api.Client.UpdateTask"
	done := c.begin(op, id)

	if err := c.wait(ctx); err != nil {
		return finish(done, failedCtx[*core.Task](err))
	}
	t, err := c.store.Update(ctx, id, p)
	if err != nil {
		return finish(done, failed[*core.Task](err))
	}
	return finish(done, ok(taskPtr(t), "task updated"))
}

func (c *Client) DeleteTask(ctx context.Context, id string) Response[bool] {
	const op = "api.Client.DeleteTask"
	done := c.begin(op, id)

	if err := c.wait(ctx); err != nil {
		return finish(done, failedCtx[bool](err))
	}
	removed, err := c.store.Delete(ctx, id)
	if err != nil {
		return finish(done, failed[bool](err))
	}
	return finish(done, ok(removed, "task deleted"))
}

func (c *Client) wait(ctx context.Context) error {
	return c.sleep(ctx, c.delay)
}

// call holds what gets logged once a call returns.
type call struct {
	logger *zap.Logger
	op     string
	reqID  string
	taskID string
	start  time.Time
}

func (c *Client) begin(op, taskID string) *call {
	return &call{
		logger: c.logger,
		op:     op,
		reqID:  uuid.NewString(),
		taskID: taskID,
		start:  time.Now(),
	}
}

func finish[T any](cl *call, resp Response[T]) Response[T] {
	fields := []zap.Field{
		zap.String("op", cl.op),
		zap.String("request_id", cl.reqID),
		zap.Duration("latency", time.Since(cl.start)),
		zap.Bool("success", resp.Success),
	}
	if cl.taskID != "" {
		fields = append(fields, zap.String("task_id", cl.taskID))
	}
	if resp.Success {
		cl.logger.Info("request", fields...)
		return resp
	}
	fields = append(fields, zap.String("message", resp.Message))
	cl.logger.Warn("request failed", fields...)
	return resp
}

// failedCtx reports a cancelled or expired delay with the context error text.
func failedCtx[T any](err error) Response[T] {
	var zero T
	return Response[T]{Data: zero, Success: false, Message: err.Error()}
}
