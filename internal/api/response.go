package api

import (
	"errors"

	"github.com/mauzec/task-manager/internal/core"
)

// Response is the envelope every client call returns.
type Response[T any] struct {
	Data    T      `json:"data"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func ok[T any](data T, msg string) Response[T] {
	return Response[T]{Data: data, Success: true, Message: msg}
}

func failed[T any](err error) Response[T] {
	var zero T
	return Response[T]{Data: zero, Success: false, Message: publicMessage(err)}
}

// publicMessage hides anything not marked safe behind "internal error".
func publicMessage(err error) string {
	if err == nil {
		return "internal error"
	}
	if errors.Is(err, core.ErrNotFound) {
		return "task not found"
	}
	if appErr, ok := core.AsAppError(err); ok {
		return appErr.PublicMessage()
	}
	return "internal error"
}

func taskPtr(t core.Task) *core.Task {
	return &t
}
