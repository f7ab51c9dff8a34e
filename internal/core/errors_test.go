package core

import (
	"errors"
	"fmt"
	"testing"
)

const testOp = "core.errors_test"

func TestAppErrorPublicMessage(t *testing.T) {
	err := NewTaskInternalError(
		"internal salamander",
		errors.New("your bad"), testOp,
	)
	if got := err.PublicMessage(); got != "internal error" {
		t.Fatalf("PublicMessage: got %q, want internal error"+
			"because internal error not public", got)
	}

	safe := NewTaskConflictError("bad", testOp)
	if got := safe.PublicMessage(); got != "task bad already exists" {
		t.Fatalf("PublicMessage: got %q, want task bad already exists", got)
	}

	var nilErr *AppError
	if got := nilErr.PublicMessage(); got != "internal error" {
		t.Fatalf("nil PublicMessage: got %q", got)
	}
}

func TestAppErrorCloneImmutability(t *testing.T) {
	root := NewTaskValidationError("bad input", nil, "")
	new := root.WithOper("core.errors_test")
	if new == root {
		t.Fatal("WithOper should copy the error")
	}
	if root.Operation != "" {
		t.Fatalf("root error mutated, but it shouldn't: %v", root)
	}
	if new.Operation != "core.errors_test" {
		t.Fatalf("new error operation wrong: %v", new)
	}

	new = root.WithMeta("key", "val1")
	if new.Meta["key"] != "val1" {
		t.Fatalf("got new.Meta[key] = %q, want val1", new.Meta["key"])
	}
	if root.Meta != nil {
		t.Fatalf("root.Meta should remain nil, got %v", root.Meta)
	}

	next := new.WithMeta("some", "val2")
	if len(new.Meta) != 1 {
		t.Fatalf("new.Meta size should remain 1, got %d", len(new.Meta))
	}
	if len(next.Meta) != 2 {
		t.Fatalf("next.Meta size should be 2, got %d", len(next.Meta))
	}
}

func TestAppErrorErrorsIsAndAs(t *testing.T) {
	root := NewTaskNotFoundError("nf", testOp)
	w := fmt.Errorf("wrap: %w", root)
	if !errors.Is(w, ErrNotFound) {
		t.Fatalf("errors.Is should match AppError codes")
	}
	if errors.Is(w, ErrValidation) {
		t.Fatalf("not found must not match validation")
	}
	e, ok := AsAppError(w)
	if !ok {
		t.Fatalf("AsAppError failed")
	}
	if e.Code != ErrorCodeNotFound {
		t.Fatalf("new code = %v, want %v", e.Code, ErrorCodeNotFound)
	}
	if e.Meta["task_id"] != "nf" || e.Operation != testOp {
		t.Fatalf("meta/op not set: %#v", e)
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("disk on fire")
	err := NewPersistenceReadError("read slot", cause, testOp)
	if !errors.Is(err, cause) {
		t.Fatalf("cause should be reachable")
	}
	if got, want := err.Error(), "read slot: disk on fire"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if err.Code.String() != "persistence_read" {
		t.Fatalf("code string = %q", err.Code.String())
	}
}

func TestAppErrorBuilderReuse(t *testing.T) {
	b := NewAppErrorBuilder(ErrorCodeValidation).Meta("a", "1")
	first := b.Build()
	second := b.Build()
	if len(first.Meta) != 1 {
		t.Fatalf("first meta = %v", first.Meta)
	}
	if second.Meta != nil {
		t.Fatalf("builder meta leaked into second build: %v", second.Meta)
	}
}
