package core

import (
	"strings"
	"time"
)

// Task is a single tracked piece of work.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    Category `json:"category"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`

	CreatedAt time.Time `json:"createdAt"`
}

// Draft is what a caller supplies to create a Task.
type Draft struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    Category `json:"category"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
}

// Patch is a partial update. Nil fields keep the prior value.
type Patch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Category    *Category `json:"category,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
}

func NewTask(id string, now time.Time, d Draft) Task {
	return Task{
		ID:          id,
		Title:       strings.TrimSpace(d.Title),
		Description: d.Description,
		Category:    d.Category,
		Status:      d.Status,
		Priority:    d.Priority,
		CreatedAt:   now,
	}
}

// Validate checks the draft before it reaches a store.
func (d Draft) Validate() error {
	const op = "core.Draft.Validate"
	if strings.TrimSpace(d.Title) == "" {
		return NewTaskValidationError("title is required", nil, op)
	}
	return validateEnums(op, d.Category, d.Status, d.Priority)
}

func (p Patch) Validate() error {
	const op = "core.Patch.Validate"
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return NewTaskValidationError("title is required", nil, op)
	}
	if p.Category != nil && !p.Category.Valid() {
		return NewTaskValidationError("unknown category "+quote(string(*p.Category)), nil, op)
	}
	if p.Status != nil && !p.Status.Valid() {
		return NewTaskValidationError("unknown status "+quote(string(*p.Status)), nil, op)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return NewTaskValidationError("unknown priority "+quote(string(*p.Priority)), nil, op)
	}
	return nil
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil &&
		p.Category == nil && p.Status == nil && p.Priority == nil
}

// Apply returns a copy of t with the patch fields merged in.
// ID and CreatedAt are never touched.
func (p Patch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	return t
}

// Validate checks a complete record, as found in persisted data or an import.
func (t Task) Validate() error {
	const op = "core.Task.Validate"
	if strings.TrimSpace(t.ID) == "" {
		return NewTaskValidationError("id is required", nil, op)
	}
	if strings.TrimSpace(t.Title) == "" {
		return NewTaskValidationError("title is required", nil, op).WithMeta("task_id", t.ID)
	}
	if t.CreatedAt.IsZero() {
		return NewTaskValidationError("createdAt is required", nil, op).WithMeta("task_id", t.ID)
	}
	if err := validateEnums(op, t.Category, t.Status, t.Priority); err != nil {
		if appErr, ok := AsAppError(err); ok {
			return appErr.WithMeta("task_id", t.ID)
		}
		return err
	}
	return nil
}

func CloneTasks(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	return append(make([]Task, 0, len(tasks)), tasks...)
}

func validateEnums(op string, c Category, s Status, p Priority) error {
	if !c.Valid() {
		return NewTaskValidationError("unknown category "+quote(string(c)), nil, op)
	}
	if !s.Valid() {
		return NewTaskValidationError("unknown status "+quote(string(s)), nil, op)
	}
	if !p.Valid() {
		return NewTaskValidationError("unknown priority "+quote(string(p)), nil, op)
	}
	return nil
}

func quote(s string) string {
	return `"` + s + `"`
}
