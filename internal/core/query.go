package core

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
)

// SortMode selects the order of a task listing.
type SortMode string

const (
	SortNewest   SortMode = "newest"
	SortOldest   SortMode = "oldest"
	SortPriority SortMode = "priority"
)

func ParseSortMode(raw string) (SortMode, error) {
	switch m := SortMode(strings.ToLower(strings.TrimSpace(raw))); m {
	case SortNewest, SortOldest, SortPriority:
		return m, nil
	case "":
		return SortNewest, nil
	default:
		return "", fmt.Errorf("unknown sort mode %q", raw)
	}
}

// Filter narrows a task listing. Unset fields match everything.
type Filter struct {
	Status   *Status
	Category *Category
	Priority *Priority
	// Title is a case-insensitive substring of the task title.
	Title string

	// From and To bound CreatedAt, both inclusive.
	From *time.Time
	To   *time.Time
	// On keeps tasks created on the same calendar day as On, read in Location.
	On       *time.Time
	Location *time.Location
}

func (f Filter) IsEmpty() bool {
	return f.Status == nil && f.Category == nil && f.Priority == nil &&
		strings.TrimSpace(f.Title) == "" &&
		f.From == nil && f.To == nil && f.On == nil
}

// Match reports whether t passes every set constraint.
func (f Filter) Match(t Task) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Category != nil && t.Category != *f.Category {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if q := strings.TrimSpace(f.Title); q != "" &&
		!strings.Contains(strings.ToLower(t.Title), strings.ToLower(q)) {
		return false
	}
	if f.From != nil && t.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && t.CreatedAt.After(*f.To) {
		return false
	}
	if f.On != nil && !sameDay(t.CreatedAt, *f.On, f.location()) {
		return false
	}
	return true
}

func (f Filter) location() *time.Location {
	if f.Location == nil {
		return time.UTC
	}
	return f.Location
}

// FilterTasks returns the tasks passing f. Input is not modified.
func FilterTasks(tasks []Task, f Filter) []Task {
	res := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			res = append(res, t)
		}
	}
	return res
}

// SortTasks returns a stable-sorted copy of tasks.
func SortTasks(tasks []Task, mode SortMode) []Task {
	res := CloneTasks(tasks)
	if res == nil {
		res = []Task{}
	}
	slices.SortStableFunc(res, compareFunc(mode))
	return res
}

// Query filters then sorts.
func Query(tasks []Task, f Filter, mode SortMode) []Task {
	filtered := FilterTasks(tasks, f)
	slices.SortStableFunc(filtered, compareFunc(mode))
	return filtered
}

func compareFunc(mode SortMode) func(a, b Task) int {
	switch mode {
	case SortPriority:
		return func(a, b Task) int {
			return cmp.Compare(b.Priority.Rank(), a.Priority.Rank())
		}
	case SortOldest:
		return func(a, b Task) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	default:
		return func(a, b Task) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		}
	}
}

func sameDay(a, b time.Time, loc *time.Location) bool {
	y1, m1, d1 := a.In(loc).Date()
	y2, m2, d2 := b.In(loc).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
