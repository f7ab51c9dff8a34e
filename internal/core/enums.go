package core

import (
	"fmt"
	"strings"
)

// Category is a kind of work a Task describes.
type Category string

// Status is a state of a Task.
type Status string

// Priority is an importance of a Task. Use Rank to compare.
type Priority string

const (
	CategoryBug           Category = "Bug"
	CategoryFeature       Category = "Feature"
	CategoryDocumentation Category = "Documentation"
	CategoryRefactor      Category = "Refactor"
	CategoryTest          Category = "Test"

	StatusToDo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"

	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

var (
	categories = []Category{CategoryBug, CategoryFeature, CategoryDocumentation, CategoryRefactor, CategoryTest}
	statuses   = []Status{StatusToDo, StatusInProgress, StatusDone}
	priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}
)

// Categories returns every valid category in declaration order.
func Categories() []Category { return append([]Category(nil), categories...) }

// Statuses returns every valid status in declaration order.
func Statuses() []Status { return append([]Status(nil), statuses...) }

// Priorities returns every valid priority from lowest to highest.
func Priorities() []Priority { return append([]Priority(nil), priorities...) }

func (c Category) Valid() bool {
	for _, v := range categories {
		if c == v {
			return true
		}
	}
	return false
}

func (s Status) Valid() bool {
	for _, v := range statuses {
		if s == v {
			return true
		}
	}
	return false
}

func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Rank returns High=3, Medium=2, Low=1 and 0 for anything else.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

func (c Category) String() string { return string(c) }
func (s Status) String() string   { return string(s) }
func (p Priority) String() string { return string(p) }

// ParseCategory accepts the exact value or a case-insensitive match.
func ParseCategory(raw string) (Category, error) {
	for _, v := range categories {
		if matchEnum(raw, string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", raw)
}

// ParseStatus accepts "To Do", "todo", "to-do", "in_progress" and friends.
func ParseStatus(raw string) (Status, error) {
	for _, v := range statuses {
		if matchEnum(raw, string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", raw)
}

func ParsePriority(raw string) (Priority, error) {
	for _, v := range priorities {
		if matchEnum(raw, string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown priority %q", raw)
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unknown category %q", string(c))
	}
	return []byte(c), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	v, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown status %q", string(s))
	}
	return []byte(s), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (p Priority) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("unknown priority %q", string(p))
	}
	return []byte(p), nil
}

func (p *Priority) UnmarshalText(b []byte) error {
	v, err := ParsePriority(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// matchEnum compares ignoring case, spaces, '-' and '_'.
func matchEnum(raw, want string) bool {
	return foldEnum(raw) == foldEnum(want) && foldEnum(raw) != ""
}

func foldEnum(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
}
