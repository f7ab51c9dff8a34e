package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mauzec/task-manager/internal/core"
)

// ErrMalformed marks a slot value that is not a JSON array.
var ErrMalformed = errors.New("storage: malformed task collection")

// EncodeTasks serializes the collection as a plain JSON array.
func EncodeTasks(tasks []core.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []core.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return nil, fmt.Errorf("storage: encode tasks: %w", err)
	}
	return data, nil
}

// DecodeTasks parses a slot value. Records that break a Task invariant
// (bad enum, blank title, duplicate id, ...) are dropped and reported in the
// joined error while the rest are returned. A value that is not an array at
// all yields ErrMalformed and no tasks.
func DecodeTasks(data []byte) ([]core.Task, error) {
	raws := []json.RawMessage{}
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if raws == nil {
		// literal null
		return []core.Task{}, nil
	}

	tasks := make([]core.Task, 0, len(raws))
	seen := make(map[string]bool, len(raws))
	var errs []error
	for i, raw := range raws {
		t := core.Task{}
		if err := json.Unmarshal(raw, &t); err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		if err := t.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		if seen[t.ID] {
			errs = append(errs, fmt.Errorf("record %d: duplicate id %q", i, t.ID))
			continue
		}
		seen[t.ID] = true
		tasks = append(tasks, t)
	}
	return tasks, errors.Join(errs...)
}
