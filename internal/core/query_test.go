package core

import (
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

var base = time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

func mkTask(id string, p Priority, s Status, c Category, createdAt time.Time) Task {
	return Task{
		ID:        id,
		Title:     "task " + id,
		Category:  c,
		Status:    s,
		Priority:  p,
		CreatedAt: createdAt,
	}
}

func ids(tasks []Task) []string {
	res := make([]string, 0, len(tasks))
	for _, t := range tasks {
		res = append(res, t.ID)
	}
	return res
}

func TestSortByPriority(t *testing.T) {
	tasks := []Task{
		mkTask("low", PriorityLow, StatusToDo, CategoryBug, base),
		mkTask("high", PriorityHigh, StatusToDo, CategoryBug, base.Add(time.Minute)),
		mkTask("medium", PriorityMedium, StatusToDo, CategoryBug, base.Add(2*time.Minute)),
	}
	got := SortTasks(tasks, SortPriority)
	assert.DeepEqual(t, []string{"high", "medium", "low"}, ids(got))
	assert.DeepEqual(t, []string{"low", "high", "medium"}, ids(tasks))
}

func TestSortByPriorityIsStable(t *testing.T) {
	tasks := []Task{
		mkTask("a", PriorityMedium, StatusToDo, CategoryBug, base.Add(5*time.Minute)),
		mkTask("x", PriorityHigh, StatusToDo, CategoryBug, base),
		mkTask("b", PriorityMedium, StatusToDo, CategoryBug, base),
		mkTask("c", PriorityMedium, StatusToDo, CategoryBug, base.Add(time.Hour)),
		mkTask("y", PriorityHigh, StatusToDo, CategoryBug, base.Add(time.Hour)),
	}
	got := SortTasks(tasks, SortPriority)
	assert.DeepEqual(t, []string{"x", "y", "a", "b", "c"}, ids(got))
}

func TestSortByCreatedAt(t *testing.T) {
	tasks := []Task{
		mkTask("mid", PriorityLow, StatusToDo, CategoryBug, base),
		mkTask("old", PriorityLow, StatusToDo, CategoryBug, base.Add(-time.Hour)),
		mkTask("new", PriorityLow, StatusToDo, CategoryBug, base.Add(time.Hour)),
	}
	assert.DeepEqual(t, []string{"new", "mid", "old"}, ids(SortTasks(tasks, SortNewest)))
	assert.DeepEqual(t, []string{"old", "mid", "new"}, ids(SortTasks(tasks, SortOldest)))
}

func TestSortEmpty(t *testing.T) {
	got := SortTasks(nil, SortNewest)
	assert.Assert(t, got != nil)
	assert.Equal(t, 0, len(got))
}

func TestParseSortMode(t *testing.T) {
	m, err := ParseSortMode("")
	assert.NilError(t, err)
	assert.Equal(t, SortNewest, m)

	m, err = ParseSortMode(" Priority ")
	assert.NilError(t, err)
	assert.Equal(t, SortPriority, m)

	_, err = ParseSortMode("alphabetical")
	assert.ErrorContains(t, err, "unknown sort mode")
}

func TestFilterTasks(t *testing.T) {
	tasks := []Task{
		mkTask("1", PriorityHigh, StatusToDo, CategoryBug, base),
		mkTask("2", PriorityMedium, StatusInProgress, CategoryFeature, base.Add(24*time.Hour)),
		mkTask("3", PriorityLow, StatusInProgress, CategoryDocumentation, base.Add(48*time.Hour)),
	}
	tasks[1].Title = "Add Dark Mode"

	inProgress := StatusInProgress
	feature := CategoryFeature
	low := PriorityLow
	done := StatusDone
	from := base.Add(24 * time.Hour)
	to := base.Add(24 * time.Hour)
	on := time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "no constraints", filter: Filter{}, want: []string{"1", "2", "3"}},
		{name: "status", filter: Filter{Status: &inProgress}, want: []string{"2", "3"}},
		{name: "status and category", filter: Filter{Status: &inProgress, Category: &feature}, want: []string{"2"}},
		{name: "priority", filter: Filter{Priority: &low}, want: []string{"3"}},
		{name: "title case insensitive", filter: Filter{Title: "dark"}, want: []string{"2"}},
		{name: "blank title ignored", filter: Filter{Title: "  "}, want: []string{"1", "2", "3"}},
		{name: "from", filter: Filter{From: &from}, want: []string{"2", "3"}},
		{name: "inclusive range", filter: Filter{From: &from, To: &to}, want: []string{"2"}},
		{name: "exact day", filter: Filter{On: &on}, want: []string{"3"}},
		{name: "no done tasks", filter: Filter{Status: &done}, want: []string{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterTasks(tasks, tc.filter)
			assert.Assert(t, got != nil)
			assert.DeepEqual(t, tc.want, ids(got))
		})
	}
}

func TestFilterExactDayHonoursLocation(t *testing.T) {
	// 23:30 UTC on the 10th is already the 11th in UTC+3.
	late := mkTask("late", PriorityLow, StatusToDo, CategoryBug, time.Date(2025, 5, 10, 23, 30, 0, 0, time.UTC))
	loc := time.FixedZone("UTC+3", 3*60*60)
	on := time.Date(2025, 5, 11, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, len(FilterTasks([]Task{late}, Filter{On: &on})))
	assert.Equal(t, 1, len(FilterTasks([]Task{late}, Filter{On: &on, Location: loc})))
}

func TestQuery(t *testing.T) {
	tasks := []Task{
		mkTask("a", PriorityLow, StatusDone, CategoryBug, base),
		mkTask("b", PriorityHigh, StatusDone, CategoryBug, base.Add(time.Minute)),
		mkTask("c", PriorityHigh, StatusToDo, CategoryBug, base.Add(2*time.Minute)),
	}
	done := StatusDone
	got := Query(tasks, Filter{Status: &done}, SortPriority)
	assert.DeepEqual(t, []string{"b", "a"}, ids(got))
	assert.Assert(t, (Filter{Status: &done}).IsEmpty() == false)
	assert.Assert(t, Filter{}.IsEmpty())
}
