// Package view derives what to show from the store: a text-filtered, then
// length-limited, subsequence of the task list. Projections are recomputed on
// every read.
package view

import (
	"strings"

	"todo/internal/task"
)

const (
	// DefaultPageSize is the number of records revealed at session start.
	DefaultPageSize = 10

	// DefaultIncrement is how many more records each LoadMore reveals.
	DefaultIncrement = 10
)

// View is one projection of the store.
type View struct {
	// Tasks is the visible page, in store order.
	Tasks []task.Task

	// Matched is the filtered count before truncation.
	Matched int

	// PageSize is the limit the page was cut to.
	PageSize int

	// Query is the trimmed filter text the view was built with.
	Query string
}

// More reports whether records beyond the visible page match the filter.
func (v View) More() bool {
	return v.Matched > v.PageSize
}

// Filter returns the records whose title, description or id contains query
// case-insensitively. A blank query keeps everything.
func Filter(tasks []task.Task, query string) []task.Task {
	q := normalize(query)
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Matches(q) {
			out = append(out, t)
		}
	}
	return out
}

// Project filters tasks by query and truncates to pageSize.
func Project(tasks []task.Task, query string, pageSize int) View {
	if pageSize < 0 {
		pageSize = 0
	}
	filtered := Filter(tasks, query)
	visible := filtered
	if len(visible) > pageSize {
		visible = visible[:pageSize]
	}
	return View{
		Tasks:    visible,
		Matched:  len(filtered),
		PageSize: pageSize,
		Query:    strings.TrimSpace(query),
	}
}

func normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}
