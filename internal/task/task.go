// Package task defines the task record held by the local store.
package task

import (
	"strings"

	"todo/internal/service"
)

const (
	// UnknownDue is the due label given to records seeded from the gateway.
	UnknownDue = "unknown"

	// TodayDue is the due label given to records created locally.
	TodayDue = "Today"
)

// Task is a single task record. The JSON field names match the cache slot
// layout.
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"desc"`
	DueLabel    string `json:"date"`
	Completed   bool   `json:"completed"`
}

// FromRemote maps a gateway record to a store record. The title is mirrored
// into the description and the due label is set to UnknownDue.
func FromRemote(r service.RemoteTask) Task {
	return Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Title,
		DueLabel:    UnknownDue,
		Completed:   r.Completed,
	}
}

// FromRemoteList maps a list of gateway records, preserving order.
func FromRemoteList(rs []service.RemoteTask) []Task {
	out := make([]Task, 0, len(rs))
	for _, r := range rs {
		out = append(out, FromRemote(r))
	}
	return out
}

// New returns a freshly created record with the given id and trimmed title.
func New(id, title string) Task {
	title = strings.TrimSpace(title)
	return Task{
		ID:          id,
		Title:       title,
		Description: title,
		DueLabel:    TodayDue,
	}
}

// Matches reports whether the record's title, description or id contains
// query as a case-insensitive substring. query must already be trimmed and
// lower-cased; an empty query matches everything.
func (t Task) Matches(query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), query) ||
		strings.Contains(strings.ToLower(t.Description), query) ||
		strings.Contains(strings.ToLower(t.ID), query)
}

// Clone returns a copy of tasks that shares no backing array with it.
func Clone(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}
