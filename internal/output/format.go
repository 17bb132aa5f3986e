// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"todo/internal/task"
	"todo/internal/view"
)

const (
	// ShortIDLen is how many id characters list output shows.
	ShortIDLen = 8

	// EmptyList is shown when the store holds no records.
	EmptyList = "No todos found. Add a new one!"

	// EmptyFilter is shown when a non-empty filter matches nothing.
	EmptyFilter = "No matching todos found."
)

// FormatTask formats one task line.
// Format: "{MARK} {ID:<8}  {TITLE}  ({DUE})\n" where MARK is "[x]" or "[ ]".
func FormatTask(w io.Writer, t task.Task) {
	fmt.Fprintf(w, "%s %-*s  %s  (%s)\n", Marker(t.Completed), ShortIDLen, ShortID(t.ID), NormalizeTitle(t.Title), dueLabel(t.DueLabel))
}

// FormatView writes the visible page, or the empty message if nothing is
// visible, followed by a "showing" footer when more records match.
func FormatView(w io.Writer, v view.View) {
	if len(v.Tasks) == 0 {
		fmt.Fprintln(w, EmptyMessage(v.Query))
		return
	}
	for _, t := range v.Tasks {
		FormatTask(w, t)
	}
	if v.More() {
		fmt.Fprintf(w, "showing %d of %d\n", len(v.Tasks), v.Matched)
	}
}

// FormatDetail writes every field of a task, one per line.
func FormatDetail(w io.Writer, t task.Task) {
	status := "open"
	if t.Completed {
		status = "completed"
	}
	fmt.Fprintf(w, "id:          %s\n", t.ID)
	fmt.Fprintf(w, "title:       %s\n", NormalizeTitle(t.Title))
	fmt.Fprintf(w, "description: %s\n", NormalizeTitle(t.Description))
	fmt.Fprintf(w, "due:         %s\n", dueLabel(t.DueLabel))
	fmt.Fprintf(w, "status:      %s\n", status)
}

// EmptyMessage returns the message for an empty page under query.
func EmptyMessage(query string) string {
	if strings.TrimSpace(query) != "" {
		return EmptyFilter
	}
	return EmptyList
}

// Marker returns the completion checkbox.
func Marker(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}

// ShortID returns at most ShortIDLen leading characters of id.
func ShortID(id string) string {
	if len(id) <= ShortIDLen {
		return id
	}
	return id[:ShortIDLen]
}

// NormalizeTitle normalizes a title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func NormalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func dueLabel(label string) string {
	if label == "" {
		return task.UnknownDue
	}
	return label
}
