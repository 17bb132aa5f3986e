package task

import "strings"

// ValidationError is returned when a title is empty after trimming.
// It is raised before any store or gateway side effect.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "Task " + e.Field + " cannot be empty."
}

// ValidateTitle returns a *ValidationError if title is blank.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title"}
	}
	return nil
}
