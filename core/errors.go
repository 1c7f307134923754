package core

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrAuth         = errors.New("wrong username or password")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// A ValidationError rejects the value of a single form field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// FieldErrors maps form field names to error messages.
// A nil FieldErrors is valid and empty.
type FieldErrors map[string][]string

// Add appends a message to a field. It must not be called on a nil FieldErrors.
func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

// AddError adds err to field. A *ValidationError keeps its own field name.
func (fe FieldErrors) AddError(field string, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		fe.Add(verr.Field, verr.Message)
		return
	}
	fe.Add(field, err.Error())
}

func (fe FieldErrors) Get(field string) []string {
	return fe[field]
}

func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

func (fe FieldErrors) Error() string {
	var fields = make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	var parts = make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(fe[field], " "))
	}
	return strings.Join(parts, "; ")
}
