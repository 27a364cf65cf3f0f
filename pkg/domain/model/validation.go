package model

import (
	"strings"
	"unicode/utf8"
)

// FieldError describes one failed field constraint
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every failed constraint of a request body. It is
// returned to the client as is.
type ValidationErrors struct {
	Errors []FieldError `json:"errors"`
}

func (x *ValidationErrors) Error() string {
	msgs := make([]string, len(x.Errors))
	for i, e := range x.Errors {
		msgs[i] = e.Field + ": " + e.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (x *ValidationErrors) add(field, msg string) {
	x.Errors = append(x.Errors, FieldError{Field: field, Message: msg})
}

// result returns nil when no constraint failed so callers can return it as
// an error directly.
func (x *ValidationErrors) result() error {
	if len(x.Errors) == 0 {
		return nil
	}
	return x
}

// minTextLength is the minimum number of characters of every free text field
const minTextLength = 5

func (x *ValidationErrors) minLength(field, value string) {
	if utf8.RuneCountInString(value) < minTextLength {
		x.add(field, "must be at least 5 characters")
	}
}
