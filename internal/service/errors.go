package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrTodoNotFound = errors.New("todo not found")

	ErrInvalidDateFilter = &ParseError{msg: "month and day must be integers"}
	ErrIsCheckedRequired = &ParseError{msg: "is_checked field is required"}
	ErrReviewRequired    = &ParseError{msg: "review content is required"}
)

// ParseError reports a malformed query parameter or a missing required body
// field. Its message is safe to show to the client.
type ParseError struct {
	msg string
}

func (e *ParseError) Error() string {
	return e.msg
}

// ValidationError carries per-field messages produced by the todo serializer.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(e.Fields[name], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}
