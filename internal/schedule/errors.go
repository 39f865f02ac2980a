package schedule

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork matches every NetworkError.
	ErrNetwork = errors.New("schedule source unreachable")
	// ErrParse matches every ParseError.
	ErrParse = errors.New("schedule page not recognised")
	// ErrShape matches every ShapeError.
	ErrShape = errors.New("tables differ in shape")
	// ErrNoSuchGroup is returned for group numbers outside the table.
	ErrNoSuchGroup = errors.New("no such group")
)

// NetworkError is a transport or HTTP failure while reaching the schedule source.
type NetworkError struct {
	URL    string
	Status int // 0 when the request never got a response
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("GET %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// ParseError means the expected group blocks were not found in the document.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse schedule: %s: %v", e.Reason, e.Err)
	}
	return "parse schedule: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// ShapeError is returned when two tables cannot be compared slot by slot.
type ShapeError struct {
	Group int // 1-based group whose length differs, 0 for a group count mismatch
	A, B  int
}

func (e *ShapeError) Error() string {
	if e.Group == 0 {
		return fmt.Sprintf("diff tables: %d groups vs %d", e.A, e.B)
	}
	return fmt.Sprintf("diff tables: group %d has %d slots vs %d", e.Group, e.A, e.B)
}

func (e *ShapeError) Is(target error) bool { return target == ErrShape }
