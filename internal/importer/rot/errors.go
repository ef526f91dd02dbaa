package rot

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidHeader is returned when a record does not start with "#<vnum>".
	ErrInvalidHeader = errors.New("invalid record header")
	// ErrInvalidMeta is returned for a room meta line with an unknown leading character.
	ErrInvalidMeta = errors.New("invalid meta line")
	// ErrInvalidValue is returned when a field value cannot be converted.
	ErrInvalidValue = errors.New("invalid field value")
	// ErrNoAreaFiles is returned by Source.Load when the directory holds no area files.
	ErrNoAreaFiles = errors.New("no area files found")
)

// ParseError reports a structural failure inside one section of one file.
// Lines holds the complete buffer handed to the sub-parser.
type ParseError struct {
	File    string
	Section Section
	State   string
	// Index is the failing line's position in Lines, or -1.
	Index int
	Line  string
	Lines []string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: section %s: %v", e.File, e.Section, e.Err)
	}
	return fmt.Sprintf("%s: section %s: line %d (state %s) %q: %v",
		e.File, e.Section, e.Index, e.State, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// lineError is what sub-parsers return; the dispatcher widens it into a ParseError.
type lineError struct {
	index int
	state string
	err   error
}

func (e *lineError) Error() string {
	return fmt.Sprintf("line %d (state %s): %v", e.index, e.state, e.err)
}

func (e *lineError) Unwrap() error { return e.err }
