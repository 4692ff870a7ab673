package command

import (
	"errors"
	"fmt"
)

// Parse failure causes
var (
	ErrEmpty           = errors.New("empty command")
	ErrUnknownCommand  = errors.New("unknown command")
	ErrMissingArgument = errors.New("missing argument")
	ErrNotANumber      = errors.New("not a number")
)

// ParseError reports why a line could not be parsed
type ParseError struct {
	Line   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid command: %v", e.Err)
	}
	return fmt.Sprintf("invalid command: %s", e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func fail(line string, err error, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Reason: fmt.Sprintf(format, args...), Err: err}
}
