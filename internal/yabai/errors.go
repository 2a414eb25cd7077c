package yabai

import (
	"errors"
	"fmt"
)

var (
	// ErrJSONParsingFailed means the reply body was not valid JSON
	ErrJSONParsingFailed = errors.New("failed to parse yabai response")
	// ErrInvalidResponse means the reply parsed but had the wrong shape
	ErrInvalidResponse = errors.New("unexpected yabai response shape")
)

// InvalidInputError is returned before any I/O for a rejected request
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

// CommandFailedError carries a non-zero status from yabai
type CommandFailedError struct {
	Code    int
	Message string
}

func (e *CommandFailedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("yabai command failed with status %d", e.Code)
	}
	return fmt.Sprintf("yabai command failed with status %d: %s", e.Code, e.Message)
}

// IsInvalidInput reports whether err is an InvalidInputError
func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}
