package jxlio

import (
	"errors"
	"fmt"
)

var (
	// ErrNotEnoughInput is returned when the data seen so far is a valid prefix
	// of a stream but ends before the requested field.
	ErrNotEnoughInput = errors.New("not enough input")

	// ErrInvalidStream is returned when the data violates the codestream format.
	ErrInvalidStream = errors.New("invalid stream")
)

// Invalidf builds an error wrapping ErrInvalidStream.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidStream, fmt.Sprintf(format, args...))
}

func IsNotEnoughInput(err error) bool {
	return errors.Is(err, ErrNotEnoughInput)
}
