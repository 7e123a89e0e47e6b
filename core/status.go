package core

import (
	"errors"

	"github.com/kpfaulkner/jxl-oneshot/jxlio"
)

// Status is the terminal classification of a probe or decode. The ordinals
// match the native calling convention.
type Status int

const (
	StatusOK             Status = 0
	StatusInvalidStream  Status = -1
	StatusNotEnoughInput Status = 1
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusInvalidStream:
		return "INVALID_STREAM"
	case StatusNotEnoughInput:
		return "NOT_ENOUGH_INPUT"
	}
	return "UNKNOWN"
}

// Err returns nil for StatusOK, otherwise the matching jxlio sentinel.
func (s Status) Err() error {
	switch s {
	case StatusOK:
		return nil
	case StatusNotEnoughInput:
		return jxlio.ErrNotEnoughInput
	}
	return jxlio.ErrInvalidStream
}

// StatusFromError classifies a parse or decode error. Anything that is not a
// short read is a format violation.
func StatusFromError(err error) Status {
	if err == nil {
		return StatusOK
	}
	if errors.Is(err, jxlio.ErrNotEnoughInput) {
		return StatusNotEnoughInput
	}
	return StatusInvalidStream
}
