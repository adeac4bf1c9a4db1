package core

import (
	"errors"
	"fmt"
)

var (
	ErrNoFile          = errors.New("no file provided")
	ErrUnsupportedType = errors.New("file type is not supported")
	ErrTooLarge        = errors.New("file is too large")
)

// ClientError marks a request rejected before any storage or inference work.
type ClientError struct {
	Err error
}

func (e *ClientError) Error() string {
	return e.Err.Error()
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

func Reject(base error) *ClientError {
	return &ClientError{Err: base}
}

func rejectf(base error, format string, args ...interface{}) *ClientError {
	return &ClientError{Err: fmt.Errorf("%w: %s", base, fmt.Sprintf(format, args...))}
}
