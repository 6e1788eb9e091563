package database

import (
	"errors"
	"fmt"
)

// Standard dialect errors.
var (
	// ErrConnectionFailed is returned when the transport rejects a connection attempt.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrConnectionClosed is returned when a closed connection is used.
	ErrConnectionClosed = errors.New("connection is closed")

	// ErrOperationNotSupported is returned when the transport reports a capability gap.
	ErrOperationNotSupported = errors.New("operation not supported")

	// ErrUnsupportedType is returned when a reflected data type has no logical mapping.
	ErrUnsupportedType = errors.New("unsupported column type")

	// ErrInvalidArgument is returned for malformed calls.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ConnectionError is returned when connecting to the transport fails.
type ConnectionError struct {
	Host  string
	Port  int
	Cause error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s:%d: %v", e.Host, e.Port, e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// Is matches ErrConnectionFailed; the cause is still reachable through Unwrap.
func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnectionFailed
}

// UnsupportedOperationError is returned when the transport explicitly reports
// that it cannot perform an operation. The connection remains usable.
type UnsupportedOperationError struct {
	Operation string
	Reason    string
	Cause     error
}

func (e *UnsupportedOperationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s is not supported: %s", e.Operation, e.Reason)
	}
	return fmt.Sprintf("%s is not supported", e.Operation)
}

func (e *UnsupportedOperationError) Unwrap() error {
	return e.Cause
}

func (e *UnsupportedOperationError) Is(target error) bool {
	return target == ErrOperationNotSupported
}

// NewUnsupportedOperationError creates a new UnsupportedOperationError.
func NewUnsupportedOperationError(operation, reason string, cause error) *UnsupportedOperationError {
	return &UnsupportedOperationError{
		Operation: operation,
		Reason:    reason,
		Cause:     cause,
	}
}

// UnsupportedTypeError names a data type string that has no logical type.
type UnsupportedTypeError struct {
	DataType string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported column type: %s", e.DataType)
}

func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// InvalidArgumentError is returned for a malformed call, such as the wrong
// number of parameters for a special statement.
type InvalidArgumentError struct {
	Operation string
	Reason    string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument for %s: %s", e.Operation, e.Reason)
}

func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}
