package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrLength reports a payload whose size does not fit the wire kind.
	ErrLength = errors.New("unexpected payload length")

	// ErrDuplicateUUID is returned by Builder.Build when two characteristics
	// or two services share a UUID.
	ErrDuplicateUUID = errors.New("duplicate uuid")

	// ErrInvalidUUID is returned by Builder.Build for malformed UUID strings.
	ErrInvalidUUID = errors.New("invalid uuid")
)

// DecodeError reports bytes that violate a characteristic's wire format.
type DecodeError struct {
	UUID   string
	Name   string
	Kind   Kind
	Length int // observed payload length
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s %q (%s): %d byte payload: %v", e.Kind, e.Name, e.UUID, e.Length, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError reports a value that cannot be represented in the wire format.
type EncodeError struct {
	UUID  string
	Name  string
	Kind  Kind
	Value any
	Err   error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s %q (%s): value %v: %v", e.Kind, e.Name, e.UUID, e.Value, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

func lengthError(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrLength}, args...)...)
}
