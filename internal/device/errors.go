package device

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoAccess matches characteristics that exist but lack the required
	// capability. It also matches NotFoundError: a missing characteristic is
	// treated as one that cannot be accessed at all.
	ErrNoAccess = errors.New("characteristic not accessible")

	// ErrNotFound matches characteristics absent from the device.
	ErrNotFound = errors.New("characteristic not found")

	// ErrCommunication matches CommunicationError.
	ErrCommunication = errors.New("communication failed")

	// ErrMalformedManufacturerData is returned for advertisement payloads
	// whose records overrun the buffer.
	ErrMalformedManufacturerData = errors.New("malformed manufacturer data")

	ErrTimeout     = errors.New("timeout")
	ErrUnsupported = errors.New("unsupported")
)

// NotFoundError reports a characteristic uuid the connected device does not
// expose.
type NotFoundError struct {
	UUID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("characteristic %q not found", e.UUID)
}

// Is lets callers catch a missing characteristic as either ErrNotFound or
// ErrNoAccess.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound || target == ErrNoAccess
}

// NoAccessError reports a characteristic that lacks the capability an
// operation needs ("read" or "write").
type NoAccessError struct {
	UUID       string
	Capability string
}

func (e *NoAccessError) Error() string {
	return fmt.Sprintf("characteristic %q is not %s", e.UUID, capabilityAdjective(e.Capability))
}

func (e *NoAccessError) Is(target error) bool {
	return target == ErrNoAccess
}

func capabilityAdjective(capability string) string {
	switch capability {
	case "read":
		return "readable"
	case "write":
		return "writable"
	default:
		return capability + " capable"
	}
}

// CommunicationError wraps a transport failure that happened while a
// connection was in use. The connection it happened on has been torn down.
type CommunicationError struct {
	Op  string
	Err error
}

func (e *CommunicationError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("communication failed with device: %v", e.Err)
	}
	return fmt.Sprintf("communication failed with device during %s: %v", e.Op, e.Err)
}

func (e *CommunicationError) Unwrap() error {
	return e.Err
}

func (e *CommunicationError) Is(target error) bool {
	return target == ErrCommunication
}

// ConnectionState represents the specific kind of connection state failure
type ConnectionState string

const (
	NotConnected     ConnectionState = "not_connected"
	AlreadyConnected ConnectionState = "already_connected"
	NotInitialized   ConnectionState = "not_initialized"
	BluetoothOff     ConnectionState = "bluetooth_off"
)

// ConnectionError represents any connection-related problem
type ConnectionError struct {
	State ConnectionState
	Msg   string
}

func (e *ConnectionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.State)
	}
	return fmt.Sprintf("%s: %s", e.State, e.Msg)
}

// Is allows errors.Is to compare ConnectionError values by State
func (e *ConnectionError) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*ConnectionError)
	if !ok {
		return false
	}
	return e.State == t.State
}

// Predefined sentinel errors for connection states
var (
	ErrNotConnected     = &ConnectionError{State: NotConnected}
	ErrAlreadyConnected = &ConnectionError{State: AlreadyConnected}
	ErrNotInitialized   = &ConnectionError{State: NotInitialized}
	ErrBluetoothOff     = &ConnectionError{State: BluetoothOff}
)

// IsConnectionState reports whether err is a ConnectionError with the given state
func IsConnectionState(err error, state ConnectionState) bool {
	var cerr *ConnectionError
	if errors.As(err, &cerr) {
		return cerr.State == state
	}
	return false
}

// IsAccessError reports whether err is one of the characteristic lookup
// failures (NotFound or NoAccess). These never indicate a broken link.
func IsAccessError(err error) bool {
	return errors.Is(err, ErrNoAccess)
}

// containsIgnoreCase checks substring case-insensitively
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// NormalizeError maps well-known link-layer error strings to ConnectionError
// states, wrapping the original.
func NormalizeError(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	switch {
	case containsIgnoreCase(msg, "is bluetooth turned on"),
		containsIgnoreCase(msg, "bluetooth is turned off"):
		return fmt.Errorf("%w: %v", ErrBluetoothOff, err)
	case containsIgnoreCase(msg, "device not connected"),
		containsIgnoreCase(msg, "disconnected"):
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	case containsIgnoreCase(msg, "device already connected"):
		return fmt.Errorf("%w: %v", ErrAlreadyConnected, err)
	case containsIgnoreCase(msg, "connection is not initialized"):
		return fmt.Errorf("%w: %v", ErrNotInitialized, err)
	default:
		return err
	}
}
