package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/srg/gardena/internal/codec"
	"github.com/srg/gardena/internal/device"
)

// FormatUserError turns an error chain into a one-line message for the
// terminal.
func FormatUserError(err error) string {
	var (
		notFound *device.NotFoundError
		noAccess *device.NoAccessError
		decode   *codec.DecodeError
		encode   *codec.EncodeError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &notFound):
		return fmt.Sprintf("device has no characteristic %s", notFound.UUID)
	case errors.As(err, &noAccess):
		return fmt.Sprintf("characteristic %s does not allow %s", noAccess.UUID, noAccess.Capability)
	case errors.Is(err, device.ErrBluetoothOff):
		return "Bluetooth is turned off or unavailable"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, device.ErrTimeout):
		return fmt.Sprintf("timed out: %v", err)
	case errors.As(err, &decode):
		return fmt.Sprintf("device sent an invalid %s value for %s (%d bytes): %v", decode.Kind, decode.Name, decode.Length, decode.Err)
	case errors.As(err, &encode):
		return fmt.Sprintf("cannot encode %v as %s for %s: %v", encode.Value, encode.Kind, encode.Name, encode.Err)
	case errors.Is(err, device.ErrCommunication):
		var ce *device.CommunicationError
		if errors.As(err, &ce) && ce.Err != nil {
			return fmt.Sprintf("lost communication with the device during %s: %v", ce.Op, ce.Err)
		}
		return "lost communication with the device"
	default:
		return err.Error()
	}
}
