package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/srg/gardena/internal/codec"
	"github.com/srg/gardena/internal/device"
)

func TestFormatUserError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{
			name: "missing characteristic",
			err:  fmt.Errorf("read: %w", &device.NotFoundError{UUID: "98bd0101-0b0e-421a-84e5-ddbf75dc6de4"}),
			want: "device has no characteristic 98bd0101-0b0e-421a-84e5-ddbf75dc6de4",
		},
		{
			name: "no access",
			err:  &device.NoAccessError{UUID: "98bd2a19-0b0e-421a-84e5-ddbf75dc6de4", Capability: "write"},
			want: "characteristic 98bd2a19-0b0e-421a-84e5-ddbf75dc6de4 does not allow write",
		},
		{
			name: "bluetooth off",
			err:  &device.CommunicationError{Op: "connect", Err: fmt.Errorf("%w: hci down", device.ErrBluetoothOff)},
			want: "Bluetooth is turned off or unavailable",
		},
		{
			name: "deadline",
			err:  context.DeadlineExceeded,
			want: "timed out: context deadline exceeded",
		},
		{
			name: "decode",
			err:  &codec.DecodeError{Name: "Battery Level", Kind: codec.KindInt8, Length: 2, Err: codec.ErrLength},
			want: "device sent an invalid int8 value for Battery Level (2 bytes): " + codec.ErrLength.Error(),
		},
		{
			name: "encode",
			err:  &codec.EncodeError{Name: "Model Number", Kind: codec.KindASCII, Value: "Grün", Err: errors.New("non-ASCII")},
			want: "cannot encode Grün as ascii for Model Number: non-ASCII",
		},
		{
			name: "communication",
			err:  &device.CommunicationError{Op: "read", Err: errors.New("link lost")},
			want: "lost communication with the device during read: link lost",
		},
		{name: "other", err: errors.New("boom"), want: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatUserError(tt.err))
		})
	}
}
