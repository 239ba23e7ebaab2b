package device

import (
	"context"
)

// Stack connects to peripherals. Implementations retry connection
// establishment internally; callers never retry.
type Stack interface {
	Connect(ctx context.Context, address string) (Handle, error)
	Disconnect(ctx context.Context, h Handle) error
}

// Handle is a live link to one peripheral with its GATT profile discovered.
// Reads and writes may be issued concurrently; ordering among them is up to
// the implementation.
type Handle interface {
	Address() string
	IsConnected() bool

	// Characteristic looks up a discovered characteristic by uuid in any
	// spelling NormalizeUUID accepts.
	Characteristic(uuid string) (CharacteristicInfo, bool)
	Characteristics() []CharacteristicInfo

	ReadValue(ctx context.Context, uuid string) ([]byte, error)
	WriteValue(ctx context.Context, uuid string, data []byte, ack bool) error
}

// CharacteristicInfo describes a discovered characteristic.
type CharacteristicInfo interface {
	UUID() string
	ServiceUUID() string
	Properties() Properties
}

// Property represents a single BLE characteristic property
type Property interface {
	Value() int
	KnownName() string
}

// Properties represent a collection of BLE characteristic properties.
// Accessors return nil for absent properties.
type Properties interface {
	Broadcast() Property
	Read() Property
	Write() Property
	WriteWithoutResponse() Property
	Notify() Property
	Indicate() Property
	AuthenticatedSignedWrites() Property
	ExtendedProperties() Property
}

// CanRead reports whether the characteristic supports reads.
func CanRead(p Properties) bool {
	return p != nil && p.Read() != nil
}

// CanWrite reports whether the characteristic accepts a write of the given
// kind. Acknowledged writes need the write property. Unacknowledged writes
// take either the write or the write-without-response property.
func CanWrite(p Properties, ack bool) bool {
	if p == nil {
		return false
	}
	if p.Write() != nil {
		return true
	}
	return !ack && p.WriteWithoutResponse() != nil
}

// PropertyNames lists the names of the present properties.
func PropertyNames(p Properties) []string {
	if p == nil {
		return nil
	}
	var names []string
	for _, prop := range []Property{
		p.Broadcast(), p.Read(), p.WriteWithoutResponse(), p.Write(),
		p.Notify(), p.Indicate(), p.AuthenticatedSignedWrites(), p.ExtendedProperties(),
	} {
		if prop != nil {
			names = append(names, prop.KnownName())
		}
	}
	return names
}

// ScanningDevice represents a BLE device capable of scanning for advertisements
type ScanningDevice interface {
	Scan(ctx context.Context, allowDup bool, handler func(Advertisement)) error
}

// Advertisement is a received advertising report.
type Advertisement interface {
	LocalName() string
	// ManufacturerData returns the raw manufacturer specific data, company id
	// included (first two bytes, little endian).
	ManufacturerData() []byte
	Services() []string
	Connectable() bool
	RSSI() int
	Addr() string
}
