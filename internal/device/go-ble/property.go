package goble

import (
	"github.com/go-ble/ble"
	"github.com/srg/gardena/internal/device"
)

// BLEProperty is a single characteristic property flag.
type BLEProperty struct {
	value ble.Property
	name  string
}

func (p *BLEProperty) Value() int        { return int(p.value) }
func (p *BLEProperty) KnownName() string { return p.name }

// BLEProperties exposes the flags of a ble.Property bit set.
type BLEProperties struct {
	flags ble.Property
}

var propertyNames = map[ble.Property]string{
	ble.CharBroadcast:   "Broadcast",
	ble.CharRead:        "Read",
	ble.CharWriteNR:     "WriteWithoutResponse",
	ble.CharWrite:       "Write",
	ble.CharNotify:      "Notify",
	ble.CharIndicate:    "Indicate",
	ble.CharSignedWrite: "AuthenticatedSignedWrites",
	ble.CharExtended:    "ExtendedProperties",
}

// NewProperties creates a Properties instance from ble.Property bit flags.
func NewProperties(p ble.Property) device.Properties {
	return &BLEProperties{flags: p}
}

// get returns nil (as an interface) when the flag is absent.
func (p *BLEProperties) get(flag ble.Property) device.Property {
	if p.flags&flag == 0 {
		return nil
	}
	return &BLEProperty{value: flag, name: propertyNames[flag]}
}

func (p *BLEProperties) Broadcast() device.Property            { return p.get(ble.CharBroadcast) }
func (p *BLEProperties) Read() device.Property                 { return p.get(ble.CharRead) }
func (p *BLEProperties) Write() device.Property                { return p.get(ble.CharWrite) }
func (p *BLEProperties) WriteWithoutResponse() device.Property { return p.get(ble.CharWriteNR) }
func (p *BLEProperties) Notify() device.Property               { return p.get(ble.CharNotify) }
func (p *BLEProperties) Indicate() device.Property             { return p.get(ble.CharIndicate) }
func (p *BLEProperties) AuthenticatedSignedWrites() device.Property {
	return p.get(ble.CharSignedWrite)
}
func (p *BLEProperties) ExtendedProperties() device.Property { return p.get(ble.CharExtended) }
