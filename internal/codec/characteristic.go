package codec

import (
	"fmt"
	"strings"
	"time"

	"github.com/srg/gardena/internal/bledb"
)

// Descriptor is the type-erased view of a characteristic, used wherever the
// decoded Go type is not known statically (registries, inspection, the CLI).
type Descriptor interface {
	UUID() string
	Key() string
	Name() string
	Kind() Kind
	DecodeValue(data []byte) (any, error)
	EncodeValue(v any) ([]byte, error)
}

// Characteristic is a typed characteristic declaration. The zero value is
// not usable; build one with the constructor of its wire kind.
type Characteristic[T any] struct {
	uuid string
	key  string
	name string
	wire wire[T]
}

var _ Descriptor = (*Characteristic[bool])(nil)

func newCharacteristic[T any](key, uuid string, w wire[T]) *Characteristic[T] {
	canonical := bledb.NormalizeUUID(uuid)
	if canonical == "" {
		// kept verbatim so Builder.Build can report it
		canonical = strings.ToLower(uuid)
	}
	return &Characteristic[T]{
		uuid: canonical,
		key:  key,
		name: DisplayName(key),
		wire: w,
	}
}

func Bytes(key, uuid string) *Characteristic[[]byte] {
	return newCharacteristic(key, uuid, bytesWire)
}

func Bool(key, uuid string) *Characteristic[bool] {
	return newCharacteristic(key, uuid, boolWire)
}

func Int8(key, uuid string) *Characteristic[int8] {
	return newCharacteristic(key, uuid, int8Wire)
}

func Int32(key, uuid string) *Characteristic[int32] {
	return newCharacteristic(key, uuid, int32Wire)
}

func UInt16(key, uuid string) *Characteristic[uint16] {
	return newCharacteristic(key, uuid, uint16Wire)
}

func Int32Array(key, uuid string) *Characteristic[[]int32] {
	return newCharacteristic(key, uuid, int32ArrayWire)
}

// String declares an ASCII text characteristic.
func String(key, uuid string) *Characteristic[string] {
	return newCharacteristic(key, uuid, asciiWire)
}

func UTF8String(key, uuid string) *Characteristic[string] {
	return newCharacteristic(key, uuid, utf8Wire)
}

// NullString declares ASCII text terminated by the first 0x00 byte.
func NullString(key, uuid string) *Characteristic[string] {
	return newCharacteristic(key, uuid, nullASCIIWire)
}

// NullStringUTF8 declares UTF-8 text terminated by the first 0x00 byte.
func NullStringUTF8(key, uuid string) *Characteristic[string] {
	return newCharacteristic(key, uuid, nullUTF8Wire)
}

// Timestamp declares unsigned 32-bit unix seconds.
func Timestamp(key, uuid string) *Characteristic[time.Time] {
	return newCharacteristic(key, uuid, timestampWire)
}

// TimestampArray declares concatenated signed 32-bit unix seconds.
func TimestampArray(key, uuid string) *Characteristic[[]time.Time] {
	return newCharacteristic(key, uuid, timestampArrayWire)
}

// UUID returns the canonical lowercase dashed uuid.
func (c *Characteristic[T]) UUID() string { return c.uuid }

// Key returns the snake_case identifier the characteristic was declared with.
func (c *Characteristic[T]) Key() string { return c.key }

// Name returns the human readable name derived from the key.
func (c *Characteristic[T]) Name() string { return c.name }

func (c *Characteristic[T]) Kind() Kind { return c.wire.kind }

func (c *Characteristic[T]) String() string {
	return fmt.Sprintf("%s (%s, %s)", c.name, c.uuid, c.wire.kind)
}

// Decode converts a raw payload into the characteristic's value type.
func (c *Characteristic[T]) Decode(data []byte) (T, error) {
	v, err := c.wire.decode(data)
	if err != nil {
		var zero T
		return zero, &DecodeError{
			UUID:   c.uuid,
			Name:   c.name,
			Kind:   c.wire.kind,
			Length: len(data),
			Err:    err,
		}
	}
	return v, nil
}

// Encode converts v into its wire representation.
func (c *Characteristic[T]) Encode(v T) ([]byte, error) {
	data, err := c.wire.encode(v)
	if err != nil {
		return nil, c.encodeError(v, err)
	}
	return data, nil
}

func (c *Characteristic[T]) DecodeValue(data []byte) (any, error) {
	return c.Decode(data)
}

// EncodeValue encodes v, which must hold exactly the characteristic's type.
func (c *Characteristic[T]) EncodeValue(v any) ([]byte, error) {
	typed, ok := v.(T)
	if !ok {
		var zero T
		return nil, c.encodeError(v, fmt.Errorf("want %T, got %T", zero, v))
	}
	return c.Encode(typed)
}

func (c *Characteristic[T]) encodeError(v any, err error) error {
	return &EncodeError{
		UUID:  c.uuid,
		Name:  c.name,
		Kind:  c.wire.kind,
		Value: v,
		Err:   err,
	}
}
