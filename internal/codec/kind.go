package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// Kind identifies the wire layout of a characteristic payload.
type Kind int

const (
	KindBytes Kind = iota + 1
	KindBool
	KindInt8
	KindInt32
	KindUInt16
	KindInt32Array
	KindASCII
	KindUTF8
	KindNullASCII
	KindNullUTF8
	KindTimestamp
	KindTimestampArray
)

var kindNames = map[Kind]string{
	KindBytes:          "bytes",
	KindBool:           "bool",
	KindInt8:           "int8",
	KindInt32:          "int32",
	KindUInt16:         "uint16",
	KindInt32Array:     "int32[]",
	KindASCII:          "ascii",
	KindUTF8:           "utf8",
	KindNullASCII:      "ascii\\0",
	KindNullUTF8:       "utf8\\0",
	KindTimestamp:      "timestamp",
	KindTimestampArray: "timestamp[]",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Kinds returns every wire kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindBytes, KindBool, KindInt8, KindInt32, KindUInt16, KindInt32Array,
		KindASCII, KindUTF8, KindNullASCII, KindNullUTF8, KindTimestamp, KindTimestampArray,
	}
}

var errNotASCII = errors.New("non-ASCII character")

// wire pairs the encode and decode functions of one kind.
type wire[T any] struct {
	kind   Kind
	encode func(T) ([]byte, error)
	decode func([]byte) (T, error)
}

var bytesWire = wire[[]byte]{
	kind: KindBytes,
	encode: func(v []byte) ([]byte, error) {
		return v, nil
	},
	decode: func(data []byte) ([]byte, error) {
		return data, nil
	},
}

var boolWire = wire[bool]{
	kind: KindBool,
	encode: func(v bool) ([]byte, error) {
		if v {
			return []byte{0x01}, nil
		}
		return []byte{0x00}, nil
	},
	decode: func(data []byte) (bool, error) {
		if len(data) == 0 {
			return false, lengthError("want at least 1 byte")
		}
		return data[0] != 0, nil
	},
}

var int8Wire = wire[int8]{
	kind: KindInt8,
	encode: func(v int8) ([]byte, error) {
		return []byte{byte(v)}, nil
	},
	decode: func(data []byte) (int8, error) {
		if len(data) != 1 {
			return 0, lengthError("want 1 byte")
		}
		return int8(data[0]), nil
	},
}

var int32Wire = wire[int32]{
	kind: KindInt32,
	encode: func(v int32) ([]byte, error) {
		return binary.LittleEndian.AppendUint32(nil, uint32(v)), nil
	},
	decode: func(data []byte) (int32, error) {
		if len(data) != 4 {
			return 0, lengthError("want 4 bytes")
		}
		return int32(binary.LittleEndian.Uint32(data)), nil
	},
}

var uint16Wire = wire[uint16]{
	kind: KindUInt16,
	encode: func(v uint16) ([]byte, error) {
		return binary.LittleEndian.AppendUint16(nil, v), nil
	},
	decode: func(data []byte) (uint16, error) {
		if len(data) != 2 {
			return 0, lengthError("want 2 bytes")
		}
		return binary.LittleEndian.Uint16(data), nil
	},
}

var int32ArrayWire = wire[[]int32]{
	kind:   KindInt32Array,
	encode: encodeInt32s,
	decode: decodeInt32s,
}

func encodeInt32s(values []int32) ([]byte, error) {
	out := make([]byte, 0, 4*len(values))
	for _, v := range values {
		out = binary.LittleEndian.AppendUint32(out, uint32(v))
	}
	return out, nil
}

// decodeInt32s rejects a trailing partial chunk instead of dropping it.
func decodeInt32s(data []byte) ([]int32, error) {
	if len(data)%4 != 0 {
		return nil, lengthError("want a multiple of 4 bytes")
	}
	values := make([]int32, 0, len(data)/4)
	for i := 0; i < len(data); i += 4 {
		values = append(values, int32(binary.LittleEndian.Uint32(data[i:i+4])))
	}
	return values, nil
}

var asciiWire = wire[string]{
	kind:   KindASCII,
	encode: encodeASCII,
	decode: func(data []byte) (string, error) {
		return decodeASCII(data), nil
	},
}

var utf8Wire = wire[string]{
	kind:   KindUTF8,
	encode: encodeUTF8,
	decode: func(data []byte) (string, error) {
		return decodeUTF8(data), nil
	},
}

var nullASCIIWire = wire[string]{
	kind:   KindNullASCII,
	encode: encodeASCII,
	decode: func(data []byte) (string, error) {
		return decodeASCII(truncateAtNull(data)), nil
	},
}

var nullUTF8Wire = wire[string]{
	kind:   KindNullUTF8,
	encode: encodeUTF8,
	decode: func(data []byte) (string, error) {
		return decodeUTF8(truncateAtNull(data)), nil
	},
}

func truncateAtNull(data []byte) []byte {
	if i := bytes.IndexByte(data, 0x00); i >= 0 {
		return data[:i]
	}
	return data
}

func decodeASCII(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data))
	for _, b := range data {
		if b < utf8.RuneSelf {
			sb.WriteByte(b)
			continue
		}
		sb.WriteRune(utf8.RuneError)
	}
	return sb.String()
}

func encodeASCII(v string) ([]byte, error) {
	for i, r := range v {
		if r >= utf8.RuneSelf {
			return nil, fmt.Errorf("%w %q at offset %d", errNotASCII, r, i)
		}
	}
	return []byte(v), nil
}

// decodeUTF8 replaces every invalid byte with U+FFFD.
func decodeUTF8(data []byte) string {
	out, err := unicode.UTF8.NewDecoder().Bytes(data)
	if err != nil {
		// the UTF-8 decoder substitutes instead of failing; keep a safe fallback
		return strings.ToValidUTF8(string(data), string(utf8.RuneError))
	}
	return string(out)
}

func encodeUTF8(v string) ([]byte, error) {
	return []byte(v), nil
}

var timestampWire = wire[time.Time]{
	kind: KindTimestamp,
	encode: func(v time.Time) ([]byte, error) {
		secs := v.Unix()
		if secs < 0 || secs > math.MaxUint32 {
			return nil, fmt.Errorf("unix time %d outside the 32-bit unsigned range", secs)
		}
		return binary.LittleEndian.AppendUint32(nil, uint32(secs)), nil
	},
	decode: func(data []byte) (time.Time, error) {
		if len(data) != 4 {
			return time.Time{}, lengthError("want 4 bytes")
		}
		return fromUnix(int64(binary.LittleEndian.Uint32(data))), nil
	},
}

var timestampArrayWire = wire[[]time.Time]{
	kind: KindTimestampArray,
	encode: func(values []time.Time) ([]byte, error) {
		secs := make([]int32, 0, len(values))
		for _, v := range values {
			s := v.Unix()
			if s < math.MinInt32 || s > math.MaxInt32 {
				return nil, fmt.Errorf("unix time %d outside the 32-bit signed range", s)
			}
			secs = append(secs, int32(s))
		}
		return encodeInt32s(secs)
	},
	decode: func(data []byte) ([]time.Time, error) {
		secs, err := decodeInt32s(data)
		if err != nil {
			return nil, err
		}
		values := make([]time.Time, 0, len(secs))
		for _, s := range secs {
			values = append(values, fromUnix(int64(s)))
		}
		return values, nil
	},
}

// fromUnix yields the local wall-clock time of a device timestamp.
func fromUnix(secs int64) time.Time {
	return time.Unix(secs, 0).Local()
}
