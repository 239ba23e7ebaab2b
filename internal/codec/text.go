package codec

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeLayout is the wall-clock layout used to print and parse timestamps.
const TimeLayout = "2006-01-02 15:04:05"

// ParseText converts command-line text into a value of the kind's Go type.
//
//   - bytes: hex, optionally 0x-prefixed, spaces and colons ignored
//   - integers: decimal or 0x hex
//   - arrays: comma separated elements
//   - timestamps: "now", unix seconds, RFC 3339 or TimeLayout in local time
func ParseText(kind Kind, s string) (any, error) {
	s = strings.TrimSpace(s)
	switch kind {
	case KindBytes:
		return parseHex(s)
	case KindBool:
		return strconv.ParseBool(s)
	case KindInt8:
		v, err := strconv.ParseInt(s, 0, 8)
		return int8(v), err
	case KindInt32:
		v, err := strconv.ParseInt(s, 0, 32)
		return int32(v), err
	case KindUInt16:
		v, err := strconv.ParseUint(s, 0, 16)
		return uint16(v), err
	case KindInt32Array:
		return parseList(s, func(e string) (int32, error) {
			v, err := strconv.ParseInt(e, 0, 32)
			return int32(v), err
		})
	case KindASCII, KindUTF8, KindNullASCII, KindNullUTF8:
		return s, nil
	case KindTimestamp:
		return parseTime(s)
	case KindTimestampArray:
		return parseList(s, parseTime)
	default:
		return nil, fmt.Errorf("unsupported kind %s", kind)
	}
}

// ParseFor parses s for the descriptor's kind.
func ParseFor(d Descriptor, s string) (any, error) {
	v, err := ParseText(d.Kind(), s)
	if err != nil {
		return nil, fmt.Errorf("%s expects a %s value: %w", d.Name(), d.Kind(), err)
	}
	return v, nil
}

// FormatValue renders a decoded value for display.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "<nil>"
	case []byte:
		return hex.EncodeToString(val)
	case string:
		return strconv.Quote(val)
	case time.Time:
		return val.Format(TimeLayout)
	case []int32:
		parts := make([]string, 0, len(val))
		for _, e := range val {
			parts = append(parts, strconv.FormatInt(int64(e), 10))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []time.Time:
		parts := make([]string, 0, len(val))
		for _, e := range val {
			parts = append(parts, e.Format(TimeLayout))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(val)
	}
}

func parseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	s = strings.NewReplacer(" ", "", ":", "").Replace(s)
	return hex.DecodeString(s)
}

func parseList[T any](s string, parse func(string) (T, error)) ([]T, error) {
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	if strings.TrimSpace(s) == "" {
		return []T{}, nil
	}
	fields := strings.Split(s, ",")
	out := make([]T, 0, len(fields))
	for i, f := range fields {
		v, err := parse(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseTime(s string) (time.Time, error) {
	if s == "now" {
		return time.Now().Truncate(time.Second), nil
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return fromUnix(secs), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation(TimeLayout, s, time.Local)
}
