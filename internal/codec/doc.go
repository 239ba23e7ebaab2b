// Package codec converts UUID-addressed GATT characteristic payloads to and
// from typed Go values.
//
// Every characteristic is declared with exactly one wire Kind which fixes both
// the byte layout and the decoded Go type:
//   - Bytes: identity passthrough ([]byte)
//   - Bool: one byte, non-zero is true (bool)
//   - Int8, Int32, UInt16: fixed-width little-endian integers
//   - Int32Array: concatenated 4-byte signed little-endian integers ([]int32)
//   - String, UTF8String: permissive text decoding, invalid bytes become U+FFFD
//   - NullString, NullStringUTF8: text truncated at the first 0x00
//   - Timestamp, TimestampArray: unix seconds, decoded as local wall-clock time
//
// Characteristics are grouped into services and compiled into an immutable
// Registry by a Builder. Nothing registers itself implicitly, so independent
// registries can coexist (for example in tests).
package codec
