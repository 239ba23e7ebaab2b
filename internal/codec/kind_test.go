package codec

import (
	"math"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUUID = "98bd0b13-0b0e-421a-84e5-ddbf75dc6de4"

func TestFixedWidthRoundTrip(t *testing.T) {
	t.Run("bool", func(t *testing.T) {
		c := Bool("state", testUUID)
		for _, v := range []bool{true, false} {
			data, err := c.Encode(v)
			require.NoError(t, err)
			require.Len(t, data, 1)
			got, err := c.Decode(data)
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	})

	t.Run("int8", func(t *testing.T) {
		c := Int8("battery_level", testUUID)
		for v := math.MinInt8; v <= math.MaxInt8; v++ {
			data, err := c.Encode(int8(v))
			require.NoError(t, err)
			got, err := c.Decode(data)
			require.NoError(t, err)
			require.Equal(t, int8(v), got)
		}
	})

	t.Run("uint16", func(t *testing.T) {
		c := UInt16("flow_rate", testUUID)
		for _, v := range []uint16{0, 1, 0x00ff, 0xff00, 12345, math.MaxUint16} {
			data, err := c.Encode(v)
			require.NoError(t, err)
			got, err := c.Decode(data)
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	})

	t.Run("int32", func(t *testing.T) {
		c := Int32("rain_pause", testUUID)
		for _, v := range []int32{0, 1, -1, 3600, math.MinInt32, math.MaxInt32} {
			data, err := c.Encode(v)
			require.NoError(t, err)
			got, err := c.Decode(data)
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	})
}

func TestLittleEndianLayout(t *testing.T) {
	data, err := Int32("v", testUUID).Encode(-2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xfe, 0xff, 0xff, 0xff}, data)

	data, err = UInt16("v", testUUID).Encode(0x0102)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x01}, data)

	v, err := Int8("v", testUUID).Decode([]byte{0x80})
	require.NoError(t, err)
	assert.Equal(t, int8(-128), v)
}

func TestDecodeLengthErrors(t *testing.T) {
	tests := []struct {
		name string
		desc Descriptor
		data []byte
	}{
		{"bool empty", Bool("state", testUUID), nil},
		{"int8 empty", Int8("v", testUUID), []byte{}},
		{"int8 two bytes", Int8("v", testUUID), []byte{1, 2}},
		{"int32 three bytes", Int32("v", testUUID), []byte{1, 2, 3}},
		{"int32 five bytes", Int32("v", testUUID), []byte{1, 2, 3, 4, 5}},
		{"uint16 one byte", UInt16("v", testUUID), []byte{1}},
		{"int32 array partial chunk", Int32Array("v", testUUID), []byte{1, 0, 0, 0, 2}},
		{"timestamp short", Timestamp("v", testUUID), []byte{1, 2}},
		{"timestamp array partial chunk", TimestampArray("v", testUUID), []byte{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.desc.DecodeValue(tt.data)
			require.Error(t, err)

			var decErr *DecodeError
			require.ErrorAs(t, err, &decErr)
			assert.ErrorIs(t, err, ErrLength)
			assert.Equal(t, tt.desc.UUID(), decErr.UUID)
			assert.Equal(t, tt.desc.Name(), decErr.Name)
			assert.Equal(t, len(tt.data), decErr.Length)
			assert.Contains(t, err.Error(), tt.desc.Name())
		})
	}
}

func TestBoolDecodeUsesFirstByte(t *testing.T) {
	c := Bool("state", testUUID)
	v, err := c.Decode([]byte{0x02, 0x00})
	require.NoError(t, err)
	assert.True(t, v)

	v, err = c.Decode([]byte{0x00, 0x01})
	require.NoError(t, err)
	assert.False(t, v)
}

func TestInt32Array(t *testing.T) {
	c := Int32Array("watering_duration", testUUID)

	v, err := c.Decode([]byte{0x01, 0, 0, 0, 0xff, 0xff, 0xff, 0xff})
	require.NoError(t, err)
	assert.Equal(t, []int32{1, -1}, v)

	v, err = c.Decode(nil)
	require.NoError(t, err)
	assert.Empty(t, v)

	data, err := c.Encode([]int32{1, -1})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0, 0, 0, 0xff, 0xff, 0xff, 0xff}, data)
}

func TestTextDecoding(t *testing.T) {
	t.Run("null string stops at terminator", func(t *testing.T) {
		v, err := NullString("read_protocol_descriptor", testUUID).Decode([]byte("abc\x00junk"))
		require.NoError(t, err)
		assert.Equal(t, "abc", v)
	})

	t.Run("null string without terminator keeps everything", func(t *testing.T) {
		v, err := NullString("read_protocol_descriptor", testUUID).Decode([]byte("abc"))
		require.NoError(t, err)
		assert.Equal(t, "abc", v)
	})

	t.Run("null utf8 string", func(t *testing.T) {
		v, err := NullStringUTF8("custom_device_name", testUUID).Decode(append([]byte("åäö"), "\x00junk"...))
		require.NoError(t, err)
		assert.Equal(t, "åäö", v)
	})

	t.Run("ascii replaces invalid bytes", func(t *testing.T) {
		v, err := String("model_number", testUUID).Decode([]byte("abc\xe4"))
		require.NoError(t, err)
		assert.Equal(t, "abc�", v)
	})

	t.Run("utf8 replaces invalid bytes", func(t *testing.T) {
		v, err := UTF8String("name", testUUID).Decode([]byte("ok\xff"))
		require.NoError(t, err)
		assert.True(t, utf8.ValidString(v))
		assert.Equal(t, "ok�", v)
	})

	t.Run("ascii encode rejects non-ascii", func(t *testing.T) {
		_, err := String("model_number", testUUID).Encode("åäö")
		var encErr *EncodeError
		require.ErrorAs(t, err, &encErr)
		assert.Equal(t, "Model Number", encErr.Name)
	})

	t.Run("null string encode adds no terminator", func(t *testing.T) {
		data, err := NullStringUTF8("custom_device_name", testUUID).Encode("åäö")
		require.NoError(t, err)
		assert.Equal(t, []byte("åäö"), data)
	})
}

func TestTimestamp(t *testing.T) {
	c := Timestamp("unix_timestamp", testUUID)

	v, err := c.Decode([]byte{0x00, 0xe1, 0xf5, 0x05})
	require.NoError(t, err)
	assert.Equal(t, int64(100000000), v.Unix())
	assert.Equal(t, time.Local, v.Location())

	data, err := c.Encode(time.Unix(100000000, 999_000_000))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xe1, 0xf5, 0x05}, data, "sub-second part is truncated")

	_, err = c.Encode(time.Unix(-1, 0))
	var encErr *EncodeError
	assert.ErrorAs(t, err, &encErr)
}

func TestTimestampArray(t *testing.T) {
	c := TimestampArray("timestamp_array", testUUID)

	in := []time.Time{time.Unix(0, 0), time.Unix(1700000000, 0)}
	data, err := c.Encode(in)
	require.NoError(t, err)
	require.Len(t, data, 8)

	out, err := c.Decode(data)
	require.NoError(t, err)
	require.Len(t, out, 2)
	for i := range in {
		assert.True(t, in[i].Equal(out[i]))
	}
}

func TestEncodeValueTypeMismatch(t *testing.T) {
	c := Int32("rain_pause", testUUID)

	_, err := c.EncodeValue("nope")
	var encErr *EncodeError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, KindInt32, encErr.Kind)

	data, err := c.EncodeValue(int32(7))
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 0, 0, 0}, data)
}

func TestCharacteristicMetadata(t *testing.T) {
	c := Timestamp("unix_timestamp", "98BD0B13-0B0E-421A-84E5-DDBF75DC6DE4")
	assert.Equal(t, testUUID, c.UUID())
	assert.Equal(t, "unix_timestamp", c.Key())
	assert.Equal(t, "Unix Timestamp", c.Name())
	assert.Equal(t, KindTimestamp, c.Kind())
	assert.Equal(t, "timestamp", c.Kind().String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
	assert.Len(t, Kinds(), 12)
}
