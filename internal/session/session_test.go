package session_test

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/srg/gardena/internal/codec"
	"github.com/srg/gardena/internal/device"
	"github.com/srg/gardena/internal/gardena"
	"github.com/srg/gardena/internal/session"
	"github.com/srg/gardena/internal/testutils"
	"github.com/srg/gardena/pkg/connection"
)

const (
	address       = "C8:B9:61:00:00:20"
	configService = "98bd0b10-0b0e-421a-84e5-ddbf75dc6de4"
	batteryServ   = "98bd180f-0b0e-421a-84e5-ddbf75dc6de4"
	valveService  = "98bd0f10-0b0e-421a-84e5-ddbf75dc6de4"
	vendorService = "0000fff0-0000-1000-8000-00805f9b34fb"
	vendorChar    = "0000fff1-0000-1000-8000-00805f9b34fb"
)

func unixBytes(secs int64) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(secs))
	return b
}

type SessionTestSuite struct {
	suite.Suite

	helper *testutils.TestHelper
	stack  *testutils.FakeStack
	conn   *connection.CachedConnection
	sess   *session.Session
}

func (s *SessionTestSuite) SetupTest() {
	s.helper = testutils.NewTestHelper(s.T())
	s.stack = testutils.NewFakeStack().
		WithCharacteristic(batteryServ, gardena.BatteryLevel.UUID(), "read", []byte{80}).
		WithCharacteristic(valveService, gardena.ValveManualWateringTime.UUID(), "read,write", []byte{0x2c, 0x01, 0, 0}).
		WithCharacteristic(valveService, gardena.ValveState.UUID(), "write-without-response", []byte{0})
	s.open()
}

func (s *SessionTestSuite) open(opts ...session.Option) {
	s.conn = connection.New(s.stack, connection.StaticAddress(address),
		connection.WithDisconnectDelay(50*time.Millisecond),
		connection.WithLogger(s.helper.Logger))
	s.sess = session.New(s.conn, nil, append([]session.Option{session.WithLogger(s.helper.Logger)}, opts...)...)
}

func (s *SessionTestSuite) TearDownTest() {
	s.Require().NoError(s.conn.Close(context.Background()))
}

func (s *SessionTestSuite) TestReadTyped() {
	// GOAL: Verify typed reads decode through the characteristic codec
	//
	// TEST SCENARIO: Read battery level and watering time → decoded values returned
	ctx := context.Background()

	level, err := session.Read(ctx, s.sess, gardena.BatteryLevel)
	s.Require().NoError(err)
	s.Equal(int8(80), level, "battery level MUST decode as int8")

	secs, err := session.Read(ctx, s.sess, gardena.ValveManualWateringTime)
	s.Require().NoError(err)
	s.Equal(int32(300), secs, "watering time MUST decode little endian")

	s.Equal(int64(1), s.stack.Connects(), "sequential reads MUST share one link")
}

func (s *SessionTestSuite) TestReadMissingCharacteristic() {
	// GOAL: Verify a characteristic absent from the device is reported as not found
	//
	// TEST SCENARIO: Read the pump status on a valve → NotFoundError naming the uuid
	_, err := session.Read(context.Background(), s.sess, gardena.PumpStatus)

	var nf *device.NotFoundError
	s.Require().ErrorAs(err, &nf, "missing characteristic MUST yield NotFoundError")
	s.Equal(gardena.PumpStatus.UUID(), nf.UUID)
	s.ErrorIs(err, device.ErrNoAccess, "not found MUST also count as no access")
}

func (s *SessionTestSuite) TestReadWriteOnlyCharacteristic() {
	// GOAL: Verify reading a characteristic without the read property fails before any I/O
	//
	// TEST SCENARIO: Read write-only valve state → NoAccessError, no read issued
	_, err := session.Read(context.Background(), s.sess, gardena.ValveState)

	var na *device.NoAccessError
	s.Require().ErrorAs(err, &na)
	s.Equal("read", na.Capability)
	s.Zero(s.stack.Reads(), "no read MUST reach the device")
}

func (s *SessionTestSuite) TestLookupReportsStatus() {
	// GOAL: Verify Lookup folds NotFound and NoAccess into the result
	//
	// TEST SCENARIO: Lookup present, missing and write-only characteristics → matching statuses
	ctx := context.Background()

	found, err := session.Lookup(ctx, s.sess, gardena.BatteryLevel)
	s.Require().NoError(err)
	s.True(found.Found())
	s.Equal(int8(80), found.ValueOr(-1))

	missing, err := session.Lookup(ctx, s.sess, gardena.PumpStatus)
	s.Require().NoError(err)
	s.Equal(session.StatusNotFound, missing.Status)
	s.Equal(int8(-1), missing.ValueOr(-1), "ValueOr MUST return the fallback without a value")

	denied, err := session.Lookup(ctx, s.sess, gardena.ValveState)
	s.Require().NoError(err)
	s.Equal(session.StatusNoAccess, denied.Status)
	s.Equal("no_access", denied.Status.String())
}

func (s *SessionTestSuite) TestLookupKeepsDecodeErrors() {
	// GOAL: Verify malformed payloads are errors even through Lookup
	//
	// TEST SCENARIO: Battery level of two bytes → DecodeError wrapping ErrLength
	s.stack.SetValue(gardena.BatteryLevel.UUID(), []byte{1, 2})

	_, err := session.Lookup(context.Background(), s.sess, gardena.BatteryLevel)

	var de *codec.DecodeError
	s.Require().ErrorAs(err, &de)
	s.ErrorIs(err, codec.ErrLength)
}

func (s *SessionTestSuite) TestWriteTyped() {
	// GOAL: Verify typed writes encode and honour the acknowledgement flag
	//
	// TEST SCENARIO: Write 600 with ack to watering time → bytes stored, ack recorded
	err := session.Write(context.Background(), s.sess, gardena.ValveManualWateringTime, 600, true)
	s.Require().NoError(err)

	writes := s.stack.Writes(gardena.ValveManualWateringTime.UUID())
	s.Require().Len(writes, 1)
	s.Equal([]byte{0x58, 0x02, 0, 0}, writes[0].Data)
	s.True(writes[0].Ack)
}

func (s *SessionTestSuite) TestWriteCapabilities() {
	// GOAL: Verify write capability checks per acknowledgement mode
	//
	// TEST SCENARIO: Acked write to write-without-response → NoAccess; unacked → ok; read-only → NoAccess
	ctx := context.Background()

	err := session.Write(ctx, s.sess, gardena.ValveState, true, true)
	var na *device.NoAccessError
	s.Require().ErrorAs(err, &na, "acknowledged write MUST need the write property")
	s.Equal("write", na.Capability)

	s.Require().NoError(session.Write(ctx, s.sess, gardena.ValveState, true, false))
	s.Equal([]byte{1}, s.stack.Value(gardena.ValveState.UUID()))

	s.Require().NoError(session.Write(ctx, s.sess, gardena.ValveManualWateringTime, 1, false),
		"unacknowledged write MUST be accepted by a writable characteristic")

	s.ErrorIs(session.Write(ctx, s.sess, gardena.BatteryLevel, 1, true), device.ErrNoAccess)
}

func (s *SessionTestSuite) TestWriteEncodeFailureSkipsDevice() {
	// GOAL: Verify values that cannot be encoded never open a link
	//
	// TEST SCENARIO: Write non-ASCII name to an ASCII characteristic → EncodeError, no connect
	err := session.Write(context.Background(), s.sess, gardena.ModelNumber, "Grün", true)

	var ee *codec.EncodeError
	s.Require().ErrorAs(err, &ee)
	s.Zero(s.stack.Connects(), "encoding MUST happen before connecting")
}

func (s *SessionTestSuite) TestReadValueUsesRegistry() {
	// GOAL: Verify untyped reads decode known characteristics and pass through unknown ones
	//
	// TEST SCENARIO: ReadValue battery → int8; vendor characteristic → raw bytes
	s.stack.WithCharacteristic(vendorService, vendorChar, "read,write", []byte{0xde, 0xad})
	ctx := context.Background()

	v, err := s.sess.ReadValue(ctx, "98BD2A19-0B0E-421A-84E5-DDBF75DC6DE4")
	s.Require().NoError(err)
	s.Equal(int8(80), v)

	raw, err := s.sess.ReadValue(ctx, vendorChar)
	s.Require().NoError(err)
	s.Equal([]byte{0xde, 0xad}, raw)

	s.Require().NoError(s.sess.WriteValue(ctx, vendorChar, []byte{1}, true))
	s.Equal([]byte{1}, s.stack.Value(vendorChar))

	err = s.sess.WriteValue(ctx, vendorChar, "text", true)
	s.ErrorIs(err, codec.ErrUnknownCharacteristic, "unknown characteristics MUST only take raw bytes")

	err = s.sess.WriteValue(ctx, gardena.ValveManualWateringTime.UUID(), "600", true)
	var ee *codec.EncodeError
	s.ErrorAs(err, &ee, "values MUST match the characteristic type")
}

func (s *SessionTestSuite) TestSyncClockWritesWhenDrifted() {
	// GOAL: Verify clock sync corrects a device clock beyond the tolerance
	//
	// TEST SCENARIO: Device two minutes behind → one acknowledged write of the current time
	now := time.Now().Truncate(time.Second)
	s.stack.WithCharacteristic(configService, gardena.UnixTimestamp.UUID(), "read,write", unixBytes(now.Unix()-120))

	updated, err := s.sess.SyncClock(context.Background(), now)
	s.Require().NoError(err)
	s.True(updated)

	writes := s.stack.Writes(gardena.UnixTimestamp.UUID())
	s.Require().Len(writes, 1, "drifted clock MUST be written once")
	s.Equal(unixBytes(now.Unix()), writes[0].Data)
	s.True(writes[0].Ack)
	s.Contains(s.helper.Messages(logrus.WarnLevel), "Updating time on device to match local time")
}

func (s *SessionTestSuite) TestSyncClockWithinTolerance() {
	// GOAL: Verify small drift leaves the device clock alone
	//
	// TEST SCENARIO: Device 30s ahead, then exactly 60s behind → no writes
	now := time.Now().Truncate(time.Second)
	s.stack.WithCharacteristic(configService, gardena.UnixTimestamp.UUID(), "read,write", unixBytes(now.Unix()+30))

	updated, err := s.sess.SyncClock(context.Background(), now)
	s.Require().NoError(err)
	s.False(updated)

	s.stack.SetValue(gardena.UnixTimestamp.UUID(), unixBytes(now.Unix()-60))
	updated, err = s.sess.SyncClock(context.Background(), now)
	s.Require().NoError(err)
	s.False(updated, "drift equal to the tolerance MUST NOT trigger a write")

	s.Empty(s.stack.Writes(gardena.UnixTimestamp.UUID()))
}

func (s *SessionTestSuite) TestSyncClockCustomTolerance() {
	// GOAL: Verify the drift tolerance is configurable
	//
	// TEST SCENARIO: Tolerance 10s, device 30s ahead → written
	s.Require().NoError(s.conn.Close(context.Background()))
	s.open(session.WithClockDriftTolerance(10 * time.Second))

	now := time.Now().Truncate(time.Second)
	s.stack.WithCharacteristic(configService, gardena.UnixTimestamp.UUID(), "read,write", unixBytes(now.Unix()+30))

	updated, err := s.sess.SyncClock(context.Background(), now)
	s.Require().NoError(err)
	s.True(updated)
}

func (s *SessionTestSuite) TestSyncClockWithoutClock() {
	// GOAL: Verify devices without a readable clock are skipped silently
	//
	// TEST SCENARIO: No timestamp characteristic → false, nil; write-only timestamp → false, nil
	updated, err := s.sess.SyncClock(context.Background(), time.Now())
	s.Require().NoError(err)
	s.False(updated)

	s.stack.WithCharacteristic(configService, gardena.UnixTimestamp.UUID(), "write", unixBytes(0))
	updated, err = s.sess.SyncClock(context.Background(), time.Now())
	s.Require().NoError(err)
	s.False(updated)
	s.Empty(s.stack.Writes(gardena.UnixTimestamp.UUID()))
}

func (s *SessionTestSuite) TestSyncClockTransportFailure() {
	// GOAL: Verify transport failures during clock sync surface as communication errors
	//
	// TEST SCENARIO: Timestamp read fails with link loss → CommunicationError
	s.stack.WithCharacteristic(configService, gardena.UnixTimestamp.UUID(), "read,write", unixBytes(0))
	s.stack.FailRead(gardena.UnixTimestamp.UUID(), errors.New("att: link lost"))

	_, err := s.sess.SyncClock(context.Background(), time.Now())
	s.ErrorIs(err, device.ErrCommunication)
}

func (s *SessionTestSuite) TestCharacteristicUUIDs() {
	// GOAL: Verify enumeration lists discovered characteristics in discovery order
	//
	// TEST SCENARIO: Three characteristics declared → three uuids in order
	uuids, err := s.sess.CharacteristicUUIDs(context.Background())
	s.Require().NoError(err)
	s.Equal([]string{
		gardena.BatteryLevel.UUID(),
		gardena.ValveManualWateringTime.UUID(),
		gardena.ValveState.UUID(),
	}, uuids)
}

func (s *SessionTestSuite) TestDisconnect() {
	// GOAL: Verify Disconnect closes the cached link immediately
	//
	// TEST SCENARIO: Read then Disconnect → one disconnect, link gone
	_, err := session.Read(context.Background(), s.sess, gardena.BatteryLevel)
	s.Require().NoError(err)

	s.Require().NoError(s.sess.Disconnect(context.Background()))
	s.Equal(int64(1), s.stack.Disconnects())
	s.False(s.conn.Connected())
}

func TestSessionTestSuite(t *testing.T) {
	suite.Run(t, new(SessionTestSuite))
}

func TestStatusString(t *testing.T) {
	cases := map[session.Status]string{
		session.StatusValue:    "value",
		session.StatusNotFound: "not_found",
		session.StatusNoAccess: "no_access",
		session.Status(9):      "Status(9)",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", int(status), got, want)
		}
	}
}
