//go:build test

package goble_test

import (
	"context"
	"errors"
	"testing"
	"time"

	blelib "github.com/go-ble/ble"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/srg/gardena/internal/device"
	goble "github.com/srg/gardena/internal/device/go-ble"
	"github.com/srg/gardena/internal/testutils"
	"github.com/srg/gardena/internal/testutils/mocks"
)

const testAddress = "C8:B9:61:00:00:02"

func testOptions(t *testing.T, attempts int) goble.Options {
	return goble.Options{
		ConnectAttempts: attempts,
		RetryBackoff:    -1,
		ReadTimeout:     time.Second,
		Logger:          testutils.NewTestHelper(t).Logger,
	}
}

func batteryProfile() *blelib.Profile {
	return testutils.NewPeripheralDeviceBuilder().
		WithService("98bd180f-0b0e-421a-84e5-ddbf75dc6de4").
		WithCharacteristic(batteryLevelUUID, "read", []byte{80}).
		BLEProfile()
}

func TestStack_ConnectRetriesUntilSuccess(t *testing.T) {
	client := &mocks.MockClient{}
	client.On("DiscoverProfile", true).Return(batteryProfile(), nil)

	central := &mocks.MockCentral{}
	central.On("Dial", mock.Anything, testAddress).Return(nil, errors.New("connection timeout")).Twice()
	central.On("Dial", mock.Anything, testAddress).Return(client, nil).Once()

	stack := goble.NewStackWithCentral(central, testOptions(t, 3))
	h, err := stack.Connect(context.Background(), testAddress)

	require.NoError(t, err)
	assert.True(t, h.IsConnected())
	central.AssertNumberOfCalls(t, "Dial", 3)
}

func TestStack_ConnectGivesUpAfterAttempts(t *testing.T) {
	central := &mocks.MockCentral{}
	central.On("Dial", mock.Anything, testAddress).Return(nil, errors.New("connection timeout"))

	stack := goble.NewStackWithCentral(central, testOptions(t, 2))
	_, err := stack.Connect(context.Background(), testAddress)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Contains(t, err.Error(), "connection timeout")
	central.AssertNumberOfCalls(t, "Dial", 2)
}

func TestStack_BluetoothOffIsNotRetried(t *testing.T) {
	central := &mocks.MockCentral{}
	central.On("Dial", mock.Anything, testAddress).Return(nil, errors.New("central manager has invalid state: is Bluetooth turned on?"))

	stack := goble.NewStackWithCentral(central, testOptions(t, 3))
	_, err := stack.Connect(context.Background(), testAddress)

	assert.ErrorIs(t, err, device.ErrBluetoothOff)
	central.AssertNumberOfCalls(t, "Dial", 1)
}

func TestStack_ConnectHonoursCancelledContext(t *testing.T) {
	central := &mocks.MockCentral{}
	central.On("Dial", mock.Anything, testAddress).Return(nil, context.Canceled)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stack := goble.NewStackWithCentral(central, testOptions(t, 3))
	_, err := stack.Connect(ctx, testAddress)

	assert.ErrorIs(t, err, context.Canceled)
	central.AssertNumberOfCalls(t, "Dial", 1)
}

func TestStack_EmptyAddress(t *testing.T) {
	stack := goble.NewStackWithCentral(&mocks.MockCentral{}, testOptions(t, 1))
	_, err := stack.Connect(context.Background(), "  ")
	assert.Error(t, err)
}

func TestStack_DiscoveryFailureCancelsConnection(t *testing.T) {
	client := &mocks.MockClient{}
	client.On("DiscoverProfile", true).Return(nil, errors.New("att: request timeout"))
	client.On("CancelConnection").Return(nil)

	central := &mocks.MockCentral{}
	central.On("Dial", mock.Anything, testAddress).Return(client, nil)

	stack := goble.NewStackWithCentral(central, testOptions(t, 1))
	_, err := stack.Connect(context.Background(), testAddress)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to discover profile")
	client.AssertNumberOfCalls(t, "CancelConnection", 1)
}

func TestStack_CloseOnlyStopsOwnedCentral(t *testing.T) {
	central := &mocks.MockCentral{}
	stack := goble.NewStackWithCentral(central, testOptions(t, 1))

	require.NoError(t, stack.Close())
	central.AssertNotCalled(t, "Stop")
}

func connectWith(t *testing.T, client *mocks.MockClient, opts goble.Options) device.Handle {
	t.Helper()
	client.On("DiscoverProfile", true).Return(batteryProfile(), nil)
	client.On("CancelConnection").Return(nil).Maybe()

	central := &mocks.MockCentral{}
	central.On("Dial", mock.Anything, testAddress).Return(client, nil)

	stack := goble.NewStackWithCentral(central, opts)
	h, err := stack.Connect(context.Background(), testAddress)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stack.Disconnect(context.Background(), h) })
	return h
}

func TestHandle_ReadTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	client := &mocks.MockClient{}
	client.On("ReadCharacteristic", mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return([]byte{80}, nil)

	opts := testOptions(t, 1)
	opts.ReadTimeout = 20 * time.Millisecond
	h := connectWith(t, client, opts)

	start := time.Now()
	_, err := h.ReadValue(context.Background(), batteryLevelUUID)

	assert.ErrorIs(t, err, device.ErrTimeout)
	assert.Less(t, time.Since(start), time.Second)
}

func TestHandle_ReadHonoursContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	client := &mocks.MockClient{}
	client.On("ReadCharacteristic", mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return([]byte{80}, nil)

	h := connectWith(t, client, testOptions(t, 1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := h.ReadValue(ctx, batteryLevelUUID)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHandle_TransportErrorsAreNormalized(t *testing.T) {
	client := &mocks.MockClient{}
	client.On("ReadCharacteristic", mock.Anything).Return(nil, errors.New("device not connected"))

	h := connectWith(t, client, testOptions(t, 1))

	_, err := h.ReadValue(context.Background(), batteryLevelUUID)
	require.Error(t, err)
	assert.True(t, device.IsConnectionState(err, device.NotConnected))
	assert.Contains(t, err.Error(), batteryLevelUUID)
}

func TestProperties(t *testing.T) {
	p := goble.NewProperties(blelib.CharRead | blelib.CharWriteNR)

	assert.NotNil(t, p.Read())
	assert.Nil(t, p.Write())
	assert.Nil(t, p.Notify())
	assert.Equal(t, int(blelib.CharWriteNR), p.WriteWithoutResponse().Value())

	assert.True(t, device.CanRead(p))
	assert.True(t, device.CanWrite(p, false))
	assert.False(t, device.CanWrite(p, true))
	assert.Equal(t, []string{"Read", "WriteWithoutResponse"}, device.PropertyNames(p))
}

func TestScanner_ConvertsAdvertisements(t *testing.T) {
	adv := testutils.NewAdvertisementBuilder().
		WithName("Water Control").
		WithAddress("c8:b9:61:00:00:03").
		WithRSSI(-61).
		WithServices("98BD0001-0B0E-421A-84E5-DDBF75DC6DE4", "fd91").
		WithManufacturerData(device.CompanyHusqvarna, []byte{0x04, 0x12, 0x00, 0x01, 0x01}).
		Build()

	central := testutils.NewPeripheralDeviceBuilder().WithScanAdvertisements(adv).Build()
	scanner := goble.NewScannerWithCentral(central)

	var got []device.Advertisement
	err := scanner.Scan(context.Background(), false, func(a device.Advertisement) {
		got = append(got, a)
	})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Water Control", got[0].LocalName())
	assert.Equal(t, -61, got[0].RSSI())
	assert.True(t, got[0].Connectable())
	assert.Equal(t, []string{
		"98bd0001-0b0e-421a-84e5-ddbf75dc6de4",
		"0000fd91-0000-1000-8000-00805f9b34fb",
	}, got[0].Services())
	assert.Equal(t, []byte{0x26, 0x04, 0x04, 0x12, 0x00, 0x01, 0x01}, got[0].ManufacturerData())
}
