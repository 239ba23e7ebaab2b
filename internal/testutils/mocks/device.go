package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/srg/gardena/internal/device"
)

// MockStack mocks device.Stack.
type MockStack struct {
	mock.Mock
}

var _ device.Stack = (*MockStack)(nil)

func (m *MockStack) Connect(ctx context.Context, address string) (device.Handle, error) {
	args := m.Called(ctx, address)
	h, _ := args.Get(0).(device.Handle)
	return h, args.Error(1)
}

func (m *MockStack) Disconnect(ctx context.Context, h device.Handle) error {
	return m.Called(ctx, h).Error(0)
}

// MockHandle mocks device.Handle.
type MockHandle struct {
	mock.Mock
}

var _ device.Handle = (*MockHandle)(nil)

func (m *MockHandle) Address() string {
	return m.Called().String(0)
}

func (m *MockHandle) IsConnected() bool {
	return m.Called().Bool(0)
}

func (m *MockHandle) Characteristic(uuid string) (device.CharacteristicInfo, bool) {
	args := m.Called(uuid)
	c, _ := args.Get(0).(device.CharacteristicInfo)
	return c, args.Bool(1)
}

func (m *MockHandle) Characteristics() []device.CharacteristicInfo {
	c, _ := m.Called().Get(0).([]device.CharacteristicInfo)
	return c
}

func (m *MockHandle) ReadValue(ctx context.Context, uuid string) ([]byte, error) {
	args := m.Called(ctx, uuid)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockHandle) WriteValue(ctx context.Context, uuid string, data []byte, ack bool) error {
	return m.Called(ctx, uuid, data, ack).Error(0)
}

// MockAdvertisement mocks device.Advertisement.
type MockAdvertisement struct {
	mock.Mock
}

var _ device.Advertisement = (*MockAdvertisement)(nil)

func (m *MockAdvertisement) LocalName() string {
	return m.Called().String(0)
}

func (m *MockAdvertisement) ManufacturerData() []byte {
	b, _ := m.Called().Get(0).([]byte)
	return b
}

func (m *MockAdvertisement) Services() []string {
	s, _ := m.Called().Get(0).([]string)
	return s
}

func (m *MockAdvertisement) Connectable() bool {
	return m.Called().Bool(0)
}

func (m *MockAdvertisement) RSSI() int {
	return m.Called().Int(0)
}

func (m *MockAdvertisement) Addr() string {
	return m.Called().String(0)
}

// MockScanningDevice mocks device.ScanningDevice.
type MockScanningDevice struct {
	mock.Mock
}

var _ device.ScanningDevice = (*MockScanningDevice)(nil)

func (m *MockScanningDevice) Scan(ctx context.Context, allowDup bool, handler func(device.Advertisement)) error {
	return m.Called(ctx, allowDup, handler).Error(0)
}
