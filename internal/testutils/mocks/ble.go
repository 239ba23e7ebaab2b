// Package mocks holds testify/mock implementations of the stack
// collaborators and of the go-ble client surface.
package mocks

import (
	"context"

	"github.com/go-ble/ble"
	"github.com/stretchr/testify/mock"

	goble "github.com/srg/gardena/internal/device/go-ble"
)

// MockClient mocks goble.Client.
type MockClient struct {
	mock.Mock
}

var _ goble.Client = (*MockClient)(nil)

func (m *MockClient) Addr() ble.Addr {
	args := m.Called()
	if a := args.Get(0); a != nil {
		return a.(ble.Addr)
	}
	return nil
}

func (m *MockClient) DiscoverProfile(force bool) (*ble.Profile, error) {
	args := m.Called(force)
	p, _ := args.Get(0).(*ble.Profile)
	return p, args.Error(1)
}

func (m *MockClient) ReadCharacteristic(c *ble.Characteristic) ([]byte, error) {
	args := m.Called(c)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockClient) WriteCharacteristic(c *ble.Characteristic, value []byte, noRsp bool) error {
	return m.Called(c, value, noRsp).Error(0)
}

func (m *MockClient) CancelConnection() error {
	return m.Called().Error(0)
}

// MockCentral mocks goble.Central.
type MockCentral struct {
	mock.Mock
}

var _ goble.Central = (*MockCentral)(nil)

func (m *MockCentral) Dial(ctx context.Context, address string) (goble.Client, error) {
	args := m.Called(ctx, address)
	c, _ := args.Get(0).(goble.Client)
	return c, args.Error(1)
}

func (m *MockCentral) Scan(ctx context.Context, allowDup bool, h ble.AdvHandler) error {
	return m.Called(ctx, allowDup, h).Error(0)
}

func (m *MockCentral) Stop() error {
	return m.Called().Error(0)
}

// MockBLEAdvertisement mocks ble.Advertisement.
type MockBLEAdvertisement struct {
	mock.Mock
}

var _ ble.Advertisement = (*MockBLEAdvertisement)(nil)

func (m *MockBLEAdvertisement) LocalName() string {
	return m.Called().String(0)
}

func (m *MockBLEAdvertisement) ManufacturerData() []byte {
	b, _ := m.Called().Get(0).([]byte)
	return b
}

func (m *MockBLEAdvertisement) ServiceData() []ble.ServiceData {
	sd, _ := m.Called().Get(0).([]ble.ServiceData)
	return sd
}

func (m *MockBLEAdvertisement) Services() []ble.UUID {
	u, _ := m.Called().Get(0).([]ble.UUID)
	return u
}

func (m *MockBLEAdvertisement) OverflowService() []ble.UUID {
	u, _ := m.Called().Get(0).([]ble.UUID)
	return u
}

func (m *MockBLEAdvertisement) TxPowerLevel() int {
	return m.Called().Int(0)
}

func (m *MockBLEAdvertisement) Connectable() bool {
	return m.Called().Bool(0)
}

func (m *MockBLEAdvertisement) SolicitedService() []ble.UUID {
	u, _ := m.Called().Get(0).([]ble.UUID)
	return u
}

func (m *MockBLEAdvertisement) RSSI() int {
	return m.Called().Int(0)
}

func (m *MockBLEAdvertisement) Addr() ble.Addr {
	a, _ := m.Called().Get(0).(ble.Addr)
	return a
}
