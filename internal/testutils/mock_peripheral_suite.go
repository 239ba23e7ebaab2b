//go:build test

package testutils

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	goble "github.com/srg/gardena/internal/device/go-ble"
	"github.com/srg/gardena/internal/testutils/mocks"
)

// DefaultPeripheralAddress is the address of the default mocked peripheral.
const DefaultPeripheralAddress = "C8:B9:61:00:00:01"

// MockBLEPeripheralSuite runs tests against a goble.Stack whose central is
// mocked from a PeripheralDeviceBuilder.
//
// Custom profiles are configured before the parent SetupTest runs:
//
//	func (s *ReadSuite) SetupTest() {
//	    s.WithPeripheral().
//	        WithService("98bd180f-0b0e-421a-84e5-ddbf75dc6de4").
//	        WithCharacteristic("98bd2a19-0b0e-421a-84e5-ddbf75dc6de4", "read", []byte{80})
//
//	    s.MockBLEPeripheralSuite.SetupTest()
//	}
type MockBLEPeripheralSuite struct {
	suite.Suite

	Helper      *TestHelper
	Logger      *logrus.Logger
	TestTimeout time.Duration

	PeripheralBuilder *PeripheralDeviceBuilder
	Central           *mocks.MockCentral
	Stack             *goble.Stack
}

func (s *MockBLEPeripheralSuite) SetupSuite() {
	s.Helper = NewTestHelper(s.T())
	s.Logger = s.Helper.Logger
	s.TestTimeout = 5 * time.Second
}

// SetupTest builds the mocked central and a stack on top of it.
func (s *MockBLEPeripheralSuite) SetupTest() {
	if s.PeripheralBuilder == nil {
		s.PeripheralBuilder = DefaultPeripheralBuilder()
	}
	s.Helper.Hook.Reset()

	s.Central = s.PeripheralBuilder.Build()
	s.Stack = goble.NewStackWithCentral(s.Central, goble.Options{
		ConnectAttempts: 1,
		RetryBackoff:    -1,
		ReadTimeout:     s.TestTimeout,
		Logger:          s.Logger,
	})
}

func (s *MockBLEPeripheralSuite) TearDownTest() {
	s.PeripheralBuilder = nil
	s.Central = nil
	s.Stack = nil
}

// WithPeripheral returns the builder for the next test's peripheral.
func (s *MockBLEPeripheralSuite) WithPeripheral() *PeripheralDeviceBuilder {
	if s.PeripheralBuilder == nil {
		s.PeripheralBuilder = NewPeripheralDeviceBuilder()
	}
	return s.PeripheralBuilder
}

// DefaultPeripheralBuilder mocks a water computer exposing its clock, name,
// battery and manual watering time.
func DefaultPeripheralBuilder() *PeripheralDeviceBuilder {
	return NewPeripheralDeviceBuilder().FromJSON(`
	{
		"address": %q,
		"services": [
			{
				"uuid": "98bd0b10-0b0e-421a-84e5-ddbf75dc6de4",
				"characteristics": [
					{ "uuid": "98bd0b13-0b0e-421a-84e5-ddbf75dc6de4", "properties": "read,write", "value": [0, 0, 0, 0] },
					{ "uuid": "98bd0b18-0b0e-421a-84e5-ddbf75dc6de4", "properties": "read,write", "value": [71, 97, 114, 100, 101, 110, 0] }
				]
			},
			{
				"uuid": "98bd180f-0b0e-421a-84e5-ddbf75dc6de4",
				"characteristics": [
					{ "uuid": "98bd2a19-0b0e-421a-84e5-ddbf75dc6de4", "properties": "read", "value": [80] }
				]
			},
			{
				"uuid": "98bd0f10-0b0e-421a-84e5-ddbf75dc6de4",
				"characteristics": [
					{ "uuid": "98bd0f14-0b0e-421a-84e5-ddbf75dc6de4", "properties": "read,write", "value": [44, 1, 0, 0] }
				]
			}
		]
	}`, DefaultPeripheralAddress)
}
