package testutils

import (
	"encoding/json"
	"errors"
	"fmt"

	blelib "github.com/go-ble/ble"
	"github.com/stretchr/testify/mock"

	"github.com/srg/gardena/internal/testutils/mocks"
)

// ErrReadNotPermitted is returned by mocked reads of characteristics
// without the read property.
var ErrReadNotPermitted = errors.New("characteristic does not support read")

// CharacteristicConfig describes a mocked characteristic. Value accepts a
// JSON array of bytes.
type CharacteristicConfig struct {
	UUID       string `json:"uuid"`
	Properties string `json:"properties,omitempty"` // e.g. "read,write"
	Value      []byte `json:"value,omitempty"`
}

// ServiceConfig describes a mocked service.
type ServiceConfig struct {
	UUID            string                 `json:"uuid"`
	Characteristics []CharacteristicConfig `json:"characteristics,omitempty"`
}

// DeviceProfileConfig is the GATT profile the mocked peripheral exposes.
type DeviceProfileConfig struct {
	Address  string          `json:"address,omitempty"`
	Services []ServiceConfig `json:"services"`
}

// PeripheralDeviceBuilder builds a mocked goble.Central whose Dial returns
// a client exposing the configured profile.
type PeripheralDeviceBuilder struct {
	profile            DeviceProfileConfig
	scanAdvertisements []blelib.Advertisement
	client             *mocks.MockClient
}

func NewPeripheralDeviceBuilder() *PeripheralDeviceBuilder {
	return &PeripheralDeviceBuilder{}
}

// WithAddress sets the peripheral address. Dial accepts any address when
// none is set.
func (b *PeripheralDeviceBuilder) WithAddress(addr string) *PeripheralDeviceBuilder {
	b.profile.Address = addr
	return b
}

func (b *PeripheralDeviceBuilder) WithService(uuid string) *PeripheralDeviceBuilder {
	b.profile.Services = append(b.profile.Services, ServiceConfig{UUID: uuid})
	return b
}

// WithCharacteristic adds a characteristic to the last added service.
func (b *PeripheralDeviceBuilder) WithCharacteristic(uuid, properties string, value []byte) *PeripheralDeviceBuilder {
	if len(b.profile.Services) == 0 {
		panic("WithCharacteristic: no service added yet, call WithService first")
	}
	last := &b.profile.Services[len(b.profile.Services)-1]
	last.Characteristics = append(last.Characteristics, CharacteristicConfig{
		UUID:       uuid,
		Properties: properties,
		Value:      value,
	})
	return b
}

// FromJSON replaces the profile with the one described by the formatted JSON.
func (b *PeripheralDeviceBuilder) FromJSON(jsonStrFmt string, args ...interface{}) *PeripheralDeviceBuilder {
	var config DeviceProfileConfig
	if err := json.Unmarshal([]byte(fmt.Sprintf(jsonStrFmt, args...)), &config); err != nil {
		panic(fmt.Sprintf("PeripheralDeviceBuilder.FromJSON: failed to unmarshal: %v", err))
	}
	b.profile = config
	return b
}

// WithScanAdvertisements makes Scan deliver ads to the handler.
func (b *PeripheralDeviceBuilder) WithScanAdvertisements(ads ...blelib.Advertisement) *PeripheralDeviceBuilder {
	b.scanAdvertisements = append(b.scanAdvertisements, ads...)
	return b
}

// Profile returns the configured profile.
func (b *PeripheralDeviceBuilder) Profile() DeviceProfileConfig {
	return b.profile
}

// Client returns the mocked client of the last Build.
func (b *PeripheralDeviceBuilder) Client() *mocks.MockClient {
	return b.client
}

// BLEProfile converts the configuration into the profile DiscoverProfile
// reports.
func (b *PeripheralDeviceBuilder) BLEProfile() *blelib.Profile {
	profile := &blelib.Profile{}
	for _, svcConfig := range b.profile.Services {
		svc := &blelib.Service{UUID: blelib.MustParse(svcConfig.UUID)}
		for _, charConfig := range svcConfig.Characteristics {
			svc.Characteristics = append(svc.Characteristics, &blelib.Characteristic{
				UUID:     blelib.MustParse(charConfig.UUID),
				Property: ParseProperties(charConfig.Properties),
				Value:    charConfig.Value,
			})
		}
		profile.Services = append(profile.Services, svc)
	}
	return profile
}

// Build creates the mocked central. Expectations are optional so tests
// only assert the calls they care about.
func (b *PeripheralDeviceBuilder) Build() *mocks.MockCentral {
	central := &mocks.MockCentral{}
	client := &mocks.MockClient{}
	b.client = client

	profile := b.BLEProfile()

	address := interface{}(mock.Anything)
	addr := "00:00:00:00:00:00"
	if b.profile.Address != "" {
		address = b.profile.Address
		addr = b.profile.Address
	}
	client.On("Addr").Return(blelib.NewAddr(addr)).Maybe()
	central.On("Dial", mock.Anything, address).Return(client, nil).Maybe()
	central.On("Stop").Return(nil).Maybe()

	client.On("DiscoverProfile", true).Return(profile, nil).Maybe()
	client.On("CancelConnection").Return(nil).Maybe()

	for _, svc := range profile.Services {
		for _, char := range svc.Characteristics {
			if char.Property&blelib.CharRead != 0 {
				client.On("ReadCharacteristic", char).Return(char.Value, nil).Maybe()
			} else {
				client.On("ReadCharacteristic", char).Return(nil, ErrReadNotPermitted).Maybe()
			}
			client.On("WriteCharacteristic", char, mock.Anything, mock.Anything).Return(nil).Maybe()
		}
	}

	ads := b.scanAdvertisements
	central.On("Scan", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			handler := args.Get(2).(blelib.AdvHandler)
			for _, adv := range ads {
				handler(adv)
			}
		}).
		Return(nil).Maybe()

	return central
}
