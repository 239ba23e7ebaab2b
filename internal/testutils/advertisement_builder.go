package testutils

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/go-ble/ble"

	"github.com/srg/gardena/internal/device"
	goble "github.com/srg/gardena/internal/device/go-ble"
	"github.com/srg/gardena/internal/testutils/mocks"
)

// AdvertisementBuilder builds mocked advertising reports.
type AdvertisementBuilder struct {
	name        string
	address     string
	rssi        int
	services    []string
	manufData   []byte
	connectable bool
}

// NewAdvertisementBuilder starts a connectable report with an RSSI of -50.
func NewAdvertisementBuilder() *AdvertisementBuilder {
	return &AdvertisementBuilder{
		address:     "00:00:00:00:00:00",
		rssi:        -50,
		connectable: true,
	}
}

func (b *AdvertisementBuilder) WithName(name string) *AdvertisementBuilder {
	b.name = name
	return b
}

func (b *AdvertisementBuilder) WithAddress(addr string) *AdvertisementBuilder {
	b.address = addr
	return b
}

func (b *AdvertisementBuilder) WithRSSI(rssi int) *AdvertisementBuilder {
	b.rssi = rssi
	return b
}

// WithServices adds service uuids in any form ble.Parse accepts.
func (b *AdvertisementBuilder) WithServices(uuids ...string) *AdvertisementBuilder {
	b.services = append(b.services, uuids...)
	return b
}

// WithManufacturerData sets the manufacturer specific data, prefixing
// payload with the little endian company id.
func (b *AdvertisementBuilder) WithManufacturerData(companyID uint16, payload []byte) *AdvertisementBuilder {
	data := binary.LittleEndian.AppendUint16(nil, companyID)
	b.manufData = append(data, payload...)
	return b
}

// WithRawManufacturerData sets the manufacturer specific data verbatim.
func (b *AdvertisementBuilder) WithRawManufacturerData(data []byte) *AdvertisementBuilder {
	b.manufData = data
	return b
}

func (b *AdvertisementBuilder) WithConnectable(c bool) *AdvertisementBuilder {
	b.connectable = c
	return b
}

// FromJSON fills the builder from a formatted JSON object. Missing fields
// keep their current values.
func (b *AdvertisementBuilder) FromJSON(jsonStrFmt string, args ...interface{}) *AdvertisementBuilder {
	var data struct {
		Name             *string  `json:"name"`
		Address          *string  `json:"address"`
		RSSI             *int     `json:"rssi"`
		Services         []string `json:"services"`
		ManufacturerData []byte   `json:"manufacturerData"`
		Connectable      *bool    `json:"connectable"`
	}
	if err := json.Unmarshal([]byte(fmt.Sprintf(jsonStrFmt, args...)), &data); err != nil {
		panic(fmt.Sprintf("AdvertisementBuilder.FromJSON: failed to unmarshal: %v", err))
	}

	if data.Name != nil {
		b.name = *data.Name
	}
	if data.Address != nil {
		b.address = *data.Address
	}
	if data.RSSI != nil {
		b.rssi = *data.RSSI
	}
	if data.Services != nil {
		b.services = data.Services
	}
	if data.ManufacturerData != nil {
		b.manufData = data.ManufacturerData
	}
	if data.Connectable != nil {
		b.connectable = *data.Connectable
	}
	return b
}

// Build creates a mocked ble.Advertisement.
func (b *AdvertisementBuilder) Build() *mocks.MockBLEAdvertisement {
	adv := &mocks.MockBLEAdvertisement{}

	var services []ble.UUID
	for _, s := range b.services {
		services = append(services, ble.MustParse(s))
	}

	adv.On("LocalName").Return(b.name).Maybe()
	adv.On("Addr").Return(ble.NewAddr(b.address)).Maybe()
	adv.On("RSSI").Return(b.rssi).Maybe()
	adv.On("Services").Return(services).Maybe()
	adv.On("ManufacturerData").Return(b.manufData).Maybe()
	adv.On("Connectable").Return(b.connectable).Maybe()
	adv.On("ServiceData").Return([]ble.ServiceData(nil)).Maybe()
	adv.On("TxPowerLevel").Return(127).Maybe()
	return adv
}

// BuildAdvertisement wraps the mocked report the way the scanner does.
func (b *AdvertisementBuilder) BuildAdvertisement() device.Advertisement {
	return goble.NewBLEAdvertisement(b.Build())
}
