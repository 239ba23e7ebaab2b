package device

import (
	"encoding/binary"
	"fmt"
)

const (
	// UnknownCompanyID is a sentinel value indicating the company ID should be
	// extracted from the raw manufacturer data (first 2 bytes, little-endian).
	UnknownCompanyID uint16 = 0

	// CompanyHusqvarna is the SIG company id Gardena devices advertise under.
	CompanyHusqvarna uint16 = 0x0426
)

// ManufacturerDataParser parses the company specific part of manufacturer
// data, i.e. everything after the two company id bytes.
type ManufacturerDataParser func([]byte) (any, error)

// VendorInfo lets parsed manufacturer data expose the vendor it belongs to.
type VendorInfo interface {
	VendorID() uint16
	VendorName() string
}

var manufacturerDataParsers = map[uint16]ManufacturerDataParser{
	CompanyHusqvarna: func(payload []byte) (any, error) {
		return DecodeManufacturerData(payload)
	},
}

// ParseManufacturerData parses BLE manufacturer data for a specific company.
// rawData is the manufacturer specific data as advertised, starting with the
// two company id bytes. If companyID is UnknownCompanyID the id is taken from
// those bytes, otherwise the given id wins.
//
// Returns (nil, nil) for companies without a parser.
func ParseManufacturerData(companyID uint16, rawData []byte) (any, error) {
	if len(rawData) < 2 {
		return nil, fmt.Errorf("manufacturer data too short: %d bytes", len(rawData))
	}

	id := companyID
	if id == UnknownCompanyID {
		id = binary.LittleEndian.Uint16(rawData[0:2])
	}

	parser, exists := manufacturerDataParsers[id]
	if !exists {
		return nil, nil
	}
	return parser(rawData[2:])
}

// IsParsableManufacturerData returns true if a parser exists for the company ID
func IsParsableManufacturerData(companyID uint16) bool {
	_, exists := manufacturerDataParsers[companyID]
	return exists
}

// -----------------------------------------------------------------------------
// Gardena manufacturer data
// -----------------------------------------------------------------------------

// Record types of the Gardena advertisement TLV.
const (
	recordSerial      uint8 = 4
	recordPairable    uint8 = 5
	recordProductInfo uint8 = 6
)

// ProductGroup is the first product-info byte. Values outside the known set
// are kept as is.
type ProductGroup uint8

const (
	ProductGroupMower        ProductGroup = 1
	ProductGroupGardenPump   ProductGroup = 17
	ProductGroupWaterControl ProductGroup = 18
)

// Mowers classify by group 10, not by ProductGroupMower.
const mowerClassGroup ProductGroup = 10

// Known reports whether g is one of the named groups.
func (g ProductGroup) Known() bool {
	switch g {
	case ProductGroupMower, ProductGroupGardenPump, ProductGroupWaterControl:
		return true
	}
	return false
}

func (g ProductGroup) String() string {
	switch g {
	case ProductGroupMower:
		return "MOWER"
	case ProductGroupGardenPump:
		return "GARDEN_PUMP"
	case ProductGroupWaterControl:
		return "WATER_CONTROL"
	default:
		return fmt.Sprintf("%d", uint8(g))
	}
}

// ProductType is the product family derived from group, model and variant.
type ProductType int

const (
	ProductUnclassified ProductType = iota
	ProductMower
	ProductWaterComputer
	ProductValve
	ProductPump
)

func (p ProductType) String() string {
	switch p {
	case ProductMower:
		return "MOWER"
	case ProductWaterComputer:
		return "WATER_COMPUTER"
	case ProductValve:
		return "VALVE"
	case ProductPump:
		return "PUMP"
	default:
		return "UNCLASSIFIED"
	}
}

// ManufacturerData is a decoded Gardena advertisement. Nil fields were not
// advertised.
type ManufacturerData struct {
	Pairable *bool
	Serial   *uint32
	Group    *ProductGroup
	Model    *uint8
	Variant  *uint8

	// Records holds every record payload by type, including unknown types.
	Records map[uint8][]byte
}

func (m *ManufacturerData) VendorID() uint16 {
	return CompanyHusqvarna
}

func (m *ManufacturerData) VendorName() string {
	return "Husqvarna AB"
}

// DecodeManufacturerData decodes the Gardena TLV payload that follows the
// company id. Each record is a length byte L, a type byte and L-1 payload
// bytes. A later record of the same type replaces an earlier one. A zero
// length record has an empty payload and advances by a single byte, so its
// type byte is also the next record's length.
func DecodeManufacturerData(payload []byte) (*ManufacturerData, error) {
	records := make(map[uint8][]byte)
	for idx := 0; idx < len(payload); {
		size := int(payload[idx])
		if size == 0 {
			if idx+1 >= len(payload) {
				return nil, fmt.Errorf("%w: record at offset %d has no type", ErrMalformedManufacturerData, idx)
			}
			records[payload[idx+1]] = []byte{}
			idx++
			continue
		}
		if idx+size >= len(payload) {
			return nil, fmt.Errorf("%w: record at offset %d needs %d bytes, %d left",
				ErrMalformedManufacturerData, idx, size, len(payload)-idx-1)
		}
		records[payload[idx+1]] = payload[idx+2 : idx+size+1]
		idx += size + 1
	}

	m := &ManufacturerData{Records: records}

	if raw := records[recordPairable]; len(raw) > 0 {
		pairable := raw[0] != 0
		m.Pairable = &pairable
	}

	if raw := records[recordSerial]; len(raw) > 0 {
		if len(raw) > 4 {
			return nil, fmt.Errorf("%w: %d byte serial number", ErrMalformedManufacturerData, len(raw))
		}
		var buf [4]byte
		copy(buf[:], raw)
		serial := binary.LittleEndian.Uint32(buf[:])
		m.Serial = &serial
	}

	info := records[recordProductInfo]
	if len(info) > 0 {
		group := ProductGroup(info[0])
		m.Group = &group
	}
	if len(info) > 1 {
		model := info[1]
		m.Model = &model
	}
	if len(info) > 2 {
		variant := info[2]
		m.Variant = &variant
	}

	return m, nil
}

// ClassifyProduct maps the advertised product info onto a product family.
// Anything that does not match exactly is ProductUnclassified.
func ClassifyProduct(m *ManufacturerData) ProductType {
	if m == nil || m.Group == nil {
		return ProductUnclassified
	}

	model, variant := -1, -1
	if m.Model != nil {
		model = int(*m.Model)
	}
	if m.Variant != nil {
		variant = int(*m.Variant)
	}

	switch *m.Group {
	case mowerClassGroup:
		return ProductMower
	case ProductGroupWaterControl:
		switch {
		case (model == 0 || model == 1) && variant == 1:
			return ProductWaterComputer
		case model == 2 && variant == 1:
			return ProductValve
		}
	case ProductGroupGardenPump:
		if model == 1 {
			return ProductPump
		}
	}
	return ProductUnclassified
}
