// Package gardena declares the GATT services and characteristics exposed by
// Gardena Bluetooth products.
package gardena

import (
	"fmt"

	"github.com/srg/gardena/internal/bledb"
	"github.com/srg/gardena/internal/codec"
	"github.com/srg/gardena/internal/device"
)

const (
	// CompanyID is the Bluetooth SIG company identifier of Husqvarna/Gardena.
	CompanyID = device.CompanyHusqvarna

	// ScanServiceUUID is advertised by devices in normal operation.
	ScanServiceUUID = "98bd0001-0b0e-421a-84e5-ddbf75dc6de4"

	// FotaServiceUUID is advertised by devices waiting for a firmware image.
	FotaServiceUUID = "0000ffc0-0000-1000-8000-00805f9b34fb"
)

// AdvertisedServices lists the service uuids that identify a Gardena device
// in an advertisement.
var AdvertisedServices = []string{ScanServiceUUID, FotaServiceUUID}

// ProductNames are the marketing names of the classified product families.
var ProductNames = map[device.ProductType]string{
	device.ProductPump:          "Gardena Garden Pump",
	device.ProductWaterComputer: "Gardena Water Computer",
	device.ProductValve:         "Gardena Irrigation Valve",
	device.ProductMower:         "Gardena Mower",
}

// ProductName returns the product's name, or "" when it is unclassified.
func ProductName(p device.ProductType) string {
	return ProductNames[p]
}

var (
	ScanWrite              = codec.Bytes("write_characteristic", "98BD0002-0B0E-421A-84E5-DDBF75DC6DE4")
	ScanRead               = codec.Bytes("read_characteristic", "98BD0003-0B0E-421A-84E5-DDBF75DC6DE4")
	ScanProtocolDescriptor = codec.NullString("read_protocol_descriptor", "98BD0004-0B0E-421A-84E5-DDBF75DC6DE4")
)

var (
	ValveState              = codec.Bool("state", "98bd0f11-0b0e-421a-84e5-ddbf75dc6de4")
	ValveConnectedState     = codec.Bool("connected_state", "98bd0f12-0b0e-421a-84e5-ddbf75dc6de4")
	ValveRemainingOpenTime  = codec.Int32("remaining_open_time", "98bd0f13-0b0e-421a-84e5-ddbf75dc6de4")
	ValveManualWateringTime = codec.Int32("manual_watering_time", "98bd0f14-0b0e-421a-84e5-ddbf75dc6de4")
	ValveActivationReason   = codec.Int8("activation_reason", "98bd0f15-0b0e-421a-84e5-ddbf75dc6de4")
)

var (
	RainPause         = codec.Int32("rain_pause", "98bd0b11-0b0e-421a-84e5-ddbf75dc6de4")
	SeasonalAdjust    = codec.Int8("seasonal_adjust", "98bd0b12-0b0e-421a-84e5-ddbf75dc6de4")
	UnixTimestamp     = codec.Timestamp("unix_timestamp", "98bd0b13-0b0e-421a-84e5-ddbf75dc6de4")
	MobileDeviceName  = codec.Int8("mobile_device_name", "98bd0b14-0b0e-421a-84e5-ddbf75dc6de4")
	DeviceLanguage    = codec.Int8("device_language", "98bd0b15-0b0e-421a-84e5-ddbf75dc6de4")
	DisplayBrightness = codec.Int8("display_brightness", "98bd0b16-0b0e-421a-84e5-ddbf75dc6de4")
	FirstUserStart    = codec.Bool("first_user_start", "98bd0b17-0b0e-421a-84e5-ddbf75dc6de4")
	CustomDeviceName  = codec.NullStringUTF8("custom_device_name", "98bd0b18-0b0e-421a-84e5-ddbf75dc6de4")
)

var (
	ModelNumber      = codec.String("model_number", "00002a24-0000-1000-8000-00805f9b34fb")
	FirmwareVersion  = codec.String("firmware_version", "00002a26-0000-1000-8000-00805f9b34fb")
	ManufacturerName = codec.String("manufacturer_name", "00002a29-0000-1000-8000-00805f9b34fb")
)

var BatteryLevel = codec.Int8("battery_level", "98bd2a19-0b0e-421a-84e5-ddbf75dc6de4")

var (
	SensorValue                = codec.Int8("value", "98bd0011-0b0e-421a-84e5-ddbf75dc6de4")
	SensorConnectedState       = codec.Bool("connected_state", "98bd0012-0b0e-421a-84e5-ddbf75dc6de4")
	SensorType                 = codec.String("type", "98bd0013-0b0e-421a-84e5-ddbf75dc6de4")
	SensorThreshold            = codec.Int8("threshold", "98bd0014-0b0e-421a-84e5-ddbf75dc6de4")
	SensorBatteryLevel         = codec.Int8("battery_level", "98bd0015-0b0e-421a-84e5-ddbf75dc6de4")
	SensorMeasurementTimestamp = codec.Timestamp("measurement_timestamp", "98bd0016-0b0e-421a-84e5-ddbf75dc6de4")
	SensorForceMeasurement     = codec.Int8("force_measurement", "98bd0017-0b0e-421a-84e5-ddbf75dc6de4")
)

var (
	WateringTimestamps = codec.TimestampArray("timestamp_array", "98bd0d11-0b0e-421a-84e5-ddbf75dc6de4")
	WateringCount      = codec.Int8("timestamp_count", "98bd0d12-0b0e-421a-84e5-ddbf75dc6de4")
	WateringSkipReason = codec.Bytes("skip_reason", "98bd0d13-0b0e-421a-84e5-ddbf75dc6de4")
	WateringDurations  = codec.Int32Array("watering_duration", "98bd0d14-0b0e-421a-84e5-ddbf75dc6de4")
)

var (
	ErrorID    = codec.Bytes("error_id", "98bdeeef-0b0e-421a-84e5-ddbf75dc6de4")
	ErrorCount = codec.Int8("error_count", "98bdeef0-0b0e-421a-84e5-ddbf75dc6de4")
)

var (
	PumpStatus            = codec.Int8("status", "98bd0101-0b0e-421a-84e5-ddbf75dc6de4")
	PumpTankPressure      = codec.UInt16("tank_pressure", "98bd0102-0b0e-421a-84e5-ddbf75dc6de4")
	PumpFlowRate          = codec.UInt16("flow_rate", "98bd0103-0b0e-421a-84e5-ddbf75dc6de4")
	PumpPTUMode           = codec.Int8("ptu_mode", "98bd0104-0b0e-421a-84e5-ddbf75dc6de4")
	PumpLeakageDetection  = codec.Bool("leakage_detection", "98bd0105-0b0e-421a-84e5-ddbf75dc6de4")
	PumpMinPressure       = codec.Int8("min_pressure", "98bd0106-0b0e-421a-84e5-ddbf75dc6de4")
	PumpMaxPressure       = codec.Int8("max_pressure", "98bd0107-0b0e-421a-84e5-ddbf75dc6de4")
	PumpChildLock         = codec.Bool("child_lock", "98bd0108-0b0e-421a-84e5-ddbf75dc6de4")
	PumpFilterReminder    = codec.Int8("filter_reminder", "98bd0109-0b0e-421a-84e5-ddbf75dc6de4")
	PumpDirectStart       = codec.Bool("direct_start", "98bd010a-0b0e-421a-84e5-ddbf75dc6de4")
	PumpMaxRuntime        = codec.Int8("max_runtime", "98bd010b-0b0e-421a-84e5-ddbf75dc6de4")
	PumpSafetyPumpTime    = codec.Int8("safety_pump_time", "98bd010c-0b0e-421a-84e5-ddbf75dc6de4")
	PumpCoolDownTimer     = codec.UInt16("cool_down_timer", "98bd010d-0b0e-421a-84e5-ddbf75dc6de4")
	PumpWaterTemperature  = codec.Int8("water_temperature", "98bd010e-0b0e-421a-84e5-ddbf75dc6de4")
	PumpErrorCode         = codec.Bytes("error_code", "98bd010f-0b0e-421a-84e5-ddbf75dc6de4")
	PumpUserMotorRuntime  = codec.Int32("user_motor_runtime", "98bd0110-0b0e-421a-84e5-ddbf75dc6de4")
	PumpTotalMotorRuntime = codec.Int32("total_motor_runtime", "98bd0111-0b0e-421a-84e5-ddbf75dc6de4")
)

var FactoryReset = codec.Bool("factory_reset", "98bdff01-0b0e-421a-84e5-ddbf75dc6de4")

var EnableOAD = codec.Bool("enable_oad", "f000ffd1-0451-4000-b000-000000000000")

var (
	FotaImageIdentify = codec.Bytes("image_identify", "f000ffc1-0451-4000-b000-000000000000")
	FotaImageBlockID  = codec.Bytes("image_block_id", "f000ffc2-0451-4000-b000-000000000000")
	FotaControlPoint  = codec.Bytes("control_point", "f000ffc5-0451-4000-b000-000000000000")
)

// Services returns fresh declarations of every Gardena service in
// enumeration order.
func Services() []*codec.Service {
	return []*codec.Service{
		codec.NewService("scan", ScanServiceUUID, ScanWrite, ScanRead, ScanProtocolDescriptor),
		codec.NewService("valve", "98bd0f10-0b0e-421a-84e5-ddbf75dc6de4",
			ValveState, ValveConnectedState, ValveRemainingOpenTime, ValveManualWateringTime, ValveActivationReason),
		codec.NewService("device_configuration", "98bd0b10-0b0e-421a-84e5-ddbf75dc6de4",
			RainPause, SeasonalAdjust, UnixTimestamp, MobileDeviceName, DeviceLanguage,
			DisplayBrightness, FirstUserStart, CustomDeviceName),
		codec.NewService("device_information", "0000180a-0000-1000-8000-00805f9b34fb",
			ModelNumber, FirmwareVersion, ManufacturerName),
		codec.NewService("battery", "98bd180f-0b0e-421a-84e5-ddbf75dc6de4", BatteryLevel),
		codec.NewService("sensor", "98bd0010-0b0e-421a-84e5-ddbf75dc6de4",
			SensorValue, SensorConnectedState, SensorType, SensorThreshold, SensorBatteryLevel,
			SensorMeasurementTimestamp, SensorForceMeasurement),
		codec.NewService("watering_history", "98bd0d10-0b0e-421a-84e5-ddbf75dc6de4",
			WateringTimestamps, WateringCount, WateringSkipReason, WateringDurations),
		codec.NewService("error_history", "98bdeeee-0b0e-421a-84e5-ddbf75dc6de4", ErrorID, ErrorCount),
		codec.NewService("pump", "98bd0100-0b0e-421a-84e5-ddbf75dc6de4",
			PumpStatus, PumpTankPressure, PumpFlowRate, PumpPTUMode, PumpLeakageDetection,
			PumpMinPressure, PumpMaxPressure, PumpChildLock, PumpFilterReminder, PumpDirectStart,
			PumpMaxRuntime, PumpSafetyPumpTime, PumpCoolDownTimer, PumpWaterTemperature,
			PumpErrorCode, PumpUserMotorRuntime, PumpTotalMotorRuntime),
		codec.NewService("reset", "98bdff00-0b0e-421a-84e5-ddbf75dc6de4", FactoryReset),
		codec.NewService("oad", "f000ffd0-0451-4000-b000-000000000000", EnableOAD),
		codec.NewService("fota", "f000ffc0-0451-4000-b000-000000000000",
			FotaImageIdentify, FotaImageBlockID, FotaControlPoint),
	}
}

// NewRegistry builds a registry of the full Gardena catalogue.
func NewRegistry() (*codec.Registry, error) {
	return codec.NewBuilder().Add(Services()...).Build()
}

// MustRegistry is NewRegistry for callers that treat a broken catalogue as a
// programming error.
func MustRegistry() *codec.Registry {
	reg, err := NewRegistry()
	if err != nil {
		panic(fmt.Sprintf("gardena catalogue: %v", err))
	}
	return reg
}

// DisplayNames builds the "Gardena <Service> <Characteristic>" side table
// used by the inspection tools.
func DisplayNames(reg *codec.Registry) (*bledb.DB, error) {
	db := bledb.New()
	for _, svc := range reg.Services() {
		if err := db.Register(svc.UUID(), "Gardena "+svc.Name()); err != nil {
			return nil, err
		}
		for _, c := range svc.Characteristics() {
			if err := db.Register(c.UUID(), "Gardena "+svc.Name()+" "+c.Name()); err != nil {
				return nil, err
			}
		}
	}
	return db, nil
}
