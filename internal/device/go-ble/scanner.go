package goble

import (
	"context"

	"github.com/go-ble/ble"
	"github.com/srg/gardena/internal/device"
)

// bleScanner adapts a Central to device.ScanningDevice.
type bleScanner struct {
	central Central
}

// Scan converts every ble.Advertisement into a device.Advertisement.
func (s *bleScanner) Scan(ctx context.Context, allowDup bool, handler func(device.Advertisement)) error {
	err := s.central.Scan(ctx, allowDup, func(adv ble.Advertisement) {
		handler(NewBLEAdvertisement(adv))
	})
	return device.NormalizeError(err)
}

// NewScanner creates a device.ScanningDevice backed by the host adapter.
func NewScanner() (device.ScanningDevice, error) {
	dev, err := DeviceFactory()
	if err != nil {
		return nil, device.NormalizeError(err)
	}
	return &bleScanner{central: NewCentral(dev)}, nil
}

// NewScannerWithCentral scans through an existing central.
func NewScannerWithCentral(c Central) device.ScanningDevice {
	return &bleScanner{central: c}
}
