package scanner

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cornelk/hashmap"
	"github.com/sirupsen/logrus"

	"github.com/srg/gardena/internal/bledb"
	"github.com/srg/gardena/internal/device"
	goble "github.com/srg/gardena/internal/device/go-ble"
	"github.com/srg/gardena/internal/gardena"
)

// eventBuffer is how many unread events are kept; older ones are dropped.
const eventBuffer = 100

// ProgressCallback is called when the scan phase changes
type ProgressCallback func(phase string)

// DeviceEventType marks if the device was newly discovered or updated
type DeviceEventType int

const (
	EventNew DeviceEventType = iota
	EventUpdated
)

func (t DeviceEventType) String() string {
	if t == EventNew {
		return "new"
	}
	return "updated"
}

type DeviceEvent struct {
	Type   DeviceEventType
	Device Device
}

// Device is what the advertisements of one Gardena device revealed so far.
type Device struct {
	Address     string                   `json:"address"`
	Name        string                   `json:"name,omitempty"`
	RSSI        int                      `json:"rssi"`
	Connectable bool                     `json:"connectable"`
	Services    []string                 `json:"services,omitempty"`
	Product     device.ProductType       `json:"-"`
	ProductName string                   `json:"product,omitempty"`
	Info        *device.ManufacturerData `json:"-"`
	// Firmware is set while the device advertises the firmware update service.
	Firmware bool      `json:"firmware_update,omitempty"`
	LastSeen time.Time `json:"last_seen"`
}

// Serial returns the advertised serial number, if any.
func (d Device) Serial() (uint32, bool) {
	if d.Info == nil || d.Info.Serial == nil {
		return 0, false
	}
	return *d.Info.Serial, true
}

// Pairable reports the advertised pairing state; ok is false when unknown.
func (d Device) Pairable() (pairable, ok bool) {
	if d.Info == nil || d.Info.Pairable == nil {
		return false, false
	}
	return *d.Info.Pairable, true
}

// Scanner handles Gardena device discovery
type Scanner struct {
	dev     device.ScanningDevice
	devices *hashmap.Map[string, *Device]
	events  chan DeviceEvent
	logger  *logrus.Logger
	now     func() time.Time

	scanOptions *ScanOptions
}

// ScanOptions configures scanning behavior
type ScanOptions struct {
	Duration time.Duration
	// DuplicateFilter asks the adapter to report each device once.
	DuplicateFilter bool
	// ServiceUUIDs a device must advertise at least one of; empty means
	// the Gardena scan and firmware update services.
	ServiceUUIDs []string
	AllowList    []string
	BlockList    []string
}

// DefaultScanOptions returns default scanning options
func DefaultScanOptions() *ScanOptions {
	return &ScanOptions{
		Duration:        10 * time.Second,
		DuplicateFilter: true,
	}
}

// NewScanner creates a scanner over dev; a nil dev opens the host adapter.
func NewScanner(dev device.ScanningDevice, logger *logrus.Logger) (*Scanner, error) {
	if logger == nil {
		logger = logrus.New()
	}
	if dev == nil {
		var err error
		if dev, err = goble.NewScanner(); err != nil {
			return nil, fmt.Errorf("failed to create BLE device: %w", err)
		}
	}

	return &Scanner{
		dev:    dev,
		events: make(chan DeviceEvent, eventBuffer),
		logger: logger,
		now:    time.Now,
	}, nil
}

// Scan listens for Gardena advertisements until opts.Duration elapses or ctx
// is cancelled and returns the devices seen, ordered by address.
func (s *Scanner) Scan(ctx context.Context, opts *ScanOptions, progressCallback ProgressCallback) ([]Device, error) {
	s.devices = hashmap.New[string, *Device]()

	if opts == nil {
		opts = DefaultScanOptions()
	}
	if progressCallback == nil {
		progressCallback = func(string) {}
	}
	filter := *opts
	if len(filter.ServiceUUIDs) == 0 {
		filter.ServiceUUIDs = gardena.AdvertisedServices
	}
	filter.ServiceUUIDs = bledb.NormalizeUUIDs(filter.ServiceUUIDs)
	filter.AllowList = device.NormalizeAddresses(filter.AllowList)
	filter.BlockList = device.NormalizeAddresses(filter.BlockList)
	s.scanOptions = &filter
	defer func() {
		s.scanOptions = nil
	}()

	s.logger.WithField("duration", opts.Duration).Info("Starting BLE scan...")
	progressCallback("Scanning")

	if opts.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Duration)
		defer cancel()
	}

	err := s.dev.Scan(ctx, !opts.DuplicateFilter, s.handleAdvertisement)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		progressCallback("Failed")
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	s.logger.WithField("device_count", s.devices.Len()).Info("BLE scan completed")
	progressCallback("Processing results")

	return s.snapshot(), nil
}

// handleAdvertisement updates existing or adds a new device
func (s *Scanner) handleAdvertisement(adv device.Advertisement) {
	opts := s.scanOptions
	if opts == nil {
		return
	}
	addr := device.NormalizeAddress(adv.Addr())

	prev, existing := s.devices.Get(addr)
	if !existing && !s.shouldIncludeDevice(addr, adv, opts) {
		return
	}

	next := s.merge(addr, prev, adv)
	if existing {
		s.devices.Set(addr, next)
	} else {
		var loaded bool
		if prev, loaded = s.devices.GetOrInsert(addr, next); loaded {
			next = s.merge(addr, prev, adv)
			s.devices.Set(addr, next)
			existing = true
		}
	}

	event := DeviceEvent{Type: EventUpdated, Device: *next}
	if !existing {
		event.Type = EventNew
		s.logger.WithFields(logrus.Fields{
			"device":  next.Name,
			"address": next.Address,
			"rssi":    next.RSSI,
			"product": next.Product,
		}).Info("Discovered new device")
	}

	s.forceSend(event)
}

// merge returns a fresh Device combining prev with adv; fields the
// advertisement leaves out keep their previous value.
func (s *Scanner) merge(addr string, prev *Device, adv device.Advertisement) *Device {
	d := &Device{Address: addr}
	if prev != nil {
		*d = *prev
	}
	d.RSSI = adv.RSSI()
	d.Connectable = adv.Connectable()
	d.LastSeen = s.now()
	if name := adv.LocalName(); name != "" {
		d.Name = name
	}
	if services := bledb.NormalizeUUIDs(adv.Services()); len(services) > 0 {
		d.Services = services
		d.Firmware = contains(services, bledb.NormalizeUUID(gardena.FotaServiceUUID))
	}

	if info := s.decodeManufacturerData(addr, adv.ManufacturerData()); info != nil {
		d.Info = info
		d.Product = device.ClassifyProduct(info)
		d.ProductName = gardena.ProductName(d.Product)
	}
	return d
}

func (s *Scanner) decodeManufacturerData(addr string, raw []byte) *device.ManufacturerData {
	if len(raw) < 2 || binary.LittleEndian.Uint16(raw) != gardena.CompanyID {
		return nil
	}
	info, err := device.DecodeManufacturerData(raw[2:])
	if err != nil {
		s.logger.WithError(err).WithField("address", addr).Debug("Ignoring manufacturer data")
		return nil
	}
	return info
}

// shouldIncludeDevice applies to allow/block/service filters
func (s *Scanner) shouldIncludeDevice(addr string, adv device.Advertisement, opts *ScanOptions) bool {
	if contains(opts.BlockList, addr) {
		return false
	}
	if len(opts.AllowList) > 0 && !contains(opts.AllowList, addr) {
		return false
	}

	for _, advUUID := range bledb.NormalizeUUIDs(adv.Services()) {
		if contains(opts.ServiceUUIDs, advUUID) {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, e := range list {
		if e == v {
			return true
		}
	}
	return false
}

// forceSend queues the event, dropping the oldest one when the buffer is full.
func (s *Scanner) forceSend(event DeviceEvent) {
	for {
		select {
		case s.events <- event:
			return
		default:
		}
		select {
		case <-s.events:
		default:
		}
	}
}

func (s *Scanner) snapshot() []Device {
	devs := make([]Device, 0, s.devices.Len())
	s.devices.Range(func(_ string, d *Device) bool {
		devs = append(devs, *d)
		return true
	})
	sort.Slice(devs, func(i, j int) bool {
		return devs[i].Address < devs[j].Address
	})
	return devs
}

// Events return a read-only channel of device events
func (s *Scanner) Events() <-chan DeviceEvent {
	return s.events
}
