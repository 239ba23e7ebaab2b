package inspector

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/sync/errgroup"

	"github.com/srg/gardena/internal/bledb"
	"github.com/srg/gardena/internal/codec"
	"github.com/srg/gardena/internal/device"
	"github.com/srg/gardena/internal/session"
)

// DefaultConcurrency bounds the reads in flight over the shared link.
const DefaultConcurrency = 4

// ProgressCallback is called when the inspection phase changes
type ProgressCallback func(phase string)

// InspectOptions defines options for inspecting a device
type InspectOptions struct {
	// Concurrency bounds parallel reads; 0 means DefaultConcurrency.
	Concurrency int
	// ReadLimit truncates the hex and ASCII previews; 0 disables truncation.
	ReadLimit int
	// Names resolves display names; nil leaves them empty.
	Names *bledb.DB
}

// InspectResult is the discovered profile with every readable value.
type InspectResult struct {
	Services []ServiceInfo `json:"services"`
}

type ServiceInfo struct {
	UUID            string               `json:"uuid"`
	Name            string               `json:"name,omitempty"`
	Characteristics []CharacteristicInfo `json:"characteristics"`
}

type CharacteristicInfo struct {
	UUID       string   `json:"uuid"`
	Name       string   `json:"name,omitempty"`
	Kind       string   `json:"kind,omitempty"`
	Properties []string `json:"properties"`
	Value      string   `json:"value,omitempty"`
	ValueHex   string   `json:"value_hex,omitempty"`
	ValueASCII string   `json:"value_ascii,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// Inspect enumerates the device's characteristics and reads the readable
// ones concurrently. Values the session registry knows are decoded; the rest
// are shown as hex. A failed read is recorded on its characteristic, except
// for context cancellation which aborts the inspection.
func Inspect(ctx context.Context, sess *session.Session, opts *InspectOptions, logger *logrus.Logger, progressCallback ProgressCallback) (*InspectResult, error) {
	if opts == nil {
		opts = &InspectOptions{}
	}
	if logger == nil {
		logger = logrus.New()
	}
	if progressCallback == nil {
		progressCallback = func(string) {}
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	progressCallback("Connecting")
	infos, err := sess.Characteristics(ctx)
	if err != nil {
		progressCallback("Failed")
		return nil, err
	}

	progressCallback("Reading characteristics")
	chars := make([]CharacteristicInfo, len(infos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, info := range infos {
		chars[i] = describe(info, sess.Registry(), opts.Names)
		if !device.CanRead(info.Properties()) {
			continue
		}

		uuid := info.UUID()
		g.Go(func() error {
			data, err := sess.ReadRaw(gctx, uuid)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				logger.WithError(err).WithField("uuid", uuid).Debug("Characteristic read failed")
				chars[i].Error = err.Error()
				return nil
			}
			fillValue(&chars[i], data, sess.Registry(), opts.ReadLimit)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		progressCallback("Failed")
		return nil, err
	}

	progressCallback("Processing results")
	return group(infos, chars, opts.Names), nil
}

func describe(info device.CharacteristicInfo, reg *codec.Registry, names *bledb.DB) CharacteristicInfo {
	ci := CharacteristicInfo{
		UUID:       info.UUID(),
		Properties: device.PropertyNames(info.Properties()),
	}
	if d, ok := reg.Characteristic(info.UUID()); ok {
		ci.Kind = d.Kind().String()
	}
	if names != nil {
		ci.Name, _ = names.Lookup(info.UUID())
	}
	return ci
}

func fillValue(ci *CharacteristicInfo, data []byte, reg *codec.Registry, readLimit int) {
	preview := data
	if readLimit > 0 && len(preview) > readLimit {
		preview = preview[:readLimit]
	}
	ci.ValueHex = strings.ToUpper(hex.EncodeToString(preview))
	ci.ValueASCII = asciiPreview(preview)

	d, ok := reg.Characteristic(ci.UUID)
	if !ok {
		return
	}
	v, err := d.DecodeValue(data)
	if err != nil {
		ci.Error = err.Error()
		return
	}
	ci.Value = codec.FormatValue(v)
}

// group keeps services in order of first appearance.
func group(infos []device.CharacteristicInfo, chars []CharacteristicInfo, names *bledb.DB) *InspectResult {
	services := orderedmap.New[string, *ServiceInfo]()
	for i, info := range infos {
		svc, ok := services.Get(info.ServiceUUID())
		if !ok {
			svc = &ServiceInfo{UUID: info.ServiceUUID()}
			if names != nil {
				svc.Name, _ = names.Lookup(svc.UUID)
			}
			services.Set(svc.UUID, svc)
		}
		svc.Characteristics = append(svc.Characteristics, chars[i])
	}

	res := &InspectResult{Services: make([]ServiceInfo, 0, services.Len())}
	for pair := services.Oldest(); pair != nil; pair = pair.Next() {
		res.Services = append(res.Services, *pair.Value)
	}
	return res
}

// asciiPreview returns a safe ASCII preview, replacing non-printable bytes with '.'
func asciiPreview(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		if c >= 32 && c <= 126 {
			sb.WriteByte(c)
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}
