package main

import (
	"errors"

	"github.com/srg/gardena/internal/codec"
	"github.com/srg/gardena/internal/device"
)

// target is a characteristic named on the command line. desc is nil for
// uuids outside the catalogue.
type target struct {
	uuid string
	desc codec.Descriptor
}

func (t target) label() string {
	if t.desc != nil {
		return t.desc.Name()
	}
	return device.ShortenUUID(t.uuid)
}

// resolveTarget accepts anything Registry.Find does plus any well-formed
// uuid.
func resolveTarget(reg *codec.Registry, ref string) (target, error) {
	d, err := reg.Find(ref)
	if err == nil {
		return target{uuid: d.UUID(), desc: d}, nil
	}
	if errors.Is(err, codec.ErrUnknownCharacteristic) {
		if uuid := device.NormalizeUUID(ref); uuid != "" {
			return target{uuid: uuid}, nil
		}
	}
	return target{}, err
}
