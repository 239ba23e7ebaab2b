package codec

import (
	"errors"
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/srg/gardena/internal/bledb"
)

// ErrUnknownCharacteristic is returned by Registry.Find when nothing matches.
var ErrUnknownCharacteristic = errors.New("unknown characteristic")

// Service groups characteristics under a service uuid. Characteristics are
// kept in declaration order.
type Service struct {
	uuid  string
	key   string
	name  string
	chars *orderedmap.OrderedMap[string, Descriptor]
	err   error
}

// NewService declares a service. Problems such as duplicate characteristics
// are reported by Builder.Build.
func NewService(key, uuid string, chars ...Descriptor) *Service {
	s := &Service{
		uuid:  bledb.NormalizeUUID(uuid),
		key:   key,
		name:  DisplayName(key),
		chars: orderedmap.New[string, Descriptor](),
	}
	if s.uuid == "" {
		s.err = fmt.Errorf("%w: service %q: %q", ErrInvalidUUID, key, uuid)
		return s
	}
	for _, c := range chars {
		if _, dup := s.chars.Set(c.UUID(), c); dup && s.err == nil {
			s.err = fmt.Errorf("%w: service %q declares %s twice", ErrDuplicateUUID, key, c.UUID())
		}
	}
	return s
}

func (s *Service) UUID() string { return s.uuid }
func (s *Service) Key() string  { return s.key }
func (s *Service) Name() string { return s.name }

// Characteristics returns the service's characteristics in declaration order.
func (s *Service) Characteristics() []Descriptor {
	out := make([]Descriptor, 0, s.chars.Len())
	for pair := s.chars.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Characteristic returns the characteristic with the given uuid.
func (s *Service) Characteristic(uuid string) (Descriptor, bool) {
	return s.chars.Get(bledb.NormalizeUUID(uuid))
}

// Builder collects services and compiles them into a Registry.
type Builder struct {
	services []*Service
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends services in the order they should be enumerated.
func (b *Builder) Add(services ...*Service) *Builder {
	b.services = append(b.services, services...)
	return b
}

// Build validates the collected services and returns an immutable registry.
// A uuid may be declared only once across services and characteristics.
func (b *Builder) Build() (*Registry, error) {
	r := &Registry{
		services: orderedmap.New[string, *Service](),
		chars:    orderedmap.New[string, Descriptor](),
		owners:   make(map[string]*Service),
	}

	for _, s := range b.services {
		if s.err != nil {
			return nil, s.err
		}
		if prev, dup := r.services.Get(s.uuid); dup {
			return nil, fmt.Errorf("%w: service %s declared by %q and %q", ErrDuplicateUUID, s.uuid, prev.key, s.key)
		}
		r.services.Set(s.uuid, s)

		for pair := s.chars.Oldest(); pair != nil; pair = pair.Next() {
			c := pair.Value
			if bledb.NormalizeUUID(c.UUID()) == "" {
				return nil, fmt.Errorf("%w: characteristic %q: %q", ErrInvalidUUID, c.Key(), c.UUID())
			}
			if owner, dup := r.owners[c.UUID()]; dup {
				return nil, fmt.Errorf("%w: characteristic %s declared by %q and %q",
					ErrDuplicateUUID, c.UUID(), owner.key, s.key)
			}
			r.chars.Set(c.UUID(), c)
			r.owners[c.UUID()] = s
		}
	}
	return r, nil
}

// Registry is an immutable uuid to descriptor mapping. It is safe for
// concurrent use.
type Registry struct {
	services *orderedmap.OrderedMap[string, *Service]
	chars    *orderedmap.OrderedMap[string, Descriptor]
	owners   map[string]*Service
}

// Characteristic returns the descriptor registered for uuid, in any spelling
// NormalizeUUID accepts.
func (r *Registry) Characteristic(uuid string) (Descriptor, bool) {
	return r.chars.Get(bledb.NormalizeUUID(uuid))
}

func (r *Registry) Service(uuid string) (*Service, bool) {
	return r.services.Get(bledb.NormalizeUUID(uuid))
}

// ServiceOf returns the service that declares the characteristic.
func (r *Registry) ServiceOf(charUUID string) (*Service, bool) {
	s, ok := r.owners[bledb.NormalizeUUID(charUUID)]
	return s, ok
}

// Services returns the services in the order they were added.
func (r *Registry) Services() []*Service {
	out := make([]*Service, 0, r.services.Len())
	for pair := r.services.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Characteristics returns every characteristic, grouped by service in
// declaration order.
func (r *Registry) Characteristics() []Descriptor {
	out := make([]Descriptor, 0, r.chars.Len())
	for pair := r.chars.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

func (r *Registry) Len() int {
	return r.chars.Len()
}

// Find resolves a user supplied reference: a uuid, a key ("unix_timestamp"),
// a qualified key ("device_configuration.unix_timestamp") or a display name.
// Matching ignores case. A key shared by several services must be qualified.
func (r *Registry) Find(ref string) (Descriptor, error) {
	if d, ok := r.Characteristic(ref); ok {
		return d, nil
	}

	want := strings.ToLower(strings.TrimSpace(ref))
	var matches []Descriptor
	for pair := r.chars.Oldest(); pair != nil; pair = pair.Next() {
		c := pair.Value
		owner := r.owners[c.UUID()]
		if want == c.Key() ||
			want == strings.ToLower(c.Name()) ||
			want == owner.key+"."+c.Key() {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharacteristic, ref)
	case 1:
		return matches[0], nil
	default:
		qualified := make([]string, 0, len(matches))
		for _, m := range matches {
			qualified = append(qualified, r.owners[m.UUID()].key+"."+m.Key())
		}
		return nil, fmt.Errorf("%q is ambiguous, use one of: %s", ref, strings.Join(qualified, ", "))
	}
}
