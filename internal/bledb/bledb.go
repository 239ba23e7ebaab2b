// Package bledb normalises Bluetooth UUID spellings and keeps a uuid to
// display-name side table for debugging tools.
package bledb

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// sigBaseSuffix is the Bluetooth SIG base UUID without its leading 32 bits.
const sigBaseSuffix = "00001000800000805f9b34fb"

// NormalizeUUID converts a UUID string to the canonical lowercase, dashed,
// 128-bit form. Braces, dashes and a 0x prefix are ignored; 16-bit and 32-bit
// short forms are expanded over the Bluetooth SIG base.
// Returns "" when the input is not a UUID.
func NormalizeUUID(s string) string {
	h := strings.ToLower(strings.TrimSpace(s))
	h = strings.TrimPrefix(strings.TrimSuffix(h, "}"), "{")
	h = strings.TrimPrefix(h, "0x")
	h = strings.ReplaceAll(h, "-", "")

	switch len(h) {
	case 4:
		h = "0000" + h + sigBaseSuffix
	case 8:
		h += sigBaseSuffix
	case 32:
	default:
		return ""
	}

	u, err := uuid.Parse(h)
	if err != nil {
		return ""
	}
	return u.String()
}

// NormalizeUUIDs normalises every entry, dropping the ones that are not UUIDs.
func NormalizeUUIDs(uuids []string) []string {
	out := make([]string, 0, len(uuids))
	for _, u := range uuids {
		if n := NormalizeUUID(u); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// ShortForm returns the 16-bit form of a SIG base UUID and the canonical
// form of anything else.
func ShortForm(s string) string {
	n := NormalizeUUID(s)
	compact := strings.ReplaceAll(n, "-", "")
	if strings.HasPrefix(compact, "0000") && strings.HasSuffix(compact, sigBaseSuffix) {
		return compact[4:8]
	}
	return n
}

// DB is a uuid to display-name table. Populate it before sharing it between
// goroutines; lookups do not lock.
type DB struct {
	names map[string]string
}

// New returns an empty table.
func New() *DB {
	return &DB{names: make(map[string]string)}
}

// Register adds a name for uuid. Registering a different name for a uuid that
// is already present is an error.
func (db *DB) Register(u, name string) error {
	n := NormalizeUUID(u)
	if n == "" {
		return fmt.Errorf("invalid uuid %q", u)
	}
	if prev, ok := db.names[n]; ok && prev != name {
		return fmt.Errorf("uuid %s already registered as %q", n, prev)
	}
	db.names[n] = name
	return nil
}

// Lookup returns the display name registered for uuid.
func (db *DB) Lookup(u string) (string, bool) {
	name, ok := db.names[NormalizeUUID(u)]
	return name, ok
}

// Name returns the registered name, or the short uuid form when unknown.
func (db *DB) Name(u string) string {
	if name, ok := db.Lookup(u); ok {
		return name
	}
	return ShortForm(u)
}

// UUIDs lists registered uuids in lexical order.
func (db *DB) UUIDs() []string {
	out := make([]string, 0, len(db.names))
	for u := range db.names {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

func (db *DB) Len() int {
	return len(db.names)
}
