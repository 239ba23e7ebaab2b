package testutils

import (
	"fmt"
	"strings"

	blelib "github.com/go-ble/ble"
)

var propertyFlags = map[string]blelib.Property{
	"broadcast":              blelib.CharBroadcast,
	"read":                   blelib.CharRead,
	"write-without-response": blelib.CharWriteNR,
	"write_without_response": blelib.CharWriteNR,
	"write":                  blelib.CharWrite,
	"notify":                 blelib.CharNotify,
	"indicate":               blelib.CharIndicate,
	"signed-write":           blelib.CharSignedWrite,
	"extended":               blelib.CharExtended,
}

// ParseProperties converts a comma separated property list such as
// "read,write" into ble.Property flags. An empty list means read and write.
func ParseProperties(props string) blelib.Property {
	if strings.TrimSpace(props) == "" {
		return blelib.CharRead | blelib.CharWrite
	}

	var p blelib.Property
	for _, name := range strings.Split(props, ",") {
		flag, ok := propertyFlags[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			panic(fmt.Sprintf("ParseProperties: unknown property %q", name))
		}
		p |= flag
	}
	return p
}
