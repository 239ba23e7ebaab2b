package codec

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayName turns a snake_case key into a title-cased name:
// "unix_timestamp" becomes "Unix Timestamp".
func DisplayName(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	// a Caser keeps state, so one per call
	return cases.Title(language.English).String(strings.Join(words, " "))
}
