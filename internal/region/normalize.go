package region

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize lowercases name, trims surrounding whitespace and spells out every
// ampersand.
func Normalize(name string) string {
	lower := cases.Lower(language.Und).String(name)
	return strings.ReplaceAll(strings.TrimSpace(lower), "&", "and")
}

// separatorForm joins whitespace runs with a single underscore, the separator
// the backend uses in multi-word keys.
func separatorForm(name string) string {
	return strings.Join(strings.Fields(name), "_")
}

// compactForm drops whitespace, underscores and hyphens so "foo bar",
// "foo_bar" and "foobar" compare equal during substring matching.
func compactForm(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '_' || r == '-' {
			return -1
		}
		return r
	}, s)
}

// ShortID derives the region identifier: the first three characters of the
// display name, uppercased, with nothing stripped beforehand.
func ShortID(displayName string) string {
	runes := []rune(displayName)
	if len(runes) > 3 {
		runes = runes[:3]
	}
	return strings.ToUpper(string(runes))
}

// DisplayName turns a region name or key ("region_tamil_nadu", "uttar pradesh")
// into title case for panels and action records.
func DisplayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Unknown Region"
	}
	clean := strings.TrimPrefix(name, "region_")
	clean = strings.ReplaceAll(clean, "_", " ")
	return cases.Title(language.Und).String(clean)
}
