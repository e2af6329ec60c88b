// Package i18n resolves localisation keys for the supported dashboard
// languages. Lookup never fails: a missing translation falls back to English,
// then to the key itself.
package i18n

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Lang is a supported UI language code.
type Lang string

const (
	English  Lang = "en"
	Hindi    Lang = "hi"
	Bengali  Lang = "bn"
	Gujarati Lang = "gu"
	Marathi  Lang = "mr"
)

// Supported lists the languages in selector order.
var Supported = []Lang{English, Hindi, Bengali, Gujarati, Marathi}

var matcher = language.NewMatcher([]language.Tag{
	language.English, language.Hindi, language.Bengali, language.Gujarati, language.Marathi,
})

//go:embed catalog.yaml
var seedCatalog []byte

// Catalog maps language to key to text. It is read-only after Load.
type Catalog struct {
	tables map[Lang]map[string]string
}

// Load parses a YAML catalogue of the form {lang: {key: text}}.
func Load(data []byte) (*Catalog, error) {
	var raw map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	c := &Catalog{tables: make(map[Lang]map[string]string, len(raw))}
	for lang, table := range raw {
		c.tables[Lang(strings.ToLower(lang))] = table
	}
	if _, ok := c.tables[English]; !ok {
		return nil, fmt.Errorf("catalog has no %q table", English)
	}
	return c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the embedded seed catalogue.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(seedCatalog)
		if err != nil {
			panic(fmt.Sprintf("i18n: embedded catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// T translates key into lang.
func (c *Catalog) T(lang Lang, key string) string {
	if v, ok := c.tables[lang][key]; ok && v != "" {
		return v
	}
	if v, ok := c.tables[English][key]; ok && v != "" {
		return v
	}
	return key
}

// Translator binds a language, for APIs that take a key-to-text function.
func (c *Catalog) Translator(lang Lang) func(key string) string {
	return func(key string) string {
		return c.T(lang, key)
	}
}

// Keys lists every key known in English, sorted.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.tables[English]))
	for k := range c.tables[English] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseLang accepts a supported code case-insensitively; anything else is
// English.
func ParseLang(s string) Lang {
	l := Lang(strings.ToLower(strings.TrimSpace(s)))
	for _, supported := range Supported {
		if l == supported {
			return l
		}
	}
	return English
}

// Negotiate picks the language from an explicit choice (query parameter)
// or, failing that, an Accept-Language header.
func Negotiate(explicit, acceptLanguage string) Lang {
	if explicit != "" {
		return ParseLang(explicit)
	}
	if acceptLanguage == "" {
		return English
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return English
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return English
	}
	return Supported[idx]
}
