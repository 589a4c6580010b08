package generator

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/omarluq/holicache/internal/content"
	"github.com/omarluq/holicache/internal/country"
)

// Entry is one curated description. An empty Country applies the entry to
// the holiday in every country.
type Entry struct {
	Holiday    string  `yaml:"holiday"`
	Country    string  `yaml:"country"`
	Locale     string  `yaml:"locale"`
	Body       string  `yaml:"body"`
	Confidence float64 `yaml:"confidence"`
}

// DefaultStaticConfidence is used for entries that omit a confidence.
const DefaultStaticConfidence = 0.9

// Static serves curated descriptions from a fixed table.
type Static struct {
	entries map[string]Result
}

// NewStatic indexes entries. Country-specific entries win over generic ones.
func NewStatic(entries []Entry) *Static {
	s := &Static{entries: make(map[string]Result, len(entries))}
	for _, e := range entries {
		conf := e.Confidence
		if conf <= 0 {
			conf = DefaultStaticConfidence
		}
		locale := content.NormalizeLocale(e.Locale)
		countryKey := ""
		if e.Country != "" {
			countryKey = canonicalCountry(country.Parse(e.Country))
		}
		s.entries[staticKey(e.Holiday, countryKey, locale)] = Result{Body: e.Body, Confidence: conf}
	}
	return s
}

// LoadStatic reads a YAML list of entries from path.
func LoadStatic(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("generator: read %s: %w", path, err)
	}
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("generator: parse %s: %w", path, err)
	}
	return NewStatic(entries), nil
}

// Len returns the number of entries.
func (s *Static) Len() int {
	return len(s.entries)
}

// Generate implements Generator.
func (s *Static) Generate(_ context.Context, key content.Key) (Result, error) {
	locale := content.NormalizeLocale(key.Locale)
	if res, ok := s.entries[staticKey(key.Holiday, canonicalCountry(key.Country), locale)]; ok {
		return res, nil
	}
	if res, ok := s.entries[staticKey(key.Holiday, "", locale)]; ok {
		return res, nil
	}
	return Result{}, ErrNoContent
}

func staticKey(holiday, countryKey, locale string) string {
	return holiday + "|" + countryKey + "|" + locale
}

// canonicalCountry returns the display name when known so that "US" and
// "United States" index the same entry.
func canonicalCountry(id country.Identifier) string {
	return id.DisplayName().OrElse(id.Value)
}
