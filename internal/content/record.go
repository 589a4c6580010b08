// Package content defines the canonical holiday description record and the
// composite key used to address it in every storage tier.
package content

import (
	"errors"
	"strings"
	"time"

	"github.com/omarluq/holicache/internal/country"
)

// DefaultLocale is used when a caller does not name a locale.
const DefaultLocale = "ko"

// ManualConfidence is the confidence given to hand-written descriptions.
const ManualConfidence = 1.0

// Validation errors for keys and records.
var (
	ErrEmptyHoliday = errors.New("content: holiday name is required")
	ErrEmptyCountry = errors.New("content: country is required")
	ErrConfidence   = errors.New("content: confidence must be within [0, 1]")
)

// Record is a holiday description as returned to callers, independent of
// the tier that served it.
type Record struct {
	GeneratedAt time.Time `json:"generatedAt"`
	LastUsedAt  time.Time `json:"lastUsed"`
	ID          string    `json:"id"`
	Holiday     string    `json:"holidayName"`
	Country     string    `json:"countryName"`
	Locale      string    `json:"locale"`
	Body        string    `json:"description"`
	Confidence  float64   `json:"confidence"`
	Manual      bool      `json:"isManual"`
}

// Key returns the composite key the record is stored under. The country is
// taken verbatim, as it was written.
func (r *Record) Key() Key {
	return Key{Holiday: r.Holiday, Country: country.Parse(r.Country), Locale: r.Locale}
}

// IsManual reports whether the record was written by hand. Records that
// predate the explicit flag are recognized by their confidence.
func (r *Record) IsManual() bool {
	return r.Manual || r.Confidence >= ManualConfidence
}

// Validate checks the fields every tier depends on.
func (r *Record) Validate() error {
	if err := r.Key().Validate(); err != nil {
		return err
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return ErrConfidence
	}
	return nil
}

// Key addresses one description: a holiday in a country, in a language.
type Key struct {
	Holiday string
	Locale  string
	Country country.Identifier
}

// NewKey builds a key from untyped strings, defaulting the locale.
func NewKey(holiday, countryValue, locale string) Key {
	return Key{
		Holiday: holiday,
		Country: country.Parse(countryValue),
		Locale:  NormalizeLocale(locale),
	}
}

// NormalizeLocale trims locale and substitutes DefaultLocale when empty.
func NormalizeLocale(locale string) string {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return DefaultLocale
	}
	return locale
}

// String returns the composite storage key: holiday-country-locale.
func (k Key) String() string {
	return k.Holiday + "-" + k.Country.Value + "-" + k.Locale
}

// WithCountry returns a copy of k addressed by a different country identifier.
func (k Key) WithCountry(id country.Identifier) Key {
	k.Country = id
	return k
}

// Variants returns k followed by the keys for each alternate country
// representation.
func (k Key) Variants() []Key {
	alts := k.Country.Alternates()
	out := make([]Key, 0, len(alts)+1)
	out = append(out, k)
	for _, alt := range alts {
		out = append(out, k.WithCountry(alt))
	}
	return out
}

// Validate reports whether the key can address a record.
func (k Key) Validate() error {
	if strings.TrimSpace(k.Holiday) == "" {
		return ErrEmptyHoliday
	}
	if k.Country.IsZero() {
		return ErrEmptyCountry
	}
	return nil
}
