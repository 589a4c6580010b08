// Package country maps country display names to ISO 3166-1 alpha-2 codes.
//
// Descriptions are stored under whatever country identifier the writer used,
// so the same holiday can live under "United States" and under "US". The
// lookups here let readers retry under the other representation.
//
// Lookups are exact: names match case-sensitively against the canonical
// English display names, codes match case-insensitively. A missing mapping
// is reported as mo.None, never as an error.
package country

import (
	"strings"

	"github.com/samber/mo"
)

// names maps canonical display names to alpha-2 codes.
var names = map[string]string{
	"Argentina":            "AR",
	"Australia":            "AU",
	"Austria":              "AT",
	"Bangladesh":           "BD",
	"Belgium":              "BE",
	"Brazil":               "BR",
	"Bulgaria":             "BG",
	"Cambodia":             "KH",
	"Canada":               "CA",
	"Chile":                "CL",
	"China":                "CN",
	"Colombia":             "CO",
	"Croatia":              "HR",
	"Cuba":                 "CU",
	"Czech Republic":       "CZ",
	"Denmark":              "DK",
	"Egypt":                "EG",
	"Estonia":              "EE",
	"Ethiopia":             "ET",
	"Finland":              "FI",
	"France":               "FR",
	"Germany":              "DE",
	"Greece":               "GR",
	"Hong Kong":            "HK",
	"Hungary":              "HU",
	"Iceland":              "IS",
	"India":                "IN",
	"Indonesia":            "ID",
	"Iran":                 "IR",
	"Ireland":              "IE",
	"Israel":               "IL",
	"Italy":                "IT",
	"Japan":                "JP",
	"Kenya":                "KE",
	"Latvia":               "LV",
	"Lithuania":            "LT",
	"Luxembourg":           "LU",
	"Malaysia":             "MY",
	"Mexico":               "MX",
	"Mongolia":             "MN",
	"Morocco":              "MA",
	"Nepal":                "NP",
	"Netherlands":          "NL",
	"New Zealand":          "NZ",
	"Nigeria":              "NG",
	"North Korea":          "KP",
	"Norway":               "NO",
	"Pakistan":             "PK",
	"Peru":                 "PE",
	"Philippines":          "PH",
	"Poland":               "PL",
	"Portugal":             "PT",
	"Romania":              "RO",
	"Russia":               "RU",
	"Saudi Arabia":         "SA",
	"Singapore":            "SG",
	"Slovakia":             "SK",
	"Slovenia":             "SI",
	"South Africa":         "ZA",
	"South Korea":          "KR",
	"Spain":                "ES",
	"Sri Lanka":            "LK",
	"Sweden":               "SE",
	"Switzerland":          "CH",
	"Taiwan":               "TW",
	"Thailand":             "TH",
	"Turkey":               "TR",
	"Ukraine":              "UA",
	"United Arab Emirates": "AE",
	"United Kingdom":       "GB",
	"United States":        "US",
	"Uruguay":              "UY",
	"Venezuela":            "VE",
	"Vietnam":              "VN",
}

// codes is the inverse of names, built once at init.
var codes = func() map[string]string {
	out := make(map[string]string, len(names))
	for name, code := range names {
		out[code] = name
	}
	return out
}()

// CodeForName returns the alpha-2 code for a canonical country name.
func CodeForName(name string) mo.Option[string] {
	code, ok := names[name]
	if !ok {
		return mo.None[string]()
	}
	return mo.Some(code)
}

// NameForCode returns the canonical country name for an alpha-2 code.
func NameForCode(code string) mo.Option[string] {
	name, ok := codes[strings.ToUpper(code)]
	if !ok {
		return mo.None[string]()
	}
	return mo.Some(name)
}

// Count returns the number of known countries.
func Count() int {
	return len(names)
}
