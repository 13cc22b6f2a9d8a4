package weather

import "strings"

// countryCodes maps common English country names to their ISO 3166-1
// alpha-2 codes. The geocoder accepts either form, but codes produce
// noticeably better hit rates for ambiguous city names.
var countryCodes = map[string]string{
	"argentina":      "AR",
	"australia":      "AU",
	"austria":        "AT",
	"belgium":        "BE",
	"brazil":         "BR",
	"canada":         "CA",
	"chile":          "CL",
	"china":          "CN",
	"czech republic": "CZ",
	"czechia":        "CZ",
	"denmark":        "DK",
	"egypt":          "EG",
	"finland":        "FI",
	"france":         "FR",
	"germany":        "DE",
	"greece":         "GR",
	"hungary":        "HU",
	"india":          "IN",
	"indonesia":      "ID",
	"ireland":        "IE",
	"israel":         "IL",
	"italy":          "IT",
	"japan":          "JP",
	"mexico":         "MX",
	"netherlands":    "NL",
	"new zealand":    "NZ",
	"norway":         "NO",
	"poland":         "PL",
	"portugal":       "PT",
	"romania":        "RO",
	"russia":         "RU",
	"singapore":      "SG",
	"south africa":   "ZA",
	"south korea":    "KR",
	"spain":          "ES",
	"sweden":         "SE",
	"switzerland":    "CH",
	"taiwan":         "TW",
	"thailand":       "TH",
	"turkey":         "TR",
	"ukraine":        "UA",
	"united kingdom": "GB",
	"uk":             "GB",
	"united states":  "US",
	"usa":            "US",
	"vietnam":        "VN",
}

// NormalizeCountry maps a country name to its ISO-2 code where
// recognized. Two-letter input is treated as an existing code and
// uppercased; anything unrecognized passes through unchanged.
func NormalizeCountry(name string) string {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) == 2 {
		return strings.ToUpper(trimmed)
	}
	if code, ok := countryCodes[strings.ToLower(trimmed)]; ok {
		return code
	}
	return trimmed
}
