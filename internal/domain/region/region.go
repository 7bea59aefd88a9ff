package region

import (
	"errors"
	"strings"
)

// Region identifies a supported storefront market
type Region string

const (
	India  Region = "India"
	UAE    Region = "UAE"
	Global Region = "Global"
)

// Default is used when no region has been chosen or detected
const Default = Global

var ErrUnknownRegion = errors.New("unknown region")

// MarketConfig is the immutable configuration of a market
type MarketConfig struct {
	Region         Region `json:"region"`
	Name           string `json:"name"`
	Currency       string `json:"currency"`
	CurrencySymbol string `json:"currency_symbol"`
	Flag           string `json:"flag"`
	CountryCode    string `json:"country_code"`
	Locale         string `json:"locale"`
}

var markets = map[Region]MarketConfig{
	India: {
		Region:         India,
		Name:           "India",
		Currency:       "INR",
		CurrencySymbol: "₹",
		Flag:           "🇮🇳",
		CountryCode:    "IN",
		Locale:         "en-IN",
	},
	UAE: {
		Region:         UAE,
		Name:           "UAE",
		Currency:       "AED",
		CurrencySymbol: "AED ",
		Flag:           "🇦🇪",
		CountryCode:    "AE",
		Locale:         "en-AE",
	},
	Global: {
		Region:         Global,
		Name:           "Global",
		Currency:       "USD",
		CurrencySymbol: "$",
		Flag:           "🌐",
		CountryCode:    "US",
		Locale:         "en-US",
	},
}

// All returns the supported regions in catalog merge order
func All() []Region {
	return []Region{India, UAE, Global}
}

// Valid reports whether r is one of the supported regions
func (r Region) Valid() bool {
	_, ok := markets[r]
	return ok
}

// Market returns the market configuration for r, or the default market if r is unknown
func (r Region) Market() MarketConfig {
	if m, ok := markets[r]; ok {
		return m
	}
	return markets[Default]
}

func (r Region) String() string {
	return string(r)
}

// Parse matches a region name case-insensitively
func Parse(s string) (Region, error) {
	s = strings.TrimSpace(s)
	for _, r := range All() {
		if strings.EqualFold(string(r), s) {
			return r, nil
		}
	}
	return "", ErrUnknownRegion
}

// FromCountryCode maps an ISO country code to a region
func FromCountryCode(code string) (Region, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", false
	}
	for _, r := range All() {
		if markets[r].CountryCode == code {
			return r, true
		}
	}
	return "", false
}
