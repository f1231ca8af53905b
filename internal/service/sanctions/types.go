package sanctions

import (
	"strings"
	"time"

	"github.com/nodeorb/scm-risk-engine/internal/domain/compliance"
)

// Supported watch lists
const (
	ListOFAC = "OFAC"
	ListEU   = "EU"
	ListUN   = "UN"
	ListUK   = "UK"
	ListCA   = "CA"
	ListAU   = "AU"
	ListJP   = "JP"
)

// KnownLists is every list a WatchList may be named after
var KnownLists = []string{ListOFAC, ListEU, ListUN, ListUK, ListCA, ListAU, ListJP}

// WatchList matches passports by name substring or country code
type WatchList struct {
	Name         string   `koanf:"name"`
	NameTerms    []string `koanf:"name_terms"`
	CountryCodes []string `koanf:"country_codes"`
}

// Matches reports whether a full name or country hits this list
func (w WatchList) Matches(fullName, country string) bool {
	name := strings.ToLower(fullName)
	for _, term := range w.NameTerms {
		if term != "" && strings.Contains(name, strings.ToLower(term)) {
			return true
		}
	}
	for _, code := range w.CountryCodes {
		if country != "" && strings.EqualFold(country, code) {
			return true
		}
	}
	return false
}

// DefaultWatchLists returns the built-in screening data
func DefaultWatchLists() []WatchList {
	return []WatchList{
		{Name: ListOFAC, NameTerms: []string{"Sanctioned"}},
		{Name: ListUN, CountryCodes: []string{"Country1", "Country2"}},
	}
}

// DefaultCountryRestrictions returns the sanctioned country table
func DefaultCountryRestrictions() map[string][]string {
	return map[string][]string{
		"RU": {"Financial restrictions", "Technology export ban", "Energy sector restrictions"},
		"IR": {"Nuclear program restrictions", "Financial sanctions", "Arms embargo"},
		"KP": {"Weapons embargo", "Luxury goods ban", "Financial restrictions"},
		"SY": {"Arms embargo", "Financial sanctions", "Travel restrictions"},
	}
}

// CountrySanctionLists are reported for every sanctioned country
var CountrySanctionLists = []string{ListUN, ListOFAC}

// SanctionCheckResult is the outcome of a party screening
type SanctionCheckResult struct {
	IsSanctioned  bool                 `json:"is_sanctioned"`
	SanctionLists []string             `json:"sanction_lists"`
	LastCheck     time.Time            `json:"last_check"`
	RiskLevel     compliance.RiskLevel `json:"risk_level"`
}

// CountrySanctionResult is the outcome of a country lookup
type CountrySanctionResult struct {
	CountryCode   string   `json:"country_code"`
	IsSanctioned  bool     `json:"is_sanctioned"`
	SanctionLists []string `json:"sanction_lists"`
	Restrictions  []string `json:"restrictions"`
}

// RiskLevelFor ranks list matches: OFAC or UN is CRITICAL, EU or UK is HIGH,
// any other match is MEDIUM and no match is LOW
func RiskLevelFor(matches []string) compliance.RiskLevel {
	has := func(name string) bool {
		for _, m := range matches {
			if m == name {
				return true
			}
		}
		return false
	}

	switch {
	case has(ListOFAC) || has(ListUN):
		return compliance.RiskLevelCritical
	case has(ListEU) || has(ListUK):
		return compliance.RiskLevelHigh
	case len(matches) > 0:
		return compliance.RiskLevelMedium
	default:
		return compliance.RiskLevelLow
	}
}
