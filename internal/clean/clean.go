package clean

import (
	"regexp"
	"strings"
)

// streetTypeRe matches the trailing word of a street name, e.g. "Ave." in
// "N. Charleston Ave." or "D" in "Northeast 82nd Avenue #D".
var streetTypeRe = regexp.MustCompile(`(?i)\b\S+\.?$`)

// cityPrefix is a city/state prefix sometimes concatenated before a postcode.
const cityPrefix = "Portland, OR "

var defaults = DefaultRules()

// TrailingToken returns the trailing street-type token of name.
func TrailingToken(name string) (string, bool) {
	tok := streetTypeRe.FindString(name)
	return tok, tok != ""
}

// Street cleans a street name. Precedence: exact override, suffix expansion,
// unit-marker removal. Unmatched names are returned unchanged.
//
// Suffix expansion replaces every occurrence of the trailing token text, so
// "Ave Maria Ave" becomes "Avenue Maria Avenue" and "SE Stark St" becomes
// "SE Streetark Street". A rules file override can correct such names.
func (r Rules) Street(name string) string {
	if full, ok := r.StreetOverrides[name]; ok {
		return full
	}

	tok, ok := TrailingToken(name)
	if !ok {
		return name
	}

	if full, ok := r.StreetSuffixes[tok]; ok {
		name = strings.ReplaceAll(name, tok, full)
		return strings.TrimRight(strings.TrimRight(name, "."), " ")
	}

	if r.UnitSuffixes[tok] {
		return strings.TrimSuffix(name, " #"+tok)
	}

	return name
}

// Zip cleans a postcode. A hyphenated ZIP+4 keeps its first part; otherwise a
// leading "Portland, OR " is dropped. Only one rule applies per call.
func (r Rules) Zip(code string) string {
	if before, _, ok := strings.Cut(code, "-"); ok {
		return before
	}
	if _, after, ok := strings.Cut(code, cityPrefix); ok {
		return after
	}
	return code
}

// State expands state abbreviations and known-bad values.
func (r Rules) State(name string) string {
	if full, ok := r.States[name]; ok {
		return full
	}
	return name
}

// UpdateName cleans a street name with the default rules.
func UpdateName(name string) string { return defaults.Street(name) }

// UpdateZip cleans a postcode with the default rules.
func UpdateZip(code string) string { return defaults.Zip(code) }

// UpdateStateName cleans a state name with the default rules.
func UpdateStateName(name string) string { return defaults.State(name) }
