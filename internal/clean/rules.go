// Package clean normalizes the address fields of OpenStreetMap tags: street
// names, postal codes, and state names.
package clean

import (
	"maps"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Tag keys whose values are routed through a cleaner.
const (
	KeyStreet   = "addr:street"
	KeyPostcode = "addr:postcode"
	KeyState    = "addr:state"
)

// Rules holds the lookup tables used by the cleaners. A Rules value is treated
// as read-only once built; DefaultRules and LoadRules always return fresh maps.
type Rules struct {
	// StreetOverrides replaces a whole street value on exact match.
	StreetOverrides map[string]string
	// StreetSuffixes expands an abbreviated trailing street type.
	StreetSuffixes map[string]string
	// UnitSuffixes lists unit markers stripped as a trailing " #<marker>".
	UnitSuffixes map[string]bool
	// States maps abbreviations and known-bad values to full state names.
	States map[string]string
}

var defaultStreetSuffixes = map[string]string{
	"St":    "Street",
	"St.":   "Street",
	"st.":   "Street",
	"Ave.":  "Avenue",
	"Ave":   "Avenue",
	"AVE":   "Avenue",
	"Rd.":   "Road",
	"Rd":    "Road",
	"Dr":    "Drive",
	"Dr.":   "Drive",
	"Blvd":  "Boulevard",
	"Blvd.": "Boulevard",
	"Cir":   "Circle",
	"Hwy":   "Highway",
	"Pkwy":  "Parkway",
	"Pky":   "Parkway",
}

var defaultStreetOverrides = map[string]string{
	"8202 SE Flavel St, Portland, OR 97266": "8202 SE Flavel Street",
	"US 26 (OR)":                            "US Highway 26",
	"North Missouri Ave-Michigan Ave Alley": "North Missouri Avenue - Michigan Avenue Alley",
	" Southeast Hwy 212":                    "Southeast Highway 212",
	"Southeast Hwy 212":                     "Southeast Highway 212",
	"Southeast Stark Street;SE Stark St":    "Southeast Stark Street",
	"North Marine Srive":                    "North Marine Drive",
	"unknown":                               "N/A",
	"gresham":                               "Gresham",
}

var defaultUnitSuffixes = map[string]bool{
	"D":    true,
	"101":  true,
	"C113": true,
	"E":    true,
}

var defaultStates = map[string]string{
	"OR":  "Oregon",
	"ORs": "Oregon",
	"Or":  "Oregon",
	"or":  "Oregon",
	"WA":  "Washington",
	"wa":  "Washington",
	"Wa":  "Washington",
	"1401 N.E. 68th Avenue  Portland, OR 97213": "Oregon",
}

// DefaultRules returns the built-in tables for the Portland, OR metro extract.
func DefaultRules() Rules {
	return Rules{
		StreetOverrides: maps.Clone(defaultStreetOverrides),
		StreetSuffixes:  maps.Clone(defaultStreetSuffixes),
		UnitSuffixes:    maps.Clone(defaultUnitSuffixes),
		States:          maps.Clone(defaultStates),
	}
}

// rulesFile is the on-disk layout accepted by LoadRules.
type rulesFile struct {
	StreetOverrides map[string]string `yaml:"street_overrides"`
	StreetSuffixes  map[string]string `yaml:"street_suffixes"`
	UnitSuffixes    []string          `yaml:"unit_suffixes"`
	States          map[string]string `yaml:"states"`
}

// LoadRules reads a YAML rules file and merges its entries over the defaults.
// An empty path returns the defaults unchanged.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, eris.Wrapf(err, "clean: read rules file %s", path)
	}

	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Rules{}, eris.Wrapf(err, "clean: parse rules file %s", path)
	}

	maps.Copy(rules.StreetOverrides, f.StreetOverrides)
	maps.Copy(rules.StreetSuffixes, f.StreetSuffixes)
	maps.Copy(rules.States, f.States)
	for _, u := range f.UnitSuffixes {
		if u == "" {
			return Rules{}, eris.Errorf("clean: rules file %s: empty unit suffix", path)
		}
		rules.UnitSuffixes[u] = true
	}

	return rules, nil
}

// Apply routes value through the cleaner registered for key. Keys without a
// cleaner return value unchanged.
func (r Rules) Apply(key, value string) string {
	switch key {
	case KeyStreet:
		return r.Street(value)
	case KeyPostcode:
		return r.Zip(value)
	case KeyState:
		return r.State(value)
	default:
		return value
	}
}
