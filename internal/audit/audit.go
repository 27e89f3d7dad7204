// Package audit scans an OSM export for address values the cleaners should
// handle: unexpected street types, malformed postcodes, and unknown states.
package audit

import (
	"context"
	"io"
	"regexp"
	"slices"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/osmprep/internal/clean"
	"github.com/sells-group/osmprep/internal/osm"
)

var zipRe = regexp.MustCompile(`^\d{5}$`)

// ExpectedStreetTypes are trailing street words that need no cleaning.
var ExpectedStreetTypes = []string{
	"Street", "Avenue", "Boulevard", "Drive", "Court", "Place", "Square", "Lane", "Road",
	"Trail", "Parkway", "Commons", "Circle", "Loop", "Terrace", "Way", "Circus", "View",
	"Row", "Broadway", "Highway",
}

// ExpectedStates are the state names that need no cleaning.
var ExpectedStates = []string{"Oregon", "Washington"}

// Finding is one audited value and what the cleaner turns it into.
type Finding struct {
	Value   string
	Cleaned string
}

// Changed reports whether the cleaner rewrites the value.
func (f Finding) Changed() bool {
	return f.Value != f.Cleaned
}

// Report collects distinct suspicious values per field, sorted.
type Report struct {
	// Streets groups street names by their unexpected trailing type.
	Streets map[string][]Finding
	Zips    []Finding
	States  []Finding
}

// StreetTypes returns the keys of Streets in sorted order.
func (r Report) StreetTypes() []string {
	types := make([]string, 0, len(r.Streets))
	for t := range r.Streets {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Run reads the OSM document in r to the end and audits every addr:street,
// addr:postcode and addr:state tag, showing what rules would make of each value.
func Run(ctx context.Context, r io.Reader, rules clean.Rules) (Report, error) {
	streets := map[string]map[string]bool{}
	zips := map[string]bool{}
	states := map[string]bool{}

	for el, err := range osm.Elements(ctx, r) {
		if err != nil {
			return Report{}, eris.Wrap(err, "audit: read element")
		}

		for _, t := range el.Tags {
			switch t.Key {
			case clean.KeyStreet:
				tok, ok := clean.TrailingToken(t.Value)
				if !ok || slices.Contains(ExpectedStreetTypes, tok) {
					continue
				}
				if streets[tok] == nil {
					streets[tok] = map[string]bool{}
				}
				streets[tok][t.Value] = true
			case clean.KeyPostcode:
				if !zipRe.MatchString(t.Value) {
					zips[t.Value] = true
				}
			case clean.KeyState:
				if !slices.Contains(ExpectedStates, t.Value) {
					states[t.Value] = true
				}
			}
		}
	}

	rep := Report{
		Streets: make(map[string][]Finding, len(streets)),
		Zips:    findings(zips, rules.Zip),
		States:  findings(states, rules.State),
	}
	for tok, names := range streets {
		rep.Streets[tok] = findings(names, rules.Street)
	}
	return rep, nil
}

func findings(values map[string]bool, cleaner func(string) string) []Finding {
	out := make([]Finding, 0, len(values))
	for v := range values {
		out = append(out, Finding{Value: v, Cleaned: cleaner(v)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}
