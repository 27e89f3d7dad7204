package shape

import (
	"strings"

	"github.com/sells-group/osmprep/internal/osm"
)

// problemChars are the characters that disqualify a tag key.
const problemChars = "=+/&<>;'\"?%#$@,. \t\r\n"

// RegularType is the tag type given to keys without a colon.
const RegularType = "regular"

// TagRow is one row of nodes_tags or ways_tags.
type TagRow struct {
	ID    string
	Key   string
	Value string
	Type  string
}

// Row returns the tag in column order.
func (t TagRow) Row() Row {
	return Row{t.ID, t.Key, t.Value, t.Type}
}

// HasProblemChars reports whether key contains a disqualifying character.
func HasProblemChars(key string) bool {
	return strings.ContainsAny(key, problemChars)
}

// SplitKey splits a tag key on its first colon into type and key. Keys
// without a colon get the regular type.
func SplitKey(raw string) (typ, key string) {
	if before, after, ok := strings.Cut(raw, ":"); ok {
		return before, after
	}
	return RegularType, raw
}

// Tag classifies one descriptive tag of the element with the given id. It
// reports false when the key contains problem characters and the tag must be
// dropped.
func (s Shaper) Tag(id string, tag osm.Tag) (TagRow, bool) {
	if HasProblemChars(tag.Key) {
		return TagRow{}, false
	}

	typ, key := SplitKey(tag.Key)
	return TagRow{
		ID:    id,
		Key:   key,
		Value: s.Rules.Apply(tag.Key, tag.Value),
		Type:  typ,
	}, true
}
