// Package osm streams node and way elements out of an OpenStreetMap XML export.
package osm

// Kind identifies the element types consumed from the export.
type Kind string

const (
	// Node is a single coordinate-tagged point.
	Node Kind = "node"
	// Way is an ordered path referencing nodes.
	Way Kind = "way"
)

// ParseKind maps an XML element name to a Kind.
func ParseKind(name string) (Kind, bool) {
	switch Kind(name) {
	case Node, Way:
		return Kind(name), true
	default:
		return "", false
	}
}

// Tag is a descriptive <tag k="..." v="..."/> child.
type Tag struct {
	Key   string
	Value string
}

// Element is one node or way with its attributes and children in document order.
type Element struct {
	Kind  Kind
	Attrs map[string]string
	Tags  []Tag
	// Refs holds <nd ref="..."/> node ids; ways only.
	Refs []string
}

// ID returns the element's id attribute, or "" when absent.
func (e Element) ID() string {
	return e.Attrs["id"]
}
