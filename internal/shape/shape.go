// Package shape turns OSM elements into rows of the nodes, nodes_tags, ways,
// ways_nodes, and ways_tags tables.
package shape

import (
	"fmt"
	"strconv"

	"github.com/sells-group/osmprep/internal/clean"
	"github.com/sells-group/osmprep/internal/osm"
)

// Row is one output row with values in its table's column order.
type Row []string

// MemberRow is one row of ways_nodes.
type MemberRow struct {
	ID       string
	NodeID   string
	Position int
}

// Row returns the member in column order.
func (m MemberRow) Row() Row {
	return Row{m.ID, m.NodeID, strconv.Itoa(m.Position)}
}

// Set is the shaped output of one element. Element is the nodes or ways row;
// Members is only populated for ways.
type Set struct {
	Kind    osm.Kind
	Element Row
	Members []MemberRow
	Tags    []TagRow
	// Dropped counts tags rejected for problem characters.
	Dropped int
}

// Empty reports whether the set carries no rows.
func (s Set) Empty() bool {
	return s.Kind == ""
}

// Batch is a group of rows bound for one table.
type Batch struct {
	Table Table
	Rows  []Row
}

// Batches returns the set's rows grouped by table, in write order.
func (s Set) Batches() []Batch {
	tags := make([]Row, len(s.Tags))
	for i, t := range s.Tags {
		tags[i] = t.Row()
	}

	switch s.Kind {
	case osm.Node:
		return []Batch{
			{Table: Nodes, Rows: []Row{s.Element}},
			{Table: NodeTags, Rows: tags},
		}
	case osm.Way:
		members := make([]Row, len(s.Members))
		for i, m := range s.Members {
			members[i] = m.Row()
		}
		return []Batch{
			{Table: Ways, Rows: []Row{s.Element}},
			{Table: WayNodes, Rows: members},
			{Table: WayTags, Rows: tags},
		}
	default:
		return nil
	}
}

// MissingAttrError reports an element lacking one of its table's columns.
type MissingAttrError struct {
	Kind      osm.Kind
	ElementID string
	Field     string
}

func (e *MissingAttrError) Error() string {
	return fmt.Sprintf("shape: %s %s: missing attribute %q", e.Kind, e.ElementID, e.Field)
}

// Shaper converts elements to row sets using a fixed set of cleaning rules.
type Shaper struct {
	Rules clean.Rules
}

// New returns a Shaper using rules.
func New(rules clean.Rules) Shaper {
	return Shaper{Rules: rules}
}

// Shape converts one element. Elements of other kinds yield an empty Set.
func (s Shaper) Shape(el osm.Element) (Set, error) {
	var table Table
	switch el.Kind {
	case osm.Node:
		table = Nodes
	case osm.Way:
		table = Ways
	default:
		return Set{}, nil
	}

	row, err := attrRow(el, table)
	if err != nil {
		return Set{}, err
	}

	id := el.ID()
	set := Set{Kind: el.Kind, Element: row}

	for _, t := range el.Tags {
		tr, ok := s.Tag(id, t)
		if !ok {
			set.Dropped++
			continue
		}
		set.Tags = append(set.Tags, tr)
	}

	if el.Kind == osm.Way && len(el.Refs) > 0 {
		set.Members = make([]MemberRow, len(el.Refs))
		for i, ref := range el.Refs {
			set.Members[i] = MemberRow{ID: id, NodeID: ref, Position: i}
		}
	}

	return set, nil
}

func attrRow(el osm.Element, table Table) (Row, error) {
	row := make(Row, len(table.Columns))
	for i, c := range table.Columns {
		v, ok := el.Attrs[c.Name]
		if !ok {
			id, hasID := el.Attrs["id"]
			if !hasID {
				id = "?"
			}
			return nil, &MissingAttrError{Kind: el.Kind, ElementID: id, Field: c.Name}
		}
		row[i] = v
	}
	return row, nil
}
