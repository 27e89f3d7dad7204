package shape

// ColumnKind is the declared value type of an output column.
type ColumnKind int

const (
	// Text columns accept any string.
	Text ColumnKind = iota
	// Integer columns hold a base-10 int64.
	Integer
	// Float columns hold a float64.
	Float
)

func (k ColumnKind) String() string {
	switch k {
	case Integer:
		return "integer"
	case Float:
		return "float"
	default:
		return "text"
	}
}

// Column describes one output column.
type Column struct {
	Name string
	Kind ColumnKind
}

// Table describes an output table. Column order is fixed and must match the
// SQL table definition.
type Table struct {
	Name    string
	Columns []Column
}

// ColumnNames returns the column names in order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// The output tables, in the order they are written for each element.
var (
	Nodes = Table{
		Name: "nodes",
		Columns: []Column{
			{"id", Integer}, {"lat", Float}, {"lon", Float}, {"user", Text},
			{"uid", Integer}, {"version", Text}, {"changeset", Integer}, {"timestamp", Text},
		},
	}
	NodeTags = Table{
		Name:    "nodes_tags",
		Columns: []Column{{"id", Integer}, {"key", Text}, {"value", Text}, {"type", Text}},
	}
	Ways = Table{
		Name: "ways",
		Columns: []Column{
			{"id", Integer}, {"user", Text}, {"uid", Integer},
			{"version", Text}, {"changeset", Integer}, {"timestamp", Text},
		},
	}
	WayNodes = Table{
		Name:    "ways_nodes",
		Columns: []Column{{"id", Integer}, {"node_id", Integer}, {"position", Integer}},
	}
	WayTags = Table{
		Name:    "ways_tags",
		Columns: []Column{{"id", Integer}, {"key", Text}, {"value", Text}, {"type", Text}},
	}
)

// Tables lists every output table.
var Tables = []Table{Nodes, NodeTags, Ways, WayNodes, WayTags}
