package transport

// Hierarchy is the catalog → schema → table object tree reported by the
// transport, in the order the transport returned it.
type Hierarchy []Catalog

// Catalog is one catalog of the hierarchy.
type Catalog struct {
	Name    string
	Schemas []Schema
}

// Schema is one database schema inside a catalog.
type Schema struct {
	Name   string
	Tables []Table
}

// Table is a table or view inside a schema.
type Table struct {
	Name string
	Type string
}

// TableNames returns the table names of s in order.
func (s Schema) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for _, t := range s.Tables {
		names = append(names, t.Name)
	}
	return names
}
