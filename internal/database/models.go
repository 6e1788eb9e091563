package database

import "time"

// LogicalType is the normalized type category a column is reflected as,
// independent of how the transport encodes it on the wire.
type LogicalType string

const (
	TypeString   LogicalType = "string"
	TypeInteger  LogicalType = "integer"
	TypeBigInt   LogicalType = "bigint"
	TypeFloat    LogicalType = "float"
	TypeNumeric  LogicalType = "numeric"
	TypeDateTime LogicalType = "datetime"
	TypeBoolean  LogicalType = "boolean"
)

// Column represents a reflected table column.
type Column struct {
	Name       string
	Type       LogicalType
	RawType    string
	Nullable   bool
	Default    *string
	OrdinalPos int
}

// PrimaryKeyConstraint describes a reflected primary key.
type PrimaryKeyConstraint struct {
	Name    string
	Columns []string
}

// ForeignKeyConstraint describes a reflected foreign key.
type ForeignKeyConstraint struct {
	Name            string
	Columns         []string
	ReferredSchema  string
	ReferredTable   string
	ReferredColumns []string
}

// CheckConstraint describes a reflected check constraint.
type CheckConstraint struct {
	Name    string
	SQLText string
}

// Index describes a reflected index.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// Features lists the static capabilities a dialect advertises to callers.
type Features struct {
	StatementCache     bool
	Comments           bool
	SaneRowCount       bool
	ServerSideCursors  bool
	PostfetchLastRowID bool
}

// ServerVersion is a major/minor server version pair.
type ServerVersion struct {
	Major int
	Minor int
}

// QueryResult holds the result of a SQL query execution.
type QueryResult struct {
	Columns  []string
	Rows     [][]string
	RowCount int
	Duration time.Duration
}
