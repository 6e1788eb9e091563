package database

import (
	"context"

	"github.com/joacominatel/theseus/internal/transport"
)

// DefaultSchema is the schema name used whenever a caller passes none.
const DefaultSchema = "session"

// Conn is the explicit set of operations a dialect connection offers.
// Anything not listed here is unsupported rather than forwarded.
// Implementations are not safe for concurrent use; callers check a
// connection out, use it and return it.
type Conn interface {
	// ID identifies the connection in logs.
	ID() string

	// Execute runs a statement for its side effects.
	Execute(ctx context.Context, statement string, params []any) error

	// ExecuteMany runs a statement once per parameter set.
	ExecuteMany(ctx context.Context, statement string, paramsList [][]any) error

	// Cursor opens a raw transport cursor. The caller must close it.
	Cursor() (transport.Cursor, error)

	// FetchMany reads rows from the connection's default cursor.
	FetchMany(ctx context.Context, size int) ([][]any, error)

	// RowCount reports the row count of a freshly opened cursor.
	RowCount(ctx context.Context) (int64, error)

	// GetObjects fetches the catalog → schema → table hierarchy.
	GetObjects(ctx context.Context) (transport.Hierarchy, error)

	// Notices returns diagnostic notices collected so far.
	Notices() []string

	Closed() bool
	Close() error
}

// Dialect adapts a transport to the client's connect, execute and
// reflection contract.
type Dialect interface {
	Name() string
	Driver() string
	Features() Features

	// Open parses a connection URL and connects.
	Open(ctx context.Context, url string) (Conn, error)
	OnConnect(ctx context.Context, conn Conn) error
	ServerVersion(ctx context.Context, conn Conn) (ServerVersion, error)
	DefaultIsolationLevel(ctx context.Context, conn Conn) (string, error)

	DoBegin(ctx context.Context, conn Conn) error
	DoCommit(ctx context.Context, conn Conn) error
	DoRollback(ctx context.Context, conn Conn) error

	GetSchemaNames(ctx context.Context, conn Conn) ([]string, error)
	GetTableNames(ctx context.Context, conn Conn, schema string) ([]string, error)
	GetViewNames(ctx context.Context, conn Conn, schema string) ([]string, error)
	GetColumns(ctx context.Context, conn Conn, table, schema string) ([]Column, error)
	HasTable(ctx context.Context, conn Conn, table, schema string) (bool, error)

	GetPrimaryKeyConstraint(ctx context.Context, conn Conn, table, schema string) (*PrimaryKeyConstraint, error)
	GetForeignKeys(ctx context.Context, conn Conn, table, schema string) ([]ForeignKeyConstraint, error)
	GetCheckConstraints(ctx context.Context, conn Conn, table, schema string) ([]CheckConstraint, error)
	GetIndexes(ctx context.Context, conn Conn, table, schema string) ([]Index, error)
}

// SchemaOrDefault returns schema, or DefaultSchema when it is empty.
func SchemaOrDefault(schema string) string {
	if schema == "" {
		return DefaultSchema
	}
	return schema
}
