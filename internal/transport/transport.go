// Package transport defines the boundary to the columnar RPC SQL client the
// dialect is built on. Implementations own the wire: connection setup, TLS,
// authentication and result decoding.
package transport

import (
	"context"
	"fmt"
)

// Connector opens raw transport connections.
type Connector interface {
	// Connect opens a connection to uri. dbOpts configure the database
	// handle (credentials, TLS); connOpts are applied to the opened
	// connection (RPC call headers).
	Connect(ctx context.Context, uri string, dbOpts, connOpts map[string]string) (Connection, error)
}

// Connection is a raw transport connection. It is not safe for concurrent use.
type Connection interface {
	// Cursor opens a new cursor. The caller must close it.
	Cursor() (Cursor, error)

	// Commit commits pending work on the connection.
	Commit(ctx context.Context) error

	// Register exposes data under name so it can be queried as a table.
	Register(ctx context.Context, name string, data any) error

	// GetObjects fetches the catalog, schema and table hierarchy.
	GetObjects(ctx context.Context) (Hierarchy, error)

	// FetchMany reads up to n rows from the connection's default cursor.
	FetchMany(ctx context.Context, n int) ([][]any, error)

	// Close closes the connection and every cursor still open on it.
	Close() error
}

// Cursor executes statements and reads their results.
type Cursor interface {
	Execute(ctx context.Context, query string, params []any) error
	ExecuteMany(ctx context.Context, query string, paramsList [][]any) error

	FetchOne(ctx context.Context) ([]any, error)
	FetchMany(ctx context.Context, n int) ([][]any, error)
	FetchAll(ctx context.Context) ([][]any, error)

	// Columns returns the column names of the current result set.
	Columns() []string

	// RowCount returns the number of rows affected by the last statement,
	// or -1 when unknown.
	RowCount() int64

	Close() error
}

// RuntimeError is a generic failure raised by the transport at run time.
type RuntimeError struct {
	Message string
	Code    string
	Cause   error
}

func (e *RuntimeError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}

func (e *RuntimeError) Unwrap() error {
	return e.Cause
}
