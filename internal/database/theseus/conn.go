package theseus

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/joacominatel/theseus/internal/database"
	"github.com/joacominatel/theseus/internal/transport"
	"go.uber.org/zap"
)

// Statements the facade handles itself instead of sending to the server.
const (
	statementCommit   = "commit"
	statementRegister = "register"
)

// Conn wraps one raw transport connection. It is not safe for concurrent
// use.
type Conn struct {
	id      string
	raw     transport.Connection
	logger  *zap.Logger
	notices []string
	closed  bool
}

var _ database.Conn = (*Conn)(nil)

func newConn(raw transport.Connection, logger *zap.Logger) *Conn {
	id := uuid.NewString()
	return &Conn{
		id:     id,
		raw:    raw,
		logger: logger.With(zap.String("conn_id", id)),
	}
}

func (c *Conn) ID() string { return c.id }

// Closed reports whether Close has been called.
func (c *Conn) Closed() bool { return c.closed }

// Notices returns a copy of the diagnostic notices collected so far.
func (c *Conn) Notices() []string {
	return slices.Clone(c.notices)
}

// Execute runs statement for its side effects. "commit" and "register"
// (any case) are routed to the matching connection primitive; register
// takes exactly two parameters, a table name and a data object.
func (c *Conn) Execute(ctx context.Context, statement string, params []any) error {
	if c.closed {
		return database.ErrConnectionClosed
	}

	var err error
	switch {
	case strings.EqualFold(statement, statementCommit):
		err = c.raw.Commit(ctx)
	case strings.EqualFold(statement, statementRegister):
		if len(params) != 2 {
			return &database.InvalidArgumentError{
				Operation: statementRegister,
				Reason:    fmt.Sprintf("expected 2 parameters (name, data), got %d", len(params)),
			}
		}
		name, ok := params[0].(string)
		if !ok {
			return &database.InvalidArgumentError{
				Operation: statementRegister,
				Reason:    fmt.Sprintf("table name must be a string, got %T", params[0]),
			}
		}
		err = c.raw.Register(ctx, name, params[1])
	default:
		err = c.withCursor(func(cur transport.Cursor) error {
			return cur.Execute(ctx, statement, params)
		})
	}
	return c.translate("execute", err)
}

// ExecuteMany runs statement once per parameter set.
func (c *Conn) ExecuteMany(ctx context.Context, statement string, paramsList [][]any) error {
	if c.closed {
		return database.ErrConnectionClosed
	}
	err := c.withCursor(func(cur transport.Cursor) error {
		return cur.ExecuteMany(ctx, statement, paramsList)
	})
	return c.translate("execute many", err)
}

// Cursor returns a raw transport cursor.
func (c *Conn) Cursor() (transport.Cursor, error) {
	if c.closed {
		return nil, database.ErrConnectionClosed
	}
	return c.raw.Cursor()
}

// FetchMany reads up to size rows from the raw connection's default cursor.
// It only sees a cursor that is still open, such as one obtained from
// Cursor and executed by the caller. Execute closes its own cursor before
// returning, so FetchMany after Execute finds no result set.
func (c *Conn) FetchMany(ctx context.Context, size int) ([][]any, error) {
	if c.closed {
		return nil, database.ErrConnectionClosed
	}
	return c.raw.FetchMany(ctx, size)
}

// RowCount opens a new cursor and returns its row count. It does not
// report the count of an earlier Execute.
func (c *Conn) RowCount(context.Context) (int64, error) {
	if c.closed {
		return 0, database.ErrConnectionClosed
	}

	var n int64
	err := c.withCursor(func(cur transport.Cursor) error {
		n = cur.RowCount()
		return nil
	})
	return n, err
}

func (c *Conn) GetObjects(ctx context.Context) (transport.Hierarchy, error) {
	if c.closed {
		return nil, database.ErrConnectionClosed
	}
	return c.raw.GetObjects(ctx)
}

// Close closes the raw connection. Closing twice is a no-op.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.logger.Debug("closing connection")
	return c.raw.Close()
}

// Unsupported returns the error for an operation the connection does not
// expose.
func (c *Conn) Unsupported(operation string) error {
	return database.NewUnsupportedOperationError(operation, DialectName+" connections do not expose it", nil)
}

func (c *Conn) withCursor(fn func(transport.Cursor) error) error {
	cur, err := c.raw.Cursor()
	if err != nil {
		return err
	}
	defer cur.Close()
	return fn(cur)
}

// translate maps the two transport failures the facade recognizes. A
// not-implemented failure becomes UnsupportedOperationError; a commit with
// no active transaction succeeds and leaves a notice.
func (c *Conn) translate(operation string, err error) error {
	var rt *transport.RuntimeError
	if !errors.As(err, &rt) {
		return err
	}

	switch {
	case strings.HasPrefix(rt.Message, notImplementedMarker):
		return database.NewUnsupportedOperationError(operation, rt.Message, err)
	case rt.Message == noActiveTransaction:
		c.notices = append(c.notices, rt.Message)
		c.logger.Debug("ignored commit without transaction")
		return nil
	}
	return err
}
