package theseus

import (
	"context"

	"github.com/joacominatel/theseus/internal/database"
	"github.com/joacominatel/theseus/internal/transport"
)

type fakeCursor struct {
	rows     [][]any
	rowCount int64
	err      error

	query      string
	params     []any
	paramsList [][]any
	closed     bool
}

func (c *fakeCursor) Execute(_ context.Context, query string, params []any) error {
	c.query = query
	c.params = params
	return c.err
}

func (c *fakeCursor) ExecuteMany(_ context.Context, query string, paramsList [][]any) error {
	c.query = query
	c.paramsList = paramsList
	return c.err
}

func (c *fakeCursor) FetchOne(context.Context) ([]any, error) {
	if len(c.rows) == 0 {
		return nil, nil
	}
	row := c.rows[0]
	c.rows = c.rows[1:]
	return row, nil
}

func (c *fakeCursor) FetchMany(_ context.Context, n int) ([][]any, error) {
	n = min(n, len(c.rows))
	rows := c.rows[:n]
	c.rows = c.rows[n:]
	return rows, nil
}

func (c *fakeCursor) FetchAll(context.Context) ([][]any, error) {
	rows := c.rows
	c.rows = nil
	return rows, nil
}

func (c *fakeCursor) Columns() []string { return nil }
func (c *fakeCursor) RowCount() int64   { return c.rowCount }

func (c *fakeCursor) Close() error {
	c.closed = true
	return nil
}

type registration struct {
	name string
	data any
}

type fakeConnection struct {
	// next builds every cursor handed out; a zero cursor is used when nil.
	next      func() *fakeCursor
	hierarchy transport.Hierarchy
	commitErr error
	regErr    error
	fetchRows [][]any

	cursors    []*fakeCursor
	commits    int
	registered []registration
	fetchSize  int
	closes     int
}

func (c *fakeConnection) Cursor() (transport.Cursor, error) {
	cur := &fakeCursor{rowCount: -1}
	if c.next != nil {
		cur = c.next()
	}
	c.cursors = append(c.cursors, cur)
	return cur, nil
}

func (c *fakeConnection) Commit(context.Context) error {
	c.commits++
	return c.commitErr
}

func (c *fakeConnection) Register(_ context.Context, name string, data any) error {
	c.registered = append(c.registered, registration{name: name, data: data})
	return c.regErr
}

func (c *fakeConnection) GetObjects(context.Context) (transport.Hierarchy, error) {
	return c.hierarchy, nil
}

func (c *fakeConnection) FetchMany(_ context.Context, n int) ([][]any, error) {
	c.fetchSize = n
	return c.fetchRows, nil
}

func (c *fakeConnection) Close() error {
	c.closes++
	return nil
}

type fakeConnector struct {
	conn *fakeConnection
	err  error

	uri      string
	dbOpts   map[string]string
	connOpts map[string]string
}

func (c *fakeConnector) Connect(_ context.Context, uri string, dbOpts, connOpts map[string]string) (transport.Connection, error) {
	c.uri, c.dbOpts, c.connOpts = uri, dbOpts, connOpts
	if c.err != nil {
		return nil, c.err
	}
	return c.conn, nil
}

// rowsCursor returns a cursor factory yielding rows on every cursor.
func rowsCursor(rows ...[]any) func() *fakeCursor {
	return func() *fakeCursor {
		return &fakeCursor{rows: rows, rowCount: -1}
	}
}

func warningRecorder(d *Dialect) *[]string {
	var got []string
	d.SetWarningHandler(func(w database.CapabilityWarning) {
		got = append(got, w.String())
	})
	return &got
}
