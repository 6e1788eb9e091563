package flightsql

import (
	"context"

	"github.com/apache/arrow-adbc/go/adbc"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/joacominatel/theseus/internal/transport"
)

// cursor implements transport.Cursor over one ADBC statement. Results are
// streamed from the record reader one record batch at a time.
type cursor struct {
	conn *conn
	stmt adbc.Statement

	reader  array.RecordReader
	columns []string
	rec     arrow.Record
	pos     int

	rowCount  int64
	arraySize int
	closed    bool
}

func (c *cursor) statement() (adbc.Statement, error) {
	if c.closed {
		return nil, errCursorClosed
	}
	cnxn := c.conn.handle()
	if cnxn == nil {
		return nil, errClosed
	}
	if c.stmt == nil {
		stmt, err := cnxn.NewStatement()
		if err != nil {
			return nil, fromADBC(err)
		}
		c.stmt = stmt
	}
	return c.stmt, nil
}

// Execute runs query, binding params positionally when present.
func (c *cursor) Execute(ctx context.Context, query string, params []any) error {
	stmt, err := c.statement()
	if err != nil {
		return err
	}
	c.reset()

	if err := stmt.SetSqlQuery(query); err != nil {
		return fromADBC(err)
	}

	if len(params) > 0 {
		if err := c.bind(ctx, stmt, [][]any{params}); err != nil {
			return err
		}
	}

	rdr, n, err := stmt.ExecuteQuery(ctx)
	if err != nil {
		return fromADBC(err)
	}

	c.reader = rdr
	c.rowCount = n
	c.columns = fieldNames(rdr.Schema())
	c.conn.setCurrent(c)
	return nil
}

// ExecuteMany runs query once per parameter set as a single batch update.
func (c *cursor) ExecuteMany(ctx context.Context, query string, paramsList [][]any) error {
	stmt, err := c.statement()
	if err != nil {
		return err
	}
	c.reset()

	if err := stmt.SetSqlQuery(query); err != nil {
		return fromADBC(err)
	}

	if len(paramsList) > 0 {
		if err := c.bind(ctx, stmt, paramsList); err != nil {
			return err
		}
	}

	n, err := stmt.ExecuteUpdate(ctx)
	if err != nil {
		return fromADBC(err)
	}
	c.rowCount = n
	return nil
}

func (c *cursor) bind(ctx context.Context, stmt adbc.Statement, rows [][]any) error {
	if err := stmt.Prepare(ctx); err != nil {
		return fromADBC(err)
	}

	rec, err := buildParams(c.conn.alloc, rows)
	if err != nil {
		return err
	}
	defer rec.Release()

	return fromADBC(stmt.Bind(ctx, rec))
}

// FetchOne returns the next row, or nil once the result set is exhausted.
func (c *cursor) FetchOne(ctx context.Context) ([]any, error) {
	if c.closed {
		return nil, errCursorClosed
	}
	if c.reader == nil {
		return nil, errNoResultSet
	}

	for c.rec == nil || int64(c.pos) >= c.rec.NumRows() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if c.rec != nil {
			c.rec.Release()
			c.rec = nil
		}
		if !c.reader.Next() {
			return nil, fromADBC(c.reader.Err())
		}
		c.rec = c.reader.Record()
		c.rec.Retain()
		c.pos = 0
	}

	row := recordRow(c.rec, c.pos)
	c.pos++
	return row, nil
}

// FetchMany returns up to n rows; n <= 0 uses the cursor's array size.
func (c *cursor) FetchMany(ctx context.Context, n int) ([][]any, error) {
	if n <= 0 {
		n = c.arraySize
	}
	rows := make([][]any, 0, n)
	for len(rows) < n {
		row, err := c.FetchOne(ctx)
		if err != nil {
			return nil, err
		}
		if row == nil {
			break
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// FetchAll returns every remaining row.
func (c *cursor) FetchAll(ctx context.Context) ([][]any, error) {
	var rows [][]any
	for {
		row, err := c.FetchOne(ctx)
		if err != nil {
			return nil, err
		}
		if row == nil {
			return rows, nil
		}
		rows = append(rows, row)
	}
}

func (c *cursor) Columns() []string {
	return c.columns
}

func (c *cursor) RowCount() int64 {
	return c.rowCount
}

// Close releases the result set and the statement.
func (c *cursor) Close() error {
	if c.closed {
		return nil
	}
	c.reset()
	c.closed = true
	c.conn.forget(c)

	if c.stmt == nil {
		return nil
	}
	err := c.stmt.Close()
	c.stmt = nil
	return fromADBC(err)
}

func (c *cursor) reset() {
	if c.rec != nil {
		c.rec.Release()
		c.rec = nil
	}
	if c.reader != nil {
		c.reader.Release()
		c.reader = nil
	}
	c.columns = nil
	c.pos = 0
	c.rowCount = -1
}

var (
	errCursorClosed = &transport.RuntimeError{Message: "Connection Error: cursor already closed"}
	errNoResultSet  = &transport.RuntimeError{Message: "Invalid Input Error: no open result set"}
)
