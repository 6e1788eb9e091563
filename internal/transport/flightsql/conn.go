package flightsql

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/apache/arrow-adbc/go/adbc"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/joacominatel/theseus/internal/transport"
	"go.uber.org/zap"
)

// conn implements transport.Connection over an ADBC connection. mu guards
// the handle and the cursor bookkeeping; the ADBC calls themselves are left
// to the caller to serialize.
type conn struct {
	alloc  memory.Allocator
	db     adbc.Database
	logger *zap.Logger

	mu      sync.Mutex
	cnxn    adbc.Connection
	cursors map[*cursor]struct{}
	// current is the most recently executed cursor that is still open;
	// connection-level fetches read from it.
	current *cursor
}

// Cursor opens a new cursor backed by its own ADBC statement.
func (c *conn) Cursor() (transport.Cursor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cnxn == nil {
		return nil, errClosed
	}
	cur := &cursor{
		conn:      c,
		rowCount:  -1,
		arraySize: defaultArraySize,
	}
	c.cursors[cur] = struct{}{}
	return cur, nil
}

func (c *conn) Commit(ctx context.Context) error {
	cnxn := c.handle()
	if cnxn == nil {
		return errClosed
	}
	return fromADBC(cnxn.Commit(ctx))
}

// Register bulk-ingests data into a new table called name. data must be an
// arrow.Record or an array.RecordReader.
func (c *conn) Register(ctx context.Context, name string, data any) error {
	cnxn := c.handle()
	if cnxn == nil {
		return errClosed
	}

	stmt, err := cnxn.NewStatement()
	if err != nil {
		return fromADBC(err)
	}
	defer stmt.Close()

	if err := stmt.SetOption(adbc.OptionKeyIngestTargetTable, name); err != nil {
		return fromADBC(err)
	}
	if err := stmt.SetOption(adbc.OptionKeyIngestMode, adbc.OptionValueIngestModeCreate); err != nil {
		return fromADBC(err)
	}

	switch d := data.(type) {
	case arrow.Record:
		err = stmt.Bind(ctx, d)
	case array.RecordReader:
		err = stmt.BindStream(ctx, d)
	default:
		return fmt.Errorf("register %s: unsupported data object %T", name, data)
	}
	if err != nil {
		return fromADBC(err)
	}

	n, err := stmt.ExecuteUpdate(ctx)
	if err != nil {
		return fromADBC(err)
	}
	c.logger.Debug("registered table", zap.String("table", name), zap.Int64("rows", n))
	return nil
}

// GetObjects reads the catalog hierarchy down to table depth.
func (c *conn) GetObjects(ctx context.Context) (transport.Hierarchy, error) {
	cnxn := c.handle()
	if cnxn == nil {
		return nil, errClosed
	}

	rdr, err := cnxn.GetObjects(ctx, adbc.ObjectDepthTables, nil, nil, nil, nil, nil)
	if err != nil {
		return nil, fromADBC(err)
	}
	defer rdr.Release()

	var hierarchy transport.Hierarchy
	for rdr.Next() {
		catalogs, err := decodeObjects(rdr.Record())
		if err != nil {
			return nil, err
		}
		hierarchy = append(hierarchy, catalogs...)
	}
	if err := rdr.Err(); err != nil {
		return nil, fromADBC(err)
	}
	return hierarchy, nil
}

// FetchMany reads from the most recently executed cursor that is still open.
// Once that cursor is closed there is nothing to read until another cursor
// executes a query.
func (c *conn) FetchMany(ctx context.Context, n int) ([][]any, error) {
	c.mu.Lock()
	closed, current := c.cnxn == nil, c.current
	c.mu.Unlock()

	if closed {
		return nil, errClosed
	}
	if current == nil {
		return nil, errNoResultSet
	}
	return current.FetchMany(ctx, n)
}

// Close closes open cursors, the connection and the database handle.
func (c *conn) Close() error {
	c.mu.Lock()
	cnxn := c.cnxn
	if cnxn == nil {
		c.mu.Unlock()
		return errClosed
	}
	c.cnxn = nil
	open := make([]*cursor, 0, len(c.cursors))
	for cur := range c.cursors {
		open = append(open, cur)
	}
	c.mu.Unlock()

	var errs []error
	for _, cur := range open {
		errs = append(errs, cur.Close())
	}
	errs = append(errs, fromADBC(cnxn.Close()))
	closeDatabase(c.db)
	return errors.Join(errs...)
}

// handle returns the ADBC connection, or nil once closed.
func (c *conn) handle() adbc.Connection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cnxn
}

func (c *conn) setCurrent(cur *cursor) {
	c.mu.Lock()
	c.current = cur
	c.mu.Unlock()
}

func (c *conn) forget(cur *cursor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cursors, cur)
	if c.current == cur {
		c.current = nil
	}
}

var errClosed = &transport.RuntimeError{Message: "Connection Error: connection already closed"}
