package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/joacominatel/theseus/internal/database"
	"github.com/joacominatel/theseus/internal/database/theseus"
	"github.com/joacominatel/theseus/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubCursor answers every query with the rows registered for it.
type stubCursor struct {
	conn    *stubConnection
	rows    [][]any
	columns []string
	count   int64
}

func (c *stubCursor) Execute(_ context.Context, query string, _ []any) error {
	c.conn.queries = append(c.conn.queries, query)
	if err, ok := c.conn.failures[query]; ok {
		return err
	}
	res := c.conn.results[query]
	c.rows, c.columns, c.count = res.rows, res.columns, res.count
	return nil
}

func (c *stubCursor) ExecuteMany(context.Context, string, [][]any) error { return nil }
func (c *stubCursor) FetchOne(context.Context) ([]any, error)             { return nil, nil }
func (c *stubCursor) FetchMany(context.Context, int) ([][]any, error)     { return nil, nil }

func (c *stubCursor) FetchAll(context.Context) ([][]any, error) {
	return c.rows, nil
}

func (c *stubCursor) Columns() []string { return c.columns }
func (c *stubCursor) RowCount() int64   { return c.count }

func (c *stubCursor) Close() error {
	c.conn.open--
	return nil
}

type stubResult struct {
	columns []string
	rows    [][]any
	count   int64
}

type stubConnection struct {
	hierarchy transport.Hierarchy
	results   map[string]stubResult
	failures  map[string]error
	commitErr error

	queries    []string
	registered []string
	open       int
	closed     bool
}

func (c *stubConnection) Cursor() (transport.Cursor, error) {
	c.open++
	return &stubCursor{conn: c, count: -1}, nil
}

func (c *stubConnection) Commit(context.Context) error { return c.commitErr }

func (c *stubConnection) Register(_ context.Context, name string, _ any) error {
	c.registered = append(c.registered, name)
	return nil
}

func (c *stubConnection) GetObjects(context.Context) (transport.Hierarchy, error) {
	return c.hierarchy, nil
}

func (c *stubConnection) FetchMany(context.Context, int) ([][]any, error) { return nil, nil }

func (c *stubConnection) Close() error {
	c.closed = true
	return nil
}

type stubConnector struct {
	conn *stubConnection
	err  error
}

func (c stubConnector) Connect(context.Context, string, map[string]string, map[string]string) (transport.Connection, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.conn, nil
}

func connectedService(t *testing.T, raw *stubConnection) *Service {
	t.Helper()
	svc := NewService(theseus.New(stubConnector{conn: raw}, zap.NewNop()), nil)
	require.NoError(t, svc.Connect(context.Background(), "test", "theseus://localhost:32010"))
	return svc
}

func TestService_NotConnected(t *testing.T) {
	svc := NewService(theseus.New(stubConnector{}, nil), nil)
	ctx := context.Background()

	_, err := svc.LoadSchemaTree(ctx)
	assert.ErrorIs(t, err, ErrNotConnected)
	_, err = svc.ExecuteQuery(ctx, "SELECT 1")
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.ErrorIs(t, svc.Register(ctx, "t", nil), ErrNotConnected)
	assert.NoError(t, svc.Disconnect())
	assert.Nil(t, svc.Notices())
}

func TestService_ConnectFailure(t *testing.T) {
	cause := errors.New("refused")
	svc := NewService(theseus.New(stubConnector{err: cause}, nil), nil)

	err := svc.Connect(context.Background(), "test", "theseus://localhost:32010")

	var connErr *ErrConnection
	require.ErrorAs(t, err, &connErr)
	assert.ErrorIs(t, err, database.ErrConnectionFailed)
	assert.ErrorIs(t, err, cause)
	assert.False(t, svc.Connected())
}

func TestService_LoadSchemaTree(t *testing.T) {
	raw := &stubConnection{
		hierarchy: transport.Hierarchy{
			{Name: "memory", Schemas: []transport.Schema{
				{Name: "main", Tables: []transport.Table{{Name: "x"}}},
				{Name: "session", Tables: []transport.Table{{Name: "a"}, {Name: "b"}}},
			}},
		},
		// Every view query answers with the same rows.
		results: map[string]stubResult{
			"SELECT table_name FROM information_schema.tables WHERE table_type = 'VIEW' AND table_schema = ? ORDER BY 1": {
				columns: []string{"table_name"},
				rows:    [][]any{{"v"}},
			},
		},
	}
	svc := connectedService(t, raw)

	tree, err := svc.LoadSchemaTree(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &SchemaTree{
		Database: "test",
		Schemas: []SchemaNode{
			{Name: "main", Tables: []string{"x"}, Views: []string{"v"}},
			{Name: "session", Tables: []string{"a", "b"}, Views: []string{"v"}},
		},
	}, tree)
	assert.Zero(t, raw.open)
}

func TestService_ExecuteQuery(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	raw := &stubConnection{results: map[string]stubResult{
		"SELECT * FROM people": {
			columns: []string{"id", "name", "born"},
			rows: [][]any{
				{int64(1), "ada", day},
				{int64(2), nil, nil},
			},
		},
		"DELETE FROM people": {count: 2},
	}}
	svc := connectedService(t, raw)
	ctx := context.Background()

	res, err := svc.ExecuteQuery(ctx, "SELECT * FROM people")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "born"}, res.Columns)
	assert.Equal(t, [][]string{{"1", "ada", "2024-03-01"}, {"2", "NULL", "NULL"}}, res.Rows)
	assert.Equal(t, 2, res.RowCount)

	res, err = svc.ExecuteQuery(ctx, "DELETE FROM people")
	require.NoError(t, err)
	assert.Empty(t, res.Columns)
	assert.Equal(t, 2, res.RowCount)

	assert.Zero(t, raw.open)
}

func TestService_ExecuteQueryError(t *testing.T) {
	failure := &transport.RuntimeError{Message: "Parser Error: syntax error"}
	raw := &stubConnection{failures: map[string]error{"SELEC 1": failure}}
	svc := connectedService(t, raw)

	_, err := svc.ExecuteQuery(context.Background(), "SELEC 1")

	var qErr *ErrQuery
	require.ErrorAs(t, err, &qErr)
	assert.Equal(t, "SELEC 1", qErr.Query)
	assert.ErrorIs(t, err, failure)
	assert.Zero(t, raw.open)
}

func TestService_RegisterAndCommit(t *testing.T) {
	raw := &stubConnection{commitErr: &transport.RuntimeError{
		Message: "TransactionContext Error: cannot commit - no transaction is active",
	}}
	svc := connectedService(t, raw)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "people", struct{}{}))
	assert.Equal(t, []string{"people"}, raw.registered)

	require.NoError(t, svc.Commit(ctx))
	assert.Len(t, svc.Notices(), 1)
}

func TestService_Disconnect(t *testing.T) {
	raw := &stubConnection{}
	svc := connectedService(t, raw)

	require.NoError(t, svc.Disconnect())
	assert.True(t, raw.closed)
	assert.False(t, svc.Connected())

	_, err := svc.TableNames(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotConnected)
}

// The explorer runs each command on its own goroutine. Run with -race.
func TestService_ConcurrentCalls(t *testing.T) {
	raw := &stubConnection{
		hierarchy: transport.Hierarchy{
			{Name: "memory", Schemas: []transport.Schema{
				{Name: "main", Tables: []transport.Table{{Name: "people"}}},
			}},
		},
		results: map[string]stubResult{
			"SELECT 1": {columns: []string{"1"}, rows: [][]any{{int64(1)}}},
		},
	}
	svc := connectedService(t, raw)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(4)
		go func() {
			defer wg.Done()
			_, err := svc.ExecuteQuery(ctx, "SELECT 1")
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := svc.LoadSchemaTree(ctx)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := svc.LoadColumns(ctx, "main", "people")
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.Commit(ctx))
			_ = svc.Notices()
			_ = svc.DatabaseName()
		}()
	}
	wg.Wait()

	assert.Zero(t, raw.open)
	require.NoError(t, svc.Disconnect())
	assert.True(t, raw.closed)
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{in: nil, want: "NULL"},
		{in: "x", want: "x"},
		{in: []byte{0xde, 0xad}, want: `\xdead`},
		{in: true, want: "true"},
		{in: int64(-3), want: "-3"},
		{in: uint64(7), want: "7"},
		{in: 1.5, want: "1.5"},
		{in: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), want: "2024-01-02"},
		{in: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), want: "2024-01-02T03:04:05Z"},
		{in: "123.45", want: "123.45"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.in))
	}
}
