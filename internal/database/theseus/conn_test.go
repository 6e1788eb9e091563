package theseus

import (
	"context"
	"errors"
	"testing"

	"github.com/joacominatel/theseus/internal/database"
	"github.com/joacominatel/theseus/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConn_ExecuteCommit(t *testing.T) {
	for _, stmt := range []string{"commit", "COMMIT", "Commit"} {
		t.Run(stmt, func(t *testing.T) {
			raw := &fakeConnection{}
			conn := newConn(raw, zap.NewNop())

			require.NoError(t, conn.Execute(context.Background(), stmt, nil))
			assert.Equal(t, 1, raw.commits)
			assert.Empty(t, raw.cursors)
		})
	}
}

func TestConn_ExecuteCommitWithoutTransaction(t *testing.T) {
	raw := &fakeConnection{commitErr: &transport.RuntimeError{
		Message: "TransactionContext Error: cannot commit - no transaction is active",
		Code:    "InvalidState",
	}}
	conn := newConn(raw, zap.NewNop())

	require.NoError(t, conn.Execute(context.Background(), "COMMIT", nil))
	assert.Equal(t, []string{"TransactionContext Error: cannot commit - no transaction is active"}, conn.Notices())
}

func TestConn_ExecuteCommitFailure(t *testing.T) {
	failure := &transport.RuntimeError{Message: "TransactionContext Error: commit failed"}
	raw := &fakeConnection{commitErr: failure}
	conn := newConn(raw, zap.NewNop())

	err := conn.Execute(context.Background(), "commit", nil)
	assert.Same(t, failure, err)
	assert.Empty(t, conn.Notices())
}

func TestConn_ExecuteRegister(t *testing.T) {
	raw := &fakeConnection{}
	conn := newConn(raw, zap.NewNop())
	ctx := context.Background()
	data := struct{ rows int }{rows: 3}

	require.NoError(t, conn.Execute(ctx, "register", []any{"people", data}))
	require.Len(t, raw.registered, 1)
	assert.Equal(t, registration{name: "people", data: data}, raw.registered[0])

	require.NoError(t, conn.Execute(ctx, "REGISTER", []any{"more", data}))
	assert.Len(t, raw.registered, 2)
}

func TestConn_ExecuteRegisterArity(t *testing.T) {
	tests := []struct {
		name   string
		params []any
	}{
		{name: "none", params: nil},
		{name: "one", params: []any{"people"}},
		{name: "three", params: []any{"people", "data", "extra"}},
		{name: "name not a string", params: []any{42, "data"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := &fakeConnection{}
			conn := newConn(raw, zap.NewNop())

			err := conn.Execute(context.Background(), "register", tt.params)

			var argErr *database.InvalidArgumentError
			require.ErrorAs(t, err, &argErr)
			assert.Equal(t, "register", argErr.Operation)
			assert.ErrorIs(t, err, database.ErrInvalidArgument)
			assert.Empty(t, raw.registered)
		})
	}
}

func TestConn_ExecuteStatement(t *testing.T) {
	raw := &fakeConnection{}
	conn := newConn(raw, zap.NewNop())

	require.NoError(t, conn.Execute(context.Background(), "CREATE TABLE t (a INTEGER)", []any{1}))
	require.Len(t, raw.cursors, 1)
	assert.Equal(t, "CREATE TABLE t (a INTEGER)", raw.cursors[0].query)
	assert.Equal(t, []any{1}, raw.cursors[0].params)
	assert.True(t, raw.cursors[0].closed)
	assert.Zero(t, raw.commits)
}

func TestConn_ExecuteErrors(t *testing.T) {
	notImplemented := &transport.RuntimeError{Message: "Not implemented Error: ALTER VIEW", Code: "NotImplemented"}
	other := &transport.RuntimeError{Message: "Catalog Error: table t does not exist"}
	plain := errors.New("plain failure")

	t.Run("not implemented", func(t *testing.T) {
		raw := &fakeConnection{next: func() *fakeCursor { return &fakeCursor{err: notImplemented} }}
		conn := newConn(raw, zap.NewNop())

		err := conn.Execute(context.Background(), "ALTER VIEW v RENAME TO w", nil)

		var unsupported *database.UnsupportedOperationError
		require.ErrorAs(t, err, &unsupported)
		assert.Equal(t, "Not implemented Error: ALTER VIEW", unsupported.Reason)
		assert.ErrorIs(t, err, database.ErrOperationNotSupported)
		assert.ErrorIs(t, err, notImplemented)
		assert.True(t, raw.cursors[0].closed)

		// The connection stays usable.
		raw.next = nil
		assert.NoError(t, conn.Execute(context.Background(), "SELECT 1", nil))
	})

	for name, failure := range map[string]error{"runtime": other, "plain": plain} {
		t.Run(name, func(t *testing.T) {
			raw := &fakeConnection{next: func() *fakeCursor { return &fakeCursor{err: failure} }}
			conn := newConn(raw, zap.NewNop())

			err := conn.Execute(context.Background(), "SELECT * FROM t", nil)
			assert.Same(t, failure, err)
			assert.True(t, raw.cursors[0].closed)
		})
	}
}

func TestConn_ExecuteMany(t *testing.T) {
	raw := &fakeConnection{}
	conn := newConn(raw, zap.NewNop())
	params := [][]any{{1, "a"}, {2, "b"}}

	require.NoError(t, conn.ExecuteMany(context.Background(), "INSERT INTO t VALUES (?, ?)", params))
	require.Len(t, raw.cursors, 1)
	assert.Equal(t, params, raw.cursors[0].paramsList)
	assert.True(t, raw.cursors[0].closed)
}

func TestConn_FetchMany(t *testing.T) {
	raw := &fakeConnection{fetchRows: [][]any{{int64(1)}, {int64(2)}}}
	conn := newConn(raw, zap.NewNop())

	rows, err := conn.FetchMany(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(1)}, {int64(2)}}, rows)
	assert.Equal(t, 2, raw.fetchSize)
}

func TestConn_RowCountOpensNewCursor(t *testing.T) {
	raw := &fakeConnection{}
	conn := newConn(raw, zap.NewNop())
	ctx := context.Background()

	n, err := conn.RowCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, -1, n)

	_, err = conn.RowCount(ctx)
	require.NoError(t, err)

	require.Len(t, raw.cursors, 2)
	assert.NotSame(t, raw.cursors[0], raw.cursors[1])
	assert.True(t, raw.cursors[0].closed)
	assert.True(t, raw.cursors[1].closed)
}

func TestConn_Cursor(t *testing.T) {
	raw := &fakeConnection{}
	conn := newConn(raw, zap.NewNop())

	cur, err := conn.Cursor()
	require.NoError(t, err)
	assert.Same(t, raw.cursors[0], cur)
	assert.False(t, raw.cursors[0].closed)
}

func TestConn_Close(t *testing.T) {
	raw := &fakeConnection{}
	conn := newConn(raw, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, conn.Close())
	assert.True(t, conn.Closed())
	require.NoError(t, conn.Close())
	assert.Equal(t, 1, raw.closes)

	assert.ErrorIs(t, conn.Execute(ctx, "SELECT 1", nil), database.ErrConnectionClosed)
	assert.ErrorIs(t, conn.Execute(ctx, "commit", nil), database.ErrConnectionClosed)
	assert.ErrorIs(t, conn.ExecuteMany(ctx, "SELECT 1", nil), database.ErrConnectionClosed)

	_, err := conn.Cursor()
	assert.ErrorIs(t, err, database.ErrConnectionClosed)
	_, err = conn.FetchMany(ctx, 1)
	assert.ErrorIs(t, err, database.ErrConnectionClosed)
	_, err = conn.RowCount(ctx)
	assert.ErrorIs(t, err, database.ErrConnectionClosed)
	_, err = conn.GetObjects(ctx)
	assert.ErrorIs(t, err, database.ErrConnectionClosed)

	assert.Empty(t, raw.cursors)
	assert.Zero(t, raw.commits)
}

func TestConn_NoticesReturnsCopy(t *testing.T) {
	raw := &fakeConnection{commitErr: &transport.RuntimeError{Message: noActiveTransaction}}
	conn := newConn(raw, zap.NewNop())
	require.NoError(t, conn.Execute(context.Background(), "commit", nil))

	notices := conn.Notices()
	notices[0] = "changed"
	assert.Equal(t, []string{noActiveTransaction}, conn.Notices())
}

func TestConn_Unsupported(t *testing.T) {
	conn := newConn(&fakeConnection{}, zap.NewNop())

	err := conn.Unsupported("savepoint")
	assert.ErrorIs(t, err, database.ErrOperationNotSupported)
	assert.EqualError(t, err, "savepoint is not supported: theseus connections do not expose it")
}
