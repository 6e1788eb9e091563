package app

import (
	"context"
	"sync"
	"time"

	"github.com/joacominatel/theseus/internal/database"
	"go.uber.org/zap"
)

// SchemaTree represents the loaded schema hierarchy for the explorer.
type SchemaTree struct {
	Database string
	Schemas  []SchemaNode
}

// SchemaNode holds a schema name with its tables and views.
type SchemaNode struct {
	Name   string
	Tables []string
	Views  []string
}

// Service drives a dialect and one of its connections on behalf of the
// CLI and the explorer. It is safe for concurrent use: calls that touch the
// connection run one at a time.
type Service struct {
	dialect database.Dialect
	logger  *zap.Logger

	mu    sync.Mutex
	conn  database.Conn
	label string
}

// NewService creates a new application service.
func NewService(dialect database.Dialect, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{dialect: dialect, logger: logger}
}

// Connect opens a connection to url, replacing any open one. label names
// the connection in the explorer.
func (s *Service) Connect(ctx context.Context, label, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, err := s.dialect.Open(ctx, url)
	if err != nil {
		return &ErrConnection{Cause: err}
	}
	if err := s.dialect.OnConnect(ctx, conn); err != nil {
		_ = conn.Close()
		return &ErrConnection{Cause: err}
	}

	if err := s.disconnect(); err != nil {
		s.logger.Warn("closing previous connection", zap.Error(err))
	}
	s.conn = conn
	s.label = label
	s.logger.Debug("service connected", zap.String("label", label), zap.String("conn_id", conn.ID()))
	return nil
}

// Connected reports whether a connection is open.
func (s *Service) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected()
}

func (s *Service) connected() bool {
	return s.conn != nil && !s.conn.Closed()
}

// Disconnect closes the connection, if any.
func (s *Service) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disconnect()
}

func (s *Service) disconnect() error {
	if s.conn == nil {
		return nil
	}
	conn := s.conn
	s.conn = nil
	return conn.Close()
}

// LoadSchemaTree fetches schemas and their tables for the connected database.
func (s *Service) LoadSchemaTree(ctx context.Context) (*SchemaTree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected() {
		return nil, ErrNotConnected
	}

	schemas, err := s.dialect.GetSchemaNames(ctx, s.conn)
	if err != nil {
		return nil, err
	}

	tree := &SchemaTree{
		Database: s.label,
	}

	for _, schema := range schemas {
		tables, err := s.dialect.GetTableNames(ctx, s.conn, schema)
		if err != nil {
			return nil, err
		}
		views, err := s.dialect.GetViewNames(ctx, s.conn, schema)
		if err != nil {
			return nil, err
		}
		tree.Schemas = append(tree.Schemas, SchemaNode{
			Name:   schema,
			Tables: tables,
			Views:  views,
		})
	}

	return tree, nil
}

// SchemaNames lists the schemas of the connected database.
func (s *Service) SchemaNames(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected() {
		return nil, ErrNotConnected
	}
	return s.dialect.GetSchemaNames(ctx, s.conn)
}

// TableNames lists the tables of a schema.
func (s *Service) TableNames(ctx context.Context, schema string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected() {
		return nil, ErrNotConnected
	}
	return s.dialect.GetTableNames(ctx, s.conn, schema)
}

// ViewNames lists the views of a schema.
func (s *Service) ViewNames(ctx context.Context, schema string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected() {
		return nil, ErrNotConnected
	}
	return s.dialect.GetViewNames(ctx, s.conn, schema)
}

// LoadColumns fetches column metadata for a specific table.
func (s *Service) LoadColumns(ctx context.Context, schema, table string) ([]database.Column, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected() {
		return nil, ErrNotConnected
	}
	return s.dialect.GetColumns(ctx, s.conn, table, schema)
}

// HasTable reports whether a table exists.
func (s *Service) HasTable(ctx context.Context, schema, table string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected() {
		return false, ErrNotConnected
	}
	return s.dialect.HasTable(ctx, s.conn, table, schema)
}

// ExecuteQuery runs a SQL query and returns the results.
func (s *Service) ExecuteQuery(ctx context.Context, query string) (*database.QueryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected() {
		return nil, ErrNotConnected
	}

	start := time.Now()
	result, err := s.runQuery(ctx, query)
	if err != nil {
		return nil, &ErrQuery{Query: query, Cause: err}
	}
	result.Duration = time.Since(start)
	return result, nil
}

func (s *Service) runQuery(ctx context.Context, query string) (*database.QueryResult, error) {
	cur, err := s.conn.Cursor()
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	if err := cur.Execute(ctx, query, nil); err != nil {
		return nil, err
	}

	rows, err := cur.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	result := &database.QueryResult{
		Columns: cur.Columns(),
		Rows:    make([][]string, len(rows)),
	}
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = FormatValue(v)
		}
		result.Rows[i] = cells
	}

	result.RowCount = len(rows)
	if len(result.Columns) == 0 && cur.RowCount() >= 0 {
		result.RowCount = int(cur.RowCount())
	}
	return result, nil
}

// Register exposes data as a table named name.
func (s *Service) Register(ctx context.Context, name string, data any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected() {
		return ErrNotConnected
	}
	if err := s.conn.Execute(ctx, "register", []any{name, data}); err != nil {
		return &ErrQuery{Query: "register " + name, Cause: err}
	}
	return nil
}

// Commit commits pending work. A commit with nothing to commit succeeds.
func (s *Service) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected() {
		return ErrNotConnected
	}
	if err := s.conn.Execute(ctx, "commit", nil); err != nil {
		return &ErrQuery{Query: "commit", Cause: err}
	}
	return nil
}

// Notices returns the diagnostic notices of the current connection.
func (s *Service) Notices() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	return s.conn.Notices()
}

// DatabaseName returns the label of the current connection.
func (s *Service) DatabaseName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.label
}

// DialectName returns the name of the dialect in use.
func (s *Service) DialectName() string {
	return s.dialect.Name()
}
