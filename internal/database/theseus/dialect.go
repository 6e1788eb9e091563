// Package theseus adapts the Flight SQL transport to the database dialect
// contract: connection option translation, schema introspection and a
// connection facade with explicit capabilities.
package theseus

import (
	"context"
	"fmt"

	"github.com/joacominatel/theseus/internal/database"
	"github.com/joacominatel/theseus/internal/transport"
	"go.uber.org/zap"
)

const (
	DialectName = "theseus"
	DriverName  = "flight_sql_adbc"
)

// Fixed version reported to callers; the transport does not expose one.
var serverVersion = database.ServerVersion{Major: 8, Minor: 0}

// Dialect implements database.Dialect over a transport.Connector.
type Dialect struct {
	connector transport.Connector
	logger    *zap.Logger
	warn      database.WarningHandler
}

var _ database.Dialect = (*Dialect)(nil)

// New creates a dialect. Capability warnings are logged through logger
// until SetWarningHandler replaces the handler.
func New(connector transport.Connector, logger *zap.Logger) *Dialect {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dialect{
		connector: connector,
		logger:    logger,
		warn:      database.LogWarnings(logger),
	}
}

// SetWarningHandler replaces the capability warning handler.
func (d *Dialect) SetWarningHandler(h database.WarningHandler) {
	d.warn = h
}

func (d *Dialect) Name() string   { return DialectName }
func (d *Dialect) Driver() string { return DriverName }

// Features reports the statement capabilities of the transport. None of
// them are available.
func (d *Dialect) Features() database.Features {
	return database.Features{}
}

// CreateConnectArgs derives transport options from a descriptor.
func (d *Dialect) CreateConnectArgs(desc Descriptor) ConnectOptions {
	return CreateConnectArgs(desc)
}

// Open parses a connection URL and connects.
func (d *Dialect) Open(ctx context.Context, url string) (database.Conn, error) {
	desc, err := ParseURL(url)
	if err != nil {
		return nil, err
	}
	return d.Connect(ctx, CreateConnectArgs(desc))
}

// Connect opens a transport connection and wraps it in a facade.
func (d *Dialect) Connect(ctx context.Context, opts ConnectOptions) (*Conn, error) {
	raw, err := d.connector.Connect(ctx, opts.URI, opts.DatabaseOptions, opts.CallOptions)
	if err != nil {
		return nil, &database.ConnectionError{Host: opts.Host, Port: opts.Port, Cause: err}
	}

	conn := newConn(raw, d.logger)
	d.logger.Debug("connected",
		zap.String("conn_id", conn.ID()),
		zap.String("uri", opts.URI),
		zap.Bool("tls", opts.UseEncryption),
		zap.Bool("skip_verify", opts.DisableCertificateVerification),
	)
	return conn, nil
}

// OnConnect is called by the caller once per new connection. Nothing needs
// initializing.
func (d *Dialect) OnConnect(context.Context, database.Conn) error {
	return nil
}

func (d *Dialect) ServerVersion(context.Context, database.Conn) (database.ServerVersion, error) {
	return serverVersion, nil
}

func (d *Dialect) DefaultIsolationLevel(context.Context, database.Conn) (string, error) {
	return "", database.NewUnsupportedOperationError("default isolation level", "the transport has no transactions", nil)
}

// GetSchemaNames returns the schema names of the last catalog in the
// hierarchy. Earlier catalogs are discarded.
func (d *Dialect) GetSchemaNames(ctx context.Context, conn database.Conn) ([]string, error) {
	hierarchy, err := conn.GetObjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("get objects: %w", err)
	}

	names := []string{}
	for _, catalog := range hierarchy {
		names = make([]string, 0, len(catalog.Schemas))
		for _, schema := range catalog.Schemas {
			names = append(names, schema.Name)
		}
	}

	if len(hierarchy) > 1 {
		d.logger.Warn("multiple catalogs found, listing schemas of the last one only",
			zap.Int("catalogs", len(hierarchy)),
			zap.String("catalog", hierarchy[len(hierarchy)-1].Name),
		)
	}
	return names, nil
}

// GetTableNames returns the tables of the first schema named schema, or of
// the default schema when schema is empty.
func (d *Dialect) GetTableNames(ctx context.Context, conn database.Conn, schema string) ([]string, error) {
	hierarchy, err := conn.GetObjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("get objects: %w", err)
	}

	target := database.SchemaOrDefault(schema)
	for _, catalog := range hierarchy {
		for _, s := range catalog.Schemas {
			if s.Name == target {
				return s.TableNames(), nil
			}
		}
	}
	return []string{}, nil
}

// GetColumns returns the columns of a table in ordinal order.
func (d *Dialect) GetColumns(ctx context.Context, conn database.Conn, table, schema string) ([]database.Column, error) {
	rows, err := query(ctx, conn, queryGetColumns, database.SchemaOrDefault(schema), table)
	if err != nil {
		return nil, fmt.Errorf("get columns: %w", err)
	}

	columns := make([]database.Column, 0, len(rows))
	for i, row := range rows {
		col, err := decodeColumn(row)
		if err != nil {
			return nil, err
		}
		col.OrdinalPos = i + 1
		columns = append(columns, col)
	}
	return columns, nil
}

func decodeColumn(row []any) (database.Column, error) {
	if len(row) < 4 {
		return database.Column{}, fmt.Errorf("get columns: expected 4 values per row, got %d", len(row))
	}

	dataType := asString(row[1])
	t, err := logicalType(dataType)
	if err != nil {
		return database.Column{}, err
	}

	col := database.Column{
		Name:     asString(row[0]),
		Type:     t,
		RawType:  dataType,
		Nullable: row[2] == "YES",
	}
	if row[3] != nil {
		def := asString(row[3])
		col.Default = &def
	}
	return col, nil
}

// GetViewNames returns the views of a schema.
func (d *Dialect) GetViewNames(ctx context.Context, conn database.Conn, schema string) ([]string, error) {
	rows, err := query(ctx, conn, queryGetViewNames, database.SchemaOrDefault(schema))
	if err != nil {
		return nil, fmt.Errorf("get view names: %w", err)
	}

	views := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) > 0 {
			views = append(views, asString(row[0]))
		}
	}
	return views, nil
}

// HasTable reports whether schema contains table.
func (d *Dialect) HasTable(ctx context.Context, conn database.Conn, table, schema string) (bool, error) {
	rows, err := query(ctx, conn, queryHasTable, database.SchemaOrDefault(schema), table)
	if err != nil {
		return false, fmt.Errorf("has table: %w", err)
	}
	return len(rows) > 0, nil
}

func (d *Dialect) GetPrimaryKeyConstraint(context.Context, database.Conn, string, string) (*database.PrimaryKeyConstraint, error) {
	d.reflectionWarning(database.CapabilityPrimaryKey)
	return nil, nil
}

func (d *Dialect) GetForeignKeys(context.Context, database.Conn, string, string) ([]database.ForeignKeyConstraint, error) {
	d.reflectionWarning(database.CapabilityForeignKey)
	return []database.ForeignKeyConstraint{}, nil
}

func (d *Dialect) GetCheckConstraints(context.Context, database.Conn, string, string) ([]database.CheckConstraint, error) {
	d.reflectionWarning(database.CapabilityCheckConstraint)
	return []database.CheckConstraint{}, nil
}

func (d *Dialect) GetIndexes(context.Context, database.Conn, string, string) ([]database.Index, error) {
	d.reflectionWarning(database.CapabilityIndexes)
	return []database.Index{}, nil
}

// Transaction control is a no-op: the transport commits every statement.

func (d *Dialect) DoBegin(context.Context, database.Conn) error {
	d.transactionWarning(database.CapabilityBegin)
	return nil
}

func (d *Dialect) DoCommit(context.Context, database.Conn) error {
	d.transactionWarning(database.CapabilityCommit)
	return nil
}

func (d *Dialect) DoRollback(context.Context, database.Conn) error {
	d.transactionWarning(database.CapabilityRollback)
	return nil
}

func (d *Dialect) reflectionWarning(construct string) {
	d.warn(database.CapabilityWarning{Dialect: DialectName, Construct: construct, Reflection: true})
}

func (d *Dialect) transactionWarning(construct string) {
	d.warn(database.CapabilityWarning{Dialect: DialectName, Construct: construct})
}

// query runs statement on a cursor scoped to this call and reads every row.
func query(ctx context.Context, conn database.Conn, statement string, params ...any) ([][]any, error) {
	cur, err := conn.Cursor()
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	if err := cur.Execute(ctx, statement, params); err != nil {
		return nil, err
	}
	return cur.FetchAll(ctx)
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprint(v)
	}
}
