// Package flightsql binds the transport boundary to the ADBC Flight SQL
// driver.
package flightsql

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/apache/arrow-adbc/go/adbc"
	driver "github.com/apache/arrow-adbc/go/adbc/driver/flightsql"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/joacominatel/theseus/internal/transport"
	"go.uber.org/zap"
)

// Option keys understood by the Flight SQL driver.
const (
	OptionTLSSkipVerify       = driver.OptionSSLSkipVerify
	OptionRPCCallHeaderPrefix = "adbc.flight.sql.rpc.call_header."
	OptionKeyUsername         = adbc.OptionKeyUsername
	OptionKeyPassword         = adbc.OptionKeyPassword
	OptionKeyDatabase         = "database"

	defaultArraySize = 1
)

// Connector opens Flight SQL connections through ADBC.
type Connector struct {
	alloc  memory.Allocator
	logger *zap.Logger
}

// NewConnector creates a connector using the Go allocator.
func NewConnector(logger *zap.Logger) *Connector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Connector{
		alloc:  memory.NewGoAllocator(),
		logger: logger,
	}
}

// Connect opens a database handle for uri and a connection on it, then
// applies connOpts to the connection.
func (c *Connector) Connect(ctx context.Context, uri string, dbOpts, connOpts map[string]string) (transport.Connection, error) {
	opts := make(map[string]string, len(dbOpts)+1)
	maps.Copy(opts, dbOpts)
	opts[adbc.OptionKeyURI] = uri

	db, err := driver.NewDriver(c.alloc).NewDatabase(opts)
	if err != nil {
		return nil, fromADBC(err)
	}

	cnxn, err := db.Open(ctx)
	if err != nil {
		closeDatabase(db)
		return nil, fromADBC(err)
	}

	if err := applyOptions(cnxn, connOpts); err != nil {
		_ = cnxn.Close()
		closeDatabase(db)
		return nil, err
	}

	c.logger.Debug("flight sql connection opened",
		zap.String("uri", uri),
		zap.Int("call_options", len(connOpts)),
	)

	return &conn{
		alloc:   c.alloc,
		db:      db,
		cnxn:    cnxn,
		cursors: make(map[*cursor]struct{}),
		logger:  c.logger,
	}, nil
}

func applyOptions(cnxn adbc.Connection, connOpts map[string]string) error {
	if len(connOpts) == 0 {
		return nil
	}

	setter, ok := cnxn.(adbc.PostInitOptions)
	if !ok {
		return &transport.RuntimeError{Message: "connection does not accept options"}
	}

	for _, key := range slices.Sorted(maps.Keys(connOpts)) {
		if err := setter.SetOption(key, connOpts[key]); err != nil {
			return fromADBC(fmt.Errorf("set option %s: %w", key, err))
		}
	}
	return nil
}

func closeDatabase(db adbc.Database) {
	if closer, ok := db.(io.Closer); ok {
		_ = closer.Close()
	}
}
