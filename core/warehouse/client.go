package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Conn defines the interface for analytical store operations.
type Conn interface {
	// Select scans all result rows into dest, a pointer to a slice of structs.
	Select(ctx context.Context, dest any, query string, args ...any) error
	// QueryRow runs a query expected to return a single row.
	QueryRow(ctx context.Context, query string, args ...any) Row
	// Exec runs a statement that returns no rows (DDL, mutations).
	Exec(ctx context.Context, query string, args ...any) error
	// PrepareBatch opens a batched columnar insert.
	PrepareBatch(ctx context.Context, query string) (Batch, error)
	// Ping verifies the connection.
	Ping(ctx context.Context) error
	// Close closes the connection.
	Close() error
}

// Row is a single scannable result row.
type Row interface {
	Scan(dest ...any) error
}

// Batch is a columnar insert in progress. Appended rows are buffered
// client-side and written in one round trip by Send.
type Batch interface {
	Append(v ...any) error
	Send() error
}

// NewConn creates a new ClickHouse connection based on the configuration.
func NewConn(cfg Config) (Conn, error) {
	dialTimeout := cfg.DialTimeoutSeconds
	if dialTimeout <= 0 {
		dialTimeout = 5
	}
	maxExecution := cfg.MaxExecutionSeconds
	if maxExecution <= 0 {
		maxExecution = 60
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": maxExecution,
		},
		DialTimeout: time.Duration(dialTimeout) * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create clickhouse connection: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return &chConnWrapper{conn: conn}, nil
}

type chConnWrapper struct {
	conn driver.Conn
}

func (c *chConnWrapper) Select(ctx context.Context, dest any, query string, args ...any) error {
	return c.conn.Select(ctx, dest, query, args...)
}

func (c *chConnWrapper) QueryRow(ctx context.Context, query string, args ...any) Row {
	return c.conn.QueryRow(ctx, query, args...)
}

func (c *chConnWrapper) Exec(ctx context.Context, query string, args ...any) error {
	return c.conn.Exec(ctx, query, args...)
}

func (c *chConnWrapper) PrepareBatch(ctx context.Context, query string) (Batch, error) {
	batch, err := c.conn.PrepareBatch(ctx, query)
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (c *chConnWrapper) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

func (c *chConnWrapper) Close() error {
	return c.conn.Close()
}
