package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/microsoft/go-mssqldb" // sqlserver driver
	"github.com/provanalytics/provsync/internal/config"
	"github.com/provanalytics/provsync/internal/table"
)

// Client executes statements against SQL Server over a resolved connection.
type Client struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// Connect resolves a DSN via the fallback policy and opens the database.
func Connect(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dsn, strategy, err := NewConnector(cfg, logger).Resolve(ctx)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Debug("database client ready", "strategy", string(strategy))
	return &Client{db: db, logger: logger}, nil
}

// NewClient wraps an existing database handle. Used by tests and callers
// that manage their own connections.
func NewClient(db *sql.DB, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{db: sqlx.NewDb(db, "sqlserver"), logger: logger}
}

// Close closes the database connection.
func (c *Client) Close() error {
	return c.db.Close()
}

// Query runs a SELECT and returns the result as an in-memory table with
// every value rendered as a string.
func (c *Client) Query(ctx context.Context, query string) (*table.Table, error) {
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	t := &table.Table{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		cells := make([]string, len(cols))
		for i, v := range values {
			cells[i] = formatCell(v)
		}
		t.Rows = append(t.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	c.logger.Debug("query complete", "rows", t.Len())
	return t, nil
}

// Exec runs a statement with optional named parameters and reports the
// number of rows affected.
func (c *Client) Exec(ctx context.Context, query string, args map[string]any) (int64, error) {
	var res sql.Result
	var err error
	if len(args) > 0 {
		res, err = c.db.NamedExecContext(ctx, query, args)
	} else {
		res, err = c.db.ExecContext(ctx, query)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to execute statement: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		// Not every statement reports a row count; treat as zero.
		return 0, nil
	}
	return n, nil
}

// BackupTable copies every row of source into backup.
func (c *Client) BackupTable(ctx context.Context, source, backup string) error {
	query := fmt.Sprintf("INSERT INTO %s SELECT * FROM %s", backup, source)
	if _, err := c.Exec(ctx, query, nil); err != nil {
		return fmt.Errorf("backup of %s to %s failed: %w", source, backup, err)
	}
	c.logger.Info("table backed up", "source", source, "backup", backup)
	return nil
}

// ClearTable deletes all rows from the named table, returning the number
// removed.
func (c *Client) ClearTable(ctx context.Context, name string) (int64, error) {
	n, err := c.Exec(ctx, "DELETE FROM "+name, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to clear %s: %w", name, err)
	}
	c.logger.Info("table cleared", "table", name, "rows", n)
	return n, nil
}

// QuoteIdent wraps an identifier in brackets, escaping closing brackets.
// Column names in the source reports carry spaces ("US Domain ID").
func QuoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// QuoteLiteral renders a string as a SQL literal with quotes doubled.
func QuoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// formatCell renders a scanned value as a string cell.
func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprintf("%v", val)
	}
}
