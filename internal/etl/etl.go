// Package etl implements the data movement jobs: syncing a SharePoint
// CSV into a SQL Server table, exporting provider rows to an XLSX
// report, and bulk-loading dropped CSV files.
package etl

import (
	"context"
	"log/slog"

	"github.com/provanalytics/provsync/internal/table"
)

// SQL is the database surface the jobs need. *mssql.Client satisfies it.
type SQL interface {
	Query(ctx context.Context, query string) (*table.Table, error)
	Exec(ctx context.Context, query string, args map[string]any) (int64, error)
	BackupTable(ctx context.Context, source, backup string) error
	ClearTable(ctx context.Context, name string) (int64, error)
	InsertBatch(ctx context.Context, target string, tbl *table.Table, batchSize int) (int64, error)
}

// Files is the document library surface the jobs need. *sharepoint.Client
// satisfies it.
type Files interface {
	Download(ctx context.Context, serverRelPath string) ([]byte, error)
	Upload(ctx context.Context, folder, name string, content []byte) error
}

func ensureLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
