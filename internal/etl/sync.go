package etl

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/provanalytics/provsync/internal/config"
	"github.com/provanalytics/provsync/internal/mssql"
	"github.com/provanalytics/provsync/internal/table"
)

// SyncJob mirrors a SharePoint CSV into a SQL Server table. Existing
// rows are updated by key, new rows inserted, and rows absent from the
// CSV deleted. When a backup table is configured it is refreshed from
// the target before any change is made.
type SyncJob struct {
	cfg    config.SyncConfig
	sql    SQL
	files  Files
	logger *slog.Logger
}

func NewSyncJob(cfg config.SyncConfig, sql SQL, files Files, logger *slog.Logger) *SyncJob {
	return &SyncJob{cfg: cfg, sql: sql, files: files, logger: ensureLogger(logger)}
}

func (j *SyncJob) Run(ctx context.Context) error {
	if err := j.cfg.Validate(); err != nil {
		return err
	}
	logger := j.logger.With("job", "sync", "run_id", uuid.NewString())

	logger.Info("downloading source file", "path", j.cfg.FilePath)
	data, err := j.files.Download(ctx, j.cfg.FilePath)
	if err != nil {
		return err
	}

	tbl, err := table.ReadCSV(bytes.NewReader(data), "")
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", j.cfg.FilePath, err)
	}
	logger.Info("parsed source file", "rows", tbl.Len(), "columns", len(tbl.Columns))

	keys, err := tbl.Column(j.cfg.KeyColumn)
	if err != nil {
		return err
	}
	cols := j.cfg.ColumnList()
	for _, col := range cols {
		if _, err := tbl.Column(col); err != nil {
			return err
		}
	}

	if j.cfg.BackupTable != "" {
		cleared, err := j.sql.ClearTable(ctx, j.cfg.BackupTable)
		if err != nil {
			return err
		}
		if err := j.sql.BackupTable(ctx, j.cfg.Table, j.cfg.BackupTable); err != nil {
			return err
		}
		logger.Info("refreshed backup table", "table", j.cfg.BackupTable, "replaced", cleared)
	}

	updated, inserted, err := j.upsertRows(ctx, tbl, cols, logger)
	if err != nil {
		return err
	}

	deleted, err := j.deleteMissing(ctx, keys, logger)
	if err != nil {
		return err
	}

	logger.Info("sync complete",
		"table", j.cfg.Table, "updated", updated, "inserted", inserted, "deleted", deleted)
	return nil
}

// upsertRows updates each CSV row by key, inserting when the key is not
// yet present.
func (j *SyncJob) upsertRows(ctx context.Context, tbl *table.Table, cols []string, logger *slog.Logger) (updated, inserted int64, err error) {
	update, insert := j.upsertQueries(cols)

	keyIdx := -1
	colIdx := make([]int, len(cols))
	for i, name := range tbl.Columns {
		if name == j.cfg.KeyColumn {
			keyIdx = i
		}
		for ci, col := range cols {
			if name == col {
				colIdx[ci] = i
			}
		}
	}
	if keyIdx < 0 {
		return 0, 0, fmt.Errorf("key column %q not found", j.cfg.KeyColumn)
	}

	for _, row := range tbl.Rows {
		args := map[string]any{"key": row[keyIdx]}
		for ci := range cols {
			args[fmt.Sprintf("v%d", ci)] = row[colIdx[ci]]
		}

		n, err := j.sql.Exec(ctx, update, args)
		if err != nil {
			return updated, inserted, fmt.Errorf("update of key %q failed: %w", row[keyIdx], err)
		}
		if n > 0 {
			logger.Debug("row updated", "key", row[keyIdx])
			updated += n
			continue
		}
		if _, err := j.sql.Exec(ctx, insert, args); err != nil {
			return updated, inserted, fmt.Errorf("insert of key %q failed: %w", row[keyIdx], err)
		}
		logger.Debug("row inserted", "key", row[keyIdx])
		inserted++
	}
	return updated, inserted, nil
}

func (j *SyncJob) upsertQueries(cols []string) (update, insert string) {
	sets := make([]string, len(cols))
	names := make([]string, 0, len(cols)+1)
	values := make([]string, 0, len(cols)+1)
	names = append(names, mssql.QuoteIdent(j.cfg.KeyColumn))
	values = append(values, ":key")
	for i, col := range cols {
		sets[i] = fmt.Sprintf("%s = :v%d", mssql.QuoteIdent(col), i)
		names = append(names, mssql.QuoteIdent(col))
		values = append(values, fmt.Sprintf(":v%d", i))
	}

	update = fmt.Sprintf("UPDATE %s SET %s WHERE %s = :key",
		j.cfg.Table, strings.Join(sets, ", "), mssql.QuoteIdent(j.cfg.KeyColumn))
	insert = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		j.cfg.Table, strings.Join(names, ", "), strings.Join(values, ", "))
	return update, insert
}

// deleteMissing removes rows whose key no longer appears in the source.
// An empty source is treated as a bad extract rather than a request to
// empty the table.
func (j *SyncJob) deleteMissing(ctx context.Context, keys []string, logger *slog.Logger) (int64, error) {
	if len(keys) == 0 {
		logger.Warn("source file has no rows, skipping delete phase", "table", j.cfg.Table)
		return 0, nil
	}

	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = mssql.QuoteLiteral(k)
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s NOT IN (%s)",
		j.cfg.Table, mssql.QuoteIdent(j.cfg.KeyColumn), strings.Join(quoted, ", "))

	return j.sql.Exec(ctx, query, nil)
}
