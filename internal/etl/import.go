package etl

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/provanalytics/provsync/internal/config"
	"github.com/provanalytics/provsync/internal/table"
)

// ImportJob bulk-loads the newest CSV from a local drop folder into a
// SQL Server table.
type ImportJob struct {
	cfg    config.ImportConfig
	sql    SQL
	logger *slog.Logger
}

func NewImportJob(cfg config.ImportConfig, sql SQL, logger *slog.Logger) *ImportJob {
	return &ImportJob{cfg: cfg, sql: sql, logger: ensureLogger(logger)}
}

func (j *ImportJob) Run(ctx context.Context) error {
	if err := j.cfg.Validate(); err != nil {
		return err
	}
	logger := j.logger.With("job", "import", "run_id", uuid.NewString())

	path, err := table.LatestFile(j.cfg.Folder, j.cfg.Pattern)
	if err != nil {
		return err
	}
	logger.Info("selected newest drop file", "path", path)

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	tbl, err := table.ReadCSV(f, j.cfg.Encoding)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	missing := tbl.MissingByColumn()
	for _, col := range tbl.Columns {
		if n := missing[col]; n > 0 {
			logger.Warn("column has missing values", "column", col, "missing", n)
		}
	}
	logger.Info("parsed drop file", "rows", tbl.Len(), "columns", len(tbl.Columns))

	n, err := j.sql.InsertBatch(ctx, j.cfg.Table, tbl, j.cfg.BatchSize)
	if err != nil {
		return err
	}
	logger.Info("import complete", "table", j.cfg.Table, "rows", n)
	return nil
}
