package etl

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/provanalytics/provsync/internal/config"
	"github.com/provanalytics/provsync/internal/mssql"
	"github.com/provanalytics/provsync/internal/table"
)

// ExportJob reads a TIN list from SharePoint, pulls the matching rows
// from the source table, and uploads the result as a dated XLSX report.
type ExportJob struct {
	cfg    config.ExportConfig
	sql    SQL
	files  Files
	logger *slog.Logger

	// Now is replaceable in tests to pin the report date.
	Now func() time.Time
}

func NewExportJob(cfg config.ExportConfig, sql SQL, files Files, logger *slog.Logger) *ExportJob {
	return &ExportJob{cfg: cfg, sql: sql, files: files, logger: ensureLogger(logger), Now: time.Now}
}

func (j *ExportJob) Run(ctx context.Context) error {
	if err := j.cfg.Validate(); err != nil {
		return err
	}
	logger := j.logger.With("job", "export", "run_id", uuid.NewString())

	logger.Info("downloading TIN list", "path", j.cfg.TinsPath)
	data, err := j.files.Download(ctx, j.cfg.TinsPath)
	if err != nil {
		return err
	}

	tins, err := readTINs(data, j.cfg.TinColumn)
	if err != nil {
		return fmt.Errorf("failed to read TIN list %s: %w", j.cfg.TinsPath, err)
	}
	if len(tins) == 0 {
		logger.Warn("TIN list is empty, nothing to export", "path", j.cfg.TinsPath)
		return nil
	}
	logger.Info("loaded TIN list", "tins", len(tins))

	quoted := make([]string, len(tins))
	for i, tin := range tins {
		quoted[i] = mssql.QuoteLiteral(tin)
	}
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s IN (%s)",
		j.cfg.SourceTable, mssql.QuoteIdent(j.cfg.TinColumn), strings.Join(quoted, ", "))

	result, err := j.sql.Query(ctx, query)
	if err != nil {
		return err
	}
	if result.Len() == 0 {
		logger.Warn("no rows matched the TIN list, skipping upload",
			"table", j.cfg.SourceTable, "tins", len(tins))
		return nil
	}

	var buf bytes.Buffer
	if err := result.WriteXLSX(&buf); err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	name := j.reportName()
	if err := j.files.Upload(ctx, j.cfg.ReportFolder, name, buf.Bytes()); err != nil {
		return err
	}
	logger.Info("export complete", "report", name, "rows", result.Len())
	return nil
}

func (j *ExportJob) reportName() string {
	return j.Now().Format("20060102") + "_OH_tins_pir.xlsx"
}

// readTINs extracts the TIN column from the list file, sanitizing each
// value. Values that sanitize to nothing are dropped, duplicates kept
// once.
func readTINs(data []byte, column string) ([]string, error) {
	tbl, err := table.ReadCSV(bytes.NewReader(data), "")
	if err != nil {
		return nil, err
	}
	raw, err := tbl.Column(column)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(raw))
	tins := make([]string, 0, len(raw))
	for _, v := range raw {
		tin := sanitizeTIN(v)
		if tin == "" || seen[tin] {
			continue
		}
		seen[tin] = true
		tins = append(tins, tin)
	}
	return tins, nil
}

// sanitizeTIN keeps only characters that can appear in a tax
// identification number. Everything else is stripped before the value
// is embedded in SQL.
func sanitizeTIN(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}
