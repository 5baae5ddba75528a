package mssql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/provanalytics/provsync/internal/table"
)

// DefaultBatchSize is the number of rows inserted per transaction when the
// caller does not specify one.
const DefaultBatchSize = 50000

// InsertBatch writes tbl into target in batches. Each batch runs in its own
// transaction with a prepared single-row INSERT; progress is logged per
// batch. Returns the number of rows inserted before any failure.
func (c *Client) InsertBatch(ctx context.Context, target string, tbl *table.Table, batchSize int) (int64, error) {
	if len(tbl.Columns) == 0 {
		return 0, fmt.Errorf("table has no columns")
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	cols := make([]string, len(tbl.Columns))
	placeholders := make([]string, len(tbl.Columns))
	for i, col := range tbl.Columns {
		cols[i] = QuoteIdent(col)
		placeholders[i] = fmt.Sprintf("@p%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		target, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	c.logger.Info("starting batch insert", "table", target, "rows", tbl.Len(), "batch_size", batchSize)
	start := time.Now()

	var inserted int64
	for offset := 0; offset < len(tbl.Rows); offset += batchSize {
		end := offset + batchSize
		if end > len(tbl.Rows) {
			end = len(tbl.Rows)
		}

		if err := c.insertChunk(ctx, query, tbl.Rows[offset:end]); err != nil {
			return inserted, fmt.Errorf("batch starting at row %d failed: %w", offset, err)
		}

		inserted += int64(end - offset)
		c.logger.Info("batch inserted", "rows", end-offset, "total", inserted, "of", tbl.Len())
	}

	c.logger.Info("insert complete", "table", target, "rows", inserted,
		"elapsed", time.Since(start).Round(time.Millisecond).String())
	return inserted, nil
}

func (c *Client) insertChunk(ctx context.Context, query string, rows [][]string) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}

	for _, row := range rows {
		args := make([]any, len(row))
		for i, cell := range row {
			args[i] = cell
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return fmt.Errorf("insert failed: %w", err)
		}
	}

	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
