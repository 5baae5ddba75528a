package mssql

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/provanalytics/provsync/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockClient(t *testing.T) (*Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewClient(db, testutil.NewTestLogger(t)), mock
}

func TestQuery(t *testing.T) {
	client, mock := newMockClient(t)

	modified := time.Date(2024, 4, 15, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT * FROM dbo.widgets").WillReturnRows(
		sqlmock.NewRows([]string{"ID", "Name", "Modified"}).
			AddRow(int64(1), []byte("Acme"), modified).
			AddRow(nil, "Best Care", nil))

	tbl, err := client.Query(context.Background(), "SELECT * FROM dbo.widgets")
	require.NoError(t, err)

	assert.Equal(t, []string{"ID", "Name", "Modified"}, tbl.Columns)
	assert.Equal(t, [][]string{
		{"1", "Acme", "2024-04-15 09:30:00"},
		{"", "Best Care", ""},
	}, tbl.Rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryError(t *testing.T) {
	client, mock := newMockClient(t)
	mock.ExpectQuery("SELECT * FROM nope").WillReturnError(assert.AnError)

	_, err := client.Query(context.Background(), "SELECT * FROM nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query failed")
}

func TestExecNamed(t *testing.T) {
	client, mock := newMockClient(t)

	// sqlx rewrites :name parameters to @p1..@pN for the sqlserver driver.
	mock.ExpectExec("UPDATE dbo.provider_supervisor SET [Supervisor Name] = @p1 WHERE [US Domain ID] = @p2").
		WithArgs("Smith", "AB123").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := client.Exec(context.Background(),
		"UPDATE dbo.provider_supervisor SET [Supervisor Name] = :supervisor WHERE [US Domain ID] = :key",
		map[string]any{"supervisor": "Smith", "key": "AB123"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecWithoutArgs(t *testing.T) {
	client, mock := newMockClient(t)
	mock.ExpectExec("DELETE FROM dbo.t").WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := client.Exec(context.Background(), "DELETE FROM dbo.t", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestBackupTable(t *testing.T) {
	client, mock := newMockClient(t)
	mock.ExpectExec("INSERT INTO dbo.t_backup SELECT * FROM dbo.t").
		WillReturnResult(sqlmock.NewResult(0, 42))

	require.NoError(t, client.BackupTable(context.Background(), "dbo.t", "dbo.t_backup"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBackupTableError(t *testing.T) {
	client, mock := newMockClient(t)
	mock.ExpectExec("INSERT INTO dbo.t_backup SELECT * FROM dbo.t").
		WillReturnError(assert.AnError)

	err := client.BackupTable(context.Background(), "dbo.t", "dbo.t_backup")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backup of dbo.t to dbo.t_backup failed")
}

func TestClearTable(t *testing.T) {
	client, mock := newMockClient(t)
	mock.ExpectExec("DELETE FROM dbo.t_backup").WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := client.ClearTable(context.Background(), "dbo.t_backup")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, "[US Domain ID]", QuoteIdent("US Domain ID"))
	assert.Equal(t, "[odd]]name]", QuoteIdent("odd]name"))
}

func TestQuoteLiteral(t *testing.T) {
	assert.Equal(t, "'123456789'", QuoteLiteral("123456789"))
	assert.Equal(t, "'O''Brien'", QuoteLiteral("O'Brien"))
}
