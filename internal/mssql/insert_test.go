package mssql

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/provanalytics/provsync/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertBatch(t *testing.T) {
	client, mock := newMockClient(t)

	tbl := &table.Table{
		Columns: []string{"US Domain ID", "Associate Name"},
		Rows: [][]string{
			{"AB1", "Jane"},
			{"AB2", "John"},
			{"AB3", "Pat"},
		},
	}

	query := "INSERT INTO dbo.oon_monthly ([US Domain ID], [Associate Name]) VALUES (@p1, @p2)"

	// Batch size 2 over 3 rows: two transactions.
	mock.ExpectBegin()
	prep := mock.ExpectPrepare(query)
	prep.ExpectExec().WithArgs("AB1", "Jane").WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs("AB2", "John").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	prep = mock.ExpectPrepare(query)
	prep.ExpectExec().WithArgs("AB3", "Pat").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := client.InsertBatch(context.Background(), "dbo.oon_monthly", tbl, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBatchRollsBackOnFailure(t *testing.T) {
	client, mock := newMockClient(t)

	tbl := &table.Table{
		Columns: []string{"A"},
		Rows:    [][]string{{"1"}, {"2"}},
	}

	query := "INSERT INTO dbo.t ([A]) VALUES (@p1)"
	mock.ExpectBegin()
	prep := mock.ExpectPrepare(query)
	prep.ExpectExec().WithArgs("1").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	n, err := client.InsertBatch(context.Background(), "dbo.t", tbl, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch starting at row 0 failed")
	assert.Equal(t, int64(0), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBatchNoColumns(t *testing.T) {
	client, _ := newMockClient(t)
	_, err := client.InsertBatch(context.Background(), "dbo.t", &table.Table{}, 10)
	assert.Error(t, err)
}
