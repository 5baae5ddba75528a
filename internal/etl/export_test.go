package etl

import (
	"context"
	"testing"
	"time"

	"github.com/provanalytics/provsync/internal/config"
	"github.com/provanalytics/provsync/internal/table"
	"github.com/provanalytics/provsync/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportConfig() config.ExportConfig {
	return config.ExportConfig{
		TinsPath:     "/sites/a/Shared Documents/tins.csv",
		ReportFolder: "/sites/a/Reports",
		SourceTable:  "dbo.provider_info",
		TinColumn:    "PROVIDERTIN",
	}
}

func newExportJob(t *testing.T, sql *fakeSQL, files *fakeFiles) *ExportJob {
	t.Helper()
	job := NewExportJob(exportConfig(), sql, files, testutil.NewTestLogger(t))
	job.Now = func() time.Time { return time.Date(2024, 4, 15, 10, 0, 0, 0, time.UTC) }
	return job
}

func TestExportRun(t *testing.T) {
	files := &fakeFiles{downloads: map[string][]byte{
		"/sites/a/Shared Documents/tins.csv": []byte(
			"PROVIDERTIN\n12-3456789\n12-3456789\n98'7654321\n\n"),
	}}
	sql := &fakeSQL{queryResult: &table.Table{
		Columns: []string{"PROVIDERTIN", "Provider Name"},
		Rows:    [][]string{{"12-3456789", "Acme Health"}},
	}}

	job := newExportJob(t, sql, files)
	require.NoError(t, job.Run(context.Background()))

	// Duplicates collapse, blanks drop, and the quote is stripped before
	// the value reaches SQL.
	require.Len(t, sql.queryCalls, 1)
	assert.Equal(t,
		"SELECT * FROM dbo.provider_info WHERE [PROVIDERTIN] IN ('12-3456789', '987654321')",
		sql.queryCalls[0])

	require.Len(t, files.uploads, 1)
	up := files.uploads[0]
	assert.Equal(t, "/sites/a/Reports", up.folder)
	assert.Equal(t, "20240415_OH_tins_pir.xlsx", up.name)

	report, err := table.ReadXLSX(up.content, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"PROVIDERTIN", "Provider Name"}, report.Columns)
	assert.Equal(t, [][]string{{"12-3456789", "Acme Health"}}, report.Rows)
}

func TestExportSkipsUploadWhenNoRowsMatch(t *testing.T) {
	files := &fakeFiles{downloads: map[string][]byte{
		"/sites/a/Shared Documents/tins.csv": []byte("PROVIDERTIN\n123456789\n"),
	}}
	sql := &fakeSQL{queryResult: &table.Table{Columns: []string{"PROVIDERTIN"}}}

	job := newExportJob(t, sql, files)
	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, files.uploads)
}

func TestExportEmptyTinList(t *testing.T) {
	files := &fakeFiles{downloads: map[string][]byte{
		"/sites/a/Shared Documents/tins.csv": []byte("PROVIDERTIN\n"),
	}}
	sql := &fakeSQL{}

	job := newExportJob(t, sql, files)
	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, sql.queryCalls)
	assert.Empty(t, files.uploads)
}

func TestExportMissingTinColumn(t *testing.T) {
	files := &fakeFiles{downloads: map[string][]byte{
		"/sites/a/Shared Documents/tins.csv": []byte("TaxID\n123456789\n"),
	}}

	job := newExportJob(t, &fakeSQL{}, files)
	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROVIDERTIN")
}

func TestSanitizeTIN(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"12-3456789", "12-3456789"},
		{" 123456789 ", "123456789"},
		{"12'); DROP TABLE x;--", "12DROPTABLEx--"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeTIN(tt.in), tt.in)
	}
}
