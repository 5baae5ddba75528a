package commands

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/provanalytics/provsync/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *table.Table {
	return &table.Table{
		Columns: []string{"US Domain ID", "Associate Name"},
		Rows: [][]string{
			{"AB1", "Jane"},
			{"AB2", "John, Jr."},
		},
	}
}

func TestRenderCSV(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, renderResults(&out, sampleTable(), "csv"))
	assert.Equal(t, "US Domain ID,Associate Name\nAB1,Jane\nAB2,\"John, Jr.\"\n", out.String())
}

func TestRenderJSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, renderResults(&out, sampleTable(), "json"))

	var rows []map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "AB1", rows[0]["US Domain ID"])
	assert.Equal(t, "John, Jr.", rows[1]["Associate Name"])
}

func TestRenderMarkdown(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, renderResults(&out, sampleTable(), "md"))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "| US Domain ID | Associate Name |", lines[0])
	assert.Equal(t, "| --- | --- |", lines[1])
	assert.Equal(t, "| AB1 | Jane |", lines[2])
}

func TestRenderTable(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, renderResults(&out, sampleTable(), "table"))
	assert.Contains(t, out.String(), "US DOMAIN ID")
	assert.Contains(t, out.String(), "Jane")
	assert.Contains(t, out.String(), "(2 rows)")
}

func TestRenderEmptyTable(t *testing.T) {
	var out bytes.Buffer
	tbl := &table.Table{Columns: []string{"A"}}
	require.NoError(t, renderResults(&out, tbl, "table"))
	assert.Equal(t, "(0 rows)\n", out.String())
}

func TestIsReadStatement(t *testing.T) {
	assert.True(t, isReadStatement("SELECT * FROM t"))
	assert.True(t, isReadStatement("  with cte as (select 1) select * from cte"))
	assert.True(t, isReadStatement("EXEC sp_who"))
	assert.False(t, isReadStatement("UPDATE t SET a = 1"))
	assert.False(t, isReadStatement("DELETE FROM t"))
	assert.False(t, isReadStatement(""))
}
