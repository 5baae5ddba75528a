package table

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		encoding  string
		wantCols  []string
		wantRows  [][]string
		expectErr bool
	}{
		{
			name:     "plain utf-8",
			input:    "US Domain ID,Associate Name\nAB123,Jane Roe\nCD456,John Doe\n",
			wantCols: []string{"US Domain ID", "Associate Name"},
			wantRows: [][]string{{"AB123", "Jane Roe"}, {"CD456", "John Doe"}},
		},
		{
			name:     "utf-8 BOM stripped from header",
			input:    "\xef\xbb\xbfID,Name\n1,x\n",
			wantCols: []string{"ID", "Name"},
			wantRows: [][]string{{"1", "x"}},
		},
		{
			name:     "windows-1252 decoded",
			input:    "Name\nJos\xe9\n",
			encoding: "windows-1252",
			wantCols: []string{"Name"},
			wantRows: [][]string{{"José"}},
		},
		{
			name:     "quoted field with comma",
			input:    "ID,Note\n1,\"a, b\"\n",
			wantCols: []string{"ID", "Note"},
			wantRows: [][]string{{"1", "a, b"}},
		},
		{
			name:      "empty input",
			input:     "",
			expectErr: true,
		},
		{
			name:      "unknown encoding",
			input:     "ID\n1\n",
			encoding:  "ebcdic",
			expectErr: true,
		},
		{
			name:      "ragged rows rejected",
			input:     "A,B\n1\n",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := ReadCSV(strings.NewReader(tt.input), tt.encoding)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCols, tbl.Columns)
			assert.Equal(t, tt.wantRows, tbl.Rows)
		})
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	tbl := &Table{
		Columns: []string{"ID", "Note"},
		Rows:    [][]string{{"1", "a, b"}, {"2", `say "hi"`}},
	}

	var buf bytes.Buffer
	require.NoError(t, tbl.WriteCSV(&buf))

	got, err := ReadCSV(&buf, "")
	require.NoError(t, err)
	assert.Equal(t, tbl.Columns, got.Columns)
	assert.Equal(t, tbl.Rows, got.Rows)
}

func TestXLSXRoundTrip(t *testing.T) {
	tbl := &Table{
		Columns: []string{"PROVIDERTIN", "Provider Name", "State"},
		Rows: [][]string{
			{"123456789", "Acme Clinic", "OH"},
			{"987654321", "Best Care", ""},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, tbl.WriteXLSX(&buf))

	got, err := ReadXLSX(buf.Bytes(), "")
	require.NoError(t, err)
	assert.Equal(t, tbl.Columns, got.Columns)
	assert.Equal(t, tbl.Rows, got.Rows)
}

func TestReadXLSXBadSheet(t *testing.T) {
	tbl := &Table{Columns: []string{"A"}, Rows: [][]string{{"1"}}}
	var buf bytes.Buffer
	require.NoError(t, tbl.WriteXLSX(&buf))

	_, err := ReadXLSX(buf.Bytes(), "NoSuchSheet")
	assert.Error(t, err)
}

func TestColumn(t *testing.T) {
	tbl := &Table{
		Columns: []string{"US Domain ID", "Supervisor Name"},
		Rows:    [][]string{{"AB1", "Smith"}, {"AB2", "Jones"}},
	}

	ids, err := tbl.Column("US Domain ID")
	require.NoError(t, err)
	assert.Equal(t, []string{"AB1", "AB2"}, ids)

	_, err = tbl.Column("Associate Name")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "Associate Name" not found`)
}

func TestRowMap(t *testing.T) {
	tbl := &Table{
		Columns: []string{"ID", "Name"},
		Rows:    [][]string{{"1", "Jane"}},
	}
	assert.Equal(t, map[string]string{"ID": "1", "Name": "Jane"}, tbl.RowMap(0))
}

func TestMissingByColumn(t *testing.T) {
	tbl := &Table{
		Columns: []string{"A", "B"},
		Rows:    [][]string{{"x", ""}, {"", " "}, {"y", "z"}},
	}
	missing := tbl.MissingByColumn()
	assert.Equal(t, 1, missing["A"])
	assert.Equal(t, 2, missing["B"])
}
