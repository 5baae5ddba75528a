package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestINIParserUnmarshal(t *testing.T) {
	raw := []byte(`
verbose = true

[Database]
Server = sqlprod01
driver_conn = server=legacy;database=x
`)

	m, err := iniParser{}.Unmarshal(raw)
	require.NoError(t, err)

	assert.Equal(t, "true", m["verbose"], "default-section keys land at top level")

	db, ok := m["database"].(map[string]interface{})
	require.True(t, ok, "section names are lowercased")
	assert.Equal(t, "sqlprod01", db["server"])
	assert.Equal(t, "server=legacy;database=x", db["driver_conn"])
}

func TestINIParserUnmarshalInvalid(t *testing.T) {
	_, err := iniParser{}.Unmarshal([]byte("[unclosed\nkey = value"))
	assert.Error(t, err)
}

func TestINIParserRoundTrip(t *testing.T) {
	in := map[string]interface{}{
		"output": "json",
		"database": map[string]interface{}{
			"server": "sqlprod01",
		},
	}

	raw, err := iniParser{}.Marshal(in)
	require.NoError(t, err)

	out, err := iniParser{}.Unmarshal(raw)
	require.NoError(t, err)
	assert.Equal(t, "json", out["output"])
	db := out["database"].(map[string]interface{})
	assert.Equal(t, "sqlprod01", db["server"])
}
