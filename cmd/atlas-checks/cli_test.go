package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const poolAtlas = `{"type":"FeatureCollection","features":[
{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[0,0],[0.00001,0],[0.00001,0.00001],[0,0.00001],[0,0]]]},
 "properties":{"itemType":"Area","identifier":1000000,"leisure":"swimming_pool","iso_country_code":"USA"}}
]}`

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute(), buf.String())
	return buf.String()
}

func TestRunStatsDiffUpload(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "USA", "part"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "USA", "part", "pool.geojson"), []byte(poolAtlas), 0o644))
	out := filepath.Join(t.TempDir(), "flags")

	got := execute(t, "run", "--atlas", root, "--countries", "usa", "--out", out, "--geojson")
	assert.Contains(t, got, "USA:")
	assert.FileExists(t, filepath.Join(out, "PoolSizeCheck-USA.log"))
	assert.FileExists(t, filepath.Join(out, "PoolSizeCheck-USA.geojson"))

	csv := execute(t, "stats", out, "--csv")
	assert.Contains(t, csv, "check,country,count\n")
	assert.Contains(t, csv, "PoolSizeCheck,USA,1\n")

	assert.Contains(t, execute(t, "diff", out, out), "added=0 removed=0 changed=0")

	db := filepath.Join(t.TempDir(), "flags.db")
	assert.Contains(t, execute(t, "upload-db", "--db", db, "--country", "USA", out), "flags stored")
}

func TestListAndVersion(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "checks.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("PoolSizeCheck:\n  enabled: false\n"), 0o644))
	got := execute(t, "list", "--config", cfg)
	assert.Regexp(t, `PoolSizeCheck\s+disabled`, got)
	assert.Regexp(t, `SpikyBuildingCheck\s+enabled`, got)

	assert.Contains(t, execute(t, "version"), "atlas-checks ")
}

func TestReadRecordsMissing(t *testing.T) {
	_, err := readRecords([]string{filepath.Join(t.TempDir(), "nope.log")})
	assert.Error(t, err)
}
