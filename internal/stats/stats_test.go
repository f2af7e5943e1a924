package stats

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlas-checks/internal/flag"
)

func rec(check, country, id, instr, geom string) flag.Record {
	return flag.Record{Check: check, Country: country, Identifier: id, Instructions: instr, Geometry: json.RawMessage(geom)}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]flag.Record{
		rec("B", "USA", "1", "x", `{}`),
		rec("A", "USA", "2", "x", `{}`),
		rec("A", "CAN", "3", "x", `{}`),
		rec("A", "", "4", "x", `{}`),
	})
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, map[string]int{"A": 3, "B": 1}, s.ByCheck)
	assert.Equal(t, map[string]int{"USA": 2, "CAN": 1, flag.NoCountry: 1}, s.ByCountry)
	assert.Equal(t, []Row{
		{Check: "A", Country: "CAN", Count: 1},
		{Check: "A", Country: flag.NoCountry, Count: 1},
		{Check: "A", Country: "USA", Count: 1},
		{Check: "B", Country: "USA", Count: 1},
	}, s.Table)

	var buf bytes.Buffer
	require.NoError(t, s.WriteCSV(&buf))
	assert.Equal(t, "check,country,count\nA,CAN,1\nA,N/A,1\nA,USA,1\nB,USA,1\n", buf.String())
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Total)
	assert.Empty(t, s.Table)
}

func TestDiff(t *testing.T) {
	old := []flag.Record{
		rec("A", "USA", "1", "same", `{"type":"FeatureCollection","features":[]}`),
		rec("A", "USA", "2", "before", `{}`),
		rec("A", "USA", "3", "gone", `{}`),
		rec("B", "USA", "5", "g", `{"a":1,"b":2}`),
	}
	updated := []flag.Record{
		rec("A", "USA", "1", "same", `{ "features": [], "type": "FeatureCollection" }`),
		rec("A", "USA", "2", "after", `{}`),
		rec("A", "USA", "4", "new", `{}`),
		rec("B", "USA", "5", "g", `{"a":1,"b":3}`),
	}
	d := Diff(old, updated)
	require.Len(t, d.Added, 1)
	assert.Equal(t, "4", d.Added[0].Identifier)
	require.Len(t, d.Removed, 1)
	assert.Equal(t, "3", d.Removed[0].Identifier)
	require.Len(t, d.Changed, 2)
	assert.Equal(t, "2", d.Changed[0].Identifier)
	assert.Equal(t, "5", d.Changed[1].Identifier)
	assert.Equal(t, "added=1 removed=1 changed=2", d.Summary())
}

func TestDiffIdentical(t *testing.T) {
	list := []flag.Record{rec("A", "USA", "1", "x", `{}`)}
	d := Diff(list, list)
	assert.Empty(t, d.Added)
	assert.Empty(t, d.Removed)
	assert.Empty(t, d.Changed)
}
