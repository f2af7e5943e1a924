package points

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlas-checks/internal/atlas"
	"atlas-checks/internal/geo"
)

func loc(lat, lon float64) geo.Location { return geo.NewLocation(lat, lon) }

// star：中心节点连接 n 条主干道
func star(t *testing.T, n int, centerTags atlas.Tags, twoWay bool) *atlas.Atlas {
	t.Helper()
	b := atlas.NewBuilder("star").AddNode(1000000, loc(0, 0), centerTags)
	for i := 1; i <= n; i++ {
		id := int64(i+1) * 1000000
		b.AddNode(id, loc(0.001*float64(i), 0.001), nil)
		if twoWay {
			b.AddTwoWayEdge(id+1, 1000000, id, nil, atlas.Tags{"highway": "primary"})
		} else {
			b.AddEdge(id+1, 1000000, id, nil, atlas.Tags{"highway": "primary"})
		}
	}
	a, err := b.Build()
	require.NoError(t, err)
	return a
}

func TestNodeValence(t *testing.T) {
	flags := NewNodeValenceCheck(nil).Flags(star(t, 11, nil, true))
	require.Len(t, flags, 1)
	f := flags[0]
	assert.Equal(t, "1000000", f.Identifier)
	assert.Len(t, f.Objects(), 12)
	assert.Equal(t, []string{
		"Node 1 has too many connections (11 connected edges). Ideally a node shouldn't be connected to more than 10 edges.",
	}, f.Instructions())

	assert.Empty(t, NewNodeValenceCheck(nil).Flags(star(t, 10, nil, true)))
}

func TestInvalidMiniRoundabout(t *testing.T) {
	mini := atlas.Tags{"highway": "mini_roundabout"}

	turnaround := NewInvalidMiniRoundaboutCheck(nil).Flags(star(t, 1, mini, true))
	require.Len(t, turnaround, 1)
	assert.Contains(t, turnaround[0].Instructions()[0], "Consider changing this to highway=TURNING_LOOP")
	assert.Len(t, turnaround[0].Objects(), 3)

	low := NewInvalidMiniRoundaboutCheck(nil).Flags(star(t, 3, mini, false))
	require.Len(t, low, 1)
	assert.Equal(t, "This Mini-Roundabout Node (1) has 3 connecting car-navigable edges. Consider changing this.",
		low[0].Instructions()[0])

	directed := atlas.Tags{"highway": "mini_roundabout", "direction": "clockwise"}
	assert.Empty(t, NewInvalidMiniRoundaboutCheck(nil).Flags(star(t, 3, directed, false)))
	assert.Empty(t, NewInvalidMiniRoundaboutCheck(nil).Flags(star(t, 6, mini, false)))
}

func TestDuplicateLocationInPolyLine(t *testing.T) {
	a, err := atlas.NewBuilder("dup").
		AddLine(1000000, geo.PolyLine{loc(0, 0), loc(0, 0.001), loc(0.001, 0.001), loc(0, 0.001), loc(0, 0.002)}, nil).
		AddLine(1000001, geo.PolyLine{loc(1, 0), loc(1, 0.001), loc(1, 0.001)}, nil).
		AddLine(2000000, geo.PolyLine{loc(0, 0), loc(0, 0.001), loc(0.001, 0.001), loc(0, 0)}, nil).
		Build()
	require.NoError(t, err)

	flags := NewDuplicateLocationInPolyLineCheck(nil).Flags(a)
	require.Len(t, flags, 1, "sections of one way are flagged once, closing vertex is not a repeat")
	assert.Equal(t, "1000000", flags[0].Identifier)
	assert.Equal(t, fmt.Sprintf("Repeated location found at %s for feature id 1 ", loc(0, 0.001)), flags[0].Instructions()[0])
	assert.Equal(t, []geo.Location{loc(0, 0.001)}, flags[0].Points())
}
