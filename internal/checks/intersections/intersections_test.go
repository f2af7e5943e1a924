package intersections

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlas-checks/internal/atlas"
	"atlas-checks/internal/config"
	"atlas-checks/internal/geo"
)

func loc(lat, lon float64) geo.Location { return geo.NewLocation(lat, lon) }

func crossingAtlas(t *testing.T, tagsB atlas.Tags) *atlas.Atlas {
	t.Helper()
	a, err := atlas.NewBuilder("cross").
		AddNode(1000000, loc(-0.001, 0), nil).
		AddNode(2000000, loc(0.001, 0), nil).
		AddNode(3000000, loc(0, -0.001), nil).
		AddNode(4000000, loc(0, 0.001), nil).
		AddEdge(1000001, 1000000, 2000000, nil, atlas.Tags{"highway": "primary"}).
		AddEdge(2000001, 3000000, 4000000, nil, tagsB).
		Build()
	require.NoError(t, err)
	return a
}

func TestEdgeCrossingEdge(t *testing.T) {
	flags := NewEdgeCrossingEdgeCheck(config.Empty()).Flags(crossingAtlas(t, atlas.Tags{"highway": "secondary"}))
	require.Len(t, flags, 1)
	assert.Equal(t, "1000001,2000001", flags[0].Identifier)
	assert.Contains(t, flags[0].Instructions()[0], "The roads with ids [1, 2] invalidly cross each other.")
	assert.Equal(t, []geo.Location{loc(0, 0)}, flags[0].Points())
}

func TestEdgeCrossingEdgeValidCrossings(t *testing.T) {
	check := NewEdgeCrossingEdgeCheck(nil)
	assert.Empty(t, check.Flags(crossingAtlas(t, atlas.Tags{"highway": "secondary", "bridge": "yes"})))
	assert.Empty(t, check.Flags(crossingAtlas(t, atlas.Tags{"highway": "secondary", "layer": "-1"})))
	assert.Empty(t, check.Flags(crossingAtlas(t, atlas.Tags{"highway": "footway"})))
	assert.Empty(t, check.Flags(crossingAtlas(t, atlas.Tags{"highway": "crossing"})))
	assert.Empty(t, check.Flags(crossingAtlas(t, atlas.Tags{"highway": "corridor"})))

	shared, err := atlas.NewBuilder("shared").
		AddNode(1000000, loc(-0.001, 0), nil).
		AddNode(2000000, loc(0.001, 0), nil).
		AddNode(3000000, loc(0, -0.001), nil).
		AddNode(4000000, loc(0, 0.001), nil).
		AddNode(5000000, loc(0, 0), nil).
		AddEdge(1000001, 1000000, 5000000, nil, atlas.Tags{"highway": "primary"}).
		AddEdge(1000002, 5000000, 2000000, nil, atlas.Tags{"highway": "primary"}).
		AddEdge(2000001, 3000000, 5000000, nil, atlas.Tags{"highway": "primary"}).
		AddEdge(2000002, 5000000, 4000000, nil, atlas.Tags{"highway": "primary"}).
		Build()
	require.NoError(t, err)
	assert.Empty(t, check.Flags(shared))
}

func TestEdgeCrossingEdgeClear(t *testing.T) {
	check := NewEdgeCrossingEdgeCheck(nil)
	a := crossingAtlas(t, atlas.Tags{"highway": "primary"})
	require.Len(t, check.Flags(a), 1)
	assert.Empty(t, check.Flags(a), "edges stay flagged until cleared")
	check.Clear()
	assert.Len(t, check.Flags(a), 1)
}

func TestImpliedLayer(t *testing.T) {
	a := crossingAtlas(t, atlas.Tags{"highway": "primary", "tunnel": "yes"})
	assert.Equal(t, 0, impliedLayer(a.Edge(1000001)))
	assert.Equal(t, -1, impliedLayer(a.Edge(2000001)))
}

var bowtie = geo.PolyLine{loc(0, 0), loc(0.001, 0.001), loc(0.001, 0), loc(0, 0.001)}

func TestSelfIntersectingPolyline(t *testing.T) {
	a, err := atlas.NewBuilder("bowtie").
		AddLine(1000000, bowtie, atlas.Tags{"barrier": "fence"}).
		AddLine(2000000, bowtie, atlas.Tags{"waterway": "stream"}).
		AddLine(3000000, bowtie, atlas.Tags{"building": "yes"}).
		AddArea(4000000, geo.Polygon(bowtie), atlas.Tags{"landuse": "grass"}).
		AddLine(5000000, geo.PolyLine{loc(0, 0), loc(0, 0.001), loc(0.001, 0.001)}, nil).
		Build()
	require.NoError(t, err)

	flags := NewSelfIntersectingPolylineCheck(nil).Flags(a)
	require.Len(t, flags, 3)

	byID := map[string]string{}
	for _, f := range flags {
		byID[f.Identifier] = f.Instructions()[0]
		assert.Equal(t, []geo.Location{loc(0.0005, 0.0005)}, f.Points())
	}
	assert.Equal(t, "Self-intersecting polyline for feature 1 at [0.0005000,0.0005000]", byID["1000000"])
	assert.Equal(t, "Feature 3 is a incomplete building at [0.0005000,0.0005000]", byID["3000000"])
	assert.Equal(t, "Feature 4 has invalid geometry at [0.0005000,0.0005000]", byID["4000000"])
}

func TestSelfIntersectingDuplicateSegment(t *testing.T) {
	a, err := atlas.NewBuilder("dup").
		AddArea(1000000, geo.Polygon{loc(0, 0), loc(0, 0.001), loc(0.001, 0.001), loc(0, 0.001)}, nil).
		Build()
	require.NoError(t, err)

	flags := NewSelfIntersectingPolylineCheck(nil).Flags(a)
	require.Len(t, flags, 1)
	assert.Contains(t, flags[0].Instructions()[0], "Feature 1 has a duplicate Edge at")
}
