package areas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlas-checks/internal/atlas"
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
	"atlas-checks/internal/geo"
)

func loc(lat, lon float64) geo.Location { return geo.NewLocation(lat, lon) }

func square(lat, lon, size float64) geo.Polygon {
	return geo.Polygon{loc(lat, lon), loc(lat, lon+size), loc(lat+size, lon+size), loc(lat+size, lon)}
}

func build(t *testing.T, b *atlas.Builder) *atlas.Atlas {
	t.Helper()
	a, err := b.Build()
	require.NoError(t, err)
	return a
}

func TestRegistered(t *testing.T) {
	names := checks.Names()
	for _, n := range []string{PoolSizeName, SpikyBuildingName, OverlappingAOIName} {
		assert.Contains(t, names, n)
	}
}

func TestPoolSize(t *testing.T) {
	pool := atlas.Tags{"leisure": "swimming_pool"}
	a := build(t, atlas.NewBuilder("pools").
		AddArea(1000000, square(0, 0, 0.03), pool).
		AddArea(2000000, square(1, 1, 0.00001), pool).
		AddArea(3000000, square(2, 2, 0.0002), pool).
		AddArea(4000000, square(3, 3, 0.00001), atlas.Tags{"leisure": "park"}))

	flags := NewPoolSizeCheck(nil).Flags(a)
	require.Len(t, flags, 2)
	assert.Equal(t, "1000000", flags[0].Identifier)
	assert.Contains(t, flags[0].Instructions()[0], "greater than the expected maximum of 5000000 meters squared.")
	assert.Equal(t, "2000000", flags[1].Identifier)
	assert.Contains(t, flags[1].Instructions()[0], "smaller than the expected minimum of 5 meters squared.")

	cfg, err := config.Parse([]byte("PoolSizeCheck:\n  surface.minimum: 1\n"))
	require.NoError(t, err)
	assert.Len(t, NewPoolSizeCheck(cfg).Flags(a), 1)
}

func TestSpikyBuilding(t *testing.T) {
	spiky := geo.Polygon{loc(0, 0), loc(0, 0.0002), loc(0.002, 0.0001)}
	a := build(t, atlas.NewBuilder("buildings").
		AddArea(1000000, spiky, atlas.Tags{"building": "yes"}).
		AddArea(2000000, square(1, 1, 0.0005), atlas.Tags{"building": "yes"}).
		AddArea(3000000, spiky, nil).
		AddRelation(4000000, atlas.Tags{"type": "multipolygon", "building": "yes"},
			atlas.MemberRef{Type: atlas.ItemArea, Identifier: 3000000, Role: "outer"}))

	flags := NewSpikyBuildingCheck(nil).Flags(a)
	require.Len(t, flags, 2)
	assert.Equal(t, "1000000", flags[0].Identifier)
	assert.Contains(t, flags[0].Instructions()[0],
		"This building has the following angle measurements under the minimum allowed angle of 15.00 degrees: 5.7")
	require.Len(t, flags[0].Points(), 1)
	assert.True(t, flags[0].Points()[0].Equals(loc(0.002, 0.0001)))

	assert.Equal(t, []string{"A3000000"}, flags[1].UniqueIdentifiers())
}

func TestSummarizeCurves(t *testing.T) {
	line := geo.PolyLine{loc(0, 0), loc(0, 1), loc(0, 2), loc(0, 3), loc(0, 4), loc(0, 0)}
	s := line.Segments()
	require.Len(t, s, 5)

	curves := summarizeCurves([]segmentPair{{s[0], s[1]}, {s[1], s[2]}, {s[3], s[4]}})
	require.Len(t, curves, 2)
	assert.Equal(t, 2, curves[0].count)
	assert.True(t, curves[0].start.Equals(s[0]))
	assert.True(t, curves[0].end.Equals(s[2]))
	assert.Equal(t, 1, curves[1].count)

	wrapped := summarizeCurves([]segmentPair{{s[0], s[1]}, {s[3], s[4]}, {s[4], s[0]}})
	require.Len(t, wrapped, 1)
	assert.Equal(t, 3, wrapped[0].count)
	assert.True(t, wrapped[0].start.Equals(s[3]))
	assert.True(t, wrapped[0].end.Equals(s[1]))

	assert.Empty(t, summarizeCurves(nil))
}

func TestCurvedOutlineNotSpiky(t *testing.T) {
	var circle geo.Polygon
	for i := 0; i < 36; i++ {
		circle = append(circle, s2loc(i))
	}
	a := build(t, atlas.NewBuilder("round").AddArea(1000000, circle, atlas.Tags{"building": "yes"}))
	assert.Empty(t, NewSpikyBuildingCheck(nil).Flags(a))
}

// s2loc 半径约 100 米的圆上第 i 个点（每 10 度一个）
func s2loc(i int) geo.Location {
	angle := float64(i) * 10
	return loc(0.001*cos(angle), 0.001*sin(angle))
}

func TestOverlappingAOIPolygon(t *testing.T) {
	park := atlas.Tags{"leisure": "park"}
	a := build(t, atlas.NewBuilder("aoi").
		AddArea(1000000, square(0, 0, 0.001), park).
		AddArea(2000000, square(0.0005, 0, 0.001), park).
		AddArea(3000000, square(0.0005, 0.0005, 0.001), atlas.Tags{"landuse": "forest"}).
		AddArea(4000000, square(5, 5, 0.001), park))

	c := NewOverlappingAOIPolygonCheck(nil)
	flags := c.Flags(a)
	require.Len(t, flags, 1)
	f := flags[0]
	assert.Equal(t, "1000000", f.Identifier)
	assert.Equal(t, []string{"A1000000", "A2000000"}, f.UniqueIdentifiers())
	assert.Equal(t, []string{"Area (id=1) overlaps area (id=2) and represent the same AOI."}, f.Instructions())
	assert.True(t, c.IsFlagged(2000000))

	cfg, err := config.Parse([]byte("OverlappingAOIPolygonCheck:\n  intersect.minimum.limit: 0.9\n"))
	require.NoError(t, err)
	assert.Empty(t, NewOverlappingAOIPolygonCheck(cfg).Flags(a))
}

func cos(deg float64) float64 { return math.Cos(deg * math.Pi / 180) }
func sin(deg float64) float64 { return math.Sin(deg * math.Pi / 180) }
