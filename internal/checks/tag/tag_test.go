package tag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlas-checks/internal/atlas"
	"atlas-checks/internal/geo"
)

func loc(lat, lon float64) geo.Location { return geo.NewLocation(lat, lon) }

func build(t *testing.T, b *atlas.Builder) *atlas.Atlas {
	t.Helper()
	a, err := b.Build()
	require.NoError(t, err)
	return a
}

// sectionedWay：OSM 路 9 被切成两段
func sectionedWay(tags atlas.Tags) *atlas.Builder {
	return atlas.NewBuilder("way").
		AddNode(1000000, loc(0, 0), nil).
		AddNode(2000000, loc(0, 0.001), nil).
		AddNode(3000000, loc(0, 0.002), nil).
		AddEdge(9000001, 1000000, 2000000, nil, tags).
		AddEdge(9000002, 2000000, 3000000, nil, tags)
}

func TestFixMeReview(t *testing.T) {
	a := build(t, sectionedWay(atlas.Tags{"highway": "tertiary", "fixme": "recheck"}).
		AddPoint(1000000, loc(1, 1), atlas.Tags{"fixme": "continue", "name": "Main"}).
		AddPoint(2000000, loc(1, 2), atlas.Tags{"FIXME": "check spelling", "name": "Main"}).
		AddPoint(3000000, loc(1, 3), atlas.Tags{"fixme": "continue"}))

	flags := NewFixMeReviewCheck(nil).Flags(a)
	require.Len(t, flags, 2)
	assert.Equal(t, "9000001,9000002", flags[0].Identifier)
	assert.Equal(t, []string{"Object 9 has 'fixme' tag and needs to be investigated."}, flags[0].Instructions())
	assert.Equal(t, "1000000", flags[1].Identifier)
}

func TestLongName(t *testing.T) {
	long := strings.Repeat("a", 41)
	a := build(t, sectionedWay(atlas.Tags{"highway": "primary", "official_name": long}).
		AddPoint(1000000, loc(1, 1), atlas.Tags{"name": long, "name:en": long, "ref": long}).
		AddPoint(2000000, loc(1, 2), atlas.Tags{"name": "Short"}))

	flags := NewLongNameCheck(nil).Flags(a)
	require.Len(t, flags, 2)
	assert.Equal(t, []string{"E9000001", "E9000002"}, flags[0].UniqueIdentifiers())
	assert.Equal(t, []string{"Feature 1 has the following tags with over 40 characters: name, name:en."}, flags[1].Instructions())
}

func TestInvalidLanesTag(t *testing.T) {
	road := func(lanes string) atlas.Tags { return atlas.Tags{"highway": "primary", "lanes": lanes} }
	a := build(t, atlas.NewBuilder("lanes").
		AddNode(1000000, loc(0, 0), nil).
		AddNode(2000000, loc(0, 0.001), nil).
		AddNode(3000000, loc(1, 0), nil).
		AddNode(4000000, loc(1, 0.001), atlas.Tags{"barrier": "toll_booth"}).
		AddNode(5000000, loc(1, 0.002), nil).
		AddNode(6000000, loc(2, 0), nil).
		AddNode(7000000, loc(2, 0.001), nil).
		AddEdge(1000001, 1000000, 2000000, nil, road("22")).
		AddEdge(2000001, 6000000, 7000000, nil, road("2")).
		AddEdge(3000001, 3000000, 4000000, nil, road("12")).
		AddEdge(4000001, 4000000, 5000000, nil, road("12")))

	c := NewInvalidLanesTagCheck(nil)
	flags := c.Flags(a)
	require.Len(t, flags, 1)
	assert.Equal(t, "1000001", flags[0].Identifier)
	assert.Equal(t, []string{"Way 1 has an invalid lanes value."}, flags[0].Instructions())
	assert.True(t, c.IsFlagged(4))

	c.Clear()
	assert.Zero(t, c.FlaggedCount())
	assert.Len(t, c.Flags(a), 1)
}

func TestUnusualLayerCase(t *testing.T) {
	cases := []struct {
		name string
		tags atlas.Tags
		want int
		ok   bool
	}{
		{"tunnel without layer", atlas.Tags{"tunnel": "yes"}, caseTunnel, true},
		{"tunnel above ground", atlas.Tags{"tunnel": "yes", "layer": "1"}, caseTunnel, true},
		{"tunnel underground", atlas.Tags{"tunnel": "yes", "layer": "-1"}, 0, false},
		{"bridge without layer", atlas.Tags{"bridge": "yes"}, caseBridge, true},
		{"bridge explicit ground", atlas.Tags{"bridge": "yes", "layer": "0"}, 0, false},
		{"bridge layer", atlas.Tags{"bridge": "yes", "layer": "2", "highway": "primary"}, 0, false},
		{"out of range", atlas.Tags{"layer": "9"}, caseInvalidLayer, true},
		{"not a number", atlas.Tags{"layer": "abc"}, caseInvalidLayer, true},
		{"landuse", atlas.Tags{"landuse": "grass", "layer": "1"}, caseLandUse, true},
		{"natural underground", atlas.Tags{"natural": "wood", "layer": "-1"}, caseNaturalUnderground, true},
		{"highway underground", atlas.Tags{"highway": "primary", "layer": "-1"}, caseHighwayUnderground, true},
		{"highway above ground", atlas.Tags{"highway": "primary", "layer": "1"}, caseHighwayAboveGround, true},
		{"steps", atlas.Tags{"highway": "steps", "layer": "1"}, 0, false},
		{"pier", atlas.Tags{"highway": "footway", "layer": "1", "man_made": "pier"}, 0, false},
		{"waterway underground", atlas.Tags{"waterway": "river", "layer": "-1"}, caseWaterwayUnderground, true},
		{"culvert location", atlas.Tags{"waterway": "river", "layer": "-1", "location": "underground"}, 0, false},
		{"water above ground", atlas.Tags{"natural": "water", "layer": "1"}, caseWaterwayAboveGround, true},
	}
	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := build(t, atlas.NewBuilder("layer").AddPoint(int64(i+1)*1000000, loc(0, 0), tc.tags))
			got, ok := unusualLayerCase(a.Points()[0])
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestUnusualLayerTags(t *testing.T) {
	a := build(t, sectionedWay(atlas.Tags{"highway": "primary", "layer": "1"}).
		AddArea(1000000, geo.Polygon{loc(1, 1), loc(1, 1.001), loc(1.001, 1.001)}, atlas.Tags{"landuse": "grass", "layer": "-1"}).
		AddPoint(2000000, loc(2, 2), atlas.Tags{"tunnel": "building_passage"}))

	flags := NewUnusualLayerTagsCheck(nil).Flags(a)
	require.Len(t, flags, 2)
	assert.Equal(t, "9000001,9000002", flags[0].Identifier)
	assert.Equal(t, []string{highwayAboveGroundInstr}, flags[0].Instructions())
	assert.Equal(t, []string{landUseInstruction}, flags[1].Instructions())
}
