package relations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlas-checks/internal/atlas"
	"atlas-checks/internal/config"
	"atlas-checks/internal/geo"
)

func loc(lat, lon float64) geo.Location { return geo.NewLocation(lat, lon) }

func member(t atlas.ItemType, id int64) atlas.MemberRef {
	return atlas.MemberRef{Type: t, Identifier: id}
}

func TestOneMemberRelation(t *testing.T) {
	road := atlas.Tags{"highway": "primary"}
	route := atlas.Tags{"type": "route"}
	a, err := atlas.NewBuilder("relations").
		AddNode(1000000, loc(0, 0), nil).
		AddNode(2000000, loc(0, 0.001), nil).
		AddNode(3000000, loc(0, 0.002), nil).
		AddNode(4000000, loc(0, 0.003), nil).
		AddEdge(1000001, 1000000, 2000000, nil, road).
		AddEdge(2000001, 2000000, 3000000, nil, road).
		AddEdge(2000002, 3000000, 4000000, nil, road).
		AddRelation(1000000, route, member(atlas.ItemEdge, 1000001)).
		AddRelation(2000000, route, member(atlas.ItemEdge, 2000001), member(atlas.ItemEdge, 2000002)).
		AddRelation(3000000, atlas.Tags{"type": "multipolygon"}, member(atlas.ItemEdge, 1000001)).
		AddRelation(4000000, route, member(atlas.ItemRelation, 1000000)).
		AddRelation(5000000, route, member(atlas.ItemEdge, 1000001), member(atlas.ItemEdge, 2000001)).
		Build()
	require.NoError(t, err)

	flags := NewOneMemberRelationCheck(nil).Flags(a)
	require.Len(t, flags, 3)
	assert.Equal(t, "1000001", flags[0].Identifier)
	assert.Equal(t, []string{"This relation, 1, contains only one member."}, flags[0].Instructions())
	assert.Equal(t, "2000001,2000002", flags[1].Identifier)
	assert.Equal(t, []string{"This relation, 4, contains only relation 1."}, flags[2].Instructions())
	assert.Equal(t, []string{"E1000001"}, flags[2].UniqueIdentifiers())

	cfg, err := config.Parse([]byte("OneMemberRelationCheck:\n  relations.skip: [\"type->route\"]\n"))
	require.NoError(t, err)
	assert.Len(t, NewOneMemberRelationCheck(cfg).Flags(a), 1)
}

func TestOpenBoundary(t *testing.T) {
	boundary := atlas.Tags{"type": "boundary", "admin_level": "2"}
	a, err := atlas.NewBuilder("boundaries").
		AddLine(1000000, geo.PolyLine{loc(0, 0), loc(0, 0.001)}, nil).
		AddLine(2000000, geo.PolyLine{loc(0, 0.001), loc(0.001, 0.001)}, nil).
		AddLine(3000000, geo.PolyLine{loc(0.001, 0.001), loc(0, 0)}, nil).
		AddLine(4000000, geo.PolyLine{loc(1, 1), loc(1, 1.001)}, nil).
		AddLine(5000000, geo.PolyLine{loc(1, 1.001), loc(1.001, 1.001)}, nil).
		AddRelation(1000000, boundary,
			member(atlas.ItemLine, 1000000), member(atlas.ItemLine, 2000000), member(atlas.ItemLine, 3000000)).
		AddRelation(2000000, boundary, member(atlas.ItemLine, 4000000), member(atlas.ItemLine, 5000000)).
		AddRelation(3000000, atlas.Tags{"type": "boundary"}, member(atlas.ItemLine, 4000000)).
		AddRelation(4000000, boundary, member(atlas.ItemLine, 4000000), member(atlas.ItemLine, 9000000)).
		Build()
	require.NoError(t, err)

	flags := NewOpenBoundaryCheck(nil).Flags(a)
	require.Len(t, flags, 1)
	f := flags[0]
	assert.Equal(t, "2000000", f.Identifier)
	assert.Equal(t, []string{
		"The Multipolygon relation 2 with members : [4, 5] is not closed at some locations : [1.0000000,1.0000000, 1.0010000,1.0010000]",
	}, f.Instructions())
	assert.Len(t, f.Points(), 2)

	assert.Empty(t, OpenLocations(a.Relation(1000000)))
}
