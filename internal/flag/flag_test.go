package flag

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlas-checks/internal/atlas"
	"atlas-checks/internal/geo"
)

func sample(t *testing.T) *atlas.Atlas {
	t.Helper()
	a, err := atlas.NewBuilder("flag").
		AddNode(1, geo.NewLocation(0, 0), nil).
		AddNode(2, geo.NewLocation(0, 0.001), atlas.Tags{atlas.TagCountry: "FRA"}).
		AddEdge(3000000, 1, 2, nil, atlas.Tags{"highway": "residential", atlas.TagCountry: "FRA"}).
		AddArea(4000000, geo.Polygon{geo.NewLocation(1, 1), geo.NewLocation(1, 1.001), geo.NewLocation(1.001, 1.001)}, atlas.Tags{"building": "yes"}).
		AddRelation(5000000, atlas.Tags{"type": "multipolygon"},
			atlas.MemberRef{Type: atlas.ItemArea, Identifier: 4000000, Role: "outer"},
			atlas.MemberRef{Type: atlas.ItemNode, Identifier: 1}).
		Build()
	require.NoError(t, err)
	return a
}

func TestTaskIdentifier(t *testing.T) {
	a := sample(t)
	got := TaskIdentifier([]atlas.Entity{a.Edge(3000000), a.Node(2), a.Node(1), a.Node(2)})
	assert.Equal(t, "1,2,3000000", got)
	assert.Equal(t, "", TaskIdentifier(nil))
}

func TestCheckFlagObjects(t *testing.T) {
	a := sample(t)
	f := New("3000000")
	f.AddObject(a.Area(4000000)).AddObject(a.Edge(3000000)).AddObject(a.Edge(3000000))
	f.AddObject(a.Relation(5000000))
	f.AddInstruction("first").AddInstruction("  ").AddInstruction("second")
	f.AddPoint(geo.NewLocation(0, 0.0005))

	assert.Equal(t, []string{"A4000000", "E3000000", "N1"}, f.UniqueIdentifiers())
	assert.Equal(t, "1. first\n2. second", f.InstructionText())
	assert.Equal(t, "FRA", f.Country())
	assert.Len(t, f.PolyLines(), 2)
	b := f.Bounds()
	assert.InDelta(t, 1.001, b.MaxLat, 1e-9)
	assert.Equal(t, NoCountry, New("x").AddObject(a.Node(1)).Country())
}

func TestFeatureCollection(t *testing.T) {
	a := sample(t)
	f := New("3000000").AddObject(a.Edge(3000000)).AddInstruction("fix").AddPoint(geo.NewLocation(0, 0.0005))
	f.ChallengeName = "LongSegmentCheck"
	fc := f.FeatureCollection()
	require.Len(t, fc.Features, 2)

	edge := fc.Features[0]
	_, ok := edge.Geometry.(orb.LineString)
	assert.True(t, ok)
	assert.Equal(t, "Edge", edge.Properties[PropItemType])
	assert.Equal(t, "residential", edge.Properties["highway"])
	assert.Equal(t, "LongSegmentCheck", edge.Properties[PropCheck])
	assert.Equal(t, "1. fix", edge.Properties[PropInstructions])
	assert.NotEmpty(t, edge.Properties[PropGeohash])

	marker := fc.Features[1]
	assert.Equal(t, true, marker.Properties[PropMarker])

	all := GeometriesOf([]*CheckFlag{f, f})
	assert.Len(t, all.Features, 4)
}

func TestRecordLinesRoundTrip(t *testing.T) {
	a := sample(t)
	f := New("3000000").AddObject(a.Edge(3000000)).AddInstruction("fix")
	rec, err := f.Record("LongSegmentCheck")
	require.NoError(t, err)
	assert.Equal(t, "FRA", rec.Country)
	assert.Equal(t, []string{"E3000000"}, rec.Objects)

	var buf bytes.Buffer
	require.NoError(t, WriteLines(&buf, []Record{rec, rec}))
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))

	got, err := ReadLines(strings.NewReader(buf.String() + "\n\n"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, rec.Key(), got[0].Key())
	assert.JSONEq(t, string(rec.Geometry), string(got[1].Geometry))
}

func TestReadLinesErrors(t *testing.T) {
	_, err := ReadLines(strings.NewReader("{not json}\n"))
	assert.ErrorContains(t, err, "line 1")
	_, err = ReadLines(strings.NewReader(`{"check":"X","identifier":""}` + "\n"))
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestNewTaskAddsMarker(t *testing.T) {
	a := sample(t)
	rec, err := New("3000000").AddObject(a.Edge(3000000)).AddInstruction("fix").Record("LongSegmentCheck")
	require.NoError(t, err)
	task, err := NewTask(rec, 42)
	require.NoError(t, err)
	assert.Equal(t, "3000000", task.Name)
	assert.Equal(t, int64(42), task.Parent)
	assert.Equal(t, "1. fix", task.Instruction)

	fc, err := geojson.UnmarshalFeatureCollection(task.Geometries)
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	p, ok := fc.Features[1].Geometry.(orb.Point)
	require.True(t, ok)
	assert.Equal(t, orb.Point{0, 0}, p)

	// 已有标记点时不再追加
	withPoint, err := New("1").AddObject(a.Node(1)).AddInstruction("x").Record("C")
	require.NoError(t, err)
	task, err = NewTask(withPoint, 1)
	require.NoError(t, err)
	fc, err = geojson.UnmarshalFeatureCollection(task.Geometries)
	require.NoError(t, err)
	assert.Len(t, fc.Features, 1)

	_, err = NewTask(Record{}, 1)
	assert.ErrorIs(t, err, ErrInvalidRecord)

	body, err := json.Marshal(task)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"parent":1`)
	assert.Equal(t, NoCountry, ProjectName(Record{}))
}

func TestContainer(t *testing.T) {
	a := sample(t)
	c := NewContainer()
	first := New("a").AddObject(a.Edge(3000000))
	dup := New("b").AddObject(a.Edge(3000000))
	other := New("c").AddObject(a.Node(1))

	assert.True(t, c.Add("X", first))
	assert.False(t, c.Add("X", dup))
	assert.True(t, c.Add("Y", dup))
	assert.Equal(t, 1, c.AddAll("X", []*CheckFlag{dup, other}))
	assert.False(t, c.Add("X", nil))
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []string{"X", "Y"}, c.Checks())
	assert.Same(t, first, c.Flags("X")[0])

	// 无对象的标记按标识符去重
	assert.True(t, c.Add("Z", New("p1")))
	assert.False(t, c.Add("Z", New("p1")))

	merged := NewContainer()
	merged.Merge(c)
	assert.Equal(t, c.Len(), merged.Len())

	recs, err := NewContainer().Records()
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestContainerConcurrentAdd(t *testing.T) {
	a := sample(t)
	c := NewContainer()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Add("X", New("a").AddObject(a.Edge(3000000)))
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, c.Len())
}
