package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceAndHeading(t *testing.T) {
	a := NewLocation(0, 0)
	b := NewLocation(0, 1)
	assert.InDelta(t, 111195.08, Distance(a, b), 0.01)
	assert.InDelta(t, 111195.08, Distance(a, NewLocation(1, 0)), 0.01)
	assert.InDelta(t, math.Pi*EarthRadius, Distance(a, NewLocation(0, 180)), 1e-6)

	h, ok := Heading(a, b)
	require.True(t, ok)
	assert.InDelta(t, 90, h, 1e-6)

	h, ok = Heading(b, a)
	require.True(t, ok)
	assert.InDelta(t, 270, h, 1e-6)

	_, ok = Heading(a, a)
	assert.False(t, ok)
}

func TestHeadingDifference(t *testing.T) {
	assert.InDelta(t, 20, HeadingDifference(350, 10), 1e-9)
	assert.InDelta(t, 180, HeadingDifference(0, 180), 1e-9)
	assert.InDelta(t, 0, HeadingDifference(45, 45), 1e-9)
}

func TestLawOfCosinesAngle(t *testing.T) {
	a := NewLocation(0, 0)
	b := NewLocation(0, 0.001)
	straight := NewLocation(0, 0.002)
	right := NewLocation(0.001, 0.001)
	assert.InDelta(t, 180, LawOfCosinesAngle(a, b, straight), 0.01)
	assert.InDelta(t, 90, LawOfCosinesAngle(a, b, right), 0.1)
	assert.Equal(t, 0.0, LawOfCosinesAngle(a, a, right))

	s1 := Segment{Start: a, End: b}
	s2 := Segment{Start: b, End: right}
	assert.InDelta(t, 90, SegmentAngle(s1, s2), 0.1)
}

func TestQuadraticBezierDeviation(t *testing.T) {
	start := NewLocation(0, 0)
	end := NewLocation(0, 0.002)
	// 直线时曲线经过控制点
	assert.InDelta(t, 0, QuadraticBezierDeviation(start, NewLocation(0, 0.001), end, 0.01), 1e-6)
	// 控制点偏离约 111m，曲线最近点约在一半处
	dev := QuadraticBezierDeviation(start, NewLocation(0.001, 0.001), end, 0.01)
	assert.InDelta(t, 55.6, dev, 1)
	assert.InDelta(t, dev, QuadraticBezierDeviation(start, NewLocation(0.001, 0.001), end, 0), 1e-9)
}

func TestPolyLineAngles(t *testing.T) {
	line := PolyLine{
		NewLocation(0, 0), NewLocation(0, 0.001), NewLocation(0, 0.001),
		NewLocation(0.001, 0.001), NewLocation(0, 0.0011),
	}
	angles := line.Angles()
	require.Len(t, angles, 2)
	assert.InDelta(t, 90, angles[0].Degrees, 0.1)
	assert.True(t, angles[0].Location.Equals(NewLocation(0, 0.001)))

	sharp := line.AnglesGreaterThanOrEqualTo(150)
	require.Len(t, sharp, 1)
	assert.True(t, sharp[0].Location.Equals(NewLocation(0.001, 0.001)))
}

func TestSegmentIntersection(t *testing.T) {
	s := Segment{Start: NewLocation(0, 0), End: NewLocation(1, 1)}
	o := Segment{Start: NewLocation(0, 1), End: NewLocation(1, 0)}
	loc, ok := s.Intersection(o)
	require.True(t, ok)
	assert.True(t, loc.Equals(NewLocation(0.5, 0.5)))

	parallel := Segment{Start: NewLocation(0, 0.1), End: NewLocation(1, 1.1)}
	_, ok = s.Intersection(parallel)
	assert.False(t, ok)
	assert.False(t, s.Intersects(parallel))

	overlap := Segment{Start: NewLocation(0.5, 0.5), End: NewLocation(2, 2)}
	assert.True(t, s.Overlaps(overlap))
	assert.True(t, s.Intersects(overlap))
}

func TestPolyLineIntersections(t *testing.T) {
	a := PolyLine{NewLocation(0, 0), NewLocation(0, 2)}
	b := PolyLine{NewLocation(-1, 1), NewLocation(1, 1)}
	locs := a.Intersections(b)
	require.Len(t, locs, 1)
	assert.True(t, locs[0].Equals(NewLocation(0, 1)))
	assert.False(t, ExplicitIntersections(a, b))

	a2 := PolyLine{NewLocation(0, 0), NewLocation(0, 1), NewLocation(0, 2)}
	b2 := PolyLine{NewLocation(-1, 1), NewLocation(0, 1), NewLocation(1, 1)}
	assert.True(t, ExplicitIntersections(a2, b2))
}

func TestSelfIntersections(t *testing.T) {
	bowtie := PolyLine{
		NewLocation(0, 0), NewLocation(1, 1), NewLocation(1, 0), NewLocation(0, 1), NewLocation(0, 0),
	}
	locs := bowtie.SelfIntersections()
	require.Len(t, locs, 1)
	assert.True(t, locs[0].Equals(NewLocation(0.5, 0.5)))

	square := PolyLine{
		NewLocation(0, 0), NewLocation(0, 1), NewLocation(1, 1), NewLocation(1, 0), NewLocation(0, 0),
	}
	assert.Empty(t, square.SelfIntersections())
}

func TestDuplicateLocation(t *testing.T) {
	closed := PolyLine{NewLocation(0, 0), NewLocation(0, 1), NewLocation(1, 1), NewLocation(0, 0)}
	_, ok := closed.DuplicateLocation()
	assert.False(t, ok)

	repeat := PolyLine{NewLocation(0, 0), NewLocation(0, 1), NewLocation(1, 1), NewLocation(0, 1), NewLocation(2, 2)}
	loc, ok := repeat.DuplicateLocation()
	require.True(t, ok)
	assert.True(t, loc.Equals(NewLocation(0, 1)))
}

func square(lat, lon, size float64) Polygon {
	return Polygon{
		NewLocation(lat, lon), NewLocation(lat, lon+size),
		NewLocation(lat+size, lon+size), NewLocation(lat+size, lon),
	}
}

func TestPolygonContainsAndArea(t *testing.T) {
	p := square(0, 0, 0.001)
	assert.True(t, p.Contains(NewLocation(0.0005, 0.0005)))
	assert.False(t, p.Contains(NewLocation(0.002, 0.0005)))
	assert.True(t, p.IsConvex())
	// 约 111m x 111m
	assert.InDelta(t, 12364, p.Area(), 200)

	inner := PolyLine{NewLocation(0.0002, 0.0002), NewLocation(0.0008, 0.0008)}
	assert.True(t, p.ContainsPolyLine(inner))
	crossing := PolyLine{NewLocation(0.0005, 0.0005), NewLocation(0.0005, 0.002)}
	assert.False(t, p.ContainsPolyLine(crossing))
	assert.True(t, p.Overlaps(crossing))
	assert.False(t, p.Overlaps(PolyLine{NewLocation(1, 1), NewLocation(2, 2)}))
}

func TestOverlapPercentage(t *testing.T) {
	p := square(0, 0, 0.001)
	q := square(0, 0.0005, 0.001)
	assert.InDelta(t, 0.5, OverlapPercentage(p, q), 0.01)
	assert.Equal(t, 0.0, OverlapPercentage(p, square(1, 1, 0.001)))
	assert.InDelta(t, 1, OverlapPercentage(p, square(0.0002, 0.0002, 0.0005)), 0.01)

	// 两个非凸多边形走采样估计
	l1 := Polygon{
		NewLocation(0, 0), NewLocation(0, 0.002), NewLocation(0.001, 0.002),
		NewLocation(0.001, 0.001), NewLocation(0.002, 0.001), NewLocation(0.002, 0),
	}
	assert.False(t, l1.IsConvex())
	assert.InDelta(t, 1, OverlapPercentage(l1, l1), 0.05)
}

func TestHasDuplicateSegments(t *testing.T) {
	p := Polygon{NewLocation(0, 0), NewLocation(0, 1), NewLocation(1, 1), NewLocation(0, 1)}
	assert.True(t, p.HasDuplicateSegments())
	assert.False(t, square(0, 0, 1).HasDuplicateSegments())
}

func TestCrossProduct(t *testing.T) {
	// 经度为 x：东行再北转为逆时针
	assert.Less(t, CrossProduct(NewLocation(0, 0), NewLocation(0, 1), NewLocation(1, 1)), 0.0)
	assert.Greater(t, CrossProduct(NewLocation(0, 0), NewLocation(0, 1), NewLocation(-1, 1)), 0.0)
	assert.Equal(t, 0.0, CrossProduct(NewLocation(0, 0), NewLocation(0, 1), NewLocation(0, 2)))
}

func TestRectangle(t *testing.T) {
	r := Bounds(NewLocation(0, 0), NewLocation(1, 1))
	assert.True(t, r.Intersects(Bounds(NewLocation(1, 1), NewLocation(2, 2))))
	assert.False(t, r.Intersects(Bounds(NewLocation(2, 2), NewLocation(3, 3))))
	e := r.Expand(1000)
	assert.Less(t, e.MinLat, r.MinLat)
	assert.Greater(t, e.MaxLon, r.MaxLon)
	assert.False(t, math.IsNaN(e.Center().Lat))
}

func TestGeohash(t *testing.T) {
	assert.Equal(t, "ezs42", Geohash(NewLocation(42.6, -5.6), 5))
	assert.Len(t, Geohash(NewLocation(0, 0), 0), 7)
}
