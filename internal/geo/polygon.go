package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// Polygon：单环多边形，闭合点可省略
type Polygon []Location

// Ring 去掉重复闭合点后的顶点
func (p Polygon) Ring() []Location {
	if len(p) > 1 && p[0].Equals(p[len(p)-1]) {
		return p[:len(p)-1]
	}
	return p
}

// Closed 返回显式闭合的折线
func (p Polygon) Closed() PolyLine {
	r := p.Ring()
	if len(r) == 0 {
		return nil
	}
	out := make(PolyLine, 0, len(r)+1)
	out = append(out, r...)
	return append(out, r[0])
}

// Segments 含闭合边
func (p Polygon) Segments() []Segment { return p.Closed().Segments() }

func (p Polygon) Bounds() Rectangle { return Bounds(p...) }

func (p Polygon) orbRing() orb.Ring {
	closed := p.Closed()
	r := make(orb.Ring, len(closed))
	for i, v := range closed {
		r[i] = v.Point()
	}
	return r
}

// Contains：点在环内（射线法）；先以包围盒过滤
func (p Polygon) Contains(loc Location) bool {
	if len(p.Ring()) < 3 || !p.Bounds().Contains(loc) {
		return false
	}
	return planar.RingContains(p.orbRing(), loc.Point())
}

// ContainsPolyLine：所有顶点在内且不与边界相交
func (p Polygon) ContainsPolyLine(line PolyLine) bool {
	for _, v := range line {
		if !p.Contains(v) {
			return false
		}
	}
	return !p.Closed().IntersectsPolyLine(line)
}

// Overlaps：任一顶点在内或与边界相交
func (p Polygon) Overlaps(line PolyLine) bool {
	if !p.Bounds().Intersects(line.Bounds()) {
		return false
	}
	for _, v := range line {
		if p.Contains(v) {
			return true
		}
	}
	return p.Closed().IntersectsPolyLine(line)
}

// Area：球面面积（平方米）
func (p Polygon) Area() float64 {
	if len(p.Ring()) < 3 {
		return 0
	}
	return math.Abs(geo.Area(p.orbRing()))
}

// HasDuplicateSegments：同一条边（不计方向）出现两次
func (p Polygon) HasDuplicateSegments() bool {
	segs := p.Segments()
	for i := range segs {
		for j := i + 1; j < len(segs); j++ {
			if segs[i].SameAs(segs[j]) {
				return true
			}
		}
	}
	return false
}

// planarSignedArea 经纬度平面有向面积；正值为逆时针
func (p Polygon) planarSignedArea() float64 {
	r := p.Ring()
	var s float64
	for i := range r {
		j := (i + 1) % len(r)
		s += r[i].Lon*r[j].Lat - r[j].Lon*r[i].Lat
	}
	return s / 2
}

// IsConvex：所有转向同号（共线忽略）
func (p Polygon) IsConvex() bool {
	r := p.Ring()
	if len(r) < 3 {
		return false
	}
	sign := 0
	for i := range r {
		o := orientation(r[i], r[(i+1)%len(r)], r[(i+2)%len(r)])
		switch {
		case o > epsilon:
			if sign < 0 {
				return false
			}
			sign = 1
		case o < -epsilon:
			if sign > 0 {
				return false
			}
			sign = -1
		}
	}
	return sign != 0
}

// ClipConvex：Sutherland–Hodgman 以凸多边形 clip 裁剪 p
// 约束：clip 必须为凸多边形；无交集时返回空
func (p Polygon) ClipConvex(clip Polygon) Polygon {
	c := clip.Ring()
	if clip.planarSignedArea() < 0 {
		c = Polygon(c).Closed().Reversed()[1:]
	}
	inside := func(a, b, pt Location) bool { return orientation(a, b, pt) >= 0 }
	out := append([]Location(nil), p.Ring()...)
	for i := range c {
		if len(out) == 0 {
			break
		}
		a, b := c[i], c[(i+1)%len(c)]
		in := out
		out = nil
		for j := range in {
			cur, prev := in[j], in[(j+len(in)-1)%len(in)]
			curIn, prevIn := inside(a, b, cur), inside(a, b, prev)
			if curIn != prevIn {
				out = append(out, lineIntersect(prev, cur, a, b))
			}
			if curIn {
				out = append(out, cur)
			}
		}
	}
	return out
}

// lineIntersect 直线 p1p2 与 p3p4 的交点（不限定在线段内）
func lineIntersect(p1, p2, p3, p4 Location) Location {
	x1, y1, x2, y2 := p1.Lon, p1.Lat, p2.Lon, p2.Lat
	x3, y3, x4, y4 := p3.Lon, p3.Lat, p4.Lon, p4.Lat
	d := (x1-x2)*(y3-y4) - (y1-y2)*(x3-x4)
	if d == 0 {
		return p2
	}
	t := ((x1-x3)*(y3-y4) - (y1-y3)*(x3-x4)) / d
	return Location{Lat: y1 + t*(y2-y1), Lon: x1 + t*(x2-x1)}
}

// overlapSamples 非凸情形下的采样网格边长
const overlapSamples = 64

// IntersectionArea：两多边形交集面积（平方米）
// 约束：任一方为凸多边形时精确裁剪，否则在包围盒交集上网格采样估计
func IntersectionArea(p, q Polygon) float64 {
	box, ok := p.Bounds().Intersection(q.Bounds())
	if !ok {
		return 0
	}
	switch {
	case q.IsConvex():
		return p.ClipConvex(q).Area()
	case p.IsConvex():
		return q.ClipConvex(p).Area()
	}
	boxArea := Polygon{
		{Lat: box.MinLat, Lon: box.MinLon}, {Lat: box.MinLat, Lon: box.MaxLon},
		{Lat: box.MaxLat, Lon: box.MaxLon}, {Lat: box.MaxLat, Lon: box.MinLon},
	}.Area()
	if boxArea == 0 {
		return 0
	}
	hits := 0
	dLat := (box.MaxLat - box.MinLat) / overlapSamples
	dLon := (box.MaxLon - box.MinLon) / overlapSamples
	for i := 0; i < overlapSamples; i++ {
		for j := 0; j < overlapSamples; j++ {
			loc := Location{Lat: box.MinLat + (float64(i)+0.5)*dLat, Lon: box.MinLon + (float64(j)+0.5)*dLon}
			if p.Contains(loc) && q.Contains(loc) {
				hits++
			}
		}
	}
	return boxArea * float64(hits) / float64(overlapSamples*overlapSamples)
}

// OverlapPercentage：交集面积占较小多边形面积的比例，范围 [0, 1]
func OverlapPercentage(p, q Polygon) float64 {
	smaller := math.Min(p.Area(), q.Area())
	if smaller == 0 {
		return 0
	}
	return math.Min(1, IntersectionArea(p, q)/smaller)
}
