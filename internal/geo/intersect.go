package geo

import "math"

const epsilon = 1e-12

// snap 将坐标取整到 dm7 网格，保证与顶点比较时一致
func snap(l Location) Location {
	k := l.Key()
	return Location{Lat: float64(k[0]) / dm7, Lon: float64(k[1]) / dm7}
}

// Intersection：两线段的唯一交点（经纬度平面参数法）
// 约束：平行或共线时 ok=false；端点接触视为相交
func (s Segment) Intersection(o Segment) (Location, bool) {
	x1, y1 := s.Start.Lon, s.Start.Lat
	x2, y2 := s.End.Lon, s.End.Lat
	x3, y3 := o.Start.Lon, o.Start.Lat
	x4, y4 := o.End.Lon, o.End.Lat
	d := (x1-x2)*(y3-y4) - (y1-y2)*(x3-x4)
	if math.Abs(d) < epsilon*epsilon {
		return Location{}, false
	}
	t := ((x1-x3)*(y3-y4) - (y1-y3)*(x3-x4)) / d
	u := -((x1-x2)*(y1-y3) - (y1-y2)*(x1-x3)) / d
	if t < -epsilon || t > 1+epsilon || u < -epsilon || u > 1+epsilon {
		return Location{}, false
	}
	return snap(Location{Lat: y1 + t*(y2-y1), Lon: x1 + t*(x2-x1)}), true
}

func orientation(a, b, c Location) float64 {
	return (b.Lon-a.Lon)*(c.Lat-a.Lat) - (b.Lat-a.Lat)*(c.Lon-a.Lon)
}

func onSegment(s Segment, p Location) bool {
	return p.Lon >= math.Min(s.Start.Lon, s.End.Lon)-epsilon && p.Lon <= math.Max(s.Start.Lon, s.End.Lon)+epsilon &&
		p.Lat >= math.Min(s.Start.Lat, s.End.Lat)-epsilon && p.Lat <= math.Max(s.Start.Lat, s.End.Lat)+epsilon
}

// Intersects：相交、接触或共线重叠
func (s Segment) Intersects(o Segment) bool {
	if _, ok := s.Intersection(o); ok {
		return true
	}
	return s.Overlaps(o) || s.touchesCollinear(o)
}

func (s Segment) collinear(o Segment) bool {
	return math.Abs(orientation(s.Start, s.End, o.Start)) < epsilon && math.Abs(orientation(s.Start, s.End, o.End)) < epsilon
}

func (s Segment) touchesCollinear(o Segment) bool {
	if !s.collinear(o) {
		return false
	}
	return onSegment(s, o.Start) || onSegment(s, o.End) || onSegment(o, s.Start) || onSegment(o, s.End)
}

// Overlaps：共线且共享正长度的子线段
func (s Segment) Overlaps(o Segment) bool {
	lo, hi, ok := s.overlapRange(o)
	return ok && hi-lo > epsilon
}

// overlapRange 以 s 的参数 t 表示共线重叠区间
func (s Segment) overlapRange(o Segment) (float64, float64, bool) {
	if !s.collinear(o) {
		return 0, 0, false
	}
	dx, dy := s.End.Lon-s.Start.Lon, s.End.Lat-s.Start.Lat
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return 0, 0, false
	}
	param := func(p Location) float64 {
		return ((p.Lon-s.Start.Lon)*dx + (p.Lat-s.Start.Lat)*dy) / l2
	}
	a, b := param(o.Start), param(o.End)
	if a > b {
		a, b = b, a
	}
	lo, hi := math.Max(0, a), math.Min(1, b)
	if lo > hi {
		return 0, 0, false
	}
	return lo, hi, true
}

func (s Segment) at(t float64) Location {
	return snap(Location{Lat: s.Start.Lat + t*(s.End.Lat-s.Start.Lat), Lon: s.Start.Lon + t*(s.End.Lon-s.Start.Lon)})
}

type locationSet struct {
	seen map[[2]int64]bool
	list []Location
}

func (ls *locationSet) add(l Location) {
	if ls.seen == nil {
		ls.seen = map[[2]int64]bool{}
	}
	if ls.seen[l.Key()] {
		return
	}
	ls.seen[l.Key()] = true
	ls.list = append(ls.list, l)
}

// Intersections：两条折线所有交点（去重，按发现顺序）
// 约束：共线重叠段取重叠区间端点
func (p PolyLine) Intersections(other PolyLine) []Location {
	var out locationSet
	for _, s := range p.Segments() {
		for _, o := range other.Segments() {
			if !s.Bounds().Intersects(o.Bounds()) {
				continue
			}
			if loc, ok := s.Intersection(o); ok {
				out.add(loc)
				continue
			}
			if lo, hi, ok := s.overlapRange(o); ok {
				out.add(s.at(lo))
				out.add(s.at(hi))
			}
		}
	}
	return out.list
}

// IntersectsPolyLine 任一线段相交即为真
func (p PolyLine) IntersectsPolyLine(other PolyLine) bool {
	if !p.Bounds().Intersects(other.Bounds()) {
		return false
	}
	for _, s := range p.Segments() {
		for _, o := range other.Segments() {
			if s.Intersects(o) {
				return true
			}
		}
	}
	return false
}

// SelfIntersections：折线自相交位置
// 约束：相邻线段仅在共线折返时计入；闭合折线首尾段视为相邻
func (p PolyLine) SelfIntersections() []Location {
	segs := p.Segments()
	closed := p.IsClosed()
	var out locationSet
	for i := 0; i < len(segs); i++ {
		for j := i + 1; j < len(segs); j++ {
			adjacent := j == i+1 || (closed && i == 0 && j == len(segs)-1)
			if adjacent {
				if lo, hi, ok := segs[i].overlapRange(segs[j]); ok && hi-lo > epsilon {
					out.add(segs[i].at(lo))
					out.add(segs[i].at(hi))
				}
				continue
			}
			if !segs[i].Bounds().Intersects(segs[j].Bounds()) {
				continue
			}
			if loc, ok := segs[i].Intersection(segs[j]); ok {
				out.add(loc)
			} else if lo, hi, ok := segs[i].overlapRange(segs[j]); ok {
				out.add(segs[i].at(lo))
				out.add(segs[i].at(hi))
			}
		}
	}
	return out.list
}

// ExplicitIntersections：两折线的每个交点都同时是双方的顶点
func ExplicitIntersections(a, b PolyLine) bool {
	for _, loc := range a.Intersections(b) {
		if !a.Contains(loc) || !b.Contains(loc) {
			return false
		}
	}
	return true
}

// DuplicateLocation：第一个重复出现的顶点；闭合折线的闭合点不计
func (p PolyLine) DuplicateLocation() (Location, bool) {
	pts := p
	if p.IsClosed() {
		pts = p[:len(p)-1]
	}
	seen := map[[2]int64]bool{}
	for _, v := range pts {
		if seen[v.Key()] {
			return v, true
		}
		seen[v.Key()] = true
	}
	return Location{}, false
}
