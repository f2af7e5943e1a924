package geo

import "math"

// LawOfCosinesAngle：三角形 a-b-c 在顶点 b 处的内角（度）
// 约束：180 表示三点共线直行；任一边长为 0 时返回 0
func LawOfCosinesAngle(a, b, c Location) float64 {
	ab := Distance(a, b)
	bc := Distance(b, c)
	ac := Distance(a, c)
	if ab == 0 || bc == 0 {
		return 0
	}
	cos := (ab*ab + bc*bc - ac*ac) / (2 * ab * bc)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

// SegmentAngle：相邻两段的夹角，边长取 |s1|、|s2| 与 s1 起点到 s2 终点
func SegmentAngle(s1, s2 Segment) float64 {
	a := s1.Length()
	b := s2.Length()
	c := Distance(s1.Start, s2.End)
	if a == 0 || b == 0 {
		return 0
	}
	cos := (a*a + b*b - c*c) / (2 * a * b)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

// VertexAngle：折线内部顶点处的航向变化
type VertexAngle struct {
	Degrees  float64
	Location Location
}

// Angles：每个内部顶点处前后两段的航向差；0 为直行，180 为掉头
// 约束：零长度线段跳过
func (p PolyLine) Angles() []VertexAngle {
	var out []VertexAngle
	segs := p.Segments()
	var prev *Segment
	var prevHeading float64
	for i := range segs {
		h, ok := segs[i].Heading()
		if !ok {
			continue
		}
		if prev != nil {
			out = append(out, VertexAngle{Degrees: HeadingDifference(prevHeading, h), Location: segs[i].Start})
		}
		prev = &segs[i]
		prevHeading = h
	}
	return out
}

// AnglesGreaterThanOrEqualTo 过滤出不小于阈值的顶点角
func (p PolyLine) AnglesGreaterThanOrEqualTo(threshold float64) []VertexAngle {
	var out []VertexAngle
	for _, a := range p.Angles() {
		if a.Degrees >= threshold {
			out = append(out, a)
		}
	}
	return out
}

// earthMeters：按经纬度弧长投影到平面米坐标
func earthMeters(l Location) (float64, float64) {
	return deg2rad(l.Lon) * EarthRadius, deg2rad(l.Lat) * EarthRadius
}

// QuadraticBezierDeviation：以 anchor 为控制点的二次贝塞尔曲线到 anchor 的最近距离（米）
// 约束：step<=0 时取 0.01
func QuadraticBezierDeviation(start, anchor, end Location, step float64) float64 {
	if step <= 0 {
		step = 0.01
	}
	x0, y0 := earthMeters(start)
	x1, y1 := earthMeters(anchor)
	x2, y2 := earthMeters(end)
	minimum := math.Inf(1)
	for t := 0.0; t <= 1; t += step {
		x := (1-t)*(1-t)*x0 + 2*t*(1-t)*x1 + t*t*x2
		y := (1-t)*(1-t)*y0 + 2*t*(1-t)*y1 + t*t*y2
		if d := math.Hypot(x-x1, y-y1); d < minimum {
			minimum = d
		}
	}
	return minimum
}

// CrossProduct：(b-a) 与 (b-c) 的平面叉积（经纬度坐标）
// 约束：负值表示逆时针，正值表示顺时针，0 表示共线
func CrossProduct(a, b, c Location) float64 {
	v1x, v1y := b.Lon-a.Lon, b.Lat-a.Lat
	v2x, v2y := b.Lon-c.Lon, b.Lat-c.Lat
	return v1x*v2y - v1y*v2x
}
