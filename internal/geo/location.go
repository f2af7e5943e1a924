// 包 geo：检查共用的几何工具；距离、航向、角度、相交、包含与面积计算
// 约束：坐标为 WGS84 度；距离以米计，角度以度计
package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// dm7 为经纬度存储精度（1e-7 度）
const dm7 = 1e7

// EarthRadius：平均地球半径（米），距离与平面投影共用
const EarthRadius = 6371008.8

// Location：经纬度点
type Location struct {
	Lat float64
	Lon float64
}

// NewLocation 按 (lat, lon) 顺序构造
func NewLocation(lat, lon float64) Location {
	return Location{Lat: lat, Lon: lon}
}

// FromPoint 从 orb 点（lon, lat）转换
func FromPoint(p orb.Point) Location {
	return Location{Lat: p.Lat(), Lon: p.Lon()}
}

// Point 转为 orb 点
func (l Location) Point() orb.Point {
	return orb.Point{l.Lon, l.Lat}
}

// Key：按 dm7 网格取整后的坐标，作为 map 键
func (l Location) Key() [2]int64 {
	return [2]int64{int64(math.Round(l.Lat * dm7)), int64(math.Round(l.Lon * dm7))}
}

// Equals 在 dm7 精度下比较
func (l Location) Equals(o Location) bool {
	return l.Key() == o.Key()
}

func (l Location) String() string {
	return fmt.Sprintf("%.7f,%.7f", l.Lat, l.Lon)
}

// Bounds 返回单点矩形
func (l Location) Bounds() Rectangle {
	return Rectangle{MinLat: l.Lat, MinLon: l.Lon, MaxLat: l.Lat, MaxLon: l.Lon}
}

// Distance：两点间的大圆距离（米），haversine 公式
func Distance(a, b Location) float64 {
	lat1, lat2 := deg2rad(a.Lat), deg2rad(b.Lat)
	dLat := lat2 - lat1
	dLon := deg2rad(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadius * math.Asin(math.Min(1, math.Sqrt(h)))
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }

// Heading：a 到 b 的初始方位角，范围 [0, 360)
// 约束：两点重合时 ok=false
func Heading(a, b Location) (float64, bool) {
	if a.Equals(b) {
		return 0, false
	}
	h := geo.Bearing(a.Point(), b.Point())
	if h < 0 {
		h += 360
	}
	return h, true
}

// HeadingDifference：两航向的最小夹角，范围 [0, 180]；0 表示同向
func HeadingDifference(h1, h2 float64) float64 {
	d := math.Mod(math.Abs(h1-h2), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// Segment：两点构成的线段
type Segment struct {
	Start Location
	End   Location
}

func (s Segment) Length() float64 { return Distance(s.Start, s.End) }

// Heading 线段航向；零长度时 ok=false
func (s Segment) Heading() (float64, bool) { return Heading(s.Start, s.End) }

func (s Segment) Reversed() Segment { return Segment{Start: s.End, End: s.Start} }

// Equals 同向端点均相等
func (s Segment) Equals(o Segment) bool {
	return s.Start.Equals(o.Start) && s.End.Equals(o.End)
}

// SameAs 忽略方向比较
func (s Segment) SameAs(o Segment) bool {
	return s.Equals(o) || s.Equals(o.Reversed())
}

func (s Segment) Bounds() Rectangle { return Bounds(s.Start, s.End) }

// PolyLine：有序点序列
type PolyLine []Location

func (p PolyLine) First() Location { return p[0] }
func (p PolyLine) Last() Location  { return p[len(p)-1] }

// Segments 相邻点两两成段
func (p PolyLine) Segments() []Segment {
	if len(p) < 2 {
		return nil
	}
	out := make([]Segment, 0, len(p)-1)
	for i := 1; i < len(p); i++ {
		out = append(out, Segment{Start: p[i-1], End: p[i]})
	}
	return out
}

// Length 折线总长（米）
func (p PolyLine) Length() float64 {
	var total float64
	for i := 1; i < len(p); i++ {
		total += Distance(p[i-1], p[i])
	}
	return total
}

// IsClosed 首尾点相同
func (p PolyLine) IsClosed() bool {
	return len(p) > 2 && p.First().Equals(p.Last())
}

// Contains：位置是否为折线顶点
func (p PolyLine) Contains(loc Location) bool {
	for _, v := range p {
		if v.Equals(loc) {
			return true
		}
	}
	return false
}

// Reversed 返回反向副本
func (p PolyLine) Reversed() PolyLine {
	out := make(PolyLine, len(p))
	for i, v := range p {
		out[len(p)-1-i] = v
	}
	return out
}

// OverallHeading：首点到末点的航向
func (p PolyLine) OverallHeading() (float64, bool) {
	if len(p) < 2 {
		return 0, false
	}
	return Heading(p.First(), p.Last())
}

func (p PolyLine) Bounds() Rectangle { return Bounds(p...) }

func (p PolyLine) String() string {
	s := "["
	for i, v := range p {
		if i > 0 {
			s += " "
		}
		s += v.String()
	}
	return s + "]"
}

// LineString 转为 orb 折线
func (p PolyLine) LineString() orb.LineString {
	ls := make(orb.LineString, len(p))
	for i, v := range p {
		ls[i] = v.Point()
	}
	return ls
}

// Rectangle：经纬度包围盒
type Rectangle struct {
	MinLat, MinLon, MaxLat, MaxLon float64
}

// Bounds 计算点集包围盒；空输入返回零矩形
func Bounds(points ...Location) Rectangle {
	if len(points) == 0 {
		return Rectangle{}
	}
	r := points[0].Bounds()
	for _, p := range points[1:] {
		r = r.Extend(p)
	}
	return r
}

func (r Rectangle) bound() orb.Bound {
	return orb.Bound{Min: orb.Point{r.MinLon, r.MinLat}, Max: orb.Point{r.MaxLon, r.MaxLat}}
}

func fromBound(b orb.Bound) Rectangle {
	return Rectangle{MinLat: b.Min.Lat(), MinLon: b.Min.Lon(), MaxLat: b.Max.Lat(), MaxLon: b.Max.Lon()}
}

// Extend 扩展到包含 p
func (r Rectangle) Extend(p Location) Rectangle {
	return Rectangle{
		MinLat: math.Min(r.MinLat, p.Lat), MinLon: math.Min(r.MinLon, p.Lon),
		MaxLat: math.Max(r.MaxLat, p.Lat), MaxLon: math.Max(r.MaxLon, p.Lon),
	}
}

// Union 合并两个矩形
func (r Rectangle) Union(o Rectangle) Rectangle {
	return fromBound(r.bound().Union(o.bound()))
}

// Intersects 边界接触也算相交
func (r Rectangle) Intersects(o Rectangle) bool {
	return r.bound().Intersects(o.bound())
}

func (r Rectangle) Contains(p Location) bool {
	return r.bound().Contains(p.Point())
}

// Expand 四周外扩指定米数
func (r Rectangle) Expand(meters float64) Rectangle {
	return fromBound(geo.BoundPad(r.bound(), meters))
}

// Intersection 两矩形交集；不相交时 ok=false
func (r Rectangle) Intersection(o Rectangle) (Rectangle, bool) {
	if !r.Intersects(o) {
		return Rectangle{}, false
	}
	return Rectangle{
		MinLat: math.Max(r.MinLat, o.MinLat), MinLon: math.Max(r.MinLon, o.MinLon),
		MaxLat: math.Min(r.MaxLat, o.MaxLat), MaxLon: math.Min(r.MaxLon, o.MaxLon),
	}, true
}

// Center 矩形中心
func (r Rectangle) Center() Location {
	return Location{Lat: (r.MinLat + r.MaxLat) / 2, Lon: (r.MinLon + r.MaxLon) / 2}
}
