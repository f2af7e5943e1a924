// 包 flag：检查产出的标记；承载被标记对象、说明文本与标记点，并转换为 GeoJSON 与任务载荷
package flag

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"atlas-checks/internal/atlas"
	"atlas-checks/internal/geo"
)

// NoCountry：对象均无国家标签时的占位
const NoCountry = "N/A"

// FlaggedObject：被标记对象的快照
type FlaggedObject struct {
	Type          atlas.ItemType
	Identifier    int64
	OsmIdentifier int64
	Country       string
	Tags          atlas.Tags
	Geometry      orb.Geometry
}

// UniqueIdentifier "E123" 形式
func (o FlaggedObject) UniqueIdentifier() string {
	return o.Type.Short() + strconv.FormatInt(o.Identifier, 10)
}

// CheckFlag：单个问题标记
type CheckFlag struct {
	Identifier    string
	ChallengeName string
	instructions  []string
	objects       []FlaggedObject
	index         map[string]bool
	points        []geo.Location
}

// New 以标识符创建空标记
func New(identifier string) *CheckFlag {
	return &CheckFlag{Identifier: identifier, index: map[string]bool{}}
}

// TaskIdentifier：去重后升序的 atlas id 以逗号连接
func TaskIdentifier(entities []atlas.Entity) string {
	seen := map[int64]bool{}
	ids := make([]int64, 0, len(entities))
	for _, e := range entities {
		if !seen[e.Identifier()] {
			seen[e.Identifier()] = true
			ids = append(ids, e.Identifier())
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// AddInstruction 空串忽略
func (f *CheckFlag) AddInstruction(s string) *CheckFlag {
	if strings.TrimSpace(s) != "" {
		f.instructions = append(f.instructions, s)
	}
	return f
}

// Instructions 原始说明列表
func (f *CheckFlag) Instructions() []string { return f.instructions }

// InstructionText：编号后的说明，"1. x\n2. y"
func (f *CheckFlag) InstructionText() string {
	var b strings.Builder
	for i, s := range f.instructions {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, s)
	}
	return b.String()
}

// AddPoint 追加标记点
func (f *CheckFlag) AddPoint(locs ...geo.Location) *CheckFlag {
	f.points = append(f.points, locs...)
	return f
}

// Points 标记点
func (f *CheckFlag) Points() []geo.Location { return f.points }

// AddObject：按对象类别记录几何；关系展开为叶子成员；重复对象忽略
func (f *CheckFlag) AddObject(e atlas.Entity) *CheckFlag {
	if e == nil {
		return f
	}
	if rel, ok := e.(*atlas.Relation); ok {
		for _, leaf := range rel.Flatten() {
			f.AddObject(leaf)
		}
		return f
	}
	obj := FlaggedObject{
		Type:          e.Type(),
		Identifier:    e.Identifier(),
		OsmIdentifier: e.OsmIdentifier(),
		Country:       atlas.Country(e),
		Tags:          e.Tags().Clone(),
		Geometry:      geometryOf(e),
	}
	if f.index == nil {
		f.index = map[string]bool{}
	}
	if f.index[obj.UniqueIdentifier()] {
		return f
	}
	f.index[obj.UniqueIdentifier()] = true
	f.objects = append(f.objects, obj)
	return f
}

// AddObjects 批量添加
func (f *CheckFlag) AddObjects(entities ...atlas.Entity) *CheckFlag {
	for _, e := range entities {
		f.AddObject(e)
	}
	return f
}

// Objects 已记录对象（添加顺序）
func (f *CheckFlag) Objects() []FlaggedObject { return f.objects }

// UniqueIdentifiers 升序的 "E123" 列表
func (f *CheckFlag) UniqueIdentifiers() []string {
	out := make([]string, 0, len(f.objects))
	for _, o := range f.objects {
		out = append(out, o.UniqueIdentifier())
	}
	sort.Strings(out)
	return out
}

// Country：第一个带国家标签对象的国家
func (f *CheckFlag) Country() string {
	for _, o := range f.objects {
		if o.Country != "" {
			return o.Country
		}
	}
	return NoCountry
}

// PolyLines 线与面对象的几何
func (f *CheckFlag) PolyLines() []geo.PolyLine {
	var out []geo.PolyLine
	for _, o := range f.objects {
		switch g := o.Geometry.(type) {
		case orb.LineString:
			out = append(out, lineFrom(g))
		case orb.Polygon:
			if len(g) > 0 {
				out = append(out, lineFrom(orb.LineString(g[0])))
			}
		}
	}
	return out
}

// Bounds 所有对象与标记点的包围盒
func (f *CheckFlag) Bounds() geo.Rectangle {
	var all []geo.Location
	for _, o := range f.objects {
		all = append(all, lineFrom(pointsOf(o.Geometry))...)
	}
	all = append(all, f.points...)
	return geo.Bounds(all...)
}

func geometryOf(e atlas.Entity) orb.Geometry {
	switch v := e.(type) {
	case *atlas.Node:
		return v.Location().Point()
	case *atlas.Point:
		return v.Location().Point()
	case *atlas.Edge:
		return v.PolyLine().LineString()
	case *atlas.Line:
		return v.PolyLine().LineString()
	case *atlas.Area:
		return orb.Polygon{orb.Ring(v.Polygon().Closed().LineString())}
	}
	b := e.Bounds()
	return b.Center().Point()
}

func pointsOf(g orb.Geometry) orb.LineString {
	switch v := g.(type) {
	case orb.Point:
		return orb.LineString{v}
	case orb.LineString:
		return v
	case orb.Polygon:
		if len(v) > 0 {
			return orb.LineString(v[0])
		}
	}
	return nil
}

func lineFrom(ls orb.LineString) geo.PolyLine {
	out := make(geo.PolyLine, len(ls))
	for i, p := range ls {
		out[i] = geo.FromPoint(p)
	}
	return out
}
