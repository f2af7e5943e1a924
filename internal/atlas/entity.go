// 包 atlas：检查所消费的最小内存道路图；节点、边、面、线、点与关系
// 背景：邻接关系在 Build 时建立；空间查询为线性扫描，不提供索引
package atlas

import (
	"fmt"
	"sort"
	"strings"

	"atlas-checks/internal/geo"
)

// sectionFactor：atlas id = osm id * 1e6 + 分段序号
const sectionFactor = 1_000_000

// OsmIdentifier 从 atlas id 还原 OSM id；反向边 id 为负
func OsmIdentifier(id int64) int64 {
	if id < 0 {
		id = -id
	}
	return id / sectionFactor
}

// ItemType：实体类别
type ItemType int

const (
	ItemNode ItemType = iota
	ItemEdge
	ItemArea
	ItemLine
	ItemPoint
	ItemRelation
)

var itemTypeNames = [...]string{"Node", "Edge", "Area", "Line", "Point", "Relation"}
var itemTypeShort = [...]string{"N", "E", "A", "L", "P", "R"}

func (t ItemType) String() string {
	if int(t) < len(itemTypeNames) {
		return itemTypeNames[t]
	}
	return fmt.Sprintf("ItemType(%d)", int(t))
}

// Short 单字母缩写，用于唯一标识 "E123"
func (t ItemType) Short() string {
	if int(t) < len(itemTypeShort) {
		return itemTypeShort[t]
	}
	return "?"
}

// ParseItemType 按名称或缩写解析（忽略大小写）
func ParseItemType(s string) (ItemType, error) {
	for i := range itemTypeNames {
		if strings.EqualFold(s, itemTypeNames[i]) || strings.EqualFold(s, itemTypeShort[i]) {
			return ItemType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown item type %q", s)
}

// Entity：所有图对象的公共视图
type Entity interface {
	Identifier() int64
	OsmIdentifier() int64
	Type() ItemType
	Tags() Tags
	Bounds() geo.Rectangle
}

// UniqueIdentifier：类别缩写 + atlas id
func UniqueIdentifier(e Entity) string {
	return fmt.Sprintf("%s%d", e.Type().Short(), e.Identifier())
}

// Country：iso_country_code 标签
func Country(e Entity) string {
	return e.Tags().Value(TagCountry)
}

// SortByIdentifier 按 id 升序原地排序
func SortByIdentifier[T Entity](items []T) {
	sort.Slice(items, func(i, j int) bool { return items[i].Identifier() < items[j].Identifier() })
}

type base struct {
	id   int64
	tags Tags
}

func (b *base) Identifier() int64    { return b.id }
func (b *base) OsmIdentifier() int64 { return OsmIdentifier(b.id) }
func (b *base) Tags() Tags           { return b.tags }

// Node：路网节点
type Node struct {
	base
	loc geo.Location
	in  []*Edge
	out []*Edge
}

func (n *Node) Type() ItemType         { return ItemNode }
func (n *Node) Location() geo.Location { return n.loc }
func (n *Node) Bounds() geo.Rectangle  { return n.loc.Bounds() }
func (n *Node) InEdges() []*Edge       { return n.in }
func (n *Node) OutEdges() []*Edge      { return n.out }

// ConnectedEdges 入边与出边的并集，按 id 升序
func (n *Node) ConnectedEdges() []*Edge {
	return mergeEdges(n.in, n.out)
}

// IsSyntheticBoundary：切片边界处生成的节点
func (n *Node) IsSyntheticBoundary() bool {
	return n.tags.Is(TagSyntheticBoundary, "yes", "existing")
}

// Edge：有向路段；双向道路由正负 id 的一对边表达
type Edge struct {
	base
	atlas *Atlas
	start *Node
	end   *Node
	line  geo.PolyLine
}

func (e *Edge) Type() ItemType            { return ItemEdge }
func (e *Edge) Atlas() *Atlas             { return e.atlas }
func (e *Edge) Start() *Node              { return e.start }
func (e *Edge) End() *Node                { return e.end }
func (e *Edge) PolyLine() geo.PolyLine    { return e.line }
func (e *Edge) Bounds() geo.Rectangle     { return e.line.Bounds() }
func (e *Edge) Length() float64           { return e.line.Length() }
func (e *Edge) IsMainEdge() bool          { return e.id > 0 }
func (e *Edge) MainEdgeIdentifier() int64 { return abs(e.id) }

// OutEdges 终点的出边（含本边的反向边，不含自身）
func (e *Edge) OutEdges() []*Edge {
	out := make([]*Edge, 0, len(e.end.out))
	for _, o := range e.end.out {
		if o != e {
			out = append(out, o)
		}
	}
	return out
}

// InEdges 起点的入边
func (e *Edge) InEdges() []*Edge { return e.start.in }

// ConnectedEdges 两端节点相连的所有边，不含自身
func (e *Edge) ConnectedEdges() []*Edge {
	all := mergeEdges(e.start.ConnectedEdges(), e.end.ConnectedEdges())
	out := all[:0]
	for _, c := range all {
		if c != e {
			out = append(out, c)
		}
	}
	return out
}

// ConnectedNodes 起点与终点
func (e *Edge) ConnectedNodes() []*Node {
	if e.start == e.end {
		return []*Node{e.start}
	}
	return []*Node{e.start, e.end}
}

// Reversed 反向边；不存在时 ok=false
func (e *Edge) Reversed() (*Edge, bool) {
	if e.atlas == nil {
		return nil, false
	}
	r := e.atlas.Edge(-e.id)
	return r, r != nil
}

func (e *Edge) HasReverse() bool {
	_, ok := e.Reversed()
	return ok
}

// IsReversedEdge：other 是否为本边的反向边
func (e *Edge) IsReversedEdge(other *Edge) bool {
	return other != nil && other.id == -e.id
}

// Highway 解析 highway 标签；缺失时 ok=false
func (e *Edge) Highway() (HighwayTag, bool) {
	return HighwayOf(e)
}

func (e *Edge) IsRoundabout() bool { return IsRoundabout(e) }

// IsClosed 起止为同一节点
func (e *Edge) IsClosed() bool { return e.start == e.end }

// OverallHeading 首点到末点的航向
func (e *Edge) OverallHeading() (float64, bool) { return e.line.OverallHeading() }

// Area：闭合面
type Area struct {
	base
	atlas *Atlas
	poly  geo.Polygon
}

func (a *Area) Type() ItemType        { return ItemArea }
func (a *Area) Atlas() *Atlas         { return a.atlas }
func (a *Area) Polygon() geo.Polygon  { return a.poly }
func (a *Area) Bounds() geo.Rectangle { return a.poly.Bounds() }

// Line：非路网折线（河流、边界等）
type Line struct {
	base
	line geo.PolyLine
}

func (l *Line) Type() ItemType         { return ItemLine }
func (l *Line) PolyLine() geo.PolyLine { return l.line }
func (l *Line) Bounds() geo.Rectangle  { return l.line.Bounds() }

// Point：非路网点
type Point struct {
	base
	loc geo.Location
}

func (p *Point) Type() ItemType         { return ItemPoint }
func (p *Point) Location() geo.Location { return p.loc }
func (p *Point) Bounds() geo.Rectangle  { return p.loc.Bounds() }

// Member：关系成员
type Member struct {
	Role   string
	Entity Entity
}

// Relation：成员集合；成员可以是关系
type Relation struct {
	base
	members  []Member
	declared int
}

func (r *Relation) Type() ItemType    { return ItemRelation }
func (r *Relation) Members() []Member { return r.members }

// AllMembersLoaded：声明的成员均存在于当前图中
func (r *Relation) AllMembersLoaded() bool { return len(r.members) == r.declared }

// IsMultiPolygon type=multipolygon
func (r *Relation) IsMultiPolygon() bool { return r.tags.Is("type", "multipolygon") }

// Bounds 所有叶子成员的包围盒
func (r *Relation) Bounds() geo.Rectangle {
	leaves := r.Flatten()
	if len(leaves) == 0 {
		return geo.Rectangle{}
	}
	b := leaves[0].Bounds()
	for _, l := range leaves[1:] {
		b = b.Union(l.Bounds())
	}
	return b
}

// Flatten：递归展开为叶子实体，按 (类别, id) 去重排序；环引用只访问一次
func (r *Relation) Flatten() []Entity {
	seen := map[*Relation]bool{}
	leaves := map[string]Entity{}
	var walk func(*Relation)
	walk = func(rel *Relation) {
		if seen[rel] {
			return
		}
		seen[rel] = true
		for _, m := range rel.members {
			if sub, ok := m.Entity.(*Relation); ok {
				walk(sub)
				continue
			}
			leaves[UniqueIdentifier(m.Entity)] = m.Entity
		}
	}
	walk(r)
	out := make([]Entity, 0, len(leaves))
	for _, e := range leaves {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type() != out[j].Type() {
			return out[i].Type() < out[j].Type()
		}
		return out[i].Identifier() < out[j].Identifier()
	})
	return out
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// mergeEdges 合并两个有序切片并去重
func mergeEdges(a, b []*Edge) []*Edge {
	out := make([]*Edge, 0, len(a)+len(b))
	seen := make(map[int64]bool, len(a)+len(b))
	for _, list := range [][]*Edge{a, b} {
		for _, e := range list {
			if !seen[e.id] {
				seen[e.id] = true
				out = append(out, e)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}
