package atlas

import (
	"sort"

	"atlas-checks/internal/geo"
)

// Atlas：只读图快照，由 Builder 构建
type Atlas struct {
	name      string
	nodes     map[int64]*Node
	edges     map[int64]*Edge
	areas     map[int64]*Area
	lines     map[int64]*Line
	points    map[int64]*Point
	relations map[int64]*Relation

	sortedNodes     []*Node
	sortedEdges     []*Edge
	sortedAreas     []*Area
	sortedLines     []*Line
	sortedPoints    []*Point
	sortedRelations []*Relation
}

// Name 来源名称（文件名或构建时指定）
func (a *Atlas) Name() string { return a.name }

func (a *Atlas) Node(id int64) *Node         { return a.nodes[id] }
func (a *Atlas) Edge(id int64) *Edge         { return a.edges[id] }
func (a *Atlas) Area(id int64) *Area         { return a.areas[id] }
func (a *Atlas) Line(id int64) *Line         { return a.lines[id] }
func (a *Atlas) Point(id int64) *Point       { return a.points[id] }
func (a *Atlas) Relation(id int64) *Relation { return a.relations[id] }

// 以下列表均按 id 升序
func (a *Atlas) Nodes() []*Node         { return a.sortedNodes }
func (a *Atlas) Edges() []*Edge         { return a.sortedEdges }
func (a *Atlas) Areas() []*Area         { return a.sortedAreas }
func (a *Atlas) Lines() []*Line         { return a.sortedLines }
func (a *Atlas) Points() []*Point       { return a.sortedPoints }
func (a *Atlas) Relations() []*Relation { return a.sortedRelations }

// Size 实体总数
func (a *Atlas) Size() int {
	return len(a.nodes) + len(a.edges) + len(a.areas) + len(a.lines) + len(a.points) + len(a.relations)
}

// Entities：先节点、边、面、线、点，最后关系
func (a *Atlas) Entities() []Entity {
	out := make([]Entity, 0, a.Size())
	for _, n := range a.sortedNodes {
		out = append(out, n)
	}
	for _, e := range a.sortedEdges {
		out = append(out, e)
	}
	for _, ar := range a.sortedAreas {
		out = append(out, ar)
	}
	for _, l := range a.sortedLines {
		out = append(out, l)
	}
	for _, p := range a.sortedPoints {
		out = append(out, p)
	}
	for _, r := range a.sortedRelations {
		out = append(out, r)
	}
	return out
}

// Entity 按类别与 id 查找
func (a *Atlas) Entity(t ItemType, id int64) (Entity, bool) {
	var e Entity
	switch t {
	case ItemNode:
		if v := a.nodes[id]; v != nil {
			e = v
		}
	case ItemEdge:
		if v := a.edges[id]; v != nil {
			e = v
		}
	case ItemArea:
		if v := a.areas[id]; v != nil {
			e = v
		}
	case ItemLine:
		if v := a.lines[id]; v != nil {
			e = v
		}
	case ItemPoint:
		if v := a.points[id]; v != nil {
			e = v
		}
	case ItemRelation:
		if v := a.relations[id]; v != nil {
			e = v
		}
	}
	return e, e != nil
}

// EdgesIntersecting：包围盒与 rect 相交且满足 pred 的边（线性扫描）
func (a *Atlas) EdgesIntersecting(rect geo.Rectangle, pred func(*Edge) bool) []*Edge {
	var out []*Edge
	for _, e := range a.sortedEdges {
		if e.Bounds().Intersects(rect) && (pred == nil || pred(e)) {
			out = append(out, e)
		}
	}
	return out
}

// AreasIntersecting：包围盒与 rect 相交且满足 pred 的面（线性扫描）
func (a *Atlas) AreasIntersecting(rect geo.Rectangle, pred func(*Area) bool) []*Area {
	var out []*Area
	for _, ar := range a.sortedAreas {
		if ar.Bounds().Intersects(rect) && (pred == nil || pred(ar)) {
			out = append(out, ar)
		}
	}
	return out
}

// NodesWithin：落在 rect 内的节点
func (a *Atlas) NodesWithin(rect geo.Rectangle) []*Node {
	var out []*Node
	for _, n := range a.sortedNodes {
		if rect.Contains(n.loc) {
			out = append(out, n)
		}
	}
	return out
}

// Countries 出现过的 iso_country_code，升序
func (a *Atlas) Countries() []string {
	set := map[string]bool{}
	for _, e := range a.Entities() {
		if c := Country(e); c != "" {
			set[c] = true
		}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
