package walk

import (
	"errors"
	"sort"

	"atlas-checks/internal/atlas"
	"atlas-checks/internal/geo"
)

// ErrEmptyWay 无法还原原始 way
var ErrEmptyWay = errors.New("walk: empty way")

// OsmWayEdges：与 edge 同一 OSM way、同方向（正向/反向）且相连的全部分段，按 id 升序
func OsmWayEdges(edge *atlas.Edge) []*atlas.Edge {
	if edge == nil {
		return nil
	}
	osm := edge.OsmIdentifier()
	main := edge.IsMainEdge()
	same := func(e *atlas.Edge) bool {
		return e.OsmIdentifier() == osm && e.IsMainEdge() == main
	}
	w := NewEdgeWalker(func(e *atlas.Edge, queued map[*atlas.Edge]bool) []*atlas.Edge {
		var out []*atlas.Edge
		for _, c := range e.ConnectedEdges() {
			if same(c) && !queued[c] {
				out = append(out, c)
			}
		}
		return out
	}, nil)
	edges := w.Collect(edge)
	atlas.SortByIdentifier(edges)
	return edges
}

// OriginalWayGeometry：按分段顺序拼接还原分段前的 way 几何
// 约束：oneway=-1 时整体反向
func OriginalWayGeometry(edge *atlas.Edge) (geo.PolyLine, error) {
	sections := OsmWayEdges(edge)
	if len(sections) == 0 {
		return nil, ErrEmptyWay
	}
	reversed := atlas.OneWay(edge) == atlas.OneWayReversed
	if reversed {
		for i, j := 0, len(sections)-1; i < j; i, j = i+1, j-1 {
			sections[i], sections[j] = sections[j], sections[i]
		}
	}
	var out geo.PolyLine
	for _, s := range sections {
		line := s.PolyLine()
		if reversed {
			line = line.Reversed()
		}
		if len(out) > 0 && len(line) > 0 && out.Last().Equals(line.First()) {
			line = line[1:]
		}
		out = append(out, line...)
	}
	return out, nil
}

// IsClosedWay：沿同 OSM id 的正向出边前进，回到已访问的边即闭合；单段闭合边直接成立
func IsClosedWay(edge *atlas.Edge) bool {
	if edge.IsClosed() {
		return true
	}
	visited := map[int64]bool{}
	cur := edge
	for cur != nil {
		if visited[cur.Identifier()] {
			return true
		}
		visited[cur.Identifier()] = true
		var next *atlas.Edge
		for _, out := range cur.OutEdges() {
			if out.IsMainEdge() && out.OsmIdentifier() == edge.OsmIdentifier() && !cur.IsReversedEdge(out) {
				next = out
				break
			}
		}
		cur = next
	}
	return false
}

// RelationMemberSize：按 (类别, OSM id) 去重的成员数；同 OSM id 的点与节点合并计数
func RelationMemberSize(rel *atlas.Relation) int {
	type key struct {
		t   atlas.ItemType
		osm int64
	}
	seen := map[key]bool{}
	for _, m := range rel.Members() {
		t := m.Entity.Type()
		if t == atlas.ItemPoint {
			t = atlas.ItemNode
		}
		seen[key{t: t, osm: m.Entity.OsmIdentifier()}] = true
	}
	return len(seen)
}

// RoundaboutEdges：与 edge 相连的全部正向环岛边，沿终点→起点顺序排列
// 约束：无法串接的边按 id 追加在末尾
func RoundaboutEdges(edge *atlas.Edge) []*atlas.Edge {
	isRoundabout := func(e *atlas.Edge) bool { return e.IsMainEdge() && e.IsRoundabout() }
	w := NewEdgeWalker(func(e *atlas.Edge, queued map[*atlas.Edge]bool) []*atlas.Edge {
		var out []*atlas.Edge
		for _, c := range e.ConnectedEdges() {
			if isRoundabout(c) && !queued[c] {
				out = append(out, c)
			}
		}
		return out
	}, isRoundabout)
	set := w.Collect(edge)
	if len(set) == 0 {
		return nil
	}
	atlas.SortByIdentifier(set)
	remaining := make(map[*atlas.Edge]bool, len(set))
	for _, e := range set {
		remaining[e] = true
	}
	ordered := []*atlas.Edge{edge}
	delete(remaining, edge)
	cur := edge
	for {
		var next *atlas.Edge
		for _, out := range cur.OutEdges() {
			if remaining[out] {
				next = out
				break
			}
		}
		if next == nil {
			break
		}
		ordered = append(ordered, next)
		delete(remaining, next)
		cur = next
	}
	for _, e := range set {
		if remaining[e] {
			ordered = append(ordered, e)
		}
	}
	return ordered
}

// Identifiers 边 id 列表（保持顺序）
func Identifiers(edges []*atlas.Edge) []int64 {
	out := make([]int64, len(edges))
	for i, e := range edges {
		out[i] = e.Identifier()
	}
	return out
}

// SortedIdentifiers 升序 id 列表
func SortedIdentifiers(edges []*atlas.Edge) []int64 {
	out := Identifiers(edges)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
