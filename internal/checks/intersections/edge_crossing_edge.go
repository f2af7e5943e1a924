package intersections

import (
	"sort"
	"sync"

	"atlas-checks/internal/atlas"
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
	"atlas-checks/internal/flag"
	"atlas-checks/internal/geo"
	"atlas-checks/internal/walk"
)

// EdgeCrossingEdgeName：注册名，亦为配置键前缀
const EdgeCrossingEdgeName = "EdgeCrossingEdgeCheck"

var edgeCrossingEdgeInstructions = []string{
	"The roads with ids {0} invalidly cross each other. If two roads are crossing each other, then they should have nodes at intersection locations unless they are explicitly marked as crossing. Otherwise, crossing roads should have different layer tags.",
}

const defaultIndoorMapping = "indoor->*|highway->corridor,steps|level->*"

// navigability：参与交叉判定的道路类别
type navigability struct {
	car        bool
	pedestrian bool
}

func (n navigability) accepts(e atlas.Entity) bool {
	car, ped := atlas.IsCarNavigable(e), atlas.IsPedestrianNavigable(e)
	switch {
	case n.car && car, n.pedestrian && ped:
		return true
	case !n.car && !n.pedestrian:
		return !car && !ped
	}
	return false
}

type cluster struct {
	locations []geo.Location
	edges     []*atlas.Edge
}

// EdgeCrossingEdgeCheck：同层相交却没有共享节点的道路
type EdgeCrossingEdgeCheck struct {
	*checks.BaseCheck
	edges          navigability
	crossing       navigability
	minimumHighway atlas.HighwayTag
	maximumHighway atlas.HighwayTag
	indoor         *checks.TaggableFilter
	clusterMeters  float64

	mu       sync.Mutex
	clusters map[int64]*cluster
}

// NewEdgeCrossingEdgeCheck：按配置构造 EdgeCrossingEdgeCheck，缺省参数取内置默认值
func NewEdgeCrossingEdgeCheck(cfg *config.Configuration) *EdgeCrossingEdgeCheck {
	c := &EdgeCrossingEdgeCheck{clusters: map[int64]*cluster{}}
	c.BaseCheck = checks.NewBaseCheck(EdgeCrossingEdgeName, cfg, c, edgeCrossingEdgeInstructions...)
	p := checks.ParamsFor(EdgeCrossingEdgeName, cfg)
	c.minimumHighway = p.Highway("minimum.highway.type", atlas.HighwayNo)
	c.maximumHighway = p.Highway("maximum.highway.type", atlas.HighwayMotorway)
	c.edges = navigability{car: p.Bool("car.navigable", true), pedestrian: p.Bool("pedestrian.navigable", false)}
	c.crossing = navigability{
		car:        p.Bool("crossing.car.navigable", true),
		pedestrian: p.Bool("crossing.pedestrian.navigable", false),
	}
	c.indoor = p.Filter("indoor.mapping", defaultIndoorMapping)
	c.clusterMeters = p.Float("cluster.distance", 500)
	return c
}

// Clear 同时丢弃尚未输出的交叉簇
func (c *EdgeCrossingEdgeCheck) Clear() {
	c.BaseCheck.Clear()
	c.mu.Lock()
	c.clusters = map[int64]*cluster{}
	c.mu.Unlock()
}

func (c *EdgeCrossingEdgeCheck) ValidCheckForObject(e atlas.Entity) bool {
	edge, ok := e.(*atlas.Edge)
	return ok && c.validCrossingEdge(edge, c.edges)
}

func (c *EdgeCrossingEdgeCheck) Flag(e atlas.Entity) (*flag.CheckFlag, bool) {
	edge := e.(*atlas.Edge)
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.clusters[edge.Identifier()]; !ok {
		collected := walk.NewEdgeWalker(func(cur *atlas.Edge, _ map[*atlas.Edge]bool) []*atlas.Edge {
			return c.invalidCrossings(cur)
		}, nil).Collect(edge)
		if len(collected) <= 1 {
			return nil, false
		}
		c.clusterIntersections(c.intersectionPairs(collected))
	}
	cl, ok := c.clusters[edge.Identifier()]
	if !ok {
		return nil, false
	}
	for _, member := range cl.edges {
		delete(c.clusters, member.Identifier())
		c.MarkAsFlagged(member.Identifier())
	}
	osm := map[int64]bool{}
	var ids []int64
	for _, member := range cl.edges {
		if !osm[member.OsmIdentifier()] {
			osm[member.OsmIdentifier()] = true
			ids = append(ids, member.OsmIdentifier())
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return c.CreateFlag(checks.Edges(cl.edges), c.LocalizedInstruction(0, ids), cl.locations...), true
}

func (c *EdgeCrossingEdgeCheck) validCrossingEdge(edge *atlas.Edge, nav navigability) bool {
	if !edge.IsMainEdge() || c.IsFlagged(edge.Identifier()) || edge.Tags().Has(atlas.TagArea) || c.indoor.Test(edge.Tags()) {
		return false
	}
	h, ok := edge.Highway()
	if !ok || h == atlas.HighwayCrossing || !nav.accepts(edge) {
		return false
	}
	return h.IsMoreImportantThanOrEqualTo(c.minimumHighway) && h.IsLessImportantThanOrEqualTo(c.maximumHighway)
}

// invalidCrossings：包围盒相交的其他 way 上存在非法交点的边
func (c *EdgeCrossingEdgeCheck) invalidCrossings(edge *atlas.Edge) []*atlas.Edge {
	candidates := edge.Atlas().EdgesIntersecting(edge.Bounds(), func(o *atlas.Edge) bool {
		return o.Identifier() != edge.Identifier() && c.validCrossingEdge(o, c.crossing)
	})
	var out []*atlas.Edge
	for _, o := range candidates {
		if o.OsmIdentifier() != edge.OsmIdentifier() && len(invalidIntersections(edge, o)) > 0 {
			out = append(out, o)
		}
	}
	return out
}

// invalidIntersections：既非双方顶点、层级又相同的交点
func invalidIntersections(a, b *atlas.Edge) []geo.Location {
	la, lb := a.PolyLine(), b.PolyLine()
	if impliedLayer(a) != impliedLayer(b) {
		return nil
	}
	var out []geo.Location
	for _, loc := range la.Intersections(lb) {
		if !(la.Contains(loc) && lb.Contains(loc)) {
			out = append(out, loc)
		}
	}
	return out
}

type intersectionPair struct {
	location geo.Location
	edge     *atlas.Edge
}

func (c *EdgeCrossingEdgeCheck) intersectionPairs(edges []*atlas.Edge) []intersectionPair {
	var out []intersectionPair
	for _, e := range edges {
		for _, o := range edges {
			if o == e {
				continue
			}
			for _, loc := range invalidIntersections(e, o) {
				out = append(out, intersectionPair{location: loc, edge: e})
			}
		}
	}
	return out
}

// clusterIntersections：距离不超过 cluster.distance 的交点归为一簇（BFS）
func (c *EdgeCrossingEdgeCheck) clusterIntersections(pairs []intersectionPair) {
	used := make([]bool, len(pairs))
	for i := range pairs {
		if used[i] {
			continue
		}
		cl := &cluster{}
		seenLoc := map[[2]int64]bool{}
		seenEdge := map[*atlas.Edge]bool{}
		queue := []int{i}
		used[i] = true
		for len(queue) > 0 {
			cur := pairs[queue[0]]
			queue = queue[1:]
			if !seenLoc[cur.location.Key()] {
				seenLoc[cur.location.Key()] = true
				cl.locations = append(cl.locations, cur.location)
			}
			if !seenEdge[cur.edge] {
				seenEdge[cur.edge] = true
				cl.edges = append(cl.edges, cur.edge)
			}
			for j := range pairs {
				if !used[j] && geo.Distance(cur.location, pairs[j].location) <= c.clusterMeters {
					used[j] = true
					queue = append(queue, j)
				}
			}
		}
		atlas.SortByIdentifier(cl.edges)
		for _, e := range cl.edges {
			c.clusters[e.Identifier()] = cl
		}
	}
}
