package linear

import (
	"strings"

	"atlas-checks/internal/atlas"
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
	"atlas-checks/internal/flag"
	"atlas-checks/internal/walk"
)

// SinkIslandName：注册名，亦为配置键前缀
const SinkIslandName = "SinkIslandCheck"

var sinkIslandInstructions = []string{
	"This network does not allow vehicles to navigate out of it. Check for missing connections, and over restrictive access tags.",
}

var (
	parkingAmenities  = []string{"parking", "parking_space", "motorcycle_parking", "parking_entrance"}
	carAccessKeys     = []string{"motorcar", "motor_vehicle", "vehicle"}
	carAccessPermited = []string{"yes", "designated", "permissive"}
)

// SinkIslandCheck：车辆驶入后无法驶出的小路网
type SinkIslandCheck struct {
	*checks.BaseCheck
	treeSize          int
	minimumHighway    atlas.HighwayTag
	pedestrianNetwork bool
}

// NewSinkIslandCheck：按配置构造 SinkIslandCheck，缺省参数取内置默认值
func NewSinkIslandCheck(cfg *config.Configuration) *SinkIslandCheck {
	c := &SinkIslandCheck{}
	c.BaseCheck = checks.NewBaseCheck(SinkIslandName, cfg, c, sinkIslandInstructions...)
	p := checks.ParamsFor(SinkIslandName, cfg)
	c.treeSize = p.Int("tree.size", 50)
	c.minimumHighway = p.Highway("minimum.highway.type", atlas.HighwayService)
	c.pedestrianNetwork = p.Bool("filter.pedestrian.network", false)
	return c
}

func (c *SinkIslandCheck) ValidCheckForObject(e atlas.Entity) bool {
	edge, ok := asEdge(e)
	if !ok || !validSinkEdge(edge) || c.IsFlagged(edge.Identifier()) {
		return false
	}
	if highwayOrNo(edge).IsLessImportantThan(c.minimumHighway) || atlas.IsFerry(edge) {
		return false
	}
	return !(isServiceRoad(edge) && (withinParking(edge) || intersectsAirportOrBuilding(edge)))
}

func (c *SinkIslandCheck) Flag(e atlas.Entity) (*flag.CheckFlag, bool) {
	search := walk.Search{
		Next:  c.validOutEdges,
		Stop:  c.ignoreEdge,
		Limit: c.treeSize,
	}
	component := search.Run(e.(*atlas.Edge))

	all := append(append([]*atlas.Edge{}, component.Explored...), component.Terminal...)
	c.MarkAsFlagged(walk.Identifiers(all)...)

	switch {
	case !component.Halted:
		return c.CreateFlag(checks.Edges(all), c.LocalizedInstruction(0)), true
	case len(component.Terminal) > 0:
		return c.CreateFlag(checks.Edges(component.Terminal), c.LocalizedInstruction(0)), true
	}
	return nil, false
}

func (c *SinkIslandCheck) validOutEdges(edge *atlas.Edge) []*atlas.Edge {
	var out []*atlas.Edge
	seen := map[*atlas.Edge]bool{}
	for _, o := range edge.OutEdges() {
		if !seen[o] && validSinkEdge(o) {
			seen[o] = true
			out = append(out, o)
		}
	}
	atlas.SortByIdentifier(out)
	return out
}

// ignoreEdge：命中时搜索中止，连通范围视为可驶出
func (c *SinkIslandCheck) ignoreEdge(edge *atlas.Edge) bool {
	if c.IsFlagged(edge.Identifier()) {
		return true
	}
	if edge.End().Tags().Is(atlas.TagAmenity, parkingAmenities...) ||
		edge.Start().Tags().Is(atlas.TagAmenity, "parking_entrance") {
		return true
	}
	if edge.Start().IsSyntheticBoundary() || edge.End().IsSyntheticBoundary() {
		return true
	}
	if !c.pedestrianNetwork && atlas.HighwayAtLeast(edge, atlas.HighwayService) && connectedToPedestrian(edge) {
		return true
	}
	if isServiceRoad(edge) && intersectsAirportOrBuilding(edge) {
		return true
	}
	for _, o := range edge.OutEdges() {
		if atlas.IsFerry(o) && accessible(o) && carAccess(o, "no") {
			return true
		}
	}
	return false
}

func validSinkEdge(edge *atlas.Edge) bool {
	return atlas.IsCarNavigable(edge) && accessible(edge) && carAccess(edge, "yes") && !atlas.IsArea(edge)
}

func accessible(e atlas.Entity) bool {
	return !e.Tags().Is(atlas.TagAccess, "private")
}

// carAccess：按 motorcar > motor_vehicle > vehicle 的优先级取通行值
func carAccess(e atlas.Entity, def string) bool {
	value := def
	for _, key := range carAccessKeys {
		if v, ok := e.Tags().Get(key); ok {
			value = v
			break
		}
	}
	value = strings.ToLower(value)
	for _, permitted := range carAccessPermited {
		if value == permitted {
			return true
		}
	}
	return false
}

func isServiceRoad(e atlas.Entity) bool {
	h, ok := atlas.HighwayOf(e)
	return ok && h == atlas.HighwayService
}

func connectedToPedestrian(edge *atlas.Edge) bool {
	for _, c := range edge.ConnectedEdges() {
		if atlas.IsPedestrianNavigable(c) {
			return true
		}
	}
	return false
}

func withinParking(edge *atlas.Edge) bool {
	areas := edge.Atlas().AreasIntersecting(edge.Bounds(), func(a *atlas.Area) bool {
		return a.Tags().Is(atlas.TagAmenity, parkingAmenities...)
	})
	for _, a := range areas {
		if a.Polygon().ContainsPolyLine(edge.PolyLine()) {
			return true
		}
	}
	return false
}

func intersectsAirportOrBuilding(edge *atlas.Edge) bool {
	areas := edge.Atlas().AreasIntersecting(edge.Bounds(), func(a *atlas.Area) bool {
		return a.Tags().Has(atlas.TagAmenity) || atlas.IsBuilding(a) || a.Tags().Has("aeroway")
	})
	for _, a := range areas {
		if a.Polygon().Overlaps(edge.PolyLine()) {
			return true
		}
	}
	return false
}
