package linear

import (
	"atlas-checks/internal/atlas"
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
	"atlas-checks/internal/flag"
	"atlas-checks/internal/geo"
	"atlas-checks/internal/walk"
)

// InconsistentRoadClassificationName：注册名，亦为配置键前缀
const InconsistentRoadClassificationName = "InconsistentRoadClassificationCheck"

var inconsistentRoadClassificationInstructions = []string{
	"Road classification inconsistency exists. Way {0,number,#} starts off as {1}.",
	"Way {0,number,#} is identified as {1}.",
	"Way {0,number,#} goes back to {1} and creates inconsistency.",
	"If this edge is part of a curved road, then this flag might not require edits or the road classification needs to be modified",
}

const twoConnectedEdges = 2

// InconsistentRoadClassificationCheck：同一方向上道路等级短暂改变后又恢复
type InconsistentRoadClassificationCheck struct {
	*checks.BaseCheck
	minimumHighway  atlas.HighwayTag
	maximumLength   float64
	directionChange float64
	longEdgeMeters  float64
}

// NewInconsistentRoadClassificationCheck：按配置构造 InconsistentRoadClassificationCheck，缺省参数取内置默认值
func NewInconsistentRoadClassificationCheck(cfg *config.Configuration) *InconsistentRoadClassificationCheck {
	c := &InconsistentRoadClassificationCheck{}
	c.BaseCheck = checks.NewBaseCheck(InconsistentRoadClassificationName, cfg, c, inconsistentRoadClassificationInstructions...)
	p := checks.ParamsFor(InconsistentRoadClassificationName, cfg)
	c.minimumHighway = p.Highway("minimum.highway.type", atlas.HighwayTertiaryLink)
	c.maximumLength = p.Float("maximum.edge.length", 200)
	c.directionChange = p.Float("maximum.direction.change.degrees", 30)
	c.longEdgeMeters = p.Float("long.edge.threshold", 1000)
	return c
}

func (c *InconsistentRoadClassificationCheck) ValidCheckForObject(e atlas.Entity) bool {
	edge, ok := asEdge(e)
	if !ok || !edge.IsMainEdge() || c.IsFlagged(edge.OsmIdentifier()) {
		return false
	}
	h := highwayOrNo(edge)
	if h.IsLessImportantThan(c.minimumHighway) || h.IsLink() || edge.IsRoundabout() {
		return false
	}
	if _, ok := edge.OverallHeading(); !ok {
		return false
	}
	// 同一条 way 在此之后仍有延续的边不作为起点
	for _, o := range edge.OutEdges() {
		if o.MainEdgeIdentifier() != edge.MainEdgeIdentifier() && o.OsmIdentifier() == edge.OsmIdentifier() {
			return false
		}
	}
	return true
}

type inconsistency struct {
	middle    *atlas.Edge
	following []*atlas.Edge
}

func (c *InconsistentRoadClassificationCheck) Flag(e atlas.Entity) (*flag.CheckFlag, bool) {
	edge := e.(*atlas.Edge)
	found := c.findInconsistencies(edge)
	if len(found) == 0 {
		return nil, false
	}
	reference := highwayOrNo(edge)
	f := c.CreateFlag(checks.Edges(walk.OsmWayEdges(edge)), c.LocalizedInstruction(0, edge.OsmIdentifier(), reference))
	c.MarkAsFlagged(edge.OsmIdentifier())

	for _, inc := range found {
		middle := inc.middle
		in, out := mainEdgeCount(middle.InEdges()), mainEdgeCount(middle.OutEdges())
		simple := in <= twoConnectedEdges && out <= twoConnectedEdges
		short := middle.Length() <= c.maximumLength
		if !simple && !short {
			continue
		}
		f.AddObject(middle)
		f.AddInstruction(c.LocalizedInstruction(1, middle.OsmIdentifier(), highwayOrNo(middle)))
		f.AddPoint(middle.Start().Location(), middle.End().Location())
		c.MarkAsFlagged(middle.OsmIdentifier())

		for _, following := range inc.following {
			f.AddObject(following)
			f.AddInstruction(c.LocalizedInstruction(2, following.OsmIdentifier(), highwayOrNo(following)))
			c.MarkAsFlagged(following.OsmIdentifier())
		}
		if short && !simple {
			f.AddInstruction(c.LocalizedInstruction(3))
		}
	}
	return f, true
}

func (c *InconsistentRoadClassificationCheck) findInconsistencies(reference *atlas.Edge) []inconsistency {
	refType := highwayOrNo(reference)
	var links, others []*atlas.Edge
	for _, o := range reference.OutEdges() {
		if !o.IsMainEdge() || !c.candidate(reference, refType, o) {
			continue
		}
		if highwayOrNo(o).IsLink() && !refType.IsLink() {
			links = append(links, o)
		} else {
			others = append(others, o)
		}
	}

	var out []inconsistency
	for _, middle := range links {
		if inc, ok := c.similarFollowing(refType, middle, nil); ok {
			out = append(out, inc)
		}
	}
	for _, middle := range others {
		if c.partOfLongerRoad(middle, refType) || c.bypassed(middle, refType) || c.longLessImportant(middle, refType) {
			continue
		}
		loopsBack := func(end *atlas.Edge) bool { return loopsBackOnSelf(reference, middle, end) }
		if inc, ok := c.similarFollowing(refType, middle, loopsBack); ok {
			out = append(out, inc)
		}
	}
	return out
}

// candidate：方向相近、等级不同且自身不延续的出边
func (c *InconsistentRoadClassificationCheck) candidate(reference *atlas.Edge, refType atlas.HighwayTag, o *atlas.Edge) bool {
	return o.Identifier() != reference.Identifier() &&
		!o.IsRoundabout() &&
		atlas.HighwayAtLeast(o, c.minimumHighway) &&
		c.similarDirection(reference, o) &&
		!refType.IsOfEqualClassification(highwayOrNo(o)) &&
		!c.continuousOutgoing(o)
}

func (c *InconsistentRoadClassificationCheck) similarFollowing(refType atlas.HighwayTag, middle *atlas.Edge, exclude func(*atlas.Edge) bool) (inconsistency, bool) {
	var following []*atlas.Edge
	for _, o := range middle.OutEdges() {
		if !o.IsMainEdge() || !refType.IsOfEqualClassification(highwayOrNo(o)) || !c.similarDirection(middle, o) {
			continue
		}
		if exclude != nil && exclude(o) {
			continue
		}
		following = append(following, o)
	}
	if len(following) == 0 {
		return inconsistency{}, false
	}
	simple := mainEdgeCount(middle.InEdges()) <= twoConnectedEdges && mainEdgeCount(middle.OutEdges()) <= twoConnectedEdges
	if !simple && middle.Length() > c.maximumLength {
		return inconsistency{}, false
	}
	return inconsistency{middle: middle, following: following}, true
}

// similarDirection：前一条边末段与后一条边首段的航向差小于阈值
func (c *InconsistentRoadClassificationCheck) similarDirection(edge, next *atlas.Edge) bool {
	segs := edge.PolyLine().Segments()
	nextSegs := next.PolyLine().Segments()
	if len(segs) == 0 || len(nextSegs) == 0 {
		return false
	}
	final, ok1 := segs[len(segs)-1].Heading()
	initial, ok2 := nextSegs[0].Heading()
	return ok1 && ok2 && geo.HeadingDifference(final, initial) < c.directionChange
}

func (c *InconsistentRoadClassificationCheck) continuousOutgoing(edge *atlas.Edge) bool {
	h := highwayOrNo(edge)
	for _, o := range edge.OutEdges() {
		if o.IsMainEdge() && h.IsOfEqualClassification(highwayOrNo(o)) && c.similarDirection(edge, o) {
			return true
		}
	}
	return false
}

func (c *InconsistentRoadClassificationCheck) bypassed(middle *atlas.Edge, refType atlas.HighwayTag) bool {
	for _, o := range middle.Start().OutEdges() {
		if o.IsMainEdge() && o != middle && o.End() == middle.End() && highwayOrNo(o).IsIdenticalClassification(refType) {
			return true
		}
	}
	return false
}

func (c *InconsistentRoadClassificationCheck) longLessImportant(middle *atlas.Edge, refType atlas.HighwayTag) bool {
	return refType.IsMoreImportantThan(highwayOrNo(middle)) && middle.Length() >= c.longEdgeMeters
}

// partOfLongerRoad：比参考边更重要，且足够长或两端都接着同等级道路
func (c *InconsistentRoadClassificationCheck) partOfLongerRoad(middle *atlas.Edge, refType atlas.HighwayTag) bool {
	h := highwayOrNo(middle)
	if !h.IsMoreImportantThan(refType) {
		return false
	}
	if middle.Length() >= c.longEdgeMeters {
		return true
	}
	for _, node := range middle.ConnectedNodes() {
		continued := false
		for _, o := range node.ConnectedEdges() {
			if o.MainEdgeIdentifier() != middle.MainEdgeIdentifier() && h.IsOfEqualClassification(highwayOrNo(o)) {
				continued = true
				break
			}
		}
		if !continued {
			return false
		}
	}
	return true
}

func loopsBackOnSelf(start, middle, end *atlas.Edge) bool {
	has := func(nodes []*atlas.Node, n *atlas.Node) bool {
		for _, x := range nodes {
			if x == n {
				return true
			}
		}
		return false
	}
	middleNodes, endNodes := middle.ConnectedNodes(), end.ConnectedNodes()
	for _, n := range start.ConnectedNodes() {
		if has(middleNodes, n) && has(endNodes, n) {
			return true
		}
	}
	return false
}
