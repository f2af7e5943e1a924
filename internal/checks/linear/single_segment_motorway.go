package linear

import (
	"atlas-checks/internal/atlas"
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
	"atlas-checks/internal/flag"
	"atlas-checks/internal/walk"
)

// SingleSegmentMotorwayName：注册名，亦为配置键前缀
const SingleSegmentMotorwayName = "SingleSegmentMotorwayCheck"

var singleSegmentMotorwayInstructions = []string{
	"This way, id:{0,number,#}, is a motorway that is disconnected from any other motorways.",
}

// SingleSegmentMotorwayCheck：不与其他高速公路相连的高速公路
type SingleSegmentMotorwayCheck struct {
	*checks.BaseCheck
}

// NewSingleSegmentMotorwayCheck：按配置构造 SingleSegmentMotorwayCheck，缺省参数取内置默认值
func NewSingleSegmentMotorwayCheck(cfg *config.Configuration) *SingleSegmentMotorwayCheck {
	c := &SingleSegmentMotorwayCheck{}
	c.BaseCheck = checks.NewBaseCheck(SingleSegmentMotorwayName, cfg, c, singleSegmentMotorwayInstructions...)
	return c
}

func (c *SingleSegmentMotorwayCheck) ValidCheckForObject(e atlas.Entity) bool {
	edge, ok := asEdge(e)
	if !ok || !edge.IsMainEdge() || !isMotorwayNotRoundabout(edge) || c.IsFlagged(edge.OsmIdentifier()) {
		return false
	}
	for _, n := range edge.ConnectedNodes() {
		if n.IsSyntheticBoundary() {
			return false
		}
	}
	return true
}

func (c *SingleSegmentMotorwayCheck) Flag(e atlas.Entity) (*flag.CheckFlag, bool) {
	edge := e.(*atlas.Edge)
	for _, o := range edge.ConnectedEdges() {
		if o.IsMainEdge() && isMotorwayNotRoundabout(o) {
			return nil, false
		}
	}
	c.MarkAsFlagged(edge.OsmIdentifier())
	way := walk.OsmWayEdges(edge)
	return c.CreateFlag(checks.Edges(way), c.LocalizedInstruction(0, edge.OsmIdentifier())), true
}

func isMotorwayNotRoundabout(edge *atlas.Edge) bool {
	h, ok := edge.Highway()
	return ok && h == atlas.HighwayMotorway && !edge.IsRoundabout()
}
