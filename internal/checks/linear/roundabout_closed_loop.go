package linear

import (
	"atlas-checks/internal/atlas"
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
	"atlas-checks/internal/flag"
)

// RoundaboutClosedLoopName：注册名，亦为配置键前缀
const RoundaboutClosedLoopName = "RoundaboutClosedLoopCheck"

const roundaboutMinimumValence = 2

var roundaboutClosedLoopInstructions = []string{
	"This roundabout edge is not one-way.",
	"This roundabout edge has an end node that has less than 2 connections.",
}

// RoundaboutClosedLoopCheck：非单向或未闭合的环岛
type RoundaboutClosedLoopCheck struct {
	*checks.BaseCheck
}

// NewRoundaboutClosedLoopCheck：按配置构造 RoundaboutClosedLoopCheck，缺省参数取内置默认值
func NewRoundaboutClosedLoopCheck(cfg *config.Configuration) *RoundaboutClosedLoopCheck {
	c := &RoundaboutClosedLoopCheck{}
	c.BaseCheck = checks.NewBaseCheck(RoundaboutClosedLoopName, cfg, c, roundaboutClosedLoopInstructions...)
	return c
}

func (c *RoundaboutClosedLoopCheck) ValidCheckForObject(e atlas.Entity) bool {
	_, ok := asEdge(e)
	return ok && isFormOfRoundabout(e) && !c.IsFlagged(e.OsmIdentifier())
}

func (c *RoundaboutClosedLoopCheck) Flag(e atlas.Entity) (*flag.CheckFlag, bool) {
	edge := e.(*atlas.Edge)
	if !edge.IsMainEdge() || atlas.OneWay(edge) == atlas.OneWayTwoWay {
		c.MarkAsFlagged(edge.OsmIdentifier())
		return c.CreateFlagFor(edge, c.LocalizedInstruction(0)), true
	}
	for _, node := range edge.ConnectedNodes() {
		if mainEdgeCount(node.ConnectedEdges()) < roundaboutMinimumValence {
			c.MarkAsFlagged(edge.OsmIdentifier())
			return c.CreateFlagFor(edge, c.LocalizedInstruction(1)), true
		}
	}
	return nil, false
}

func isFormOfRoundabout(e atlas.Entity) bool {
	if atlas.IsRoundabout(e) {
		return true
	}
	h, ok := atlas.HighwayOf(e)
	return ok && (h == atlas.HighwayMiniRoundabout || h == atlas.HighwayTurningCircle || h == atlas.HighwayTurningLoop)
}
