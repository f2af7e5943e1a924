package linear

import (
	"atlas-checks/internal/atlas"
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
	"atlas-checks/internal/flag"
	"atlas-checks/internal/walk"
)

// RoundaboutValenceName：注册名，亦为配置键前缀
const RoundaboutValenceName = "RoundaboutValenceCheck"

var roundaboutValenceInstructions = []string{
	"This roundabout, {0,number,#}, has the wrong valence. It has a valence of {1,number,#}.",
	"This feature, {0,number,#}, should not be labelled as a roundabout. This feature should be a turning loop or turning circle.",
}

// RoundaboutValenceCheck：出入口数量异常的环岛
type RoundaboutValenceCheck struct {
	*checks.BaseCheck
	minimum int
	maximum int
}

// NewRoundaboutValenceCheck：按配置构造 RoundaboutValenceCheck，缺省参数取内置默认值
func NewRoundaboutValenceCheck(cfg *config.Configuration) *RoundaboutValenceCheck {
	c := &RoundaboutValenceCheck{}
	c.BaseCheck = checks.NewBaseCheck(RoundaboutValenceName, cfg, c, roundaboutValenceInstructions...)
	p := checks.ParamsFor(RoundaboutValenceName, cfg)
	c.minimum = p.Int("connections.minimum", 2)
	c.maximum = p.Int("connections.maximum", 10)
	return c
}

func (c *RoundaboutValenceCheck) ValidCheckForObject(e atlas.Entity) bool {
	return isMainEdge(e) && atlas.IsRoundabout(e) && !c.IsFlagged(e.Identifier())
}

func (c *RoundaboutValenceCheck) Flag(e atlas.Entity) (*flag.CheckFlag, bool) {
	edge := e.(*atlas.Edge)
	edges := walk.RoundaboutEdges(edge)
	c.MarkAsFlagged(walk.Identifiers(edges)...)

	valence := RoundaboutValence(edges)
	if valence >= c.minimum && valence <= c.maximum {
		return nil, false
	}
	if valence == 1 {
		return c.CreateFlag(checks.Edges(edges), c.LocalizedInstruction(1, edge.OsmIdentifier())), true
	}
	return c.CreateFlag(checks.Edges(edges), c.LocalizedInstruction(0, edge.OsmIdentifier(), valence)), true
}

// RoundaboutValence：与环岛相连的非环岛正向可通车边数
func RoundaboutValence(roundabout []*atlas.Edge) int {
	members := make(map[*atlas.Edge]bool, len(roundabout))
	for _, e := range roundabout {
		members[e] = true
	}
	connected := map[int64]bool{}
	for _, e := range roundabout {
		for _, o := range e.ConnectedEdges() {
			if members[o] || !o.IsMainEdge() || o.IsRoundabout() || !atlas.IsCarNavigable(o) {
				continue
			}
			connected[o.Identifier()] = true
		}
	}
	return len(connected)
}
