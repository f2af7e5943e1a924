package linear

import (
	"atlas-checks/internal/atlas"
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
	"atlas-checks/internal/flag"
)

// FloatingEdgeName：注册名，亦为配置键前缀
const FloatingEdgeName = "FloatingEdgeCheck"

var floatingEdgeInstructions = []string{
	"Way '{0,number,#}' is floating. Ie. has no incoming or outgoing ways.",
}

// FloatingEdgeCheck：没有任何连接的孤立道路
type FloatingEdgeCheck struct {
	*checks.BaseCheck
	minimumMeters float64
	maximumMeters float64
}

// NewFloatingEdgeCheck：按配置构造 FloatingEdgeCheck，缺省参数取内置默认值
func NewFloatingEdgeCheck(cfg *config.Configuration) *FloatingEdgeCheck {
	c := &FloatingEdgeCheck{}
	c.BaseCheck = checks.NewBaseCheck(FloatingEdgeName, cfg, c, floatingEdgeInstructions...)
	p := checks.ParamsFor(FloatingEdgeName, cfg)
	c.minimumMeters = p.Float("length.minimum.meters", 100)
	c.maximumMeters = p.Float("length.maximum.kilometers", 100) * 1000
	return c
}

func (c *FloatingEdgeCheck) ValidCheckForObject(e atlas.Entity) bool {
	return isMainEdge(e) && atlas.IsCarNavigable(e)
}

func (c *FloatingEdgeCheck) Flag(e atlas.Entity) (*flag.CheckFlag, bool) {
	edge := e.(*atlas.Edge)
	length := edge.Length()
	if length < c.minimumMeters || length > c.maximumMeters {
		return nil, false
	}
	for _, connected := range edge.ConnectedEdges() {
		if !edge.IsReversedEdge(connected) {
			return nil, false
		}
	}
	if edge.Start().IsSyntheticBoundary() || edge.End().IsSyntheticBoundary() {
		return nil, false
	}
	return c.CreateFlagFor(edge, c.LocalizedInstruction(0, edge.OsmIdentifier())), true
}
