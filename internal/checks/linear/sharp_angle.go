package linear

import (
	"atlas-checks/internal/atlas"
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
	"atlas-checks/internal/flag"
	"atlas-checks/internal/geo"
)

// SharpAngleName：注册名，亦为配置键前缀
const SharpAngleName = "SharpAngleCheck"

var sharpAngleInstructions = []string{
	"Highway {0,number,#} has too sharp an angle at {1}",
	"Highway {0,number,#} has {1} angles that are too sharp",
}

// SharpAngleCheck：航向突变过大的道路
type SharpAngleCheck struct {
	*checks.BaseCheck
	threshold float64
}

// NewSharpAngleCheck：按配置构造 SharpAngleCheck，缺省参数取内置默认值
func NewSharpAngleCheck(cfg *config.Configuration) *SharpAngleCheck {
	c := &SharpAngleCheck{}
	c.BaseCheck = checks.NewBaseCheck(SharpAngleName, cfg, c, sharpAngleInstructions...)
	c.threshold = checks.ParamsFor(SharpAngleName, cfg).Float("threshold.degrees", 149)
	return c
}

func (c *SharpAngleCheck) ValidCheckForObject(e atlas.Entity) bool {
	_, ok := asEdge(e)
	return ok
}

func (c *SharpAngleCheck) Flag(e atlas.Entity) (*flag.CheckFlag, bool) {
	edge := e.(*atlas.Edge)
	if highwayOrNo(edge).IsLessImportantThan(atlas.HighwayTertiary) {
		return nil, false
	}
	angles := edge.PolyLine().AnglesGreaterThanOrEqualTo(c.threshold)
	if len(angles) == 0 || c.flaggedWithReverse(edge) {
		return nil, false
	}
	c.MarkAsFlagged(edge.Identifier())
	if rev, ok := edge.Reversed(); ok {
		c.MarkAsFlagged(rev.Identifier())
	}

	var instruction string
	if len(angles) == 1 {
		instruction = c.LocalizedInstruction(0, edge.OsmIdentifier(), angles[0].Location)
	} else {
		instruction = c.LocalizedInstruction(1, edge.OsmIdentifier(), len(angles))
	}
	points := make([]geo.Location, len(angles))
	for i, a := range angles {
		points[i] = a.Location
	}
	return c.CreateFlagFor(edge, instruction, points...), true
}

func (c *SharpAngleCheck) flaggedWithReverse(edge *atlas.Edge) bool {
	if c.IsFlagged(edge.Identifier()) {
		return true
	}
	rev, ok := edge.Reversed()
	return ok && c.IsFlagged(rev.Identifier())
}
