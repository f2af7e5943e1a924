package points

import (
	"atlas-checks/internal/atlas"
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
	"atlas-checks/internal/flag"
	"atlas-checks/internal/geo"
)

// DuplicateLocationName：注册名，亦为配置键前缀
const DuplicateLocationName = "DuplicateLocationInPolyLineCheck"

var duplicateLocationInstructions = []string{
	"Repeated location found at {0} for feature id {1,number,#} ",
}

// DuplicateLocationInPolyLineCheck：折线中重复出现的顶点
type DuplicateLocationInPolyLineCheck struct {
	*checks.BaseCheck
}

// NewDuplicateLocationInPolyLineCheck：按配置构造 DuplicateLocationInPolyLineCheck，缺省参数取内置默认值
func NewDuplicateLocationInPolyLineCheck(cfg *config.Configuration) *DuplicateLocationInPolyLineCheck {
	c := &DuplicateLocationInPolyLineCheck{}
	c.BaseCheck = checks.NewBaseCheck(DuplicateLocationName, cfg, c, duplicateLocationInstructions...)
	return c
}

func (c *DuplicateLocationInPolyLineCheck) ValidCheckForObject(e atlas.Entity) bool {
	switch e.(type) {
	case *atlas.Edge, *atlas.Area, *atlas.Line:
		return true
	}
	return false
}

func (c *DuplicateLocationInPolyLineCheck) Flag(e atlas.Entity) (*flag.CheckFlag, bool) {
	var line geo.PolyLine
	switch v := e.(type) {
	case *atlas.Edge:
		line = v.PolyLine()
	case *atlas.Line:
		line = v.PolyLine()
	case *atlas.Area:
		line = geo.PolyLine(v.Polygon().Ring())
	}
	dup, ok := line.DuplicateLocation()
	if !ok || c.IsFlagged(e.OsmIdentifier()) {
		return nil, false
	}
	c.MarkAsFlagged(e.OsmIdentifier())
	return c.CreateFlagFor(e, c.LocalizedInstruction(0, dup.String(), e.OsmIdentifier()), dup), true
}
