package linear

import (
	"atlas-checks/internal/atlas"
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
	"atlas-checks/internal/flag"
)

// LongSegmentName：注册名，亦为配置键前缀
const LongSegmentName = "LongSegmentCheck"

var longSegmentInstructions = []string{
	"Way {0,number,#} has a very long stretch with no nodes in it (length = {1} km). This may not be an accurate representation of ground truth.",
}

// LongSegmentCheck：节点间距过长的道路
type LongSegmentCheck struct {
	*checks.BaseCheck
	minimumMeters float64
}

// NewLongSegmentCheck：按配置构造 LongSegmentCheck，缺省参数取内置默认值
func NewLongSegmentCheck(cfg *config.Configuration) *LongSegmentCheck {
	c := &LongSegmentCheck{}
	c.BaseCheck = checks.NewBaseCheck(LongSegmentName, cfg, c, longSegmentInstructions...)
	c.minimumMeters = checks.ParamsFor(LongSegmentName, cfg).Float("length.minimum.kilometers", 10) * 1000
	return c
}

func (c *LongSegmentCheck) ValidCheckForObject(e atlas.Entity) bool {
	return isMainEdge(e) && !atlas.IsFerry(e)
}

func (c *LongSegmentCheck) Flag(e atlas.Entity) (*flag.CheckFlag, bool) {
	edge := e.(*atlas.Edge)
	for _, s := range edge.PolyLine().Segments() {
		if length := s.Length(); length >= c.minimumMeters {
			return c.CreateFlagFor(edge, c.LocalizedInstruction(0, edge.OsmIdentifier(), length/1000)), true
		}
	}
	return nil, false
}
