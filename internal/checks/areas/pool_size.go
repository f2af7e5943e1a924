package areas

import (
	"atlas-checks/internal/atlas"
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
	"atlas-checks/internal/flag"
)

// PoolSizeName：注册名，亦为配置键前缀
const PoolSizeName = "PoolSizeCheck"

var poolSizeInstructions = []string{
	"The swimming pool with OSM ID {0} with a surface area of {1,number,#.##} meters squared is greater than the expected maximum of {2} meters squared.",
	"The swimming pool with OSM ID {0} with a surface area of {1,number,#.##} meters squared is smaller than the expected minimum of {2} meters squared.",
}

// PoolSizeCheck：面积超出合理范围的泳池
type PoolSizeCheck struct {
	*checks.BaseCheck
	maximum float64
	minimum float64
}

// NewPoolSizeCheck：按配置构造 PoolSizeCheck，缺省参数取内置默认值
func NewPoolSizeCheck(cfg *config.Configuration) *PoolSizeCheck {
	c := &PoolSizeCheck{}
	c.BaseCheck = checks.NewBaseCheck(PoolSizeName, cfg, c, poolSizeInstructions...)
	p := checks.ParamsFor(PoolSizeName, cfg)
	c.maximum = p.Float("surface.maximum", 5000000)
	c.minimum = p.Float("surface.minimum", 5)
	return c
}

func (c *PoolSizeCheck) ValidCheckForObject(e atlas.Entity) bool {
	_, ok := e.(*atlas.Area)
	return ok && e.Tags().Is("leisure", "swimming_pool")
}

func (c *PoolSizeCheck) Flag(e atlas.Entity) (*flag.CheckFlag, bool) {
	surface := e.(*atlas.Area).Polygon().Area()
	switch {
	case surface > c.maximum:
		return c.CreateFlagFor(e, c.LocalizedInstruction(0, e.OsmIdentifier(), surface, c.maximum)), true
	case surface < c.minimum:
		return c.CreateFlagFor(e, c.LocalizedInstruction(1, e.OsmIdentifier(), surface, c.minimum)), true
	}
	return nil, false
}
