package tag

import (
	"atlas-checks/internal/atlas"
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
	"atlas-checks/internal/flag"
)

// FixMeReviewName：注册名，亦为配置键前缀
const FixMeReviewName = "FixMeReviewCheck"

var fixMeReviewInstructions = []string{
	"Object {0, number, #} has 'fixme' tag and needs to be investigated.",
}

var (
	fixMeKeys          = []string{"fixme", "FIXME"}
	fixMeSupplementary = []string{"waterway", "oneway", "building", "highway", "name", "ref", "place", "surface"}
)

var defaultFixMeValues = []string{
	"continue", "name", "incomplete", "draw geometry and delete this point", "unfinished", "recheck",
}

// FixMeReviewCheck：带有高优先级 fixme 取值的要素
type FixMeReviewCheck struct {
	*checks.BaseCheck
	values map[string]bool
}

// NewFixMeReviewCheck：按配置构造 FixMeReviewCheck，缺省参数取内置默认值
func NewFixMeReviewCheck(cfg *config.Configuration) *FixMeReviewCheck {
	c := &FixMeReviewCheck{values: map[string]bool{}}
	c.BaseCheck = checks.NewBaseCheck(FixMeReviewName, cfg, c, fixMeReviewInstructions...)
	for _, v := range checks.ParamsFor(FixMeReviewName, cfg).Strings("fixMe.supported.values", defaultFixMeValues) {
		c.values[v] = true
	}
	return c
}

func (c *FixMeReviewCheck) ValidCheckForObject(e atlas.Entity) bool {
	if c.IsFlagged(e.OsmIdentifier()) {
		return false
	}
	for _, k := range fixMeKeys {
		if e.Tags().Has(k) {
			return true
		}
	}
	return false
}

func (c *FixMeReviewCheck) Flag(e atlas.Entity) (*flag.CheckFlag, bool) {
	c.MarkAsFlagged(e.OsmIdentifier())
	if !c.hasSupplementaryTag(e.Tags()) || !c.hasPriorityValue(e.Tags()) {
		return nil, false
	}
	instruction := c.LocalizedInstruction(0, e.OsmIdentifier())
	if _, ok := e.(*atlas.Edge); ok && atlas.HighwayAtLeast(e, atlas.HighwayTertiary) {
		return c.CreateFlag(wayObjects(e), instruction), true
	}
	return c.CreateFlagFor(e, instruction), true
}

func (c *FixMeReviewCheck) hasSupplementaryTag(tags atlas.Tags) bool {
	for _, k := range fixMeSupplementary {
		if tags.Has(k) {
			return true
		}
	}
	return false
}

// hasPriorityValue 取值区分大小写
func (c *FixMeReviewCheck) hasPriorityValue(tags atlas.Tags) bool {
	for _, k := range fixMeKeys {
		if v, ok := tags.Get(k); ok && c.values[v] {
			return true
		}
	}
	return false
}
