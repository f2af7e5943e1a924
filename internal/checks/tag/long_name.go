package tag

import (
	"sort"
	"strings"
	"unicode/utf8"

	"atlas-checks/internal/atlas"
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
	"atlas-checks/internal/flag"
)

// LongNameName：注册名，亦为配置键前缀
const LongNameName = "LongNameCheck"

var longNameInstructions = []string{
	"Feature {0,number,#} has the following tags with over {1,number,#} characters: {2}.",
}

// 名称类标签的基础键；name:en 之类按冒号前的部分匹配
var nameKeys = map[string]bool{
	"name": true, "alt_name": true, "official_name": true, "old_name": true, "short_name": true,
	"int_name": true, "nat_name": true, "reg_name": true, "loc_name": true,
}

// LongNameCheck：名称过长
type LongNameCheck struct {
	*checks.BaseCheck
	maximum int
}

// NewLongNameCheck：按配置构造 LongNameCheck，缺省参数取内置默认值
func NewLongNameCheck(cfg *config.Configuration) *LongNameCheck {
	c := &LongNameCheck{}
	c.BaseCheck = checks.NewBaseCheck(LongNameName, cfg, c, longNameInstructions...)
	c.maximum = checks.ParamsFor(LongNameName, cfg).Int("name.max", 40)
	return c
}

func isNameKey(k string) bool {
	base, _, _ := strings.Cut(k, ":")
	return nameKeys[base]
}

func (c *LongNameCheck) ValidCheckForObject(e atlas.Entity) bool {
	if c.IsFlagged(e.OsmIdentifier()) {
		return false
	}
	for k := range e.Tags() {
		if isNameKey(k) {
			return true
		}
	}
	return false
}

func (c *LongNameCheck) Flag(e atlas.Entity) (*flag.CheckFlag, bool) {
	var long []string
	for k, v := range e.Tags() {
		if isNameKey(k) && utf8.RuneCountInString(v) >= c.maximum {
			long = append(long, k)
		}
	}
	if len(long) == 0 {
		return nil, false
	}
	sort.Strings(long)
	c.MarkAsFlagged(e.OsmIdentifier())
	return c.CreateFlag(wayObjects(e), c.LocalizedInstruction(0, e.OsmIdentifier(), c.maximum, strings.Join(long, ", "))), true
}
