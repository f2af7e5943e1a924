package relations

import (
	"atlas-checks/internal/atlas"
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
	"atlas-checks/internal/flag"
	"atlas-checks/internal/walk"
)

// OneMemberRelationName：注册名，亦为配置键前缀
const OneMemberRelationName = "OneMemberRelationCheck"

var oneMemberInstructions = []string{
	"This relation, {0,number,#}, contains only one member.",
	"This relation, {0,number,#}, contains only relation {1,number,#}.",
}

// OneMemberRelationCheck：只有一个成员的关系；同一 OSM 路的多个切片算作一个成员
type OneMemberRelationCheck struct {
	*checks.BaseCheck
	skip []*checks.TaggableFilter
}

// NewOneMemberRelationCheck：按配置构造 OneMemberRelationCheck，缺省参数取内置默认值
func NewOneMemberRelationCheck(cfg *config.Configuration) *OneMemberRelationCheck {
	c := &OneMemberRelationCheck{}
	c.BaseCheck = checks.NewBaseCheck(OneMemberRelationName, cfg, c, oneMemberInstructions...)
	for _, def := range checks.ParamsFor(OneMemberRelationName, cfg).Strings("relations.skip", []string{"type->person,multipolygon"}) {
		f, err := checks.ParseTaggableFilter(def)
		if err != nil {
			c.Logger().Warn("relation_filter_invalid", "filter", def, "err", err)
			continue
		}
		c.skip = append(c.skip, f)
	}
	return c
}

func (c *OneMemberRelationCheck) ValidCheckForObject(e atlas.Entity) bool {
	if _, ok := e.(*atlas.Relation); !ok {
		return false
	}
	for _, f := range c.skip {
		if f.TestEntity(e) {
			return false
		}
	}
	return true
}

func (c *OneMemberRelationCheck) Flag(e atlas.Entity) (*flag.CheckFlag, bool) {
	rel := e.(*atlas.Relation)
	if walk.RelationMemberSize(rel) != 1 {
		return nil, false
	}
	members := rel.Flatten()
	if len(members) == 0 {
		return nil, false
	}
	if only := rel.Members()[0].Entity; only.Type() == atlas.ItemRelation {
		return c.CreateFlag(members, c.LocalizedInstruction(1, rel.OsmIdentifier(), only.OsmIdentifier())), true
	}
	return c.CreateFlag(members, c.LocalizedInstruction(0, rel.OsmIdentifier())), true
}
