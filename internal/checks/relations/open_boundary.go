package relations

import (
	"sort"

	"atlas-checks/internal/atlas"
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
	"atlas-checks/internal/flag"
	"atlas-checks/internal/geo"
)

// OpenBoundaryName：注册名，亦为配置键前缀
const OpenBoundaryName = "OpenBoundaryCheck"

var openBoundaryInstructions = []string{
	"The Multipolygon relation {0,number,#} with members : {1} is not closed at some locations : {2}",
}

// OpenBoundaryCheck：行政边界关系的成员未能拼接成闭合环
type OpenBoundaryCheck struct {
	*checks.BaseCheck
}

// NewOpenBoundaryCheck：按配置构造 OpenBoundaryCheck，缺省参数取内置默认值
func NewOpenBoundaryCheck(cfg *config.Configuration) *OpenBoundaryCheck {
	c := &OpenBoundaryCheck{}
	c.BaseCheck = checks.NewBaseCheck(OpenBoundaryName, cfg, c, openBoundaryInstructions...)
	return c
}

func (c *OpenBoundaryCheck) ValidCheckForObject(e atlas.Entity) bool {
	rel, ok := e.(*atlas.Relation)
	return ok && !c.IsFlagged(e.OsmIdentifier()) &&
		rel.Tags().Is("type", "boundary") && rel.Tags().Has("admin_level") &&
		!rel.Tags().Has(atlas.TagSyntheticRelationMember)
}

func (c *OpenBoundaryCheck) Flag(e atlas.Entity) (*flag.CheckFlag, bool) {
	rel := e.(*atlas.Relation)
	c.MarkAsFlagged(rel.OsmIdentifier())
	if !rel.AllMembersLoaded() {
		return nil, false
	}
	open := OpenLocations(rel)
	if len(open) == 0 {
		return nil, false
	}
	latLons := make([]string, len(open))
	for i, l := range open {
		latLons[i] = l.String()
	}
	ids := map[int64]bool{}
	for _, m := range rel.Members() {
		ids[m.Entity.OsmIdentifier()] = true
	}
	memberIDs := make([]int64, 0, len(ids))
	for id := range ids {
		memberIDs = append(memberIDs, id)
	}
	sort.Slice(memberIDs, func(i, j int) bool { return memberIDs[i] < memberIDs[j] })
	return c.CreateFlagFor(rel, c.LocalizedInstruction(0, rel.OsmIdentifier(), memberIDs, latLons), open...), true
}

// OpenLocations：成员折线按端点配对，出现奇数次的端点即为缺口；按纬度、经度排序
// 约束：双向边只取主边；闭合面与闭合折线不产生端点
func OpenLocations(rel *atlas.Relation) []geo.Location {
	counts := map[[2]int64]int{}
	locs := map[[2]int64]geo.Location{}
	add := func(line geo.PolyLine) {
		if len(line) < 2 || line.IsClosed() {
			return
		}
		for _, l := range []geo.Location{line.First(), line.Last()} {
			counts[l.Key()]++
			locs[l.Key()] = l
		}
	}
	for _, leaf := range rel.Flatten() {
		switch v := leaf.(type) {
		case *atlas.Edge:
			if v.IsMainEdge() {
				add(v.PolyLine())
			}
		case *atlas.Line:
			add(v.PolyLine())
		}
	}
	var out []geo.Location
	for k, n := range counts {
		if n%2 == 1 {
			out = append(out, locs[k])
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Lat != out[j].Lat {
			return out[i].Lat < out[j].Lat
		}
		return out[i].Lon < out[j].Lon
	})
	return out
}
