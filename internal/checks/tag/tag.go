// 包 tag：只看标签取值的检查
package tag

import (
	"atlas-checks/internal/atlas"
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
	"atlas-checks/internal/walk"
)

func init() {
	checks.Register(FixMeReviewName, func(cfg *config.Configuration) checks.Check { return NewFixMeReviewCheck(cfg) })
	checks.Register(LongNameName, func(cfg *config.Configuration) checks.Check { return NewLongNameCheck(cfg) })
	checks.Register(InvalidLanesTagName, func(cfg *config.Configuration) checks.Check { return NewInvalidLanesTagCheck(cfg) })
	checks.Register(UnusualLayerTagsName, func(cfg *config.Configuration) checks.Check { return NewUnusualLayerTagsCheck(cfg) })
}

// wayObjects 边展开为整条 OSM 路，其余对象原样返回
func wayObjects(e atlas.Entity) []atlas.Entity {
	if edge, ok := e.(*atlas.Edge); ok {
		return checks.Edges(walk.OsmWayEdges(edge))
	}
	return []atlas.Entity{e}
}
