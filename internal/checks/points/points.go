// 包 points：节点与顶点级别的检查
package points

import (
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
)

func init() {
	checks.Register(NodeValenceName, func(cfg *config.Configuration) checks.Check { return NewNodeValenceCheck(cfg) })
	checks.Register(InvalidMiniRoundaboutName, func(cfg *config.Configuration) checks.Check { return NewInvalidMiniRoundaboutCheck(cfg) })
	checks.Register(DuplicateLocationName, func(cfg *config.Configuration) checks.Check { return NewDuplicateLocationInPolyLineCheck(cfg) })
}
