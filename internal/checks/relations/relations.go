// 包 relations：关系结构的检查
package relations

import (
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
)

func init() {
	checks.Register(OneMemberRelationName, func(cfg *config.Configuration) checks.Check { return NewOneMemberRelationCheck(cfg) })
	checks.Register(OpenBoundaryName, func(cfg *config.Configuration) checks.Check { return NewOpenBoundaryCheck(cfg) })
}
