// 包 areas：面状要素（泳池、建筑、兴趣区）的检查
package areas

import (
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
)

func init() {
	checks.Register(PoolSizeName, func(cfg *config.Configuration) checks.Check { return NewPoolSizeCheck(cfg) })
	checks.Register(SpikyBuildingName, func(cfg *config.Configuration) checks.Check { return NewSpikyBuildingCheck(cfg) })
	checks.Register(OverlappingAOIName, func(cfg *config.Configuration) checks.Check { return NewOverlappingAOIPolygonCheck(cfg) })
}
