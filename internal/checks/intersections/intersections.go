// 包 intersections：道路交叉与折线自交检查
package intersections

import (
	"strconv"

	"atlas-checks/internal/atlas"
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
)

func init() {
	checks.Register(EdgeCrossingEdgeName, func(cfg *config.Configuration) checks.Check { return NewEdgeCrossingEdgeCheck(cfg) })
	checks.Register(SelfIntersectingPolylineName, func(cfg *config.Configuration) checks.Check { return NewSelfIntersectingPolylineCheck(cfg) })
}

// impliedLayer：layer 标签优先；否则桥为 1、隧道为 -1、其余为 0
func impliedLayer(e atlas.Entity) int {
	if v, ok := e.Tags().Get(atlas.TagLayer); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	switch {
	case atlas.IsBridge(e):
		return 1
	case atlas.IsTunnel(e):
		return -1
	}
	return 0
}
