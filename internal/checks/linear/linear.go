// 包 linear：针对道路边的几何与拓扑检查
package linear

import (
	"atlas-checks/internal/atlas"
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
)

func init() {
	checks.Register(FloatingEdgeName, func(cfg *config.Configuration) checks.Check { return NewFloatingEdgeCheck(cfg) })
	checks.Register(MalformedRoundaboutName, func(cfg *config.Configuration) checks.Check { return NewMalformedRoundaboutCheck(cfg) })
	checks.Register(ApproximateWayName, func(cfg *config.Configuration) checks.Check { return NewApproximateWayCheck(cfg) })
	checks.Register(SharpAngleName, func(cfg *config.Configuration) checks.Check { return NewSharpAngleCheck(cfg) })
	checks.Register(SinkIslandName, func(cfg *config.Configuration) checks.Check { return NewSinkIslandCheck(cfg) })
	checks.Register(RoundaboutClosedLoopName, func(cfg *config.Configuration) checks.Check { return NewRoundaboutClosedLoopCheck(cfg) })
	checks.Register(RoundaboutValenceName, func(cfg *config.Configuration) checks.Check { return NewRoundaboutValenceCheck(cfg) })
	checks.Register(LongSegmentName, func(cfg *config.Configuration) checks.Check { return NewLongSegmentCheck(cfg) })
	checks.Register(ShortSegmentName, func(cfg *config.Configuration) checks.Check { return NewShortSegmentCheck(cfg) })
	checks.Register(SingleSegmentMotorwayName, func(cfg *config.Configuration) checks.Check { return NewSingleSegmentMotorwayCheck(cfg) })
	checks.Register(InconsistentRoadClassificationName, func(cfg *config.Configuration) checks.Check { return NewInconsistentRoadClassificationCheck(cfg) })
}

func asEdge(e atlas.Entity) (*atlas.Edge, bool) {
	edge, ok := e.(*atlas.Edge)
	return edge, ok
}

func isMainEdge(e atlas.Entity) bool {
	edge, ok := asEdge(e)
	return ok && edge.IsMainEdge()
}

func highwayOrNo(e atlas.Entity) atlas.HighwayTag {
	if h, ok := atlas.HighwayOf(e); ok {
		return h
	}
	return atlas.HighwayNo
}

func mainEdgeCount(edges []*atlas.Edge) int {
	n := 0
	for _, e := range edges {
		if e.IsMainEdge() {
			n++
		}
	}
	return n
}
