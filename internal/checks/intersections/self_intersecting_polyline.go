package intersections

import (
	"atlas-checks/internal/atlas"
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
	"atlas-checks/internal/flag"
	"atlas-checks/internal/geo"
)

// SelfIntersectingPolylineName：注册名，亦为配置键前缀
const SelfIntersectingPolylineName = "SelfIntersectingPolylineCheck"

var selfIntersectingPolylineInstructions = []string{
	"Self-intersecting polyline for feature {0,number,#} at {1}",
	"Feature {0,number,#} has invalid geometry at {1}",
	"Feature {0,number,#} is a incomplete building at {1}",
	"Feature {0,number,#} has a duplicate Edge at {1}",
}

const (
	instructionPolyline = iota
	instructionArea
	instructionBuilding
	instructionDuplicateSegment
)

// SelfIntersectingPolylineCheck：自相交的道路、线与面
type SelfIntersectingPolylineCheck struct {
	*checks.BaseCheck
}

// NewSelfIntersectingPolylineCheck：按配置构造 SelfIntersectingPolylineCheck，缺省参数取内置默认值
func NewSelfIntersectingPolylineCheck(cfg *config.Configuration) *SelfIntersectingPolylineCheck {
	c := &SelfIntersectingPolylineCheck{}
	c.BaseCheck = checks.NewBaseCheck(SelfIntersectingPolylineName, cfg, c, selfIntersectingPolylineInstructions...)
	return c
}

func (c *SelfIntersectingPolylineCheck) ValidCheckForObject(e atlas.Entity) bool {
	switch v := e.(type) {
	case *atlas.Edge:
		return v.IsMainEdge()
	case *atlas.Area:
		return true
	case *atlas.Line:
		return !v.Tags().Has("waterway")
	}
	return false
}

func (c *SelfIntersectingPolylineCheck) Flag(e atlas.Entity) (*flag.CheckFlag, bool) {
	var line geo.PolyLine
	index := instructionPolyline
	duplicate := false
	switch v := e.(type) {
	case *atlas.Edge:
		line = v.PolyLine()
	case *atlas.Line:
		line = v.PolyLine()
	case *atlas.Area:
		line = v.Polygon().Closed()
		index = instructionArea
		if duplicate = v.Polygon().HasDuplicateSegments(); duplicate {
			index = instructionDuplicateSegment
		}
	default:
		return nil, false
	}
	if e.Type() != atlas.ItemArea && atlas.IsBuilding(e) {
		index = instructionBuilding
	}

	locations := line.SelfIntersections()
	if len(locations) == 0 {
		// 重复边未必产生交点，仍视为非法几何
		if !duplicate {
			return nil, false
		}
		return c.CreateFlagFor(e, c.LocalizedInstruction(index, e.OsmIdentifier(), "[]")), true
	}
	at := make([]any, len(locations))
	for i, l := range locations {
		at[i] = l
	}
	return c.CreateFlagFor(e, c.LocalizedInstruction(index, e.OsmIdentifier(), at), locations...), true
}
