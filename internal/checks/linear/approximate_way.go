package linear

import (
	"atlas-checks/internal/atlas"
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
	"atlas-checks/internal/flag"
	"atlas-checks/internal/geo"
)

// ApproximateWayName：注册名，亦为配置键前缀
const ApproximateWayName = "ApproximateWayCheck"

var approximateWayInstructions = []string{
	"Way {0,number,#} deviates by {1,number,#} meters",
}

// ApproximateWayCheck：用少量节点近似曲线的道路
type ApproximateWayCheck struct {
	*checks.BaseCheck
	minimumDeviation float64
	highwayMinimum   atlas.HighwayTag
	minimumAngle     float64
	bezierStep       float64
}

// NewApproximateWayCheck：按配置构造 ApproximateWayCheck，缺省参数取内置默认值
func NewApproximateWayCheck(cfg *config.Configuration) *ApproximateWayCheck {
	c := &ApproximateWayCheck{}
	c.BaseCheck = checks.NewBaseCheck(ApproximateWayName, cfg, c, approximateWayInstructions...)
	p := checks.ParamsFor(ApproximateWayName, cfg)
	c.minimumDeviation = p.Float("deviation.minimum.meters", 35)
	c.highwayMinimum = p.Highway("highway.minimum", atlas.HighwayService)
	c.minimumAngle = p.Float("angle.minimum", 100)
	c.bezierStep = p.Float("bezierStep", 0.01)
	return c
}

func (c *ApproximateWayCheck) ValidCheckForObject(e atlas.Entity) bool {
	return isMainEdge(e) && atlas.IsCarNavigable(e) && atlas.HighwayAtLeast(e, c.highwayMinimum)
}

func (c *ApproximateWayCheck) Flag(e atlas.Entity) (*flag.CheckFlag, bool) {
	edge := e.(*atlas.Edge)
	segments := edge.PolyLine().Segments()
	if len(segments) < 2 {
		return nil, false
	}
	maximum := 0.0
	// 首对线段不参与
	for i := 1; i < len(segments)-1; i++ {
		s1, s2 := segments[i], segments[i+1]
		if geo.SegmentAngle(s1, s2) < c.minimumAngle {
			continue
		}
		if d := geo.QuadraticBezierDeviation(s1.Start, s2.Start, s2.End, c.bezierStep); d > maximum {
			maximum = d
		}
	}
	if maximum <= c.minimumDeviation {
		return nil, false
	}
	return c.CreateFlagFor(edge, c.LocalizedInstruction(0, edge.OsmIdentifier(), maximum)), true
}
