package linear

import (
	"strings"

	"atlas-checks/internal/atlas"
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
	"atlas-checks/internal/flag"
	"atlas-checks/internal/geo"
	"atlas-checks/internal/walk"
)

// MalformedRoundaboutName：注册名，亦为配置键前缀
const MalformedRoundaboutName = "MalformedRoundaboutCheck"

var malformedRoundaboutInstructions = []string{
	"This roundabout, {0,number,#}, is going the wrong direction, or has been improperly tagged as a roundabout.",
	"This roundabout, {0,number,#}, is multi-directional, or the roundabout has improper angle geometry.",
}

// 左侧通行国家（ISO3）
var leftDrivingCountries = []string{
	"AIA", "ATG", "AUS", "BGD", "BHS", "BMU", "BRB", "BRN", "BTN", "BWA", "CCK", "COK", "CXR", "CYM",
	"CYP", "DMA", "FJI", "FLK", "GBR", "GGY", "GRD", "GUY", "HKG", "IDN", "IMN", "IND",
	"IRL", "JAM", "JEY", "JPN", "KEN", "KIR", "KNA", "LCA", "LKA", "LSO", "MAC", "MDV",
	"MLT", "MOZ", "MSR", "MUS", "MWI", "MYS", "NAM", "NFK", "NIU", "NPL", "NRU", "NZL",
	"PAK", "PCN", "PNG", "SGP", "SGS", "SHN", "SLB", "SUR", "SWZ", "SYC", "TCA", "THA",
	"TKL", "TLS", "TON", "TTO", "TUV", "TZA", "UGA", "VCT", "VGB", "VIR", "WSM", "ZAF",
	"ZMB", "ZWE",
}

// RoundaboutDirection：环岛行驶方向
type RoundaboutDirection int

const (
	DirectionUnknown RoundaboutDirection = iota
	DirectionClockwise
	DirectionCounterClockwise
	DirectionMultiDirectional
)

func (d RoundaboutDirection) String() string {
	switch d {
	case DirectionClockwise:
		return "CLOCKWISE"
	case DirectionCounterClockwise:
		return "COUNTERCLOCKWISE"
	case DirectionMultiDirectional:
		return "MULTIDIRECTIONAL"
	}
	return "UNKNOWN"
}

// MalformedRoundaboutCheck：方向与通行规则不符或方向不一致的环岛
type MalformedRoundaboutCheck struct {
	*checks.BaseCheck
	leftDriving map[string]bool
}

// NewMalformedRoundaboutCheck：按配置构造 MalformedRoundaboutCheck，缺省参数取内置默认值
func NewMalformedRoundaboutCheck(cfg *config.Configuration) *MalformedRoundaboutCheck {
	c := &MalformedRoundaboutCheck{leftDriving: map[string]bool{}}
	c.BaseCheck = checks.NewBaseCheck(MalformedRoundaboutName, cfg, c, malformedRoundaboutInstructions...)
	for _, iso := range checks.ParamsFor(MalformedRoundaboutName, cfg).Strings("traffic.countries.left", leftDrivingCountries) {
		c.leftDriving[strings.ToUpper(iso)] = true
	}
	return c
}

func (c *MalformedRoundaboutCheck) ValidCheckForObject(e atlas.Entity) bool {
	return isMainEdge(e) && e.Tags().Has(atlas.TagCountry) && atlas.IsRoundabout(e) &&
		!c.IsFlagged(e.Identifier())
}

func (c *MalformedRoundaboutCheck) Flag(e atlas.Entity) (*flag.CheckFlag, bool) {
	edge := e.(*atlas.Edge)
	iso := strings.ToUpper(edge.Tags().Value(atlas.TagCountry))
	edges := walk.RoundaboutEdges(edge)
	c.MarkAsFlagged(walk.Identifiers(edges)...)

	direction := FindRoundaboutDirection(edges)
	if direction == DirectionMultiDirectional {
		return c.CreateFlag(checks.Edges(edges), c.LocalizedInstruction(1, edge.OsmIdentifier())), true
	}
	left := c.leftDriving[iso]
	if (direction == DirectionClockwise && !left) || (direction == DirectionCounterClockwise && left) {
		return c.CreateFlag(checks.Edges(edges), c.LocalizedInstruction(0, edge.OsmIdentifier())), true
	}
	return nil, false
}

// FindRoundaboutDirection：相邻边对的叉积符号；出现两种符号即为多向
func FindRoundaboutDirection(edges []*atlas.Edge) RoundaboutDirection {
	direction := DirectionUnknown
	for i := range edges {
		e1 := edges[i]
		e2 := edges[(i+1)%len(edges)]
		cross := geo.CrossProduct(e1.Start().Location(), e1.End().Location(), e2.End().Location())
		var current RoundaboutDirection
		switch {
		case cross < 0:
			current = DirectionCounterClockwise
		case cross > 0:
			current = DirectionClockwise
		default:
			continue
		}
		if direction == DirectionUnknown {
			direction = current
		} else if direction != current {
			return DirectionMultiDirectional
		}
	}
	return direction
}
