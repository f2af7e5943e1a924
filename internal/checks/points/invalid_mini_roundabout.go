package points

import (
	"atlas-checks/internal/atlas"
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
	"atlas-checks/internal/flag"
)

// InvalidMiniRoundaboutName：注册名，亦为配置键前缀
const InvalidMiniRoundaboutName = "InvalidMiniRoundaboutCheck"

var invalidMiniRoundaboutInstructions = []string{
	"This Mini-Roundabout Node ({0,number,#}) has 2 connecting car-navigable edges. Consider changing this to highway=TURNING_LOOP or highway=TURNING_CIRCLE.",
	"This Mini-Roundabout Node ({0,number,#}) has {1, number,#} connecting car-navigable edges. Consider changing this.",
}

// InvalidMiniRoundaboutCheck：连接数过少的小型环岛节点
type InvalidMiniRoundaboutCheck struct {
	*checks.BaseCheck
	minimumValence int
}

// NewInvalidMiniRoundaboutCheck：按配置构造 InvalidMiniRoundaboutCheck，缺省参数取内置默认值
func NewInvalidMiniRoundaboutCheck(cfg *config.Configuration) *InvalidMiniRoundaboutCheck {
	c := &InvalidMiniRoundaboutCheck{}
	c.BaseCheck = checks.NewBaseCheck(InvalidMiniRoundaboutName, cfg, c, invalidMiniRoundaboutInstructions...)
	c.minimumValence = checks.ParamsFor(InvalidMiniRoundaboutName, cfg).Int("minimumValence", 6)
	return c
}

func (c *InvalidMiniRoundaboutCheck) ValidCheckForObject(e atlas.Entity) bool {
	_, ok := e.(*atlas.Node)
	return ok && e.Tags().Is(atlas.TagHighway, "mini_roundabout")
}

func (c *InvalidMiniRoundaboutCheck) Flag(e atlas.Entity) (*flag.CheckFlag, bool) {
	node := e.(*atlas.Node)
	var edges []atlas.Entity
	main := 0
	for _, edge := range node.ConnectedEdges() {
		if atlas.IsCarNavigable(edge) {
			edges = append(edges, edge)
			if edge.IsMainEdge() {
				main++
			}
		}
	}
	valence := len(edges)
	var instruction string
	switch {
	case main == 1 && valence == 2:
		// 掉头点：一条双向道路的尽头
		instruction = c.LocalizedInstruction(0, node.OsmIdentifier())
	case !node.Tags().Is("direction", "clockwise", "anticlockwise") && valence > 0 && valence < c.minimumValence:
		instruction = c.LocalizedInstruction(1, node.OsmIdentifier(), valence)
	default:
		return nil, false
	}
	f := c.CreateFlagFor(node, instruction)
	f.AddObjects(edges...)
	return f, true
}
