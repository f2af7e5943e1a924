package points

import (
	"strconv"

	"atlas-checks/internal/atlas"
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
	"atlas-checks/internal/flag"
)

// NodeValenceName：注册名，亦为配置键前缀
const NodeValenceName = "NodeValenceCheck"

var nodeValenceInstructions = []string{
	"Node {0,number,#} has too many connections ({1} connected edges). Ideally a node shouldn't be connected to more than {2} edges.",
}

// NodeValenceCheck：连接过多道路的节点
type NodeValenceCheck struct {
	*checks.BaseCheck
	maximum int
}

// NewNodeValenceCheck：按配置构造 NodeValenceCheck，缺省参数取内置默认值
func NewNodeValenceCheck(cfg *config.Configuration) *NodeValenceCheck {
	c := &NodeValenceCheck{}
	c.BaseCheck = checks.NewBaseCheck(NodeValenceName, cfg, c, nodeValenceInstructions...)
	c.maximum = checks.ParamsFor(NodeValenceName, cfg).Int("connections.maximum", 10)
	return c
}

func (c *NodeValenceCheck) ValidCheckForObject(e atlas.Entity) bool {
	_, ok := e.(*atlas.Node)
	return ok
}

func (c *NodeValenceCheck) Flag(e atlas.Entity) (*flag.CheckFlag, bool) {
	node := e.(*atlas.Node)
	var connected []atlas.Entity
	for _, edge := range node.ConnectedEdges() {
		if edge.IsMainEdge() && atlas.IsCarNavigable(edge) {
			connected = append(connected, edge)
		}
	}
	if len(connected) <= c.maximum {
		return nil, false
	}
	f := flag.New(strconv.FormatInt(node.Identifier(), 10))
	f.ChallengeName = c.Challenge().Name
	f.AddObjects(connected...)
	f.AddObject(node)
	f.AddInstruction(c.LocalizedInstruction(0, node.OsmIdentifier(), len(connected), c.maximum))
	return f, true
}
