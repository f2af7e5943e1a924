package linear

import (
	"atlas-checks/internal/atlas"
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
	"atlas-checks/internal/flag"
)

// ShortSegmentName：注册名，亦为配置键前缀
const ShortSegmentName = "ShortSegmentCheck"

var shortSegmentInstructions = []string{
	"This edge {0,number,#} is short (length < {1} m) and it is connected to node {2,number,#} that has less than {3} connections.",
}

// ShortSegmentCheck：连接低连通度节点的极短路段
type ShortSegmentCheck struct {
	*checks.BaseCheck
	maximumMeters  float64
	minimumValence int
	minimumHighway atlas.HighwayTag
}

// NewShortSegmentCheck：按配置构造 ShortSegmentCheck，缺省参数取内置默认值
func NewShortSegmentCheck(cfg *config.Configuration) *ShortSegmentCheck {
	c := &ShortSegmentCheck{}
	c.BaseCheck = checks.NewBaseCheck(ShortSegmentName, cfg, c, shortSegmentInstructions...)
	p := checks.ParamsFor(ShortSegmentName, cfg)
	c.maximumMeters = p.Float("edge.length.maximum.meters", 1)
	c.minimumValence = p.Int("node.valence.minimum", 3)
	c.minimumHighway = p.Highway("highway.priority.minimum", atlas.HighwayService)
	return c
}

func (c *ShortSegmentCheck) ValidCheckForObject(e atlas.Entity) bool {
	edge, ok := asEdge(e)
	return ok && edge.IsMainEdge() && atlas.HighwayAtLeast(edge, c.minimumHighway) &&
		edge.Length() < c.maximumMeters
}

func (c *ShortSegmentCheck) Flag(e atlas.Entity) (*flag.CheckFlag, bool) {
	edge := e.(*atlas.Edge)
	node := c.lowValenceNode(edge)
	if node == nil || isGateLike(edge) {
		return nil, false
	}
	instruction := c.LocalizedInstruction(0, edge.Identifier(), c.maximumMeters, node.Identifier(), c.minimumValence)
	return c.CreateFlagFor(edge, instruction, node.Location()), true
}

// lowValenceNode：正向边数不足的端点；同一条 way 穿过的二度节点除外
func (c *ShortSegmentCheck) lowValenceNode(edge *atlas.Edge) *atlas.Node {
	for _, node := range edge.ConnectedNodes() {
		var main []*atlas.Edge
		for _, o := range node.ConnectedEdges() {
			if o.IsMainEdge() {
				main = append(main, o)
			}
		}
		if len(main) >= c.minimumValence {
			continue
		}
		sameWay := 0
		for _, o := range main {
			if o.OsmIdentifier() == edge.OsmIdentifier() {
				sameWay++
			}
		}
		if len(main) == 2 && sameWay > 1 {
			continue
		}
		return node
	}
	return nil
}

func isGateLike(edge *atlas.Edge) bool {
	return (mainEdgeCount(edge.Start().ConnectedEdges()) > 1 && edge.End().Tags().Has(atlas.TagBarrier)) ||
		(mainEdgeCount(edge.End().ConnectedEdges()) > 1 && edge.Start().Tags().Has(atlas.TagBarrier))
}
