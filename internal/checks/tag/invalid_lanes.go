package tag

import (
	"sync"

	"atlas-checks/internal/atlas"
	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
	"atlas-checks/internal/flag"
)

// InvalidLanesTagName：注册名，亦为配置键前缀
const InvalidLanesTagName = "InvalidLanesTagCheck"

var invalidLanesInstructions = []string{
	"Way {0,number,#} has an invalid lanes value.",
}

// 收费广场成员边的搜索上限
const maxTollPlazaEdges = 20

// InvalidLanesTagCheck：lanes 取值不在允许列表；收费广场附近的成片非法取值不报
type InvalidLanesTagCheck struct {
	*checks.BaseCheck
	lanes *checks.TaggableFilter

	mu      sync.Mutex
	checked map[int64]bool
}

// NewInvalidLanesTagCheck：按配置构造 InvalidLanesTagCheck，缺省参数取内置默认值
func NewInvalidLanesTagCheck(cfg *config.Configuration) *InvalidLanesTagCheck {
	c := &InvalidLanesTagCheck{checked: map[int64]bool{}}
	c.BaseCheck = checks.NewBaseCheck(InvalidLanesTagName, cfg, c, invalidLanesInstructions...)
	c.lanes = checks.ParamsFor(InvalidLanesTagName, cfg).Filter("lanes.filter", "lanes->1,1.5,2,3,4,5,6,7,8,9,10")
	return c
}

// Clear 同时清空收费广场检查的缓存
func (c *InvalidLanesTagCheck) Clear() {
	c.BaseCheck.Clear()
	c.mu.Lock()
	c.checked = map[int64]bool{}
	c.mu.Unlock()
}

func (c *InvalidLanesTagCheck) invalidLanes(e *atlas.Edge) bool {
	return e.Tags().Has(atlas.TagLanes) && atlas.IsCarNavigable(e) && !c.lanes.TestEntity(e)
}

func (c *InvalidLanesTagCheck) ValidCheckForObject(e atlas.Entity) bool {
	edge, ok := e.(*atlas.Edge)
	return ok && edge.IsMainEdge() && c.invalidLanes(edge) && !c.IsFlagged(e.OsmIdentifier())
}

func (c *InvalidLanesTagCheck) Flag(e atlas.Entity) (*flag.CheckFlag, bool) {
	edge := e.(*atlas.Edge)
	c.mu.Lock()
	checked := c.checked[edge.Identifier()]
	c.mu.Unlock()
	if !checked && c.partOfTollBooth(edge) {
		return nil, false
	}
	c.MarkAsFlagged(edge.OsmIdentifier())
	return c.CreateFlagFor(edge, c.LocalizedInstruction(0, edge.OsmIdentifier())), true
}

// partOfTollBooth：相连的非法 lanes 边中有节点是收费站
// 是则整片标记为已处理；否则记入缓存，后续直接报
func (c *InvalidLanesTagCheck) partOfTollBooth(edge *atlas.Edge) bool {
	cluster := c.connectedInvalidLanes(edge)
	for _, e := range cluster {
		for _, n := range e.ConnectedNodes() {
			if n.Tags().Is(atlas.TagBarrier, "toll_booth") {
				for _, member := range cluster {
					c.MarkAsFlagged(member.OsmIdentifier())
				}
				return true
			}
		}
	}
	c.mu.Lock()
	for _, member := range cluster {
		c.checked[member.Identifier()] = true
	}
	c.mu.Unlock()
	return false
}

func (c *InvalidLanesTagCheck) connectedInvalidLanes(start *atlas.Edge) []*atlas.Edge {
	seen := map[int64]bool{start.Identifier(): true}
	cluster := []*atlas.Edge{start}
	queue := []*atlas.Edge{start}
	for polled := 0; len(queue) > 0 && polled < maxTollPlazaEdges; polled++ {
		current := queue[0]
		queue = queue[1:]
		for _, e := range current.ConnectedEdges() {
			if seen[e.Identifier()] || !c.invalidLanes(e) {
				continue
			}
			seen[e.Identifier()] = true
			cluster = append(cluster, e)
			queue = append(queue, e)
		}
	}
	return cluster
}
