// 包 walk：小规模图遍历工具；从一条边出发按谓词做 BFS，收集最大连通子集
package walk

import (
	"atlas-checks/internal/atlas"
)

// Collector：给出下一批待访问边；queued 为已入队集合
type Collector func(edge *atlas.Edge, queued map[*atlas.Edge]bool) []*atlas.Edge

// Decider：决定边是否纳入结果集并继续展开
type Decider func(edge *atlas.Edge) bool

// EdgeWalker：BFS 边遍历器
type EdgeWalker struct {
	collector Collector
	decider   Decider
}

// NewEdgeWalker decider 为 nil 时接受所有边
func NewEdgeWalker(collector Collector, decider Decider) *EdgeWalker {
	if decider == nil {
		decider = func(*atlas.Edge) bool { return true }
	}
	return &EdgeWalker{collector: collector, decider: decider}
}

// Collect：从 start 开始遍历，结果按发现顺序返回
// 约束：每条边最多入队一次；未通过 decider 的边不展开
func (w *EdgeWalker) Collect(start *atlas.Edge) []*atlas.Edge {
	if start == nil {
		return nil
	}
	queued := map[*atlas.Edge]bool{start: true}
	queue := []*atlas.Edge{start}
	var out []*atlas.Edge
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if !w.decider(cur) {
			continue
		}
		out = append(out, cur)
		for _, next := range w.collector(cur, queued) {
			if next == nil || queued[next] {
				continue
			}
			queued[next] = true
			queue = append(queue, next)
		}
	}
	return out
}

// Search：带规模上限的连通搜索（汇点孤岛判定）
type Search struct {
	// Next 候选出边（已按有效性过滤）
	Next func(*atlas.Edge) []*atlas.Edge
	// Stop 命中时立即终止搜索
	Stop func(*atlas.Edge) bool
	// Limit 候选数与已探索数之和的上限
	Limit int
}

// Component：搜索结果
type Component struct {
	Explored []*atlas.Edge
	Terminal []*atlas.Edge
	Halted   bool
}

// Run：从 start 出发；无出边的边记为终端，其余记为已探索
func (s Search) Run(start *atlas.Edge) Component {
	var c Component
	explored := map[*atlas.Edge]bool{}
	terminal := map[*atlas.Edge]bool{}
	addExplored := func(e *atlas.Edge) {
		if !explored[e] {
			explored[e] = true
			c.Explored = append(c.Explored, e)
		}
	}
	addExplored(start)
	var candidates []*atlas.Edge
	cur := start
	for cur != nil {
		if s.Stop != nil && s.Stop(cur) {
			c.Halted = true
			addExplored(cur)
			break
		}
		next := s.Next(cur)
		if len(next) == 0 {
			if !terminal[cur] {
				terminal[cur] = true
				c.Terminal = append(c.Terminal, cur)
			}
		} else {
			addExplored(cur)
			for _, n := range next {
				if !explored[n] {
					candidates = append(candidates, n)
				}
			}
			if s.Limit > 0 && len(candidates)+len(explored) > s.Limit {
				c.Halted = true
				break
			}
		}
		cur = nil
		for len(candidates) > 0 {
			n := candidates[0]
			candidates = candidates[1:]
			if !terminal[n] && !explored[n] {
				cur = n
				break
			}
		}
	}
	return c
}
