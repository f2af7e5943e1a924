package atlas

import (
	"errors"
	"fmt"
	"sort"

	"atlas-checks/internal/geo"
)

var (
	// ErrUnknownNode 边引用了不存在的节点
	ErrUnknownNode = errors.New("atlas: unknown node")
	// ErrDuplicate 同类别 id 重复
	ErrDuplicate = errors.New("atlas: duplicate identifier")
	// ErrGeometry 几何点数不足
	ErrGeometry = errors.New("atlas: invalid geometry")
)

// MemberRef：构建期的关系成员引用
type MemberRef struct {
	Type       ItemType
	Identifier int64
	Role       string
}

type edgeSpec struct {
	id         int64
	start, end int64
	line       geo.PolyLine
	tags       Tags
}

type relationSpec struct {
	id      int64
	tags    Tags
	members []MemberRef
}

// Builder：逐个添加实体后 Build 生成 Atlas
// 约束：非并发安全；Build 后不可复用
type Builder struct {
	name      string
	nodes     map[int64]*Node
	edges     []edgeSpec
	areas     map[int64]*Area
	lines     map[int64]*Line
	points    map[int64]*Point
	relations []relationSpec
	errs      []error
}

// NewBuilder 创建空构建器
func NewBuilder(name string) *Builder {
	return &Builder{
		name:   name,
		nodes:  map[int64]*Node{},
		areas:  map[int64]*Area{},
		lines:  map[int64]*Line{},
		points: map[int64]*Point{},
	}
}

func tagsOrEmpty(t Tags) Tags {
	if t == nil {
		return Tags{}
	}
	return t
}

// AddNode 添加节点
func (b *Builder) AddNode(id int64, loc geo.Location, tags Tags) *Builder {
	if _, dup := b.nodes[id]; dup {
		b.errs = append(b.errs, fmt.Errorf("%w: node %d", ErrDuplicate, id))
		return b
	}
	b.nodes[id] = &Node{base: base{id: id, tags: tagsOrEmpty(tags)}, loc: loc}
	return b
}

// AddEdge 添加有向边；line 为空时取两端节点坐标
func (b *Builder) AddEdge(id, startNode, endNode int64, line geo.PolyLine, tags Tags) *Builder {
	b.edges = append(b.edges, edgeSpec{id: id, start: startNode, end: endNode, line: line, tags: tagsOrEmpty(tags)})
	return b
}

// AddTwoWayEdge 同时添加正向边与反向边
func (b *Builder) AddTwoWayEdge(id, startNode, endNode int64, line geo.PolyLine, tags Tags) *Builder {
	b.AddEdge(id, startNode, endNode, line, tags)
	var rev geo.PolyLine
	if len(line) > 0 {
		rev = line.Reversed()
	}
	return b.AddEdge(-id, endNode, startNode, rev, tags)
}

// AddArea 添加面
func (b *Builder) AddArea(id int64, poly geo.Polygon, tags Tags) *Builder {
	if len(poly.Ring()) < 3 {
		b.errs = append(b.errs, fmt.Errorf("%w: area %d has %d points", ErrGeometry, id, len(poly)))
		return b
	}
	if _, dup := b.areas[id]; dup {
		b.errs = append(b.errs, fmt.Errorf("%w: area %d", ErrDuplicate, id))
		return b
	}
	b.areas[id] = &Area{base: base{id: id, tags: tagsOrEmpty(tags)}, poly: poly}
	return b
}

// AddLine 添加线
func (b *Builder) AddLine(id int64, line geo.PolyLine, tags Tags) *Builder {
	if len(line) < 2 {
		b.errs = append(b.errs, fmt.Errorf("%w: line %d has %d points", ErrGeometry, id, len(line)))
		return b
	}
	if _, dup := b.lines[id]; dup {
		b.errs = append(b.errs, fmt.Errorf("%w: line %d", ErrDuplicate, id))
		return b
	}
	b.lines[id] = &Line{base: base{id: id, tags: tagsOrEmpty(tags)}, line: line}
	return b
}

// AddPoint 添加点
func (b *Builder) AddPoint(id int64, loc geo.Location, tags Tags) *Builder {
	if _, dup := b.points[id]; dup {
		b.errs = append(b.errs, fmt.Errorf("%w: point %d", ErrDuplicate, id))
		return b
	}
	b.points[id] = &Point{base: base{id: id, tags: tagsOrEmpty(tags)}, loc: loc}
	return b
}

// AddRelation 添加关系；成员在 Build 时解析
func (b *Builder) AddRelation(id int64, tags Tags, members ...MemberRef) *Builder {
	b.relations = append(b.relations, relationSpec{id: id, tags: tagsOrEmpty(tags), members: members})
	return b
}

// Build：校验引用并建立邻接
// 约束：边端点必须是已添加的节点；关系中无法解析的成员被丢弃并记为未完整加载
func (b *Builder) Build() (*Atlas, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	a := &Atlas{
		name:      b.name,
		nodes:     b.nodes,
		edges:     make(map[int64]*Edge, len(b.edges)),
		areas:     b.areas,
		lines:     b.lines,
		points:    b.points,
		relations: make(map[int64]*Relation, len(b.relations)),
	}
	for _, spec := range b.edges {
		start, ok := a.nodes[spec.start]
		if !ok {
			return nil, fmt.Errorf("%w: edge %d start %d", ErrUnknownNode, spec.id, spec.start)
		}
		end, ok := a.nodes[spec.end]
		if !ok {
			return nil, fmt.Errorf("%w: edge %d end %d", ErrUnknownNode, spec.id, spec.end)
		}
		if _, dup := a.edges[spec.id]; dup {
			return nil, fmt.Errorf("%w: edge %d", ErrDuplicate, spec.id)
		}
		line := append(geo.PolyLine(nil), spec.line...)
		if len(line) < 2 {
			line = geo.PolyLine{start.loc, end.loc}
		}
		line[0] = start.loc
		line[len(line)-1] = end.loc
		e := &Edge{base: base{id: spec.id, tags: spec.tags}, atlas: a, start: start, end: end, line: line}
		a.edges[spec.id] = e
		start.out = append(start.out, e)
		end.in = append(end.in, e)
	}
	for _, ar := range a.areas {
		ar.atlas = a
	}
	for _, n := range a.nodes {
		SortByIdentifier(n.in)
		SortByIdentifier(n.out)
	}
	// 先创建全部关系，再解析成员以支持关系嵌套
	for _, spec := range b.relations {
		if _, dup := a.relations[spec.id]; dup {
			return nil, fmt.Errorf("%w: relation %d", ErrDuplicate, spec.id)
		}
		a.relations[spec.id] = &Relation{base: base{id: spec.id, tags: spec.tags}, declared: len(spec.members)}
	}
	for _, spec := range b.relations {
		rel := a.relations[spec.id]
		for _, m := range spec.members {
			if ent, ok := a.Entity(m.Type, m.Identifier); ok {
				rel.members = append(rel.members, Member{Role: m.Role, Entity: ent})
			}
		}
	}
	a.sortedNodes = sortedValues(a.nodes)
	a.sortedEdges = sortedValues(a.edges)
	a.sortedAreas = sortedValues(a.areas)
	a.sortedLines = sortedValues(a.lines)
	a.sortedPoints = sortedValues(a.points)
	a.sortedRelations = sortedValues(a.relations)
	return a, nil
}

func sortedValues[T Entity](m map[int64]T) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier() < out[j].Identifier() })
	return out
}
