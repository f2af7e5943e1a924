package atlas

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"atlas-checks/internal/geo"
)

// 属性键
const (
	PropItemType   = "itemType"
	PropIdentifier = "identifier"
	PropStartNode  = "startNode"
	PropEndNode    = "endNode"
	PropMembers    = "members"
	PropTags       = "tags"
	PropRole       = "role"
)

// syntheticNodeBase：未声明端点时为边生成的节点 id 起点
const syntheticNodeBase int64 = 1 << 52

// maxExactFloat：float64 可精确表示的最大整数
const maxExactFloat = 1 << 53

// LoadFile 读取 atlas GeoJSON 文件；名称取文件名
func LoadFile(path string) (*Atlas, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open atlas %s: %w", path, err)
	}
	defer f.Close()
	a, err := Load(filepath.Base(path), f)
	if err != nil {
		return nil, fmt.Errorf("load atlas %s: %w", path, err)
	}
	return a, nil
}

// Load：解析 FeatureCollection 构建 Atlas
// 约束：每个 feature 需有 itemType 与 identifier；关系的 geometry 可为空
func Load(name string, r io.Reader) (*Atlas, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}
	if err := exactProperties(data, fc); err != nil {
		return nil, fmt.Errorf("decode feature properties: %w", err)
	}
	b := NewBuilder(name)

	type pendingEdge struct {
		id         int64
		start, end int64
		line       geo.PolyLine
		tags       Tags
	}
	var edges []pendingEdge

	for i, f := range fc.Features {
		typeName, _ := f.Properties[PropItemType].(string)
		itemType, err := ParseItemType(typeName)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		id, ok := int64Prop(f.Properties[PropIdentifier])
		if !ok {
			return nil, fmt.Errorf("feature %d: missing identifier", i)
		}
		tags := tagsFrom(f.Properties)
		switch itemType {
		case ItemNode, ItemPoint:
			p, ok := f.Geometry.(orb.Point)
			if !ok {
				return nil, fmt.Errorf("feature %d: %s %d needs Point geometry", i, itemType, id)
			}
			if itemType == ItemNode {
				b.AddNode(id, geo.FromPoint(p), tags)
			} else {
				b.AddPoint(id, geo.FromPoint(p), tags)
			}
		case ItemEdge, ItemLine:
			ls, ok := f.Geometry.(orb.LineString)
			if !ok {
				return nil, fmt.Errorf("feature %d: %s %d needs LineString geometry", i, itemType, id)
			}
			line := polyLineFrom(ls)
			if itemType == ItemLine {
				b.AddLine(id, line, tags)
				continue
			}
			start, _ := int64Prop(f.Properties[PropStartNode])
			end, _ := int64Prop(f.Properties[PropEndNode])
			edges = append(edges, pendingEdge{id: id, start: start, end: end, line: line, tags: tags})
		case ItemArea:
			poly, ok := f.Geometry.(orb.Polygon)
			if !ok || len(poly) == 0 {
				return nil, fmt.Errorf("feature %d: area %d needs Polygon geometry", i, id)
			}
			b.AddArea(id, geo.Polygon(polyLineFrom(orb.LineString(poly[0]))), tags)
		case ItemRelation:
			members, err := membersFrom(f.Properties[PropMembers])
			if err != nil {
				return nil, fmt.Errorf("feature %d: relation %d: %w", i, id, err)
			}
			b.AddRelation(id, tags, members...)
		}
	}
	// 节点全部添加后再处理边，未声明端点时按坐标复用或生成节点；同一坐标取最小 id
	byLocation := make(map[[2]int64]int64, len(b.nodes))
	for id, n := range b.nodes {
		k := n.loc.Key()
		if cur, ok := byLocation[k]; !ok || id < cur {
			byLocation[k] = id
		}
	}
	nextSynthetic := syntheticNodeBase
	nodeAt := func(loc geo.Location) int64 {
		if id, ok := byLocation[loc.Key()]; ok {
			return id
		}
		for {
			nextSynthetic++
			if _, taken := b.nodes[nextSynthetic]; !taken {
				break
			}
		}
		b.AddNode(nextSynthetic, loc, nil)
		byLocation[loc.Key()] = nextSynthetic
		return nextSynthetic
	}
	for _, e := range edges {
		if len(e.line) < 2 {
			return nil, fmt.Errorf("%w: edge %d", ErrGeometry, e.id)
		}
		if _, ok := b.nodes[e.start]; !ok || e.start == 0 {
			e.start = nodeAt(e.line.First())
		}
		if _, ok := b.nodes[e.end]; !ok || e.end == 0 {
			e.end = nodeAt(e.line.Last())
		}
		b.AddEdge(e.id, e.start, e.end, e.line, e.tags)
	}
	return b.Build()
}

// exactProperties：以 json.Number 重新解码各 feature 的属性，替换 orb 经 float64 解出的版本
func exactProperties(data []byte, fc *geojson.FeatureCollection) error {
	var doc struct {
		Features []struct {
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return err
	}
	if len(doc.Features) != len(fc.Features) {
		return fmt.Errorf("feature count mismatch: %d != %d", len(doc.Features), len(fc.Features))
	}
	for i, f := range doc.Features {
		if f.Properties != nil {
			fc.Features[i].Properties = f.Properties
		}
	}
	return nil
}

func polyLineFrom(ls orb.LineString) geo.PolyLine {
	out := make(geo.PolyLine, len(ls))
	for i, p := range ls {
		out[i] = geo.FromPoint(p)
	}
	return out
}

// tagsFrom：合并 tags 对象与其余字符串属性
func tagsFrom(props geojson.Properties) Tags {
	tags := Tags{}
	for k, v := range props {
		switch k {
		case PropItemType, PropIdentifier, PropStartNode, PropEndNode, PropMembers, PropTags:
			continue
		}
		if s, ok := v.(string); ok {
			tags[k] = s
		}
	}
	if nested, ok := props[PropTags].(map[string]interface{}); ok {
		for k, v := range nested {
			tags[k] = fmt.Sprint(v)
		}
	}
	return tags
}

func membersFrom(raw interface{}) ([]MemberRef, error) {
	list, ok := raw.([]interface{})
	if !ok {
		if raw == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("members must be an array")
	}
	out := make([]MemberRef, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("member %d must be an object", i)
		}
		typeName, _ := m[PropItemType].(string)
		if typeName == "" {
			typeName, _ = m["type"].(string)
		}
		t, err := ParseItemType(typeName)
		if err != nil {
			return nil, fmt.Errorf("member %d: %w", i, err)
		}
		id, ok := int64Prop(m[PropIdentifier])
		if !ok {
			return nil, fmt.Errorf("member %d: missing identifier", i)
		}
		role, _ := m[PropRole].(string)
		out = append(out, MemberRef{Type: t, Identifier: id, Role: role})
	}
	return out, nil
}

func int64Prop(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		id, err := strconv.ParseInt(n.String(), 10, 64)
		return id, err == nil
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > maxExactFloat {
			return 0, false
		}
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case string:
		id, err := strconv.ParseInt(n, 10, 64)
		return id, err == nil
	}
	return 0, false
}
