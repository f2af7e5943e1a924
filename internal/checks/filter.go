package checks

import (
	"errors"
	"fmt"
	"strings"

	"atlas-checks/internal/atlas"
)

// ErrInvalidFilter 过滤表达式语法错误
var ErrInvalidFilter = errors.New("invalid taggable filter")

// TaggableFilter：形如 highway->motorway,trunk|name->*&oneway->!yes 的标签过滤
// 语义：| 为或，& 为与且优先级更高；* 表示存在，! 表示缺失，!v 表示不等于 v
type TaggableFilter struct {
	source string
	anyOf  [][]tagClause
}

type tagClause struct {
	key    string
	values []string
}

// MatchAll 空过滤器
func MatchAll() *TaggableFilter { return &TaggableFilter{} }

// ParseTaggableFilter 空串得到匹配全部的过滤器
func ParseTaggableFilter(s string) (*TaggableFilter, error) {
	s = strings.TrimSpace(s)
	f := &TaggableFilter{source: s}
	if s == "" {
		return f, nil
	}
	for _, group := range strings.Split(s, "|") {
		var all []tagClause
		for _, term := range strings.Split(group, "&") {
			key, values, ok := strings.Cut(strings.TrimSpace(term), "->")
			key = strings.TrimSpace(key)
			if !ok || key == "" {
				return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, term)
			}
			c := tagClause{key: key}
			for _, v := range strings.Split(values, ",") {
				if v = strings.TrimSpace(v); v != "" {
					c.values = append(c.values, v)
				}
			}
			if len(c.values) == 0 {
				return nil, fmt.Errorf("%w: %q has no values", ErrInvalidFilter, term)
			}
			all = append(all, c)
		}
		f.anyOf = append(f.anyOf, all)
	}
	return f, nil
}

// MustFilter 用于内置常量表达式
func MustFilter(s string) *TaggableFilter {
	f, err := ParseTaggableFilter(s)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *TaggableFilter) String() string { return f.source }

// Test 对标签集求值
func (f *TaggableFilter) Test(tags atlas.Tags) bool {
	if f == nil || len(f.anyOf) == 0 {
		return true
	}
	for _, all := range f.anyOf {
		ok := true
		for _, c := range all {
			if !c.match(tags) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// TestEntity 对实体标签求值
func (f *TaggableFilter) TestEntity(e atlas.Entity) bool { return f.Test(e.Tags()) }

func (c tagClause) match(tags atlas.Tags) bool {
	value, present := tags[c.key]
	for _, v := range c.values {
		switch {
		case v == "*":
			if present {
				return true
			}
		case v == "!":
			if !present {
				return true
			}
		case strings.HasPrefix(v, "!"):
			if !present || value != v[1:] {
				return true
			}
		default:
			if present && value == v {
				return true
			}
		}
	}
	return false
}
