package flag

import (
	"sort"
	"strings"
	"sync"
)

// Container：按 (检查名, 对象集合) 去重的标记容器；并发安全
type Container struct {
	mu    sync.RWMutex
	flags map[string]map[string]*CheckFlag
	order map[string][]string
}

// NewContainer 创建空容器
func NewContainer() *Container {
	return &Container{flags: map[string]map[string]*CheckFlag{}, order: map[string][]string{}}
}

func uniqueKey(f *CheckFlag) string {
	ids := f.UniqueIdentifiers()
	if len(ids) == 0 {
		return "#" + f.Identifier
	}
	return strings.Join(ids, ",")
}

// Add：同一检查下对象集合相同时保留先到的标记，返回是否新增
func (c *Container) Add(check string, f *CheckFlag) bool {
	if f == nil {
		return false
	}
	key := uniqueKey(f)
	c.mu.Lock()
	defer c.mu.Unlock()
	byKey, ok := c.flags[check]
	if !ok {
		byKey = map[string]*CheckFlag{}
		c.flags[check] = byKey
	}
	if _, dup := byKey[key]; dup {
		return false
	}
	byKey[key] = f
	c.order[check] = append(c.order[check], key)
	return true
}

// AddAll 批量添加，返回新增数量
func (c *Container) AddAll(check string, flags []*CheckFlag) int {
	n := 0
	for _, f := range flags {
		if c.Add(check, f) {
			n++
		}
	}
	return n
}

// Merge 合并另一容器
func (c *Container) Merge(o *Container) {
	for _, check := range o.Checks() {
		c.AddAll(check, o.Flags(check))
	}
}

// Checks 有标记的检查名，升序
func (c *Container) Checks() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.flags))
	for k := range c.flags {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Flags 指定检查的标记，按加入顺序
func (c *Container) Flags(check string) []*CheckFlag {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := c.order[check]
	out := make([]*CheckFlag, 0, len(keys))
	for _, k := range keys {
		out = append(out, c.flags[check][k])
	}
	return out
}

// Len 标记总数
func (c *Container) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, m := range c.flags {
		n += len(m)
	}
	return n
}

// Records 全部标记的持久化形式（按检查名、加入顺序）
func (c *Container) Records() ([]Record, error) {
	var out []Record
	for _, check := range c.Checks() {
		for _, f := range c.Flags(check) {
			r, err := f.Record(check)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
	}
	return out, nil
}
