// 包 config：检查参数配置（YAML）与进程环境变量
// 背景：顶层键为检查名，参数可写成扁平点号键或嵌套映射，两种写法都能按 "Check.a.b" 取到
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound 键不存在
var ErrNotFound = errors.New("config: key not found")

// GlobalEnabledKey：全局启用默认值
const GlobalEnabledKey = "CheckResourceLoader.checks.enabled"

// Configuration：只读配置树
type Configuration struct {
	root map[string]any
}

// Empty 空配置，所有取值走默认
func Empty() *Configuration { return &Configuration{root: map[string]any{}} }

// FromMap 直接以映射构造（测试与内嵌默认值）
func FromMap(m map[string]any) *Configuration {
	if m == nil {
		return Empty()
	}
	return &Configuration{root: m}
}

// Parse 解析 YAML 文档
func Parse(data []byte) (*Configuration, error) {
	root := map[string]any{}
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse check configuration: %w", err)
	}
	return FromMap(root), nil
}

// Load：读取配置文件；path 为空或文件不存在时返回空配置
func Load(path string) (*Configuration, error) {
	if path == "" {
		return Empty(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read check configuration %s: %w", path, err)
	}
	return Parse(data)
}

// Get：按点号路径取值；同一层级优先匹配最长的扁平键
func (c *Configuration) Get(key string) (any, bool) {
	if c == nil || key == "" {
		return nil, false
	}
	return lookup(c.root, strings.Split(key, "."))
}

func lookup(m map[string]any, parts []string) (any, bool) {
	for i := len(parts); i >= 1; i-- {
		v, ok := m[strings.Join(parts[:i], ".")]
		if !ok {
			continue
		}
		if i == len(parts) {
			return v, true
		}
		if sub, ok := asMap(v); ok {
			if found, ok := lookup(sub, parts[i:]); ok {
				return found, true
			}
		}
	}
	return nil, false
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

// Lookup：与 Get 相同，缺失时返回 ErrNotFound
func (c *Configuration) Lookup(key string) (any, error) {
	v, ok := c.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return v, nil
}

// Float 数值；字符串可解析时也接受
func (c *Configuration) Float(key string, def float64) float64 {
	v, ok := c.Get(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f
		}
	}
	return def
}

// Int 整数；浮点数截断
func (c *Configuration) Int(key string, def int) int {
	v, ok := c.Get(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	}
	return def
}

// Bool 布尔值；接受 "true"/"false" 字符串
func (c *Configuration) Bool(key string, def bool) bool {
	v, ok := c.Get(key)
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
			return parsed
		}
	}
	return def
}

// String 字符串；标量按 fmt 格式化
func (c *Configuration) String(key string, def string) string {
	v, ok := c.Get(key)
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	if _, isMap := asMap(v); isMap {
		return def
	}
	if _, isList := v.([]any); isList {
		return def
	}
	return fmt.Sprint(v)
}

// Strings 字符串列表；单个字符串按逗号切分
func (c *Configuration) Strings(key string, def []string) []string {
	v, ok := c.Get(key)
	if !ok {
		return def
	}
	return toStrings(v, def)
}

func toStrings(v any, def []string) []string {
	switch list := v.(type) {
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case []string:
		return list
	case string:
		if strings.TrimSpace(list) == "" {
			return []string{}
		}
		parts := strings.Split(list, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return def
}

// Section 子映射
func (c *Configuration) Section(key string) map[string]any {
	v, ok := c.Get(key)
	if !ok {
		return nil
	}
	m, _ := asMap(v)
	return m
}

// StringMap 子映射的值格式化为字符串
func (c *Configuration) StringMap(key string) map[string]string {
	sec := c.Section(key)
	if sec == nil {
		return nil
	}
	out := make(map[string]string, len(sec))
	for k, v := range sec {
		out[k] = fmt.Sprint(v)
	}
	return out
}

// StringLists：形如 {en: [a, b]} 的映射
func (c *Configuration) StringLists(key string) map[string][]string {
	sec := c.Section(key)
	if sec == nil {
		return nil
	}
	out := make(map[string][]string, len(sec))
	for k, v := range sec {
		out[k] = toStrings(v, nil)
	}
	return out
}

// Enabled：<check>.enabled，缺省取全局默认（默认 true）
func (c *Configuration) Enabled(check string) bool {
	return c.Bool(check+".enabled", c.Bool(GlobalEnabledKey, true))
}

// Keys 顶层键，升序
func (c *Configuration) Keys() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.root))
	for k := range c.root {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
