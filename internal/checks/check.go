// 包 checks：数据质量检查的公共契约与基础实现
// 背景：每个检查独立判定一个对象是否需要标记；具体检查位于子包并在 init 中注册
package checks

import (
	"encoding/json"
	"strings"

	"atlas-checks/internal/atlas"
	"atlas-checks/internal/config"
	"atlas-checks/internal/flag"
)

// Check：检查对外暴露的行为
type Check interface {
	Name() string
	ValidCheckForCountry(iso string) bool
	Check(e atlas.Entity) (*flag.CheckFlag, bool)
	Flags(a *atlas.Atlas) []*flag.CheckFlag
	Challenge() Challenge
	Clear()
}

// Rule：具体检查需实现的判定与标记
type Rule interface {
	ValidCheckForObject(e atlas.Entity) bool
	Flag(e atlas.Entity) (*flag.CheckFlag, bool)
}

// Difficulty：任务难度
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyNormal Difficulty = "NORMAL"
	DifficultyExpert Difficulty = "EXPERT"
)

// Value MapRoulette 的难度数值
func (d Difficulty) Value() int {
	switch Difficulty(strings.ToUpper(string(d))) {
	case DifficultyNormal:
		return 2
	case DifficultyExpert:
		return 3
	}
	return 1
}

// Priority：任务默认优先级
type Priority string

const (
	PriorityNone   Priority = "NONE"
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Value MapRoulette 的优先级数值；NONE 为 -1
func (p Priority) Value() int {
	switch Priority(strings.ToUpper(string(p))) {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return -1
}

// Challenge：检查对应的 MapRoulette 挑战描述
type Challenge struct {
	Name               string         `json:"name" yaml:"name"`
	Description        string         `json:"description" yaml:"description"`
	Blurb              string         `json:"blurb" yaml:"blurb"`
	Instruction        string         `json:"instruction" yaml:"instruction"`
	Difficulty         Difficulty     `json:"difficulty" yaml:"difficulty"`
	Tags               string         `json:"tags,omitempty" yaml:"tags"`
	DefaultPriority    Priority       `json:"defaultPriority,omitempty" yaml:"defaultPriority"`
	HighPriorityRule   map[string]any `json:"highPriorityRule,omitempty" yaml:"highPriorityRule"`
	MediumPriorityRule map[string]any `json:"mediumPriorityRule,omitempty" yaml:"mediumPriorityRule"`
	LowPriorityRule    map[string]any `json:"lowPriorityRule,omitempty" yaml:"lowPriorityRule"`
}

// challengeFrom：读取 <check>.challenge 配置段
func challengeFrom(name string, cfg *config.Configuration) Challenge {
	key := func(k string) string { return name + ".challenge." + k }
	c := Challenge{
		Name:               cfg.String(key("name"), name),
		Description:        cfg.String(key("description"), ""),
		Blurb:              cfg.String(key("blurb"), ""),
		Instruction:        cfg.String(key("instruction"), ""),
		Difficulty:         Difficulty(strings.ToUpper(cfg.String(key("difficulty"), string(DifficultyEasy)))),
		Tags:               cfg.String(key("tags"), ""),
		DefaultPriority:    Priority(strings.ToUpper(cfg.String(key("defaultPriority"), string(PriorityNone)))),
		HighPriorityRule:   priorityRule(cfg, key("highPriorityRule")),
		MediumPriorityRule: priorityRule(cfg, key("mediumPriorityRule")),
		LowPriorityRule:    priorityRule(cfg, key("lowPriorityRule")),
	}
	if c.Name == "" {
		c.Name = name
	}
	return c
}

// priorityRule：接受映射或 JSON 字符串；简写规则 "k=v" 展开为标签比较
func priorityRule(cfg *config.Configuration, key string) map[string]any {
	rule := cfg.Section(key)
	if rule == nil {
		raw := cfg.String(key, "")
		if raw == "" || json.Unmarshal([]byte(raw), &rule) != nil {
			return nil
		}
	}
	rules, ok := rule["rules"].([]any)
	if !ok {
		return rule
	}
	out := make([]any, 0, len(rules))
	for _, r := range rules {
		s, ok := r.(string)
		if !ok {
			out = append(out, r)
			continue
		}
		k, v, found := strings.Cut(s, "=")
		if !found {
			continue
		}
		out = append(out, map[string]any{
			"id":       "tag",
			"field":    "tag",
			"type":     "string",
			"operator": "equal",
			"value":    strings.TrimSpace(k) + "." + strings.TrimSpace(v),
		})
	}
	rule["rules"] = out
	return rule
}
