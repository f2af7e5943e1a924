package checks

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"atlas-checks/internal/atlas"
	"atlas-checks/internal/config"
	"atlas-checks/internal/flag"
	"atlas-checks/internal/geo"
	"atlas-checks/internal/logger"
	"atlas-checks/internal/metrics"
)

// DefaultLocale 说明文本默认语言
const DefaultLocale = "en"

// BaseCheck：所有检查共用的国家过滤、标签过滤、已标记集合与说明文本
type BaseCheck struct {
	name        string
	rule        Rule
	acceptPiers bool
	whitelist   map[string]bool
	blacklist   map[string]bool
	filter      *TaggableFilter
	challenge   Challenge
	flagsByLang map[string][]string
	locale      string
	fallback    []string
	log         *slog.Logger

	mu      sync.RWMutex
	flagged map[int64]bool
}

// NewBaseCheck：读取 <name>.* 的公共参数
// 约束：tags.filter 语法错误时记录告警并视为不过滤
func NewBaseCheck(name string, cfg *config.Configuration, rule Rule, fallback ...string) *BaseCheck {
	if cfg == nil {
		cfg = config.Empty()
	}
	p := ParamsFor(name, cfg)
	b := &BaseCheck{
		name:        name,
		rule:        rule,
		acceptPiers: p.Bool("accept.piers", false),
		whitelist:   upperSet(p.Strings("countries.whitelist", nil)),
		blacklist:   upperSet(p.Strings("countries.blacklist", nil)),
		challenge:   challengeFrom(name, cfg),
		flagsByLang: cfg.StringLists(name + ".flags"),
		locale:      strings.ToLower(p.String("locale", DefaultLocale)),
		fallback:    fallback,
		log:         logger.ForCheck(name),
		flagged:     map[int64]bool{},
	}
	filter, err := ParseTaggableFilter(p.String("tags.filter", ""))
	if err != nil {
		b.log.Warn("check_filter_invalid", "err", err)
		filter = MatchAll()
	}
	b.filter = filter
	return b
}

func upperSet(values []string) map[string]bool {
	out := make(map[string]bool, len(values))
	for _, v := range values {
		if v = strings.ToUpper(strings.TrimSpace(v)); v != "" {
			out[v] = true
		}
	}
	return out
}

func (b *BaseCheck) Name() string         { return b.name }
func (b *BaseCheck) Challenge() Challenge { return b.challenge }
func (b *BaseCheck) Logger() *slog.Logger { return b.log }

// ValidCheckForCountry：白名单非空时只认白名单，否则排除黑名单
func (b *BaseCheck) ValidCheckForCountry(iso string) bool {
	iso = strings.ToUpper(iso)
	if len(b.whitelist) > 0 {
		return b.whitelist[iso]
	}
	return !b.blacklist[iso]
}

// Check：通过对象判定、标签过滤与码头过滤后调用 Flag
// 约束：Flag 内部 panic 只记日志，返回无标记
func (b *BaseCheck) Check(e atlas.Entity) (f *flag.CheckFlag, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			metrics.CheckPanicsTotal.WithLabelValues(b.name).Inc()
			b.log.Error("check_panic", "type", e.Type().String(), "id", e.Identifier(), "panic", fmt.Sprint(r))
			f, ok = nil, false
		}
	}()
	if !b.rule.ValidCheckForObject(e) || !b.filter.Test(e.Tags()) {
		return nil, false
	}
	if !b.acceptPiers && atlas.IsPier(e) {
		return nil, false
	}
	f, ok = b.rule.Flag(e)
	if !ok || f == nil {
		return nil, false
	}
	if f.ChallengeName == "" {
		f.ChallengeName = b.challenge.Name
	}
	return f, true
}

// Flags 依次检查图中全部实体
func (b *BaseCheck) Flags(a *atlas.Atlas) []*flag.CheckFlag {
	var out []*flag.CheckFlag
	for _, e := range a.Entities() {
		if f, ok := b.Check(e); ok {
			out = append(out, f)
		}
	}
	return out
}

// IsFlagged 并发安全
func (b *BaseCheck) IsFlagged(id int64) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.flagged[id]
}

// MarkAsFlagged 并发安全
func (b *BaseCheck) MarkAsFlagged(ids ...int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range ids {
		b.flagged[id] = true
	}
}

// FlaggedCount 已标记 id 数
func (b *BaseCheck) FlaggedCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.flagged)
}

// Clear 清空已标记集合（每份图运行前调用）
func (b *BaseCheck) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flagged = map[int64]bool{}
}

// LocalizedInstruction：按 locale → en → 内置说明的顺序取模板并格式化
func (b *BaseCheck) LocalizedInstruction(index int, args ...any) string {
	var templates []string
	if t, ok := b.flagsByLang[b.locale]; ok {
		templates = t
	} else if t, ok := b.flagsByLang[DefaultLocale]; ok {
		templates = t
	} else {
		templates = b.fallback
	}
	if index < 0 || index >= len(templates) {
		templates = b.fallback
	}
	if index < 0 || index >= len(templates) {
		return ""
	}
	return Format(templates[index], args...)
}

// CreateFlag：以对象 id 组合为标识创建标记
func (b *BaseCheck) CreateFlag(entities []atlas.Entity, instruction string, points ...geo.Location) *flag.CheckFlag {
	f := flag.New(flag.TaskIdentifier(entities))
	f.ChallengeName = b.challenge.Name
	f.AddObjects(entities...)
	f.AddInstruction(instruction)
	f.AddPoint(points...)
	return f
}

// CreateFlagFor 单对象标记
func (b *BaseCheck) CreateFlagFor(e atlas.Entity, instruction string, points ...geo.Location) *flag.CheckFlag {
	return b.CreateFlag([]atlas.Entity{e}, instruction, points...)
}

// Edges 将边切片转为实体切片
func Edges(edges []*atlas.Edge) []atlas.Entity {
	out := make([]atlas.Entity, len(edges))
	for i, e := range edges {
		out[i] = e
	}
	return out
}

// Params：按检查名前缀读取参数
type Params struct {
	name string
	cfg  *config.Configuration
}

// ParamsFor 构造参数读取器
func ParamsFor(name string, cfg *config.Configuration) Params {
	if cfg == nil {
		cfg = config.Empty()
	}
	return Params{name: name, cfg: cfg}
}

func (p Params) key(k string) string { return p.name + "." + k }

func (p Params) Float(k string, def float64) float64     { return p.cfg.Float(p.key(k), def) }
func (p Params) Int(k string, def int) int               { return p.cfg.Int(p.key(k), def) }
func (p Params) Bool(k string, def bool) bool            { return p.cfg.Bool(p.key(k), def) }
func (p Params) String(k string, def string) string      { return p.cfg.String(p.key(k), def) }
func (p Params) Strings(k string, def []string) []string { return p.cfg.Strings(p.key(k), def) }

// Highway 以 highway 名称配置的等级；非法值取默认
func (p Params) Highway(k string, def atlas.HighwayTag) atlas.HighwayTag {
	if h, ok := atlas.ParseHighwayTag(p.String(k, def.String())); ok {
		return h
	}
	return def
}

// Filter 以 TaggableFilter 语法配置的过滤器；非法时退回默认
func (p Params) Filter(k string, def string) *TaggableFilter {
	f, err := ParseTaggableFilter(p.String(k, def))
	if err != nil {
		f, _ = ParseTaggableFilter(def)
	}
	if f == nil {
		return MatchAll()
	}
	return f
}
