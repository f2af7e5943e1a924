// 包 runner：检查管理、并发执行与定时调度
package runner

import (
	"sort"
	"sync"
	"time"

	"atlas-checks/internal/checks"
	"atlas-checks/internal/config"
	"atlas-checks/internal/logger"
)

// Status：检查的启用状态与最近一次运行情况
type Status struct {
	Name       string           `json:"name"`
	Enabled    bool             `json:"enabled"`
	Healthy    bool             `json:"healthy"`
	LastRun    time.Time        `json:"last_run,omitempty"`
	LastFlags  int              `json:"last_flags"`
	DurationMs int64            `json:"duration_ms"`
	Challenge  checks.Challenge `json:"challenge"`
}

type state struct {
	enabled    bool
	healthy    bool
	lastRun    time.Time
	lastFlags  int
	durationMs int64
}

// Manager：按名称持有检查；线程安全读写
type Manager struct {
	mu sync.RWMutex
	cs map[string]checks.Check
	st map[string]state
}

func NewManager() *Manager {
	return &Manager{cs: make(map[string]checks.Check), st: make(map[string]state)}
}

// NewManagerFromConfig 以配置构造全部启用的注册检查
func NewManagerFromConfig(cfg *config.Configuration) *Manager {
	m := NewManager()
	m.Reload(cfg)
	return m
}

// Register：同名检查被替换，状态重置为启用
func (m *Manager) Register(c checks.Check) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cs[c.Name()] = c
	m.st[c.Name()] = state{enabled: true, healthy: true}
	logger.L().Debug("check_registered", "name", c.Name(), "challenge", c.Challenge().Name)
}

// Checks 启用的检查，按名称排序
func (m *Manager) Checks() []checks.Check {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]checks.Check, 0, len(m.cs))
	for name, c := range m.cs {
		if m.st[name].enabled {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Lookup 按名称取检查（含已停用）
func (m *Manager) Lookup(name string) (checks.Check, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.cs[name]
	return c, ok
}

// Status 全部检查的状态，按名称排序
func (m *Manager) Status() []Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Status, 0, len(m.cs))
	for name, c := range m.cs {
		s := m.st[name]
		out = append(out, Status{
			Name:       name,
			Enabled:    s.enabled,
			Healthy:    s.healthy,
			LastRun:    s.lastRun,
			LastFlags:  s.lastFlags,
			DurationMs: s.durationMs,
			Challenge:  c.Challenge(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Disable 停用后 Checks 不再返回；返回是否存在
func (m *Manager) Disable(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.st[name]
	if !ok {
		return false
	}
	s.enabled = false
	m.st[name] = s
	logger.L().Info("check_disabled", "name", name)
	return true
}

// Reload 按新配置从注册表重建全部检查
func (m *Manager) Reload(cfg *config.Configuration) {
	built := checks.All(cfg)
	m.mu.Lock()
	m.cs = make(map[string]checks.Check, len(built))
	m.st = make(map[string]state, len(built))
	m.mu.Unlock()
	for _, c := range built {
		m.Register(c)
	}
	logger.L().Info("checks_reloaded", "count", len(built))
}

// record 记录一次运行结果
func (m *Manager) record(name string, flags int, dur time.Duration, healthy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.st[name]
	if !ok {
		return
	}
	s.lastRun = time.Now()
	s.lastFlags = flags
	s.durationMs = dur.Milliseconds()
	s.healthy = healthy
	m.st[name] = s
}
