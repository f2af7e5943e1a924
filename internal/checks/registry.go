package checks

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"atlas-checks/internal/config"
)

// ErrUnknownCheck 未注册的检查名
var ErrUnknownCheck = errors.New("unknown check")

// Factory 按配置构造检查
type Factory func(cfg *config.Configuration) Check

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register 由各检查子包在 init 中调用；重复注册会 panic
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic("checks: duplicate registration of " + name)
	}
	registry[name] = factory
}

// Names 已注册的检查名，升序
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// New 按名称构造
func New(name string, cfg *config.Configuration) (Check, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCheck, name)
	}
	if cfg == nil {
		cfg = config.Empty()
	}
	return factory(cfg), nil
}

// All 构造全部启用的检查，按名称排序
func All(cfg *config.Configuration) []Check {
	if cfg == nil {
		cfg = config.Empty()
	}
	var out []Check
	for _, name := range Names() {
		if !cfg.Enabled(name) {
			continue
		}
		c, err := New(name, cfg)
		if err == nil {
			out = append(out, c)
		}
	}
	return out
}
