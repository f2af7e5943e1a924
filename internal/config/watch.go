package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"atlas-checks/internal/logger"
)

// DebounceInterval 连续写入合并窗口
const DebounceInterval = 250 * time.Millisecond

// Watch：监听配置文件变化并回调新配置，阻塞直到 ctx 结束
// 背景：监听所在目录以覆盖编辑器"写临时文件再改名"的保存方式
// 约束：解析失败只记日志，保留旧配置
func Watch(ctx context.Context, path string, fn func(*Configuration)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer w.Close()
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	l := logger.L()
	l.Info("config_watch_begin", "path", abs)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			l.Info("config_watch_end", "path", abs)
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			timer.Reset(DebounceInterval)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.Warn("config_watch_error", "err", err)
		case <-timer.C:
			cfg, err := Load(abs)
			if err != nil {
				l.Warn("config_reload_fail", "path", abs, "err", err)
				continue
			}
			l.Info("config_reload_ok", "path", abs, "checks", len(cfg.Keys()))
			fn(cfg)
		}
	}
}
