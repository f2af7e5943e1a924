package runner

import (
	"context"
	"time"

	"atlas-checks/internal/logger"
)

// Schedule：每隔 interval 调用 fn 直到 ctx 结束；runNow 时先执行一次
// 约束：fn 的错误只记日志；ctx 结束时返回
func Schedule(ctx context.Context, interval time.Duration, runNow bool, fn func(context.Context) error) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	call := func() {
		if err := fn(ctx); err != nil {
			logger.L().Error("schedule_run_error", "err", err)
		}
	}
	if runNow {
		call()
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			call()
		}
	}
}
