package runner

import (
	"context"

	"atlas-checks/internal/dedup"
	"atlas-checks/internal/flag"
	"atlas-checks/internal/logger"
	"atlas-checks/internal/store"
)

// Persist：写入运行记录与标记，返回新写入的标记数；tracker 为空时全部视为首次出现
// 约束：去重查询失败只记日志，按首次出现写入
func Persist(ctx context.Context, st *store.Store, tracker dedup.Tracker, res *Result) (int, error) {
	runID := res.RunID.String()
	if err := st.SaveRun(ctx, store.Run{RunID: runID, Country: res.Country, Atlas: res.Atlas, Started: res.Started}); err != nil {
		return 0, err
	}
	records, err := res.Container.Records()
	if err != nil {
		return 0, err
	}
	var firstSeen func(flag.Record) bool
	if tracker != nil {
		firstSeen = func(r flag.Record) bool {
			ids := r.Objects
			if len(ids) == 0 {
				ids = []string{r.Identifier}
			}
			first, err := tracker.FirstSeen(ctx, r.Check, ids)
			if err != nil {
				logger.L().Warn("dedup_error", "check", r.Check, "identifier", r.Identifier, "err", err)
				return true
			}
			return first
		}
	}
	n, err := st.SaveFlags(ctx, runID, res.Started, records, firstSeen)
	if err != nil {
		return 0, err
	}
	if err := st.FinishRun(ctx, runID, res.Finished, n); err != nil {
		return n, err
	}
	logger.L().Info("run_persisted", "run", runID, "country", res.Country, "flags", n)
	return n, nil
}
