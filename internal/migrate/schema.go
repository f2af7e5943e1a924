package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"atlas-checks/internal/logger"
)

// EnsureSchema：首次运行自动创建运行记录与标记表
// 约束：语句同时兼容 PostgreSQL 与 SQLite；时间以 unix 秒存为 BIGINT
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS check_runs (
			run_id TEXT PRIMARY KEY,
			country TEXT NOT NULL,
			atlas TEXT NOT NULL,
			started_at BIGINT NOT NULL,
			finished_at BIGINT NOT NULL DEFAULT 0,
			flag_count BIGINT NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_country ON check_runs(country, started_at)`,
		`CREATE TABLE IF NOT EXISTS check_flags (
			run_id TEXT NOT NULL,
			check_name TEXT NOT NULL,
			flag_id TEXT NOT NULL,
			country TEXT NOT NULL,
			instructions TEXT NOT NULL,
			geojson TEXT NOT NULL,
			first_seen BIGINT NOT NULL DEFAULT 0,
			PRIMARY KEY (run_id, check_name, flag_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_flags_check_country ON check_flags(check_name, country)`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
