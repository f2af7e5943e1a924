// 包 store：检查运行与标记的持久化，支持 PostgreSQL 与 SQLite
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"atlas-checks/internal/flag"
	"atlas-checks/internal/logger"
	"atlas-checks/internal/utils"
)

// ErrNotFound 查询无结果
var ErrNotFound = errors.New("store: not found")

// Dialect SQL 方言，取值与驱动名一致
type Dialect string

const (
	Postgres Dialect = utils.DriverPostgres
	SQLite   Dialect = utils.DriverSQLite
)

// Store：数据库访问入口，持有连接池
type Store struct {
	db      *sql.DB
	dialect Dialect
}

func AttachDB(db *sql.DB, dialect Dialect) *Store { return &Store{db: db, dialect: dialect} }

// Open：按驱动名与 DSN 打开数据库；sqlite 的 DSN 为文件路径
func Open(driver, dsn string) (*Store, error) {
	var (
		db  *sql.DB
		err error
	)
	switch Dialect(driver) {
	case Postgres:
		db, err = utils.OpenPostgres(dsn)
	case SQLite:
		db, err = utils.OpenSQLite(dsn)
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	return AttachDB(db, Dialect(driver)), nil
}

// Close 关闭数据库连接
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// rebind：把 ? 占位符改写为 PostgreSQL 的 $n
func (s *Store) rebind(q string) string {
	if s.dialect != Postgres {
		return q
	}
	var sb strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Run：一次检查运行
type Run struct {
	RunID     string
	Country   string
	Atlas     string
	Started   time.Time
	Finished  time.Time
	FlagCount int
}

func unix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func fromUnix(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.Unix(v, 0).UTC()
}

// SaveRun 写入运行记录；同一 run_id 重复写入时覆盖统计
func (s *Store) SaveRun(ctx context.Context, r Run) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO check_runs(run_id, country, atlas, started_at, finished_at, flag_count)
		VALUES(?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id) DO UPDATE SET finished_at=EXCLUDED.finished_at, flag_count=EXCLUDED.flag_count`),
		r.RunID, r.Country, r.Atlas, unix(r.Started), unix(r.Finished), r.FlagCount)
	if err != nil {
		return fmt.Errorf("save run %s: %w", r.RunID, err)
	}
	logger.L().Debug("db_run_saved", "run", r.RunID, "country", r.Country)
	return nil
}

// FinishRun 记录结束时间与标记数
func (s *Store) FinishRun(ctx context.Context, runID string, finished time.Time, flags int) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`UPDATE check_runs SET finished_at=?, flag_count=? WHERE run_id=?`),
		unix(finished), flags, runID)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrNotFound)
	}
	return nil
}

// SaveFlags：事务内批量写入标记，已存在的 (run, check, flag) 跳过，返回新写入条数
// seenAt 为本次运行的开始时间，首次出现的标记统一记为该秒；firstSeen 为 nil 时全部视为首次出现
func (s *Store) SaveFlags(ctx context.Context, runID string, seenAt time.Time, records []flag.Record, firstSeen func(flag.Record) bool) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareContext(ctx, s.rebind(`INSERT INTO check_flags(run_id, check_name, flag_id, country, instructions, geojson, first_seen)
		VALUES(?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, check_name, flag_id) DO NOTHING`))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	now := seenAt.Unix()
	inserted := 0
	for _, r := range records {
		var seen int64
		if firstSeen == nil || firstSeen(r) {
			seen = now
		}
		res, err := stmt.ExecContext(ctx, runID, r.Check, r.Identifier, r.Country, r.Instructions, string(r.Geometry), seen)
		if err != nil {
			return 0, fmt.Errorf("save flag %s/%s: %w", r.Check, r.Identifier, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	logger.L().Debug("db_flags_saved", "run", runID, "records", len(records), "inserted", inserted)
	return inserted, nil
}

// LatestRun 指定国家最近开始的运行；country 为空时不限国家
func (s *Store) LatestRun(ctx context.Context, country string) (*Run, error) {
	q := `SELECT run_id, country, atlas, started_at, finished_at, flag_count FROM check_runs`
	var args []any
	if country != "" {
		q += ` WHERE country=?`
		args = append(args, country)
	}
	q += ` ORDER BY started_at DESC, run_id DESC LIMIT 1`
	var (
		r                 Run
		started, finished int64
	)
	err := s.db.QueryRowContext(ctx, s.rebind(q), args...).Scan(&r.RunID, &r.Country, &r.Atlas, &started, &finished, &r.FlagCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	r.Started, r.Finished = fromUnix(started), fromUnix(finished)
	return &r, nil
}

// Query 标记查询条件；空字段不过滤
type Query struct {
	RunID   string
	Check   string
	Country string
	Limit   int
}

// StoredFlag 已持久化的标记
type StoredFlag struct {
	RunID     string
	FirstSeen time.Time
	Record    flag.Record
}

func (q Query) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	for _, c := range []struct{ col, val string }{{"run_id", q.RunID}, {"check_name", q.Check}, {"country", q.Country}} {
		if c.val != "" {
			conds = append(conds, c.col+"=?")
			args = append(args, c.val)
		}
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Flags：按条件读取标记，按检查名与标识排序；Limit<=0 时默认 1000
func (s *Store) Flags(ctx context.Context, q Query) ([]StoredFlag, error) {
	where, args := q.where()
	limit := q.Limit
	if limit <= 0 {
		limit = 1000
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT run_id, check_name, flag_id, country, instructions, geojson, first_seen
		FROM check_flags`+where+` ORDER BY check_name, flag_id LIMIT ?`), append(args, limit)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StoredFlag
	for rows.Next() {
		var (
			f    StoredFlag
			geom string
			seen int64
		)
		if err := rows.Scan(&f.RunID, &f.Record.Check, &f.Record.Identifier, &f.Record.Country, &f.Record.Instructions, &geom, &seen); err != nil {
			return nil, err
		}
		f.Record.Geometry = json.RawMessage(geom)
		f.FirstSeen = fromUnix(seen)
		out = append(out, f)
	}
	return out, rows.Err()
}

// Count 按检查与国家聚合的标记数
type Count struct {
	Check   string `json:"check"`
	Country string `json:"country"`
	Count   int    `json:"count"`
}

// Counts 指定运行的标记计数；runID 为空时统计全部
func (s *Store) Counts(ctx context.Context, runID string) ([]Count, error) {
	where, args := Query{RunID: runID}.where()
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT check_name, country, COUNT(*) FROM check_flags`+where+`
		GROUP BY check_name, country ORDER BY check_name, country`), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Count
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.Check, &c.Country, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
