// 包 utils：数据库、Redis 与 TLS 的连接工具，统一环境变量读取
package utils

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"atlas-checks/internal/config"
	"atlas-checks/internal/logger"
)

// 驱动名，与 database/sql 注册名一致
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open(DriverPostgres, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	return db, nil
}

func BuildPostgresDSNFromEnv() string {
	host := config.Getenv("PG_HOST", "localhost")
	port := config.Getenv("PG_PORT", "5432")
	user := config.Getenv("PG_USER", "postgres")
	pass := config.Getenv("PG_PASSWORD", "")
	db := config.Getenv("PG_DB", "atlas_checks")
	ssl := config.Getenv("PG_SSLMODE", "disable")
	dsn := "postgres://" + user
	if pass != "" {
		dsn += ":" + pass
	}
	dsn += "@" + host + ":" + port + "/" + db + "?sslmode=" + ssl
	return dsn
}

func OpenPostgresFromEnv() (*sql.DB, error) {
	db, err := sql.Open(DriverPostgres, BuildPostgresDSNFromEnv())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(config.GetenvInt("PG_MAX_OPEN_CONNS", 50))
	db.SetMaxIdleConns(config.GetenvInt("PG_MAX_IDLE_CONNS", 25))
	return db, nil
}

// OpenSQLite：打开嵌入式库；文件库开启 WAL 与 busy_timeout
// 约束：单连接，写入串行化；:memory: 库随连接存在
func OpenSQLite(path string) (*sql.DB, error) {
	if path == "" {
		path = "atlas-checks.db"
	}
	dsn := path
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// OpenDBFromEnv：按 DB_DRIVER 打开数据库，返回连接与驱动名；默认 sqlite
func OpenDBFromEnv() (*sql.DB, string, error) {
	driver := strings.ToLower(config.Getenv("DB_DRIVER", DriverSQLite))
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverPostgres:
		db, err = OpenPostgresFromEnv()
	case DriverSQLite:
		db, err = OpenSQLite(config.Getenv("SQLITE_PATH", "atlas-checks.db"))
	default:
		return nil, "", fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
	if err != nil {
		return nil, "", err
	}
	logger.L().Debug("db_env", "driver", driver)
	return db, driver, nil
}
