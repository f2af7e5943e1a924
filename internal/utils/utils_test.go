package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSNFromEnv(t *testing.T) {
	t.Setenv("PG_HOST", "db")
	t.Setenv("PG_PORT", "")
	t.Setenv("PG_USER", "checks")
	t.Setenv("PG_PASSWORD", "secret")
	t.Setenv("PG_DB", "")
	t.Setenv("PG_SSLMODE", "")
	assert.Equal(t, "postgres://checks:secret@db:5432/atlas_checks?sslmode=disable", BuildPostgresDSNFromEnv())
}

func TestOpenDBFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", ":memory:")
	db, driver, err := OpenDBFromEnv()
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, DriverSQLite, driver)
	require.NoError(t, db.Ping())

	t.Setenv("DB_DRIVER", "oracle")
	_, _, err = OpenDBFromEnv()
	assert.Error(t, err)
}

func TestOpenRedisFromEnvDisabled(t *testing.T) {
	t.Setenv("REDIS_ENABLED", "")
	assert.Nil(t, OpenRedisFromEnv())
	assert.Nil(t, OpenRedis("", ""))
}

func TestEnsureSelfSignedCert(t *testing.T) {
	dir := t.TempDir()
	cert := filepath.Join(dir, "tls", "cert.pem")
	key := filepath.Join(dir, "tls", "key.pem")
	require.NoError(t, EnsureSelfSignedCert(cert, key, "atlas-checks"))
	assert.FileExists(t, cert)
	assert.FileExists(t, key)
	require.NoError(t, EnsureSelfSignedCert(cert, key, "atlas-checks"))
}
