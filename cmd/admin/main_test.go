package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func setupAdminEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("CONFIG_FILE", "/nonexistent/config.yaml")
	t.Setenv("DATABASE_FILE_PATH", filepath.Join(t.TempDir(), "admin.sqlite"))
}

func TestRun_ExitCodes(t *testing.T) {
	setupAdminEnv(t)

	assert.Equal(t, 0, run([]string{"admin", "db", "migrate"}))
	assert.Equal(t, 0, run([]string{"admin", "cache", "stats"}))
	assert.Equal(t, 0, run([]string{"admin", "run-job", "cache_prune"}))
	assert.Equal(t, 0, run([]string{"admin", "jobs", "runs", "--job", "cache_prune", "--limit", "5"}))

	assert.Equal(t, 1, run([]string{"admin", "run-job"}))
	assert.Equal(t, 1, run([]string{"admin", "run-job", "bogus"}))
}

func TestRun_ReopensDatabaseAfterFailure(t *testing.T) {
	setupAdminEnv(t)

	assert.Equal(t, 1, run([]string{"admin", "run-job", "bogus"}))
	assert.Equal(t, 0, run([]string{"admin", "db", "migrate"}))
	assert.Equal(t, 0, run([]string{"admin", "cache", "flush"}))
}
