package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/stmtconv/internal/config"
)

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	out, _, err := runStmtconv(t, dir, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized stmtconv workspace")

	expectedDirs := []string{
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range expectedDirs {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}
}

func TestInit_Config(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runStmtconv(t, dir, "init", "--account", "1234567890", "--currency", "EUR")
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "1234567890", cfg.Account.ID)
	assert.Equal(t, "EUR", cfg.Account.Currency)
	assert.Equal(t, "airbank", cfg.Input.Profile)
	assert.Equal(t, "ledger.db", cfg.Ledger.Path)
	assert.NoError(t, cfg.Validate())
}

func TestInit_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runStmtconv(t, dir, "init")
	require.NoError(t, err)

	_, stderr, err := runStmtconv(t, dir, "init", "--profile", "default")
	require.Error(t, err)
	assert.Contains(t, stderr, "already exists")

	_, _, err = runStmtconv(t, dir, "init", "--profile", "default", "--force")
	require.NoError(t, err)
	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.Input.Profile)
}

func TestInit_UnknownProfile(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runStmtconv(t, dir, "init", "--profile", "fio")
	require.Error(t, err, "init with an unknown profile should fail")

	_, err = os.Stat(filepath.Join(dir, config.FileName))
	assert.True(t, os.IsNotExist(err))
}

func TestVersion(t *testing.T) {
	out, _, err := runStmtconv(t, t.TempDir(), "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev (commit: none")
}
