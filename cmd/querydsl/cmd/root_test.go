package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute(), out.String())
	return out.String()
}

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "querydsl.toml")
	data := fmt.Sprintf("log = [\"error\"]\n\n[datasource]\nurl = \"sqlite://%s\"\n", filepath.ToSlash(filepath.Join(dir, "cli.db")))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestSeedAndReport(t *testing.T) {
	path := writeConfig(t)

	out := execute(t, "--config", path, "seed", "--unnamed")
	assert.Contains(t, out, "2 teams, 7 members")
	assert.Contains(t, out, "Member(id=7, username=null, age=100)")

	out = execute(t, "-c", path, "report", "--team", "teamB")
	assert.Contains(t, out, "Members of teamB")
	assert.Contains(t, out, "member4")
	// aggregates include the unnamed member, the join drops it
	assert.Contains(t, out, "310")
	assert.Contains(t, out, "44.29")
	assert.Contains(t, out, "Average age per team")
	assert.Contains(t, out, "20.00")
	assert.Contains(t, out, "50.00")
}

func TestMigrate(t *testing.T) {
	path := writeConfig(t)

	out := execute(t, "-c", path, "migrate", "status")
	assert.Contains(t, out, "pending")

	out = execute(t, "-c", path, "migrate", "up")
	assert.Contains(t, out, "Schema is up to date")

	out = execute(t, "-c", path, "migrate", "status")
	assert.Contains(t, out, "applied")
	assert.NotContains(t, out, "pending")

	out = execute(t, "-c", path, "migrate", "health")
	assert.Contains(t, out, "healthy")
}

func TestLoadConfig_Verbose(t *testing.T) {
	configFile, verbose = writeConfig(t), true
	t.Cleanup(func() { configFile, verbose = "", false })

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"query", "info", "warn", "error"}, cfg.Log)
	assert.NotEmpty(t, cfg.Path())
}

func TestReport_Verbose(t *testing.T) {
	path := writeConfig(t)
	execute(t, "-c", path, "seed")
	t.Cleanup(func() { verbose = false })

	out := execute(t, "-c", path, "--verbose", "report", "--team", "teamA")
	assert.Contains(t, out, "Members of teamA")
	assert.Contains(t, out, "member1")
}
