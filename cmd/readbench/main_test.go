package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkilian/readbench/internal/config"
)

func TestLoadConfig_Precedence(t *testing.T) {
	file := filepath.Join(t.TempDir(), "readbench.yaml")
	yaml := "path: from-file.db\nengine: sqlite\nmax_connections: 400\nstep: 40\n"
	require.NoError(t, os.WriteFile(file, []byte(yaml), 0644))

	t.Setenv("MAX_CONNECTIONS", "")
	t.Setenv("READBENCH_ENGINE", "")
	t.Setenv("STEP", "25")
	t.Setenv("READBENCH_PATH", "from-env.db")

	cfg, err := loadConfig(cliFlags{configFile: file, path: "from-flag.db"})
	require.NoError(t, err)

	assert.Equal(t, "from-flag.db", cfg.Path)
	assert.Equal(t, config.EngineSQLite, cfg.Engine)
	assert.Equal(t, 400, cfg.MaxConnections)
	assert.Equal(t, 25, cfg.Step)
}

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"MAX_CONNECTIONS", "STEP", "READBENCH_PATH"} {
		t.Setenv(key, "")
	}

	cfg, err := loadConfig(cliFlags{})
	require.NoError(t, err)

	assert.Equal(t, "benchmark.db", cfg.Path)
	assert.Equal(t, 1000, cfg.MaxConnections)
	assert.Equal(t, 50, cfg.Step)
}

func TestLoadConfig_InvalidEnv(t *testing.T) {
	t.Setenv("MAX_CONNECTIONS", "lots")

	_, err := loadConfig(cliFlags{})
	assert.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := loadConfig(cliFlags{configFile: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestLoadDotEnv_MissingFileIgnored(t *testing.T) {
	assert.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestLoadDotEnv_MalformedFileReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("READBENCH_ENGINE=\"sqlite\n"), 0644))

	assert.Error(t, loadDotEnv(path))
}

func TestLoadDotEnv_DoesNotOverrideEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("STEP=10\nREADBENCH_PATH=from-dotenv.db\n"), 0644))

	t.Setenv("STEP", "25")
	t.Setenv("READBENCH_PATH", "")
	require.NoError(t, os.Unsetenv("READBENCH_PATH"))

	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "25", os.Getenv("STEP"))
	assert.Equal(t, "from-dotenv.db", os.Getenv("READBENCH_PATH"))
}
