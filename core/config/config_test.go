package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv clears every variable LoadConfig may read so the test only sees
// what it sets. t.Setenv restores the previous values, including the ones a
// .env file overloads.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SERVER_PORT", "SERVER_ADDRESS", "SERVER_UTILS_PORT", "SERVER_API_KEY",
		"ACCESS_SUPERUSERS", "ACCESS_TOKEN",
		"LOG_LEVEL", "LOG_FORMAT",
		"DATABASE_DRIVER", "DATABASE_NAME",
		"KLAYOUT", "KLAYOUT_BINARY", "KLAYOUT_SKIP_CELLS",
	} {
		t.Setenv(key, "")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 1024, cfg.Server.Port)
	assert.Equal(t, 2048, cfg.Server.UtilsPort)
	assert.Equal(t, "localhost", cfg.Server.Address)
	assert.Equal(t, []string{"pi57", "ka429"}, cfg.Superusers())
	assert.Empty(t, cfg.Access.Token)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "klayout", cfg.Klayout.Binary)
	assert.Equal(t, []string{"FILL"}, cfg.Klayout.SkipCells)
	assert.False(t, cfg.Storage.Enabled())
	assert.NoError(t, cfg.Validate())
}

func TestSuperusers_Idempotent(t *testing.T) {
	cfg := Default()

	first := cfg.Superusers()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, cfg.Superusers())
	}
	assert.NotEmpty(t, first)
}

func TestSuperusers_IndependentConstructions(t *testing.T) {
	assert.Equal(t, Default().Superusers(), Default().Superusers())
}

func TestSuperusers_DoesNotMutate(t *testing.T) {
	cfg := Default()
	before := *cfg
	before.Access.Superusers = append([]string(nil), cfg.Access.Superusers...)

	got := cfg.Superusers()
	got[0] = "mallory"
	cfg.Superusers()

	assert.Equal(t, before.Server, cfg.Server)
	assert.Equal(t, before.Access, cfg.Access)
	assert.Equal(t, []string{"pi57", "ka429"}, cfg.Superusers())
}

func TestIsSuperuser(t *testing.T) {
	cfg := Default()

	assert.True(t, cfg.IsSuperuser("ka429"))
	assert.True(t, cfg.IsSuperuser("pi57"))
	assert.False(t, cfg.IsSuperuser("KA429"))
	assert.False(t, cfg.IsSuperuser(""))
	assert.True(t, cfg.SuperuserSet().Contains("pi57"))
}

func TestPortsArePositive(t *testing.T) {
	cfg := Default()
	assert.Positive(t, cfg.Server.Port)
	assert.Positive(t, cfg.Server.UtilsPort)
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, Default().Server, cfg.Server)
	assert.Equal(t, []string{"pi57", "ka429"}, cfg.Superusers())
	assert.Empty(t, cfg.Sources())
}

func TestLoadConfig_Env(t *testing.T) {
	isolateEnv(t)
	t.Setenv("SERVER_PORT", "4000")
	t.Setenv("SERVER_UTILS_PORT", "4001")
	t.Setenv("SERVER_ADDRESS", "flow.example.org")
	t.Setenv("ACCESS_SUPERUSERS", "ka429, ab12 ,ka429")
	t.Setenv("ACCESS_TOKEN", "ci-secret-token")
	t.Setenv("KLAYOUT", "/opt/klayout/bin/klayout")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, 4001, cfg.Server.UtilsPort)
	assert.Equal(t, "flow.example.org", cfg.Server.Address)
	assert.Equal(t, []string{"ka429", "ab12"}, cfg.Superusers())
	assert.Equal(t, "ci-secret-token", cfg.Access.Token)
	assert.Equal(t, "/opt/klayout/bin/klayout", cfg.Klayout.Binary)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("SERVER_PORT=5000\nACCESS_SUPERUSERS=zz99\n"), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, []string{"zz99"}, cfg.Superusers())
	assert.Equal(t, []string{filepath.Join(dir, ".env")}, cfg.Sources())
}

func TestLoadConfig_File(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	yaml := `server:
  port: 6000
  address: build01.example.org
access:
  superusers:
    - ka429
klayout:
  skip_cells: [FILL, TAP]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tinyflow.yaml"), []byte(yaml), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 6000, cfg.Server.Port)
	assert.Equal(t, 2048, cfg.Server.UtilsPort)
	assert.Equal(t, "build01.example.org", cfg.Server.Address)
	assert.Equal(t, []string{"ka429"}, cfg.Superusers())
	assert.Equal(t, []string{"FILL", "TAP"}, cfg.Klayout.SkipCells)
	assert.Len(t, cfg.Sources(), 1)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tinyflow.yaml"), []byte("server:\n  port: 6000\n"), 0o600))
	t.Setenv("SERVER_PORT", "7000")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestLoadConfig_Malformed(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
		env  map[string]string
	}{
		{name: "BadYAML", file: "tinyflow.yaml", body: "server: [port: 1\n"},
		{name: "PortNotANumber", env: map[string]string{"SERVER_PORT": "http"}},
		{name: "PortOutOfRange", env: map[string]string{"SERVER_PORT": "70000"}},
		{name: "UtilsPortZero", env: map[string]string{"SERVER_UTILS_PORT": "0"}},
		{name: "NoSuperusers", env: map[string]string{"ACCESS_SUPERUSERS": " , "}},
		{name: "BadDriver", env: map[string]string{"DATABASE_DRIVER": "oracle"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			dir := t.TempDir()
			if tt.file != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, tt.file), []byte(tt.body), 0o600))
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadConfig(dir)
			assert.ErrorIs(t, err, ErrConfigMalformed)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoadConfigStrict(t *testing.T) {
	isolateEnv(t)

	_, err := LoadConfigStrict(t.TempDir())
	assert.ErrorIs(t, err, ErrConfigMissing)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tinyflow.yaml"), []byte("log:\n  level: warn\n"), 0o600))
	cfg, err := LoadConfigStrict(dir)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestRedacted(t *testing.T) {
	cfg := Default()
	cfg.Server.ApiKey = "api-key-4242"
	cfg.Access.Token = "ghp_0123456789abcd"
	cfg.Storage.SecretKey = "minio-secret"

	r := cfg.Redacted()
	assert.Equal(t, "****4242", r.Server.ApiKey)
	assert.Equal(t, "****abcd", r.Access.Token)
	assert.Equal(t, "****cret", r.Storage.SecretKey)
	assert.Equal(t, "", r.Database.Password)

	r.Access.Superusers[0] = "mallory"
	assert.Equal(t, []string{"pi57", "ka429"}, cfg.Superusers())
	assert.Equal(t, "ghp_0123456789abcd", cfg.Access.Token)
}
