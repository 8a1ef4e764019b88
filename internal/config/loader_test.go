package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetstack-labs/fleetwatch/pkg/query"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fleetwatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err, "an explicitly named config file must exist")

	cfg, err = Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, DefaultLocalPath, cfg.Local.Path)
	assert.Equal(t, 5432, cfg.Remote.Port)
	assert.Equal(t, "require", cfg.Remote.SSLMode)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.UseLocal)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  shutdown_timeout: 30s
remote:
  host: db.example.com
  database: fleet
  user: fw
local:
  path: /var/lib/fleetwatch/fleet.db
fraud:
  max_speed_kmh: 100
  workday_start_hour: 7
  workday_end_hour: 20
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "db.example.com", cfg.Remote.Host)
	assert.Equal(t, "fleet", cfg.Remote.Database)
	assert.Equal(t, "/var/lib/fleetwatch/fleet.db", cfg.Local.Path)
	assert.Equal(t, 100.0, cfg.Fraud.MaxSpeedKmh)
	assert.Equal(t, 7, cfg.Fraud.WorkdayStartHour)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
remote:
  host: from-file
  database: fleet
`)
	t.Setenv("FLEETWATCH_REMOTE__HOST", "from-env")
	t.Setenv("FLEETWATCH_LOG_LEVEL", "debug")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Remote.Host)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "fleet", cfg.Remote.Database, "untouched file values survive")
}

func TestLoadFlagsWinOverEverything(t *testing.T) {
	path := writeConfig(t, `
remote:
  host: db.example.com
  database: fleet
`)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Bool("local", false, "")
	flags.Bool("verbose", false, "")
	require.NoError(t, flags.Parse([]string{"--local"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.True(t, cfg.UseLocal)
	assert.Equal(t, query.BackendLocal, cfg.Backend(), "--local overrides configured remote")
}

func TestLoadUnchangedFlagsIgnored(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Bool("local", false, "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.False(t, cfg.UseLocal)
}

func TestBackendResolution(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want query.Backend
	}{
		{name: "nothing configured", want: query.BackendLocal},
		{
			name: "remote configured",
			cfg:  Config{Remote: RemoteConfig{Host: "h", Database: "d"}},
			want: query.BackendRemote,
		},
		{
			name: "remote missing database",
			cfg:  Config{Remote: RemoteConfig{Host: "h"}},
			want: query.BackendLocal,
		},
		{
			name: "local override wins",
			cfg:  Config{Remote: RemoteConfig{Host: "h", Database: "d"}, UseLocal: true},
			want: query.BackendLocal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Backend())
		})
	}
}
