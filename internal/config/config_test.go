package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFromTOML(t *testing.T, content string) (*Config, error) {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "dockpool.toml")
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0o644))

	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.SetConfigFile(configFile)
	require.NoError(t, viper.ReadInConfig())

	return Load()
}

func TestConfig_Load_ValidStatic(t *testing.T) {
	cfg, err := loadFromTOML(t, `
[server]
port = 9000
cors_origins = ["https://ops.example.org"]

[resolver]
mode = "static"

[resolver.fleet]
tenant-7 = "tcp://10.0.0.5:2375"
local = "unix:///var/run/docker.sock"

[telemetry]
enabled = false
`)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"https://ops.example.org"}, cfg.Server.CORSOrigins)
	assert.Equal(t, ResolverModeStatic, cfg.Resolver.Mode)
	assert.False(t, cfg.Telemetry.Enabled)

	fleet := cfg.FleetEndpoints()
	require.Len(t, fleet, 2)
	assert.Equal(t, "http://10.0.0.5:2375", fleet["tenant-7"].URL().String())
	assert.Equal(t, "/var/run/docker.sock", fleet["local"].SocketPath())
}

func TestConfig_Load_Defaults(t *testing.T) {
	cfg, err := loadFromTOML(t, `
[resolver.fleet]
local = "tcp://127.0.0.1:2375"
`)
	require.NoError(t, err)

	assert.Equal(t, 8030, cfg.Server.Port)
	assert.Equal(t, ResolverModeStatic, cfg.Resolver.Mode)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "./data/dockpool.db", cfg.Telemetry.DBPath)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestConfig_Load_SQLMode(t *testing.T) {
	cfg, err := loadFromTOML(t, `
[resolver]
mode = "sql"
db_path = "/var/lib/dockpool/fleet.db"
`)
	require.NoError(t, err)
	assert.Equal(t, ResolverModeSQL, cfg.Resolver.Mode)
}

func TestConfig_Load_Invalid(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"empty static fleet", "[resolver]\nmode = \"static\"\n"},
		{"unknown mode", "[resolver]\nmode = \"dns\"\n"},
		{"sql without db path", "[resolver]\nmode = \"sql\"\n"},
		{"bad fleet endpoint", "[resolver.fleet]\nt1 = \"ftp://oops\"\n"},
		{"port out of range", "[server]\nport = 99999\n[resolver.fleet]\nt1 = \"tcp://127.0.0.1:2375\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadFromTOML(t, tt.toml)
			assert.Error(t, err)
		})
	}
}
