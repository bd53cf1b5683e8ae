package config

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/dockpool/dockpool/pkg/docker"
)

// Resolver modes. Static serves the fleet table from the config file; sql
// looks tenants up in the sqlite database at resolver.db_path.
const (
	ResolverModeStatic = "static"
	ResolverModeSQL    = "sql"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Resolver  ResolverConfig  `mapstructure:"resolver"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type ResolverConfig struct {
	Mode   string            `mapstructure:"mode"`
	Fleet  map[string]string `mapstructure:"fleet"`
	DBPath string            `mapstructure:"db_path"`
}

type TelemetryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads the configuration viper has already located and validates
// it. Fleet endpoints are parse-checked here so a typo fails at startup
// instead of on the first request for that tenant.
func Load() (*Config, error) {
	var cfg Config

	viper.SetDefault("server.port", 8030)
	viper.SetDefault("server.cors_origins", []string{"*"})
	viper.SetDefault("resolver.mode", ResolverModeStatic)
	viper.SetDefault("telemetry.enabled", true)
	viper.SetDefault("telemetry.db_path", "./data/dockpool.db")
	viper.SetDefault("logging.level", "info")

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("server.port %d out of range", cfg.Server.Port)
	}

	switch cfg.Resolver.Mode {
	case ResolverModeStatic:
		if len(cfg.Resolver.Fleet) == 0 {
			return nil, fmt.Errorf("resolver.mode is %q but resolver.fleet is empty", ResolverModeStatic)
		}
		for tenant, raw := range cfg.Resolver.Fleet {
			if _, err := docker.ParseEndpoint(raw); err != nil {
				return nil, fmt.Errorf("resolver.fleet[%s]: %w", tenant, err)
			}
		}
	case ResolverModeSQL:
		if cfg.Resolver.DBPath == "" {
			return nil, fmt.Errorf("resolver.mode is %q but resolver.db_path is empty", ResolverModeSQL)
		}
	default:
		return nil, fmt.Errorf("resolver.mode must be one of: %s",
			strings.Join([]string{ResolverModeStatic, ResolverModeSQL}, ", "))
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBPath == "" {
		return nil, fmt.Errorf("telemetry.enabled requires telemetry.db_path")
	}

	log.Debug("Configuration loaded",
		"port", cfg.Server.Port,
		"resolver_mode", cfg.Resolver.Mode,
		"fleet_size", len(cfg.Resolver.Fleet),
		"telemetry", cfg.Telemetry.Enabled)
	return &cfg, nil
}

// FleetEndpoints returns the static fleet table with every endpoint
// parsed. Call only after Load validated the config.
func (c *Config) FleetEndpoints() map[string]docker.Endpoint {
	fleet := make(map[string]docker.Endpoint, len(c.Resolver.Fleet))
	for tenant, raw := range c.Resolver.Fleet {
		ep, err := docker.ParseEndpoint(raw)
		if err != nil {
			// Load rejects unparseable endpoints, so this only trips
			// when a caller skipped validation.
			log.Error("Skipping invalid fleet endpoint", "tenant", tenant, "err", err)
			continue
		}
		fleet[tenant] = ep
	}
	return fleet
}
