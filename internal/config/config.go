// Package config provides FleetWatch's configuration types and loading.
// Configuration merges defaults, an optional fleetwatch.yaml, FLEETWATCH_*
// environment variables, and CLI flags, in that order of precedence.
package config

import (
	"time"

	"github.com/fleetstack-labs/fleetwatch/internal/fraud"
	"github.com/fleetstack-labs/fleetwatch/pkg/query"
)

// DefaultLocalPath is the embedded database file used when nothing else is
// configured.
const DefaultLocalPath = ".fleetwatch/fleet.db"

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// RemoteConfig holds credentials for the managed Postgres backend.
type RemoteConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Database string `koanf:"database"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	SSLMode  string `koanf:"sslmode"`
}

// Configured reports whether enough remote credentials are present to
// attempt a connection.
func (r RemoteConfig) Configured() bool {
	return r.Host != "" && r.Database != ""
}

// LocalConfig holds settings for the embedded database backend.
type LocalConfig struct {
	Path string `koanf:"path"`
}

// Config is the full runtime configuration.
type Config struct {
	Server   ServerConfig     `koanf:"server"`
	Remote   RemoteConfig     `koanf:"remote"`
	Local    LocalConfig      `koanf:"local"`
	Fraud    fraud.Thresholds `koanf:"fraud"`
	UseLocal bool             `koanf:"use_local"`
	LogLevel string           `koanf:"log_level"`
	Verbose  bool             `koanf:"verbose"`
}

// Backend resolves which backend the store routes to. The decision is made
// once at startup and is immutable for the process lifetime: remote when
// credentials are present and no explicit local override is set, local
// otherwise.
func (c *Config) Backend() query.Backend {
	if c.UseLocal || !c.Remote.Configured() {
		return query.BackendLocal
	}
	return query.BackendRemote
}
