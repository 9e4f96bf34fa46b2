package config

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

const (
	SyncModeForce = "force"
	SyncModeSafe  = "safe"
)

const DefaultPort = 8080

type Config struct {
	Env      string `env:"ENV" env-default:"dev"`
	AppName  string `env:"APP_NAME"`
	HTTP     HTTPConfig
	Database DatabaseConfig
}

type HTTPConfig struct {
	// Port is kept as a raw string, see ListenPort.
	Port              string        `env:"PORT"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s"`
}

// ListenPort returns the configured port, or DefaultPort if PORT is
// unset or is not a valid TCP port number. Surrounding whitespace and
// integral decimals such as "9090.0" are accepted.
func (c HTTPConfig) ListenPort() int {
	port, err := strconv.ParseFloat(strings.TrimSpace(c.Port), 64)
	if err != nil || port != math.Trunc(port) || port <= 0 || port > 65535 {
		return DefaultPort
	}
	return int(port)
}

type DatabaseConfig struct {
	Dialect        string        `env:"DB_DIALECT"`
	Host           string        `env:"DB_HOST"`
	Port           int           `env:"DB_PORT" env-default:"0"`
	Username       string        `env:"DB_USERNAME"`
	Password       string        `env:"DB_PASSWORD"`
	Name           string        `env:"DB_NAME"`
	SyncMode       string        `env:"DB_SYNC_MODE" env-default:"force"`
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" env-default:"10s"`
}

func (c DatabaseConfig) ForceSync() bool {
	return c.SyncMode != SyncModeSafe
}
