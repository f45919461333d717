package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "SPLITPOCKET"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv        = "SPLITPOCKET_APP_ENV"
	EnvDBPath        = "SPLITPOCKET_DB_PATH"
	EnvRemoteBaseURL = "SPLITPOCKET_REMOTE_BASE_URL"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Remote       RemoteConfig
	Connectivity ConnectivityConfig
	Sync         SyncConfig
	Status       StatusConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SPLITPOCKET_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"SPLITPOCKET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SPLITPOCKET_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	Path string `envconfig:"SPLITPOCKET_DB_PATH" required:"true"`

	MaxOpenConns    int           `envconfig:"SPLITPOCKET_DB_MAX_OPEN_CONNS" default:"1"`
	MaxIdleConns    int           `envconfig:"SPLITPOCKET_DB_MAX_IDLE_CONNS" default:"1"`
	ConnMaxLifetime time.Duration `envconfig:"SPLITPOCKET_DB_CONN_MAX_LIFETIME" default:"1h"`
	BusyTimeout     time.Duration `envconfig:"SPLITPOCKET_DB_BUSY_TIMEOUT" default:"5s"`
}

// DSN renders the sqlite connection string with WAL and a busy timeout applied.
func (d DBConfig) DSN() string {
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=%d", d.Path, d.BusyTimeout.Milliseconds())
}

type RemoteConfig struct {
	BaseURL        string        `envconfig:"SPLITPOCKET_REMOTE_BASE_URL" required:"true"`
	RequestTimeout time.Duration `envconfig:"SPLITPOCKET_REMOTE_REQUEST_TIMEOUT" default:"15s"`
	AuthToken      string        `envconfig:"SPLITPOCKET_REMOTE_AUTH_TOKEN"`
}

type ConnectivityConfig struct {
	ProbeAddress  string        `envconfig:"SPLITPOCKET_CONNECTIVITY_PROBE_ADDR"`
	ProbeInterval time.Duration `envconfig:"SPLITPOCKET_CONNECTIVITY_PROBE_INTERVAL" default:"10s"`
	ProbeTimeout  time.Duration `envconfig:"SPLITPOCKET_CONNECTIVITY_PROBE_TIMEOUT" default:"3s"`
}

type SyncConfig struct {
	PollInterval time.Duration `envconfig:"SPLITPOCKET_SYNC_POLL_INTERVAL" default:"1m"`
}

type StatusConfig struct {
	Port string `envconfig:"SPLITPOCKET_STATUS_PORT" default:"7380"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SPLITPOCKET_AUTO_MIGRATE" default:"false"`
}
