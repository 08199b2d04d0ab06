package config

import (
	"os"
	"strconv"
	"time"

	"netapply-agent/internal/domain/constants"
	"netapply-agent/internal/domain/errors"
)

// Config is a struct that holds application configuration
type Config struct {
	Netplan  NetplanConfig
	Backup   BackupConfig
	Probe    ProbeConfig
	Database DatabaseConfig
	Metrics  MetricsConfig
}

// NetplanConfig is a struct that holds netplan-related configuration
type NetplanConfig struct {
	ConfigDir      string
	CanonicalFile  string
	StagingFile    string
	SettleDelay    time.Duration
	CommandTimeout time.Duration
}

// BackupConfig is a struct that holds backup configuration
type BackupConfig struct {
	Directory string
}

// ProbeConfig is a struct that holds connectivity probe configuration
type ProbeConfig struct {
	DNSServer      string
	ExternalHost   string
	Attempts       int
	AttemptTimeout time.Duration
}

// DatabaseConfig is a struct that holds the optional run-history database configuration.
// Recording is disabled when Host is empty.
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// Enabled reports whether run-history recording is configured
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// MetricsConfig is a struct that holds the optional Pushgateway configuration.
// Pushing is disabled when PushgatewayURL is empty.
type MetricsConfig struct {
	PushgatewayURL string
}

// Enabled reports whether metrics pushing is configured
func (c MetricsConfig) Enabled() bool {
	return c.PushgatewayURL != ""
}

// ConfigLoader is an interface for loading configuration
type ConfigLoader interface {
	Load() (*Config, error)
}

// EnvironmentConfigLoader is an implementation that loads configuration from environment variables
type EnvironmentConfigLoader struct{}

// NewEnvironmentConfigLoader creates a new EnvironmentConfigLoader
func NewEnvironmentConfigLoader() ConfigLoader {
	return &EnvironmentConfigLoader{}
}

// Load loads configuration from environment variables
func (l *EnvironmentConfigLoader) Load() (*Config, error) {
	config := &Config{
		Netplan: NetplanConfig{
			ConfigDir:      getEnvOrDefault("NETPLAN_DIR", constants.NetplanConfigDir),
			CanonicalFile:  getEnvOrDefault("NETPLAN_CANONICAL_FILE", constants.CanonicalConfigFile),
			StagingFile:    getEnvOrDefault("NETPLAN_STAGING_FILE", constants.StagingConfigFile),
			SettleDelay:    getEnvDurationOrDefault("SETTLE_DELAY", constants.DefaultSettleDelay*time.Second),
			CommandTimeout: getEnvDurationOrDefault("COMMAND_TIMEOUT", constants.DefaultCommandTimeout*time.Second),
		},
		Backup: BackupConfig{
			Directory: getEnvOrDefault("BACKUP_DIR", constants.DefaultBackupDir),
		},
		Probe: ProbeConfig{
			DNSServer:      getEnvOrDefault("PROBE_DNS_SERVER", constants.DefaultProbeDNSServer),
			ExternalHost:   getEnvOrDefault("PROBE_EXTERNAL_HOST", constants.DefaultProbeExternalHost),
			Attempts:       getEnvIntOrDefault("PROBE_ATTEMPTS", constants.DefaultProbeAttempts),
			AttemptTimeout: getEnvDurationOrDefault("PROBE_TIMEOUT", 2*time.Second),
		},
		Database: DatabaseConfig{
			Host:         os.Getenv("DB_HOST"),
			Port:         getEnvOrDefault("DB_PORT", constants.DefaultDBPort),
			User:         getEnvOrDefault("DB_USER", "root"),
			Password:     os.Getenv("DB_PASSWORD"),
			Database:     getEnvOrDefault("DB_NAME", constants.DefaultDBName),
			MaxOpenConns: getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 2),
			MaxIdleConns: getEnvIntOrDefault("DB_MAX_IDLE_CONNS", 1),
			MaxLifetime:  getEnvDurationOrDefault("DB_MAX_LIFETIME", 5*time.Minute),
		},
		Metrics: MetricsConfig{
			PushgatewayURL: os.Getenv("PUSHGATEWAY_URL"),
		},
	}

	// Validate configuration
	if err := l.validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// validate validates the configuration
func (l *EnvironmentConfigLoader) validate(config *Config) error {
	if config.Netplan.ConfigDir == "" {
		return errors.NewValidationError("netplan config directory not configured", nil)
	}
	if config.Netplan.SettleDelay < 0 {
		return errors.NewValidationError("invalid settle delay", nil)
	}
	if config.Backup.Directory == "" {
		return errors.NewValidationError("backup directory not configured", nil)
	}
	if config.Probe.DNSServer == "" {
		return errors.NewValidationError("probe DNS server not configured", nil)
	}
	if config.Probe.ExternalHost == "" {
		return errors.NewValidationError("probe external host not configured", nil)
	}
	if config.Probe.Attempts <= 0 {
		return errors.NewValidationError("invalid probe attempt count", nil)
	}

	// Validate the optional database configuration only when enabled
	if config.Database.Enabled() {
		if config.Database.Port == "" {
			return errors.NewValidationError("database port not configured", nil)
		}
		if config.Database.User == "" {
			return errors.NewValidationError("database user not configured", nil)
		}
		if config.Database.Database == "" {
			return errors.NewValidationError("database name not configured", nil)
		}
	}

	return nil
}

// Environment variable helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
