package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	mdwerror "github.com/msto63/dramatica/foundation/core/error"
	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration
type Config struct {
	General GeneralConfig `toml:"general" yaml:"general"`
	Server  ServerConfig  `toml:"server" yaml:"server"`
	GRPC    GRPCConfig    `toml:"grpc" yaml:"grpc"`
	Session SessionConfig `toml:"session" yaml:"session"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
	Export  ExportConfig  `toml:"export" yaml:"export"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name        string `toml:"name" yaml:"name"`
	Environment string `toml:"environment" yaml:"environment"`
	DataDir     string `toml:"data_dir" yaml:"data_dir"`
}

// ServerConfig holds the HTTP / WebSocket server configuration
type ServerConfig struct {
	Port            int        `toml:"port" yaml:"port"`
	Host            string     `toml:"host" yaml:"host"`
	ReadTimeout     Duration   `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    Duration   `toml:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout Duration   `toml:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxRequestSize  int64      `toml:"max_request_size" yaml:"max_request_size"`
	CORS            CORSConfig `toml:"cors" yaml:"cors"`
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	Enabled        bool     `toml:"enabled" yaml:"enabled"`
	AllowedOrigins []string `toml:"allowed_origins" yaml:"allowed_origins"`
	AllowedMethods []string `toml:"allowed_methods" yaml:"allowed_methods"`
}

// GRPCConfig holds the gRPC server configuration
type GRPCConfig struct {
	Enabled          bool   `toml:"enabled" yaml:"enabled"`
	Port             int    `toml:"port" yaml:"port"`
	Host             string `toml:"host" yaml:"host"`
	EnableReflection bool   `toml:"enable_reflection" yaml:"enable_reflection"`
	MaxRecvMsgSize   int    `toml:"max_recv_msg_size" yaml:"max_recv_msg_size"`
}

// SessionConfig selects the store for suspended executions
type SessionConfig struct {
	Backend     string   `toml:"backend" yaml:"backend"` // memory, sqlite, postgres
	Path        string   `toml:"path" yaml:"path"`
	DSN         string   `toml:"dsn" yaml:"dsn"`
	TTL         Duration `toml:"ttl" yaml:"ttl"`
	MaxSessions int      `toml:"max_sessions" yaml:"max_sessions"`

	// PurgeInterval is how often expired sessions are removed
	PurgeInterval Duration `toml:"purge_interval" yaml:"purge_interval"`
}

// LoggingConfig holds log settings; File enables a rotating log file
type LoggingConfig struct {
	Level      string `toml:"level" yaml:"level"`
	Format     string `toml:"format" yaml:"format"`
	File       string `toml:"file" yaml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `toml:"compress" yaml:"compress"`
}

// ExportConfig holds PDF export settings
type ExportConfig struct {
	PageSize   string  `toml:"page_size" yaml:"page_size"`
	FontFamily string  `toml:"font_family" yaml:"font_family"`
	FontSize   float64 `toml:"font_size" yaml:"font_size"`
	Author     string  `toml:"author" yaml:"author"`
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration scalar
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", value.Line)
	}
	return d.UnmarshalText([]byte(value.Value))
}

// MarshalYAML formats the duration as a string
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML file, or YAML when the file ends
// in .yaml or .yml
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, mdwerror.Newf("config file not found: %s", path).
			WithCode(mdwerror.CodeConfigError).
			WithDetail("path", path)
	}

	var cfg Config
	if err := decodeFile(path, &cfg); err != nil {
		return nil, mdwerror.Wrap(err, "failed to parse config").
			WithCode(mdwerror.CodeConfigError).
			WithDetail("path", path)
	}

	// Apply defaults
	cfg.applyDefaults()

	// Expand environment variables in sensitive fields
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return yaml.Unmarshal(data, cfg)
	default:
		_, err := toml.DecodeFile(path, cfg)
		return err
	}
}

// DefaultPaths lists where LoadFromEnv looks when DRAMATICA_CONFIG is unset
func DefaultPaths() []string {
	return []string{
		"./configs/dramatica.toml",
		"./dramatica.toml",
		"./dramatica.yaml",
		filepath.Join(os.Getenv("HOME"), ".config/dramatica/config.toml"),
	}
}

// LoadFromEnv loads configuration from the DRAMATICA_CONFIG environment
// variable or the first existing default path. Without any file the
// defaults are returned.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv("DRAMATICA_CONFIG")
	if path == "" {
		for _, p := range DefaultPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return Default(), nil
	}

	return Load(path)
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "Dramatica"
	}
	if c.General.Environment == "" {
		c.General.Environment = "development"
	}
	if c.General.DataDir == "" {
		c.General.DataDir = "./data"
	}

	// Server
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 30 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 30 * time.Second
	}
	if c.Server.ShutdownTimeout.Duration == 0 {
		c.Server.ShutdownTimeout.Duration = 10 * time.Second
	}
	if c.Server.MaxRequestSize == 0 {
		c.Server.MaxRequestSize = 1 << 20
	}
	if len(c.Server.CORS.AllowedMethods) == 0 {
		c.Server.CORS.AllowedMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	}

	// gRPC
	if c.GRPC.Port == 0 {
		c.GRPC.Port = 9090
	}
	if c.GRPC.Host == "" {
		c.GRPC.Host = "0.0.0.0"
	}
	if c.GRPC.MaxRecvMsgSize == 0 {
		c.GRPC.MaxRecvMsgSize = 4 * 1024 * 1024
	}

	// Session
	if c.Session.Backend == "" {
		c.Session.Backend = "memory"
	}
	if c.Session.Path == "" {
		c.Session.Path = filepath.Join(c.General.DataDir, "sessions.db")
	}
	if c.Session.TTL.Duration == 0 {
		c.Session.TTL.Duration = 30 * time.Minute
	}
	if c.Session.MaxSessions == 0 {
		c.Session.MaxSessions = 10000
	}
	if c.Session.PurgeInterval.Duration == 0 {
		c.Session.PurgeInterval.Duration = time.Minute
	}

	// Logging
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = 10
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = 5
	}
	if c.Logging.MaxAgeDays == 0 {
		c.Logging.MaxAgeDays = 30
	}

	// Export
	if c.Export.PageSize == "" {
		c.Export.PageSize = "A4"
	}
	if c.Export.FontFamily == "" {
		c.Export.FontFamily = "Courier"
	}
	if c.Export.FontSize == 0 {
		c.Export.FontSize = 11
	}
}

// expandEnvVars expands environment variables in configuration values
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.Session.Path = os.ExpandEnv(c.Session.Path)
	c.Session.DSN = os.ExpandEnv(c.Session.DSN)
	c.Logging.File = os.ExpandEnv(c.Logging.File)
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	invalid := func(field string, value interface{}, reason string) error {
		return mdwerror.Newf("invalid %s %v: %s", field, value, reason).
			WithCode(mdwerror.CodeConfigError).
			WithDetail("field", field)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return invalid("server.port", c.Server.Port, "must be between 1 and 65535")
	}
	if c.GRPC.Port < 1 || c.GRPC.Port > 65535 {
		return invalid("grpc.port", c.GRPC.Port, "must be between 1 and 65535")
	}
	if c.GRPC.Enabled && c.GRPC.Port == c.Server.Port && c.GRPC.Host == c.Server.Host {
		return invalid("grpc.port", c.GRPC.Port, "collides with server.port")
	}

	switch c.Session.Backend {
	case "memory", "sqlite":
	case "postgres":
		if c.Session.DSN == "" {
			return invalid("session.dsn", `""`, "required for the postgres backend")
		}
	default:
		return invalid("session.backend", c.Session.Backend, "must be memory, sqlite or postgres")
	}

	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return invalid("logging.level", c.Logging.Level, "unknown level")
	}
	switch c.Logging.Format {
	case "json", "text", "console":
	default:
		return invalid("logging.format", c.Logging.Format, "must be json, text or console")
	}

	switch strings.ToUpper(c.Export.PageSize) {
	case "A4", "A5", "LETTER", "LEGAL":
	default:
		return invalid("export.page_size", c.Export.PageSize, "must be A4, A5, Letter or Legal")
	}

	return nil
}

// HTTPAddress returns the listen address of the HTTP server
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GRPCAddress returns the listen address of the gRPC server
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.GRPC.Host, c.GRPC.Port)
}
