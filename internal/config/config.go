package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Portal    PortalConfig    `yaml:"portal" envconfig:"PORTAL"`
	Contacts  ContactsConfig  `yaml:"contacts" envconfig:"CONTACTS"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// SecurityConfig contains security-related configuration.
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration for the API.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths. Relative paths resolve against the
// executable directory, never the working directory.
type PathsConfig struct {
	ExecutableDir string `yaml:"executable_dir" envconfig:"EXECUTABLE_DIR"`
	DataDir       string `yaml:"data_dir" envconfig:"DATA_DIR"`
	WebDir        string `yaml:"web_dir" envconfig:"WEB_DIR"`
	LogsDir       string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// PortalConfig configures the zvg-portal.de client.
type PortalConfig struct {
	BaseURL           string        `yaml:"base_url" envconfig:"BASE_URL"`
	UserAgent         string        `yaml:"user_agent" envconfig:"USER_AGENT"`
	Timeout           time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	RequestsPerSecond float64       `yaml:"requests_per_second" envconfig:"REQUESTS_PER_SECOND"`
	CacheTTL          time.Duration `yaml:"cache_ttl" envconfig:"CACHE_TTL"`
}

// ContactsConfig selects and configures the contact history store.
type ContactsConfig struct {
	Backend    string      `yaml:"backend" envconfig:"BACKEND"`
	FilePath   string      `yaml:"file_path" envconfig:"FILE_PATH"`
	SQLitePath string      `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
	Redis      RedisConfig `yaml:"redis" envconfig:"REDIS"`
}

// RedisConfig carries connection settings for the redis contacts backend.
type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"ADDR"`
	Password string `yaml:"password" envconfig:"PASSWORD"`
	DB       int    `yaml:"db" envconfig:"DB"`
}

// WebSocketConfig contains WebSocket configuration.
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT"`
}

// Load builds the configuration in three layers: compiled-in defaults, then
// an optional YAML file, then ZVG_* environment variables on top.
func Load() (*Config, error) {
	cfg := *Default()

	if path := findConfigFile(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process("ZVG", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	// ZVG_CACHE_TTL is the longstanding cache override in whole seconds and
	// wins over the nested portal setting.
	if raw := os.Getenv("ZVG_CACHE_TTL"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("parse ZVG_CACHE_TTL: %w", err)
		}
		cfg.Portal.CacheTTL = time.Duration(secs) * time.Second
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return &cfg, nil
}

// findConfigFile returns the first config file found in the usual locations,
// or the empty string when only defaults and env vars apply.
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

func (c *Config) resolvePaths() error {
	if c.Paths.ExecutableDir == "" {
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("locate executable: %w", err)
		}
		c.Paths.ExecutableDir = filepath.Dir(exe)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}
	if c.Portal.RequestsPerSecond <= 0 {
		return fmt.Errorf("portal requests per second must be positive")
	}
	if c.Portal.CacheTTL < 0 {
		return fmt.Errorf("portal cache ttl must not be negative")
	}
	switch c.Contacts.Backend {
	case "memory", "file", "sqlite", "redis":
	default:
		return fmt.Errorf("unknown contacts backend %q", c.Contacts.Backend)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		c.Logging.Format = "json"
	}
	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		c.Logging.Output = "both"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/zvgcli.log"
	}
	return nil
}

// resolveDir joins a possibly relative directory with the executable dir.
func (c *Config) resolveDir(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.Paths.ExecutableDir, dir)
}

// GetDataDir returns the resolved data directory path.
func (c *Config) GetDataDir() string { return c.resolveDir(c.Paths.DataDir) }

// GetWebDir returns the resolved web directory path.
func (c *Config) GetWebDir() string { return c.resolveDir(c.Paths.WebDir) }

// GetLogsDir returns the resolved logs directory path.
func (c *Config) GetLogsDir() string { return c.resolveDir(c.Paths.LogsDir) }

// ContactsFilePath returns the resolved path of the JSON history file.
func (c *Config) ContactsFilePath() string {
	if filepath.IsAbs(c.Contacts.FilePath) {
		return c.Contacts.FilePath
	}
	return filepath.Join(c.GetDataDir(), c.Contacts.FilePath)
}

// ContactsSQLitePath returns the resolved path of the SQLite history file.
func (c *Config) ContactsSQLitePath() string {
	if filepath.IsAbs(c.Contacts.SQLitePath) {
		return c.Contacts.SQLitePath
	}
	return filepath.Join(c.GetDataDir(), c.Contacts.SQLitePath)
}

// EnsureDirectories creates the writable directories the process needs.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.GetDataDir(), c.GetLogsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			ReadTimeout: 15 * time.Second,
			// A search request holds the response open for a full portal
			// round trip, so the write timeout must cover the portal
			// timeout plus headroom.
			WriteTimeout:    90 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/zvgcli.log",
		},
		Paths: PathsConfig{
			DataDir: "data",
			WebDir:  "web",
			LogsDir: "logs",
		},
		Portal: PortalConfig{
			BaseURL:           "https://www.zvg-portal.de",
			UserAgent:         "zvgcli/1.0",
			Timeout:           60 * time.Second,
			RequestsPerSecond: 0.5,
			CacheTTL:          30 * time.Minute,
		},
		Contacts: ContactsConfig{
			Backend:    "file",
			FilePath:   "contacts.json",
			SQLitePath: "contacts.db",
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
		},
	}
}
