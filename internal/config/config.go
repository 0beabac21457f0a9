package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	contextutil "github.com/study/querydsl-go/internal/context"
	"github.com/study/querydsl-go/internal/dialect"
	"github.com/study/querydsl-go/internal/driver"
)

// FileName is looked up from the working directory upwards when no path is given
const FileName = "querydsl.toml"

var ErrConfigNotFound = errors.New(FileName + " not found")

// Config is the decoded querydsl.toml
type Config struct {
	Datasource  *DatasourceConfig  `toml:"datasource"`
	Log         []string           `toml:"log,omitempty"`
	Pool        *PoolConfig        `toml:"pool,omitempty"`
	Timeouts    *TimeoutsConfig    `toml:"timeouts,omitempty"`
	N1Detection *N1DetectionConfig `toml:"n1_detection,omitempty"`
	Migrations  *MigrationsConfig  `toml:"migrations,omitempty"`

	path string
}

type DatasourceConfig struct {
	// Provider is sqlite, postgresql or mysql; detected from URL when empty
	Provider string `toml:"provider,omitempty"`
	// URL may use env("DATABASE_URL") or ${DATABASE_URL}
	URL string `toml:"url"`
}

type PoolConfig struct {
	MaxConns        int32         `toml:"max_conns"`
	MinConns        int32         `toml:"min_conns"`
	MaxConnLifetime time.Duration `toml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `toml:"max_conn_idle_time"`
}

type TimeoutsConfig struct {
	Query       time.Duration `toml:"query"`
	Transaction time.Duration `toml:"transaction"`
	Migration   time.Duration `toml:"migration"`
	SlowQuery   time.Duration `toml:"slow_query"`
}

type N1DetectionConfig struct {
	Enabled   bool          `toml:"enabled"`
	Threshold int           `toml:"threshold"`
	Window    time.Duration `toml:"window"`
}

type MigrationsConfig struct {
	// Table is goose's version table
	Table string `toml:"table"`
}

// Default is the configuration used when no file exists: a local SQLite file
func Default() *Config {
	c := &Config{Datasource: &DatasourceConfig{URL: "sqlite://querydsl.db"}}
	c.applyDefaults()
	return c
}

// Load reads the configuration at configPath, or finds querydsl.toml from the
// working directory upwards when configPath is empty. A .env file found the
// same way is loaded first so its variables are available for expansion.
func Load(configPath string) (*Config, error) {
	loadDotEnv()

	if configPath == "" {
		found, err := findUpwards(FileName)
		if err != nil {
			return nil, err
		}
		configPath = found
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
	}

	cfg, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
	}
	cfg.path = configPath
	return cfg, nil
}

// Parse decodes TOML text, expands environment references and applies defaults
func Parse(data string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Datasource != nil {
		cfg.Datasource.URL = expandString(cfg.Datasource.URL)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadDotEnv() {
	if envPath, err := findUpwards(".env"); err == nil {
		_ = godotenv.Load(envPath)
	}
}

func findUpwards(name string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			if name == FileName {
				return "", ErrConfigNotFound
			}
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// expandString resolves env("VAR"), env('VAR'), ${VAR} and $VAR
func expandString(s string) string {
	for _, open := range []string{`env("`, `env('`} {
		closing := open[4:5] + ")"
		for {
			start := strings.Index(s, open)
			if start == -1 {
				break
			}
			end := strings.Index(s[start+len(open):], closing)
			if end == -1 {
				break
			}
			end += start + len(open)
			s = s[:start] + os.Getenv(s[start+len(open):end]) + s[end+len(closing):]
		}
	}
	return os.ExpandEnv(s)
}

func (c *Config) applyDefaults() {
	if c.Datasource != nil && c.Datasource.Provider == "" && c.Datasource.URL != "" {
		c.Datasource.Provider = dialect.DetectProvider(c.Datasource.URL)
	}
	if len(c.Log) == 0 {
		c.Log = []string{"warn", "error"}
	}

	pool := driver.DefaultPoolConfig()
	if c.Pool == nil {
		c.Pool = &PoolConfig{}
	}
	if c.Pool.MaxConns == 0 {
		c.Pool.MaxConns = pool.MaxConns
	}
	if c.Pool.MinConns == 0 {
		c.Pool.MinConns = pool.MinConns
	}
	if c.Pool.MaxConnLifetime == 0 {
		c.Pool.MaxConnLifetime = pool.MaxConnLifetime
	}
	if c.Pool.MaxConnIdleTime == 0 {
		c.Pool.MaxConnIdleTime = pool.MaxConnIdleTime
	}

	if c.Timeouts == nil {
		c.Timeouts = &TimeoutsConfig{}
	}
	def := contextutil.DefaultTimeouts()
	if c.Timeouts.Query == 0 {
		c.Timeouts.Query = def.Query
	}
	if c.Timeouts.Transaction == 0 {
		c.Timeouts.Transaction = def.Transaction
	}
	if c.Timeouts.Migration == 0 {
		c.Timeouts.Migration = def.Migration
	}
	if c.Timeouts.SlowQuery == 0 {
		c.Timeouts.SlowQuery = time.Second
	}

	if c.N1Detection == nil {
		c.N1Detection = &N1DetectionConfig{Enabled: true}
	}
	if c.N1Detection.Threshold == 0 {
		c.N1Detection.Threshold = 5
	}
	if c.N1Detection.Window == 0 {
		c.N1Detection.Window = time.Second
	}

	if c.Migrations == nil {
		c.Migrations = &MigrationsConfig{}
	}
	if c.Migrations.Table == "" {
		c.Migrations.Table = "goose_db_version"
	}
}

func (c *Config) Validate() error {
	if c.Datasource == nil {
		return fmt.Errorf("datasource is required")
	}
	if c.Datasource.URL == "" {
		return fmt.Errorf(`datasource.url is required (use env("DATABASE_URL") or ${DATABASE_URL})`)
	}
	switch c.Datasource.Provider {
	case "sqlite", "postgresql", "mysql":
	default:
		return fmt.Errorf("unsupported datasource.provider %q", c.Datasource.Provider)
	}
	if c.Pool.MinConns > c.Pool.MaxConns {
		return fmt.Errorf("pool.min_conns (%d) exceeds pool.max_conns (%d)", c.Pool.MinConns, c.Pool.MaxConns)
	}
	if c.Timeouts.Query < 0 || c.Timeouts.Transaction < 0 || c.Timeouts.Migration < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}

// Path is the file the configuration was loaded from; empty for Default and Parse
func (c *Config) Path() string {
	return c.path
}

func (c *Config) GetDatabaseURL() string {
	if c.Datasource != nil {
		return c.Datasource.URL
	}
	return ""
}

func (c *Config) GetProvider() string {
	if c.Datasource != nil {
		return c.Datasource.Provider
	}
	return ""
}

func (c *Config) DriverPool() *driver.PoolConfig {
	p := driver.DefaultPoolConfig()
	p.MaxConns = c.Pool.MaxConns
	p.MinConns = c.Pool.MinConns
	p.MaxConnLifetime = c.Pool.MaxConnLifetime
	p.MaxConnIdleTime = c.Pool.MaxConnIdleTime
	return p
}

func (c *Config) ContextTimeouts() contextutil.Timeouts {
	return contextutil.Timeouts{
		Query:       c.Timeouts.Query,
		Transaction: c.Timeouts.Transaction,
		Migration:   c.Timeouts.Migration,
	}
}
