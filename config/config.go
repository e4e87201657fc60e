package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	App       AppConfig       `yaml:"app"`
	Database  DatabaseConfig  `yaml:"database"`
	Riot      RiotConfig      `yaml:"riot"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Cache     CacheConfig     `yaml:"cache"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Log       LogConfig       `yaml:"log"`
}

type AppConfig struct {
	Env            string   `yaml:"env"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	LogQueries   bool   `yaml:"log_queries"`
}

// RiotConfig configures the Riot Games API client.
type RiotConfig struct {
	APIKey          string            `yaml:"api_key"`
	AccountRegion   string            `yaml:"account_region"`   // routing value for account-v1
	DefaultRegion   string            `yaml:"default_region"`   // platform used for summoner lookups
	FallbackRegions []string          `yaml:"fallback_regions"` // tried in order when the default misses
	Timeout         time.Duration     `yaml:"timeout"`
	Hosts           map[string]string `yaml:"hosts"` // region -> base URL overrides
}

type SchedulerConfig struct {
	Enabled             bool          `yaml:"enabled"`
	StatusSweepInterval time.Duration `yaml:"status_sweep_interval"`
	ArchiveInterval     time.Duration `yaml:"archive_interval"`
}

type CacheConfig struct {
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	ProfileTTL    time.Duration `yaml:"profile_ttl"`
}

func (c CacheConfig) Enabled() bool { return c.RedisAddr != "" }

// ArchiveConfig points at an S3-compatible bucket (Cloudflare R2).
type ArchiveConfig struct {
	AccountID       string `yaml:"account_id"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Bucket          string `yaml:"bucket"`
	PublicBaseURL   string `yaml:"public_base_url"`
	Endpoint        string `yaml:"endpoint"`
}

func (c ArchiveConfig) Enabled() bool {
	return c.Bucket != "" && c.AccessKeyID != "" && c.SecretAccessKey != "" &&
		(c.AccountID != "" || c.Endpoint != "")
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	cfg := &Config{Scheduler: SchedulerConfig{Enabled: true}}
	cfg.applyDefaults()
	return cfg
}

// Load reads .env, then the optional YAML file at path, then environment
// overrides, then fills defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{Scheduler: SchedulerConfig{Enabled: true}}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			data = []byte(os.ExpandEnv(string(data)))
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.App.Env, "APP_ENV")
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Riot.APIKey, "RIOT_API_KEY")
	setString(&c.Riot.DefaultRegion, "RIOT_REGION")
	setString(&c.Riot.AccountRegion, "RIOT_ACCOUNT_REGION")
	setString(&c.Cache.RedisAddr, "REDIS_ADDR")
	setString(&c.Cache.RedisPassword, "REDIS_PASSWORD")
	setString(&c.Archive.AccountID, "R2_ACCOUNT_ID")
	setString(&c.Archive.AccessKeyID, "R2_ACCESS_KEY_ID")
	setString(&c.Archive.SecretAccessKey, "R2_SECRET_ACCESS_KEY")
	setString(&c.Archive.Bucket, "R2_BUCKET")
	setString(&c.Archive.PublicBaseURL, "R2_PUBLIC_BASE_URL")
	setString(&c.Archive.Endpoint, "R2_ENDPOINT")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.File, "LOG_FILE")

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.App.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("RIOT_FALLBACK_REGIONS"); v != "" {
		c.Riot.FallbackRegions = splitList(v)
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.App.Port = port
	}
	if v := os.Getenv("SCHEDULER_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SCHEDULER_ENABLED %q: %w", v, err)
		}
		c.Scheduler.Enabled = enabled
	}
	for env, dst := range map[string]*time.Duration{
		"STATUS_SWEEP_INTERVAL": &c.Scheduler.StatusSweepInterval,
		"ARCHIVE_INTERVAL":      &c.Scheduler.ArchiveInterval,
		"RIOT_TIMEOUT":          &c.Riot.Timeout,
		"PROFILE_CACHE_TTL":     &c.Cache.ProfileTTL,
	} {
		if v := os.Getenv(env); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", env, v, err)
			}
			*dst = d
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "production"
	}
	if c.App.Port == 0 {
		c.App.Port = 5200
	}
	if len(c.App.AllowedOrigins) == 0 {
		c.App.AllowedOrigins = []string{"http://localhost:3000"}
	}

	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}

	if c.Riot.AccountRegion == "" {
		c.Riot.AccountRegion = "americas"
	}
	if c.Riot.DefaultRegion == "" {
		c.Riot.DefaultRegion = "br1"
	}
	if c.Riot.FallbackRegions == nil {
		c.Riot.FallbackRegions = []string{"na1", "lan1", "las1"}
	}
	if c.Riot.Timeout == 0 {
		c.Riot.Timeout = 30 * time.Second
	}

	if c.Scheduler.StatusSweepInterval == 0 {
		c.Scheduler.StatusSweepInterval = time.Minute
	}
	if c.Scheduler.ArchiveInterval == 0 {
		c.Scheduler.ArchiveInterval = 10 * time.Minute
	}

	if c.Cache.ProfileTTL == 0 {
		c.Cache.ProfileTTL = 5 * time.Minute
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 100
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 7
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = 28
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable not set")
	}
	if _, ok := c.RegionHosts()[strings.ToLower(c.Riot.DefaultRegion)]; !ok {
		return fmt.Errorf("unknown riot region %q", c.Riot.DefaultRegion)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func (c *Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
