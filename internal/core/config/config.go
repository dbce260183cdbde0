package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
	CORSOrigins     []string `mapstructure:"cors_origins"`
}

type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

type FileLog struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  FileLog
}

type Redis struct {
	Addr         string `mapstructure:"addr"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	LatestTTLSec int    `mapstructure:"latest_ttl_sec"`
}

// Enabled reports whether the latest-measure cache should be used.
func (r Redis) Enabled() bool { return strings.TrimSpace(r.Addr) != "" }

func (r Redis) LatestTTL() time.Duration { return time.Duration(r.LatestTTLSec) * time.Second }

type DB struct {
	Driver             string // postgres | mysql | sqlite | memory
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Limits struct {
	RPS               float64
	Burst             int
	PerIP             bool `mapstructure:"per_ip"`
	MaxConcurrent     int64
	MaxBodyMB         int64 `mapstructure:"max_body_mb"`
	RequestTimeoutSec int   `mapstructure:"request_timeout_sec"`
}

func (l Limits) RequestTimeout() time.Duration {
	return time.Duration(l.RequestTimeoutSec) * time.Second
}

type Users struct {
	DeletePolicy string `mapstructure:"delete_policy"`
}

type Password struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

type Tracing struct {
	Enabled     bool
	Endpoint    string
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

type Config struct {
	App      App
	Log      Log
	DB       DB
	Redis    Redis `mapstructure:"redis"`
	Limits   Limits
	Users    Users
	Password Password
	Tracing  Tracing
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "biotrack")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readtimeoutsec", 5)
	v.SetDefault("app.http.writetimeoutsec", 10)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.http.cors_origins", []string{})
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 8081)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.enable", false)
	v.SetDefault("log.file.filename", "logs/biotrack.log")
	v.SetDefault("log.file.maxsizemb", 100)
	v.SetDefault("log.file.maxbackups", 7)
	v.SetDefault("log.file.maxagedays", 30)
	v.SetDefault("log.file.compress", true)

	v.SetDefault("db.driver", "memory")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.maxopenconns", 20)
	v.SetDefault("db.maxidleconns", 10)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("db.automigrate", true)
	v.SetDefault("db.loglevel", "warn")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.latest_ttl_sec", 300)

	v.SetDefault("limits.rps", 200)
	v.SetDefault("limits.burst", 400)
	v.SetDefault("limits.per_ip", false)
	v.SetDefault("limits.maxconcurrent", 300)
	v.SetDefault("limits.max_body_mb", 1)
	v.SetDefault("limits.request_timeout_sec", 10)

	v.SetDefault("users.delete_policy", "cascade")
	v.SetDefault("password.bcrypt_cost", 10)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("tracing.sample_ratio", 1.0)
}

// Load reads the YAML file at path (or CONFIG_PATH, or ./configs/config.local.yaml).
// A missing file is fine, defaults and APP_* variables still apply, so
// APP_DB_DRIVER=postgres overrides db.driver.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "postgres", "mysql", "sqlite", "memory":
	default:
		return fmt.Errorf("config: unsupported db.driver %q", c.DB.Driver)
	}
	if c.DB.Driver != "memory" && strings.TrimSpace(c.DB.DSN) == "" {
		return fmt.Errorf("config: db.dsn is required for driver %q", c.DB.Driver)
	}
	switch c.Users.DeletePolicy {
	case "", "cascade", "restrict":
	default:
		return fmt.Errorf("config: unsupported users.delete_policy %q", c.Users.DeletePolicy)
	}
	if c.App.HTTP.Port <= 0 || c.App.Admin.Port <= 0 {
		return errors.New("config: http ports must be positive")
	}
	return nil
}
