package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const EnvTest = "test"

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
	MaxBodyBytes    int64
}

type App struct {
	Name     string
	Env      string // "test" silences the response hook and selects DB.TestDSN
	HTTP     HTTP
	DocsPath string
}

type Log struct {
	Level string
	JSON  bool
	File  string // empty disables the lumberjack sink
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int // 0 issues tokens without exp
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTLSec   int    `mapstructure:"ttlsec"`
}

type DB struct {
	Driver             string
	DSN                string
	TestDSN            string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Config struct {
	App   App
	Log   Log
	JWT   JWT
	DB    DB
	Redis Redis `mapstructure:"redis"`
}

// IsTest reports whether the process runs under the test execution mode.
func (c *Config) IsTest() bool { return strings.EqualFold(c.App.Env, EnvTest) }

// DatabaseDSN picks the connection string for the current execution mode.
func (c *Config) DatabaseDSN() string {
	if c.IsTest() && c.DB.TestDSN != "" {
		return c.DB.TestDSN
	}
	return c.DB.DSN
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "users-api")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.docspath", "/v1/swagger")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 3000)
	v.SetDefault("app.http.readtimeoutsec", 5)
	v.SetDefault("app.http.writetimeoutsec", 10)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.http.maxbodybytes", 1<<20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file", "")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "users-api")
	v.SetDefault("jwt.accesstokenttlmin", 1440)

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.dsn", "host=localhost user=postgres password=postgres dbname=users port=5432 sslmode=disable")
	v.SetDefault("db.testdsn", "host=localhost user=postgres password=postgres dbname=users_test port=5432 sslmode=disable")
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
	v.SetDefault("redis.ttlsec", 60)
}

// Load reads an optional YAML file, then APP_* env vars, then the plain
// deployment variables (PORT, DATABASE_URI, ...), later sources winning.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	binds := map[string][]string{
		"app.http.port":  {"PORT"},
		"app.env":        {"APP_ENV", "GO_ENV"},
		"db.dsn":         {"DATABASE_URI"},
		"db.testdsn":     {"TEST_DATABASE_URI"},
		"db.driver":      {"DATABASE_DRIVER"},
		"jwt.secret":     {"JWT_SECRET"},
		"redis.addr":     {"REDIS_ADDR"},
		"redis.password": {"REDIS_PASSWORD"},
	}
	for key, envs := range binds {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
