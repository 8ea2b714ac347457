// Package config loads service configuration from flags, environment and .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Overland-East-Bay/scoring-api/internal/app/auth"
	"github.com/Overland-East-Bay/scoring-api/internal/platform/resilience"
)

// EnvPrefix prefixes every environment variable, e.g. SCORING_STORE_BACKEND.
const EnvPrefix = "SCORING"

// Backends selectable with --store-backend.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendValkey   = "valkey"
	BackendPostgres = "postgres"
)

// Keys double as flag names.
const (
	KeyPort            = "port"
	KeyLog             = "log"
	KeyLogLevel        = "log-level"
	KeyStoreBackend    = "store-backend"
	KeyStoreAddr       = "store-addr"
	KeyStorePassword   = "store-password"
	KeyStoreDB         = "store-db"
	KeyDatabaseURL     = "database-url"
	KeyStoreRetries    = "store-retries"
	KeyStoreRetryDelay = "store-retry-delay"
	KeyStoreBackoff    = "store-backoff"
	KeyStoreMaxWait    = "store-max-wait"
	KeyStoreTimeout    = "store-timeout"
	KeyCacheTTL        = "cache-ttl"

	KeyAuthSalt       = "auth-salt"
	KeyAuthAdminSalt  = "auth-admin-salt"
	KeyAuthAdminLogin = "auth-admin-login"
)

type Config struct {
	Server ServerConfig
	Log    LogConfig
	Store  StoreConfig
	Auth   auth.Config
}

type ServerConfig struct {
	Port int
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

type LogConfig struct {
	Path  string
	Level string
}

type StoreConfig struct {
	Backend     string
	Addr        string
	Password    string
	DB          int
	DatabaseURL string

	Retries    int
	RetryDelay time.Duration
	Backoff    string
	MaxWait    time.Duration
	Timeout    time.Duration
	CacheTTL   time.Duration
}

// RetryPolicy turns the retry settings into a resilience.Policy.
func (c StoreConfig) RetryPolicy() (resilience.Policy, error) {
	b, err := resilience.ParseBackoff(c.Backoff)
	if err != nil {
		return resilience.Policy{}, err
	}
	return resilience.Policy{
		Retries:      c.Retries,
		Delay:        c.RetryDelay,
		Backoff:      b,
		MaxTotalWait: c.MaxWait,
	}, nil
}

// RegisterFlags declares every command-line flag with its default.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.IntP(KeyPort, "p", 8080, "listen port")
	flags.StringP(KeyLog, "l", "", "log file path (default stderr)")
	flags.String(KeyLogLevel, "info", "log level: debug, info, warn, error")
	flags.String(KeyStoreBackend, BackendMemory, "key-value backend: memory, redis, valkey, postgres")
	flags.String(KeyStoreAddr, "", "redis/valkey address host:port")
	flags.String(KeyStorePassword, "", "redis/valkey password")
	flags.Int(KeyStoreDB, 0, "redis/valkey database number")
	flags.String(KeyDatabaseURL, "", "postgres connection URL")
	flags.Int(KeyStoreRetries, 5, "backend retries after the first attempt")
	flags.Duration(KeyStoreRetryDelay, time.Second, "wait before the first backend retry")
	flags.String(KeyStoreBackoff, "constant", "retry backoff: constant, linear, exponential")
	flags.Duration(KeyStoreMaxWait, 0, "upper bound on the summed retry waits of one call (0 = none)")
	flags.Duration(KeyStoreTimeout, 3*time.Second, "timeout of a single backend call (0 = none)")
	flags.Duration(KeyCacheTTL, 60*time.Second, "default local cache TTL")
}

// NewViper loads .env when present and binds flags and SCORING_* variables.
// Variables already set in the environment win over .env.
func NewViper(flags *pflag.FlagSet, envFiles ...string) (*viper.Viper, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault(KeyAuthSalt, auth.DefaultSalt)
	v.SetDefault(KeyAuthAdminSalt, auth.DefaultAdminSalt)
	v.SetDefault(KeyAuthAdminLogin, auth.DefaultAdminLogin)
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Load reads a Config out of v and validates it.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Server: ServerConfig{Port: v.GetInt(KeyPort)},
		Log: LogConfig{
			Path:  v.GetString(KeyLog),
			Level: v.GetString(KeyLogLevel),
		},
		Store: StoreConfig{
			Backend:     strings.ToLower(v.GetString(KeyStoreBackend)),
			Addr:        v.GetString(KeyStoreAddr),
			Password:    v.GetString(KeyStorePassword),
			DB:          v.GetInt(KeyStoreDB),
			DatabaseURL: v.GetString(KeyDatabaseURL),
			Retries:     v.GetInt(KeyStoreRetries),
			RetryDelay:  v.GetDuration(KeyStoreRetryDelay),
			Backoff:     v.GetString(KeyStoreBackoff),
			MaxWait:     v.GetDuration(KeyStoreMaxWait),
			Timeout:     v.GetDuration(KeyStoreTimeout),
			CacheTTL:    v.GetDuration(KeyCacheTTL),
		},
		Auth: auth.Config{
			Salt:       v.GetString(KeyAuthSalt),
			AdminSalt:  v.GetString(KeyAuthAdminSalt),
			AdminLogin: v.GetString(KeyAuthAdminLogin),
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validation.ValidateStruct(&c.Server,
		validation.Field(&c.Server.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := validation.ValidateStruct(&c.Log,
		validation.Field(&c.Log.Level, validation.In("trace", "debug", "info", "warn", "warning", "error")),
	); err != nil {
		return fmt.Errorf("log: %w", err)
	}

	s := &c.Store
	remote := s.Backend == BackendRedis || s.Backend == BackendValkey
	if err := validation.ValidateStruct(s,
		validation.Field(&s.Backend, validation.Required,
			validation.In(BackendMemory, BackendRedis, BackendValkey, BackendPostgres)),
		validation.Field(&s.Addr, validation.When(remote, validation.Required)),
		validation.Field(&s.DatabaseURL, validation.When(s.Backend == BackendPostgres, validation.Required)),
		validation.Field(&s.DB, validation.Min(0)),
		validation.Field(&s.Retries, validation.Min(0)),
		validation.Field(&s.RetryDelay, validation.Required, validation.Min(time.Duration(1))),
		validation.Field(&s.Backoff, validation.In("constant", "linear", "exponential")),
		validation.Field(&s.MaxWait, validation.Min(time.Duration(0))),
		validation.Field(&s.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&s.CacheTTL, validation.Required, validation.Min(time.Duration(1))),
	); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
