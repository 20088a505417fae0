package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig      `envconfig:"APP"`
	Postgres PostgresConfig `envconfig:"POSTGRES"`
	Redis    RedisConfig    `envconfig:"REDIS"`
	Logger   LoggerConfig   `envconfig:"LOG"`
	Auth     AuthConfig     `envconfig:"AUTH"`
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string `envconfig:"NAME" default:"gym-access"`
	Env                   string `envconfig:"ENV"`
	Host                  string `envconfig:"HOST" default:"0.0.0.0"`
	Port                  string `envconfig:"PORT" default:"8080"`
	Version               string `envconfig:"VERSION" default:"dev"`
	RequestTimeoutSeconds int    `envconfig:"REQUEST_TIMEOUT_SECONDS" default:"30"`
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string        `envconfig:"DSN"`
	MaxConns       int32         `envconfig:"MAX_CONNS" default:"10"`
	MinConns       int32         `envconfig:"MIN_CONNS" default:"2"`
	RunMigrations  bool          `envconfig:"RUN_MIGRATIONS" default:"true"`
	ConnMaxIdleSec int32         `envconfig:"CONN_MAX_IDLE_SECONDS" default:"30"`
	ConnMaxLifeSec int32         `envconfig:"CONN_MAX_LIFE_SECONDS" default:"300"`
	ConnectTimeout time.Duration `envconfig:"CONNECT_TIMEOUT" default:"5s"`
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr        string        `envconfig:"ADDR" default:"127.0.0.1:6379"`
	Password    string        `envconfig:"PASSWORD"`
	DB          int           `envconfig:"DB" default:"0"`
	DialTimeout time.Duration `envconfig:"DIAL_TIMEOUT" default:"2s"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `envconfig:"LEVEL" default:"info"`
}

// AuthConfig defines credential and session parameters.
type AuthConfig struct {
	Secret            string        `envconfig:"SECRET"`
	AccessPhrase      string        `envconfig:"ACCESS_PHRASE"`
	Issuer            string        `envconfig:"ISSUER" default:"tessalp-gyms"`
	Audience          string        `envconfig:"AUDIENCE" default:"tessalp-users"`
	BcryptCost        int           `envconfig:"BCRYPT_COST" default:"10"`
	UserSessionTTL    time.Duration `envconfig:"USER_SESSION_TTL" default:"168h"`
	GymSessionTTL     time.Duration `envconfig:"GYM_SESSION_TTL" default:"168h"`
	GymAccessTTL      time.Duration `envconfig:"GYM_ACCESS_TTL" default:"24h"`
	VerifyMaxAttempts int           `envconfig:"VERIFY_MAX_ATTEMPTS" default:"10"`
	VerifyWindow      time.Duration `envconfig:"VERIFY_WINDOW" default:"15m"`
}

// Load reads configuration from the environment (and an optional .env file)
// and validates it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations that may not run outside local development.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.GymAccessTTL <= 0 || c.Auth.GymSessionTTL <= 0 || c.Auth.UserSessionTTL <= 0 {
		errs = append(errs, errors.New("AUTH_*_TTL values must be positive"))
	}
	if !c.App.IsDevelopment() {
		env := c.App.Env
		if env == "" {
			env = "<unset>"
		}
		if strings.TrimSpace(c.Auth.Secret) == "" {
			errs = append(errs, fmt.Errorf("AUTH_SECRET is required when APP_ENV=%s", env))
		}
		if strings.TrimSpace(c.Auth.AccessPhrase) == "" {
			errs = append(errs, fmt.Errorf("AUTH_ACCESS_PHRASE is required when APP_ENV=%s", env))
		}
	}
	return errors.Join(errs...)
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// IsDevelopment reports whether local-development fallbacks are permitted.
// APP_ENV must name development or test explicitly.
func (a AppConfig) IsDevelopment() bool {
	switch strings.ToLower(a.Env) {
	case EnvDevelopment, EnvTest:
		return true
	}
	return false
}

// IsProduction controls the Secure cookie attribute.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Env, EnvProduction)
}
