package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"shiptrack/internal/adapters/out/redisbus"
	"shiptrack/internal/pkg/errs"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	HTTPPort string

	StorageBackend string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSslMode      string

	EntityStoreURL     string
	EntityStoreToken   string
	EntityStoreTimeout time.Duration

	RedisAddr      string
	RedisChannel   string
	RelayQueueSize int

	LogMode string

	ObserverIdleTimeout    time.Duration
	ObserverSweepSchedule  string
	ObserverBuffer         int
	ObserverAllowedOrigins []string
}

// LoadConfig reads the configuration from the environment, falling back to the
// env file for keys the environment does not set. --http-port and --storage
// override both. A missing env file is only an error when --env-file was given.
func LoadConfig(args []string) (Config, error) {
	fs := pflag.NewFlagSet("shiptrack", pflag.ContinueOnError)
	envFile := fs.String("env-file", ".env", "file with KEY=value defaults")
	httpPort := fs.String("http-port", "", "HTTP listen port (overrides HTTP_PORT)")
	storage := fs.String("storage", "", "storage backend: postgres or memory (overrides STORAGE_BACKEND)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	fileEnv, err := godotenv.Read(*envFile)
	if err != nil {
		if fs.Changed("env-file") || !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read env file %s: %w", *envFile, err)
		}
		fileEnv = map[string]string{}
	}
	env := environment{file: fileEnv}

	cfg := Config{
		HTTPPort:              env.get("HTTP_PORT", "8080"),
		StorageBackend:        strings.ToLower(env.get("STORAGE_BACKEND", StoragePostgres)),
		DBHost:                env.get("DB_HOST", ""),
		DBPort:                env.get("DB_PORT", "5432"),
		DBUser:                env.get("DB_USER", ""),
		DBPassword:            env.get("DB_PASSWORD", ""),
		DBName:                env.get("DB_NAME", ""),
		DBSslMode:             env.get("DB_SSLMODE", "disable"),
		EntityStoreURL:        env.get("ENTITY_STORE_URL", ""),
		EntityStoreToken:      env.get("ENTITY_STORE_TOKEN", ""),
		RedisAddr:             env.get("REDIS_ADDR", ""),
		RedisChannel:          env.get("REDIS_CHANNEL", redisbus.DefaultChannel),
		LogMode:               env.get("LOG_MODE", "development"),
		ObserverSweepSchedule: env.get("OBSERVER_SWEEP_SCHEDULE", ""),

		ObserverAllowedOrigins: env.list("OBSERVER_ALLOWED_ORIGINS"),
	}
	if fs.Changed("http-port") {
		cfg.HTTPPort = *httpPort
	}
	if fs.Changed("storage") {
		cfg.StorageBackend = strings.ToLower(*storage)
	}

	if err = errors.Join(
		env.duration("ENTITY_STORE_TIMEOUT", 2*time.Second, &cfg.EntityStoreTimeout),
		env.duration("OBSERVER_IDLE_TIMEOUT", 90*time.Second, &cfg.ObserverIdleTimeout),
		env.integer("OBSERVER_BUFFER", 64, &cfg.ObserverBuffer),
		env.integer("RELAY_QUEUE_SIZE", 1024, &cfg.RelayQueueSize),
	); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var problems []error
	switch c.StorageBackend {
	case StorageMemory:
	case StoragePostgres:
		for key, v := range map[string]string{"DB_HOST": c.DBHost, "DB_USER": c.DBUser, "DB_NAME": c.DBName} {
			if v == "" {
				problems = append(problems, errs.NewValueIsRequiredError(key))
			}
		}
	default:
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("STORAGE_BACKEND",
			fmt.Errorf("%q is neither %s nor %s", c.StorageBackend, StoragePostgres, StorageMemory)))
	}
	if c.HTTPPort == "" {
		problems = append(problems, errs.NewValueIsRequiredError("HTTP_PORT"))
	}
	if c.EntityStoreURL == "" {
		problems = append(problems, errs.NewValueIsRequiredError("ENTITY_STORE_URL"))
	}
	if c.EntityStoreTimeout <= 0 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("ENTITY_STORE_TIMEOUT", c.EntityStoreTimeout, time.Nanosecond, "unbounded"))
	}
	if c.ObserverIdleTimeout <= 0 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("OBSERVER_IDLE_TIMEOUT", c.ObserverIdleTimeout, time.Nanosecond, "unbounded"))
	}
	if c.ObserverBuffer < 1 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("OBSERVER_BUFFER", c.ObserverBuffer, 1, "unbounded"))
	}
	if c.RelayQueueSize < 1 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("RELAY_QUEUE_SIZE", c.RelayQueueSize, 1, "unbounded"))
	}
	return errors.Join(problems...)
}

// DSN is the postgres connection string for gorm.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// environment prefers process variables over the env file.
type environment struct {
	file map[string]string
}

func (e environment) lookup(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok {
		return v, true
	}
	v, ok := e.file[key]
	return v, ok
}

func (e environment) get(key, fallback string) string {
	if v, ok := e.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

// list splits a comma separated value, dropping blank items.
func (e environment) list(key string) []string {
	var items []string
	for _, item := range strings.Split(e.get(key, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func (e environment) duration(key string, fallback time.Duration, dst *time.Duration) error {
	raw := e.get(key, "")
	if raw == "" {
		*dst = fallback
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return errs.NewValueIsInvalidErrorWithCause(key, err)
	}
	*dst = d
	return nil
}

func (e environment) integer(key string, fallback int, dst *int) error {
	raw := e.get(key, "")
	if raw == "" {
		*dst = fallback
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return errs.NewValueIsInvalidErrorWithCause(key, err)
	}
	*dst = n
	return nil
}
