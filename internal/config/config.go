package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

const (
	GenerationBackendTGI   = "tgi"
	GenerationBackendGenAI = "genai"

	StoreBackendFirebase = "firebase"
	StoreBackendPostgres = "postgres"
	StoreBackendRedis    = "redis"
	StoreBackendSqlite   = "sqlite"

	DefaultModelID           = "Qwen/Qwen2.5-1.5B-Instruct"
	DefaultRecordsPath       = "blogs"
	DefaultGenerationTimeout = 2 * time.Minute
)

var (
	ErrUnknownEnv     = errors.New("unknown env")
	ErrMissingSection = errors.New("config section missing")
)

type Config struct {
	Environment string `toml:"-"`
	Host        string `toml:"host"`
	Port        int    `toml:"port" validate:"min=1,max=65535"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port" validate:"required"`

	// text generation
	GenerationBackend string        `toml:"generation_backend" validate:"oneof=tgi genai"`
	ModelID           string        `toml:"model_id" validate:"required_if=GenerationBackend tgi"`
	TGIURL            string        `toml:"tgi_url" validate:"required_if=GenerationBackend tgi"`
	GenAIModel        string        `toml:"genai_model" validate:"required_if=GenerationBackend genai"`
	GenerationTimeout time.Duration `toml:"generation_timeout"`

	// records store
	StoreBackend            string `toml:"store_backend" validate:"oneof=firebase postgres redis sqlite"`
	RecordsPath             string `toml:"records_path" validate:"required"`
	FirebaseDatabaseURL     string `toml:"firebase_database_url" validate:"required_if=StoreBackend firebase"`
	FirebaseCredentialsFile string `toml:"firebase_credentials_file"`
	PostgresHost            string `toml:"postgres_host" validate:"required_if=StoreBackend postgres"`
	PostgresPort            string `toml:"postgres_port" validate:"required_if=StoreBackend postgres"`
	PostgresDBName          string `toml:"postgres_db_name" validate:"required_if=StoreBackend postgres"`
	RedisHost               string `toml:"redis_host" validate:"required_if=StoreBackend redis"`
	RedisPort               string `toml:"redis_port" validate:"required_if=StoreBackend redis"`
	SqlitePath              string `toml:"sqlite_path" validate:"required_if=StoreBackend sqlite"`
}

type Toml struct {
	Development *Config `toml:"development"`
	Production  *Config `toml:"production"`
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEnv, env)
	}

	if cfg == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingSection, env)
	}

	return cfg, nil
}

// Load reads the TOML file at path and returns the validated config section for env.
func Load(env, path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	return Parse(env, f)
}

func Parse(env string, r io.Reader) (*Config, error) {
	var t Toml
	if _, err := toml.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode toml: %w", err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}

	cfg.Environment = strings.ToLower(env)
	cfg.setDefaults()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", env, err)
	}

	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.GenerationBackend == "" {
		c.GenerationBackend = GenerationBackendTGI
	}
	if c.ModelID == "" {
		c.ModelID = DefaultModelID
	}
	if c.GenerationTimeout == 0 {
		c.GenerationTimeout = DefaultGenerationTimeout
	}
	if c.StoreBackend == "" {
		c.StoreBackend = StoreBackendFirebase
	}
	if c.RecordsPath == "" {
		c.RecordsPath = DefaultRecordsPath
	}
}
