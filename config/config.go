package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"gopkg.in/yaml.v3"

	"github.com/distributhor/arangotools/cache"
	"github.com/distributhor/arangotools/driver"
	"github.com/distributhor/arangotools/structure"
)

type Config struct {
	Logger    LoggerConfig           `yaml:"logger"`
	Arango    ArangoConfig           `yaml:"arango"`
	Cache     *cache.Config          `yaml:"cache"`
	Structure *structure.DBStructure `yaml:"structure"`
}

type LoggerConfig struct {
	Level  string `yaml:"level"`
	Type   string `yaml:"type"`
	Output string `yaml:"output"`
}

type ArangoConfig struct {
	driver.ArangoConfig `yaml:",inline"`
	Database            string `yaml:"database"`
}

// Load reads and validates a YAML config file.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes and validates YAML config. Missing logger settings default
// to info level text on stderr.
func Parse(b []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("cannot parse config: %w", err)
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.Logger.Type == "" {
		cfg.Logger.Type = "text"
	}
	if cfg.Structure != nil && cfg.Structure.Database == "" {
		cfg.Structure.Database = cfg.Arango.Database
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) Validate() error {
	var errs []error
	if len(cfg.Arango.Endpoints) == 0 {
		errs = append(errs, errors.New("arango.endpoints is required"))
	}
	if cfg.Arango.Database == "" {
		errs = append(errs, errors.New("arango.database is required"))
	}
	if cfg.Cache != nil && cfg.Cache.Addr == "" && cfg.Cache.Size < 0 {
		errs = append(errs, errors.New("cache.size cannot be negative"))
	}
	if cfg.Cache != nil && cfg.Cache.TTL < 0 {
		errs = append(errs, errors.New("cache.ttl cannot be negative"))
	}
	if _, err := parseLevel(cfg.Logger.Level); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// BuildLogger builds the logger described by cfg.Logger.
func (cfg Config) BuildLogger() (*slog.Logger, error) {
	var w io.Writer
	switch cfg.Logger.Output {
	case "", "stderr":
		w = os.Stderr
	case "stdout":
		w = os.Stdout
	default:
		return nil, fmt.Errorf("invalid log output: %s", cfg.Logger.Output)
	}
	return NewLogger(cfg.Logger, w)
}

// NewLogger builds a json, text or colored-text logger writing to w.
func NewLogger(cfg LoggerConfig, w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var handler slog.Handler
	switch cfg.Type {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case "text":
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	case "colored-text":
		handler = tint.NewHandler(w, &tint.Options{Level: level, AddSource: true})
	default:
		return nil, fmt.Errorf("invalid log type: %s", cfg.Type)
	}
	return slog.New(handler), nil
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s", s)
	}
}
