// Package config loads the translator's YAML configuration, with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheSQLite = "sqlite"
	CacheNone   = "none"
)

// Config is the full configuration.
type Config struct {
	SourceLang      string `yaml:"source_lang" env:"UT_SOURCE_LANG"`
	LogLevel        string `yaml:"log_level" env:"UT_LOG_LEVEL"`
	CredentialsFile string `yaml:"credentials_file" env:"UT_CREDENTIALS_FILE"`

	Provider    ProviderConfig    `yaml:"provider"`
	Cache       CacheConfig       `yaml:"cache"`
	Translation TranslationConfig `yaml:"translation"`
	Rules       RulesConfig       `yaml:"rules"`
	Approvals   ApprovalsConfig   `yaml:"approvals"`
}

// ProviderConfig selects the translation backend.
type ProviderConfig struct {
	Name              string        `yaml:"name" env:"UT_PROVIDER"`
	Model             string        `yaml:"model" env:"UT_MODEL"`
	BaseURL           string        `yaml:"base_url" env:"UT_PROVIDER_URL"`
	Temperature       float32       `yaml:"temperature"`
	Timeout           time.Duration `yaml:"timeout" env:"UT_PROVIDER_TIMEOUT"`
	MaxRetries        int           `yaml:"max_retries" env:"UT_MAX_RETRIES"`
	RequestsPerMinute int           `yaml:"requests_per_minute" env:"UT_RPM"`
}

// CacheConfig selects the translation cache.
type CacheConfig struct {
	Backend    string `yaml:"backend" env:"UT_CACHE"`
	RedisURL   string `yaml:"redis_url" env:"UT_REDIS_URL"`
	KeyPrefix  string `yaml:"key_prefix"`
	SQLitePath string `yaml:"sqlite_path" env:"UT_SQLITE_PATH"`
}

// TranslationConfig tunes document translation.
type TranslationConfig struct {
	Concurrency int           `yaml:"concurrency" env:"UT_CONCURRENCY"`
	CallTimeout time.Duration `yaml:"call_timeout" env:"UT_CALL_TIMEOUT"`
	Slugs       bool          `yaml:"slugs" env:"UT_SLUGS"`
	Numerals    bool          `yaml:"numerals" env:"UT_NUMERALS"`
}

// RulesConfig points at classification rules and auto-detection state.
type RulesConfig struct {
	File                string  `yaml:"file" env:"UT_RULES_FILE"`
	StateFile           string  `yaml:"state_file" env:"UT_STATE_FILE"`
	AutoDetect          bool    `yaml:"auto_detect" env:"UT_AUTO_DETECT"`
	MinFrequency        int     `yaml:"min_frequency"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
}

// ApprovalsConfig selects where review decisions are kept.
type ApprovalsConfig struct {
	Backend    string `yaml:"backend" env:"UT_APPROVALS"`
	RedisURL   string `yaml:"redis_url"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		SourceLang: "en",
		LogLevel:   "info",
		Provider: ProviderConfig{
			Name:              "openai",
			Model:             "gpt-4o-mini",
			Timeout:           30 * time.Second,
			MaxRetries:        3,
			RequestsPerMinute: 0,
		},
		Cache: CacheConfig{
			Backend:    CacheMemory,
			SQLitePath: "translations.db",
		},
		Translation: TranslationConfig{
			Concurrency: 8,
			CallTimeout: 30 * time.Second,
			Slugs:       true,
			Numerals:    true,
		},
		Rules: RulesConfig{
			AutoDetect:          true,
			MinFrequency:        3,
			ConfidenceThreshold: 0.7,
		},
		Approvals: ApprovalsConfig{
			Backend:    CacheSQLite,
			SQLitePath: "translations.db",
		},
	}
}

// Load reads a YAML configuration file into out. ${VAR} references in the
// file are expanded, then fields with an `env` tag are overridden from the
// environment.
func Load(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), out); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	return ApplyEnv(out)
}

// LoadOrDefault loads path over Default(). A missing file is not an error;
// environment overrides still apply.
func LoadOrDefault(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := Load(path, &cfg); err != nil {
				return cfg, err
			}
			return cfg, cfg.Validate()
		}
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate checks values that would otherwise fail later.
func (c *Config) Validate() error {
	var errs []error
	switch c.Cache.Backend {
	case CacheMemory, CacheRedis, CacheSQLite, CacheNone:
	default:
		errs = append(errs, fmt.Errorf("cache.backend: unknown backend %q", c.Cache.Backend))
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisURL == "" {
		errs = append(errs, errors.New("cache.redis_url is required for the redis backend"))
	}
	switch c.Approvals.Backend {
	case CacheMemory, CacheRedis, CacheSQLite:
	default:
		errs = append(errs, fmt.Errorf("approvals.backend: unknown backend %q", c.Approvals.Backend))
	}
	if c.Approvals.Backend == CacheRedis && c.Approvals.RedisURL == "" && c.Cache.RedisURL == "" {
		errs = append(errs, errors.New("approvals.redis_url is required for the redis backend"))
	}
	if c.Translation.Concurrency < 0 {
		errs = append(errs, errors.New("translation.concurrency must not be negative"))
	}
	if t := c.Rules.ConfidenceThreshold; t < 0 || t > 1 {
		errs = append(errs, errors.New("rules.confidence_threshold must be within [0, 1]"))
	}
	if c.SourceLang == "" {
		errs = append(errs, errors.New("source_lang is required"))
	}
	return errors.Join(errs...)
}

// ApplyEnv sets struct fields from the environment variables named by their
// `env` tags, recursing into nested structs.
func ApplyEnv(v any) error {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil
	}

	var errs []error
	t := val.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := val.Field(i)

		if fieldVal.Kind() == reflect.Struct {
			if fieldVal.CanAddr() {
				if err := ApplyEnv(fieldVal.Addr().Interface()); err != nil {
					errs = append(errs, err)
				}
			}
			continue
		}

		envTag := field.Tag.Get("env")
		if envTag == "" || !fieldVal.CanSet() {
			continue
		}
		envVal, ok := os.LookupEnv(envTag)
		if !ok {
			continue
		}
		if err := setField(fieldVal, envVal); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", envTag, err))
		}
	}
	return errors.Join(errs...)
}

var durationType = reflect.TypeOf(time.Duration(0))

func setField(f reflect.Value, s string) error {
	if f.Type() == durationType {
		d, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		f.SetInt(int64(d))
		return nil
	}

	switch f.Kind() {
	case reflect.String:
		f.SetString(s)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return err
		}
		f.SetInt(n)
	case reflect.Float32, reflect.Float64:
		x, err := strconv.ParseFloat(strings.TrimSpace(s), f.Type().Bits())
		if err != nil {
			return err
		}
		f.SetFloat(x)
	case reflect.Bool:
		f.SetBool(strings.EqualFold(s, "true") || s == "1")
	}
	return nil
}
