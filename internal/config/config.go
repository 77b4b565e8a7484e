// ABOUTME: Configuration loader for the library client
// ABOUTME: Resolves flags, environment, .env and config.yaml into one Config

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/minilibrary/library/internal/store"
)

// Defaults
const (
	DefaultAPIURL  = "http://localhost:5000"
	DefaultTimeout = 30 * time.Second

	// FileName is the optional YAML file read from the config directory
	FileName = "config.yaml"
)

// Environment variables
const (
	EnvAPIURL       = "LIBRARY_API_URL"
	EnvConfigDir    = "LIBRARY_CONFIG_DIR"
	EnvStore        = "LIBRARY_STORE"
	EnvLogLevel     = "LIBRARY_LOG_LEVEL"
	EnvLogFormat    = "LIBRARY_LOG_FORMAT"
	EnvStrictVerify = "LIBRARY_STRICT_VERIFY"
	EnvTimeout      = "LIBRARY_TIMEOUT"
)

// Config is the resolved client configuration
type Config struct {
	APIURL       string
	ConfigDir    string
	Store        string // file or sqlite
	LogLevel     string
	LogFormat    string
	StrictVerify bool
	Timeout      time.Duration
}

// FileConfig represents configuration loaded from YAML
type FileConfig struct {
	APIURL       string `yaml:"apiURL"`
	Store        string `yaml:"store"`
	LogLevel     string `yaml:"logLevel"`
	LogFormat    string `yaml:"logFormat"`
	StrictVerify *bool  `yaml:"strictVerify"`
	Timeout      string `yaml:"timeout"`
}

// Overrides carries values set on the command line; empty means unset
type Overrides struct {
	APIURL    string
	ConfigDir string
	Store     string
	LogLevel  string

	// EnvFile is the dotenv file to read, ".env" when empty
	EnvFile string
}

// source looks values up in the process environment, then the dotenv file
type source struct {
	dotenv map[string]string
}

func (s source) get(key string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(s.dotenv[key])
}

// Load resolves the configuration. Precedence, highest first: overrides,
// process environment, .env file, config.yaml, defaults.
func Load(o Overrides) (*Config, error) {
	envFile := o.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	dotenv, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", envFile, err)
	}
	src := source{dotenv: dotenv}

	cfg := &Config{
		ConfigDir: first(o.ConfigDir, src.get(EnvConfigDir), store.DefaultConfigDir()),
	}

	file, err := LoadFile(filepath.Join(cfg.ConfigDir, FileName))
	if err != nil {
		return nil, err
	}

	cfg.APIURL = strings.TrimRight(first(o.APIURL, src.get(EnvAPIURL), file.APIURL, DefaultAPIURL), "/")
	cfg.Store = strings.ToLower(first(o.Store, src.get(EnvStore), file.Store, store.BackendFile))
	cfg.LogLevel = strings.ToLower(first(o.LogLevel, src.get(EnvLogLevel), file.LogLevel, "info"))
	cfg.LogFormat = strings.ToLower(first(src.get(EnvLogFormat), file.LogFormat, "text"))

	if file.StrictVerify != nil {
		cfg.StrictVerify = *file.StrictVerify
	}
	if v := src.get(EnvStrictVerify); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("config: %s must be a boolean, got %q", EnvStrictVerify, v)
		}
		cfg.StrictVerify = b
	}

	timeout := first(src.get(EnvTimeout), file.Timeout)
	cfg.Timeout = DefaultTimeout
	if timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("config: invalid timeout %q: %w", timeout, err)
		}
		cfg.Timeout = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a YAML config file. A missing file yields an empty FileConfig.
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fc, nil
	}
	if err != nil {
		return fc, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse config: %w", err)
	}
	return fc, nil
}

// Validate checks that the resolved values are usable
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: API URL must be an http or https URL, got %q", c.APIURL)
	}
	switch c.Store {
	case store.BackendFile, store.BackendSQLite:
	default:
		return fmt.Errorf("config: store must be %q or %q, got %q", store.BackendFile, store.BackendSQLite, c.Store)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: log format must be text or json, got %q", c.LogFormat)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %s", c.Timeout)
	}
	if c.ConfigDir == "" {
		return errors.New("config: no config directory (set " + EnvConfigDir + " or HOME)")
	}
	return nil
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
