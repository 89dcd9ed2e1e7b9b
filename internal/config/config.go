package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for votcletta.
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server" toml:"server"`
	Logging LoggingConfig `json:"logging" yaml:"logging" toml:"logging"`
	Catalog CatalogConfig `json:"catalog" yaml:"catalog" toml:"catalog"`
}

// ServerConfig locates and authenticates against the Letta server.
type ServerConfig struct {
	BaseURL        string `json:"baseUrl" yaml:"baseUrl" toml:"baseUrl"`
	Token          string `json:"token,omitempty" yaml:"token,omitempty" toml:"token,omitempty"`
	Password       string `json:"password,omitempty" yaml:"password,omitempty" toml:"password,omitempty"`
	TimeoutSeconds int    `json:"timeoutSeconds" yaml:"timeoutSeconds" toml:"timeoutSeconds"`
}

func (s ServerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" toml:"level"`   // debug | info | warn | error
	Format string `json:"format" yaml:"format" toml:"format"` // text | json
}

// CatalogConfig points at an optional action catalogue overriding the built-in one.
type CatalogConfig struct {
	Path string `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`
}

// DefaultConfigDir returns the per-user config directory.
func DefaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".votcletta"
	}
	return filepath.Join(dir, "votcletta")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

type format int

const (
	formatJSON format = iota
	formatYAML
	formatTOML
)

func formatOf(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	case ".toml":
		return formatTOML
	default:
		return formatJSON
	}
}

// Load reads a config file (JSON, YAML or TOML by extension), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	path = ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read config file %s", path)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	switch formatOf(path) {
	case formatYAML:
		err = yaml.Unmarshal(data, cfg)
	case formatTOML:
		err = toml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "cannot parse config file %s", path)
	}

	return finish(cfg)
}

// LoadOrDefault is Load, except that a missing file yields the defaults plus
// environment overrides. The second result reports whether a file was read.
func LoadOrDefault(path string) (*Config, bool, error) {
	if _, err := os.Stat(ExpandPath(path)); errors.Is(err, os.ErrNotExist) {
		cfg, err := finish(Defaults())
		return cfg, false, err
	}
	cfg, err := Load(path)
	return cfg, err == nil, err
}

func finish(cfg *Config) (*Config, error) {
	applyEnvOverrides(cfg)
	cfg.Catalog.Path = ExpandPath(cfg.Catalog.Path)
	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "config validation")
	}
	return cfg, nil
}

// applyEnvOverrides lets the environment win over file values, matching the
// variables the Letta tooling already uses.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LETTA_BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("LETTA_API_KEY"); v != "" {
		cfg.Server.Token = v
	}
	if v := os.Getenv("LETTA_SERVER_PASSWORD"); v != "" {
		cfg.Server.Password = v
	}
	if v := os.Getenv("VOTCLETTA_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("VOTCLETTA_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("VOTCLETTA_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// Supports default values: ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match
		}
		return val
	})
}

// Save writes cfg in the format implied by the file extension.
func Save(path string, cfg *Config) error {
	path = ExpandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "cannot create config directory")
	}

	var (
		data []byte
		err  error
	)
	switch formatOf(path) {
	case formatYAML:
		data, err = yaml.Marshal(cfg)
	case formatTOML:
		data, err = toml.Marshal(cfg)
	default:
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return errors.Wrap(err, "cannot marshal config")
	}

	// the file may hold credentials
	return os.WriteFile(path, data, 0o600)
}

// Validate checks that the config has valid values.
func Validate(cfg *Config) error {
	var errs []string

	u, err := url.Parse(cfg.Server.BaseURL)
	switch {
	case cfg.Server.BaseURL == "":
		errs = append(errs, "server.baseUrl is required")
	case err != nil:
		errs = append(errs, fmt.Sprintf("server.baseUrl is not a valid URL: %v", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, "server.baseUrl must use http or https")
	case u.Host == "":
		errs = append(errs, "server.baseUrl must include a host")
	}

	if cfg.Server.TimeoutSeconds < 1 || cfg.Server.TimeoutSeconds > 600 {
		errs = append(errs, "server.timeoutSeconds must be between 1 and 600")
	}

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, "logging.level must be one of: debug, info, warn, error")
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, "logging.format must be one of: text, json")
	}

	if len(errs) > 0 {
		return errors.Newf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ExpandPath resolves ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
