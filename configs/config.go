package configs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/i2y/pispi/internal/adapter/outbound/github"
	"github.com/i2y/pispi/internal/patcher"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "pispi"

// Defaults for the generator output layout.
const (
	DefaultModelsDir      = "src/generated/models"
	DefaultCoreConfigFile = "src/generated/core/OpenAPI.ts"
	DefaultLogLevel       = "info"
)

// SpecSource is the API description source with optional request headers.
// In YAML it is either a plain string or an object with url and headers.
type SpecSource struct {
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// UnmarshalYAML accepts both the string and the object form.
func (s *SpecSource) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		s.URL = node.Value
		return nil
	}
	type plain SpecSource
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = SpecSource(p)
	return nil
}

// FileConfig defines the structure loaded from the YAML configuration file.
type FileConfig struct {
	Spec struct {
		Source SpecSource `yaml:"source"`
		Output string     `yaml:"output"`
	} `yaml:"spec"`
	Generated struct {
		ModelsDir  string `yaml:"models_dir"`
		CoreConfig string `yaml:"core_config"`
		Extension  string `yaml:"extension"`
	} `yaml:"generated"`
	Target struct {
		BaseURL string `yaml:"base_url"`
		Version string `yaml:"version"`
	} `yaml:"target"`
	Validate bool   `yaml:"validate"`
	LogLevel string `yaml:"log_level"`
}

// Config holds the final application configuration, merged from file and environment variables.
// Fields are loaded from environment variables with the prefix "PISPI_" and override file settings.
// File-backed fields carry no envconfig default so that an unset variable keeps the file value.
type Config struct {
	ConfigFilePath string `envconfig:"CONFIG_FILE"`

	SpecSource     string            `envconfig:"SPEC_SOURCE"`
	SpecHeaders    map[string]string `envconfig:"SPEC_HEADERS"`
	SpecOutput     string            `envconfig:"SPEC_OUTPUT"`
	ModelsDir      string            `envconfig:"MODELS_DIR"`
	CoreConfigFile string            `envconfig:"CORE_CONFIG_FILE"`
	TypeExtension  string            `envconfig:"TYPE_EXTENSION"`
	TargetBaseURL  string            `envconfig:"TARGET_BASE_URL"`
	TargetVersion  string            `envconfig:"TARGET_VERSION"`
	Validate       bool              `envconfig:"VALIDATE"`
	LogLevel       string            `envconfig:"LOG_LEVEL"`

	HTTPClientTimeout        time.Duration `envconfig:"HTTP_CLIENT_TIMEOUT" default:"30s"`
	OtelExporterOtlpEndpoint string        `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelExporterOtlpInsecure bool          `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
}

// ParsedLogLevel returns the slog.Level based on the configured LogLevel string.
func (c *Config) ParsedLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		fallthrough
	default:
		return slog.LevelInfo
	}
}

// PatchTargets returns the generator output locations to patch.
func (c *Config) PatchTargets() patcher.Targets {
	return patcher.Targets{ConfigFile: c.CoreConfigFile, ModelsDir: c.ModelsDir}
}

// PatchOptions returns the patcher options derived from the configuration.
func (c *Config) PatchOptions() patcher.Options {
	return patcher.Options{
		BaseURL:   c.TargetBaseURL,
		Version:   c.TargetVersion,
		Extension: c.TypeExtension,
	}
}

// Load reads the configuration from the OS filesystem and the environment.
// A non-empty configFile takes precedence over PISPI_CONFIG_FILE.
func Load(ctx context.Context, configFile string) (*Config, error) {
	return LoadFS(ctx, afero.NewOsFs(), configFile)
}

// LoadFS loads configuration first from environment variables (to get file path),
// then from the specified YAML file, and finally merges/overrides with environment variables again.
func LoadFS(ctx context.Context, fs afero.Fs, configFile string) (*Config, error) {
	var initialCfg Config
	if err := envconfig.Process(EnvPrefix, &initialCfg); err != nil {
		return nil, fmt.Errorf("failed to process initial environment variables: %w", err)
	}
	if configFile != "" {
		initialCfg.ConfigFilePath = configFile
	}

	finalCfg := initialCfg
	if initialCfg.ConfigFilePath != "" {
		fileCfg, err := readFileConfig(ctx, fs, initialCfg.ConfigFilePath)
		if err != nil {
			return nil, err
		}
		finalCfg.applyFile(fileCfg)
	} else {
		slog.Debug("No config file path specified (PISPI_CONFIG_FILE), using defaults/env vars only.")
	}

	// Process environment variables again so they override file settings.
	if err := envconfig.Process(EnvPrefix, &finalCfg); err != nil {
		return nil, fmt.Errorf("failed to process overriding environment variables: %w", err)
	}
	finalCfg.ConfigFilePath = initialCfg.ConfigFilePath
	finalCfg.applyDefaults()

	return &finalCfg, nil
}

func readFileConfig(ctx context.Context, fs afero.Fs, path string) (FileConfig, error) {
	var (
		fileCfg  FileConfig
		yamlFile []byte
		err      error
	)

	if github.IsGitHubURL(path) {
		yamlFile, err = github.LoadGitHubConfig(ctx, path)
		if err != nil {
			return fileCfg, fmt.Errorf("failed to load config from GitHub '%s': %w", path, err)
		}
		slog.Info("Loaded configuration from GitHub.", "url", path)
	} else {
		yamlFile, err = afero.ReadFile(fs, path)
		if err != nil {
			return fileCfg, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
		slog.Info("Loaded configuration from file.", "path", path)
	}

	if err := yaml.Unmarshal(yamlFile, &fileCfg); err != nil {
		return fileCfg, fmt.Errorf("failed to unmarshal config file '%s': %w", path, err)
	}
	return fileCfg, nil
}

func (c *Config) applyFile(f FileConfig) {
	c.SpecSource = f.Spec.Source.URL
	c.SpecHeaders = f.Spec.Source.Headers
	c.SpecOutput = f.Spec.Output
	c.ModelsDir = f.Generated.ModelsDir
	c.CoreConfigFile = f.Generated.CoreConfig
	c.TypeExtension = f.Generated.Extension
	c.TargetBaseURL = f.Target.BaseURL
	c.TargetVersion = f.Target.Version
	c.Validate = f.Validate
	c.LogLevel = f.LogLevel
}

func (c *Config) applyDefaults() {
	if c.ModelsDir == "" {
		c.ModelsDir = DefaultModelsDir
	}
	if c.CoreConfigFile == "" {
		c.CoreConfigFile = DefaultCoreConfigFile
	}
	if c.TypeExtension == "" {
		c.TypeExtension = patcher.DefaultExtension
	}
	if c.TargetBaseURL == "" {
		c.TargetBaseURL = patcher.DefaultBaseURL
	}
	if c.TargetVersion == "" {
		c.TargetVersion = patcher.DefaultVersion
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}
