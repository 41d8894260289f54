// Package config loads eip-board settings from YAML files and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spiffcs/eipboard/internal/constants"
	"gopkg.in/yaml.v3"
)

// Environment variables read by the board.
const (
	EnvToken      = "GITHUB_TOKEN"
	EnvRepository = "GITHUB_REPOSITORY"
)

// ErrMissingEnv is returned when a required environment variable is unset.
var ErrMissingEnv = errors.New("required environment variable not set")

// Config represents the application configuration
type Config struct {
	DefaultFormat   string  `yaml:"default_format,omitempty"`
	DocumentPattern string  `yaml:"document_pattern,omitempty"`
	Workers         int     `yaml:"workers,omitempty"`
	Roster          *Roster `yaml:"roster,omitempty"`
	Labels          *Labels `yaml:"labels,omitempty"`
}

// Roster locates the editor roster in the repository.
type Roster struct {
	Path string `yaml:"path,omitempty"`
	Ref  string `yaml:"ref,omitempty"`
}

// Labels controls label-based skipping. A pull request with the skip label
// is left off the board unless it also has the override label.
type Labels struct {
	Skip     *string `yaml:"skip,omitempty"`
	Override *string `yaml:"override,omitempty"`
}

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".eip-board"
	}
	return filepath.Join(configDir, "eip-board")
}

// ConfigPath returns the path to the global config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return ".eip-board.yaml"
}

// Load loads the global config, then merges any local .eip-board.yaml on top
// (local values take precedence).
func Load() (*Config, error) {
	return LoadFrom(ConfigPath(), LocalConfigPath())
}

// LoadFrom loads and merges the config files at globalPath and localPath.
// Missing files are ignored.
func LoadFrom(globalPath, localPath string) (*Config, error) {
	cfg := &Config{}

	global, err := readFile(globalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load global config file: %w", err)
	}
	if global != nil {
		cfg = global
	}

	local, err := readFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load local config file: %w", err)
	}
	if local != nil {
		cfg = mergeConfig(cfg, local)
	}

	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = "html"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// mergeConfig merges local config on top of global config.
// Local values take precedence; unset local values preserve global values.
func mergeConfig(global, local *Config) *Config {
	result := &Config{
		DefaultFormat:   global.DefaultFormat,
		DocumentPattern: global.DocumentPattern,
		Workers:         global.Workers,
	}

	if local.DefaultFormat != "" {
		result.DefaultFormat = local.DefaultFormat
	}
	if local.DocumentPattern != "" {
		result.DocumentPattern = local.DocumentPattern
	}
	if local.Workers != 0 {
		result.Workers = local.Workers
	}

	result.Roster = mergeRoster(global.Roster, local.Roster)
	result.Labels = mergeLabels(global.Labels, local.Labels)

	return result
}

func mergeRoster(global, local *Roster) *Roster {
	if global == nil && local == nil {
		return nil
	}
	result := &Roster{}
	if global != nil {
		*result = *global
	}
	if local != nil {
		if local.Path != "" {
			result.Path = local.Path
		}
		if local.Ref != "" {
			result.Ref = local.Ref
		}
	}
	return result
}

func mergeLabels(global, local *Labels) *Labels {
	if global == nil && local == nil {
		return nil
	}
	result := &Labels{}
	if global != nil {
		*result = *global
	}
	if local != nil {
		if local.Skip != nil {
			result.Skip = local.Skip
		}
		if local.Override != nil {
			result.Override = local.Override
		}
	}
	return result
}

// Validate checks values that would otherwise fail late in a run.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.DocumentPattern != "" {
		if _, err := regexp.Compile(c.DocumentPattern); err != nil {
			return fmt.Errorf("invalid document_pattern: %w", err)
		}
	}
	return nil
}

// RosterPath returns the configured roster path or the default.
func (c *Config) RosterPath() string {
	if c.Roster != nil && c.Roster.Path != "" {
		return c.Roster.Path
	}
	return constants.DefaultRosterPath
}

// RosterRef returns the configured roster ref or the default.
func (c *Config) RosterRef() string {
	if c.Roster != nil && c.Roster.Ref != "" {
		return c.Roster.Ref
	}
	return constants.DefaultRosterRef
}

// SkipLabel returns the configured skip label. An explicit empty string
// disables label skipping.
func (c *Config) SkipLabel() string {
	if c.Labels != nil && c.Labels.Skip != nil {
		return *c.Labels.Skip
	}
	return constants.DefaultSkipLabel
}

// OverrideLabel returns the configured override label.
func (c *Config) OverrideLabel() string {
	if c.Labels != nil && c.Labels.Override != nil {
		return *c.Labels.Override
	}
	return constants.DefaultOverrideLabel
}

// GetWorkers returns the number of concurrent evaluations, at least one.
func (c *Config) GetWorkers() int {
	if c.Workers < 1 {
		return constants.DefaultWorkers
	}
	return c.Workers
}

// GetGitHubToken returns the GitHub token from the GITHUB_TOKEN environment variable.
// Tokens are only read from the environment.
func (c *Config) GetGitHubToken() (string, error) {
	token := os.Getenv(EnvToken)
	if token == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, EnvToken)
	}
	return token, nil
}

// GetRepository returns the "owner/name" repository from the
// GITHUB_REPOSITORY environment variable.
func (c *Config) GetRepository() (string, error) {
	repo := os.Getenv(EnvRepository)
	if repo == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, EnvRepository)
	}
	return repo, nil
}

// DefaultConfig returns a fully populated config with all default values.
// This is useful for generating a complete config file template.
func DefaultConfig() *Config {
	skip := constants.DefaultSkipLabel
	override := constants.DefaultOverrideLabel

	return &Config{
		DefaultFormat:   "html",
		DocumentPattern: constants.DefaultDocumentPattern,
		Workers:         constants.DefaultWorkers,
		Roster: &Roster{
			Path: constants.DefaultRosterPath,
			Ref:  constants.DefaultRosterRef,
		},
		Labels: &Labels{
			Skip:     &skip,
			Override: &override,
		},
	}
}

// ToYAML returns the config as a YAML string
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// ConfigPathInfo contains information about config file paths
type ConfigPathInfo struct {
	GlobalPath   string
	GlobalExists bool
	LocalPath    string
	LocalExists  bool
}

// GetConfigPaths returns path info for both global and local configs
func GetConfigPaths() ConfigPathInfo {
	globalPath := ConfigPath()
	localPath := LocalConfigPath()

	absLocalPath, err := filepath.Abs(localPath)
	if err != nil {
		absLocalPath = localPath
	}

	_, globalErr := os.Stat(globalPath)
	_, localErr := os.Stat(localPath)

	return ConfigPathInfo{
		GlobalPath:   globalPath,
		GlobalExists: globalErr == nil,
		LocalPath:    absLocalPath,
		LocalExists:  localErr == nil,
	}
}

// MinimalConfig returns a minimal config template with comments
func MinimalConfig() string {
	return `# eip-board configuration file
# See: eip-board config defaults  (for all available options)

# Output format: html, markdown, json or table
default_format: html

# Evaluate several pull requests at once (optional)
# workers: 4

# Where the editor roster lives (optional)
# roster:
#   path: config/eip-editors.yml
#   ref: master

# Skip pull requests waiting on an outside review (optional)
# labels:
#   skip: a-review
#   override: e-review
`
}

// SaveTo writes content to a specific path, creating directories as needed
func SaveTo(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}
