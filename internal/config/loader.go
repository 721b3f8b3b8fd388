package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads and parses configuration from a file.
func Load(configPath string) (*Config, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}

	// Apply environment variable interpolation before parsing so secrets
	// never need to live in the file itself.
	interpolated := interpolateEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(interpolated), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Discover finds the config file by checking standard locations.
// Priority order: $TASKBRIDGE_CONFIG, ./config.yaml, /etc/taskbridge/config.yaml
func Discover() (string, error) {
	if path := os.Getenv("TASKBRIDGE_CONFIG"); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if _, err := os.Stat("./config.yaml"); err == nil {
		return "./config.yaml", nil
	}

	systemPath := "/etc/taskbridge/config.yaml"
	if _, err := os.Stat(systemPath); err == nil {
		return systemPath, nil
	}

	return "", fmt.Errorf("no config found (checked: $TASKBRIDGE_CONFIG, ./config.yaml, /etc/taskbridge/config.yaml)")
}

// applyDefaults merges default values into cfg where not explicitly set.
func applyDefaults(cfg *Config) {
	defaults := Defaults()

	if cfg.Service.Name == "" {
		cfg.Service.Name = defaults.Service.Name
	}
	if cfg.Service.LogLevel == "" {
		cfg.Service.LogLevel = defaults.Service.LogLevel
	}
	if cfg.Service.LogFormat == "" {
		cfg.Service.LogFormat = defaults.Service.LogFormat
	}

	if cfg.Webhook.Listen == "" {
		cfg.Webhook.Listen = defaults.Webhook.Listen
	}
	if cfg.Webhook.Path == "" {
		cfg.Webhook.Path = defaults.Webhook.Path
	}
	if cfg.Webhook.SignatureHeader == "" {
		cfg.Webhook.SignatureHeader = defaults.Webhook.SignatureHeader
	}
	if cfg.Webhook.MaxBodySize == 0 {
		cfg.Webhook.MaxBodySize = defaults.Webhook.MaxBodySize
	}

	if cfg.Asana.BaseURL == "" {
		cfg.Asana.BaseURL = defaults.Asana.BaseURL
	}
	if cfg.Asana.Timeout == 0 {
		cfg.Asana.Timeout = defaults.Asana.Timeout
	}
}

// validate performs basic validation on the configuration.
func validate(cfg *Config) error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[cfg.Service.LogLevel] {
		return fmt.Errorf("service.log_level must be one of: debug, info, warn, error (got %q)", cfg.Service.LogLevel)
	}

	if cfg.Service.LogFormat != "json" && cfg.Service.LogFormat != "text" {
		return fmt.Errorf("service.log_format must be json or text (got %q)", cfg.Service.LogFormat)
	}

	if cfg.Webhook.Secret == "" {
		return fmt.Errorf("webhook.secret is required")
	}
	if err := checkResolved("webhook.secret", cfg.Webhook.Secret); err != nil {
		return err
	}
	if cfg.Webhook.MaxBodySize < 0 {
		return fmt.Errorf("webhook.max_body_size must be positive")
	}

	if cfg.Asana.Token == "" {
		return fmt.Errorf("asana.token is required")
	}
	if err := checkResolved("asana.token", cfg.Asana.Token); err != nil {
		return err
	}
	if cfg.Asana.Timeout <= 0 {
		return fmt.Errorf("asana.timeout must be positive")
	}

	sections := map[string]string{
		"board.not_started_gid": cfg.Board.NotStartedGID,
		"board.in_dev_gid":      cfg.Board.InDevGID,
		"board.in_pr_gid":       cfg.Board.InPRGID,
		"board.merged_done_gid": cfg.Board.MergedDoneGID,
	}
	for key, gid := range sections {
		if gid == "" {
			return fmt.Errorf("%s is required", key)
		}
	}

	return nil
}

// checkResolved rejects values that still contain ${VAR} placeholders,
// which means the environment variable was not set at load time.
func checkResolved(key, value string) error {
	if envVarPattern.MatchString(value) {
		matches := envVarPattern.FindStringSubmatch(value)
		if len(matches) > 1 {
			return fmt.Errorf("%s: environment variable ${%s} is not set", key, matches[1])
		}
		return fmt.Errorf("%s: unresolved environment variable", key)
	}
	return nil
}

// interpolateEnv replaces ${VAR} with environment variable values.
// Undefined variables are left as-is and caught by validation.
func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return match
	})
}
