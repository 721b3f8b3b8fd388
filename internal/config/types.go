package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML accepts "30s" style strings.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var raw string
	if err := n.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped standard library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the complete taskbridge configuration.
type Config struct {
	Service ServiceConfig `yaml:"service"`
	Webhook WebhookConfig `yaml:"webhook"`
	Asana   AsanaConfig   `yaml:"asana"`
	Board   BoardConfig   `yaml:"board"`
	State   StateConfig   `yaml:"state,omitempty"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name      string `yaml:"name"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	// DebugEvents logs full decoded webhook events at debug level.
	// Diagnostic only, no effect on control flow.
	DebugEvents bool `yaml:"debug_events,omitempty"`
}

// WebhookConfig defines the inbound webhook endpoint settings.
type WebhookConfig struct {
	Listen string `yaml:"listen"`
	Path   string `yaml:"path"`

	// Secret is the shared HMAC secret GitHub signs deliveries with.
	Secret string `yaml:"secret"`

	// SignatureHeader carries the "sha1=<hex>" digest.
	SignatureHeader string `yaml:"signature_header"`

	MaxBodySize int64 `yaml:"max_body_size,omitempty"`
}

// AsanaConfig defines the outbound Asana API settings.
type AsanaConfig struct {
	BaseURL string   `yaml:"base_url"`
	Token   string   `yaml:"token"`
	Timeout Duration `yaml:"timeout"`
}

// BoardConfig holds the four fixed section ids of the project board.
// The project id itself comes from the Asana URL in each PR body.
type BoardConfig struct {
	NotStartedGID string `yaml:"not_started_gid"`
	InDevGID      string `yaml:"in_dev_gid"`
	InPRGID       string `yaml:"in_pr_gid"`
	MergedDoneGID string `yaml:"merged_done_gid"`
}

// StateConfig defines delivery journal storage settings.
type StateConfig struct {
	// Path to the sqlite journal. Empty disables journaling.
	Path string `yaml:"path,omitempty"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:      "taskbridge",
			LogLevel:  "info",
			LogFormat: "json",
		},
		Webhook: WebhookConfig{
			Listen:          "127.0.0.1:8080",
			Path:            "/webhook/github",
			SignatureHeader: "X-Hub-Signature",
			MaxBodySize:     1048576, // 1 MB
		},
		Asana: AsanaConfig{
			BaseURL: "https://app.asana.com/api/1.0",
			Timeout: Duration(30 * time.Second),
		},
	}
}
