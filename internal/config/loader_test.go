package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const minimalConfig = `
webhook:
  secret: "hush"
asana:
  token: "tok"
board:
  not_started_gid: "100"
  in_dev_gid: "200"
  in_pr_gid: "300"
  merged_done_gid: "400"
`

func TestLoad_MinimalWithDefaults(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "taskbridge", cfg.Service.Name)
	assert.Equal(t, "info", cfg.Service.LogLevel)
	assert.Equal(t, "json", cfg.Service.LogFormat)
	assert.Equal(t, "127.0.0.1:8080", cfg.Webhook.Listen)
	assert.Equal(t, "/webhook/github", cfg.Webhook.Path)
	assert.Equal(t, "X-Hub-Signature", cfg.Webhook.SignatureHeader)
	assert.Equal(t, int64(1048576), cfg.Webhook.MaxBodySize)
	assert.Equal(t, "https://app.asana.com/api/1.0", cfg.Asana.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Asana.Timeout.Std())
	assert.Equal(t, "hush", cfg.Webhook.Secret)
	assert.Equal(t, "300", cfg.Board.InPRGID)
	assert.Empty(t, cfg.State.Path)
}

func TestLoad_ExplicitValuesOverrideDefaults(t *testing.T) {
	path := writeConfig(t, `
service:
  name: "bridge-test"
  log_level: "debug"
  log_format: "text"
  debug_events: true
webhook:
  listen: "0.0.0.0:9000"
  path: "/hooks/gh"
  secret: "hush"
  signature_header: "X-Signature"
  max_body_size: 2048
asana:
  base_url: "http://localhost:8081"
  token: "tok"
  timeout: 5s
board:
  not_started_gid: "100"
  in_dev_gid: "200"
  in_pr_gid: "300"
  merged_done_gid: "400"
state:
  path: "/tmp/journal.db"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "bridge-test", cfg.Service.Name)
	assert.Equal(t, "debug", cfg.Service.LogLevel)
	assert.True(t, cfg.Service.DebugEvents)
	assert.Equal(t, "0.0.0.0:9000", cfg.Webhook.Listen)
	assert.Equal(t, "/hooks/gh", cfg.Webhook.Path)
	assert.Equal(t, "X-Signature", cfg.Webhook.SignatureHeader)
	assert.Equal(t, int64(2048), cfg.Webhook.MaxBodySize)
	assert.Equal(t, "http://localhost:8081", cfg.Asana.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Asana.Timeout.Std())
	assert.Equal(t, "/tmp/journal.db", cfg.State.Path)
}

func TestLoad_EnvInterpolation(t *testing.T) {
	t.Setenv("TB_TEST_SECRET", "from-env")
	t.Setenv("TB_TEST_TOKEN", "token-from-env")

	path := writeConfig(t, `
webhook:
  secret: "${TB_TEST_SECRET}"
asana:
  token: "${TB_TEST_TOKEN}"
board:
  not_started_gid: "100"
  in_dev_gid: "200"
  in_pr_gid: "300"
  merged_done_gid: "400"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Webhook.Secret)
	assert.Equal(t, "token-from-env", cfg.Asana.Token)
}

func TestLoad_UnresolvedEnvVarFails(t *testing.T) {
	path := writeConfig(t, `
webhook:
  secret: "${TB_DEFINITELY_NOT_SET}"
asana:
  token: "tok"
board:
  not_started_gid: "100"
  in_dev_gid: "200"
  in_pr_gid: "300"
  merged_done_gid: "400"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TB_DEFINITELY_NOT_SET")
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "missing secret",
			yaml: `
asana:
  token: "tok"
board:
  not_started_gid: "100"
  in_dev_gid: "200"
  in_pr_gid: "300"
  merged_done_gid: "400"
`,
			wantErr: "webhook.secret is required",
		},
		{
			name: "missing token",
			yaml: `
webhook:
  secret: "hush"
board:
  not_started_gid: "100"
  in_dev_gid: "200"
  in_pr_gid: "300"
  merged_done_gid: "400"
`,
			wantErr: "asana.token is required",
		},
		{
			name: "missing section gid",
			yaml: `
webhook:
  secret: "hush"
asana:
  token: "tok"
board:
  not_started_gid: "100"
  in_dev_gid: "200"
  in_pr_gid: "300"
`,
			wantErr: "board.merged_done_gid is required",
		},
		{
			name: "bad log level",
			yaml: `
service:
  log_level: "verbose"
webhook:
  secret: "hush"
asana:
  token: "tok"
board:
  not_started_gid: "100"
  in_dev_gid: "200"
  in_pr_gid: "300"
  merged_done_gid: "400"
`,
			wantErr: "service.log_level",
		},
		{
			name: "bad log format",
			yaml: `
service:
  log_format: "xml"
webhook:
  secret: "hush"
asana:
  token: "tok"
board:
  not_started_gid: "100"
  in_dev_gid: "200"
  in_pr_gid: "300"
  merged_done_gid: "400"
`,
			wantErr: "service.log_format",
		},
		{
			name: "negative timeout",
			yaml: `
webhook:
  secret: "hush"
asana:
  token: "tok"
  timeout: -5s
board:
  not_started_gid: "100"
  in_dev_gid: "200"
  in_pr_gid: "300"
  merged_done_gid: "400"
`,
			wantErr: "asana.timeout must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.yaml)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "webhook: [not: valid")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestDiscover_EnvOverride(t *testing.T) {
	path := writeConfig(t, minimalConfig)
	t.Setenv("TASKBRIDGE_CONFIG", path)

	found, err := Discover()
	require.NoError(t, err)
	assert.Equal(t, path, found)
}
