package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, BackendFile, cfg.Store.Backend)
	assert.Equal(t, ".", cfg.Store.Dir)
	assert.Equal(t, 5*time.Second, cfg.Wait.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Wait.Interval)
	assert.Equal(t, 2*time.Minute, cfg.Wait.Verification)
	assert.Equal(t, 3*time.Minute, cfg.Wait.Profile)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeFile(t, "invite_agent.yaml", `
account: jane
input: profiles.csv
note: "Hi there"
store:
  backend: postgres
  database_url: postgres://localhost/invite_agent
wait:
  timeout: 10s
  interval: 500ms
locators:
  invite: 'button[aria-label*="Invite"]'
`)

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "jane", cfg.Account)
	assert.Equal(t, "profiles.csv", cfg.Input)
	assert.Equal(t, "Hi there", cfg.Note)
	assert.Equal(t, BackendPostgres, cfg.Store.Backend)
	assert.Equal(t, "postgres://localhost/invite_agent", cfg.Store.DatabaseURL)
	assert.Equal(t, 10*time.Second, cfg.Wait.Timeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Wait.Interval)
	assert.Equal(t, `button[aria-label*="Invite"]`, cfg.Locators["invite"])
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeFile(t, "config.json", `{"username": "file-user", "store": {"dir": "from-file"}}`)
	t.Setenv("INVITE_AGENT_USERNAME", "env-user")
	t.Setenv("INVITE_AGENT_PASSWORD", "secret")
	t.Setenv("INVITE_AGENT_STORE_DIR", "from-env")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "env-user", cfg.Username)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, "from-env", cfg.Store.Dir)
	assert.Equal(t, "env-user", cfg.AccountName())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(viper.New(), "/nonexistent/path/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")

	path := writeFile(t, "config.json", `{ invalid json }`)
	_, err = Load(viper.New(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func validConfig() *Config {
	return &Config{
		Account: "jane",
		Store:   StoreConfig{Backend: BackendFile, Dir: "."},
		Browser: BrowserConfig{ActionTimeout: time.Second},
		Wait:    WaitConfig{Timeout: time.Second, Interval: 100 * time.Millisecond, Verification: time.Minute, Profile: time.Minute},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Store.Backend = "redis" },
			wantErr: "'store.backend' must be one of [file postgres]",
		},
		{
			name:    "postgres without url",
			mutate:  func(c *Config) { c.Store.Backend = BackendPostgres },
			wantErr: "'store.database_url' is required when Backend is postgres",
		},
		{
			name:    "zero wait timeout",
			mutate:  func(c *Config) { c.Wait.Timeout = 0 },
			wantErr: "'wait.timeout' must be positive",
		},
		{
			name:    "zero profile timeout",
			mutate:  func(c *Config) { c.Wait.Profile = 0 },
			wantErr: "'wait.profile' must be positive",
		},
		{
			name:    "interval longer than timeout",
			mutate:  func(c *Config) { c.Wait.Interval = 2 * time.Second },
			wantErr: "'wait.interval'",
		},
		{
			name:    "note and note file",
			mutate:  func(c *Config) { c.Note = "hi"; c.NoteFile = "note.txt" },
			wantErr: "mutually exclusive",
		},
		{
			name:    "bad login url",
			mutate:  func(c *Config) { c.Browser.LoginURL = "not a url" },
			wantErr: "'browser.login_url'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRequireInput(t *testing.T) {
	cfg := validConfig()
	assert.ErrorContains(t, cfg.RequireInput(), "'input' is required")

	cfg.Input = "/nonexistent/profiles.csv"
	assert.ErrorContains(t, cfg.RequireInput(), "input file not found")

	cfg.Input = writeFile(t, "profiles.csv", "url\n")
	assert.NoError(t, cfg.RequireInput())
}

func TestRequireAccount(t *testing.T) {
	cfg := validConfig()
	cfg.Account = ""
	assert.Error(t, cfg.RequireAccount())

	cfg.Username = "jane@example.com"
	assert.NoError(t, cfg.RequireAccount())
	assert.Equal(t, "jane@example.com", cfg.AccountName())
}

func TestAttempt(t *testing.T) {
	cfg := validConfig()
	attempt, err := cfg.Attempt()
	require.NoError(t, err)
	assert.False(t, attempt.HasNote())

	cfg.Note = "Hi!"
	attempt, err = cfg.Attempt()
	require.NoError(t, err)
	require.True(t, attempt.HasNote())
	assert.Equal(t, "Hi!", *attempt.NoteText)

	cfg.Note = ""
	cfg.NoteFile = writeFile(t, "note.txt", "Great to connect.\n")
	attempt, err = cfg.Attempt()
	require.NoError(t, err)
	assert.Equal(t, "Great to connect.", *attempt.NoteText)

	cfg.NoteFile = "/nonexistent/note.txt"
	_, err = cfg.Attempt()
	assert.ErrorContains(t, err, "failed to read note file")
}
