// Package config provides configuration loading and validation for the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/jonathan/invite-agent/internal/browser"
	"github.com/jonathan/invite-agent/internal/logging"
	"github.com/jonathan/invite-agent/internal/types"
)

const (
	// EnvPrefix prefixes every environment variable, e.g. INVITE_AGENT_PASSWORD.
	EnvPrefix = "INVITE_AGENT"
	// DefaultConfigName is looked up in the working directory when no --config is given.
	DefaultConfigName = "invite_agent"

	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config is the merged configuration: defaults, optional config file,
// INVITE_AGENT_* environment variables and bound CLI flags, in rising priority.
type Config struct {
	// Account scopes the resume store; defaults to Username
	Account  string `mapstructure:"account"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	Input       string `mapstructure:"input"`
	Note        string `mapstructure:"note"`
	NoteFile    string `mapstructure:"note_file"`
	RetryFailed bool   `mapstructure:"retry_failed"`
	Yes         bool   `mapstructure:"yes"`

	Store       StoreConfig       `mapstructure:"store"`
	Browser     BrowserConfig     `mapstructure:"browser"`
	Wait        WaitConfig        `mapstructure:"wait"`
	Locators    map[string]string `mapstructure:"locators"`
	Log         logging.Config    `mapstructure:"log"`
	MetricsFile string            `mapstructure:"metrics_file"`
}

// StoreConfig selects the resume store backend.
type StoreConfig struct {
	Backend     string `mapstructure:"backend" validate:"oneof=file postgres"`
	Dir         string `mapstructure:"dir" validate:"required_if=Backend file"`
	DatabaseURL string `mapstructure:"database_url" validate:"required_if=Backend postgres"`
}

// BrowserConfig configures the page driver.
type BrowserConfig struct {
	Headless      bool          `mapstructure:"headless"`
	UserDataDir   string        `mapstructure:"user_data_dir"`
	ReplayDir     string        `mapstructure:"replay_dir"`
	LoginURL      string        `mapstructure:"login_url" validate:"omitempty,url"`
	ActionTimeout time.Duration `mapstructure:"action_timeout" validate:"gt=0"`
}

// WaitConfig bounds every wait for a page element.
type WaitConfig struct {
	Timeout      time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Interval     time.Duration `mapstructure:"interval" validate:"gt=0,ltefield=Timeout"`
	Verification time.Duration `mapstructure:"verification" validate:"gt=0"`
	SettleDelay  time.Duration `mapstructure:"settle_delay" validate:"gte=0"`
	// Profile bounds all browser work for one profile, including after a stop request.
	Profile time.Duration `mapstructure:"profile" validate:"gt=0"`
}

// Options returns the element wait options.
func (w WaitConfig) Options() browser.WaitOptions {
	return browser.WaitOptions{Timeout: w.Timeout, Interval: w.Interval}
}

// SetDefaults registers every key so environment variables resolve on Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("account", "")
	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("input", "")
	v.SetDefault("note", "")
	v.SetDefault("note_file", "")
	v.SetDefault("retry_failed", false)
	v.SetDefault("yes", false)

	v.SetDefault("store.backend", BackendFile)
	v.SetDefault("store.dir", ".")
	v.SetDefault("store.database_url", "")

	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.user_data_dir", "")
	v.SetDefault("browser.replay_dir", "")
	v.SetDefault("browser.login_url", "")
	v.SetDefault("browser.action_timeout", 30*time.Second)

	v.SetDefault("wait.timeout", browser.DefaultWaitTimeout)
	v.SetDefault("wait.interval", browser.DefaultPollInterval)
	v.SetDefault("wait.verification", 2*time.Minute)
	v.SetDefault("wait.settle_delay", time.Duration(0))
	v.SetDefault("wait.profile", 3*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("metrics_file", "")
}

// Load reads configuration into v and decodes it. An explicit path must exist;
// without one, invite_agent.{yaml,json,toml} in the working directory is optional.
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName(DefaultConfigName)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return val
}

// Validate checks value ranges and cross-field rules. Per-command
// requirements such as the input list are checked by Require* helpers.
func (c *Config) Validate() error {
	if c.Note != "" && c.NoteFile != "" {
		return fmt.Errorf("config error: 'note' and 'note_file' are mutually exclusive")
	}

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, describe(fe))
			}
			return fmt.Errorf("config error: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required_if":
		return fmt.Sprintf("'%s' is required when %s", field, strings.Replace(fe.Param(), " ", " is ", 1))
	case "oneof":
		return fmt.Sprintf("'%s' must be one of [%s]", field, fe.Param())
	case "gt", "gte":
		return fmt.Sprintf("'%s' must be positive", field)
	default:
		return fmt.Sprintf("'%s' failed %s validation", field, fe.Tag())
	}
}

// RequireInput fails when no profile list was configured.
func (c *Config) RequireInput() error {
	if c.Input == "" {
		return fmt.Errorf("config error: 'input' is required")
	}
	if _, err := os.Stat(c.Input); err != nil {
		return fmt.Errorf("config error: input file not found: %s", c.Input)
	}
	return nil
}

// RequireAccount fails when neither account nor username was configured.
func (c *Config) RequireAccount() error {
	if c.AccountName() == "" {
		return fmt.Errorf("config error: 'account' or 'username' is required")
	}
	return nil
}

// AccountName is the resume store scope.
func (c *Config) AccountName() string {
	if c.Account != "" {
		return c.Account
	}
	return c.Username
}

// Attempt builds the invitation from note or note_file.
func (c *Config) Attempt() (types.InviteAttempt, error) {
	switch {
	case c.NoteFile != "":
		data, err := os.ReadFile(c.NoteFile)
		if err != nil {
			return types.InviteAttempt{}, fmt.Errorf("failed to read note file %s: %w", c.NoteFile, err)
		}
		note := strings.TrimSpace(string(data))
		return types.InviteAttempt{NoteText: &note}, nil
	case c.Note != "":
		note := c.Note
		return types.InviteAttempt{NoteText: &note}, nil
	default:
		return types.InviteAttempt{}, nil
	}
}
