package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Slack configuration. The app-level token comes from SlackAppToken, the S3 token
	// bucket, or <TokenDir>/<TokenName>.token, in that order.
	SlackAppToken string `mapstructure:"slack_app_token"`
	SlackAPIURL   string `mapstructure:"slack_api_url"`

	// Token storage
	TokenName       string `mapstructure:"token_name"`
	TokenDir        string `mapstructure:"token_dir"`
	TokenBucketName string `mapstructure:"token_bucket_name"`
	TokenEncryptKey string `mapstructure:"token_encrypt_key"` // base64, 32 bytes decoded

	// Socket timeouts
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
	ReadTimeout      time.Duration `mapstructure:"read_timeout"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	CallbackTimeout  time.Duration `mapstructure:"callback_timeout"`

	// Re-handshake after the session ends
	Reconnect             bool          `mapstructure:"reconnect"`
	ReconnectInitialDelay time.Duration `mapstructure:"reconnect_initial_delay"`
	ReconnectMaxDelay     time.Duration `mapstructure:"reconnect_max_delay"`

	// Downstream bus subjects
	ProvisionSubject string `mapstructure:"provision_subject"`
	ApprovalSubject  string `mapstructure:"approval_subject"`

	// Segment choices offered by /addsegment
	Segments []string `mapstructure:"segments"`

	// Admin HTTP server, empty disables it
	AdminAddr string `mapstructure:"admin_addr"`

	// Log configuration
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

var (
	// instance holds the singleton config instance
	instance *Config
)

// Get returns the singleton config instance
func Get() *Config {
	if instance == nil {
		panic("config not initialized")
	}
	return instance
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("slack_app_token", "")
	v.SetDefault("slack_api_url", "https://slack.com/api/")
	v.SetDefault("token_name", "slack")
	v.SetDefault("token_dir", "tokens")
	v.SetDefault("token_bucket_name", "")
	v.SetDefault("token_encrypt_key", "")
	v.SetDefault("handshake_timeout", 10*time.Second)
	v.SetDefault("read_timeout", 2*time.Minute)
	v.SetDefault("write_timeout", 10*time.Second)
	v.SetDefault("callback_timeout", 10*time.Second)
	v.SetDefault("reconnect", false)
	v.SetDefault("reconnect_initial_delay", time.Second)
	v.SetDefault("reconnect_max_delay", 30*time.Second)
	v.SetDefault("provision_subject", "netops.provision")
	v.SetDefault("approval_subject", "netops.approval")
	v.SetDefault("segments", []string{"East", "West", "Central"})
	v.SetDefault("admin_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
}

// Load reads configuration from the optional YAML file at path and the environment.
// Environment variables use the upper-cased key, e.g. SLACK_APP_TOKEN or READ_TIMEOUT.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		var msgs []string
		for _, err := range errs {
			msgs = append(msgs, err.Error())
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}

	// Store the instance
	instance = cfg

	return cfg, nil
}

// Validate returns every problem found in the configuration.
func (c *Config) Validate() []error {
	var errs []error

	if c.SlackAppToken == "" && c.TokenBucketName == "" && c.TokenDir == "" {
		errs = append(errs, errors.New("one of slack_app_token, token_bucket_name or token_dir is required"))
	}
	if c.SlackAppToken == "" && c.TokenName == "" {
		errs = append(errs, errors.New("token_name is required when slack_app_token is not set"))
	}
	if u, err := url.Parse(c.SlackAPIURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("slack_api_url %q is not an absolute URL", c.SlackAPIURL))
	} else if !strings.HasSuffix(c.SlackAPIURL, "/") {
		errs = append(errs, fmt.Errorf("slack_api_url %q must end with /", c.SlackAPIURL))
	}
	if c.TokenBucketName != "" {
		key, err := base64.StdEncoding.DecodeString(c.TokenEncryptKey)
		if err != nil || len(key) != 32 {
			errs = append(errs, errors.New("token_encrypt_key must be 32 base64-encoded bytes when token_bucket_name is set"))
		}
	}
	for name, d := range map[string]time.Duration{
		"handshake_timeout": c.HandshakeTimeout,
		"read_timeout":      c.ReadTimeout,
		"write_timeout":     c.WriteTimeout,
		"callback_timeout":  c.CallbackTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if c.Reconnect && c.ReconnectInitialDelay <= 0 {
		errs = append(errs, errors.New("reconnect_initial_delay must be positive when reconnect is enabled"))
	}
	if c.ProvisionSubject == "" || c.ApprovalSubject == "" {
		errs = append(errs, errors.New("provision_subject and approval_subject are required"))
	}
	if len(c.Segments) == 0 {
		errs = append(errs, errors.New("at least one segment is required"))
	}

	return errs
}

// EncryptKey returns the decoded token encryption key.
func (c *Config) EncryptKey() ([]byte, error) {
	return base64.StdEncoding.DecodeString(c.TokenEncryptKey)
}
