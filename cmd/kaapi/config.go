package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jamesprial/go-ka-api-wrapper"
)

const (
	envUsername = "KA_USERNAME"
	envPassword = "KA_PASSWORD"
	envConfig   = "KA_CONFIG"

	defaultCLIUserAgent = "kaapi-cli/0.1"
	defaultTimeout      = 30 * time.Second
	configDirName       = "kaapi"
)

// rateLimitSettings mirrors kaapi.RateLimitConfig with YAML names.
type rateLimitSettings struct {
	RequestsPerMinute float64 `yaml:"requestsPerMinute" validate:"gte=0"`
	Burst             int     `yaml:"burst" validate:"gte=0"`
}

// cliConfig is the YAML configuration file of the command. Passwords are
// never read from it; they come from KA_PASSWORD only.
type cliConfig struct {
	BaseURL           string             `yaml:"baseURL,omitempty" validate:"omitempty,url"`
	UserAgent         string             `yaml:"userAgent,omitempty" validate:"omitempty,max=256"`
	Username          string             `yaml:"username,omitempty"`
	SessionFile       string             `yaml:"sessionFile,omitempty"`
	Timeout           time.Duration      `yaml:"timeout,omitempty" validate:"gte=0"`
	NotificationDepth int                `yaml:"notificationDepth,omitempty" validate:"gte=0,lte=100"`
	RateLimit         *rateLimitSettings `yaml:"rateLimit,omitempty"`
}

// credentials are resolved at login time and dropped right after.
type credentials struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

var cliValidator = validator.New(validator.WithRequiredStructEnabled())

// defaultConfigDir returns ~/.config/kaapi or the platform equivalent.
func defaultConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine user config directory: %w", err)
	}
	return filepath.Join(dir, configDirName), nil
}

// loadConfig reads the YAML file at path. A missing file is not an error when
// the path was not given explicitly; defaults are used instead.
func loadConfig(path string, explicit bool) (*cliConfig, error) {
	cfg := &cliConfig{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decodeConfig(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeConfig(data []byte, cfg *cliConfig) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (cfg *cliConfig) applyDefaults() {
	if cfg.BaseURL == "" {
		cfg.BaseURL = kaapi.DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultCLIUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.NotificationDepth == 0 {
		cfg.NotificationDepth = kaapi.DefaultNotificationDepth
	}
}

// Validate checks the configuration struct tags.
func (cfg *cliConfig) Validate() error {
	if err := cliValidator.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// rateLimit converts the YAML settings for the library.
func (cfg *cliConfig) rateLimit() *kaapi.RateLimitConfig {
	if cfg.RateLimit == nil {
		return nil
	}
	return &kaapi.RateLimitConfig{
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Burst:             cfg.RateLimit.Burst,
	}
}

// resolveCredentials takes the username from KA_USERNAME or the config file
// and the password from KA_PASSWORD.
func resolveCredentials(cfg *cliConfig, getenv func(string) string) (credentials, error) {
	creds := credentials{
		Username: getenv(envUsername),
		Password: getenv(envPassword),
	}
	if creds.Username == "" {
		creds.Username = cfg.Username
	}

	if err := cliValidator.Struct(creds); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "Password" {
			return credentials{}, fmt.Errorf("password is required: set %s", envPassword)
		}
		return credentials{}, fmt.Errorf("username is required: set %s or username in the config file", envUsername)
	}
	return creds, nil
}
