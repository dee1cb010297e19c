// Package config resolves the run configuration from a .env file, the
// process environment and command-line overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/dm/ecemon/internal/client"
	"github.com/dm/ecemon/internal/engine"
	"github.com/dm/ecemon/internal/logging"
	"github.com/dm/ecemon/internal/persist"
)

var (
	// ErrMissingHost is returned when no control-plane URL is configured.
	ErrMissingHost = errors.New("ECE host is required (set ECE_HOST or --host)")
	// ErrMissingCredentials is returned when neither an API key nor a complete
	// username/password pair is configured.
	ErrMissingCredentials = errors.New("credentials are required: set ECE_API_KEY, or both ECE_USERNAME and ECE_PASSWORD")
)

// Settings holds raw values as read from the environment. CLI flags are
// applied on top before Resolve is called.
type Settings struct {
	Host       string `env:"ECE_HOST"`
	LegacyHost string `env:"HOST"`

	APIKey       string `env:"ECE_API_KEY"`
	LegacyAPIKey string `env:"API_KEY"`
	Username     string `env:"ECE_USERNAME"`
	Password     string `env:"ECE_PASSWORD"`

	OutputFile   string        `env:"OUTPUT_FILE" envDefault:"ece_metrics.json"`
	OutputFormat string        `env:"OUTPUT_FORMAT" envDefault:"json"`
	VerifyTLS    bool          `env:"VERIFY_SSL" envDefault:"false"`
	Filter       string        `env:"FILTER_NAME" envDefault:"*"`
	Timeout      time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	MaxRPS       float64       `env:"MAX_REQUESTS_PER_SECOND" envDefault:"0"`
	MetricsFile  string        `env:"METRICS_FILE"`
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`

	// Browse has no environment variable; it is set from --browse.
	Browse bool
}

// LoadDotEnv loads KEY=value pairs from path into the process environment.
// Variables already set are not overridden, and a missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// FromEnv parses Settings from the process environment, applying defaults.
func FromEnv() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse environment: %w", err)
	}
	return s, nil
}

// Config is the validated configuration of one run.
type Config struct {
	BaseURL      string
	Credentials  client.Credentials
	OutputFile   string
	OutputFormat persist.Format
	VerifyTLS    bool
	Filter       engine.Filter
	Timeout      time.Duration
	MaxRPS       float64
	MetricsFile  string
	LogLevel     zapcore.Level
	Browse       bool
}

// Resolve validates s and builds a Config. Credentials are chosen once:
// an API key wins; otherwise username and password are taken field by field
// from explicit settings, then from the host URL's userinfo.
func Resolve(s Settings) (Config, error) {
	host := firstNonEmpty(s.Host, s.LegacyHost)
	if host == "" {
		return Config{}, ErrMissingHost
	}
	baseURL, uriUser, uriPass, err := parseHostURI(host)
	if err != nil {
		return Config{}, err
	}

	creds, err := resolveCredentials(
		firstNonEmpty(s.APIKey, s.LegacyAPIKey),
		s.Username, s.Password,
		uriUser, uriPass,
	)
	if err != nil {
		return Config{}, err
	}

	format, err := persist.ParseFormat(s.OutputFormat)
	if err != nil {
		return Config{}, err
	}
	filter, err := engine.CompileFilter(s.Filter)
	if err != nil {
		return Config{}, err
	}
	level, err := logging.ParseLevel(s.LogLevel)
	if err != nil {
		return Config{}, err
	}
	if s.Timeout < 0 {
		return Config{}, fmt.Errorf("request timeout must not be negative, got %s", s.Timeout)
	}
	if s.MaxRPS < 0 {
		return Config{}, fmt.Errorf("max requests per second must not be negative, got %g", s.MaxRPS)
	}

	outputFile := s.OutputFile
	if outputFile == "" {
		outputFile = "ece_metrics.json"
	}

	return Config{
		BaseURL:      baseURL,
		Credentials:  creds,
		OutputFile:   outputFile,
		OutputFormat: format,
		VerifyTLS:    s.VerifyTLS,
		Filter:       filter,
		Timeout:      s.Timeout,
		MaxRPS:       s.MaxRPS,
		MetricsFile:  s.MetricsFile,
		LogLevel:     level,
		Browse:       s.Browse,
	}, nil
}

// parseHostURI parses the control-plane URL and returns the base URL (without
// credentials or trailing slash), username, and password. Returns an error if
// the URI is invalid or has an unsupported scheme.
func parseHostURI(raw string) (baseURL, username, password string, err error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", "", fmt.Errorf("invalid host %q: %w", raw, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", "", "", fmt.Errorf("unsupported scheme %q in host (must be http or https)", u.Scheme)
	}

	if u.Hostname() == "" {
		return "", "", "", fmt.Errorf("invalid host %q: hostname is required", raw)
	}

	if u.User != nil {
		username = u.User.Username()
		password, _ = u.User.Password()
		u.User = nil
	}

	return strings.TrimRight(u.String(), "/"), username, password, nil
}

// resolveCredentials picks the credential variant for the run.
func resolveCredentials(apiKey, user, pass, uriUser, uriPass string) (client.Credentials, error) {
	if apiKey != "" {
		return client.APIKeyCredential{Key: apiKey}, nil
	}
	user = firstNonEmpty(user, uriUser)
	pass = firstNonEmpty(pass, uriPass)
	if user == "" || pass == "" {
		return nil, ErrMissingCredentials
	}
	return client.BasicCredential{Username: user, Password: pass}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
