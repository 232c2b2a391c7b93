package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/prometheus/common/model"
	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultPollInterval = 5 * time.Second
	DefaultPollTimeout  = 10 * time.Second
	DefaultListenAddr   = ":8080"
)

// Config is the top-level configuration. Fields map 1:1 to
// config.example.yaml.
type Config struct {
	Poll     Poll      `yaml:"poll"`
	Listen   Listen    `yaml:"listen"`
	Topics   []Topic   `yaml:"topics"`
	Webhooks []Webhook `yaml:"webhooks"`
}

// Poll configures the upstream source and the polling schedule.
type Poll struct {
	// URL is the upstream JSON endpoint polled each tick.
	URL string `yaml:"url"`

	// Interval is the fixed polling period. Must be positive.
	Interval model.Duration `yaml:"interval"`

	// Timeout bounds one fetch. A hung upstream costs at most one tick.
	Timeout model.Duration `yaml:"timeout"`

	// Auth optionally injects an API key header into every fetch.
	Auth Auth `yaml:"auth"`

	// TLS holds upstream TLS dial options.
	TLS TLSConfig `yaml:"tls"`
}

// Auth configures an optional API key sent with every upstream request.
type Auth struct {
	// Header is the HTTP header name to send the key in.
	Header string `yaml:"header"`

	// KeyEnv is the name of the environment variable that holds the key value.
	KeyEnv string `yaml:"key_env"`
}

// Key returns the API key resolved from the environment. Returns empty
// string if KeyEnv is unset or the variable is not found.
func (a Auth) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// Enabled reports whether a key header should be injected.
func (a Auth) Enabled() bool {
	return a.Header != "" && a.KeyEnv != ""
}

// TLSConfig holds upstream TLS dial options.
type TLSConfig struct {
	// InsecureSkipVerify disables upstream certificate verification.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// Listen configures the client-facing HTTP/WebSocket listener.
type Listen struct {
	// Addr is the listen address (host:port).
	Addr string `yaml:"addr"`

	// CertFile and KeyFile enable TLS when both are set.
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// TLSEnabled reports whether the listener should serve TLS.
func (l Listen) TLSEnabled() bool {
	return l.CertFile != "" && l.KeyFile != ""
}

// Topic is one configured event topic.
type Topic struct {
	// Name is the topic identifier clients subscribe to.
	Name string `yaml:"name"`

	// Emit is the wire-level event label sent to clients. Defaults to Name.
	Emit string `yaml:"emit"`

	// Fields is the list of dot-separated paths whose change fires the topic.
	Fields []string `yaml:"fields"`
}

// Webhook defines one HTTP target that receives topic events as POSTs.
type Webhook struct {
	// URLEnv is the name of the environment variable that holds the target URL.
	URLEnv string `yaml:"url_env"`

	// Events limits delivery to the named topics. Empty means all topics.
	Events []string `yaml:"events"`
}

// URL returns the webhook URL resolved from the environment.
func (w Webhook) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// Load reads and parses the config file at path. Missing fields are filled
// with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Poll: Poll{
			Interval: model.Duration(DefaultPollInterval),
			Timeout:  model.Duration(DefaultPollTimeout),
		},
		Listen: Listen{
			Addr: DefaultListenAddr,
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	u, err := url.Parse(cfg.Poll.URL)
	if err != nil || cfg.Poll.URL == "" {
		return fmt.Errorf("poll.url %q is not a valid URL", cfg.Poll.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("poll.url scheme %q unknown: want http|https", u.Scheme)
	}
	if cfg.Poll.Interval <= 0 {
		return fmt.Errorf("poll.interval must be positive, got %v", cfg.Poll.Interval)
	}
	if cfg.Poll.Timeout < 0 {
		return fmt.Errorf("poll.timeout must not be negative")
	}
	if cfg.Listen.Addr == "" {
		return fmt.Errorf("listen.addr must not be empty")
	}
	if (cfg.Listen.CertFile == "") != (cfg.Listen.KeyFile == "") {
		return fmt.Errorf("listen: cert_file and key_file must be set together")
	}

	seen := make(map[string]bool, len(cfg.Topics))
	for _, t := range cfg.Topics {
		if t.Name == "" {
			return fmt.Errorf("topics: name must not be empty")
		}
		if seen[t.Name] {
			return fmt.Errorf("topics: duplicate name %q", t.Name)
		}
		seen[t.Name] = true
		if len(t.Fields) == 0 {
			return fmt.Errorf("topic %q: at least one field is required", t.Name)
		}
		for _, f := range t.Fields {
			if f == "" || strings.Contains("."+f+".", "..") {
				return fmt.Errorf("topic %q: field path %q is malformed", t.Name, f)
			}
		}
	}

	for _, w := range cfg.Webhooks {
		if w.URLEnv == "" {
			return fmt.Errorf("webhooks: url_env must not be empty")
		}
		for _, ev := range w.Events {
			if !seen[ev] {
				return fmt.Errorf("webhooks: event %q is not a configured topic", ev)
			}
		}
	}

	return nil
}
