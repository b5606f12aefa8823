// Package config loads and validates crosscheck run configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-crosscheck/pkg/compare"
	"github.com/dd0wney/cluso-crosscheck/pkg/dialect"
	"github.com/dd0wney/cluso-crosscheck/pkg/snapshot"
	"github.com/dd0wney/cluso-crosscheck/pkg/validation"
)

// Config is the full run configuration
type Config struct {
	Reference  EndpointConfig   `yaml:"reference"`
	Sample     EndpointConfig   `yaml:"sample"`
	Comparison ComparisonConfig `yaml:"comparison"`
	Transport  TransportConfig  `yaml:"transport"`
	Snapshot   SnapshotConfig   `yaml:"snapshot"`
	Output     OutputConfig     `yaml:"output"`
	History    HistoryConfig    `yaml:"history"`
	Log        LogConfig        `yaml:"log"`
}

// EndpointConfig describes one GraphQL API
type EndpointConfig struct {
	URL     string            `yaml:"url" validate:"omitempty,url"`
	Dialect string            `yaml:"dialect"`
	Headers map[string]string `yaml:"headers"`
	// Token is sent as a bearer token. ${VAR} references are expanded.
	Token string    `yaml:"token"`
	JWT   JWTConfig `yaml:"jwt"`
}

// JWTConfig mints HS256 bearer tokens when Secret is set
type JWTConfig struct {
	Secret  string        `yaml:"secret"`
	Subject string        `yaml:"subject"`
	TTL     time.Duration `yaml:"ttl" validate:"gte=0"`
}

// ComparisonConfig controls the data checks
type ComparisonConfig struct {
	NumRecords              int      `yaml:"num_records" validate:"min=1,max=1000"`
	TemporalFields          []string `yaml:"temporal_fields" validate:"dive,required"`
	TemporalIgnoreIDs       bool     `yaml:"temporal_ignore_ids"`
	NonTemporalLowerCaseIDs bool     `yaml:"non_temporal_lower_case_ids"`
	// OrderedRecords sends temporal entities through the ordered check;
	// otherwise every safe entity goes through cross-inclusion
	OrderedRecords   bool   `yaml:"ordered_records"`
	OnTransportError string `yaml:"on_transport_error" validate:"omitempty,oneof=abort flag"`
}

// TransportConfig bounds endpoint traffic
type TransportConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rate_limit"`
	Burst     int           `yaml:"burst" validate:"gte=0"`
}

// SnapshotConfig records or replays endpoint traffic. Locations are file
// paths or s3://bucket/key URLs. A non-empty Passphrase seals the file.
type SnapshotConfig struct {
	Record     string             `yaml:"record"`
	Replay     string             `yaml:"replay"`
	Passphrase string             `yaml:"passphrase"`
	S3         snapshot.S3Options `yaml:"s3"`
}

// OutputConfig selects reporters
type OutputConfig struct {
	Format       string `yaml:"format" validate:"oneof=text json"`
	Color        bool   `yaml:"color"`
	MetricsFile  string `yaml:"metrics_file"`
	FailOnIssues bool   `yaml:"fail_on_issues"`
}

// HistoryConfig stores run summaries in PostgreSQL when DatabaseURL is set
type HistoryConfig struct {
	DatabaseURL string `yaml:"database_url"`
}

// LogConfig configures the stderr logger
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=json text"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Comparison: ComparisonConfig{
			NumRecords:       10,
			TemporalFields:   append([]string(nil), compare.DefaultTemporalFields...),
			OnTransportError: string(compare.AbortOnError),
		},
		Transport: TransportConfig{
			Timeout: 60 * time.Second,
			Burst:   1,
		},
		Output: OutputConfig{Format: "text"},
		Log:    LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads a YAML file over the defaults. An empty path returns Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.expandSecrets()
	return cfg, nil
}

// ApplyEnv overrides settings from the environment
func (c *Config) ApplyEnv() {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("CROSSCHECK_DATABASE_URL"); v != "" {
		c.History.DatabaseURL = v
	}
	if v := os.Getenv("CROSSCHECK_SNAPSHOT_PASSPHRASE"); v != "" {
		c.Snapshot.Passphrase = v
	}
}

func (c *Config) expandSecrets() {
	for _, ep := range []*EndpointConfig{&c.Reference, &c.Sample} {
		ep.Token = os.ExpandEnv(ep.Token)
		ep.JWT.Secret = os.ExpandEnv(ep.JWT.Secret)
		for k, v := range ep.Headers {
			ep.Headers[k] = os.ExpandEnv(v)
		}
	}
	c.History.DatabaseURL = os.ExpandEnv(c.History.DatabaseURL)
	c.Snapshot.Passphrase = os.ExpandEnv(c.Snapshot.Passphrase)
	c.Snapshot.S3.AccessKeyID = os.ExpandEnv(c.Snapshot.S3.AccessKeyID)
	c.Snapshot.S3.SecretAccessKey = os.ExpandEnv(c.Snapshot.S3.SecretAccessKey)
}

// Validate checks the configuration before any endpoint is contacted
func (c *Config) Validate() error {
	var errs []error
	if err := validation.Struct(c); err != nil {
		errs = append(errs, err)
	}

	for _, ep := range []struct {
		name string
		cfg  EndpointConfig
	}{{"reference", c.Reference}, {"sample", c.Sample}} {
		cv := validation.NewConfigValidator(ep.name).
			Required("url", ep.cfg.URL).
			When(ep.cfg.URL != "", func(cv *validation.ConfigValidator) {
				cv.HTTPURL("url", ep.cfg.URL)
			}).
			Custom("dialect", func() error {
				_, err := dialect.Parse(ep.cfg.Dialect)
				return err
			}).
			Exclusive("token", "token", "jwt.secret", ep.cfg.Token != "", ep.cfg.JWT.Secret != "")
		if err := cv.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	cv := validation.NewConfigValidator("config").
		RangeDuration("transport.timeout", c.Transport.Timeout, time.Second, time.Hour).
		NonNegativeFloat("transport.rate_limit", c.Transport.RateLimit).
		Exclusive("snapshot", "record", "replay", c.Snapshot.Record != "", c.Snapshot.Replay != "").
		Location("snapshot.record", c.Snapshot.Record).
		Location("snapshot.replay", c.Snapshot.Replay)
	if err := cv.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ErrorPolicy returns the parsed transport error policy
func (c *Config) ErrorPolicy() compare.ErrorPolicy {
	p, err := compare.ParseErrorPolicy(c.Comparison.OnTransportError)
	if err != nil {
		return compare.AbortOnError
	}
	return p
}
