// Package config provides YAML configuration loading and validation for
// benchmark runs. It handles .env loading, environment variable expansion,
// default values, and sanity checks on the node endpoint and run shape.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/dmagro/klay-bench/internal/rpc"
)

// Defaults for a run when neither the config file nor flags set a value.
const (
	DefaultEndpoint    = "http://localhost:8551"
	DefaultWorkers     = 10
	DefaultIterations  = 100
	DefaultReportEvery = 100
	DefaultSelector    = "latest"
	DefaultAggregator  = AggregatorMutex
	DefaultLogLevel    = "info"
)

// Aggregator modes.
const (
	AggregatorMutex   = "mutex"
	AggregatorChannel = "channel"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	Endpoint string `yaml:"endpoint"` // node JSON-RPC URL (supports ${VAR} expansion)

	Workers     int           `yaml:"workers"`
	Iterations  uint64        `yaml:"iterations"` // per worker; 0 = run until interrupted
	Delay       time.Duration `yaml:"delay"`      // pause after each call
	ReportEvery uint64        `yaml:"report_every"`

	Selector            string `yaml:"selector"` // latest, earliest, pending, 0x hex or decimal
	IncludeTransactions bool   `yaml:"include_transactions"`

	Timeout    time.Duration `yaml:"timeout"`    // per call; 0 = no timeout
	RateLimit  float64       `yaml:"rate_limit"` // calls/sec across all workers; 0 = unpaced
	Aggregator string        `yaml:"aggregator"` // mutex or channel

	LogLevel    string `yaml:"log_level"`
	MetricsAddr string `yaml:"metrics_addr"` // e.g. ":9100"; empty disables the metrics server
}

// Default returns a configuration with every default applied.
func Default() *Config {
	return &Config{
		Endpoint:    DefaultEndpoint,
		Workers:     DefaultWorkers,
		Iterations:  DefaultIterations,
		ReportEvery: DefaultReportEvery,
		Selector:    DefaultSelector,
		Aggregator:  DefaultAggregator,
		LogLevel:    DefaultLogLevel,
	}
}

// Validate checks the configuration and fills in defaults for fields left
// empty. It warns on stderr about suspicious but legal values.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.Selector == "" {
		c.Selector = DefaultSelector
	}
	if c.Aggregator == "" {
		c.Aggregator = DefaultAggregator
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}

	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("endpoint: invalid url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("endpoint: invalid url (missing scheme or host)")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint: invalid url scheme %q (expected http or https)", u.Scheme)
	}

	if c.Workers <= 0 {
		return fmt.Errorf("workers must be > 0")
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay must be >= 0")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must be >= 0")
	}
	if _, err := rpc.ParseBlockArg(c.Selector); err != nil {
		return fmt.Errorf("selector: %w", err)
	}
	if c.Aggregator != AggregatorMutex && c.Aggregator != AggregatorChannel {
		return fmt.Errorf("aggregator must be %q or %q, got %q", AggregatorMutex, AggregatorChannel, c.Aggregator)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	if c.Iterations == 0 {
		fmt.Fprintf(os.Stderr, "Warning: iterations is 0; workers run until interrupted\n")
	}
	if c.ReportEvery == 0 {
		fmt.Fprintf(os.Stderr, "Warning: report_every is 0; periodic reports are disabled\n")
	}
	if c.Timeout > 0 && c.Timeout < 100*time.Millisecond {
		fmt.Fprintf(os.Stderr, "Warning: timeout is very low (%s); most calls may fail\n", c.Timeout)
	}

	return nil
}

// BlockNumber returns the parsed selector. Call Validate first.
func (c *Config) BlockNumber() rpc.BlockNumber {
	sel, err := rpc.ParseBlockArg(c.Selector)
	if err != nil {
		return rpc.Latest
	}
	return sel
}

// Read parses a YAML configuration file on top of the defaults, expanding
// ${VAR} references with os.ExpandEnv before parsing. It does not validate,
// so callers can apply overrides first. An empty path yields the defaults.
//
// Example:
//
//	endpoint: ${KLAYTN_RPC_URL}
//	workers: 10
//	iterations: 100
//	delay: 250ms
func Read(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Load is Read followed by Validate.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnv loads variables from the given .env files (".env" when none are
// given) into the process environment. Variables already set in the
// environment win. A missing file is not an error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}
