package filequery

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/filequery/query"
	"github.com/nao1215/filequery/source"
)

// Config configures a Querier.
type Config struct {
	// MaxResultRows is the hard ceiling on returned rows
	MaxResultRows int `yaml:"max_result_rows"`
	// FallbackRows is the number of raw rows returned when a query cannot be executed
	FallbackRows int `yaml:"fallback_rows"`
	// GroupByPolicy handles SELECT fields that are neither grouped nor aggregated
	GroupByPolicy query.GroupByPolicy `yaml:"group_by_policy"`
	// HTTPTimeout bounds a single HTTP fetch
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	// ReadRetryBackoff is the pause between the primary and the fallback read
	ReadRetryBackoff time.Duration `yaml:"read_retry_backoff"`
	// S3 configures the S3 client used for s3:// locations
	S3 source.S3Options `yaml:"s3"`
}

// RegisterFlags registers the config flags on f, setting the defaults.
func (cfg *Config) RegisterFlags(f *flag.FlagSet) {
	f.IntVar(&cfg.MaxResultRows, "query.max-result-rows", query.DefaultMaxResultRows, "Maximum number of rows a query returns.")
	f.IntVar(&cfg.FallbackRows, "query.fallback-rows", query.DefaultFallbackRows, "Number of raw rows returned when a query cannot be executed.")
	f.TextVar(&cfg.GroupByPolicy, "query.group-by-policy", query.FirstWins, "How fields that are neither grouped nor aggregated are handled: first_wins or strict.")
	f.DurationVar(&cfg.HTTPTimeout, "source.http-timeout", source.DefaultHTTPTimeout, "Timeout for fetching http(s) locations.")
	f.DurationVar(&cfg.ReadRetryBackoff, "source.read-retry-backoff", 100*time.Millisecond, "Pause before the fallback read when the primary read fails.")
	f.StringVar(&cfg.S3.Region, "s3.region", "", "AWS region for s3:// locations. Empty uses the default AWS configuration.")
	f.StringVar(&cfg.S3.Endpoint, "s3.endpoint", "", "Custom endpoint for S3-compatible services. Enables path-style addressing.")
	f.StringVar(&cfg.S3.AccessKey, "s3.access-key", "", "Static access key for s3:// locations.")
	f.StringVar(&cfg.S3.SecretKey, "s3.secret-key", "", "Static secret key for s3:// locations.")
}

// Validate validates the config.
func (cfg *Config) Validate() error {
	var errs []error
	if cfg.MaxResultRows <= 0 {
		errs = append(errs, fmt.Errorf("max_result_rows must be positive, got %d", cfg.MaxResultRows))
	}
	if cfg.FallbackRows <= 0 {
		errs = append(errs, fmt.Errorf("fallback_rows must be positive, got %d", cfg.FallbackRows))
	}
	if cfg.GroupByPolicy != query.FirstWins && cfg.GroupByPolicy != query.Strict {
		errs = append(errs, fmt.Errorf("unknown group_by_policy %d", cfg.GroupByPolicy))
	}
	if cfg.HTTPTimeout < 0 {
		errs = append(errs, errors.New("http_timeout cannot be negative"))
	}
	if cfg.ReadRetryBackoff < 0 {
		errs = append(errs, errors.New("read_retry_backoff cannot be negative"))
	}
	if (cfg.S3.AccessKey == "") != (cfg.S3.SecretKey == "") {
		errs = append(errs, errors.New("s3.access_key and s3.secret_key must be set together"))
	}
	return errors.Join(errs...)
}

// DefaultConfig returns the configuration used when none is given
func DefaultConfig() Config {
	var cfg Config
	cfg.RegisterFlags(flag.NewFlagSet("defaults", flag.ContinueOnError))
	return cfg
}

// LoadConfig reads a YAML config file over the defaults and validates it
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided path is necessary for file operations
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML over the defaults and validates the result.
// Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (cfg Config) engineOptions() query.Options {
	return query.Options{
		MaxResultRows: cfg.MaxResultRows,
		FallbackRows:  cfg.FallbackRows,
		GroupByPolicy: cfg.GroupByPolicy,
	}
}

func (cfg Config) sourceOptions() source.Options {
	return source.Options{
		HTTPTimeout: cfg.HTTPTimeout,
		S3:          cfg.S3,
	}
}
