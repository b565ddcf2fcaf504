package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Input modes.
const (
	InputFile  = "file"
	InputRedis = "redis"
)

// Sink names accepted in output.sinks.
const (
	SinkCLI        = "cli"
	SinkFile       = "file"
	SinkHTTP       = "http"
	SinkClickHouse = "clickhouse"
	SinkRedis      = "redis"
	SinkKafka      = "kafka"
)

// Config is the root configuration.
type Config struct {
	Logwatch LogwatchConfig `yaml:"logwatch"`
}

// LogwatchConfig is the project configuration.
type LogwatchConfig struct {
	Input   InputConfig   `yaml:"input"`
	Alerts  AlertsConfig  `yaml:"alerts"`
	Summary SummaryConfig `yaml:"summary"`
	Rules   RulesConfig   `yaml:"rules"`
	Output  OutputConfig  `yaml:"output"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// InputConfig selects where records are read from.
type InputConfig struct {
	Mode  string          `yaml:"mode"` // file|redis
	File  FileInputConfig `yaml:"file"`
	Redis RedisConfig     `yaml:"redis"`
}

// FileInputConfig reads CSV records from a file. An empty path or "-" means stdin.
type FileInputConfig struct {
	Path string `yaml:"path"`
}

// RedisConfig controls Redis input.
type RedisConfig struct {
	Addr         string        `yaml:"addr"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	Key          string        `yaml:"key"`
	BlockTimeout time.Duration `yaml:"block_timeout"`
}

// AlertsConfig controls the high-traffic alert.
type AlertsConfig struct {
	TTL        int64 `yaml:"ttl"`       // seconds
	Threshold  int   `yaml:"threshold"` // average requests per second
	AdmitFirst bool  `yaml:"admit_first"`
}

// SummaryConfig controls periodic summaries.
type SummaryConfig struct {
	Cadence     int64 `yaml:"cadence"` // seconds of log time
	TopSections int   `yaml:"top_sections"`
}

// RulesConfig controls Sigma rule tagging.
type RulesConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// OutputConfig controls the sinks summaries and alerts are handed to.
type OutputConfig struct {
	Sinks      []string               `yaml:"sinks"`
	File       FileOutputConfig       `yaml:"file"`
	HTTP       HTTPOutputConfig       `yaml:"http"`
	ClickHouse ClickHouseOutputConfig `yaml:"clickhouse"`
	Redis      RedisOutputConfig      `yaml:"redis"`
	Kafka      KafkaOutputConfig      `yaml:"kafka"`
}

// FileOutputConfig config for local JSON output.
type FileOutputConfig struct {
	Path string `yaml:"path"`
}

// HTTPOutputConfig config for remote alert output.
type HTTPOutputConfig struct {
	URL     string            `yaml:"url"`
	Timeout time.Duration     `yaml:"timeout"`
	Headers map[string]string `yaml:"headers"`
}

// ClickHouseOutputConfig config for ClickHouse HTTP JSONEachRow writes.
type ClickHouseOutputConfig struct {
	URL          string            `yaml:"url"`
	Database     string            `yaml:"database"`
	SummaryTable string            `yaml:"summary_table"`
	AlertTable   string            `yaml:"alert_table"`
	Username     string            `yaml:"username"`
	Password     string            `yaml:"password"`
	Timeout      time.Duration     `yaml:"timeout"`
	Headers      map[string]string `yaml:"headers"`
}

// RedisOutputConfig config for Redis list output.
type RedisOutputConfig struct {
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	SummaryKey string `yaml:"summary_key"`
	AlertKey   string `yaml:"alert_key"`
	MaxLen     int64  `yaml:"max_len"`
}

// KafkaOutputConfig config for Kafka topic output.
type KafkaOutputConfig struct {
	Brokers  []string      `yaml:"brokers"`
	Topic    string        `yaml:"topic"`
	ClientID string        `yaml:"client_id"`
	Timeout  time.Duration `yaml:"timeout"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LoggingConfig controls logging output.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	File    string `yaml:"file"`
	Console bool   `yaml:"console"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{Logwatch: LogwatchConfig{
		Input: InputConfig{
			Mode: InputFile,
			File: FileInputConfig{Path: "-"},
			Redis: RedisConfig{
				Addr:         "127.0.0.1:6379",
				Key:          "access_log",
				BlockTimeout: 5 * time.Second,
			},
		},
		Alerts: AlertsConfig{
			TTL:       120,
			Threshold: 10,
		},
		Summary: SummaryConfig{
			Cadence:     10,
			TopSections: 3,
		},
		Output: OutputConfig{
			Sinks: []string{SinkCLI},
			File:  FileOutputConfig{Path: "output/logwatch.jsonl"},
			HTTP:  HTTPOutputConfig{Timeout: 5 * time.Second},
			ClickHouse: ClickHouseOutputConfig{
				Database:     "logwatch",
				SummaryTable: "summaries",
				AlertTable:   "alerts",
				Timeout:      5 * time.Second,
			},
			Redis: RedisOutputConfig{
				Addr:       "127.0.0.1:6379",
				SummaryKey: "logwatch:summaries",
				AlertKey:   "logwatch:alerts",
				MaxLen:     10000,
			},
			Kafka: KafkaOutputConfig{
				Topic:    "logwatch",
				ClientID: "logwatch",
				Timeout:  5 * time.Second,
			},
		},
		Metrics: MetricsConfig{Addr: ":9090"},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
			Console: true,
		},
	}}
}

// LoadConfig reads a YAML config file on top of the defaults. Keys missing
// from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ValidationError reports every problem found in a configuration.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Problems lists the individual validation failures.
func (e *ValidationError) Problems() []error {
	return multierr.Errors(e.Err)
}

// Validate checks the configuration once at startup.
func (c *Config) Validate() error {
	lw := c.Logwatch
	var errs error

	if lw.Alerts.TTL <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("alerts.ttl must be a positive number of seconds, got %d", lw.Alerts.TTL))
	}
	if lw.Alerts.Threshold <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("alerts.threshold must be positive, got %d", lw.Alerts.Threshold))
	}
	if lw.Summary.Cadence <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("summary.cadence must be a positive number of seconds, got %d", lw.Summary.Cadence))
	}
	if lw.Summary.TopSections < 0 {
		errs = multierr.Append(errs, fmt.Errorf("summary.top_sections must not be negative, got %d", lw.Summary.TopSections))
	}

	switch lw.Input.Mode {
	case InputFile:
	case InputRedis:
		if strings.TrimSpace(lw.Input.Redis.Key) == "" {
			errs = multierr.Append(errs, errors.New("input.redis.key is required"))
		}
	default:
		errs = multierr.Append(errs, fmt.Errorf("unknown input mode %q", lw.Input.Mode))
	}

	if lw.Rules.Enabled && strings.TrimSpace(lw.Rules.Path) == "" {
		errs = multierr.Append(errs, errors.New("rules.path is required when rules are enabled"))
	}

	if len(lw.Output.Sinks) == 0 {
		errs = multierr.Append(errs, errors.New("output.sinks must name at least one sink"))
	}
	seen := make(map[string]struct{}, len(lw.Output.Sinks))
	for _, name := range lw.Output.Sinks {
		if _, dup := seen[name]; dup {
			errs = multierr.Append(errs, fmt.Errorf("sink %q listed twice", name))
			continue
		}
		seen[name] = struct{}{}

		switch name {
		case SinkCLI:
		case SinkFile:
			if strings.TrimSpace(lw.Output.File.Path) == "" {
				errs = multierr.Append(errs, errors.New("output.file.path is required for the file sink"))
			}
		case SinkHTTP:
			if strings.TrimSpace(lw.Output.HTTP.URL) == "" {
				errs = multierr.Append(errs, errors.New("output.http.url is required for the http sink"))
			}
		case SinkClickHouse:
			if strings.TrimSpace(lw.Output.ClickHouse.URL) == "" {
				errs = multierr.Append(errs, errors.New("output.clickhouse.url is required for the clickhouse sink"))
			}
		case SinkRedis:
			if lw.Output.Redis.SummaryKey == "" || lw.Output.Redis.AlertKey == "" {
				errs = multierr.Append(errs, errors.New("output.redis.summary_key and alert_key are required for the redis sink"))
			}
		case SinkKafka:
			if len(lw.Output.Kafka.Brokers) == 0 || strings.TrimSpace(lw.Output.Kafka.Topic) == "" {
				errs = multierr.Append(errs, errors.New("output.kafka.brokers and topic are required for the kafka sink"))
			}
		default:
			errs = multierr.Append(errs, fmt.Errorf("%q is not a valid sink", name))
		}
	}

	if errs != nil {
		return &ValidationError{Err: errs}
	}
	return nil
}
