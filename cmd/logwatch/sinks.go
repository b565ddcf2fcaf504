package main

import (
	"fmt"
	"io"

	"logwatch/config"
	"logwatch/internal/logger"
	"logwatch/internal/output"
	"logwatch/internal/output/alerthttp"
	"logwatch/internal/output/cli"
	"logwatch/internal/output/clickhouse"
	"logwatch/internal/output/jsonl"
	"logwatch/internal/output/kafka"
	"logwatch/internal/output/redislist"
)

// buildSinks creates every sink named in cfg.Sinks. stdout backs the cli sink.
func buildSinks(cfg config.OutputConfig, summary config.SummaryConfig, stdout io.Writer) (*output.Multi, error) {
	named := make([]output.Named, 0, len(cfg.Sinks))
	fail := func(err error) (*output.Multi, error) {
		if cerr := output.NewMulti(named...).Close(); cerr != nil {
			logger.Warnf("Failed to close sinks after setup error: %v", cerr)
		}
		return nil, err
	}

	for _, name := range cfg.Sinks {
		var sink output.Renderer
		switch name {
		case config.SinkCLI:
			sink = cli.NewRenderer(stdout, summary.TopSections)
			logger.Infof("Output sink: cli (top %d sections)", summary.TopSections)
		case config.SinkFile:
			w, err := jsonl.NewWriter(cfg.File.Path)
			if err != nil {
				return fail(fmt.Errorf("create file sink: %w", err))
			}
			sink = w
			logger.Infof("Output sink: file (%s)", cfg.File.Path)
		case config.SinkHTTP:
			w, err := alerthttp.NewWriter(alerthttp.Config{
				URL:     cfg.HTTP.URL,
				Timeout: cfg.HTTP.Timeout,
				Headers: cfg.HTTP.Headers,
			})
			if err != nil {
				return fail(fmt.Errorf("create http sink: %w", err))
			}
			sink = w
			logger.Infof("Output sink: http (%s)", cfg.HTTP.URL)
		case config.SinkClickHouse:
			w, err := clickhouse.NewWriter(clickhouse.Config{
				URL:          cfg.ClickHouse.URL,
				Database:     cfg.ClickHouse.Database,
				SummaryTable: cfg.ClickHouse.SummaryTable,
				AlertTable:   cfg.ClickHouse.AlertTable,
				Username:     cfg.ClickHouse.Username,
				Password:     cfg.ClickHouse.Password,
				Timeout:      cfg.ClickHouse.Timeout,
				Headers:      cfg.ClickHouse.Headers,
			})
			if err != nil {
				return fail(fmt.Errorf("create clickhouse sink: %w", err))
			}
			sink = w
			logger.Infof("Output sink: clickhouse (%s/%s)", cfg.ClickHouse.URL, cfg.ClickHouse.Database)
		case config.SinkRedis:
			w, err := redislist.NewWriter(redislist.Config{
				Addr:       cfg.Redis.Addr,
				Password:   cfg.Redis.Password,
				DB:         cfg.Redis.DB,
				SummaryKey: cfg.Redis.SummaryKey,
				AlertKey:   cfg.Redis.AlertKey,
				MaxLen:     cfg.Redis.MaxLen,
			})
			if err != nil {
				return fail(fmt.Errorf("create redis sink: %w", err))
			}
			sink = w
			logger.Infof("Output sink: redis (%s)", cfg.Redis.Addr)
		case config.SinkKafka:
			w, err := kafka.NewWriter(kafka.Config{
				Brokers:  cfg.Kafka.Brokers,
				Topic:    cfg.Kafka.Topic,
				ClientID: cfg.Kafka.ClientID,
				Timeout:  cfg.Kafka.Timeout,
			})
			if err != nil {
				return fail(fmt.Errorf("create kafka sink: %w", err))
			}
			sink = w
			logger.Infof("Output sink: kafka (%s)", cfg.Kafka.Topic)
		default:
			return fail(fmt.Errorf("unknown sink: %s", name))
		}
		named = append(named, output.Named{Name: name, Sink: sink})
	}
	return output.NewMulti(named...), nil
}
