package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"logwatch/config"
	"logwatch/internal/alerts"
	"logwatch/internal/input"
	"logwatch/internal/input/file"
	inputredis "logwatch/internal/input/redis"
	"logwatch/internal/logger"
	"logwatch/internal/metrics"
	"logwatch/internal/pipeline"
	"logwatch/internal/rules"
)

func newProcessCommand(configArg *string) *cobra.Command {
	var o overrides

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Read access-log records and render summaries and alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, src, err := loadConfig(*configArg)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			o.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			lc := cfg.Logwatch.Logging
			if err := logger.Init(lc.Enabled, lc.Level, lc.File, lc.Console); err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			defer logger.Sync()

			for _, w := range src.Warnings {
				logger.Warnf("%s", w)
			}
			if src.Path != "" {
				logger.Infof("Config loaded from: %s", src.Path)
			} else {
				logger.Infof("No config file found, using defaults")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runProcess(ctx, cfg, cmd.OutOrStdout())
		},
	}
	o.register(cmd)
	return cmd
}

func runProcess(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	lw := cfg.Logwatch

	source, err := buildSource(lw.Input)
	if err != nil {
		return err
	}

	engine, err := buildEngine(lw.Rules)
	if err != nil {
		source.Close()
		return err
	}

	sink, err := buildSinks(lw.Output, lw.Summary, stdout)
	if err != nil {
		source.Close()
		return err
	}

	driver, err := pipeline.NewDriver(source, engine, sink, pipeline.Config{
		Cadence: lw.Summary.Cadence,
		Alerts: alerts.Config{
			TTL:        lw.Alerts.TTL,
			Threshold:  lw.Alerts.Threshold,
			AdmitFirst: lw.Alerts.AdmitFirst,
		},
	})
	if err != nil {
		source.Close()
		sink.Close()
		return err
	}
	defer func() {
		if err := driver.Close(); err != nil {
			logger.Errorf("Error closing driver: %v", err)
		}
	}()

	if lw.Metrics.Enabled {
		go func() {
			if err := metrics.Serve(ctx, lw.Metrics.Addr); err != nil {
				logger.Errorf("Metrics server error: %v", err)
			}
		}()
		logger.Infof("Metrics served on %s", lw.Metrics.Addr)
	}

	logger.Infof("Logwatch starting: ttl=%ds threshold=%d/s cadence=%ds sinks=%s",
		lw.Alerts.TTL, lw.Alerts.Threshold, lw.Summary.Cadence, strings.Join(lw.Output.Sinks, ","))

	err = driver.Run(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Infof("Interrupted, final summary flushed")
		return nil
	}
	if err != nil {
		return err
	}
	logger.Infof("Logwatch stopped")
	return nil
}

func buildSource(cfg config.InputConfig) (input.Source, error) {
	switch cfg.Mode {
	case config.InputFile:
		src, err := file.Open(cfg.File.Path)
		if err != nil {
			return nil, err
		}
		logger.Infof("Input mode: file (%s)", cfg.File.Path)
		return src, nil
	case config.InputRedis:
		src, err := inputredis.NewSource(inputredis.Config{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			Key:          cfg.Redis.Key,
			BlockTimeout: cfg.Redis.BlockTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis source: %w", err)
		}
		logger.Infof("Input mode: redis (%s %s)", cfg.Redis.Addr, cfg.Redis.Key)
		return src, nil
	default:
		return nil, fmt.Errorf("unknown input mode: %s", cfg.Mode)
	}
}

func buildEngine(cfg config.RulesConfig) (rules.Engine, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	sigmaEngine, stats, err := rules.NewSigmaEngine(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("load sigma rules from %s: %w", cfg.Path, err)
	}
	logger.Infof("Sigma rules loaded: loaded=%d skipped_complex=%d skipped_datasource=%d skipped_invalid=%d files=%d",
		stats.Loaded,
		stats.SkippedComplex,
		stats.SkippedDatasource,
		stats.SkippedInvalid,
		stats.TotalFiles,
	)
	if stats.Loaded == 0 {
		logger.Warnf("No compatible Sigma rules loaded; record tagging is effectively disabled")
	}
	return sigmaEngine, nil
}
