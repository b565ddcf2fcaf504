package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/multierr"

	"logwatch/internal/alerts"
	"logwatch/internal/input"
	"logwatch/internal/logger"
	"logwatch/internal/metrics"
	"logwatch/internal/rules"
	"logwatch/internal/stats"
	"logwatch/internal/transform/accesslog"
	"logwatch/pkg/models"
)

// Config controls the driver.
type Config struct {
	// Cadence is the span of log seconds covered by one summary.
	Cadence int64
	Alerts  alerts.Config
}

// Driver feeds records to the alert monitor and the cadence buffer and hands
// the results to a sink. It is not safe for concurrent use.
type Driver struct {
	source  input.Source
	engine  rules.Engine
	sink    Sink
	monitor *alerts.Monitor
	cadence int64

	buffer    []models.Record
	lastState string
}

// NewDriver creates a driver. engine may be nil.
func NewDriver(source input.Source, engine rules.Engine, sink Sink, cfg Config) (*Driver, error) {
	if cfg.Cadence <= 0 {
		return nil, fmt.Errorf("summary cadence must be positive, got %d", cfg.Cadence)
	}
	monitor, err := alerts.NewMonitor(cfg.Alerts)
	if err != nil {
		return nil, err
	}
	return &Driver{
		source:    source,
		engine:    engine,
		sink:      sink,
		monitor:   monitor,
		cadence:   cfg.Cadence,
		lastState: models.Inactive{}.Name(),
	}, nil
}

// Run processes records until the source is exhausted or ctx is done. The
// partially filled cadence window is summarized before returning.
func (d *Driver) Run(ctx context.Context) error {
	logger.Infof("Driver started: cadence=%ds", d.cadence)

	for {
		rec, err := d.source.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				logger.Infof("Input exhausted")
				return d.Flush()
			}
			if ctx.Err() != nil {
				if ferr := d.Flush(); ferr != nil {
					logger.Errorf("Failed to flush final summary: %v", ferr)
				}
				return ctx.Err()
			}
			var derr *accesslog.DecodeError
			if errors.As(err, &derr) {
				metrics.DecodeErrors.Inc()
			}
			return fmt.Errorf("read record: %w", err)
		}

		if d.engine != nil {
			rec.Tags = d.engine.Apply(rec)
			for _, tag := range rec.Tags {
				metrics.RuleMatches.WithLabelValues(tag).Inc()
			}
		}
		if err := d.Process(rec); err != nil {
			return err
		}
	}
}

// Process handles one record: cadence boundary check, alert step, buffering,
// and alert emission.
func (d *Driver) Process(rec models.Record) error {
	if len(d.buffer) > 0 {
		first := d.buffer[0].Date
		if rec.Date > first && rec.Date-first > d.cadence {
			if err := d.Flush(); err != nil {
				return err
			}
		}
	}

	event := d.monitor.Observe(rec.Date)
	d.buffer = append(d.buffer, rec)

	metrics.RecordsProcessed.Inc()
	metrics.AlertWindowSize.Set(float64(d.monitor.WindowLen()))
	metrics.AlertRate.Set(event.Rate)
	if name := event.State.Name(); name != d.lastState {
		metrics.AlertTransitions.WithLabelValues(name).Inc()
		oldest, _ := d.monitor.Oldest()
		logger.Debugf("Alert state %s -> %s at %d (hits=%d rate=%.2f window=[%d,%d])", d.lastState, name, rec.Date, event.Hits, event.Rate, oldest, rec.Date)
		d.lastState = name
	}

	if _, inactive := event.State.(models.Inactive); inactive {
		return nil
	}
	if err := d.sink.RenderAlert(event); err != nil {
		return fmt.Errorf("render alert: %w", err)
	}
	return nil
}

// Flush summarizes and clears the buffer. It is a no-op when the buffer is empty.
func (d *Driver) Flush() error {
	if len(d.buffer) == 0 {
		return nil
	}
	summary, err := stats.Summarize(d.buffer)
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}
	d.buffer = d.buffer[:0]

	if err := d.sink.RenderSummary(summary); err != nil {
		return fmt.Errorf("render summary: %w", err)
	}
	metrics.SummariesEmitted.Inc()
	return nil
}

// State returns the current alert state.
func (d *Driver) State() models.AlertState {
	return d.monitor.State()
}

// Buffered returns the number of records waiting for the next summary.
func (d *Driver) Buffered() int {
	return len(d.buffer)
}

// Close releases the source and the sink.
func (d *Driver) Close() error {
	var errs error
	if d.sink != nil {
		if err := d.sink.Close(); err != nil {
			logger.Errorf("Failed to close sink: %v", err)
			errs = multierr.Append(errs, err)
		}
	}
	if d.source != nil {
		errs = multierr.Append(errs, d.source.Close())
	}
	return errs
}
