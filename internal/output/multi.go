package output

import (
	"fmt"

	"go.uber.org/multierr"

	"logwatch/internal/logger"
	"logwatch/internal/metrics"
	"logwatch/pkg/models"
)

// Renderer is the sink contract each output package implements.
type Renderer interface {
	RenderSummary(stats *models.SummaryStats) error
	RenderAlert(event models.AlertEvent) error
	Close() error
}

// Named pairs a sink with the name it was configured under.
type Named struct {
	Name string
	Sink Renderer
}

// Multi fans summaries and alerts out to every configured sink. A failing
// sink is logged and counted; a call only fails when no sink accepted it.
type Multi struct {
	sinks []Named
}

// NewMulti creates a fan-out sink.
func NewMulti(sinks ...Named) *Multi {
	return &Multi{sinks: sinks}
}

// Len returns the number of sinks.
func (m *Multi) Len() int {
	return len(m.sinks)
}

// RenderSummary hands stats to every sink.
func (m *Multi) RenderSummary(stats *models.SummaryStats) error {
	return m.each(func(s Renderer) error { return s.RenderSummary(stats) })
}

// RenderAlert hands event to every sink.
func (m *Multi) RenderAlert(event models.AlertEvent) error {
	return m.each(func(s Renderer) error { return s.RenderAlert(event) })
}

// Close closes every sink.
func (m *Multi) Close() error {
	var err error
	for _, n := range m.sinks {
		if cerr := n.Sink.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("close %s sink: %w", n.Name, cerr))
		}
	}
	return err
}

func (m *Multi) each(fn func(Renderer) error) error {
	var err error
	failed := 0
	for _, n := range m.sinks {
		if serr := fn(n.Sink); serr != nil {
			metrics.SinkErrors.WithLabelValues(n.Name).Inc()
			logger.Warnf("Sink %s failed: %v", n.Name, serr)
			err = multierr.Append(err, fmt.Errorf("%s sink: %w", n.Name, serr))
			failed++
		}
	}
	if failed < len(m.sinks) {
		return nil
	}
	return err
}
