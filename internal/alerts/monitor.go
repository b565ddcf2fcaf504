package alerts

import (
	"fmt"

	"logwatch/pkg/models"
)

// Config controls high-traffic alerting.
type Config struct {
	// TTL is the trailing window length in seconds.
	TTL int64
	// Threshold is the average requests per second that opens an alert.
	Threshold int
	// AdmitFirst counts the current record in the rate it is judged by.
	AdmitFirst bool
}

// Monitor runs the alert window and state machine for one stream.
type Monitor struct {
	cfg     Config
	window  *Window
	machine *StateMachine
}

// NewMonitor creates a monitor. TTL and threshold must be positive.
func NewMonitor(cfg Config) (*Monitor, error) {
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("alert ttl must be positive, got %d", cfg.TTL)
	}
	if cfg.Threshold <= 0 {
		return nil, fmt.Errorf("alert threshold must be positive, got %d", cfg.Threshold)
	}
	return &Monitor{
		cfg:     cfg,
		window:  NewWindow(),
		machine: NewStateMachine(float64(cfg.Threshold)),
	}, nil
}

// Observe feeds one record timestamp and returns the resulting event.
//
// By default the rate is taken before ts enters the window, so the decision
// for record n only sees records before n.
func (m *Monitor) Observe(ts int64) models.AlertEvent {
	m.window.Evict(ts, m.cfg.TTL)
	if m.cfg.AdmitFirst {
		m.window.Push(ts)
	}

	hits := m.window.Len()
	rate := m.window.Rate(m.cfg.TTL)
	state := m.machine.Advance(rate, ts)

	if !m.cfg.AdmitFirst {
		m.window.Push(ts)
	}
	return models.AlertEvent{
		State:     state,
		Hits:      hits,
		Rate:      rate,
		Threshold: m.machine.Threshold(),
	}
}

// State returns the current alert state.
func (m *Monitor) State() models.AlertState {
	return m.machine.State()
}

// Oldest returns the earliest timestamp still counted by the window.
func (m *Monitor) Oldest() (int64, bool) {
	return m.window.Oldest()
}

// WindowLen returns the number of timestamps currently in the window.
func (m *Monitor) WindowLen() int {
	return m.window.Len()
}
