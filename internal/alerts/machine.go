package alerts

import (
	"fmt"

	"logwatch/pkg/models"
)

// StateMachine tracks the high-traffic alert lifecycle of one stream.
type StateMachine struct {
	threshold float64
	state     models.AlertState
}

// NewStateMachine creates a machine in the Inactive state.
func NewStateMachine(threshold float64) *StateMachine {
	return &StateMachine{
		threshold: threshold,
		state:     models.Inactive{},
	}
}

// Threshold returns the configured requests per second threshold.
func (m *StateMachine) Threshold() float64 {
	return m.threshold
}

// State returns the current state.
func (m *StateMachine) State() models.AlertState {
	return m.state
}

// Advance applies one transition for a record at ref and returns the new state.
func (m *StateMachine) Advance(rate float64, ref int64) models.AlertState {
	m.state = Next(m.state, rate >= m.threshold, ref)
	return m.state
}

// Next is the transition function. high reports whether the rate is at or
// above the threshold.
func Next(current models.AlertState, high bool, ref int64) models.AlertState {
	switch current.(type) {
	case models.Inactive:
		if high {
			return models.Onset{Start: ref}
		}
		return models.Inactive{}
	case models.Onset:
		if high {
			return models.Sustained{}
		}
		return models.Recovering{End: ref}
	case models.Sustained:
		if high {
			return models.Sustained{}
		}
		return models.Recovering{End: ref}
	case models.Recovering:
		if high {
			return models.Onset{Start: ref}
		}
		return models.Inactive{}
	default:
		panic(fmt.Sprintf("alerts: unknown state %T", current))
	}
}
