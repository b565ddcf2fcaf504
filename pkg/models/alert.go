package models

import (
	"encoding/json"
	"fmt"
)

// AlertState is the high-traffic alert lifecycle. The concrete types are
// Inactive, Onset, Sustained and Recovering.
type AlertState interface {
	Name() string
	alertState()
}

// Inactive means traffic is below the threshold and no alert is open.
type Inactive struct{}

// Onset is the first record at or above the threshold.
type Onset struct {
	Start int64
}

// Sustained means an already reported alert is still active.
type Sustained struct{}

// Recovering is the first record back below the threshold.
type Recovering struct {
	End int64
}

func (Inactive) alertState()   {}
func (Onset) alertState()      {}
func (Sustained) alertState()  {}
func (Recovering) alertState() {}

func (Inactive) Name() string   { return "inactive" }
func (Onset) Name() string      { return "onset" }
func (Sustained) Name() string  { return "sustained" }
func (Recovering) Name() string { return "recovering" }

// StateTime returns the timestamp carried by timed states.
func StateTime(s AlertState) (int64, bool) {
	switch st := s.(type) {
	case Onset:
		return st.Start, true
	case Recovering:
		return st.End, true
	default:
		return 0, false
	}
}

// AlertEvent is handed to sinks after each record with an active alert.
type AlertEvent struct {
	State     AlertState
	Hits      int
	Rate      float64
	Threshold float64
}

type alertEventJSON struct {
	State     string  `json:"state"`
	Time      *int64  `json:"time,omitempty"`
	Hits      int     `json:"hits"`
	Rate      float64 `json:"rate"`
	Threshold float64 `json:"threshold"`
}

// MarshalJSON flattens the state into a name and optional time.
func (e AlertEvent) MarshalJSON() ([]byte, error) {
	if e.State == nil {
		return nil, fmt.Errorf("alert event has no state")
	}
	out := alertEventJSON{
		State:     e.State.Name(),
		Hits:      e.Hits,
		Rate:      e.Rate,
		Threshold: e.Threshold,
	}
	if ts, ok := StateTime(e.State); ok {
		out.Time = &ts
	}
	return json.Marshal(out)
}

// Reportable reports whether the state is an edge renderers announce: an
// alert being raised or cleared.
func Reportable(s AlertState) bool {
	switch s.(type) {
	case Onset, Recovering:
		return true
	default:
		return false
	}
}
