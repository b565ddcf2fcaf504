package models

// Envelope kinds.
const (
	KindSummary = "summary"
	KindAlert   = "alert"
)

// Envelope is the serialized form sinks ship summaries and alerts in.
type Envelope struct {
	Kind    string        `json:"kind"`
	Summary *SummaryStats `json:"summary,omitempty"`
	Alert   *AlertEvent   `json:"alert,omitempty"`
}

// SummaryEnvelope wraps a summary.
func SummaryEnvelope(stats *SummaryStats) Envelope {
	return Envelope{Kind: KindSummary, Summary: stats}
}

// AlertEnvelope wraps an alert event.
func AlertEnvelope(event AlertEvent) Envelope {
	return Envelope{Kind: KindAlert, Alert: &event}
}
