package models

// SummaryStats aggregates one cadence window of records.
type SummaryStats struct {
	TotalHits   int            `json:"total_hits"`
	HTTPErrors  map[uint16]int `json:"http_errors"`
	SectionHits map[string]int `json:"section_hits"`
	RuleHits    map[string]int `json:"rule_hits,omitempty"`
	Bytes       uint64         `json:"bytes"`
	FromDate    int64          `json:"from_date"`
	ToDate      int64          `json:"to_date"`
}

// Span returns the number of seconds covered by the summary.
func (s *SummaryStats) Span() int64 {
	return s.ToDate - s.FromDate
}
