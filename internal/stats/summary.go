package stats

import (
	"errors"

	"logwatch/pkg/models"
)

// httpErrorStart is the lowest status counted as an error.
const httpErrorStart = 400

// ErrEmptyBatch is returned when Summarize is called without records.
var ErrEmptyBatch = errors.New("stats: cannot summarize an empty batch")

// Summarize builds the summary of one cadence window. The batch must be in
// arrival order.
func Summarize(batch []models.Record) (*models.SummaryStats, error) {
	if len(batch) == 0 {
		return nil, ErrEmptyBatch
	}

	out := &models.SummaryStats{
		TotalHits:   len(batch),
		HTTPErrors:  make(map[uint16]int),
		SectionHits: make(map[string]int),
		RuleHits:    make(map[string]int),
		FromDate:    batch[0].Date,
		ToDate:      batch[len(batch)-1].Date,
	}
	for _, rec := range batch {
		out.SectionHits[Section(rec.Request)]++
		if rec.Status >= httpErrorStart {
			out.HTTPErrors[rec.Status]++
		}
		for _, tag := range rec.Tags {
			out.RuleHits[tag]++
		}
		out.Bytes += rec.Bytes
	}
	return out, nil
}
