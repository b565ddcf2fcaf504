package pipeline

import "logwatch/pkg/models"

// Sink renders summaries and alerts.
type Sink interface {
	RenderSummary(stats *models.SummaryStats) error
	RenderAlert(event models.AlertEvent) error
	Close() error
}
