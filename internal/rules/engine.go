package rules

import "logwatch/pkg/models"

// Engine tags access-log records with the IDs of matching rules.
type Engine interface {
	Apply(rec models.Record) []string
}

// NoopEngine returns no tags.
type NoopEngine struct{}

// Apply returns an empty tag list.
func (n *NoopEngine) Apply(rec models.Record) []string {
	return nil
}
