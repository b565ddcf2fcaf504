package input

import (
	"context"

	"logwatch/pkg/models"
)

// Source yields records in non-decreasing timestamp order. Next returns
// io.EOF when the stream ends.
type Source interface {
	Next(ctx context.Context) (models.Record, error)
	Close() error
}
