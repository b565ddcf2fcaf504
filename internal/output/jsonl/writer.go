package jsonl

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"logwatch/internal/logger"
	"logwatch/pkg/models"
)

// Writer outputs summaries and alerts to a JSON lines file, one envelope per line.
type Writer struct {
	closer  io.Closer
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewWriter creates a JSONL writer. A path of "-" writes to stdout.
func NewWriter(path string) (*Writer, error) {
	if path == "-" {
		return NewStreamWriter(os.Stdout, nil), nil
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	logger.Infof("JSONL writer initialized: %s", path)
	return NewStreamWriter(f, f), nil
}

// NewStreamWriter writes to w. closer may be nil when w is owned elsewhere.
func NewStreamWriter(w io.Writer, closer io.Closer) *Writer {
	return &Writer{closer: closer, encoder: json.NewEncoder(w)}
}

// RenderSummary writes a summary line.
func (w *Writer) RenderSummary(stats *models.SummaryStats) error {
	return w.write(models.SummaryEnvelope(stats))
}

// RenderAlert writes an alert line for every event, sustained ones included.
func (w *Writer) RenderAlert(event models.AlertEvent) error {
	return w.write(models.AlertEnvelope(event))
}

func (w *Writer) write(env models.Envelope) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.encoder.Encode(env); err != nil {
		return fmt.Errorf("failed to encode %s: %w", env.Kind, err)
	}
	return nil
}

// Close closes the output file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closer != nil {
		err := w.closer.Close()
		w.closer = nil
		return err
	}
	return nil
}
