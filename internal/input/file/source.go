package file

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"logwatch/internal/transform/accesslog"
	"logwatch/pkg/models"
)

// Source reads CSV records from a file or stdin.
type Source struct {
	dec    *accesslog.Decoder
	closer io.Closer

	// pending holds the result of a read that outlived a canceled Next.
	pending chan result
}

type result struct {
	rec models.Record
	err error
}

// Open opens path for reading. An empty path or "-" reads stdin.
func Open(path string) (*Source, error) {
	if path == "" || path == "-" {
		return NewSource(os.Stdin, nil), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	return NewSource(f, f), nil
}

// NewSource wraps r. closer may be nil.
func NewSource(r io.Reader, closer io.Closer) *Source {
	return &Source{
		dec:    accesslog.NewDecoder(bufio.NewReader(r)),
		closer: closer,
	}
}

// Next decodes the next record. A read blocked on an idle pipe or terminal
// returns ctx.Err() as soon as ctx is done; the record it eventually yields is
// returned by the following call.
func (s *Source) Next(ctx context.Context) (models.Record, error) {
	if err := ctx.Err(); err != nil {
		return models.Record{}, err
	}
	if s.pending == nil {
		ch := make(chan result, 1)
		go func() {
			rec, err := s.dec.Next()
			ch <- result{rec: rec, err: err}
		}()
		s.pending = ch
	}

	select {
	case r := <-s.pending:
		s.pending = nil
		return r.rec, r.err
	case <-ctx.Done():
		return models.Record{}, ctx.Err()
	}
}

// Close closes the underlying file.
func (s *Source) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
