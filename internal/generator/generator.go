package generator

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"time"

	"logwatch/internal/logger"
	"logwatch/internal/transform/accesslog"
	"logwatch/pkg/models"
)

const flushEvery = 10

var (
	hosts    = []string{"10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4", "10.0.0.5"}
	methods  = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD"}
	sections = []string{"/api", "/report", "/user", "/", "/123-abc"}
	statuses = []uint16{200, 204, 301, 400, 401, 403, 404, 500}
)

// Config controls synthetic record generation.
type Config struct {
	Count    int           // 0 generates until ctx is done
	MaxDelay time.Duration // upper bound of the random pause between rows
	Seed     int64

	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

// Generator writes random access-log rows in the CSV format Decoder reads.
type Generator struct {
	cfg Config
	rng *rand.Rand
}

// New creates a generator. Missing clock hooks default to the wall clock.
func New(cfg Config) *Generator {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleep
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// Record returns one random record stamped with the configured clock.
func (g *Generator) Record() models.Record {
	method := methods[g.rng.Intn(len(methods))]
	section := sections[g.rng.Intn(len(sections))]
	return models.Record{
		RemoteHost: hosts[g.rng.Intn(len(hosts))],
		RFC931:     "-",
		AuthUser:   "apache",
		Date:       g.cfg.Now().Unix(),
		Request:    fmt.Sprintf("%s %s HTTP/1.0", method, section),
		Status:     statuses[g.rng.Intn(len(statuses))],
		Bytes:      uint64(g.rng.Intn(99999)),
	}
}

// Run writes a header followed by records until Count rows are written or ctx
// is done. It returns the number of rows written.
func (g *Generator) Run(ctx context.Context, out io.Writer) (int, error) {
	w := csv.NewWriter(out)
	if err := w.Write(accesslog.Columns); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	n := 0
	for g.cfg.Count == 0 || n < g.cfg.Count {
		if ctx.Err() != nil {
			break
		}
		if err := w.Write(accesslog.Format(g.Record())); err != nil {
			return n, fmt.Errorf("write record %d: %w", n+1, err)
		}
		n++
		if n%flushEvery == 0 {
			w.Flush()
			if err := w.Error(); err != nil {
				return n, fmt.Errorf("flush: %w", err)
			}
		}

		if g.cfg.MaxDelay > 0 {
			d := time.Duration(g.rng.Int63n(int64(g.cfg.MaxDelay)))
			if err := g.cfg.Sleep(ctx, d); err != nil {
				break
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return n, fmt.Errorf("flush: %w", err)
	}
	logger.Debugf("generator wrote %d records", n)
	return n, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
