package cli

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"logwatch/pkg/models"
)

const timeLayout = "2006-01-02 15:04:05 UTC"

// Renderer prints summaries and alerts for a terminal.
type Renderer struct {
	mu          sync.Mutex
	out         io.Writer
	topSections int
}

// NewRenderer creates a renderer showing at most topSections sections per
// summary. Zero shows every section.
func NewRenderer(out io.Writer, topSections int) *Renderer {
	return &Renderer{out: out, topSections: topSections}
}

// RenderSummary prints the header line followed by error and section tables.
func (r *Renderer) RenderSummary(stats *models.SummaryStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := fmt.Fprintf(r.out, "==== %s | %ds ====\n", formatTime(stats.FromDate), stats.Span()); err != nil {
		return err
	}

	if len(stats.HTTPErrors) > 0 {
		t := newTable(r.out)
		t.AppendHeader(table.Row{"Status", "Hits", "Share"})
		for _, e := range sortedErrors(stats.HTTPErrors) {
			t.AppendRow(table.Row{e.code, e.count, share(e.count, stats.TotalHits)})
		}
		t.Render()
	}

	sections := sortedCounts(stats.SectionHits)
	if r.topSections > 0 && len(sections) > r.topSections {
		sections = sections[:r.topSections]
	}
	t := newTable(r.out)
	t.AppendHeader(table.Row{"Section", "Hits", "Share"})
	for _, s := range sections {
		t.AppendRow(table.Row{"/" + s.key, s.count, share(s.count, stats.TotalHits)})
	}
	if len(stats.RuleHits) > 0 {
		t.AppendSeparator()
		for _, s := range sortedCounts(stats.RuleHits) {
			t.AppendRow(table.Row{"rule:" + s.key, s.count, share(s.count, stats.TotalHits)})
		}
	}
	t.AppendFooter(table.Row{"Total", stats.TotalHits, ""})
	t.Render()
	return nil
}

// RenderAlert prints raised and cleared alerts. Sustained alerts print nothing.
func (r *Renderer) RenderAlert(event models.AlertEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	switch st := event.State.(type) {
	case models.Onset:
		_, err = fmt.Fprintf(r.out, "High traffic generated alert - hits = %d, triggered at %s\n", event.Hits, formatTime(st.Start))
	case models.Recovering:
		_, err = fmt.Fprintf(r.out, "Recovered from high traffic alert, triggered at %s\n", formatTime(st.End))
	case models.Sustained, models.Inactive:
	}
	return err
}

// Close is a no-op; the writer belongs to the caller.
func (r *Renderer) Close() error {
	return nil
}

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	return t
}

func formatTime(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(timeLayout)
}

func share(count, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", float64(count)/float64(total)*100)
}

type errorCount struct {
	code  uint16
	count int
}

func sortedErrors(m map[uint16]int) []errorCount {
	out := make([]errorCount, 0, len(m))
	for code, count := range m {
		out = append(out, errorCount{code: code, count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].code < out[j].code
	})
	return out
}

type keyCount struct {
	key   string
	count int
}

func sortedCounts(m map[string]int) []keyCount {
	out := make([]keyCount, 0, len(m))
	for key, count := range m {
		out = append(out, keyCount{key: key, count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	return out
}
