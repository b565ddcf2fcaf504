package clickhouse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"logwatch/pkg/models"
)

// Config configures the ClickHouse HTTP writer.
type Config struct {
	URL          string
	Database     string
	SummaryTable string
	AlertTable   string
	Username     string
	Password     string
	Timeout      time.Duration
	Headers      map[string]string
}

// Writer inserts summaries and alert edges into ClickHouse via HTTP JSONEachRow.
type Writer struct {
	summaryEndpoint string
	alertEndpoint   string
	headers         map[string]string
	client          *http.Client
}

// summaryRow is one row of the summary table.
type summaryRow struct {
	FromDate    int64          `json:"from_date"`
	ToDate      int64          `json:"to_date"`
	TotalHits   int            `json:"total_hits"`
	Bytes       uint64         `json:"bytes"`
	HTTPErrors  map[string]int `json:"http_errors"`
	SectionHits map[string]int `json:"section_hits"`
	RuleHits    map[string]int `json:"rule_hits"`
}

// alertRow is one row of the alert table.
type alertRow struct {
	State     string  `json:"state"`
	Time      int64   `json:"time"`
	Hits      int     `json:"hits"`
	Rate      float64 `json:"rate"`
	Threshold float64 `json:"threshold"`
}

// NewWriter creates a ClickHouse HTTP writer.
func NewWriter(cfg Config) (*Writer, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("clickhouse URL is empty")
	}
	if cfg.Database == "" {
		cfg.Database = "default"
	}
	if cfg.SummaryTable == "" {
		cfg.SummaryTable = "summaries"
	}
	if cfg.AlertTable == "" {
		cfg.AlertTable = "alerts"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	headers := map[string]string{}
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	if cfg.Username != "" {
		headers["X-ClickHouse-User"] = cfg.Username
	}
	if cfg.Password != "" {
		headers["X-ClickHouse-Key"] = cfg.Password
	}

	base := strings.TrimRight(cfg.URL, "/")
	return &Writer{
		summaryEndpoint: insertEndpoint(base, cfg.Database, cfg.SummaryTable),
		alertEndpoint:   insertEndpoint(base, cfg.Database, cfg.AlertTable),
		headers:         headers,
		client:          &http.Client{Timeout: timeout},
	}, nil
}

// RenderSummary inserts one summary row.
func (w *Writer) RenderSummary(stats *models.SummaryStats) error {
	row := summaryRow{
		FromDate:    stats.FromDate,
		ToDate:      stats.ToDate,
		TotalHits:   stats.TotalHits,
		Bytes:       stats.Bytes,
		HTTPErrors:  make(map[string]int, len(stats.HTTPErrors)),
		SectionHits: stats.SectionHits,
		RuleHits:    stats.RuleHits,
	}
	for code, n := range stats.HTTPErrors {
		row.HTTPErrors[fmt.Sprint(code)] = n
	}
	if row.SectionHits == nil {
		row.SectionHits = map[string]int{}
	}
	if row.RuleHits == nil {
		row.RuleHits = map[string]int{}
	}
	return w.insert(w.summaryEndpoint, row)
}

// RenderAlert inserts onset and recovery rows. Sustained events are not stored.
func (w *Writer) RenderAlert(event models.AlertEvent) error {
	if !models.Reportable(event.State) {
		return nil
	}
	ts, _ := models.StateTime(event.State)
	return w.insert(w.alertEndpoint, alertRow{
		State:     event.State.Name(),
		Time:      ts,
		Hits:      event.Hits,
		Rate:      event.Rate,
		Threshold: event.Threshold,
	})
}

func (w *Writer) insert(endpoint string, row any) error {
	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(row); err != nil {
		return fmt.Errorf("failed to marshal clickhouse row: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.client.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("clickhouse request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 300 {
		return fmt.Errorf("clickhouse request failed with status %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}
	return nil
}

// Close releases resources.
func (w *Writer) Close() error {
	w.client.CloseIdleConnections()
	return nil
}

func insertEndpoint(base, database, table string) string {
	q := fmt.Sprintf("INSERT INTO %s.%s FORMAT JSONEachRow", quoteIdent(database), quoteIdent(table))
	return base + "/?query=" + url.QueryEscape(q)
}

func quoteIdent(v string) string {
	if v == "" {
		return ""
	}
	v = strings.ReplaceAll(v, "`", "")
	return "`" + v + "`"
}
