package clickhouse

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logwatch/pkg/models"
)

type insert struct {
	query string
	user  string
	row   map[string]any
}

func newServer(t *testing.T, status int) (*httptest.Server, *[]insert, *sync.Mutex) {
	t.Helper()
	var (
		mu   sync.Mutex
		rows []insert
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		var row map[string]any
		_ = json.Unmarshal(data, &row)
		mu.Lock()
		rows = append(rows, insert{query: r.URL.Query().Get("query"), user: r.Header.Get("X-ClickHouse-User"), row: row})
		mu.Unlock()
		if status >= 300 {
			http.Error(w, "Code: 60. Table does not exist", status)
			return
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &rows, &mu
}

func TestWriterInsertsIntoTables(t *testing.T) {
	srv, rows, mu := newServer(t, http.StatusOK)

	w, err := NewWriter(Config{URL: srv.URL + "/", Database: "logwatch", Username: "writer"})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.RenderSummary(&models.SummaryStats{
		TotalHits:   3,
		HTTPErrors:  map[uint16]int{503: 2},
		SectionHits: map[string]int{"api": 3},
		Bytes:       120,
		FromDate:    10,
		ToDate:      12,
	}))
	require.NoError(t, w.RenderAlert(models.AlertEvent{State: models.Sustained{}}))
	require.NoError(t, w.RenderAlert(models.AlertEvent{State: models.Onset{Start: 11}, Hits: 3, Rate: 1.5, Threshold: 1}))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, *rows, 2)

	summary := (*rows)[0]
	assert.Equal(t, "INSERT INTO `logwatch`.`summaries` FORMAT JSONEachRow", summary.query)
	assert.Equal(t, "writer", summary.user)
	assert.Equal(t, map[string]any{"503": float64(2)}, summary.row["http_errors"])
	assert.Equal(t, map[string]any{}, summary.row["rule_hits"])
	assert.Equal(t, float64(120), summary.row["bytes"])

	alert := (*rows)[1]
	assert.Equal(t, "INSERT INTO `logwatch`.`alerts` FORMAT JSONEachRow", alert.query)
	assert.Equal(t, "onset", alert.row["state"])
	assert.Equal(t, float64(11), alert.row["time"])
}

func TestWriterReportsServerError(t *testing.T) {
	srv, _, _ := newServer(t, http.StatusNotFound)

	w, err := NewWriter(Config{URL: srv.URL})
	require.NoError(t, err)
	err = w.RenderAlert(models.AlertEvent{State: models.Recovering{End: 5}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Table does not exist")
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, "`a`", quoteIdent("a`"))
	assert.Equal(t, "", quoteIdent(""))
}
