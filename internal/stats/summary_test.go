package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logwatch/pkg/models"
)

func record(date int64, status uint16, request string) models.Record {
	return models.Record{
		RemoteHost: "10.0.0.1",
		RFC931:     "-",
		AuthUser:   "apache",
		Date:       date,
		Request:    request,
		Status:     status,
		Bytes:      100,
	}
}

func TestSummarize(t *testing.T) {
	const now = 1_500_000_000
	batch := []models.Record{
		record(now, 200, "GET /api/user HTTP/1.0"),
		record(now, 200, "GET /api/user HTTP/1.0"),
		record(now, 400, "GET /api/user HTTP/1.0"),
		record(now, 500, "GET / HTTP/1.0"),
	}

	got, err := Summarize(batch)
	require.NoError(t, err)
	assert.Equal(t, 4, got.TotalHits)
	assert.Equal(t, map[uint16]int{400: 1, 500: 1}, got.HTTPErrors)
	assert.Equal(t, map[string]int{"api": 3, "": 1}, got.SectionHits)
	assert.Equal(t, int64(now), got.FromDate)
	assert.Equal(t, int64(now), got.ToDate)
	assert.Equal(t, uint64(400), got.Bytes)
	assert.Empty(t, got.RuleHits)
}

func TestSummarizeSpanAndRuleHits(t *testing.T) {
	a := record(100, 404, "GET /admin HTTP/1.0")
	a.Tags = []string{"admin-probe"}
	b := record(104, 200, "GET /report HTTP/1.0")
	c := record(111, 403, "POST /admin/login HTTP/1.0")
	c.Tags = []string{"admin-probe", "login"}

	got, err := Summarize([]models.Record{a, b, c})
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.FromDate)
	assert.Equal(t, int64(111), got.ToDate)
	assert.Equal(t, int64(11), got.Span())
	assert.Equal(t, map[string]int{"admin-probe": 2, "login": 1}, got.RuleHits)
}

func TestSummarizeEmptyBatch(t *testing.T) {
	got, err := Summarize(nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)
	assert.Nil(t, got)
}

func TestSummarizeCompleteness(t *testing.T) {
	requests := []string{"GET / HTTP/1.0", "GET /api HTTP/1.0", "PUT /user/1 HTTP/1.0", "DELETE /123-abc HTTP/1.0"}
	statuses := []uint16{200, 204, 301, 400, 401, 403, 404, 500}

	var batch []models.Record
	for i := 0; i < 97; i++ {
		batch = append(batch, record(int64(1000+i/10), statuses[i%len(statuses)], requests[i%len(requests)]))
	}

	got, err := Summarize(batch)
	require.NoError(t, err)

	sections := 0
	for _, n := range got.SectionHits {
		sections += n
	}
	errs := 0
	for code, n := range got.HTTPErrors {
		assert.GreaterOrEqual(t, code, uint16(400))
		errs += n
	}
	assert.Equal(t, got.TotalHits, sections)
	assert.LessOrEqual(t, errs, got.TotalHits)
}
