package alerts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logwatch/pkg/models"
)

func observeAll(m *Monitor, stamps []int64) []models.AlertState {
	out := make([]models.AlertState, 0, len(stamps))
	for _, ts := range stamps {
		out = append(out, m.Observe(ts).State)
	}
	return out
}

func TestNewMonitorRejectsNonPositiveConfig(t *testing.T) {
	_, err := NewMonitor(Config{TTL: 0, Threshold: 1})
	assert.Error(t, err)
	_, err = NewMonitor(Config{TTL: 1, Threshold: 0})
	assert.Error(t, err)
	_, err = NewMonitor(Config{TTL: -5, Threshold: -1})
	assert.Error(t, err)
}

func TestMonitorDoesNotTriggerBelowThreshold(t *testing.T) {
	m, err := NewMonitor(Config{TTL: 1, Threshold: 10})
	require.NoError(t, err)
	for _, st := range observeAll(m, []int64{5, 5, 5, 5, 5, 5, 5, 5}) {
		assert.Equal(t, models.Inactive{}, st)
	}
}

func TestMonitorChecksBeforeAdmitting(t *testing.T) {
	const now = int64(1_600_000_000)
	m, err := NewMonitor(Config{TTL: 1, Threshold: 2})
	require.NoError(t, err)

	got := observeAll(m, []int64{now, now, now, now})
	assert.Equal(t, []models.AlertState{
		models.Inactive{},
		models.Inactive{},
		models.Onset{Start: now},
		models.Sustained{},
	}, got)
	assert.Equal(t, 4, m.WindowLen())
}

func TestMonitorAdmitFirst(t *testing.T) {
	const now = int64(1_600_000_000)
	m, err := NewMonitor(Config{TTL: 1, Threshold: 2, AdmitFirst: true})
	require.NoError(t, err)

	got := observeAll(m, []int64{now, now, now, now})
	assert.Equal(t, []models.AlertState{
		models.Inactive{},
		models.Onset{Start: now},
		models.Sustained{},
		models.Sustained{},
	}, got)
}

func TestMonitorEventCarriesWindowStats(t *testing.T) {
	m, err := NewMonitor(Config{TTL: 2, Threshold: 1})
	require.NoError(t, err)

	m.Observe(10)
	m.Observe(10)
	ev := m.Observe(11)
	assert.Equal(t, 2, ev.Hits)
	assert.InDelta(t, 1.0, ev.Rate, 1e-9)
	assert.Equal(t, 1.0, ev.Threshold)
	assert.Equal(t, models.Onset{Start: 11}, ev.State)
}

func TestMonitorSingleAlertPerEpisode(t *testing.T) {
	m, err := NewMonitor(Config{TTL: 10, Threshold: 1})
	require.NoError(t, err)

	var stamps []int64
	for s := int64(100); s < 130; s++ {
		stamps = append(stamps, s, s)
	}
	stamps = append(stamps, 200, 201, 202)

	got := observeAll(m, stamps)

	var names []string
	for _, st := range got {
		if len(names) > 0 && names[len(names)-1] == st.Name() {
			continue
		}
		names = append(names, st.Name())
	}
	assert.Equal(t, []string{"inactive", "onset", "sustained", "recovering", "inactive"}, names)

	onsets, recoveries := 0, 0
	for i, st := range got {
		switch st.(type) {
		case models.Onset:
			onsets++
			if i > 0 {
				assert.NotEqual(t, "onset", got[i-1].Name())
			}
		case models.Recovering:
			recoveries++
			assert.Equal(t, models.Recovering{End: 200}, st)
		}
	}
	assert.Equal(t, 1, onsets)
	assert.Equal(t, 1, recoveries)
}

func TestMonitorReopensAfterRecovering(t *testing.T) {
	m, err := NewMonitor(Config{TTL: 1, Threshold: 2})
	require.NoError(t, err)

	observeAll(m, []int64{1, 1, 1, 1})
	assert.Equal(t, models.Sustained{}, m.State())

	// a lone record after a gap empties the window and starts recovery
	assert.Equal(t, models.Recovering{End: 5}, m.Observe(5).State)
	m.Observe(5)
	// window now holds two records at 5, so the next one reopens the alert
	assert.Equal(t, models.Onset{Start: 5}, m.Observe(5).State)
}

func TestMonitorOldestTracksEviction(t *testing.T) {
	m, err := NewMonitor(Config{TTL: 10, Threshold: 100})
	require.NoError(t, err)

	_, ok := m.Oldest()
	assert.False(t, ok)

	observeAll(m, []int64{100, 105, 112})
	oldest, ok := m.Oldest()
	require.True(t, ok)
	assert.Equal(t, int64(105), oldest)

	m.Observe(200)
	oldest, ok = m.Oldest()
	require.True(t, ok)
	assert.Equal(t, int64(200), oldest)
	assert.Equal(t, 1, m.WindowLen())
}
