package alerts

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowEvictRemovesExpired(t *testing.T) {
	now := int64(1_600_000_000)
	w := NewWindow()
	for _, ts := range []int64{now - 10000, now - 1000, now - 500, now - 100, now - 50, now} {
		w.Push(ts)
	}

	evicted := w.Evict(now, 500)
	assert.Equal(t, 2, evicted)
	assert.Equal(t, 4, w.Len())

	oldest, ok := w.Oldest()
	require.True(t, ok)
	assert.Equal(t, now-500, oldest)
}

func TestWindowEvictEverything(t *testing.T) {
	w := NewWindow()
	w.Push(1)
	w.Push(2)
	assert.Equal(t, 2, w.Evict(100, 10))
	assert.Equal(t, 0, w.Len())
	_, ok := w.Oldest()
	assert.False(t, ok)

	w.Push(100)
	assert.Equal(t, 1, w.Len())
}

func TestWindowRate(t *testing.T) {
	w := NewWindow()
	for i := 0; i < 6; i++ {
		w.Push(10)
	}
	assert.InDelta(t, 0.05, w.Rate(120), 1e-9)
	assert.InDelta(t, 6.0, w.Rate(1), 1e-9)
}

func TestWindowEvictionInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const ttl = 30

	w := NewWindow()
	var pushed []int64
	ts := int64(1000)
	for i := 0; i < 2000; i++ {
		ts += int64(rng.Intn(3))
		before := w.Len()
		w.Push(ts)
		pushed = append(pushed, ts)
		assert.Equal(t, before+1, w.Len(), "push must grow the window")

		if rng.Intn(4) == 0 {
			now := ts + int64(rng.Intn(40))
			before = w.Len()
			w.Evict(now, ttl)
			assert.LessOrEqual(t, w.Len(), before, "evict must not grow the window")

			want := 0
			for _, p := range pushed {
				if p >= now-ttl {
					want++
				}
			}
			require.Equal(t, want, w.Len())
			for i := w.head; i < len(w.entries); i++ {
				require.GreaterOrEqual(t, w.entries[i], now-ttl)
			}
			pushed = pushed[len(pushed)-w.Len():]
		}
	}
}
