package alerts

// Window keeps the timestamps seen within the trailing TTL, oldest first.
// Timestamps must be pushed in non-decreasing order.
type Window struct {
	entries []int64
	head    int
}

// NewWindow creates an empty window.
func NewWindow() *Window {
	return &Window{}
}

// Evict drops entries older than now-ttl and returns how many were removed.
func (w *Window) Evict(now, ttl int64) int {
	cutoff := now - ttl
	start := w.head
	for w.head < len(w.entries) && w.entries[w.head] < cutoff {
		w.head++
	}
	evicted := w.head - start
	w.compact()
	return evicted
}

// Push appends a timestamp.
func (w *Window) Push(ts int64) {
	w.entries = append(w.entries, ts)
}

// Len is the number of timestamps kept as of the last Evict.
func (w *Window) Len() int {
	return len(w.entries) - w.head
}

// Rate is the average requests per second over the TTL.
func (w *Window) Rate(ttl int64) float64 {
	return float64(w.Len()) / float64(ttl)
}

// Oldest returns the first live timestamp.
func (w *Window) Oldest() (int64, bool) {
	if w.Len() == 0 {
		return 0, false
	}
	return w.entries[w.head], true
}

// compact reclaims the evicted prefix once it is at least half the slice.
func (w *Window) compact() {
	if w.head == 0 {
		return
	}
	if w.head == len(w.entries) {
		w.entries = w.entries[:0]
		w.head = 0
		return
	}
	if w.head*2 < len(w.entries) {
		return
	}
	n := copy(w.entries, w.entries[w.head:])
	w.entries = w.entries[:n]
	w.head = 0
}
