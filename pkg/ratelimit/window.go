package ratelimit

import (
	"time"
)

// window is the admission record: an ordered slice of timestamps, one per
// admitted call. Entries older than the period are logically expired and
// pruned lazily on each query; there is no background sweep.
//
// window is not synchronized. The owning Gate holds its mutex across every
// call, which keeps the check-capacity/record pair atomic.
type window struct {
	period time.Duration
	stamps []time.Time
}

func newWindow(period time.Duration) *window {
	return &window{period: period}
}

// prune drops all entries whose timestamp is at or before now-period.
// Entries are appended in time order, so a single cut point suffices.
func (w *window) prune(now time.Time) {
	cutoff := now.Add(-w.period)

	i := 0
	for i < len(w.stamps) && !w.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		n := copy(w.stamps, w.stamps[i:])
		w.stamps = w.stamps[:n]
	}
}

// len returns the number of recorded entries. Callers prune first when
// they need the non-expired count.
func (w *window) len() int {
	return len(w.stamps)
}

// record appends an admission at now. The caller must have verified
// capacity under the Gate's lock; record does not re-check.
func (w *window) record(now time.Time) {
	w.stamps = append(w.stamps, now)
}

// nextAvailableAt returns when the oldest non-expired entry leaves the
// window. Only meaningful when the window is at capacity (non-empty);
// the result is then strictly after now, since anything already expired
// was pruned.
func (w *window) nextAvailableAt() time.Time {
	return w.stamps[0].Add(w.period)
}
