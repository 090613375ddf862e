package rates

import "time"

// Window is a fixed-window counter. The zero value opens a window on the
// first Allow.
type Window struct {
	Start time.Time
	Count int
}

// Allow counts one event at now and reports whether it fits within max per
// window. When it does not, retry is how long until the window resets.
// A zero window or non-positive max disables limiting.
func (w *Window) Allow(now time.Time, window time.Duration, max int) (ok bool, retry time.Duration) {
	if window <= 0 || max <= 0 {
		return true, 0
	}
	if w.Start.IsZero() || now.Sub(w.Start) >= window || now.Before(w.Start) {
		w.Start = now
		w.Count = 0
	}
	w.Count++
	if w.Count <= max {
		return true, 0
	}
	return false, w.Start.Add(window).Sub(now)
}
