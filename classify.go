package n8nstatus

import "time"

// Raw status tokens the n8n backend writes. The set has shifted across
// schema versions and older rows may carry none at all, so Classify treats
// these as hints layered over the finished flag and timestamps.
const (
	rawStatusError    = "error"
	rawStatusCrashed  = "crashed"
	rawStatusCanceled = "canceled"
)

// Classify derives the presentation status and duration for a record. The
// rules are checked in order and the first match wins; later rules are
// intentionally more permissive catch-alls, so the order must not change.
// Classify is total: every record maps to exactly one status, and a nil
// duration means "not determinable", never a failure.
func Classify(record ExecutionRecord, now time.Time) (PresentationStatus, *time.Duration) {
	// Rule 1: the backend's own terminal tokens take precedence. A canceled
	// run is surfaced as canceled rather than folded into error.
	switch record.Status {
	case rawStatusCanceled:
		return StatusCanceled, elapsedBetween(record.StartedAt, record.StoppedAt)
	case rawStatusCrashed:
		return StatusError, elapsedBetween(record.StartedAt, record.StoppedAt)
	}

	// Rule 2: a cleanly finished run. The stored status decides success vs
	// error; anything other than an explicit error token counts as success.
	if record.Finished && record.StoppedAt != nil {
		status := StatusSuccess
		if record.Status == rawStatusError {
			status = StatusError
		}
		return status, elapsedBetween(record.StartedAt, record.StoppedAt)
	}

	// Rule 3: still in flight. Duration is live, computed against now.
	if !record.Finished && record.StoppedAt == nil {
		elapsed := now.Sub(record.StartedAt)
		if elapsed < 0 {
			elapsed = 0
		}
		return StatusRunning, &elapsed
	}

	// Rule 4: finished=false with a stop time. Waiting executions are stored
	// this way (stoppedAt holds the wake-up deadline), so treat the
	// combination conservatively as waiting.
	if !record.Finished && record.StoppedAt != nil {
		return StatusWaiting, nil
	}

	// Rule 5: catch-all for combinations no earlier rule claims, such as
	// finished=true with no stop time.
	return StatusUnknown, elapsedBetween(record.StartedAt, record.StoppedAt)
}

// elapsedBetween returns stopped-started, or nil when the stop time is
// missing or precedes the start (clock skew). A skewed pair reports an
// unknown duration rather than a fabricated zero.
func elapsedBetween(started time.Time, stopped *time.Time) *time.Duration {
	if stopped == nil || started.IsZero() {
		return nil
	}
	elapsed := stopped.Sub(started)
	if elapsed < 0 {
		return nil
	}
	return &elapsed
}
