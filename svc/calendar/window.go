package calendar

import "time"

// Window is the span of events fetched around now.
type Window struct {
	LookBack   time.Duration
	LookAhead  time.Duration
	MaxResults int
}

// Range returns [now-LookBack, now+LookAhead] in UTC.
func (w Window) Range(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	return now.Add(-w.LookBack), now.Add(w.LookAhead)
}
