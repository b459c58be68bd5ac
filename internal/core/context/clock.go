package context

import (
	"context"
	"time"
)

type todayKey struct{}

// WithToday pins the business date seen by Today.
func WithToday(ctx context.Context, day time.Time) context.Context {
	return context.WithValue(ctx, todayKey{}, TruncateDay(day))
}

// Today returns the business date: the pinned one if present, otherwise the local calendar day.
// Period expiry and item auto-deactivation compare against this value.
func Today(ctx context.Context) time.Time {
	if d, ok := ctx.Value(todayKey{}).(time.Time); ok {
		return d
	}
	return TruncateDay(time.Now())
}

// TruncateDay drops the clock part and normalizes to UTC midnight.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
