package chrono

import (
	"context"
	"time"
)

// API is what anything depending on the wall clock or on waiting should use.
type API interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, in which case it returns ctx.Err().
	Sleep(ctx context.Context, d time.Duration) error
}

// StandardImpl is the real clock, times are reported in UTC.
type StandardImpl struct{}

func NewStandardImpl() StandardImpl {
	return StandardImpl{}
}

func (StandardImpl) Now() time.Time {
	return time.Now().UTC()
}

func (StandardImpl) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FormatDate renders the calendar date of t in YYYY-MM-DD form.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}
