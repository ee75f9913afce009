package analytics

import (
	"LinkGate-Backend/internal/domain"
	"fmt"
	"time"
)

const (
	DefaultRange = "7d"
	// MaxWindow bounds explicit from/to windows.
	MaxWindow = 366 * 24 * time.Hour
)

var ranges = map[string]time.Duration{
	"24h": 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
	"90d": 90 * 24 * time.Hour,
	"1y":  365 * 24 * time.Hour,
}

// ParseWindow resolves a range shorthand or explicit bounds into [from, to).
// Explicit bounds win over the shorthand. A date-only "to" includes that whole day.
func ParseWindow(rangeParam, fromParam, toParam string, now time.Time) (time.Time, time.Time, error) {
	now = now.UTC()

	if fromParam == "" && toParam == "" {
		if rangeParam == "" {
			rangeParam = DefaultRange
		}
		d, ok := ranges[rangeParam]
		if !ok {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: unknown range %q", domain.ErrValidation, rangeParam)
		}
		return now.Add(-d), now, nil
	}

	to := now
	if toParam != "" {
		t, dateOnly, err := parseBound(toParam)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid to: %v", domain.ErrValidation, err)
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1)
		}
		to = t
	}

	from := to.Add(-ranges[DefaultRange])
	if fromParam != "" {
		t, _, err := parseBound(fromParam)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid from: %v", domain.ErrValidation, err)
		}
		from = t
	}

	if !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from must be before to", domain.ErrValidation)
	}
	if to.Sub(from) > MaxWindow {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: window longer than %s", domain.ErrValidation, MaxWindow)
	}
	return from, to, nil
}

func parseBound(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), false, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("expected RFC3339 or YYYY-MM-DD, got %q", s)
	}
	return t, true, nil
}
