package shift

import (
	"fmt"
	"time"
)

// ParseClock converts "HH:MM" or "HH:MM:SS" into minutes after midnight.
// Seconds are truncated.
func ParseClock(clock string) (int, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, clock); err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidClock, clock)
}

// MinutesPerDay bounds every shift window; windows never cross midnight.
const MinutesPerDay = 24 * 60

// FormatClock renders minutes after midnight as "HH:MM". Values outside a
// single day wrap onto the clock.
func FormatClock(minutes int) string {
	minutes = ((minutes % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
