package earnings

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// CLOCK TIME - Wall-clock time of day (no date component)
// =============================================================================

// ClockTime is a wall-clock time of day. Schedules are defined in terms of
// ClockTime pairs; all shift math happens in minutes since midnight.
type ClockTime struct {
	Hour   int
	Minute int
}

const minutesPerDay = 24 * 60

// ParseClock parses "HH:MM". Malformed input degrades to midnight rather
// than returning an error: schedule fields come from user profiles and a
// bad value must never crash the engine.
func ParseClock(s string) ClockTime {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return ClockTime{}
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return ClockTime{}
	}
	return ClockTime{Hour: h, Minute: m}
}

// Minutes returns minutes since midnight.
func (c ClockTime) Minutes() int { return c.Hour*60 + c.Minute }

func (c ClockTime) IsZero() bool { return c.Hour == 0 && c.Minute == 0 }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// MarshalText stores ClockTime as "HH:MM" in JSON and SQL.
func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ClockTime) UnmarshalText(b []byte) error {
	*c = ParseClock(string(b))
	return nil
}

// ClockOf extracts the time-of-day component of a timestamp, in the
// timestamp's own location. All date keying uses local civil time.
func ClockOf(t time.Time) ClockTime {
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}
}
