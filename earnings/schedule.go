/*
schedule.go - Work schedules and shift resolution

PURPOSE:
  Resolves a worker's schedule into the shift window that governs today's
  accrual. Two schedule kinds exist:
    - Fixed:    one start/end pair, every workday
    - Rotating: a set of named shift profiles, one currently active

OVERNIGHT SHIFTS:
  A shift whose end clock-time is numerically less than its start crosses
  midnight (22:00-06:00). All window math converts to minutes since
  midnight and adds a day's worth of minutes to the end before
  subtracting, so durations are never negative.

SEE ALSO:
  - accrual.go: uses the resolved window for live earnings
  - reconcile.go: uses Completed() to decide whether today is backfillable
*/
package earnings

import "time"

// =============================================================================
// WORK SCHEDULE
// =============================================================================

type ScheduleKind string

const (
	ScheduleFixed    ScheduleKind = "fixed"
	ScheduleRotating ScheduleKind = "rotating"
)

// ShiftProfile is one entry of a rotating schedule.
type ShiftProfile struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Start ClockTime `json:"start"`
	End   ClockTime `json:"end"`
}

// WorkSchedule is polymorphic over the two kinds. For Fixed, Start/End are
// set; for Rotating, Shifts and ActiveShiftID are.
type WorkSchedule struct {
	Kind          ScheduleKind   `json:"type"`
	Start         ClockTime      `json:"start,omitempty"`
	End           ClockTime      `json:"end,omitempty"`
	Shifts        []ShiftProfile `json:"shifts,omitempty"`
	ActiveShiftID string         `json:"activeShiftId,omitempty"`
}

// Default onboarding schedule: 09:00-17:00 fixed.
func DefaultSchedule() WorkSchedule {
	return WorkSchedule{
		Kind:  ScheduleFixed,
		Start: ClockTime{Hour: 9},
		End:   ClockTime{Hour: 17},
	}
}

// =============================================================================
// SHIFT WINDOW - The resolved start/end pair for today
// =============================================================================

type ShiftWindow struct {
	Start ClockTime `json:"start"`
	End   ClockTime `json:"end"`
}

// IsOvernight reports whether the window crosses midnight.
func (w ShiftWindow) IsOvernight() bool {
	return w.End.Minutes() < w.Start.Minutes()
}

// DurationMinutes returns the window length with overnight wrap applied.
// Always >= 0.
func (w ShiftWindow) DurationMinutes() int {
	start := w.Start.Minutes()
	end := w.End.Minutes()
	if end < start {
		end += minutesPerDay
	}
	return end - start
}

// DurationHours returns the window length in hours.
func (w ShiftWindow) DurationHours() float64 {
	return float64(w.DurationMinutes()) / 60
}

// Completed reports whether today's work period has ended at the given
// instant. For a daytime shift this is simply now >= end. For an overnight
// shift, "completed" means now falls in [end, start): the shift that
// started yesterday evening has finished and the next one has not begun.
func (w ShiftWindow) Completed(now time.Time) bool {
	current := ClockOf(now).Minutes()
	start := w.Start.Minutes()
	end := w.End.Minutes()

	if end < start {
		return current >= end && current < start
	}
	return current >= end
}

// =============================================================================
// SCHEDULE RESOLVER
// =============================================================================

// ResolveShift returns the currently active shift window for a schedule.
// For Rotating, the shift whose id matches ActiveShiftID is used, falling
// back to the first shift when the id is absent or unknown. An empty
// schedule resolves to the onboarding default.
func ResolveShift(s WorkSchedule) ShiftWindow {
	switch s.Kind {
	case ScheduleRotating:
		if len(s.Shifts) == 0 {
			def := DefaultSchedule()
			return ShiftWindow{Start: def.Start, End: def.End}
		}
		for _, p := range s.Shifts {
			if p.ID == s.ActiveShiftID {
				return ShiftWindow{Start: p.Start, End: p.End}
			}
		}
		return ShiftWindow{Start: s.Shifts[0].Start, End: s.Shifts[0].End}

	case ScheduleFixed:
		fallthrough
	default:
		if s.Start.IsZero() && s.End.IsZero() {
			def := DefaultSchedule()
			return ShiftWindow{Start: def.Start, End: def.End}
		}
		return ShiftWindow{Start: s.Start, End: s.End}
	}
}
