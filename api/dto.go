/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY ON THE WIRE:
  Monetary request fields are strings in the Turkish user format
  ("30.000,50"); responses carry both a plain decimal string and a
  tr-TR formatted display string.

VALIDATION:
  Request types carry go-playground/validator tags; handlers run the
  shared validator before touching domain logic.

SEE ALSO:
  - handlers.go: Uses these types
  - earnings/money.go: ParseAmount / FormatAmount
*/
package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/tim/earnings-engine/earnings"
)

var validate = validator.New()

// =============================================================================
// WORKER / PROFILE
// =============================================================================

type ShiftProfileDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

type ScheduleDTO struct {
	Type          string            `json:"type" validate:"omitempty,oneof=fixed rotating"`
	Start         string            `json:"start,omitempty"`
	End           string            `json:"end,omitempty"`
	Shifts        []ShiftProfileDTO `json:"shifts,omitempty" validate:"dive"`
	ActiveShiftID string            `json:"activeShiftId,omitempty"`
}

type CreateWorkerRequest struct {
	Name          string       `json:"name" validate:"required"`
	MonthlySalary string       `json:"monthlySalary" validate:"required"`
	WorkingDays   int          `json:"workingDays" validate:"omitempty,gt=0"`
	Schedule      *ScheduleDTO `json:"schedule,omitempty"`
}

type UpdateProfileRequest struct {
	MonthlySalary string       `json:"monthlySalary" validate:"required"`
	WorkingDays   int          `json:"workingDays" validate:"omitempty,gt=0"`
	Schedule      *ScheduleDTO `json:"schedule,omitempty"`
}

type WorkerDTO struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	MonthlySalary string      `json:"monthlySalary"`
	WorkingDays   int         `json:"workingDays"`
	Schedule      ScheduleDTO `json:"schedule"`
	DailySalary   string      `json:"dailySalary"`
	HourlyRate    string      `json:"hourlyRate"`
	CreatedAt     string      `json:"createdAt"`
}

// toSchedule converts the wire form, falling back to onboarding defaults
// for missing fields.
func (d *ScheduleDTO) toSchedule() earnings.WorkSchedule {
	if d == nil {
		return earnings.DefaultSchedule()
	}

	switch d.Type {
	case "rotating":
		shifts := make([]earnings.ShiftProfile, len(d.Shifts))
		for i, sp := range d.Shifts {
			shifts[i] = earnings.ShiftProfile{
				ID:    sp.ID,
				Name:  sp.Name,
				Start: earnings.ParseClock(sp.Start),
				End:   earnings.ParseClock(sp.End),
			}
		}
		return earnings.WorkSchedule{
			Kind:          earnings.ScheduleRotating,
			Shifts:        shifts,
			ActiveShiftID: d.ActiveShiftID,
		}
	default:
		sched := earnings.WorkSchedule{
			Kind:  earnings.ScheduleFixed,
			Start: earnings.ParseClock(d.Start),
			End:   earnings.ParseClock(d.End),
		}
		if sched.Start.IsZero() && sched.End.IsZero() {
			return earnings.DefaultSchedule()
		}
		return sched
	}
}

func scheduleDTO(s earnings.WorkSchedule) ScheduleDTO {
	dto := ScheduleDTO{Type: string(s.Kind)}
	switch s.Kind {
	case earnings.ScheduleRotating:
		dto.ActiveShiftID = s.ActiveShiftID
		dto.Shifts = make([]ShiftProfileDTO, len(s.Shifts))
		for i, sp := range s.Shifts {
			dto.Shifts[i] = ShiftProfileDTO{
				ID:    sp.ID,
				Name:  sp.Name,
				Start: sp.Start.String(),
				End:   sp.End.String(),
			}
		}
	default:
		dto.Start = s.Start.String()
		dto.End = s.End.String()
	}
	return dto
}

func workerDTO(w earnings.Worker) WorkerDTO {
	return WorkerDTO{
		ID:            string(w.ID),
		Name:          w.Name,
		MonthlySalary: w.Profile.MonthlySalary.String(),
		WorkingDays:   w.Profile.WorkingDaysPerMonth,
		Schedule:      scheduleDTO(w.Profile.Schedule),
		DailySalary:   w.Profile.DailySalary().StringFixed(2),
		HourlyRate:    w.Profile.HourlyRate().StringFixed(2),
		CreatedAt:     w.CreatedAt.Format("2006-01-02"),
	}
}

// =============================================================================
// EARNINGS
// =============================================================================

type ShiftWindowDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type EarningsDTO struct {
	InstantEarnings   string         `json:"instantEarnings"`
	FormattedEarnings string         `json:"formattedEarnings"`
	ProgressPercent   float64        `json:"progressPercent"`
	IsWorking         bool           `json:"isWorking"`
	DailySalary       string         `json:"dailySalary"`
	CurrentShift      ShiftWindowDTO `json:"currentShift"`
}

func earningsDTO(snap earnings.EarningsSnapshot) EarningsDTO {
	return EarningsDTO{
		InstantEarnings:   snap.InstantEarnings.StringFixed(2),
		FormattedEarnings: earnings.FormatAmount(snap.InstantEarnings),
		ProgressPercent:   snap.ProgressPercent,
		IsWorking:         snap.IsWorking,
		DailySalary:       snap.DailySalary.StringFixed(2),
		CurrentShift: ShiftWindowDTO{
			Start: snap.Shift.Start.String(),
			End:   snap.Shift.End.String(),
		},
	}
}

// =============================================================================
// ATTENDANCE
// =============================================================================

type SetAttendanceRequest struct {
	Status        string  `json:"status" validate:"required,oneof=worked absent paid_leave"`
	OvertimeHours float64 `json:"overtimeHours" validate:"gte=0,lte=12"`
	OvertimeRate  float64 `json:"overtimeRate" validate:"omitempty,gte=1,lte=3"`
}

type AttendanceRecordDTO struct {
	Status        string  `json:"status"`
	OvertimeHours float64 `json:"overtimeHours,omitempty"`
	OvertimeRate  float64 `json:"overtimeRate,omitempty"`
	Source        string  `json:"source,omitempty"`
}

type ReconcileDTO struct {
	Backfilled      []string `json:"backfilled"`
	LastCheckedDate string   `json:"lastCheckedDate"`
	Changed         bool     `json:"changed"`
}

// =============================================================================
// SUMMARY / ANALYTICS
// =============================================================================

type SummaryDTO struct {
	Year           int     `json:"year"`
	Month          int     `json:"month"`
	TotalEarnings  string  `json:"totalEarnings"`
	FormattedTotal string  `json:"formattedTotal"`
	OvertimeHours  float64 `json:"overtimeHours"`
	OvertimePay    string  `json:"overtimePay"`
	WorkedDays     int     `json:"workedDays"`
	// Today's live contribution, added on top of the stored total. The
	// aggregator never counts today; this field is where it comes back in.
	LiveEarnings  string `json:"liveEarnings"`
	CombinedTotal string `json:"combinedTotal"`
}

type CategoryTotalDTO struct {
	Category       string `json:"category"`
	Total          string `json:"total"`
	FormattedTotal string `json:"formattedTotal"`
}

type AnalyticsDTO struct {
	Categories       []CategoryTotalDTO `json:"categories"`
	TotalSpent       string             `json:"totalSpent"`
	TotalEarned      string             `json:"totalEarned"`
	NetBalance       string             `json:"netBalance"`
	TotalHoursWorked string             `json:"totalHoursWorked"`
}

// =============================================================================
// TRANSACTIONS (spend entries)
// =============================================================================

type CreateTransactionRequest struct {
	Amount   string `json:"amount" validate:"required"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

type TransactionDTO struct {
	ID              string `json:"id"`
	Amount          string `json:"amount"`
	FormattedAmount string `json:"formattedAmount"`
	Title           string `json:"title"`
	Category        string `json:"category"`
	TimeCost        string `json:"timeCost"`
	CreatedAt       string `json:"createdAt"`
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := errorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
