package earnings_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tim/earnings-engine/earnings"
)

// =============================================================================
// JSON BOUNDARY - canonical and legacy forms
// =============================================================================

func TestAttendanceRecord_UnmarshalObjectForm(t *testing.T) {
	var rec earnings.AttendanceRecord
	err := json.Unmarshal([]byte(`{"status":"worked","overtimeHours":2,"overtimeRate":1.5,"source":"manual"}`), &rec)
	require.NoError(t, err)

	assert.Equal(t, earnings.StatusWorked, rec.Status)
	assert.Equal(t, 2.0, rec.OvertimeHours)
	assert.Equal(t, 1.5, rec.OvertimeRate)
	assert.Equal(t, earnings.SourceManual, rec.Source)
}

func TestAttendanceRecord_UnmarshalLegacyStringForm(t *testing.T) {
	// Old logs store just the status string per date.
	var rec earnings.AttendanceRecord
	err := json.Unmarshal([]byte(`"worked"`), &rec)
	require.NoError(t, err)

	assert.Equal(t, earnings.StatusWorked, rec.Status)
	assert.Zero(t, rec.OvertimeHours)
	assert.Equal(t, 1.0, rec.OvertimeRate)
}

func TestAttendanceLog_UnmarshalMixedForms(t *testing.T) {
	raw := `{
		"2025-03-10": "worked",
		"2025-03-11": {"status": "absent", "overtimeHours": 4},
		"2025-03-12": {"status": "worked", "overtimeHours": 3, "overtimeRate": 2}
	}`

	var log earnings.AttendanceLog
	require.NoError(t, json.Unmarshal([]byte(raw), &log))
	require.Len(t, log, 3)

	legacy, ok := log.Lookup(earnings.NewDate(2025, 3, 10))
	require.True(t, ok)
	assert.Equal(t, earnings.StatusWorked, legacy.Status)

	// Overtime on a non-worked day is dropped during normalization.
	absent, _ := log.Lookup(earnings.NewDate(2025, 3, 11))
	assert.Equal(t, earnings.StatusAbsent, absent.Status)
	assert.Zero(t, absent.OvertimeHours)

	worked, _ := log.Lookup(earnings.NewDate(2025, 3, 12))
	assert.Equal(t, 3.0, worked.OvertimeHours)
	assert.Equal(t, 2.0, worked.OvertimeRate)
}

// =============================================================================
// NORMALIZATION
// =============================================================================

func TestAttendanceRecord_Normalize(t *testing.T) {
	tests := []struct {
		name      string
		in        earnings.AttendanceRecord
		wantHours float64
		wantRate  float64
	}{
		{
			name:      "worked day keeps overtime",
			in:        earnings.AttendanceRecord{Status: earnings.StatusWorked, OvertimeHours: 2, OvertimeRate: 1.5},
			wantHours: 2, wantRate: 1.5,
		},
		{
			name:      "worked day with missing rate gets 1x",
			in:        earnings.AttendanceRecord{Status: earnings.StatusWorked, OvertimeHours: 2},
			wantHours: 2, wantRate: 1,
		},
		{
			name:      "negative hours clamp to zero",
			in:        earnings.AttendanceRecord{Status: earnings.StatusWorked, OvertimeHours: -3, OvertimeRate: 2},
			wantHours: 0, wantRate: 2,
		},
		{
			name:      "paid leave drops overtime",
			in:        earnings.AttendanceRecord{Status: earnings.StatusPaidLeave, OvertimeHours: 5, OvertimeRate: 2},
			wantHours: 0, wantRate: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			assert.Equal(t, tt.wantHours, got.OvertimeHours)
			assert.Equal(t, tt.wantRate, got.OvertimeRate)
		})
	}
}

// =============================================================================
// PRICING
// =============================================================================

func TestAttendanceRecord_Earnings(t *testing.T) {
	daily := money(1000)
	hourly := money(125)

	worked := earnings.AttendanceRecord{Status: earnings.StatusWorked, OvertimeHours: 2, OvertimeRate: 2}
	assertMoneyEqual(t, money(1500), worked.Earnings(daily, hourly))
	assertMoneyEqual(t, money(500), worked.OvertimePay(hourly))

	leave := earnings.AttendanceRecord{Status: earnings.StatusPaidLeave}
	assertMoneyEqual(t, money(1000), leave.Earnings(daily, hourly))
	assert.True(t, leave.OvertimePay(hourly).IsZero())

	absent := earnings.AttendanceRecord{Status: earnings.StatusAbsent}
	assert.True(t, absent.Earnings(daily, hourly).IsZero())
}

func TestAttendanceStatus_Valid(t *testing.T) {
	assert.True(t, earnings.StatusWorked.Valid())
	assert.True(t, earnings.StatusAbsent.Valid())
	assert.True(t, earnings.StatusPaidLeave.Valid())
	assert.False(t, earnings.AttendanceStatus("vacation").Valid())
	assert.False(t, earnings.AttendanceStatus("").Valid())
}
