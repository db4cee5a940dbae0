/*
handlers.go - HTTP API handlers for the earnings engine

PURPOSE:
  Exposes the earnings engine via REST API. Handles HTTP request and
  response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Workers:
    POST   /api/workers                      Create worker
    GET    /api/workers/{id}                 Profile + derived rates
    PUT    /api/workers/{id}/profile         Update salary/schedule

  Earnings:
    GET    /api/workers/{id}/earnings/live   Live snapshot (commits a
                                             completed unrecorded day)
    POST   /api/workers/{id}/reconcile       Session-start backfill
    GET    /api/workers/{id}/summary         Monthly totals + live add
    GET    /api/workers/{id}/analytics       Spend breakdown, net balance

  Attendance:
    GET    /api/workers/{id}/attendance      One month of records
    PUT    /api/workers/{id}/attendance/{date}  Explicit calendar edit

  Transactions:
    GET    /api/workers/{id}/transactions    List spend entries
    POST   /api/workers/{id}/transactions    Add entry
    PUT    /api/transactions/{id}            Edit entry
    DELETE /api/transactions/{id}            Delete entry

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors
  Persistence failures during live commit are logged and the snapshot is
  still returned (optimistic update; the reconciler repairs the gap).

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - scheduler.go: Server-side completion sweep
*/
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tim/earnings-engine/earnings"
	"github.com/tim/earnings-engine/spending"
	"github.com/tim/earnings-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      *sqlite.Store
	Ledger     *spending.Ledger
	Reconciler *earnings.Reconciler

	// Now supplies the clock; tests pin it to exercise shift boundaries.
	Now func() time.Time
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:      store,
		Ledger:     spending.NewLedger(store),
		Reconciler: earnings.NewReconciler(store),
		Now:        time.Now,
	}
}

// =============================================================================
// WORKER HANDLERS
// =============================================================================

// CreateWorker creates a worker profile.
func (h *Handler) CreateWorker(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	days := req.WorkingDays
	if days <= 0 {
		days = 22
	}

	worker := earnings.Worker{
		ID:   earnings.WorkerID(uuid.NewString()),
		Name: req.Name,
		Profile: earnings.FinancialProfile{
			MonthlySalary:       earnings.ParseAmount(req.MonthlySalary),
			WorkingDaysPerMonth: days,
			Schedule:            req.Schedule.toSchedule(),
		},
		CreatedAt: h.Now(),
	}

	if err := h.Store.SaveWorker(r.Context(), worker); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save worker", err)
		return
	}

	writeJSON(w, http.StatusCreated, workerDTO(worker))
}

// GetWorker returns a worker profile with derived rates.
func (h *Handler) GetWorker(w http.ResponseWriter, r *http.Request) {
	worker, ok := h.loadWorker(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, workerDTO(*worker))
}

// UpdateProfile replaces salary, working days, and schedule.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	worker, ok := h.loadWorker(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	days := req.WorkingDays
	if days <= 0 {
		days = worker.Profile.WorkingDaysPerMonth
	}
	schedule := worker.Profile.Schedule
	if req.Schedule != nil {
		schedule = req.Schedule.toSchedule()
	}

	profile := earnings.FinancialProfile{
		MonthlySalary:       earnings.ParseAmount(req.MonthlySalary),
		WorkingDaysPerMonth: days,
		Schedule:            schedule,
	}

	if err := h.Store.UpdateProfile(r.Context(), worker.ID, profile); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update profile", err)
		return
	}

	worker.Profile = profile
	writeJSON(w, http.StatusOK, workerDTO(*worker))
}

// =============================================================================
// EARNINGS HANDLERS
// =============================================================================

// GetLiveEarnings returns the instantaneous earnings snapshot. When the
// shift has completed and today has no record yet, the implicit worked
// record is committed; a failed commit is logged and the snapshot still
// returned (the next reconciliation repairs it).
func (h *Handler) GetLiveEarnings(w http.ResponseWriter, r *http.Request) {
	worker, ok := h.loadWorker(w, r)
	if !ok {
		return
	}

	now := h.Now()
	today := earnings.DateOf(now)

	logMap, err := h.Store.LoadLog(r.Context(), worker.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load attendance", err)
		return
	}

	var record *earnings.AttendanceRecord
	if rec, exists := logMap.Lookup(today); exists {
		record = &rec
	}

	snap := earnings.Snapshot(now, worker.Profile, record)

	if record == nil && snap.ProgressPercent >= 100 {
		if _, err := earnings.CommitCompletedDay(r.Context(), h.Store, worker.ID, worker.Profile, now); err != nil {
			log.Printf("[Earnings] Commit-on-completion failed for %s: %v", worker.ID, err)
		}
	}

	writeJSON(w, http.StatusOK, earningsDTO(snap))
}

// Reconcile runs the session-start backfill pass.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	worker, ok := h.loadWorker(w, r)
	if !ok {
		return
	}

	result, err := h.Reconciler.Reconcile(r.Context(), *worker, h.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Reconciliation failed", err)
		return
	}

	dto := ReconcileDTO{
		Backfilled:      make([]string, len(result.Backfilled)),
		LastCheckedDate: result.LastChecked.String(),
		Changed:         result.Changed,
	}
	for i, d := range result.Backfilled {
		dto.Backfilled[i] = d.String()
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetSummary returns the aggregated totals for a calendar month plus
// today's live contribution.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	worker, ok := h.loadWorker(w, r)
	if !ok {
		return
	}

	now := h.Now()
	year, month := queryMonth(r, now)
	today := earnings.DateOf(now)

	logMap, err := h.Store.LoadLog(r.Context(), worker.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load attendance", err)
		return
	}

	period := earnings.MonthPeriod(year, month)
	summary := earnings.Summarize(logMap, worker.Profile, period, today)

	// Today's share comes from the live engine, never the aggregator.
	live := decimal.Zero
	if period.Contains(today) {
		var record *earnings.AttendanceRecord
		if rec, exists := logMap.Lookup(today); exists {
			record = &rec
		}
		live = earnings.Snapshot(now, worker.Profile, record).InstantEarnings
	}
	combined := summary.TotalEarnings.Add(live)

	writeJSON(w, http.StatusOK, SummaryDTO{
		Year:           year,
		Month:          int(month),
		TotalEarnings:  summary.TotalEarnings.StringFixed(2),
		FormattedTotal: earnings.FormatCurrency(summary.TotalEarnings),
		OvertimeHours:  summary.OvertimeHours,
		OvertimePay:    summary.OvertimePay.StringFixed(2),
		WorkedDays:     summary.WorkedDays,
		LiveEarnings:   live.StringFixed(2),
		CombinedTotal:  combined.StringFixed(2),
	})
}

// GetAnalytics returns the spend breakdown and the net balance.
func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	worker, ok := h.loadWorker(w, r)
	if !ok {
		return
	}

	now := h.Now()
	today := earnings.DateOf(now)

	categories, totalSpent, err := h.Ledger.Breakdown(r.Context(), worker.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load spend entries", err)
		return
	}

	logMap, err := h.Store.LoadLog(r.Context(), worker.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load attendance", err)
		return
	}

	var record *earnings.AttendanceRecord
	if rec, exists := logMap.Lookup(today); exists {
		record = &rec
	}
	live := earnings.Snapshot(now, worker.Profile, record).InstantEarnings
	totalEarned := earnings.TotalEarned(logMap, worker.Profile, today).Add(live)
	net := totalEarned.Sub(totalSpent)

	// Hours of work these expenses cost, at the current rate.
	hoursWorked := "0.0"
	if rate := worker.Profile.HourlyRate(); rate.IsPositive() {
		hoursWorked = totalSpent.Div(rate).StringFixed(1)
	}

	dto := AnalyticsDTO{
		Categories:       make([]CategoryTotalDTO, len(categories)),
		TotalSpent:       totalSpent.StringFixed(2),
		TotalEarned:      totalEarned.StringFixed(2),
		NetBalance:       net.StringFixed(2),
		TotalHoursWorked: hoursWorked,
	}
	for i, c := range categories {
		dto.Categories[i] = CategoryTotalDTO{
			Category:       c.Category,
			Total:          c.Total.StringFixed(2),
			FormattedTotal: earnings.FormatCurrency(c.Total),
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// GetAttendance returns one calendar month of records.
func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	worker, ok := h.loadWorker(w, r)
	if !ok {
		return
	}

	year, month := queryMonth(r, h.Now())
	logMap, err := h.Store.LoadLog(r.Context(), worker.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load attendance", err)
		return
	}

	period := earnings.MonthPeriod(year, month)
	out := make(map[string]AttendanceRecordDTO)
	for date, rec := range logMap {
		if !period.Contains(date) {
			continue
		}
		out[date.String()] = AttendanceRecordDTO{
			Status:        string(rec.Status),
			OvertimeHours: rec.OvertimeHours,
			OvertimeRate:  rec.OvertimeRate,
			Source:        string(rec.Source),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// SetAttendance writes an explicit calendar edit for a date. Unlike
// backfill, user edits may overwrite.
func (h *Handler) SetAttendance(w http.ResponseWriter, r *http.Request) {
	worker, ok := h.loadWorker(w, r)
	if !ok {
		return
	}

	date, err := earnings.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD", err)
		return
	}

	var req SetAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	rec := earnings.AttendanceRecord{
		Status:        earnings.AttendanceStatus(req.Status),
		OvertimeHours: req.OvertimeHours,
		OvertimeRate:  req.OvertimeRate,
		Source:        earnings.SourceManual,
	}
	if !rec.Status.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid attendance status", earnings.ErrInvalidStatus)
		return
	}

	if err := h.Store.SetRecord(r.Context(), worker.ID, date, rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save record", err)
		return
	}

	rec = rec.Normalize()
	writeJSON(w, http.StatusOK, AttendanceRecordDTO{
		Status:        string(rec.Status),
		OvertimeHours: rec.OvertimeHours,
		OvertimeRate:  rec.OvertimeRate,
		Source:        string(rec.Source),
	})
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

// ListTransactions returns a worker's spend entries, newest first.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	worker, ok := h.loadWorker(w, r)
	if !ok {
		return
	}

	entries, err := h.Ledger.List(r.Context(), worker.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transactions", err)
		return
	}

	dtos := make([]TransactionDTO, len(entries))
	for i, e := range entries {
		dtos[i] = transactionDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTransaction records a purchase with its time-cost at the current
// hourly rate.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	worker, ok := h.loadWorker(w, r)
	if !ok {
		return
	}

	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	entry, err := h.Ledger.Add(r.Context(), worker.ID,
		earnings.ParseAmount(req.Amount), req.Title, req.Category,
		worker.Profile.HourlyRate())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save transaction", err)
		return
	}

	writeJSON(w, http.StatusCreated, transactionDTO(entry))
}

// UpdateTransaction edits an entry and re-renders its time-cost.
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.Store.GetEntry(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load transaction", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Transaction not found", nil)
		return
	}

	worker, err := h.Store.GetWorker(r.Context(), existing.WorkerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load worker", err)
		return
	}

	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	entry, err := h.Ledger.Edit(r.Context(), id,
		earnings.ParseAmount(req.Amount), req.Title, req.Category,
		worker.Profile.HourlyRate())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, transactionDTO(entry))
}

// DeleteTransaction removes an entry.
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.Ledger.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete transaction", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) loadWorker(w http.ResponseWriter, r *http.Request) (*earnings.Worker, bool) {
	id := earnings.WorkerID(chi.URLParam(r, "id"))
	worker, err := h.Store.GetWorker(r.Context(), id)
	if err != nil {
		if earnings.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Worker not found", nil)
		} else {
			writeError(w, http.StatusInternalServerError, "Failed to load worker", err)
		}
		return nil, false
	}
	return worker, true
}

// queryMonth parses ?year=&month= with the current month as default.
func queryMonth(r *http.Request, now time.Time) (int, time.Month) {
	year := now.Year()
	month := now.Month()
	if y, err := strconv.Atoi(r.URL.Query().Get("year")); err == nil && y > 0 {
		year = y
	}
	if m, err := strconv.Atoi(r.URL.Query().Get("month")); err == nil && m >= 1 && m <= 12 {
		month = time.Month(m)
	}
	return year, month
}

func transactionDTO(e spending.Entry) TransactionDTO {
	return TransactionDTO{
		ID:              e.ID,
		Amount:          e.Amount.StringFixed(2),
		FormattedAmount: earnings.FormatCurrency(e.Amount),
		Title:           e.Title,
		Category:        e.Category,
		TimeCost:        e.TimeCost,
		CreatedAt:       e.CreatedAt.Format(time.RFC3339),
	}
}
