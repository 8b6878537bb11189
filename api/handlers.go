/*
handlers.go - HTTP API handlers for the shift payroll engine

PURPOSE:
  Exposes the payroll engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to payroll.Calculator and the
  repository.

ENDPOINTS:
  Companies:
    GET    /api/companies/{companyID}/settings        Settings document
    PUT    /api/companies/{companyID}/settings        Replace settings
    POST   /api/companies/{companyID}/settings/preset Apply a preset
    GET    /api/companies/{companyID}/benefits        List benefits
    POST   /api/companies/{companyID}/benefits        Create benefit
    DELETE /api/companies/{companyID}/benefits/{id}   Delete benefit
    (same three for /deductions)
    GET    /api/companies/{companyID}/summaries       All workers, one period

  Shifts:
    GET    /api/users/{userID}/shifts                 List a worker's shifts
    POST   /api/users/{userID}/shifts                 Record a shift
    GET    /api/shifts/{id}                           Get shift
    PUT    /api/shifts/{id}                           Replace shift
    DELETE /api/shifts/{id}                           Delete shift

  Payroll:
    GET    /api/users/{userID}/summary                Period summary
    GET    /api/users/{userID}/voucher.pdf            Printable voucher
    POST   /api/users/{userID}/payrolls               Close a period
    GET    /api/users/{userID}/payrolls               Closed periods

  Holidays, presets, admin:
    GET/POST /api/holidays, DELETE /api/holidays/{id}
    GET    /api/presets
    POST   /api/admin/close-periods                   Run the close scheduler once

QUERY PARAMETERS:
  date:       Any day inside the wanted period, YYYY-MM-DD (default: today)
  company_id: Required on user-scoped payroll endpoints

ERROR HANDLING:
  Errors are returned as JSON {error, details} with an HTTP status derived
  from the error chain:
  - 400: Invalid input, bad clock or date format
  - 404: Resource not found
  - 409: Period closed, or already closed
  - 422: Company settings missing or invalid
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - voucher.go: PDF rendering
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/shift-payroll/factory"
	"github.com/warp/shift-payroll/generic"
	"github.com/warp/shift-payroll/payroll"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Repo      payroll.Repository
	Calc      *payroll.Calculator
	Factory   *factory.SettingsFactory
	Scheduler *CloseScheduler
	Logger    *slog.Logger

	// NewID and Today are replaceable in tests.
	NewID func() string
	Today func() generic.TimePoint

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler over repo.
func NewHandler(repo payroll.Repository, calc *payroll.Calculator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Repo:    repo,
		Calc:    calc,
		Factory: factory.NewSettingsFactory(),
		Logger:  logger,
		NewID:   uuid.NewString,
		Today:   generic.Today,
	}
}

// =============================================================================
// COMPANY SETTINGS
// =============================================================================

// GetSettings returns a company's settings document.
// GET /api/companies/{companyID}/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	companyID := generic.CompanyID(chi.URLParam(r, "companyID"))

	settings, err := h.Repo.GetSettings(r.Context(), companyID)
	if err != nil {
		h.writeServiceError(w, "Failed to get settings", err)
		return
	}
	if settings == nil {
		writeError(w, http.StatusNotFound, "Settings not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, h.Factory.ToJSON(settings))
}

// PutSettings replaces a company's settings.
// PUT /api/companies/{companyID}/settings
func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")

	var req factory.SettingsJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.CompanyID = companyID

	h.saveSettings(w, r, req)
}

// ApplyPreset replaces a company's settings with a named preset.
// POST /api/companies/{companyID}/settings/preset
func (h *Handler) ApplyPreset(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")

	var req struct {
		Preset   string          `json:"preset"`
		BaseRate decimal.Decimal `json:"base_rate"`
		Currency string          `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if !req.BaseRate.IsPositive() {
		writeError(w, http.StatusBadRequest, "base_rate must be positive", nil)
		return
	}

	doc, err := factory.PresetJSON(req.Preset, companyID, req.BaseRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown preset", err)
		return
	}
	var sj factory.SettingsJSON
	if err := json.Unmarshal([]byte(doc), &sj); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build preset", err)
		return
	}
	sj.Currency = req.Currency

	h.saveSettings(w, r, sj)
}

func (h *Handler) saveSettings(w http.ResponseWriter, r *http.Request, sj factory.SettingsJSON) {
	settings, err := h.Factory.FromJSON(sj)
	if err != nil {
		h.writeServiceError(w, "Invalid settings", err)
		return
	}
	if err := h.Repo.SaveSettings(r.Context(), *settings); err != nil {
		h.writeServiceError(w, "Failed to save settings", err)
		return
	}

	h.Logger.Info("company settings saved", "company_id", settings.CompanyID, "cycle", settings.Cycle())
	writeJSON(w, http.StatusOK, h.Factory.ToJSON(settings))
}

// ListPresets returns the available labor-rule presets.
// GET /api/presets
func (h *Handler) ListPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, factory.Presets())
}

// =============================================================================
// BENEFITS & DEDUCTIONS
// =============================================================================

// ListBenefits returns a company's benefits.
// GET /api/companies/{companyID}/benefits
func (h *Handler) ListBenefits(w http.ResponseWriter, r *http.Request) {
	companyID := generic.CompanyID(chi.URLParam(r, "companyID"))

	benefits, err := h.Repo.ListBenefits(r.Context(), companyID)
	if err != nil {
		h.writeServiceError(w, "Failed to list benefits", err)
		return
	}

	dtos := make([]factory.BenefitJSON, len(benefits))
	for i, b := range benefits {
		dtos[i] = h.Factory.BenefitToJSON(b)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateBenefit adds a benefit to a company.
// POST /api/companies/{companyID}/benefits
func (h *Handler) CreateBenefit(w http.ResponseWriter, r *http.Request) {
	var req factory.BenefitJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.CompanyID = chi.URLParam(r, "companyID")
	if req.ID == "" {
		req.ID = h.NewID()
	}

	benefit, err := h.Factory.BenefitFromJSON(req)
	if err != nil {
		h.writeServiceError(w, "Invalid benefit", err)
		return
	}
	if err := h.Repo.SaveBenefit(r.Context(), *benefit); err != nil {
		h.writeServiceError(w, "Failed to save benefit", err)
		return
	}

	writeJSON(w, http.StatusCreated, h.Factory.BenefitToJSON(*benefit))
}

// DeleteBenefit removes a benefit.
// DELETE /api/companies/{companyID}/benefits/{id}
func (h *Handler) DeleteBenefit(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.DeleteBenefit(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, "Failed to delete benefit", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListDeductions returns a company's deductions.
// GET /api/companies/{companyID}/deductions
func (h *Handler) ListDeductions(w http.ResponseWriter, r *http.Request) {
	companyID := generic.CompanyID(chi.URLParam(r, "companyID"))

	deductions, err := h.Repo.ListDeductions(r.Context(), companyID)
	if err != nil {
		h.writeServiceError(w, "Failed to list deductions", err)
		return
	}

	dtos := make([]factory.DeductionJSON, len(deductions))
	for i, d := range deductions {
		dtos[i] = h.Factory.DeductionToJSON(d)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateDeduction adds a deduction to a company.
// POST /api/companies/{companyID}/deductions
func (h *Handler) CreateDeduction(w http.ResponseWriter, r *http.Request) {
	var req factory.DeductionJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.CompanyID = chi.URLParam(r, "companyID")
	if req.ID == "" {
		req.ID = h.NewID()
	}

	deduction, err := h.Factory.DeductionFromJSON(req)
	if err != nil {
		h.writeServiceError(w, "Invalid deduction", err)
		return
	}
	if err := h.Repo.SaveDeduction(r.Context(), *deduction); err != nil {
		h.writeServiceError(w, "Failed to save deduction", err)
		return
	}

	writeJSON(w, http.StatusCreated, h.Factory.DeductionToJSON(*deduction))
}

// DeleteDeduction removes a deduction.
// DELETE /api/companies/{companyID}/deductions/{id}
func (h *Handler) DeleteDeduction(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.DeleteDeduction(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, "Failed to delete deduction", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// SHIFTS
// =============================================================================

// ListShifts returns a worker's shifts, optionally limited to one period.
// GET /api/users/{userID}/shifts?company_id=&date=
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter := payroll.ShiftFilter{
		UserID:    generic.UserID(chi.URLParam(r, "userID")),
		CompanyID: generic.CompanyID(r.URL.Query().Get("company_id")),
	}

	if r.URL.Query().Get("date") != "" {
		if filter.CompanyID == "" {
			writeError(w, http.StatusBadRequest, "company_id is required with date", nil)
			return
		}
		ref, err := h.dateParam(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
		period, err := h.Calc.PeriodFor(ctx, filter.CompanyID, ref)
		if err != nil {
			h.writeServiceError(w, "Failed to resolve period", err)
			return
		}
		filter.From, filter.To = &period.Start, &period.End
	}

	shifts, err := h.Repo.ListShifts(ctx, filter)
	if err != nil {
		h.writeServiceError(w, "Failed to list shifts", err)
		return
	}

	dtos := make([]ShiftDTO, len(shifts))
	for i, s := range shifts {
		dtos[i] = toShiftDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateShift records a new shift for a worker.
// POST /api/users/{userID}/shifts
func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req ShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	shift, err := shiftFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid shift", err)
		return
	}
	shift.UserID = generic.UserID(chi.URLParam(r, "userID"))

	saved, err := h.Calc.SaveShift(r.Context(), shift)
	if err != nil {
		h.writeServiceError(w, "Failed to save shift", err)
		return
	}
	writeJSON(w, http.StatusCreated, toShiftDTO(saved))
}

// GetShift returns a single shift.
// GET /api/shifts/{id}
func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	shift, err := h.Repo.GetShift(r.Context(), generic.ShiftID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeServiceError(w, "Failed to get shift", err)
		return
	}
	if shift == nil {
		writeError(w, http.StatusNotFound, "Shift not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTO(*shift))
}

// UpdateShift replaces an existing shift.
// PUT /api/shifts/{id}
func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := generic.ShiftID(chi.URLParam(r, "id"))

	existing, err := h.Repo.GetShift(ctx, id)
	if err != nil {
		h.writeServiceError(w, "Failed to get shift", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Shift not found", nil)
		return
	}

	var req ShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.CompanyID == "" {
		req.CompanyID = string(existing.CompanyID)
	}
	shift, err := shiftFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid shift", err)
		return
	}
	shift.ID = id
	shift.UserID = existing.UserID
	if req.UserID != "" {
		shift.UserID = generic.UserID(req.UserID)
	}

	saved, err := h.Calc.SaveShift(ctx, shift)
	if err != nil {
		h.writeServiceError(w, "Failed to save shift", err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTO(saved))
}

// DeleteShift removes a shift.
// DELETE /api/shifts/{id}
func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	if err := h.Calc.DeleteShift(r.Context(), generic.ShiftID(chi.URLParam(r, "id"))); err != nil {
		h.writeServiceError(w, "Failed to delete shift", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func shiftFromRequest(req ShiftRequest) (payroll.Shift, error) {
	if req.CompanyID == "" {
		return payroll.Shift{}, errors.New("company_id is required")
	}
	date, err := generic.ParseDate(req.Date)
	if err != nil {
		return payroll.Shift{}, &generic.InvalidTimeError{Field: "date", Value: req.Date}
	}
	return payroll.Shift{
		CompanyID:   generic.CompanyID(req.CompanyID),
		Date:        date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		ItemDetails: req.ItemDetails,
		Notes:       req.Notes,
	}, nil
}

// =============================================================================
// SUMMARIES
// =============================================================================

// GetSummary returns a worker's summary for the period containing date.
// GET /api/users/{userID}/summary?company_id=&date=
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.userSummary(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(summary, true))
}

// GetVoucher renders a worker's summary as a PDF.
// GET /api/users/{userID}/voucher.pdf?company_id=&date=
func (h *Handler) GetVoucher(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.userSummary(w, r)
	if !ok {
		return
	}
	settings, err := h.Repo.GetSettings(r.Context(), summary.CompanyID)
	if err != nil || settings == nil {
		h.writeServiceError(w, "Failed to load settings", fmt.Errorf("settings: %w", errors.Join(err, generic.ErrMissingConfiguration)))
		return
	}

	var buf bytes.Buffer
	if err := renderVoucher(&buf, summary, settings); err != nil {
		h.writeServiceError(w, "Failed to render voucher", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", voucherFilename(summary)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *Handler) userSummary(w http.ResponseWriter, r *http.Request) (payroll.PayrollSummary, bool) {
	userID := generic.UserID(chi.URLParam(r, "userID"))
	companyID := generic.CompanyID(r.URL.Query().Get("company_id"))
	if companyID == "" {
		writeError(w, http.StatusBadRequest, "company_id is required", nil)
		return payroll.PayrollSummary{}, false
	}
	ref, err := h.dateParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return payroll.PayrollSummary{}, false
	}

	summary, err := h.Calc.Summary(r.Context(), companyID, userID, ref)
	if err != nil {
		h.writeServiceError(w, "Failed to compute summary", err)
		return payroll.PayrollSummary{}, false
	}
	return summary, true
}

// CompanySummaries returns every worker's summary for one period.
// GET /api/companies/{companyID}/summaries?date=
func (h *Handler) CompanySummaries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID := generic.CompanyID(chi.URLParam(r, "companyID"))
	ref, err := h.dateParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	summaries, err := h.Calc.SummariesForCompany(ctx, companyID, ref)
	if err != nil {
		h.writeServiceError(w, "Failed to compute summaries", err)
		return
	}
	period, err := h.Calc.PeriodFor(ctx, companyID, ref)
	if err != nil {
		h.writeServiceError(w, "Failed to resolve period", err)
		return
	}

	resp := CompanySummariesDTO{
		CompanyID:   string(companyID),
		PeriodStart: period.Start.Time.Format(dateLayout),
		PeriodEnd:   period.End.Time.Format(dateLayout),
		Summaries:   make([]SummaryDTO, len(summaries)),
	}
	for i, s := range summaries {
		resp.Summaries[i] = toSummaryDTO(s, false)
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// PAYROLL RECORDS
// =============================================================================

// ClosePayroll freezes a worker's summary for the period containing date.
// POST /api/users/{userID}/payrolls
func (h *Handler) ClosePayroll(w http.ResponseWriter, r *http.Request) {
	var req ClosePayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.CompanyID == "" {
		writeError(w, http.StatusBadRequest, "company_id is required", nil)
		return
	}
	ref := h.Today()
	if req.Date != "" {
		var err error
		if ref, err = generic.ParseDate(req.Date); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
	}
	if req.ClosedBy == "" {
		req.ClosedBy = "api"
	}

	rec, err := h.Calc.ClosePeriod(r.Context(), generic.CompanyID(req.CompanyID), generic.UserID(chi.URLParam(r, "userID")), ref, req.ClosedBy)
	if err != nil {
		h.writeServiceError(w, "Failed to close payroll period", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecordDTO(*rec))
}

// ListPayrolls returns a worker's closed periods.
// GET /api/users/{userID}/payrolls
func (h *Handler) ListPayrolls(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Repo.ListPayrollRecords(r.Context(), generic.UserID(chi.URLParam(r, "userID")))
	if err != nil {
		h.writeServiceError(w, "Failed to list payroll records", err)
		return
	}

	dtos := make([]PayrollRecordDTO, len(recs))
	for i, rec := range recs {
		dtos[i] = toRecordDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ClosePeriods runs the period-close scheduler once.
// POST /api/admin/close-periods
func (h *Handler) ClosePeriods(w http.ResponseWriter, r *http.Request) {
	if h.Scheduler == nil {
		writeError(w, http.StatusNotFound, "Scheduler not configured", nil)
		return
	}
	closed, skipped, err := h.Scheduler.RunOnce(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to close periods", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"closed": closed, "skipped": skipped})
}

// =============================================================================
// HOLIDAY ENDPOINTS
// =============================================================================

// ListHolidays returns all holidays.
// GET /api/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Repo.ListHolidays(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to list holidays", err)
		return
	}

	dtos := make([]HolidayDTO, len(holidays))
	for i, hol := range holidays {
		dtos[i] = toHolidayDTO(hol)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateHoliday creates a new holiday.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	date, err := generic.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	holiday := generic.Holiday{ID: h.NewID(), Date: date, Name: req.Name, Recurring: req.Recurring}
	if err := h.Repo.SaveHoliday(r.Context(), holiday); err != nil {
		h.writeServiceError(w, "Failed to create holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayDTO(holiday))
}

// DeleteHoliday deletes a holiday.
// DELETE /api/holidays/{id}
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, "Failed to delete holiday", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) dateParam(r *http.Request) (generic.TimePoint, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return h.Today(), nil
	}
	return generic.ParseDate(raw)
}

// statusFor maps an error chain to an HTTP status.
func statusFor(err error) int {
	switch {
	case generic.IsNotFound(err):
		return http.StatusNotFound
	case generic.IsConflict(err):
		return http.StatusConflict
	case generic.IsConfigurationError(err):
		return http.StatusUnprocessableEntity
	case generic.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error(message, "error", err)
	}
	writeError(w, status, message, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
