/*
handlers_test.go - HTTP tests for API handlers

Tests for:
- Settings, presets, benefits, deductions and holidays
- Shift CRUD and validation
- Summaries, company summaries and the PDF voucher
- Period closing and the error-to-status mapping
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/shift-payroll/generic"
	"github.com/warp/shift-payroll/payroll"
	"github.com/warp/shift-payroll/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type testServer struct {
	handler *Handler
	router  http.Handler
	store   *sqlite.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	calc := payroll.NewCalculator(store, logger)
	calc.Now = func() time.Time { return time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC) }

	var seq int
	nextID := func() string {
		seq++
		return fmt.Sprintf("id-%03d", seq)
	}
	calc.NewID = nextID

	h := NewHandler(store, calc, logger)
	h.NewID = nextID
	h.Today = func() generic.TimePoint { return generic.NewTimePoint(2024, time.March, 15) }

	scheduler := NewCloseScheduler(store, calc, logger)
	scheduler.Today = func() generic.TimePoint { return generic.NewTimePoint(2024, time.April, 2) }
	h.Scheduler = scheduler

	return &testServer{handler: h, router: NewRouter(h, RouterOptions{Logger: logger}), store: store}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

var acmeSettings = map[string]any{
	"payroll_cycle": "monthly",
	"currency":      "COP",
	"rates": map[string]any{
		"day":                    10000,
		"night":                  13500,
		"day_overtime":           12500,
		"night_overtime":         17500,
		"holiday_day":            17500,
		"holiday_night":          21000,
		"holiday_day_overtime":   20000,
		"holiday_night_overtime": 25000,
	},
}

func (ts *testServer) configureAcme(t *testing.T) {
	t.Helper()
	rec := ts.do(t, http.MethodPut, "/api/companies/acme/settings", acmeSettings)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func (ts *testServer) createShift(t *testing.T, user, date, start, end string) ShiftDTO {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/users/"+user+"/shifts", ShiftRequest{
		CompanyID: "acme", Date: date, StartTime: start, EndTime: end,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[ShiftDTO](t, rec)
}

func category(t *testing.T, cats []CategoryDTO, name string) CategoryDTO {
	t.Helper()
	for _, c := range cats {
		if c.Category == name {
			return c
		}
	}
	t.Fatalf("category %s not found", name)
	return CategoryDTO{}
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

// =============================================================================
// SETTINGS & RULES
// =============================================================================

func TestSettings_PutAndGet(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/companies/acme/settings", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	ts.configureAcme(t)

	rec = ts.do(t, http.MethodGet, "/api/companies/acme/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		CompanyID string                     `json:"company_id"`
		Cycle     string                     `json:"payroll_cycle"`
		Rates     map[string]decimal.Decimal `json:"rates"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "acme", got.CompanyID)
	assert.Equal(t, "monthly", got.Cycle)
	assertDec(t, "13500", got.Rates["night"])
}

func TestSettings_RejectsInvalid(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPut, "/api/companies/acme/settings", map[string]any{"payroll_cycle": "weekly"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/companies/acme/settings", map[string]any{"rates": map[string]any{"weekend": 1}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	req := httptest.NewRequest(http.MethodPut, "/api/companies/acme/settings", strings.NewReader("{"))
	out := httptest.NewRecorder()
	ts.router.ServeHTTP(out, req)
	assert.Equal(t, http.StatusBadRequest, out.Code)
}

func TestPresets(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/presets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]string](t, rec), 2)

	rec = ts.do(t, http.MethodPost, "/api/companies/acme/settings/preset", map[string]any{
		"preset": "bi-weekly-night-22", "base_rate": 10000, "currency": "COP",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	settings, err := ts.store.GetSettings(context.Background(), "acme")
	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.Equal(t, generic.CycleBiWeekly, settings.Cycle())
	assert.Equal(t, 22, settings.NightStart())
	assertDec(t, "25000", settings.Rates.HolidayNightOvertime)

	rec = ts.do(t, http.MethodPost, "/api/companies/acme/settings/preset", map[string]any{"preset": "nope", "base_rate": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBenefitsAndDeductions(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/companies/acme/benefits", map[string]any{"name": "Raffle", "type": "lottery", "value": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/companies/acme/benefits", map[string]any{"name": "Meal", "type": "per-hour", "value": "1200"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	benefitID, _ := created["id"].(string)
	require.NotEmpty(t, benefitID)

	rec = ts.do(t, http.MethodPost, "/api/companies/acme/deductions", map[string]any{"name": "Health", "type": "percentage", "value": 4})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/companies/acme/benefits", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = ts.do(t, http.MethodGet, "/api/companies/acme/deductions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = ts.do(t, http.MethodDelete, "/api/companies/acme/benefits/"+benefitID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodDelete, "/api/companies/acme/benefits/"+benefitID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// SHIFTS
// =============================================================================

func TestShifts_CRUD(t *testing.T) {
	ts := newTestServer(t)
	ts.configureAcme(t)

	shift := ts.createShift(t, "u1", "2024-03-04", "08:00", "16:00")
	assert.Equal(t, "id-001", shift.ID)
	assert.Equal(t, "u1", shift.UserID)

	rec := ts.do(t, http.MethodPut, "/api/shifts/"+shift.ID, ShiftRequest{Date: "2024-03-04", StartTime: "09:00", EndTime: "17:00", Notes: "late start"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/shifts/"+shift.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[ShiftDTO](t, rec)
	assert.Equal(t, "09:00", got.StartTime)
	assert.Equal(t, "acme", got.CompanyID, "company kept when omitted")
	assert.Equal(t, "late start", got.Notes)

	ts.createShift(t, "u1", "2024-04-01", "08:00", "12:00")

	rec = ts.do(t, http.MethodGet, "/api/users/u1/shifts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]ShiftDTO](t, rec), 2)

	rec = ts.do(t, http.MethodGet, "/api/users/u1/shifts?company_id=acme&date=2024-03-20", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]ShiftDTO](t, rec), 1, "only March")

	rec = ts.do(t, http.MethodDelete, "/api/shifts/"+shift.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodGet, "/api/shifts/"+shift.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = ts.do(t, http.MethodDelete, "/api/shifts/"+shift.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShifts_Validation(t *testing.T) {
	ts := newTestServer(t)

	tests := map[string]ShiftRequest{
		"bad clock":       {CompanyID: "acme", Date: "2024-03-04", StartTime: "8am", EndTime: "16:00"},
		"hour out of day": {CompanyID: "acme", Date: "2024-03-04", StartTime: "24:00", EndTime: "16:00"},
		"bad date":        {CompanyID: "acme", Date: "04/03/2024", StartTime: "08:00", EndTime: "16:00"},
		"missing company": {Date: "2024-03-04", StartTime: "08:00", EndTime: "16:00"},
	}
	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/users/u1/shifts", req)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

// =============================================================================
// SUMMARIES
// =============================================================================

func TestSummary_NightShiftAcrossMidnight(t *testing.T) {
	// GIVEN: A 20:00-02:00 shift on a Monday
	// WHEN: Fetching the March summary
	// THEN: 1 day hour, 5 night hours, gross 77500

	ts := newTestServer(t)
	ts.configureAcme(t)
	ts.createShift(t, "u1", "2024-03-04", "20:00", "02:00")

	rec := ts.do(t, http.MethodGet, "/api/users/u1/summary?company_id=acme&date=2024-03-10", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	s := decode[SummaryDTO](t, rec)

	assert.Equal(t, "2024-03-01", s.PeriodStart)
	assert.Equal(t, "2024-03-31", s.PeriodEnd)
	assert.Len(t, s.Categories, payroll.BucketCount)
	assertDec(t, "1", category(t, s.Categories, "day").Hours)
	assertDec(t, "5", category(t, s.Categories, "night").Hours)
	assertDec(t, "6", s.TotalHours)
	assertDec(t, "77500", s.GrossPay)
	assertDec(t, "77500", s.NetPay)
	assert.Equal(t, 1, s.DaysWorked)
	require.Len(t, s.Days, 1)
	assert.Equal(t, "2024-03-04", s.Days[0].Date)
	assert.False(t, s.Partial)
}

func TestSummary_Errors(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/users/u1/summary", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "company_id required")

	rec = ts.do(t, http.MethodGet, "/api/users/u1/summary?company_id=acme", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "no settings")

	ts.configureAcme(t)
	rec = ts.do(t, http.MethodGet, "/api/users/u1/summary?company_id=acme&date=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/users/u1/summary?company_id=acme", nil)
	require.Equal(t, http.StatusOK, rec.Code, "defaults to today")
	s := decode[SummaryDTO](t, rec)
	assert.Equal(t, "2024-03-01", s.PeriodStart)
	assertDec(t, "0", s.NetPay)
}

func TestSummary_HolidayAndRules(t *testing.T) {
	ts := newTestServer(t)
	ts.configureAcme(t)

	rec := ts.do(t, http.MethodPost, "/api/holidays", CreateHolidayRequest{Date: "2024-03-05", Name: "Local holiday"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = ts.do(t, http.MethodPost, "/api/companies/acme/benefits", map[string]any{"name": "Transport", "type": "fixed", "value": 5000})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = ts.do(t, http.MethodPost, "/api/companies/acme/deductions", map[string]any{"name": "Health", "type": "percentage", "value": 4})
	require.Equal(t, http.StatusCreated, rec.Code)

	ts.createShift(t, "u1", "2024-03-04", "08:00", "16:00")
	ts.createShift(t, "u1", "2024-03-05", "08:00", "12:00")

	rec = ts.do(t, http.MethodGet, "/api/users/u1/summary?company_id=acme&date=2024-03-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	s := decode[SummaryDTO](t, rec)

	assertDec(t, "4", category(t, s.Categories, "holiday_day").Hours)
	assertDec(t, "150000", s.GrossPay)
	require.Len(t, s.Benefits, 1)
	assertDec(t, "5000", s.Benefits[0].Amount)
	assertDec(t, "6200", s.TotalDeductions)
	assertDec(t, "148800", s.NetPay)

	rec = ts.do(t, http.MethodGet, "/api/holidays", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	holidays := decode[[]HolidayDTO](t, rec)
	require.Len(t, holidays, 1)

	rec = ts.do(t, http.MethodDelete, "/api/holidays/"+holidays[0].ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodDelete, "/api/holidays/"+holidays[0].ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompanySummaries(t *testing.T) {
	ts := newTestServer(t)
	ts.configureAcme(t)
	ts.createShift(t, "u2", "2024-03-04", "08:00", "12:00")
	ts.createShift(t, "u1", "2024-03-04", "08:00", "16:00")

	rec := ts.do(t, http.MethodGet, "/api/companies/acme/summaries?date=2024-03-31", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[CompanySummariesDTO](t, rec)

	assert.Equal(t, "2024-03-01", resp.PeriodStart)
	require.Len(t, resp.Summaries, 2)
	assert.Equal(t, "u1", resp.Summaries[0].UserID)
	assertDec(t, "80000", resp.Summaries[0].GrossPay)
	assert.Empty(t, resp.Summaries[0].Days, "company view omits day detail")
	assertDec(t, "40000", resp.Summaries[1].GrossPay)
}

func TestVoucher(t *testing.T) {
	ts := newTestServer(t)
	ts.configureAcme(t)
	ts.createShift(t, "u1", "2024-03-04", "20:00", "02:00")

	rec := ts.do(t, http.MethodGet, "/api/users/u1/voucher.pdf?company_id=acme&date=2024-03-04", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "voucher-u1-2024-03-01.pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec = ts.do(t, http.MethodGet, "/api/users/u1/voucher.pdf?company_id=globex", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestVoucherDays_FillsUnworkedDays(t *testing.T) {
	ts := newTestServer(t)
	ts.configureAcme(t)
	ts.createShift(t, "u1", "2024-03-04", "20:00", "02:00")

	summary, err := ts.handler.Calc.Summary(context.Background(), "acme", "u1", generic.NewTimePoint(2024, time.March, 4))
	require.NoError(t, err)

	days := voucherDays(summary)
	require.Len(t, days, 31)
	assert.Equal(t, "2024-03-01", days[0].Date.Time.Format(dateLayout))
	assert.Empty(t, days[0].Shifts)
	assertDec(t, "0", days[0].TotalHours)
	assert.Len(t, days[3].Shifts, 1)
	assertDec(t, "6", days[3].TotalHours)
	assertDec(t, "77500", days[3].GrossPay)
	assert.Equal(t, "2024-03-31", days[30].Date.Time.Format(dateLayout))
}

// =============================================================================
// PERIOD CLOSING
// =============================================================================

func TestClosePayroll(t *testing.T) {
	// GIVEN: A March shift
	// WHEN: Closing March twice, then writing into March
	// THEN: 201, then 409 for the duplicate and for every March write

	ts := newTestServer(t)
	ts.configureAcme(t)
	shift := ts.createShift(t, "u1", "2024-03-04", "08:00", "16:00")

	rec := ts.do(t, http.MethodPost, "/api/users/u1/payrolls", ClosePayrollRequest{CompanyID: "acme", Date: "2024-03-20", ClosedBy: "admin-1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	closed := decode[PayrollRecordDTO](t, rec)
	assert.Equal(t, "2024-03-01", closed.PeriodStart)
	assert.Equal(t, []string{shift.ID}, closed.ShiftIDs)
	assert.Equal(t, "admin-1", closed.ClosedBy)
	assertDec(t, "80000", closed.Summary.NetPay)

	rec = ts.do(t, http.MethodPost, "/api/users/u1/payrolls", ClosePayrollRequest{CompanyID: "acme", Date: "2024-03-01"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/users/u1/shifts", ShiftRequest{CompanyID: "acme", Date: "2024-03-06", StartTime: "08:00", EndTime: "12:00"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/shifts/"+shift.ID, ShiftRequest{Date: "2024-03-04", StartTime: "08:00", EndTime: "18:00"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/shifts/"+shift.ID, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/users/u1/payrolls", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]PayrollRecordDTO](t, rec), 1)

	rec = ts.do(t, http.MethodPost, "/api/users/u1/payrolls", ClosePayrollRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("shift: %w", generic.ErrNotFound), http.StatusNotFound},
		{generic.ErrPeriodClosed, http.StatusConflict},
		{generic.ErrAlreadyClosed, http.StatusConflict},
		{generic.ErrMissingConfiguration, http.StatusUnprocessableEntity},
		{&generic.InvalidConfigurationError{Field: "payroll_cycle", Value: "weekly"}, http.StatusUnprocessableEntity},
		{&generic.InvalidTimeError{Field: "start_time", Value: "8am"}, http.StatusBadRequest},
		{&generic.InvalidReferenceError{Kind: "benefit", Name: "x", Type: "y"}, http.StatusBadRequest},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
