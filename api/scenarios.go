/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates a company with
	settings, benefits, deductions, holidays and a week or two of shifts.

AVAILABLE SCENARIOS:

	empty:              Clean database
	night-shift-week:   Bar staff crossing midnight, a holiday and a Sunday
	bi-weekly-overtime: Clinic on a bi-weekly cycle with double shifts,
	                    a negative net pay floored at zero, one malformed
	                    shift and one unknown benefit type

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create company settings from a preset
 3. Add benefits, deductions and holidays
 4. Record shifts, dated from the start of the current period

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "night-shift-week"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx)
 3. Add case to LoadScenario handler

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Payroll endpoints to explore the loaded data
  - factory/presets.go: Preset settings documents
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/shift-payroll/factory"
	"github.com/warp/shift-payroll/generic"
	"github.com/warp/shift-payroll/payroll"
)

// Resetter is implemented by stores that can drop all their data.
type Resetter interface {
	Reset(ctx context.Context) error
}

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "empty",
		Name:        "Empty",
		Description: "Clean database with no companies",
	},
	{
		ID:          "night-shift-week",
		Name:        "Night Shift Week",
		Description: "Bar staff on a monthly cycle: shifts crossing midnight, a company holiday, a Sunday and same-day overtime",
	},
	{
		ID:          "bi-weekly-overtime",
		Name:        "Bi-weekly Overtime",
		Description: "Clinic on a bi-weekly cycle: double shifts, deductions on gross only, a net pay floored at zero, a malformed shift and an unknown benefit type",
	},
}

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
// GET /api/scenarios/current
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the database and loads a predefined scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var load func(context.Context) error
	switch req.ScenarioID {
	case "empty":
		load = func(context.Context) error { return nil }
	case "night-shift-week":
		load = h.loadNightShiftWeekScenario
	case "bi-weekly-overtime":
		load = h.loadBiWeeklyOvertimeScenario
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := r.Context()
	if err := h.reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	if err := load(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}
	h.currentScenario = req.ScenarioID

	h.Logger.Info("scenario loaded", "scenario", req.ScenarioID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data.
// POST /api/scenarios/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) reset(ctx context.Context) error {
	resetter, ok := h.Repo.(Resetter)
	if !ok {
		return fmt.Errorf("store %T does not support reset", h.Repo)
	}
	return resetter.Reset(ctx)
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadNightShiftWeekScenario(ctx context.Context) error {
	const company = "demo-bar"

	if err := h.applyPreset(ctx, "standard", company, 10000, func(sj *factory.SettingsJSON) {
		sj.Currency = "COP"
	}); err != nil {
		return err
	}

	// Shifts start on the first day of the current month. Seven consecutive
	// days always include one Sunday.
	today := h.Today()
	anchor := generic.StartOfMonth(today.Year(), today.Month())

	holidays := []generic.Holiday{
		{ID: "hol-anniversary", Date: anchor.AddDays(3), Name: "Company anniversary"},
		{ID: "hol-christmas", Date: generic.NewTimePoint(today.Year(), time.December, 25), Name: "Christmas", Recurring: true},
	}
	for _, hol := range holidays {
		if err := h.Repo.SaveHoliday(ctx, hol); err != nil {
			return err
		}
	}

	benefits := []payroll.Benefit{
		{ID: "ben-transport", CompanyID: company, Name: "Transport allowance", Type: payroll.BenefitFixed, Value: decimal.NewFromInt(5000)},
		{ID: "ben-meal", CompanyID: company, Name: "Meal allowance", Type: payroll.BenefitPerHour, Value: decimal.NewFromInt(500)},
	}
	for _, b := range benefits {
		if err := h.Repo.SaveBenefit(ctx, b); err != nil {
			return err
		}
	}
	deductions := []payroll.Deduction{
		{ID: "ded-health", CompanyID: company, Name: "Health", Type: payroll.DeductionPercentage, Value: decimal.NewFromInt(4)},
		{ID: "ded-pension", CompanyID: company, Name: "Pension", Type: payroll.DeductionPercentage, Value: decimal.NewFromInt(4)},
	}
	for _, d := range deductions {
		if err := h.Repo.SaveDeduction(ctx, d); err != nil {
			return err
		}
	}

	return h.saveShifts(ctx, company, anchor, []scenarioShift{
		{"ana", 0, "20:00", "02:00", "bar"},
		{"ana", 1, "20:00", "04:00", "bar"},
		{"ana", 2, "18:00", "00:00", "bar"},
		{"ana", 3, "22:00", "06:00", "bar"},
		{"ana", 4, "12:00", "16:00", "kitchen"},
		{"ana", 4, "17:00", "23:00", "bar"},
		{"luis", 0, "08:00", "16:00", "kitchen"},
		{"luis", 5, "10:00", "18:00", "kitchen"},
		{"luis", 6, "10:00", "18:00", "kitchen"},
	})
}

func (h *Handler) loadBiWeeklyOvertimeScenario(ctx context.Context) error {
	const company = "demo-clinic"

	if err := h.applyPreset(ctx, "bi-weekly-night-22", company, 12000, func(sj *factory.SettingsJSON) {
		sj.Currency = "COP"
		sj.DeductionBase = string(payroll.DeductionBaseGross)
		sj.ClampNetPay = true
	}); err != nil {
		return err
	}

	period, err := generic.ResolvePeriod(h.Today(), generic.CycleBiWeekly)
	if err != nil {
		return err
	}
	anchor := period.Start

	benefits := []payroll.Benefit{
		{ID: "ben-uniform", CompanyID: company, Name: "Uniform", Type: payroll.BenefitFixed, Value: decimal.NewFromInt(20000)},
		{ID: "ben-bonus", CompanyID: company, Name: "Attendance bonus", Type: payroll.BenefitPercentage, Value: decimal.NewFromInt(5), AppliesTo: []string{"marta"}},
		// Stored directly so the summary shows how unknown types are reported.
		{ID: "ben-lottery", CompanyID: company, Name: "Raffle", Type: payroll.BenefitType("lottery"), Value: decimal.NewFromInt(1000)},
	}
	for _, b := range benefits {
		if err := h.Repo.SaveBenefit(ctx, b); err != nil {
			return err
		}
	}
	deductions := []payroll.Deduction{
		{ID: "ded-health", CompanyID: company, Name: "Health", Type: payroll.DeductionPercentage, Value: decimal.NewFromInt(4)},
		{ID: "ded-advance", CompanyID: company, Name: "Salary advance", Type: payroll.DeductionFixed, Value: decimal.NewFromInt(500000), AppliesTo: []string{"joel"}},
	}
	for _, d := range deductions {
		if err := h.Repo.SaveDeduction(ctx, d); err != nil {
			return err
		}
	}

	if err := h.saveShifts(ctx, company, anchor, []scenarioShift{
		{"marta", 0, "06:00", "14:00", "ward"},
		{"marta", 0, "14:00", "18:00", "ward"},
		{"marta", 1, "14:00", "22:00", "ward"},
		{"marta", 1, "22:00", "02:00", "emergency"},
		{"marta", 2, "22:00", "08:00", "emergency"},
		{"joel", 0, "08:00", "12:00", "reception"},
	}); err != nil {
		return err
	}

	// A malformed shift written around validation; summaries exclude it.
	now := time.Now().UTC()
	return h.Repo.SaveShift(ctx, payroll.Shift{
		ID:        "shift-malformed",
		UserID:    "marta",
		CompanyID: company,
		Date:      anchor.AddDays(3),
		StartTime: "25:00",
		EndTime:   "07:00",
		Notes:     "imported from paper timesheet",
		CreatedAt: now,
		UpdatedAt: now,
	})
}

type scenarioShift struct {
	user       string
	dayOffset  int
	start, end string
	station    string
}

func (h *Handler) saveShifts(ctx context.Context, company string, anchor generic.TimePoint, shifts []scenarioShift) error {
	for _, s := range shifts {
		_, err := h.Calc.SaveShift(ctx, payroll.Shift{
			UserID:      generic.UserID(s.user),
			CompanyID:   generic.CompanyID(company),
			Date:        anchor.AddDays(s.dayOffset),
			StartTime:   s.start,
			EndTime:     s.end,
			ItemDetails: []string{s.station},
		})
		if err != nil {
			return fmt.Errorf("shift for %s on day %d: %w", s.user, s.dayOffset, err)
		}
	}
	return nil
}

func (h *Handler) applyPreset(ctx context.Context, preset, company string, base int64, customize func(*factory.SettingsJSON)) error {
	doc, err := factory.PresetJSON(preset, company, decimal.NewFromInt(base))
	if err != nil {
		return err
	}
	var sj factory.SettingsJSON
	if err := json.Unmarshal([]byte(doc), &sj); err != nil {
		return err
	}
	customize(&sj)

	settings, err := h.Factory.FromJSON(sj)
	if err != nil {
		return err
	}
	return h.Repo.SaveSettings(ctx, *settings)
}
