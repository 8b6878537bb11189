/*
aggregator.go - Pay-period aggregation

PURPOSE:
  Folds a worker's shifts over one pay period into a PayrollSummary.

ALGORITHM:
  1. Resolve the period from the reference date and the payroll cycle
  2. Keep the worker's shifts dated inside the period
  3. Group by date, order each day by start time
  4. Classify each day's shifts in order, carrying the hours already
     worked that day into the next shift (reset every date)
  5. Sum categories, hours and gross pay
  6. Apply benefits, then deductions, then compute net pay

FAILURE MODES:
  - nil settings: ErrMissingConfiguration, no summary
  - malformed shift times: the shift is excluded and listed in Excluded
  - unknown benefit or deduction type: contributes nothing, logged and
    listed in Warnings

The function is pure. Identical inputs produce identical summaries.

SEE ALSO:
  - classifier.go: Per-shift classification
  - service.go: Loads inputs from a Repository
*/
package payroll

import (
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/shift-payroll/generic"
)

// AggregateInput is everything needed to compute one worker's pay period.
type AggregateInput struct {
	Shifts        []Shift
	Settings      *CompanySettings
	Calendar      generic.HolidayCalendar
	Benefits      []Benefit
	Deductions    []Deduction
	UserID        generic.UserID
	ReferenceDate generic.TimePoint

	// Logger receives warnings about ignored rules and excluded shifts.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// AggregatePeriod computes the PayrollSummary of in.UserID for the pay
// period containing in.ReferenceDate.
func AggregatePeriod(in AggregateInput) (PayrollSummary, error) {
	if in.Settings == nil {
		return PayrollSummary{}, generic.ErrMissingConfiguration
	}
	if err := in.Settings.Validate(); err != nil {
		return PayrollSummary{}, err
	}
	logger := in.Logger
	if logger == nil {
		logger = slog.Default()
	}

	period, err := generic.ResolvePeriod(in.ReferenceDate, in.Settings.Cycle())
	if err != nil {
		return PayrollSummary{}, err
	}

	summary := PayrollSummary{
		UserID:    in.UserID,
		CompanyID: in.Settings.CompanyID,
		Period:    period,
		Cycle:     in.Settings.Cycle(),
		Currency:  in.Settings.Currency,
	}

	var totals Minutes
	for _, day := range groupByDate(in.Shifts, in.UserID, period) {
		ds, excluded := foldDay(day, in.Settings, in.Calendar)
		for _, d := range excluded {
			logger.Warn("shift excluded from payroll",
				"shift_id", d.ShiftID,
				"user_id", in.UserID,
				"date", d.Date.String(),
				"reason", d.Reason,
			)
		}
		summary.Excluded = append(summary.Excluded, excluded...)
		if len(ds.Shifts) == 0 {
			continue
		}

		for _, r := range ds.Shifts {
			for _, b := range Buckets {
				totals[b] += r.Minutes[b]
				summary.Pay[b] = summary.Pay[b].Add(r.Pay[b])
			}
			summary.GrossPay = summary.GrossPay.Add(r.GrossPay)
		}
		summary.Days = append(summary.Days, ds)
	}

	for _, b := range Buckets {
		summary.Hours[b] = totals.Hours(b)
	}
	summary.TotalHours = minutesToHours(totals.Total())
	summary.DaysWorked = len(summary.Days)
	summary.Partial = len(summary.Excluded) > 0

	summary.TotalBenefits, summary.BenefitBreakdown = applyBenefits(&summary, in.Benefits, in.UserID, logger)
	summary.TotalDeductions, summary.DeductionBreakdown = applyDeductions(&summary, in.Deductions, in.Settings.Base(), in.UserID, logger)

	summary.NetPay = summary.GrossPay.Add(summary.TotalBenefits).Sub(summary.TotalDeductions)
	if in.Settings.ClampNetPay && summary.NetPay.IsNegative() {
		summary.NetPay = decimal.Zero
		summary.NetClamped = true
	}
	return summary, nil
}

// =============================================================================
// GROUPING & DAILY FOLD
// =============================================================================

// dayShifts are the shifts of one calendar date, in classification order.
type dayShifts struct {
	date   generic.TimePoint
	shifts []Shift
}

func groupByDate(shifts []Shift, userID generic.UserID, period generic.Period) []dayShifts {
	byDate := make(map[string]*dayShifts)
	for _, s := range shifts {
		if s.UserID != userID || !period.Contains(s.Date) {
			continue
		}
		date := generic.DateOf(s.Date.Time)
		key := date.String()
		ds, ok := byDate[key]
		if !ok {
			ds = &dayShifts{date: date}
			byDate[key] = ds
		}
		ds.shifts = append(ds.shifts, s)
	}

	days := make([]dayShifts, 0, len(byDate))
	for _, ds := range byDate {
		sort.SliceStable(ds.shifts, func(i, j int) bool {
			a, b := ds.shifts[i], ds.shifts[j]
			if a.StartTime != b.StartTime {
				return a.StartTime < b.StartTime
			}
			if a.EndTime != b.EndTime {
				return a.EndTime < b.EndTime
			}
			return a.ID < b.ID
		})
		days = append(days, *ds)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].date.Before(days[j].date) })
	return days
}

// foldDay classifies one day's shifts in order. The running minute total
// starts at zero for every date.
func foldDay(day dayShifts, settings *CompanySettings, calendar generic.HolidayCalendar) (DaySummary, []ShiftDiagnostic) {
	ds := DaySummary{Date: day.date, TotalHours: decimal.Zero, GrossPay: decimal.Zero}
	var excluded []ShiftDiagnostic
	var workedMinutes int64

	for _, s := range day.shifts {
		r, err := classify(s, settings, calendar, decimal.NewFromInt(workedMinutes))
		if err != nil {
			excluded = append(excluded, ShiftDiagnostic{ShiftID: s.ID, Date: day.date, Reason: err.Error()})
			continue
		}
		workedMinutes += r.Minutes.Total()
		ds.Shifts = append(ds.Shifts, r)
		ds.GrossPay = ds.GrossPay.Add(r.GrossPay)
	}
	ds.TotalHours = minutesToHours(workedMinutes)
	return ds, excluded
}

// =============================================================================
// BENEFITS & DEDUCTIONS
// =============================================================================

func applyBenefits(s *PayrollSummary, benefits []Benefit, userID generic.UserID, logger *slog.Logger) (decimal.Decimal, []BreakdownLine) {
	total := decimal.Zero
	var lines []BreakdownLine

	for _, b := range benefits {
		if !b.AppliesToUser(userID) {
			continue
		}
		var amount decimal.Decimal
		switch b.Type {
		case BenefitFixed:
			amount = b.Value
		case BenefitPercentage:
			amount = s.GrossPay.Mul(b.Value).Div(hundred)
		case BenefitPerHour:
			amount = b.Value.Mul(s.TotalHours)
		default:
			warnInvalidReference(s, logger, &generic.InvalidReferenceError{Kind: "benefit", ID: b.ID, Name: b.Name, Type: string(b.Type)})
			continue
		}
		total = total.Add(amount)
		lines = append(lines, BreakdownLine{ID: b.ID, Name: b.Name, Type: string(b.Type), Value: b.Value, Amount: amount})
	}
	return total, lines
}

func applyDeductions(s *PayrollSummary, deductions []Deduction, base DeductionBase, userID generic.UserID, logger *slog.Logger) (decimal.Decimal, []BreakdownLine) {
	percentBase := s.GrossPay.Add(s.TotalBenefits)
	if base == DeductionBaseGross {
		percentBase = s.GrossPay
	}

	total := decimal.Zero
	var lines []BreakdownLine

	for _, d := range deductions {
		if !d.AppliesToUser(userID) {
			continue
		}
		var amount decimal.Decimal
		switch d.Type {
		case DeductionFixed:
			amount = d.Value
		case DeductionPercentage:
			amount = percentBase.Mul(d.Value).Div(hundred)
		default:
			warnInvalidReference(s, logger, &generic.InvalidReferenceError{Kind: "deduction", ID: d.ID, Name: d.Name, Type: string(d.Type)})
			continue
		}
		total = total.Add(amount)
		lines = append(lines, BreakdownLine{ID: d.ID, Name: d.Name, Type: string(d.Type), Value: d.Value, Amount: amount})
	}
	return total, lines
}

func warnInvalidReference(s *PayrollSummary, logger *slog.Logger, err *generic.InvalidReferenceError) {
	logger.Warn("ignoring payroll rule",
		"kind", err.Kind,
		"rule_id", err.ID,
		"name", err.Name,
		"type", err.Type,
		"company_id", s.CompanyID,
	)
	s.Warnings = append(s.Warnings, err.Error())
}
