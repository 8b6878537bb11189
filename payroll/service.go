/*
service.go - Calculator: the payroll query layer

PURPOSE:
  Loads settings, shifts, holidays and rules from a Repository and runs
  the pure engine over them. Also owns the period-close workflow and the
  shift write path, which must respect closed periods.

OPERATIONS:
  Summary:             One worker, one period
  SummariesForCompany: Every worker with shifts in the period, in parallel
  ClosePeriod:         Freeze a worker's summary as a PayrollRecord
  CloseEndedPeriods:   Close the previous period for every worker of a company
  SaveShift/DeleteShift: Shift writes, rejected inside closed periods

CONCURRENCY:
  SummariesForCompany fans out with errgroup, bounded by Workers. All
  goroutines share one read-only copy of settings, calendar and rules.

SEE ALSO:
  - aggregator.go: AggregatePeriod
  - store.go: Repository
  - api/scheduler.go: Calls CloseEndedPeriods on a ticker
*/
package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/warp/shift-payroll/generic"
)

// DefaultWorkers bounds SummariesForCompany when Workers is unset.
const DefaultWorkers = 4

// Calculator computes payroll from stored data.
type Calculator struct {
	Repo    Repository
	Logger  *slog.Logger
	Workers int

	// Now and NewID are replaceable in tests.
	Now   func() time.Time
	NewID func() string
}

// NewCalculator creates a calculator over repo.
func NewCalculator(repo Repository, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{
		Repo:    repo,
		Logger:  logger,
		Workers: DefaultWorkers,
		Now:     time.Now,
		NewID:   uuid.NewString,
	}
}

// periodInputs is the company-wide, read-only part of an aggregation.
type periodInputs struct {
	settings   *CompanySettings
	calendar   *generic.HolidaySet
	benefits   []Benefit
	deductions []Deduction
	period     generic.Period
}

func (c *Calculator) loadInputs(ctx context.Context, companyID generic.CompanyID, ref generic.TimePoint) (*periodInputs, error) {
	settings, err := c.Repo.GetSettings(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if settings == nil {
		return nil, fmt.Errorf("company %s: %w", companyID, generic.ErrMissingConfiguration)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	period, err := generic.ResolvePeriod(ref, settings.Cycle())
	if err != nil {
		return nil, err
	}

	holidays, err := c.Repo.ListHolidays(ctx)
	if err != nil {
		return nil, fmt.Errorf("load holidays: %w", err)
	}
	benefits, err := c.Repo.ListBenefits(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("load benefits: %w", err)
	}
	deductions, err := c.Repo.ListDeductions(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("load deductions: %w", err)
	}

	return &periodInputs{
		settings:   settings,
		calendar:   generic.NewHolidaySet(holidays...),
		benefits:   benefits,
		deductions: deductions,
		period:     period,
	}, nil
}

// PeriodFor resolves the period containing ref under the company's cycle.
func (c *Calculator) PeriodFor(ctx context.Context, companyID generic.CompanyID, ref generic.TimePoint) (generic.Period, error) {
	settings, err := c.Repo.GetSettings(ctx, companyID)
	if err != nil {
		return generic.Period{}, fmt.Errorf("load settings: %w", err)
	}
	if settings == nil {
		return generic.Period{}, fmt.Errorf("company %s: %w", companyID, generic.ErrMissingConfiguration)
	}
	return generic.ResolvePeriod(ref, settings.Cycle())
}

func (c *Calculator) aggregate(in *periodInputs, userID generic.UserID, shifts []Shift) (PayrollSummary, error) {
	return AggregatePeriod(AggregateInput{
		Shifts:        shifts,
		Settings:      in.settings,
		Calendar:      in.calendar,
		Benefits:      in.benefits,
		Deductions:    in.deductions,
		UserID:        userID,
		ReferenceDate: in.period.Start,
		Logger:        c.Logger,
	})
}

// =============================================================================
// SUMMARIES
// =============================================================================

// Summary computes userID's summary for the period containing ref.
func (c *Calculator) Summary(ctx context.Context, companyID generic.CompanyID, userID generic.UserID, ref generic.TimePoint) (PayrollSummary, error) {
	in, err := c.loadInputs(ctx, companyID, ref)
	if err != nil {
		return PayrollSummary{}, err
	}
	shifts, err := c.Repo.ListShifts(ctx, ShiftFilter{
		CompanyID: companyID,
		UserID:    userID,
		From:      &in.period.Start,
		To:        &in.period.End,
	})
	if err != nil {
		return PayrollSummary{}, fmt.Errorf("load shifts: %w", err)
	}
	return c.aggregate(in, userID, shifts)
}

// SummariesForCompany computes a summary for every worker with at least one
// shift in the period containing ref. Results are ordered by user ID.
func (c *Calculator) SummariesForCompany(ctx context.Context, companyID generic.CompanyID, ref generic.TimePoint) ([]PayrollSummary, error) {
	in, err := c.loadInputs(ctx, companyID, ref)
	if err != nil {
		return nil, err
	}
	users, byUser, err := c.shiftsByUser(ctx, companyID, in.period)
	if err != nil {
		return nil, err
	}

	results := make([]PayrollSummary, len(users))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers())

	for i, userID := range users {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			s, err := c.aggregate(in, userID, byUser[userID])
			if err != nil {
				return fmt.Errorf("user %s: %w", userID, err)
			}
			results[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Calculator) shiftsByUser(ctx context.Context, companyID generic.CompanyID, period generic.Period) ([]generic.UserID, map[generic.UserID][]Shift, error) {
	shifts, err := c.Repo.ListShifts(ctx, ShiftFilter{
		CompanyID: companyID,
		From:      &period.Start,
		To:        &period.End,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("load shifts: %w", err)
	}

	byUser := make(map[generic.UserID][]Shift)
	for _, s := range shifts {
		byUser[s.UserID] = append(byUser[s.UserID], s)
	}
	users := make([]generic.UserID, 0, len(byUser))
	for u := range byUser {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	return users, byUser, nil
}

func (c *Calculator) workers() int {
	if c.Workers <= 0 {
		return DefaultWorkers
	}
	return c.Workers
}

// =============================================================================
// PERIOD CLOSING
// =============================================================================

// ClosePeriod freezes userID's summary for the period containing ref.
// Closing the same company period twice returns generic.ErrAlreadyClosed.
func (c *Calculator) ClosePeriod(ctx context.Context, companyID generic.CompanyID, userID generic.UserID, ref generic.TimePoint, closedBy string) (*PayrollRecord, error) {
	period, err := c.PeriodFor(ctx, companyID, ref)
	if err != nil {
		return nil, err
	}
	existing, err := c.Repo.GetPayrollRecord(ctx, companyID, userID, period)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("company %s, user %s, period %s closed at %s: %w",
			companyID, userID, period, existing.ClosedAt.Format(time.RFC3339), generic.ErrAlreadyClosed)
	}

	summary, err := c.Summary(ctx, companyID, userID, ref)
	if err != nil {
		return nil, err
	}

	rec := PayrollRecord{
		ID:        c.NewID(),
		UserID:    userID,
		CompanyID: companyID,
		Period:    summary.Period,
		Summary:   summary,
		ShiftIDs:  shiftIDs(summary),
		ClosedAt:  c.Now().UTC(),
		ClosedBy:  closedBy,
	}
	if err := c.Repo.SavePayrollRecord(ctx, rec); err != nil {
		return nil, err
	}

	c.Logger.Info("payroll period closed",
		"user_id", userID,
		"company_id", companyID,
		"period", summary.Period.String(),
		"net_pay", summary.NetPay.String(),
		"closed_by", closedBy,
	)
	return &rec, nil
}

// CloseEndedPeriods closes the period preceding the one containing today
// for every worker of the company who has shifts in it.
func (c *Calculator) CloseEndedPeriods(ctx context.Context, companyID generic.CompanyID, today generic.TimePoint) (closed, skipped int, err error) {
	settings, err := c.Repo.GetSettings(ctx, companyID)
	if err != nil {
		return 0, 0, err
	}
	if settings == nil {
		return 0, 0, fmt.Errorf("company %s: %w", companyID, generic.ErrMissingConfiguration)
	}

	current, err := generic.ResolvePeriod(today, settings.Cycle())
	if err != nil {
		return 0, 0, err
	}
	previous, err := current.Previous(settings.Cycle())
	if err != nil {
		return 0, 0, err
	}

	users, _, err := c.shiftsByUser(ctx, companyID, previous)
	if err != nil {
		return 0, 0, err
	}
	for _, userID := range users {
		_, err := c.ClosePeriod(ctx, companyID, userID, previous.Start, ClosedByScheduler)
		switch {
		case errors.Is(err, generic.ErrAlreadyClosed):
			skipped++
		case err != nil:
			return closed, skipped, err
		default:
			closed++
		}
	}
	return closed, skipped, nil
}

// =============================================================================
// SHIFT WRITES
// =============================================================================

// SaveShift validates and stores a shift, assigning an ID to new shifts.
// Shifts dated inside a closed period cannot be created, moved or edited.
func (c *Calculator) SaveShift(ctx context.Context, shift Shift) (Shift, error) {
	if err := ValidateClock("start_time", shift.StartTime); err != nil {
		return Shift{}, err
	}
	if err := ValidateClock("end_time", shift.EndTime); err != nil {
		return Shift{}, err
	}
	if shift.Date.IsZero() {
		return Shift{}, fmt.Errorf("shift date is required: %w", generic.ErrInvalidPeriod)
	}
	shift.Date = generic.DateOf(shift.Date.Time)

	now := c.Now().UTC()
	if shift.ID == "" {
		shift.ID = generic.ShiftID(c.NewID())
		shift.CreatedAt = now
	} else {
		existing, err := c.Repo.GetShift(ctx, shift.ID)
		if err != nil {
			return Shift{}, err
		}
		if existing != nil {
			if err := c.ensureOpen(ctx, *existing); err != nil {
				return Shift{}, err
			}
			shift.CreatedAt = existing.CreatedAt
		} else {
			shift.CreatedAt = now
		}
	}
	if err := c.ensureOpen(ctx, shift); err != nil {
		return Shift{}, err
	}
	shift.UpdatedAt = now

	if err := c.Repo.SaveShift(ctx, shift); err != nil {
		return Shift{}, err
	}
	return shift, nil
}

// DeleteShift removes a shift unless its period is closed.
func (c *Calculator) DeleteShift(ctx context.Context, id generic.ShiftID) error {
	existing, err := c.Repo.GetShift(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("shift %s: %w", id, generic.ErrNotFound)
	}
	if err := c.ensureOpen(ctx, *existing); err != nil {
		return err
	}
	return c.Repo.DeleteShift(ctx, id)
}

// ensureOpen fails when the shift's date falls in a closed period of its owner.
func (c *Calculator) ensureOpen(ctx context.Context, shift Shift) error {
	records, err := c.Repo.ListPayrollRecords(ctx, shift.UserID)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if rec.CompanyID == shift.CompanyID && rec.Period.Contains(shift.Date) {
			return fmt.Errorf("shift on %s, period %s: %w", shift.Date, rec.Period, generic.ErrPeriodClosed)
		}
	}
	return nil
}
