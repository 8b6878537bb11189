package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// PERIOD - The window a payroll summary covers
// =============================================================================

// Period is an inclusive window of calendar days.
// End covers the whole day, through 23:59:59.
//
// Examples:
//   - Monthly February 2024: Feb 1 - Feb 29
//   - Bi-weekly first half: Mar 1 - Mar 15
//   - Bi-weekly second half: Mar 16 - Mar 31
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Contains returns true if the day of t is within [Start, End].
func (p Period) Contains(t TimePoint) bool {
	day := DateOf(t.Time)
	return day.AfterOrEqual(p.Start) && day.BeforeOrEqual(p.End)
}

// EndInstant is the last second covered by the period.
func (p Period) EndInstant() time.Time {
	return time.Date(p.End.Year(), p.End.Month(), p.End.Day(), 23, 59, 59, 0, time.UTC)
}

// Days returns all days in the period as a slice of TimePoints.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	current := p.Start
	for current.BeforeOrEqual(p.End) {
		days = append(days, current)
		current = current.AddDays(1)
	}
	return days
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// Cycle is the payroll cycle configured per company.
type Cycle string

const (
	CycleMonthly  Cycle = "monthly"   // 1st - last day of month
	CycleBiWeekly Cycle = "bi-weekly" // 1st - 15th, 16th - last day of month
)

// Valid reports whether c is a known cycle. The empty cycle is valid and means monthly.
func (c Cycle) Valid() bool {
	return c == "" || c == CycleMonthly || c == CycleBiWeekly
}

// =============================================================================
// PERIOD RESOLVER - Determines which pay period a date falls into
// =============================================================================

// ResolvePeriod returns the pay period containing ref for the given cycle.
// An empty cycle resolves as monthly.
func ResolvePeriod(ref TimePoint, cycle Cycle) (Period, error) {
	year, month, day := ref.Year(), ref.Month(), ref.Day()

	switch cycle {
	case "", CycleMonthly:
		return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}, nil

	case CycleBiWeekly:
		if day <= 15 {
			return Period{Start: StartOfMonth(year, month), End: NewTimePoint(year, month, 15)}, nil
		}
		return Period{Start: NewTimePoint(year, month, 16), End: EndOfMonth(year, month)}, nil

	default:
		return Period{}, &InvalidConfigurationError{Field: "payroll_cycle", Value: string(cycle)}
	}
}

// Next returns the pay period that starts the day after p ends.
func (p Period) Next(cycle Cycle) (Period, error) {
	return ResolvePeriod(p.End.AddDays(1), cycle)
}

// Previous returns the pay period that ends the day before p starts.
func (p Period) Previous(cycle Cycle) (Period, error) {
	if p.Start.IsZero() {
		return Period{}, fmt.Errorf("previous of empty period: %w", ErrInvalidPeriod)
	}
	return ResolvePeriod(p.Start.AddDays(-1), cycle)
}
