package generic

import (
	"time"
)

// =============================================================================
// TIME POINT - Calendar day or wall-clock instant, always UTC
// =============================================================================

type TimePoint struct {
	Time        time.Time
	Granularity Granularity
}

type Granularity int

const (
	GranularityDay Granularity = iota
	GranularityHour
	GranularityMinute
)

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Granularity: GranularityDay}
}

// DateOf truncates t to its calendar day, reading t in its own location.
func DateOf(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string into a day TimePoint.
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return TimePoint{}, err
	}
	return DateOf(t), nil
}

func Today() TimePoint {
	now := time.Now().UTC()
	return NewTimePoint(now.Year(), now.Month(), now.Day())
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return tp.Before(other) || tp.Equal(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return tp.After(other) || tp.Equal(other) }

func (tp TimePoint) normalize() time.Time {
	switch tp.Granularity {
	case GranularityDay:
		return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
	case GranularityHour:
		return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), tp.Time.Hour(), 0, 0, 0, time.UTC)
	default:
		return tp.Time
	}
}

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint {
	return TimePoint{Time: tp.Time.AddDate(0, 0, n), Granularity: tp.Granularity}
}

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }

func (tp TimePoint) String() string {
	switch tp.Granularity {
	case GranularityDay:
		return tp.Time.Format("2006-01-02")
	case GranularityHour:
		return tp.Time.Format("2006-01-02 15:00")
	default:
		return tp.Time.Format(time.RFC3339)
	}
}

// =============================================================================
// HOLIDAY CALENDAR - Sundays plus configured public holidays
// =============================================================================

// Holiday is a public holiday. Holidays apply to every company.
// Sundays are implicit and never stored.
type Holiday struct {
	ID        string
	Date      TimePoint // The holiday date
	Name      string    // e.g., "Día de la Independencia"
	Recurring bool      // true = same month/day every year
}

// HolidayCalendar decides whether a calendar day pays holiday rates.
type HolidayCalendar interface {
	// IsHoliday reports whether date is a Sunday or a configured holiday.
	// Only the calendar day of date is considered.
	IsHoliday(date TimePoint) bool
}

// HolidaySet is the standard HolidayCalendar: Sundays, explicit dates and
// recurring month/day holidays. The zero value treats only Sundays as holidays.
type HolidaySet struct {
	dates     map[string]struct{}
	monthDays map[string]struct{}
}

// NewHolidaySet builds a calendar from a holiday list.
func NewHolidaySet(holidays ...Holiday) *HolidaySet {
	hs := &HolidaySet{
		dates:     make(map[string]struct{}, len(holidays)),
		monthDays: make(map[string]struct{}),
	}
	for _, h := range holidays {
		hs.Add(h)
	}
	return hs
}

// Add registers another holiday.
func (hs *HolidaySet) Add(h Holiday) {
	if hs.dates == nil {
		hs.dates = make(map[string]struct{})
	}
	if hs.monthDays == nil {
		hs.monthDays = make(map[string]struct{})
	}
	if h.Recurring {
		hs.monthDays[h.Date.Time.Format("01-02")] = struct{}{}
		return
	}
	hs.dates[h.Date.Time.Format("2006-01-02")] = struct{}{}
}

func (hs *HolidaySet) IsHoliday(date TimePoint) bool {
	if date.Weekday() == time.Sunday {
		return true
	}
	if hs == nil {
		return false
	}
	if _, ok := hs.dates[date.Time.Format("2006-01-02")]; ok {
		return true
	}
	_, ok := hs.monthDays[date.Time.Format("01-02")]
	return ok
}

// Len returns the number of configured holidays, Sundays excluded.
func (hs *HolidaySet) Len() int {
	if hs == nil {
		return 0
	}
	return len(hs.dates) + len(hs.monthDays)
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

func StartOfMonth(year int, month time.Month) TimePoint { return NewTimePoint(year, month, 1) }
func EndOfMonth(year int, month time.Month) TimePoint {
	t := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return TimePoint{Time: t, Granularity: GranularityDay}
}
