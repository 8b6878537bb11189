// Package payroll turns recorded shifts into pay-period figures.
// It classifies every worked minute into one of eight pay categories,
// aggregates classified shifts over a pay period and applies the
// company's benefit and deduction rules to reach net pay.
package payroll

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/shift-payroll/generic"
)

// =============================================================================
// PAY CATEGORIES
// =============================================================================

// Bucket is one of the eight pay categories:
// {normal, holiday} x {day, night} x {regular, overtime}.
type Bucket int

const (
	BucketDay Bucket = iota
	BucketNight
	BucketDayOvertime
	BucketNightOvertime
	BucketHolidayDay
	BucketHolidayNight
	BucketHolidayDayOvertime
	BucketHolidayNightOvertime

	BucketCount = 8
)

// Buckets lists all categories in display order.
var Buckets = [BucketCount]Bucket{
	BucketDay, BucketNight, BucketDayOvertime, BucketNightOvertime,
	BucketHolidayDay, BucketHolidayNight, BucketHolidayDayOvertime, BucketHolidayNightOvertime,
}

var bucketNames = [BucketCount]string{
	"day", "night", "day_overtime", "night_overtime",
	"holiday_day", "holiday_night", "holiday_day_overtime", "holiday_night_overtime",
}

func bucketFor(holiday, night, overtime bool) Bucket {
	var b Bucket
	if night {
		b |= 1
	}
	if overtime {
		b |= 2
	}
	if holiday {
		b |= 4
	}
	return b
}

func (b Bucket) String() string   { return bucketNames[b] }
func (b Bucket) IsNight() bool    { return b&1 != 0 }
func (b Bucket) IsOvertime() bool { return b&2 != 0 }
func (b Bucket) IsHoliday() bool  { return b&4 != 0 }

// ParseBucket resolves a category name such as "holiday_night_overtime".
func ParseBucket(name string) (Bucket, bool) {
	i := slices.Index(bucketNames[:], name)
	if i < 0 {
		return 0, false
	}
	return Bucket(i), true
}

// =============================================================================
// SHIFT
// =============================================================================

// Shift is one recorded work interval. EndTime at or before StartTime
// means the shift crosses midnight into the next calendar day.
type Shift struct {
	ID          generic.ShiftID
	UserID      generic.UserID
	CompanyID   generic.CompanyID
	Date        generic.TimePoint // calendar day the shift starts on
	StartTime   string            // HH:MM, 24h
	EndTime     string            // HH:MM, 24h
	ItemDetails []string
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// =============================================================================
// COMPANY SETTINGS
// =============================================================================

const (
	DefaultNightShiftStartHour = 21
	NightShiftEndHour          = 6
)

var DefaultDailyHourLimit = decimal.NewFromInt(8)

// DeductionBase selects what percentage deductions are computed on.
type DeductionBase string

const (
	DeductionBaseGrossPlusBenefits DeductionBase = "gross_plus_benefits"
	DeductionBaseGross             DeductionBase = "gross"
)

// Rates holds the hourly rate of each pay category. Unset rates are zero.
type Rates struct {
	Day                  decimal.Decimal
	Night                decimal.Decimal
	DayOvertime          decimal.Decimal
	NightOvertime        decimal.Decimal
	HolidayDay           decimal.Decimal
	HolidayNight         decimal.Decimal
	HolidayDayOvertime   decimal.Decimal
	HolidayNightOvertime decimal.Decimal
}

// For returns the hourly rate of b.
func (r Rates) For(b Bucket) decimal.Decimal {
	switch b {
	case BucketDay:
		return r.Day
	case BucketNight:
		return r.Night
	case BucketDayOvertime:
		return r.DayOvertime
	case BucketNightOvertime:
		return r.NightOvertime
	case BucketHolidayDay:
		return r.HolidayDay
	case BucketHolidayNight:
		return r.HolidayNight
	case BucketHolidayDayOvertime:
		return r.HolidayDayOvertime
	case BucketHolidayNightOvertime:
		return r.HolidayNightOvertime
	}
	return decimal.Zero
}

// Set assigns the hourly rate of b.
func (r *Rates) Set(b Bucket, v decimal.Decimal) {
	switch b {
	case BucketDay:
		r.Day = v
	case BucketNight:
		r.Night = v
	case BucketDayOvertime:
		r.DayOvertime = v
	case BucketNightOvertime:
		r.NightOvertime = v
	case BucketHolidayDay:
		r.HolidayDay = v
	case BucketHolidayNight:
		r.HolidayNight = v
	case BucketHolidayDayOvertime:
		r.HolidayDayOvertime = v
	case BucketHolidayNightOvertime:
		r.HolidayNightOvertime = v
	}
}

// CompanySettings configures payroll for one company.
// Nil pointers fall back to the documented defaults.
type CompanySettings struct {
	CompanyID           generic.CompanyID
	PayrollCycle        generic.Cycle    // empty = monthly
	NightShiftStartHour *int             // 0-23, default 21
	DailyHourLimit      *decimal.Decimal // default 8
	Rates               Rates
	Currency            string
	SubscriptionFee     decimal.Decimal

	// DeductionBase defaults to gross_plus_benefits.
	DeductionBase DeductionBase

	// ClampNetPay floors net pay at zero instead of reporting a negative amount.
	ClampNetPay bool

	UpdatedAt time.Time
}

// NightStart returns the configured hour at which night pay begins.
func (s *CompanySettings) NightStart() int {
	if s.NightShiftStartHour == nil {
		return DefaultNightShiftStartHour
	}
	return *s.NightShiftStartHour
}

// DailyLimit returns the number of regular hours per calendar day.
func (s *CompanySettings) DailyLimit() decimal.Decimal {
	if s.DailyHourLimit == nil {
		return DefaultDailyHourLimit
	}
	return *s.DailyHourLimit
}

// Cycle returns the payroll cycle, monthly when unset.
func (s *CompanySettings) Cycle() generic.Cycle {
	if s.PayrollCycle == "" {
		return generic.CycleMonthly
	}
	return s.PayrollCycle
}

// Base returns the deduction base, gross_plus_benefits when unset.
func (s *CompanySettings) Base() DeductionBase {
	if s.DeductionBase == "" {
		return DeductionBaseGrossPlusBenefits
	}
	return s.DeductionBase
}

// Validate rejects out-of-range values with an InvalidConfigurationError.
func (s *CompanySettings) Validate() error {
	if !s.PayrollCycle.Valid() {
		return &generic.InvalidConfigurationError{Field: "payroll_cycle", Value: string(s.PayrollCycle)}
	}
	if h := s.NightStart(); h < 0 || h > 23 {
		return &generic.InvalidConfigurationError{Field: "night_shift_start_hour", Value: decimal.NewFromInt(int64(h)).String()}
	}
	if s.DailyLimit().IsNegative() {
		return &generic.InvalidConfigurationError{Field: "daily_hour_limit", Value: s.DailyLimit().String()}
	}
	switch s.Base() {
	case DeductionBaseGrossPlusBenefits, DeductionBaseGross:
	default:
		return &generic.InvalidConfigurationError{Field: "deduction_base", Value: string(s.DeductionBase)}
	}
	for _, b := range Buckets {
		if s.Rates.For(b).IsNegative() {
			return &generic.InvalidConfigurationError{Field: b.String() + "_rate", Value: s.Rates.For(b).String()}
		}
	}
	return nil
}

// =============================================================================
// BENEFITS & DEDUCTIONS
// =============================================================================

type BenefitType string

const (
	BenefitFixed      BenefitType = "fixed"
	BenefitPercentage BenefitType = "percentage"
	BenefitPerHour    BenefitType = "per-hour"
)

type DeductionType string

const (
	DeductionFixed      DeductionType = "fixed"
	DeductionPercentage DeductionType = "percentage"
)

// AppliesToAll marks a rule that covers every worker of the company.
const AppliesToAll = "all"

// Benefit is an addition to gross pay.
type Benefit struct {
	ID        string
	CompanyID generic.CompanyID
	Name      string
	Type      BenefitType
	Value     decimal.Decimal // fixed amount, percent of gross, or amount per hour
	AppliesTo []string        // user IDs; empty or "all" = everyone
}

// Deduction is a subtraction from gross pay plus benefits.
type Deduction struct {
	ID        string
	CompanyID generic.CompanyID
	Name      string
	Type      DeductionType
	Value     decimal.Decimal // fixed amount or percent of the deduction base
	AppliesTo []string
}

func (b Benefit) AppliesToUser(userID generic.UserID) bool   { return appliesTo(b.AppliesTo, userID) }
func (d Deduction) AppliesToUser(userID generic.UserID) bool { return appliesTo(d.AppliesTo, userID) }

func appliesTo(targets []string, userID generic.UserID) bool {
	if len(targets) == 0 {
		return true
	}
	for _, t := range targets {
		if t == AppliesToAll || t == string(userID) {
			return true
		}
	}
	return false
}

// =============================================================================
// RESULTS
// =============================================================================

// Minutes counts worked minutes per category.
type Minutes [BucketCount]int64

// Total returns the minutes across all categories.
func (m Minutes) Total() int64 {
	var total int64
	for _, v := range m {
		total += v
	}
	return total
}

// Hours returns the minutes of b as decimal hours.
func (m Minutes) Hours(b Bucket) decimal.Decimal {
	return minutesToHours(m[b])
}

func minutesToHours(m int64) decimal.Decimal {
	return decimal.NewFromInt(m).Div(sixty)
}

var (
	sixty   = decimal.NewFromInt(60)
	hundred = decimal.NewFromInt(100)
)

// ShiftResult is the classification of a single shift.
type ShiftResult struct {
	ShiftID    generic.ShiftID
	Date       generic.TimePoint
	StartTime  string
	EndTime    string
	Minutes    Minutes
	Pay        [BucketCount]decimal.Decimal
	TotalHours decimal.Decimal
	GrossPay   decimal.Decimal
}

// Hours returns the hours the shift put into b.
func (r ShiftResult) Hours(b Bucket) decimal.Decimal { return r.Minutes.Hours(b) }

// DaySummary groups the classified shifts of one calendar day.
type DaySummary struct {
	Date       generic.TimePoint
	Shifts     []ShiftResult
	TotalHours decimal.Decimal
	GrossPay   decimal.Decimal
}

// ShiftDiagnostic explains why a shift was left out of a summary.
type ShiftDiagnostic struct {
	ShiftID generic.ShiftID
	Date    generic.TimePoint
	Reason  string
}

// BreakdownLine is one applied benefit or deduction.
type BreakdownLine struct {
	ID     string
	Name   string
	Type   string
	Value  decimal.Decimal // the configured value
	Amount decimal.Decimal // what it contributed
}

// PayrollSummary is the pay-period result for one worker.
type PayrollSummary struct {
	UserID    generic.UserID
	CompanyID generic.CompanyID
	Period    generic.Period
	Cycle     generic.Cycle
	Currency  string

	Hours [BucketCount]decimal.Decimal
	Pay   [BucketCount]decimal.Decimal

	TotalHours         decimal.Decimal
	GrossPay           decimal.Decimal
	TotalBenefits      decimal.Decimal
	BenefitBreakdown   []BreakdownLine
	TotalDeductions    decimal.Decimal
	DeductionBreakdown []BreakdownLine
	NetPay             decimal.Decimal
	DaysWorked         int

	Days     []DaySummary
	Excluded []ShiftDiagnostic
	Warnings []string

	// Partial is set when at least one shift was excluded.
	Partial bool
	// NetClamped is set when a negative net pay was floored at zero.
	NetClamped bool
}

// HoursIn returns the period's hours in b.
func (s *PayrollSummary) HoursIn(b Bucket) decimal.Decimal { return s.Hours[b] }

// PayIn returns the period's pay in b.
func (s *PayrollSummary) PayIn(b Bucket) decimal.Decimal { return s.Pay[b] }
