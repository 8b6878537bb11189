package payroll_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/shift-payroll/generic"
	"github.com/warp/shift-payroll/payroll"
)

func aggregate(t *testing.T, in payroll.AggregateInput) payroll.PayrollSummary {
	t.Helper()
	if in.Settings == nil {
		in.Settings = testSettings()
	}
	if in.UserID == "" {
		in.UserID = "u1"
	}
	if in.ReferenceDate.IsZero() {
		in.ReferenceDate = monday
	}
	if in.Calendar == nil {
		in.Calendar = generic.NewHolidaySet()
	}
	s, err := payroll.AggregatePeriod(in)
	require.NoError(t, err)
	return s
}

// =============================================================================
// PERIOD FILTERING & DAILY FOLD
// =============================================================================

func TestAggregatePeriod_SameDayShiftsShareDailyLimit(t *testing.T) {
	// GIVEN: Two Monday shifts, listed out of order
	// WHEN: Aggregating
	// THEN: The earlier shift uses 6 regular hours, the later one gets 2 regular + 2 overtime

	s := aggregate(t, payroll.AggregateInput{
		Shifts: []payroll.Shift{
			newShift("late", "u1", monday, "15:00", "19:00"),
			newShift("early", "u1", monday, "08:00", "14:00"),
		},
	})

	assertOnlyBuckets(t, s.HoursIn, map[payroll.Bucket]string{
		payroll.BucketDay:         "8",
		payroll.BucketDayOvertime: "2",
	})
	assertDecimal(t, "10", s.TotalHours)
	assertDecimal(t, "105000", s.GrossPay) // 8*10000 + 2*12500
	assert.Equal(t, 1, s.DaysWorked)

	require.Len(t, s.Days, 1)
	require.Len(t, s.Days[0].Shifts, 2)
	assert.Equal(t, generic.ShiftID("early"), s.Days[0].Shifts[0].ShiftID)
	assert.Equal(t, generic.ShiftID("late"), s.Days[0].Shifts[1].ShiftID)
	assertDecimal(t, "2", s.Days[0].Shifts[1].Hours(payroll.BucketDayOvertime))
}

func TestAggregatePeriod_DailyCounterResetsEachDate(t *testing.T) {
	s := aggregate(t, payroll.AggregateInput{
		Shifts: []payroll.Shift{
			newShift("mon", "u1", monday, "08:00", "16:00"),
			newShift("tue", "u1", tuesday, "08:00", "16:00"),
		},
	})

	assertOnlyBuckets(t, s.HoursIn, map[payroll.Bucket]string{payroll.BucketDay: "16"})
	assert.Equal(t, 2, s.DaysWorked)
}

func TestAggregatePeriod_MidnightShiftCountsForStartDate(t *testing.T) {
	// A shift starting Monday 20:00 belongs to Monday, so Tuesday's 08:00 shift starts a fresh day
	s := aggregate(t, payroll.AggregateInput{
		Shifts: []payroll.Shift{
			newShift("night", "u1", monday, "20:00", "04:00"),
			newShift("tue", "u1", tuesday, "08:00", "16:00"),
		},
	})

	assertOnlyBuckets(t, s.HoursIn, map[payroll.Bucket]string{
		payroll.BucketDay:   "9",
		payroll.BucketNight: "7",
	})
	assert.Equal(t, 2, s.DaysWorked)
}

func TestAggregatePeriod_FiltersUserAndPeriod(t *testing.T) {
	s := aggregate(t, payroll.AggregateInput{
		Shifts: []payroll.Shift{
			newShift("mine", "u1", monday, "08:00", "12:00"),
			newShift("other-user", "u2", monday, "08:00", "12:00"),
			newShift("last-month", "u1", generic.NewTimePoint(2024, time.February, 29), "08:00", "12:00"),
			newShift("next-month", "u1", generic.NewTimePoint(2024, time.April, 1), "08:00", "12:00"),
			newShift("month-end", "u1", generic.NewTimePoint(2024, time.March, 31), "22:00", "02:00"),
		},
	})

	// 4h Monday plus March 31 (a Sunday) 22:00-02:00 into a normal April 1
	assertOnlyBuckets(t, s.HoursIn, map[payroll.Bucket]string{
		payroll.BucketDay:          "4",
		payroll.BucketHolidayNight: "2",
		payroll.BucketNight:        "2",
	})
	assert.Equal(t, 2, s.DaysWorked)
	assert.True(t, s.Period.Start.Equal(generic.NewTimePoint(2024, time.March, 1)))
	assert.True(t, s.Period.End.Equal(generic.NewTimePoint(2024, time.March, 31)))
}

func TestAggregatePeriod_BiWeeklyWindow(t *testing.T) {
	settings := testSettings()
	settings.PayrollCycle = generic.CycleBiWeekly

	shifts := []payroll.Shift{
		newShift("first-half", "u1", generic.NewTimePoint(2024, time.February, 12), "08:00", "16:00"),
		newShift("second-half", "u1", generic.NewTimePoint(2024, time.February, 20), "08:00", "12:00"),
	}

	second := aggregate(t, payroll.AggregateInput{Shifts: shifts, Settings: settings, ReferenceDate: generic.NewTimePoint(2024, time.February, 20)})
	assertDecimal(t, "4", second.TotalHours)
	assert.True(t, second.Period.Start.Equal(generic.NewTimePoint(2024, time.February, 16)))
	assert.True(t, second.Period.End.Equal(generic.NewTimePoint(2024, time.February, 29)))

	first := aggregate(t, payroll.AggregateInput{Shifts: shifts, Settings: settings, ReferenceDate: generic.NewTimePoint(2024, time.February, 10)})
	assertDecimal(t, "8", first.TotalHours)
	assert.Equal(t, generic.CycleBiWeekly, first.Cycle)
}

func TestAggregatePeriod_NoShifts(t *testing.T) {
	s := aggregate(t, payroll.AggregateInput{
		Benefits:   []payroll.Benefit{{ID: "b1", Name: "Transport", Type: payroll.BenefitFixed, Value: dec("50000")}},
		Deductions: []payroll.Deduction{{ID: "d1", Name: "Union", Type: payroll.DeductionFixed, Value: dec("10000")}},
	})

	assertDecimal(t, "0", s.TotalHours)
	assertDecimal(t, "0", s.GrossPay)
	assertDecimal(t, "40000", s.NetPay)
	assert.Equal(t, 0, s.DaysWorked)
	assert.False(t, s.Partial)
}

// =============================================================================
// BENEFITS & DEDUCTIONS
// =============================================================================

func TestAggregatePeriod_BenefitTypes(t *testing.T) {
	// GIVEN: 8 day hours = 80,000 gross
	// WHEN: Applying a fixed, a percentage and a per-hour benefit
	// THEN: 50,000 + 10% of 80,000 + 1,000 * 8 = 66,000

	s := aggregate(t, payroll.AggregateInput{
		Shifts: []payroll.Shift{newShift("s1", "u1", monday, "08:00", "16:00")},
		Benefits: []payroll.Benefit{
			{ID: "b1", Name: "Transport", Type: payroll.BenefitFixed, Value: dec("50000")},
			{ID: "b2", Name: "Bonus", Type: payroll.BenefitPercentage, Value: dec("10")},
			{ID: "b3", Name: "Meal", Type: payroll.BenefitPerHour, Value: dec("1000")},
		},
	})

	assertDecimal(t, "66000", s.TotalBenefits)
	require.Len(t, s.BenefitBreakdown, 3)
	assertDecimal(t, "50000", s.BenefitBreakdown[0].Amount)
	assertDecimal(t, "8000", s.BenefitBreakdown[1].Amount)
	assertDecimal(t, "8000", s.BenefitBreakdown[2].Amount)
	assertDecimal(t, "146000", s.NetPay)
}

func TestAggregatePeriod_PercentageDeduction(t *testing.T) {
	// GIVEN: 8 hours at 125,000/h = 1,000,000 gross, no benefits
	// WHEN: Applying a 4% deduction
	// THEN: The deduction is 40,000 and net is 960,000

	settings := testSettings()
	settings.Rates.Day = dec("125000")

	s := aggregate(t, payroll.AggregateInput{
		Shifts:     []payroll.Shift{newShift("s1", "u1", monday, "08:00", "16:00")},
		Settings:   settings,
		Deductions: []payroll.Deduction{{ID: "d1", Name: "Health", Type: payroll.DeductionPercentage, Value: dec("4")}},
	})

	assertDecimal(t, "1000000", s.GrossPay)
	assertDecimal(t, "40000", s.TotalDeductions)
	require.Len(t, s.DeductionBreakdown, 1)
	assertDecimal(t, "40000", s.DeductionBreakdown[0].Amount)
	assertDecimal(t, "960000", s.NetPay)
}

func TestAggregatePeriod_DeductionBase(t *testing.T) {
	settings := testSettings()
	settings.Rates.Day = dec("125000")

	in := payroll.AggregateInput{
		Shifts:     []payroll.Shift{newShift("s1", "u1", monday, "08:00", "16:00")},
		Settings:   settings,
		Benefits:   []payroll.Benefit{{ID: "b1", Name: "Transport", Type: payroll.BenefitFixed, Value: dec("100000")}},
		Deductions: []payroll.Deduction{{ID: "d1", Name: "Health", Type: payroll.DeductionPercentage, Value: dec("4")}},
	}

	// Default: gross plus benefits
	s := aggregate(t, in)
	assertDecimal(t, "44000", s.TotalDeductions)
	assertDecimal(t, "1056000", s.NetPay)

	// Gross only
	settings.DeductionBase = payroll.DeductionBaseGross
	s = aggregate(t, in)
	assertDecimal(t, "40000", s.TotalDeductions)
	assertDecimal(t, "1060000", s.NetPay)
}

func TestAggregatePeriod_RulesScaleLinearly(t *testing.T) {
	benefits := []payroll.Benefit{
		{ID: "b1", Name: "Meal", Type: payroll.BenefitPerHour, Value: dec("1000")},
		{ID: "b2", Name: "Bonus", Type: payroll.BenefitPercentage, Value: dec("5")},
	}

	one := aggregate(t, payroll.AggregateInput{
		Shifts:   []payroll.Shift{newShift("mon", "u1", monday, "08:00", "16:00")},
		Benefits: benefits,
	})
	two := aggregate(t, payroll.AggregateInput{
		Shifts: []payroll.Shift{
			newShift("mon", "u1", monday, "08:00", "16:00"),
			newShift("tue", "u1", tuesday, "08:00", "16:00"),
		},
		Benefits: benefits,
	})

	assert.True(t, two.TotalBenefits.Equal(one.TotalBenefits.Mul(dec("2"))), "one %s, two %s", one.TotalBenefits, two.TotalBenefits)
}

func TestAggregatePeriod_AppliesTo(t *testing.T) {
	s := aggregate(t, payroll.AggregateInput{
		Shifts: []payroll.Shift{newShift("s1", "u1", monday, "08:00", "16:00")},
		Benefits: []payroll.Benefit{
			{ID: "b-all", Name: "Everyone", Type: payroll.BenefitFixed, Value: dec("1000"), AppliesTo: []string{"all"}},
			{ID: "b-me", Name: "Just me", Type: payroll.BenefitFixed, Value: dec("2000"), AppliesTo: []string{"u1"}},
			{ID: "b-other", Name: "Someone else", Type: payroll.BenefitFixed, Value: dec("4000"), AppliesTo: []string{"u2"}},
		},
		Deductions: []payroll.Deduction{
			{ID: "d-other", Name: "Someone else", Type: payroll.DeductionFixed, Value: dec("500"), AppliesTo: []string{"u2", "u3"}},
		},
	})

	assertDecimal(t, "3000", s.TotalBenefits)
	assertDecimal(t, "0", s.TotalDeductions)
	assert.Len(t, s.BenefitBreakdown, 2)
}

func TestAggregatePeriod_UnknownRuleTypeIgnored(t *testing.T) {
	// GIVEN: A benefit and a deduction with unrecognized types
	// WHEN: Aggregating
	// THEN: They contribute nothing, a warning is logged and recorded

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	s := aggregate(t, payroll.AggregateInput{
		Shifts:     []payroll.Shift{newShift("s1", "u1", monday, "08:00", "16:00")},
		Benefits:   []payroll.Benefit{{ID: "b1", Name: "Mystery", Type: "lottery", Value: dec("99999")}},
		Deductions: []payroll.Deduction{{ID: "d1", Name: "Mystery", Type: "per-hour", Value: dec("99999")}},
		Logger:     logger,
	})

	assertDecimal(t, "0", s.TotalBenefits)
	assertDecimal(t, "0", s.TotalDeductions)
	assertDecimal(t, "80000", s.NetPay)
	assert.Len(t, s.Warnings, 2)
	assert.Empty(t, s.BenefitBreakdown)
	assert.Contains(t, logs.String(), "ignoring payroll rule")
	assert.Contains(t, logs.String(), "lottery")
	assert.False(t, s.Partial, "ignored rules do not make the summary partial")
}

func TestAggregatePeriod_NegativeNetPay(t *testing.T) {
	in := payroll.AggregateInput{
		Shifts:     []payroll.Shift{newShift("s1", "u1", monday, "08:00", "16:00")},
		Settings:   testSettings(),
		Deductions: []payroll.Deduction{{ID: "d1", Name: "Advance", Type: payroll.DeductionFixed, Value: dec("200000")}},
	}

	s := aggregate(t, in)
	assertDecimal(t, "-120000", s.NetPay)
	assert.False(t, s.NetClamped)

	in.Settings.ClampNetPay = true
	s = aggregate(t, in)
	assertDecimal(t, "0", s.NetPay)
	assert.True(t, s.NetClamped)
}

// =============================================================================
// FAILURE MODES
// =============================================================================

func TestAggregatePeriod_InvalidShiftExcluded(t *testing.T) {
	// GIVEN: One valid shift and one with a malformed end time
	// WHEN: Aggregating
	// THEN: The summary covers the valid shift and lists the excluded one

	var logs bytes.Buffer
	s := aggregate(t, payroll.AggregateInput{
		Shifts: []payroll.Shift{
			newShift("good", "u1", monday, "08:00", "12:00"),
			newShift("bad", "u1", monday, "13:00", "25:00"),
		},
		Logger: slog.New(slog.NewJSONHandler(&logs, nil)),
	})

	assertDecimal(t, "4", s.TotalHours)
	assert.True(t, s.Partial)
	require.Len(t, s.Excluded, 1)
	assert.Equal(t, generic.ShiftID("bad"), s.Excluded[0].ShiftID)
	assert.Contains(t, s.Excluded[0].Reason, "end_time")
	assert.Contains(t, logs.String(), "shift excluded from payroll")
}

func TestAggregatePeriod_OnlyInvalidShiftsOnADay(t *testing.T) {
	s := aggregate(t, payroll.AggregateInput{
		Shifts: []payroll.Shift{newShift("bad", "u1", monday, "x", "12:00")},
	})
	assert.Equal(t, 0, s.DaysWorked)
	assert.True(t, s.Partial)
}

func TestAggregatePeriod_MissingConfiguration(t *testing.T) {
	_, err := payroll.AggregatePeriod(payroll.AggregateInput{
		Shifts:        []payroll.Shift{newShift("s1", "u1", monday, "08:00", "16:00")},
		UserID:        "u1",
		ReferenceDate: monday,
	})
	assert.ErrorIs(t, err, generic.ErrMissingConfiguration)
}

func TestAggregatePeriod_InvalidConfiguration(t *testing.T) {
	tests := map[string]func(*payroll.CompanySettings){
		"cycle":          func(s *payroll.CompanySettings) { s.PayrollCycle = "weekly" },
		"night hour":     func(s *payroll.CompanySettings) { s.NightShiftStartHour = intPtr(24) },
		"negative limit": func(s *payroll.CompanySettings) { s.DailyHourLimit = decPtr("-1") },
		"deduction base": func(s *payroll.CompanySettings) { s.DeductionBase = "net" },
		"negative rate":  func(s *payroll.CompanySettings) { s.Rates.Night = dec("-5") },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			s := testSettings()
			mutate(s)
			_, err := payroll.AggregatePeriod(payroll.AggregateInput{Settings: s, UserID: "u1", ReferenceDate: monday})
			assert.ErrorIs(t, err, generic.ErrInvalidConfiguration)
		})
	}
}

func TestAggregatePeriod_Defaults(t *testing.T) {
	// Empty cycle, night start and daily limit fall back to monthly / 21 / 8
	settings := &payroll.CompanySettings{CompanyID: "acme", Rates: testSettings().Rates}

	s := aggregate(t, payroll.AggregateInput{
		Shifts:   []payroll.Shift{newShift("s1", "u1", monday, "14:00", "23:00")},
		Settings: settings,
	})

	assertOnlyBuckets(t, s.HoursIn, map[payroll.Bucket]string{
		payroll.BucketDay:           "7",
		payroll.BucketNight:         "1",
		payroll.BucketNightOvertime: "1",
	})
	assert.Equal(t, generic.CycleMonthly, s.Cycle)
}

// =============================================================================
// PROPERTIES
// =============================================================================

func TestAggregatePeriod_Idempotent(t *testing.T) {
	in := payroll.AggregateInput{
		Shifts: []payroll.Shift{
			newShift("a", "u1", monday, "20:00", "04:00"),
			newShift("b", "u1", saturday, "18:00", "02:00"),
			newShift("c", "u1", sunday, "10:00", "14:00"),
			newShift("d", "u1", tuesday, "07:00", "19:30"),
		},
		Benefits:   []payroll.Benefit{{ID: "b1", Name: "Bonus", Type: payroll.BenefitPercentage, Value: dec("3.5")}},
		Deductions: []payroll.Deduction{{ID: "d1", Name: "Health", Type: payroll.DeductionPercentage, Value: dec("4")}},
	}

	first, err := json.Marshal(aggregate(t, in))
	require.NoError(t, err)
	second, err := json.Marshal(aggregate(t, in))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestAggregatePeriod_BucketsSumToTotal(t *testing.T) {
	s := aggregate(t, payroll.AggregateInput{
		Shifts: []payroll.Shift{
			newShift("a", "u1", monday, "20:13", "04:07"),
			newShift("b", "u1", monday, "05:01", "09:59"),
			newShift("c", "u1", saturday, "17:31", "02:29"),
			newShift("d", "u1", sunday, "09:00", "21:45"),
		},
	})

	diff := sumHours(s.HoursIn).Sub(s.TotalHours).Abs()
	assert.True(t, diff.LessThan(dec("0.000001")), "buckets %s, total %s", sumHours(s.HoursIn), s.TotalHours)

	gross := dec("0")
	for _, b := range payroll.Buckets {
		gross = gross.Add(s.PayIn(b))
	}
	assert.True(t, gross.Equal(s.GrossPay))
}
