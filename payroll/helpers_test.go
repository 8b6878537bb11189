package payroll_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/shift-payroll/generic"
	"github.com/warp/shift-payroll/payroll"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// March 2024: the 3rd and 10th are Sundays, the 9th is a Saturday.
var (
	monday   = generic.NewTimePoint(2024, time.March, 4)
	tuesday  = generic.NewTimePoint(2024, time.March, 5)
	saturday = generic.NewTimePoint(2024, time.March, 9)
	sunday   = generic.NewTimePoint(2024, time.March, 10)
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func intPtr(v int) *int { return &v }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// testSettings uses round rates so expected pay is easy to verify by hand.
func testSettings() *payroll.CompanySettings {
	return &payroll.CompanySettings{
		CompanyID:    "acme",
		PayrollCycle: generic.CycleMonthly,
		Currency:     "COP",
		Rates: payroll.Rates{
			Day:                  dec("10000"),
			Night:                dec("13500"),
			DayOvertime:          dec("12500"),
			NightOvertime:        dec("17500"),
			HolidayDay:           dec("17500"),
			HolidayNight:         dec("21000"),
			HolidayDayOvertime:   dec("20000"),
			HolidayNightOvertime: dec("25000"),
		},
	}
}

func newShift(id string, user string, date generic.TimePoint, start, end string) payroll.Shift {
	return payroll.Shift{
		ID:        generic.ShiftID(id),
		UserID:    generic.UserID(user),
		CompanyID: "acme",
		Date:      date,
		StartTime: start,
		EndTime:   end,
	}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}

// assertOnlyBuckets checks the listed bucket hours and that every other bucket is empty.
func assertOnlyBuckets(t *testing.T, hours func(payroll.Bucket) decimal.Decimal, want map[payroll.Bucket]string) {
	t.Helper()
	for _, b := range payroll.Buckets {
		expected, ok := want[b]
		if !ok {
			expected = "0"
		}
		assertDecimal(t, expected, hours(b), b.String())
	}
}

func sumHours(hours func(payroll.Bucket) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, b := range payroll.Buckets {
		total = total.Add(hours(b))
	}
	return total
}
