/*
classifier.go - Minute-level classification of a single shift

PURPOSE:
  Splits one shift into the eight pay categories and prices it.

RULES:
  - Night:    hour >= NightShiftStartHour OR hour < 06:00
  - Holiday:  the calendar day of each minute is a Sunday or a holiday
  - Overtime: the worker has already reached DailyHourLimit today,
              counting earlier shifts of the same day

  A shift whose end is at or before its start crosses midnight. Minutes
  after midnight are checked against the next day's holiday status, so
  a Saturday 22:00 - 02:00 shift pays two normal and two holiday hours.

TIME ZONES:
  Times are wall-clock values on the shift date, read as UTC. No daylight
  saving adjustment applies.

SEE ALSO:
  - aggregator.go: Threads hoursAlreadyWorkedToday across a day's shifts
  - generic/time.go: HolidayCalendar
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/shift-payroll/generic"
)

// ClassifyShift classifies every minute of shift and computes its gross pay.
// hoursAlreadyWorkedToday is the regular-hour allowance already used by
// earlier shifts on the same calendar day.
func ClassifyShift(shift Shift, settings *CompanySettings, calendar generic.HolidayCalendar, hoursAlreadyWorkedToday decimal.Decimal) (ShiftResult, error) {
	if settings == nil {
		return ShiftResult{}, generic.ErrMissingConfiguration
	}
	return classify(shift, settings, calendar, hoursAlreadyWorkedToday.Mul(sixty))
}

// classify works in minutes so the daily fold stays exact.
func classify(shift Shift, settings *CompanySettings, calendar generic.HolidayCalendar, minutesAlreadyWorked decimal.Decimal) (ShiftResult, error) {
	start, end, err := shiftBounds(shift)
	if err != nil {
		return ShiftResult{}, err
	}
	if calendar == nil {
		calendar = generic.NewHolidaySet()
	}

	nightStart := settings.NightStart()
	regularBudget := regularMinutes(settings.DailyLimit(), minutesAlreadyWorked)

	var (
		minutes      Minutes
		currentDay   = generic.DateOf(start)
		dayIsHoliday = calendar.IsHoliday(currentDay)
	)
	total := int64(end.Sub(start) / time.Minute)

	for i := int64(0); i < total; i++ {
		t := start.Add(time.Duration(i) * time.Minute)
		if day := generic.DateOf(t); !day.Equal(currentDay) {
			currentDay = day
			dayIsHoliday = calendar.IsHoliday(day)
		}

		hour := t.Hour()
		night := hour >= nightStart || hour < NightShiftEndHour
		overtime := i >= regularBudget

		minutes[bucketFor(dayIsHoliday, night, overtime)]++
	}

	result := ShiftResult{
		ShiftID:    shift.ID,
		Date:       generic.DateOf(shift.Date.Time),
		StartTime:  shift.StartTime,
		EndTime:    shift.EndTime,
		Minutes:    minutes,
		TotalHours: minutesToHours(total),
		GrossPay:   decimal.Zero,
	}
	for _, b := range Buckets {
		pay := settings.Rates.For(b).Mul(decimal.NewFromInt(minutes[b])).Div(sixty)
		result.Pay[b] = pay
		result.GrossPay = result.GrossPay.Add(pay)
	}
	return result, nil
}

// regularMinutes returns how many leading minutes of the shift are still
// within the daily limit. Minute i is regular when already+i < limit*60.
func regularMinutes(limit, minutesAlreadyWorked decimal.Decimal) int64 {
	budget := limit.Mul(sixty).Sub(minutesAlreadyWorked).Round(9).Ceil()
	if budget.IsNegative() {
		return 0
	}
	return budget.IntPart()
}

// shiftBounds resolves the wall-clock start and end of a shift. An end at or
// before the start rolls over to the next day.
func shiftBounds(shift Shift) (time.Time, time.Time, error) {
	sh, sm, ok := parseClock(shift.StartTime)
	if !ok {
		return time.Time{}, time.Time{}, &generic.InvalidTimeError{Field: "start_time", Value: shift.StartTime}
	}
	eh, em, ok := parseClock(shift.EndTime)
	if !ok {
		return time.Time{}, time.Time{}, &generic.InvalidTimeError{Field: "end_time", Value: shift.EndTime}
	}

	d := shift.Date.Time
	start := time.Date(d.Year(), d.Month(), d.Day(), sh, sm, 0, 0, time.UTC)
	end := time.Date(d.Year(), d.Month(), d.Day(), eh, em, 0, 0, time.UTC)
	if !end.After(start) {
		end = end.Add(24 * time.Hour)
	}
	return start, end, nil
}

// parseClock accepts exactly HH:MM with 00 <= HH <= 23 and 00 <= MM <= 59.
func parseClock(s string) (hour, minute int, ok bool) {
	if len(s) != 5 || s[2] != ':' {
		return 0, 0, false
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, 0, false
		}
	}
	hour = int(s[0]-'0')*10 + int(s[1]-'0')
	minute = int(s[3]-'0')*10 + int(s[4]-'0')
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// ValidateClock reports whether s is a valid HH:MM value.
func ValidateClock(field, s string) error {
	if _, _, ok := parseClock(s); !ok {
		return &generic.InvalidTimeError{Field: field, Value: s}
	}
	return nil
}
