package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/shift-payroll/payroll"
)

// =============================================================================
// LABOR-RULE PRESETS
// =============================================================================

// PresetInfo describes an available preset.
type PresetInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type preset struct {
	info        PresetInfo
	cycle       string
	nightStart  int
	dailyLimit  int64
	multipliers map[payroll.Bucket]string
}

// Standard surcharges: 35% night, 25% day overtime, 75% night overtime,
// 75% holiday, and the combined holiday surcharges.
var standardMultipliers = map[payroll.Bucket]string{
	payroll.BucketDay:                  "1",
	payroll.BucketNight:                "1.35",
	payroll.BucketDayOvertime:          "1.25",
	payroll.BucketNightOvertime:        "1.75",
	payroll.BucketHolidayDay:           "1.75",
	payroll.BucketHolidayNight:         "2.1",
	payroll.BucketHolidayDayOvertime:   "2",
	payroll.BucketHolidayNightOvertime: "2.5",
}

var presets = []preset{
	{
		info:        PresetInfo{Name: "standard", Description: "Monthly cycle, night from 21:00, 8 regular hours per day"},
		cycle:       "monthly",
		nightStart:  21,
		dailyLimit:  8,
		multipliers: standardMultipliers,
	},
	{
		info:        PresetInfo{Name: "bi-weekly-night-22", Description: "Bi-weekly cycle, night from 22:00, 8 regular hours per day"},
		cycle:       "bi-weekly",
		nightStart:  22,
		dailyLimit:  8,
		multipliers: standardMultipliers,
	},
}

// Presets lists the available presets.
func Presets() []PresetInfo {
	out := make([]PresetInfo, len(presets))
	for i, p := range presets {
		out[i] = p.info
	}
	return out
}

// PresetJSON builds a settings document for companyID from a named preset.
// Each category rate is baseRate times the preset's multiplier.
func PresetJSON(name, companyID string, baseRate decimal.Decimal) (string, error) {
	for _, p := range presets {
		if p.info.Name != name {
			continue
		}
		nightStart := p.nightStart
		limit := decimal.NewFromInt(p.dailyLimit)
		sj := SettingsJSON{
			CompanyID:           companyID,
			PayrollCycle:        p.cycle,
			NightShiftStartHour: &nightStart,
			DailyHourLimit:      &limit,
			Rates:               make(map[string]decimal.Decimal, len(p.multipliers)),
		}
		for b, m := range p.multipliers {
			sj.Rates[b.String()] = baseRate.Mul(decimal.RequireFromString(m))
		}
		data, err := json.Marshal(sj)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return "", fmt.Errorf("unknown preset %q", name)
}
