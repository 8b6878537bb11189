/*
Package factory converts JSON documents into payroll configuration.

PURPOSE:
  Company settings, benefits and deductions arrive as JSON (API bodies,
  database columns, presets). The factory turns them into payroll types,
  applies defaults and validates them, and turns them back into JSON.

JSON SCHEMA (settings):
  {
    "company_id": "acme",
    "payroll_cycle": "bi-weekly",
    "night_shift_start_hour": 21,
    "daily_hour_limit": 8,
    "currency": "COP",
    "rates": {
      "day": 10000,
      "night": 13500,
      "day_overtime": 12500,
      "night_overtime": 17500,
      "holiday_day": 17500,
      "holiday_night": 21000,
      "holiday_day_overtime": 20000,
      "holiday_night_overtime": 25000
    },
    "deduction_base": "gross_plus_benefits",
    "clamp_net_pay": false
  }

  Decimal values may be JSON numbers or strings. Missing rates are zero.

JSON SCHEMA (benefit / deduction):
  {"id": "b-1", "company_id": "acme", "name": "Transport",
   "type": "per-hour", "value": 1200, "applies_to": ["all"]}

USAGE:
  f := NewSettingsFactory()
  settings, err := f.ParseSettings(jsonStr)
  jsonStr, err := f.SettingsToJSON(settings)

SEE ALSO:
  - presets.go: Ready-made settings documents
  - payroll/types.go: CompanySettings, Benefit, Deduction
*/
package factory

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/shift-payroll/generic"
	"github.com/warp/shift-payroll/payroll"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// SettingsJSON is the JSON representation of company settings.
type SettingsJSON struct {
	CompanyID           string                     `json:"company_id"`
	PayrollCycle        string                     `json:"payroll_cycle,omitempty"`
	NightShiftStartHour *int                       `json:"night_shift_start_hour,omitempty"`
	DailyHourLimit      *decimal.Decimal           `json:"daily_hour_limit,omitempty"`
	Currency            string                     `json:"currency,omitempty"`
	SubscriptionFee     *decimal.Decimal           `json:"subscription_fee,omitempty"`
	Rates               map[string]decimal.Decimal `json:"rates"`
	DeductionBase       string                     `json:"deduction_base,omitempty"`
	ClampNetPay         bool                       `json:"clamp_net_pay,omitempty"`
}

// BenefitJSON represents a benefit definition.
type BenefitJSON struct {
	ID        string          `json:"id,omitempty"`
	CompanyID string          `json:"company_id,omitempty"`
	Name      string          `json:"name"`
	Type      string          `json:"type"` // fixed, percentage, per-hour
	Value     decimal.Decimal `json:"value"`
	AppliesTo []string        `json:"applies_to,omitempty"`
}

// DeductionJSON represents a deduction definition.
type DeductionJSON struct {
	ID        string          `json:"id,omitempty"`
	CompanyID string          `json:"company_id,omitempty"`
	Name      string          `json:"name"`
	Type      string          `json:"type"` // fixed, percentage
	Value     decimal.Decimal `json:"value"`
	AppliesTo []string        `json:"applies_to,omitempty"`
}

// =============================================================================
// SETTINGS FACTORY
// =============================================================================

// SettingsFactory converts JSON documents to payroll configuration.
type SettingsFactory struct{}

// NewSettingsFactory creates a new settings factory.
func NewSettingsFactory() *SettingsFactory {
	return &SettingsFactory{}
}

// ParseSettings parses and validates a settings document.
func (f *SettingsFactory) ParseSettings(jsonStr string) (*payroll.CompanySettings, error) {
	var sj SettingsJSON
	if err := json.Unmarshal([]byte(jsonStr), &sj); err != nil {
		return nil, fmt.Errorf("failed to parse settings JSON: %w", err)
	}
	return f.FromJSON(sj)
}

// FromJSON converts SettingsJSON to payroll.CompanySettings.
func (f *SettingsFactory) FromJSON(sj SettingsJSON) (*payroll.CompanySettings, error) {
	s := &payroll.CompanySettings{
		CompanyID:           generic.CompanyID(sj.CompanyID),
		PayrollCycle:        generic.Cycle(sj.PayrollCycle),
		NightShiftStartHour: sj.NightShiftStartHour,
		DailyHourLimit:      sj.DailyHourLimit,
		Currency:            sj.Currency,
		DeductionBase:       payroll.DeductionBase(sj.DeductionBase),
		ClampNetPay:         sj.ClampNetPay,
	}
	if sj.SubscriptionFee != nil {
		s.SubscriptionFee = *sj.SubscriptionFee
	}

	for name, rate := range sj.Rates {
		b, ok := payroll.ParseBucket(name)
		if !ok {
			return nil, &generic.InvalidConfigurationError{Field: "rates." + name, Value: rate.String()}
		}
		s.Rates.Set(b, rate)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ToJSON converts settings to SettingsJSON. Zero rates are omitted.
func (f *SettingsFactory) ToJSON(s *payroll.CompanySettings) SettingsJSON {
	sj := SettingsJSON{
		CompanyID:           string(s.CompanyID),
		PayrollCycle:        string(s.PayrollCycle),
		NightShiftStartHour: s.NightShiftStartHour,
		DailyHourLimit:      s.DailyHourLimit,
		Currency:            s.Currency,
		Rates:               make(map[string]decimal.Decimal),
		DeductionBase:       string(s.DeductionBase),
		ClampNetPay:         s.ClampNetPay,
	}
	if !s.SubscriptionFee.IsZero() {
		fee := s.SubscriptionFee
		sj.SubscriptionFee = &fee
	}
	for _, b := range payroll.Buckets {
		if r := s.Rates.For(b); !r.IsZero() {
			sj.Rates[b.String()] = r
		}
	}
	return sj
}

// SettingsToJSON serializes settings to a JSON string.
func (f *SettingsFactory) SettingsToJSON(s *payroll.CompanySettings) (string, error) {
	data, err := json.Marshal(f.ToJSON(s))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// =============================================================================
// BENEFITS & DEDUCTIONS
// =============================================================================

// ParseBenefit parses a benefit document. Unknown types are rejected.
func (f *SettingsFactory) ParseBenefit(jsonStr string) (*payroll.Benefit, error) {
	var bj BenefitJSON
	if err := json.Unmarshal([]byte(jsonStr), &bj); err != nil {
		return nil, fmt.Errorf("failed to parse benefit JSON: %w", err)
	}
	return f.BenefitFromJSON(bj)
}

// BenefitFromJSON converts BenefitJSON to payroll.Benefit.
func (f *SettingsFactory) BenefitFromJSON(bj BenefitJSON) (*payroll.Benefit, error) {
	b := &payroll.Benefit{
		ID:        bj.ID,
		CompanyID: generic.CompanyID(bj.CompanyID),
		Name:      bj.Name,
		Type:      payroll.BenefitType(bj.Type),
		Value:     bj.Value,
		AppliesTo: normalizeTargets(bj.AppliesTo),
	}
	switch b.Type {
	case payroll.BenefitFixed, payroll.BenefitPercentage, payroll.BenefitPerHour:
	default:
		return nil, &generic.InvalidReferenceError{Kind: "benefit", ID: b.ID, Name: b.Name, Type: bj.Type}
	}
	if bj.Name == "" {
		return nil, &generic.InvalidConfigurationError{Field: "name", Value: ""}
	}
	return b, nil
}

// ParseDeduction parses a deduction document. Unknown types are rejected.
func (f *SettingsFactory) ParseDeduction(jsonStr string) (*payroll.Deduction, error) {
	var dj DeductionJSON
	if err := json.Unmarshal([]byte(jsonStr), &dj); err != nil {
		return nil, fmt.Errorf("failed to parse deduction JSON: %w", err)
	}
	return f.DeductionFromJSON(dj)
}

// DeductionFromJSON converts DeductionJSON to payroll.Deduction.
func (f *SettingsFactory) DeductionFromJSON(dj DeductionJSON) (*payroll.Deduction, error) {
	d := &payroll.Deduction{
		ID:        dj.ID,
		CompanyID: generic.CompanyID(dj.CompanyID),
		Name:      dj.Name,
		Type:      payroll.DeductionType(dj.Type),
		Value:     dj.Value,
		AppliesTo: normalizeTargets(dj.AppliesTo),
	}
	switch d.Type {
	case payroll.DeductionFixed, payroll.DeductionPercentage:
	default:
		return nil, &generic.InvalidReferenceError{Kind: "deduction", ID: d.ID, Name: d.Name, Type: dj.Type}
	}
	if dj.Name == "" {
		return nil, &generic.InvalidConfigurationError{Field: "name", Value: ""}
	}
	return d, nil
}

// BenefitToJSON converts a benefit to its JSON form.
func (f *SettingsFactory) BenefitToJSON(b payroll.Benefit) BenefitJSON {
	return BenefitJSON{
		ID:        b.ID,
		CompanyID: string(b.CompanyID),
		Name:      b.Name,
		Type:      string(b.Type),
		Value:     b.Value,
		AppliesTo: b.AppliesTo,
	}
}

// DeductionToJSON converts a deduction to its JSON form.
func (f *SettingsFactory) DeductionToJSON(d payroll.Deduction) DeductionJSON {
	return DeductionJSON{
		ID:        d.ID,
		CompanyID: string(d.CompanyID),
		Name:      d.Name,
		Type:      string(d.Type),
		Value:     d.Value,
		AppliesTo: d.AppliesTo,
	}
}

// normalizeTargets drops duplicates and collapses any list containing "all".
func normalizeTargets(targets []string) []string {
	seen := make(map[string]bool, len(targets))
	var out []string
	for _, t := range targets {
		if t == "" || seen[t] {
			continue
		}
		if t == payroll.AppliesToAll {
			return nil
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
