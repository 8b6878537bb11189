/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the payroll model from the external API contract: dates become
  YYYY-MM-DD strings, bucket arrays become named categories, and money
  becomes decimal strings.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Shifts:     ShiftDTO, ShiftRequest
  Summaries:  SummaryDTO, CategoryDTO, LineDTO, DayDTO, ExcludedDTO
  Records:    PayrollRecordDTO, ClosePayrollRequest
  Holidays:   HolidayDTO, CreateHolidayRequest
  Scenarios:  ScenarioDTO, LoadScenarioRequest

  Settings, benefits and deductions use factory.SettingsJSON,
  factory.BenefitJSON and factory.DeductionJSON directly.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/settings.go: Settings document types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/shift-payroll/generic"
	"github.com/warp/shift-payroll/payroll"
)

const dateLayout = "2006-01-02"

// =============================================================================
// SHIFTS
// =============================================================================

// ShiftDTO represents a shift in API responses.
type ShiftDTO struct {
	ID          string   `json:"id"`
	UserID      string   `json:"user_id"`
	CompanyID   string   `json:"company_id"`
	Date        string   `json:"date"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	ItemDetails []string `json:"item_details,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
}

// ShiftRequest is the body for creating or replacing a shift.
type ShiftRequest struct {
	UserID      string   `json:"user_id,omitempty"` // PUT only; POST takes it from the URL
	CompanyID   string   `json:"company_id"`
	Date        string   `json:"date"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	ItemDetails []string `json:"item_details,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

func toShiftDTO(s payroll.Shift) ShiftDTO {
	dto := ShiftDTO{
		ID:          string(s.ID),
		UserID:      string(s.UserID),
		CompanyID:   string(s.CompanyID),
		Date:        s.Date.Time.Format(dateLayout),
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		ItemDetails: s.ItemDetails,
		Notes:       s.Notes,
	}
	if !s.CreatedAt.IsZero() {
		dto.CreatedAt = s.CreatedAt.Format(time.RFC3339)
	}
	if !s.UpdatedAt.IsZero() {
		dto.UpdatedAt = s.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// SUMMARIES
// =============================================================================

// CategoryDTO is one of the eight hour categories.
type CategoryDTO struct {
	Category string          `json:"category"`
	Hours    decimal.Decimal `json:"hours"`
	Pay      decimal.Decimal `json:"pay"`
}

// LineDTO is one applied benefit or deduction.
type LineDTO struct {
	ID     string          `json:"id,omitempty"`
	Name   string          `json:"name"`
	Type   string          `json:"type"`
	Value  decimal.Decimal `json:"value"`
	Amount decimal.Decimal `json:"amount"`
}

// DayShiftDTO is a classified shift inside a day.
type DayShiftDTO struct {
	ShiftID    string          `json:"shift_id"`
	StartTime  string          `json:"start_time"`
	EndTime    string          `json:"end_time"`
	Categories []CategoryDTO   `json:"categories"`
	TotalHours decimal.Decimal `json:"total_hours"`
	GrossPay   decimal.Decimal `json:"gross_pay"`
}

// DayDTO groups the shifts of one calendar day.
type DayDTO struct {
	Date       string          `json:"date"`
	Shifts     []DayShiftDTO   `json:"shifts"`
	TotalHours decimal.Decimal `json:"total_hours"`
	GrossPay   decimal.Decimal `json:"gross_pay"`
}

// ExcludedDTO explains a shift left out of the summary.
type ExcludedDTO struct {
	ShiftID string `json:"shift_id"`
	Date    string `json:"date"`
	Reason  string `json:"reason"`
}

// SummaryDTO is a worker's payroll summary for one period.
type SummaryDTO struct {
	UserID          string          `json:"user_id"`
	CompanyID       string          `json:"company_id"`
	PeriodStart     string          `json:"period_start"`
	PeriodEnd       string          `json:"period_end"`
	Cycle           string          `json:"payroll_cycle"`
	Currency        string          `json:"currency,omitempty"`
	Categories      []CategoryDTO   `json:"categories"`
	TotalHours      decimal.Decimal `json:"total_hours"`
	GrossPay        decimal.Decimal `json:"gross_pay"`
	Benefits        []LineDTO       `json:"benefits"`
	TotalBenefits   decimal.Decimal `json:"total_benefits"`
	Deductions      []LineDTO       `json:"deductions"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetPay          decimal.Decimal `json:"net_pay"`
	DaysWorked      int             `json:"days_worked"`
	Days            []DayDTO        `json:"days,omitempty"`
	Excluded        []ExcludedDTO   `json:"excluded,omitempty"`
	Warnings        []string        `json:"warnings,omitempty"`
	Partial         bool            `json:"partial"`
	NetClamped      bool            `json:"net_clamped,omitempty"`
}

func categories(hours func(payroll.Bucket) decimal.Decimal, pay func(payroll.Bucket) decimal.Decimal) []CategoryDTO {
	out := make([]CategoryDTO, 0, payroll.BucketCount)
	for _, b := range payroll.Buckets {
		out = append(out, CategoryDTO{Category: b.String(), Hours: hours(b), Pay: pay(b)})
	}
	return out
}

func toLineDTOs(lines []payroll.BreakdownLine) []LineDTO {
	out := make([]LineDTO, 0, len(lines))
	for _, l := range lines {
		out = append(out, LineDTO{ID: l.ID, Name: l.Name, Type: l.Type, Value: l.Value, Amount: l.Amount})
	}
	return out
}

func toSummaryDTO(s payroll.PayrollSummary, withDays bool) SummaryDTO {
	dto := SummaryDTO{
		UserID:          string(s.UserID),
		CompanyID:       string(s.CompanyID),
		PeriodStart:     s.Period.Start.Time.Format(dateLayout),
		PeriodEnd:       s.Period.End.Time.Format(dateLayout),
		Cycle:           string(s.Cycle),
		Currency:        s.Currency,
		Categories:      categories(s.HoursIn, s.PayIn),
		TotalHours:      s.TotalHours,
		GrossPay:        s.GrossPay,
		Benefits:        toLineDTOs(s.BenefitBreakdown),
		TotalBenefits:   s.TotalBenefits,
		Deductions:      toLineDTOs(s.DeductionBreakdown),
		TotalDeductions: s.TotalDeductions,
		NetPay:          s.NetPay,
		DaysWorked:      s.DaysWorked,
		Warnings:        s.Warnings,
		Partial:         s.Partial,
		NetClamped:      s.NetClamped,
	}
	if withDays {
		for _, d := range s.Days {
			day := DayDTO{Date: d.Date.Time.Format(dateLayout), TotalHours: d.TotalHours, GrossPay: d.GrossPay}
			for _, r := range d.Shifts {
				pay := r.Pay
				day.Shifts = append(day.Shifts, DayShiftDTO{
					ShiftID:    string(r.ShiftID),
					StartTime:  r.StartTime,
					EndTime:    r.EndTime,
					Categories: categories(r.Hours, func(b payroll.Bucket) decimal.Decimal { return pay[b] }),
					TotalHours: r.TotalHours,
					GrossPay:   r.GrossPay,
				})
			}
			dto.Days = append(dto.Days, day)
		}
	}
	for _, e := range s.Excluded {
		dto.Excluded = append(dto.Excluded, ExcludedDTO{
			ShiftID: string(e.ShiftID),
			Date:    e.Date.Time.Format(dateLayout),
			Reason:  e.Reason,
		})
	}
	return dto
}

// =============================================================================
// PAYROLL RECORDS
// =============================================================================

// ClosePayrollRequest closes the period containing Date.
type ClosePayrollRequest struct {
	CompanyID string `json:"company_id"`
	Date      string `json:"date,omitempty"` // defaults to today
	ClosedBy  string `json:"closed_by,omitempty"`
}

// PayrollRecordDTO is a closed period.
type PayrollRecordDTO struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	CompanyID   string     `json:"company_id"`
	PeriodStart string     `json:"period_start"`
	PeriodEnd   string     `json:"period_end"`
	ShiftIDs    []string   `json:"shift_ids"`
	ClosedAt    string     `json:"closed_at"`
	ClosedBy    string     `json:"closed_by,omitempty"`
	Summary     SummaryDTO `json:"summary"`
}

func toRecordDTO(rec payroll.PayrollRecord) PayrollRecordDTO {
	ids := make([]string, len(rec.ShiftIDs))
	for i, id := range rec.ShiftIDs {
		ids[i] = string(id)
	}
	return PayrollRecordDTO{
		ID:          rec.ID,
		UserID:      string(rec.UserID),
		CompanyID:   string(rec.CompanyID),
		PeriodStart: rec.Period.Start.Time.Format(dateLayout),
		PeriodEnd:   rec.Period.End.Time.Format(dateLayout),
		ShiftIDs:    ids,
		ClosedAt:    rec.ClosedAt.Format(time.RFC3339),
		ClosedBy:    rec.ClosedBy,
		Summary:     toSummaryDTO(rec.Summary, false),
	}
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// HolidayDTO represents a holiday in API responses.
type HolidayDTO struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Name      string `json:"name"`
	Recurring bool   `json:"recurring"`
}

// CreateHolidayRequest is the request to create a holiday.
type CreateHolidayRequest struct {
	Date      string `json:"date"`
	Name      string `json:"name"`
	Recurring bool   `json:"recurring"`
}

func toHolidayDTO(h generic.Holiday) HolidayDTO {
	return HolidayDTO{ID: h.ID, Date: h.Date.Time.Format(dateLayout), Name: h.Name, Recurring: h.Recurring}
}

// =============================================================================
// SCENARIOS & ERRORS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest is the request to load a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// CompanySummariesDTO wraps the summaries of a whole company.
type CompanySummariesDTO struct {
	CompanyID   string       `json:"company_id"`
	PeriodStart string       `json:"period_start"`
	PeriodEnd   string       `json:"period_end"`
	Summaries   []SummaryDTO `json:"summaries"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
