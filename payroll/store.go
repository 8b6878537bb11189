/*
store.go - Persistence interfaces for the payroll query layer

PURPOSE:
  Defines the interface between the payroll service and the database.
  The engine itself never touches storage: the Calculator loads inputs
  through these interfaces and hands plain values to AggregatePeriod.

KEY INTERFACES:
  ShiftStore:    Shift CRUD and range queries
  SettingsStore: One CompanySettings per company
  HolidayStore:  Global holiday list (Sundays are implicit)
  RuleStore:     Benefits and deductions per company
  PayrollStore:  Frozen PayrollRecords for closed periods
  Repository:    All of the above

NOT FOUND:
  Get* methods return (nil, nil) when the record does not exist.
  Delete* methods return generic.ErrNotFound.

IMPLEMENTATIONS:
  - payroll/store/memory.go: In-memory for testing
  - store/sqlite/sqlite.go: SQLite
  - store/postgres/postgres.go: PostgreSQL

SEE ALSO:
  - service.go: Calculator built on Repository
*/
package payroll

import (
	"context"

	"github.com/warp/shift-payroll/generic"
)

// ShiftFilter narrows a shift query. Zero fields match everything.
type ShiftFilter struct {
	CompanyID generic.CompanyID
	UserID    generic.UserID
	From      *generic.TimePoint // inclusive
	To        *generic.TimePoint // inclusive
}

// Matches reports whether s passes the filter.
func (f ShiftFilter) Matches(s Shift) bool {
	if f.CompanyID != "" && s.CompanyID != f.CompanyID {
		return false
	}
	if f.UserID != "" && s.UserID != f.UserID {
		return false
	}
	day := generic.DateOf(s.Date.Time)
	if f.From != nil && day.Before(*f.From) {
		return false
	}
	if f.To != nil && day.After(*f.To) {
		return false
	}
	return true
}

// ShiftStore persists shifts.
type ShiftStore interface {
	SaveShift(ctx context.Context, shift Shift) error
	GetShift(ctx context.Context, id generic.ShiftID) (*Shift, error)
	DeleteShift(ctx context.Context, id generic.ShiftID) error
	// ListShifts returns matching shifts ordered by date, start time and ID.
	ListShifts(ctx context.Context, filter ShiftFilter) ([]Shift, error)
}

// SettingsStore persists company settings.
type SettingsStore interface {
	SaveSettings(ctx context.Context, settings CompanySettings) error
	GetSettings(ctx context.Context, companyID generic.CompanyID) (*CompanySettings, error)
	ListSettings(ctx context.Context) ([]CompanySettings, error)
}

// HolidayStore persists the global holiday list.
type HolidayStore interface {
	SaveHoliday(ctx context.Context, h generic.Holiday) error
	DeleteHoliday(ctx context.Context, id string) error
	ListHolidays(ctx context.Context) ([]generic.Holiday, error)
}

// RuleStore persists benefits and deductions.
type RuleStore interface {
	SaveBenefit(ctx context.Context, b Benefit) error
	ListBenefits(ctx context.Context, companyID generic.CompanyID) ([]Benefit, error)
	DeleteBenefit(ctx context.Context, id string) error

	SaveDeduction(ctx context.Context, d Deduction) error
	ListDeductions(ctx context.Context, companyID generic.CompanyID) ([]Deduction, error)
	DeleteDeduction(ctx context.Context, id string) error
}

// PayrollStore persists closed-period records.
type PayrollStore interface {
	// SavePayrollRecord returns generic.ErrAlreadyClosed when a record for the
	// same company, user and period exists.
	SavePayrollRecord(ctx context.Context, rec PayrollRecord) error
	// GetPayrollRecord returns nil when the period is still open.
	GetPayrollRecord(ctx context.Context, companyID generic.CompanyID, userID generic.UserID, period generic.Period) (*PayrollRecord, error)
	ListPayrollRecords(ctx context.Context, userID generic.UserID) ([]PayrollRecord, error)
}

// Repository is the full storage surface used by the Calculator and the API.
type Repository interface {
	ShiftStore
	SettingsStore
	HolidayStore
	RuleStore
	PayrollStore
}
