// Package store provides an in-memory payroll.Repository.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/shift-payroll/generic"
	"github.com/warp/shift-payroll/payroll"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	shifts     map[generic.ShiftID]payroll.Shift
	settings   map[generic.CompanyID]payroll.CompanySettings
	holidays   map[string]generic.Holiday
	benefits   map[string]payroll.Benefit
	deductions map[string]payroll.Deduction
	records    map[recordKey]payroll.PayrollRecord
}

type recordKey struct {
	CompanyID generic.CompanyID
	UserID    generic.UserID
	Start     string
	End       string
}

func keyFor(companyID generic.CompanyID, userID generic.UserID, p generic.Period) recordKey {
	return recordKey{CompanyID: companyID, UserID: userID, Start: p.Start.String(), End: p.End.String()}
}

var _ payroll.Repository = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		shifts:     make(map[generic.ShiftID]payroll.Shift),
		settings:   make(map[generic.CompanyID]payroll.CompanySettings),
		holidays:   make(map[string]generic.Holiday),
		benefits:   make(map[string]payroll.Benefit),
		deductions: make(map[string]payroll.Deduction),
		records:    make(map[recordKey]payroll.PayrollRecord),
	}
}

// Reset drops all data.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fresh := NewMemory()
	m.shifts = fresh.shifts
	m.settings = fresh.settings
	m.holidays = fresh.holidays
	m.benefits = fresh.benefits
	m.deductions = fresh.deductions
	m.records = fresh.records
	return nil
}

// =============================================================================
// SHIFTS
// =============================================================================

func (m *Memory) SaveShift(_ context.Context, s payroll.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ItemDetails = append([]string(nil), s.ItemDetails...)
	m.shifts[s.ID] = s
	return nil
}

func (m *Memory) GetShift(_ context.Context, id generic.ShiftID) (*payroll.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.shifts[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *Memory) DeleteShift(_ context.Context, id generic.ShiftID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shifts[id]; !ok {
		return generic.ErrNotFound
	}
	delete(m.shifts, id)
	return nil
}

func (m *Memory) ListShifts(_ context.Context, f payroll.ShiftFilter) ([]payroll.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []payroll.Shift
	for _, s := range m.shifts {
		if f.Matches(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ID < b.ID
	})
	return out, nil
}

// =============================================================================
// SETTINGS
// =============================================================================

func (m *Memory) SaveSettings(_ context.Context, s payroll.CompanySettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[s.CompanyID] = s
	return nil
}

func (m *Memory) GetSettings(_ context.Context, companyID generic.CompanyID) (*payroll.CompanySettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.settings[companyID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *Memory) ListSettings(_ context.Context) ([]payroll.CompanySettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]payroll.CompanySettings, 0, len(m.settings))
	for _, s := range m.settings {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompanyID < out[j].CompanyID })
	return out, nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (m *Memory) SaveHoliday(_ context.Context, h generic.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays[h.ID] = h
	return nil
}

func (m *Memory) DeleteHoliday(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.holidays[id]; !ok {
		return generic.ErrNotFound
	}
	delete(m.holidays, id)
	return nil
}

func (m *Memory) ListHolidays(_ context.Context) ([]generic.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]generic.Holiday, 0, len(m.holidays))
	for _, h := range m.holidays {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// =============================================================================
// BENEFITS & DEDUCTIONS
// =============================================================================

func (m *Memory) SaveBenefit(_ context.Context, b payroll.Benefit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.benefits[b.ID] = b
	return nil
}

func (m *Memory) ListBenefits(_ context.Context, companyID generic.CompanyID) ([]payroll.Benefit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []payroll.Benefit
	for _, b := range m.benefits {
		if b.CompanyID == companyID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) DeleteBenefit(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.benefits[id]; !ok {
		return generic.ErrNotFound
	}
	delete(m.benefits, id)
	return nil
}

func (m *Memory) SaveDeduction(_ context.Context, d payroll.Deduction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deductions[d.ID] = d
	return nil
}

func (m *Memory) ListDeductions(_ context.Context, companyID generic.CompanyID) ([]payroll.Deduction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []payroll.Deduction
	for _, d := range m.deductions {
		if d.CompanyID == companyID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) DeleteDeduction(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.deductions[id]; !ok {
		return generic.ErrNotFound
	}
	delete(m.deductions, id)
	return nil
}

// =============================================================================
// PAYROLL RECORDS
// =============================================================================

func (m *Memory) SavePayrollRecord(_ context.Context, rec payroll.PayrollRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := keyFor(rec.CompanyID, rec.UserID, rec.Period)
	if _, ok := m.records[k]; ok {
		return generic.ErrAlreadyClosed
	}
	m.records[k] = rec
	return nil
}

func (m *Memory) GetPayrollRecord(_ context.Context, companyID generic.CompanyID, userID generic.UserID, period generic.Period) (*payroll.PayrollRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[keyFor(companyID, userID, period)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *Memory) ListPayrollRecords(_ context.Context, userID generic.UserID) ([]payroll.PayrollRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []payroll.PayrollRecord
	for k, rec := range m.records {
		if k.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period.Start.Before(out[j].Period.Start) })
	return out, nil
}
