/*
Package sqlite provides a SQLite-backed implementation of payroll.Repository.

PURPOSE:
  Default persistence for shifts, company settings, holidays, benefits,
  deductions and closed payroll records. The PostgreSQL store in
  store/postgres implements the same interface with the same tables.

KEY TABLES:
  shifts:           One row per recorded shift
  company_settings: One JSON settings document per company
  holidays:         Global holiday list (Sundays are implicit)
  benefits:         Additions to gross pay, per company
  deductions:       Subtractions from gross pay, per company
  payroll_records:  Frozen summaries of closed periods

INDEXES:
  - idx_shifts_company_user_date: Period queries (hot path)
  - idx_payroll_records_company_period: One record per company, user and period

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. ":memory:" databases are limited
  to a single connection so every query sees the same schema.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  calc := payroll.NewCalculator(store, logger)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - payroll/store.go: Interface definitions
  - payroll/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/shift-payroll/factory"
	"github.com/warp/shift-payroll/generic"
	"github.com/warp/shift-payroll/payroll"
)

const dateLayout = "2006-01-02"

// Store implements payroll.Repository using SQLite.
type Store struct {
	db       *sql.DB
	mu       sync.RWMutex
	settings *factory.SettingsFactory
}

var _ payroll.Repository = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, settings: factory.NewSettingsFactory()}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Shifts
	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		company_id TEXT NOT NULL,
		date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		item_details_json TEXT,
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_shifts_company_user_date
		ON shifts(company_id, user_id, date);

	-- Company settings (one JSON document per company)
	CREATE TABLE IF NOT EXISTS company_settings (
		company_id TEXT PRIMARY KEY,
		config_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Holidays (global)
	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		recurring BOOLEAN DEFAULT FALSE,
		created_at TEXT NOT NULL,
		UNIQUE(date, name)
	);

	-- Benefits and deductions
	CREATE TABLE IF NOT EXISTS benefits (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		value TEXT NOT NULL,
		applies_to_json TEXT
	);

	CREATE TABLE IF NOT EXISTS deductions (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		value TEXT NOT NULL,
		applies_to_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_benefits_company ON benefits(company_id);
	CREATE INDEX IF NOT EXISTS idx_deductions_company ON deductions(company_id);

	-- Closed periods
	CREATE TABLE IF NOT EXISTS payroll_records (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		company_id TEXT NOT NULL,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		summary_json TEXT NOT NULL,
		shift_ids_json TEXT NOT NULL,
		closed_at TEXT NOT NULL,
		closed_by TEXT
	);

	DROP INDEX IF EXISTS idx_payroll_records_period;
	CREATE UNIQUE INDEX IF NOT EXISTS idx_payroll_records_company_period
		ON payroll_records(company_id, user_id, period_start, period_end);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Reset deletes all data (for demo scenarios).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"payroll_records", "shifts", "benefits", "deductions", "holidays", "company_settings"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// SHIFT STORE
// =============================================================================

// SaveShift inserts or replaces a shift.
func (s *Store) SaveShift(ctx context.Context, sh payroll.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := json.Marshal(sh.ItemDetails)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO shifts (id, user_id, company_id, date, start_time, end_time, item_details_json, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			company_id = excluded.company_id,
			date = excluded.date,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			item_details_json = excluded.item_details_json,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		string(sh.ID), string(sh.UserID), string(sh.CompanyID),
		sh.Date.Time.Format(dateLayout), sh.StartTime, sh.EndTime,
		string(items), sh.Notes,
		formatTimestamp(sh.CreatedAt), formatTimestamp(sh.UpdatedAt),
	)
	return err
}

const shiftColumns = "id, user_id, company_id, date, start_time, end_time, item_details_json, notes, created_at, updated_at"

// GetShift retrieves a shift by ID.
func (s *Store) GetShift(ctx context.Context, id generic.ShiftID) (*payroll.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shifts, err := s.queryShifts(ctx, "SELECT "+shiftColumns+" FROM shifts WHERE id = ?", string(id))
	if err != nil {
		return nil, err
	}
	if len(shifts) == 0 {
		return nil, nil
	}
	return &shifts[0], nil
}

// DeleteShift removes a shift.
func (s *Store) DeleteShift(ctx context.Context, id generic.ShiftID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return execDelete(ctx, s.db, "DELETE FROM shifts WHERE id = ?", string(id))
}

// ListShifts returns shifts matching the filter, ordered by date and start time.
func (s *Store) ListShifts(ctx context.Context, f payroll.ShiftFilter) ([]payroll.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var where []string
	var args []any
	if f.CompanyID != "" {
		where = append(where, "company_id = ?")
		args = append(args, string(f.CompanyID))
	}
	if f.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, string(f.UserID))
	}
	if f.From != nil {
		where = append(where, "date >= ?")
		args = append(args, f.From.Time.Format(dateLayout))
	}
	if f.To != nil {
		where = append(where, "date <= ?")
		args = append(args, f.To.Time.Format(dateLayout))
	}

	query := "SELECT " + shiftColumns + " FROM shifts"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date ASC, start_time ASC, id ASC"

	return s.queryShifts(ctx, query, args...)
}

func (s *Store) queryShifts(ctx context.Context, query string, args ...any) ([]payroll.Shift, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []payroll.Shift
	for rows.Next() {
		var (
			sh                       payroll.Shift
			id, userID, companyID    string
			date, createdAt, updated string
			items, notes             sql.NullString
		)
		if err := rows.Scan(&id, &userID, &companyID, &date, &sh.StartTime, &sh.EndTime, &items, &notes, &createdAt, &updated); err != nil {
			return nil, err
		}
		sh.ID = generic.ShiftID(id)
		sh.UserID = generic.UserID(userID)
		sh.CompanyID = generic.CompanyID(companyID)
		sh.Notes = notes.String
		if sh.Date, err = generic.ParseDate(date); err != nil {
			return nil, fmt.Errorf("shift %s: bad date %q: %w", id, date, err)
		}
		if items.Valid && items.String != "" && items.String != "null" {
			if err := json.Unmarshal([]byte(items.String), &sh.ItemDetails); err != nil {
				return nil, fmt.Errorf("shift %s: bad item details: %w", id, err)
			}
		}
		sh.CreatedAt = parseTimestamp(createdAt)
		sh.UpdatedAt = parseTimestamp(updated)
		shifts = append(shifts, sh)
	}
	return shifts, rows.Err()
}

// =============================================================================
// SETTINGS STORE
// =============================================================================

// SaveSettings stores a company's settings as a JSON document.
func (s *Store) SaveSettings(ctx context.Context, cs payroll.CompanySettings) error {
	configJSON, err := s.settings.SettingsToJSON(&cs)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO company_settings (company_id, config_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(company_id) DO UPDATE SET
			config_json = excluded.config_json,
			updated_at = excluded.updated_at
	`
	_, err = s.db.ExecContext(ctx, query, string(cs.CompanyID), configJSON, time.Now().UTC().Format(time.RFC3339))
	return err
}

// GetSettings retrieves a company's settings.
func (s *Store) GetSettings(ctx context.Context, companyID generic.CompanyID) (*payroll.CompanySettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var configJSON, updatedAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT config_json, updated_at FROM company_settings WHERE company_id = ?",
		string(companyID),
	).Scan(&configJSON, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.decodeSettings(configJSON, updatedAt)
}

// ListSettings returns the settings of every configured company.
func (s *Store) ListSettings(ctx context.Context) ([]payroll.CompanySettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT config_json, updated_at FROM company_settings ORDER BY company_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payroll.CompanySettings
	for rows.Next() {
		var configJSON, updatedAt string
		if err := rows.Scan(&configJSON, &updatedAt); err != nil {
			return nil, err
		}
		cs, err := s.decodeSettings(configJSON, updatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, *cs)
	}
	return out, rows.Err()
}

func (s *Store) decodeSettings(configJSON, updatedAt string) (*payroll.CompanySettings, error) {
	cs, err := s.settings.ParseSettings(configJSON)
	if err != nil {
		return nil, err
	}
	cs.UpdatedAt = parseTimestamp(updatedAt)
	return cs, nil
}

// =============================================================================
// HOLIDAY STORE
// =============================================================================

// SaveHoliday saves a holiday to the database.
func (s *Store) SaveHoliday(ctx context.Context, h generic.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO holidays (id, date, name, recurring, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date, name) DO UPDATE SET
			recurring = excluded.recurring
	`

	_, err := s.db.ExecContext(ctx, query,
		h.ID,
		h.Date.Time.Format(dateLayout),
		h.Name,
		h.Recurring,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// DeleteHoliday deletes a holiday by ID.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return execDelete(ctx, s.db, "DELETE FROM holidays WHERE id = ?", id)
}

// ListHolidays returns all holidays ordered by date.
func (s *Store) ListHolidays(ctx context.Context) ([]generic.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, date, name, recurring FROM holidays ORDER BY date ASC, id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []generic.Holiday
	for rows.Next() {
		var h generic.Holiday
		var dateStr string
		if err := rows.Scan(&h.ID, &dateStr, &h.Name, &h.Recurring); err != nil {
			return nil, err
		}
		if h.Date, err = generic.ParseDate(dateStr); err != nil {
			return nil, fmt.Errorf("holiday %s: bad date %q: %w", h.ID, dateStr, err)
		}
		holidays = append(holidays, h)
	}

	return holidays, rows.Err()
}

// =============================================================================
// RULE STORE
// =============================================================================

// SaveBenefit inserts or replaces a benefit.
func (s *Store) SaveBenefit(ctx context.Context, b payroll.Benefit) error {
	return s.saveRule(ctx, "benefits", b.ID, string(b.CompanyID), b.Name, string(b.Type), b.Value, b.AppliesTo)
}

// SaveDeduction inserts or replaces a deduction.
func (s *Store) SaveDeduction(ctx context.Context, d payroll.Deduction) error {
	return s.saveRule(ctx, "deductions", d.ID, string(d.CompanyID), d.Name, string(d.Type), d.Value, d.AppliesTo)
}

func (s *Store) saveRule(ctx context.Context, table, id, companyID, name, typ string, value decimal.Decimal, appliesTo []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	targets, err := json.Marshal(appliesTo)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO ` + table + ` (id, company_id, name, type, value, applies_to_json)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			company_id = excluded.company_id,
			name = excluded.name,
			type = excluded.type,
			value = excluded.value,
			applies_to_json = excluded.applies_to_json
	`
	_, err = s.db.ExecContext(ctx, query, id, companyID, name, typ, value.String(), string(targets))
	return err
}

// ruleRow is the shared row shape of benefits and deductions.
type ruleRow struct {
	id, companyID, name, typ string
	value                    decimal.Decimal
	appliesTo                []string
}

func (s *Store) listRules(ctx context.Context, table string, companyID generic.CompanyID) ([]ruleRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, company_id, name, type, value, applies_to_json FROM "+table+" WHERE company_id = ? ORDER BY id",
		string(companyID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ruleRow
	for rows.Next() {
		var r ruleRow
		var value string
		var targets sql.NullString
		if err := rows.Scan(&r.id, &r.companyID, &r.name, &r.typ, &value, &targets); err != nil {
			return nil, err
		}
		if r.value, err = decimal.NewFromString(value); err != nil {
			return nil, fmt.Errorf("%s %s: bad value %q: %w", table, r.id, value, err)
		}
		if targets.Valid && targets.String != "" && targets.String != "null" {
			if err := json.Unmarshal([]byte(targets.String), &r.appliesTo); err != nil {
				return nil, fmt.Errorf("%s %s: bad applies_to: %w", table, r.id, err)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListBenefits returns a company's benefits.
func (s *Store) ListBenefits(ctx context.Context, companyID generic.CompanyID) ([]payroll.Benefit, error) {
	rows, err := s.listRules(ctx, "benefits", companyID)
	if err != nil {
		return nil, err
	}
	out := make([]payroll.Benefit, 0, len(rows))
	for _, r := range rows {
		out = append(out, payroll.Benefit{
			ID: r.id, CompanyID: generic.CompanyID(r.companyID), Name: r.name,
			Type: payroll.BenefitType(r.typ), Value: r.value, AppliesTo: r.appliesTo,
		})
	}
	return out, nil
}

// ListDeductions returns a company's deductions.
func (s *Store) ListDeductions(ctx context.Context, companyID generic.CompanyID) ([]payroll.Deduction, error) {
	rows, err := s.listRules(ctx, "deductions", companyID)
	if err != nil {
		return nil, err
	}
	out := make([]payroll.Deduction, 0, len(rows))
	for _, r := range rows {
		out = append(out, payroll.Deduction{
			ID: r.id, CompanyID: generic.CompanyID(r.companyID), Name: r.name,
			Type: payroll.DeductionType(r.typ), Value: r.value, AppliesTo: r.appliesTo,
		})
	}
	return out, nil
}

// DeleteBenefit removes a benefit.
func (s *Store) DeleteBenefit(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return execDelete(ctx, s.db, "DELETE FROM benefits WHERE id = ?", id)
}

// DeleteDeduction removes a deduction.
func (s *Store) DeleteDeduction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return execDelete(ctx, s.db, "DELETE FROM deductions WHERE id = ?", id)
}

// =============================================================================
// PAYROLL RECORD STORE
// =============================================================================

// SavePayrollRecord stores a closed period. Fails with generic.ErrAlreadyClosed
// when the company already has a record for the user's period.
func (s *Store) SavePayrollRecord(ctx context.Context, rec payroll.PayrollRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	summaryJSON, err := json.Marshal(rec.Summary)
	if err != nil {
		return err
	}
	shiftIDs, err := json.Marshal(rec.ShiftIDs)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO payroll_records (id, user_id, company_id, period_start, period_end, summary_json, shift_ids_json, closed_at, closed_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.UserID), string(rec.CompanyID),
		rec.Period.Start.Time.Format(dateLayout), rec.Period.End.Time.Format(dateLayout),
		string(summaryJSON), string(shiftIDs),
		formatTimestamp(rec.ClosedAt), rec.ClosedBy,
	)

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("company %s, user %s, period %s: %w", rec.CompanyID, rec.UserID, rec.Period, generic.ErrAlreadyClosed)
	}
	return err
}

const recordColumns = "id, user_id, company_id, period_start, period_end, summary_json, shift_ids_json, closed_at, closed_by"

// GetPayrollRecord returns the record of a user's period at a company, or nil.
func (s *Store) GetPayrollRecord(ctx context.Context, companyID generic.CompanyID, userID generic.UserID, period generic.Period) (*payroll.PayrollRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs, err := s.queryRecords(ctx,
		"SELECT "+recordColumns+" FROM payroll_records WHERE company_id = ? AND user_id = ? AND period_start = ? AND period_end = ?",
		string(companyID), string(userID), period.Start.Time.Format(dateLayout), period.End.Time.Format(dateLayout),
	)
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return &recs[0], nil
}

// ListPayrollRecords returns a user's closed periods, oldest first.
func (s *Store) ListPayrollRecords(ctx context.Context, userID generic.UserID) ([]payroll.PayrollRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRecords(ctx,
		"SELECT "+recordColumns+" FROM payroll_records WHERE user_id = ? ORDER BY period_start ASC",
		string(userID),
	)
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]payroll.PayrollRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payroll.PayrollRecord
	for rows.Next() {
		var (
			rec                     payroll.PayrollRecord
			userID, companyID       string
			start, end              string
			summaryJSON, shiftsJSON string
			closedAt                string
			closedBy                sql.NullString
		)
		if err := rows.Scan(&rec.ID, &userID, &companyID, &start, &end, &summaryJSON, &shiftsJSON, &closedAt, &closedBy); err != nil {
			return nil, err
		}
		rec.UserID = generic.UserID(userID)
		rec.CompanyID = generic.CompanyID(companyID)
		if rec.Period.Start, err = generic.ParseDate(start); err != nil {
			return nil, err
		}
		if rec.Period.End, err = generic.ParseDate(end); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(summaryJSON), &rec.Summary); err != nil {
			return nil, fmt.Errorf("record %s: bad summary: %w", rec.ID, err)
		}
		if err := json.Unmarshal([]byte(shiftsJSON), &rec.ShiftIDs); err != nil {
			return nil, fmt.Errorf("record %s: bad shift ids: %w", rec.ID, err)
		}
		rec.ClosedAt = parseTimestamp(closedAt)
		rec.ClosedBy = closedBy.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func execDelete(ctx context.Context, db *sql.DB, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return generic.ErrNotFound
	}
	return nil
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTimestamp(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
