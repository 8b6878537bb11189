/*
Package generic provides the domain-agnostic building blocks of the payroll engine.

PURPOSE:
  This package holds the calendar primitives every other package builds
  on: calendar days, pay periods, holiday calendars, identifiers and the
  error taxonomy. It has no knowledge of shifts, rates or benefits.

KEY CONCEPTS IN THIS FILE (types.go):
  - Identifiers: Type-safe user, company and shift IDs

DESIGN PRINCIPLES:
  1. Type Safety: Strong typing for IDs prevents mixing user/company IDs
  2. UTC only: every TimePoint is a UTC calendar value

SEE ALSO:
  - time.go: TimePoint and the holiday calendar
  - period.go: Pay period resolution
  - errors.go: Sentinel and structured errors
*/
package generic

// =============================================================================
// IDENTIFIERS
// =============================================================================

type UserID string
type CompanyID string
type ShiftID string
