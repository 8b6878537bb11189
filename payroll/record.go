package payroll

import (
	"time"

	"github.com/warp/shift-payroll/generic"
)

// =============================================================================
// PAYROLL RECORD - Frozen summary at period close
// =============================================================================

// PayrollRecord captures a worker's summary when a pay period is closed.
// Used for:
//   - Paying out (the figures no longer move)
//   - Locking shifts of the period against edits
//   - Audit trail
type PayrollRecord struct {
	ID        string
	UserID    generic.UserID
	CompanyID generic.CompanyID

	// The period this record represents
	Period generic.Period

	// The summary at close time and the shifts behind it
	Summary  PayrollSummary
	ShiftIDs []generic.ShiftID

	ClosedAt time.Time
	ClosedBy string // user ID, or "scheduler"
}

// ClosedByScheduler marks records written by the automatic close job.
const ClosedByScheduler = "scheduler"

func shiftIDs(s PayrollSummary) []generic.ShiftID {
	var ids []generic.ShiftID
	for _, d := range s.Days {
		for _, r := range d.Shifts {
			ids = append(ids, r.ShiftID)
		}
	}
	return ids
}
