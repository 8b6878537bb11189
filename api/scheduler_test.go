package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/shift-payroll/payroll"
)

func TestCloseScheduler_RunOnce(t *testing.T) {
	// GIVEN: Two workers with March shifts and today = 2024-04-02
	// WHEN: Running the scheduler twice
	// THEN: March is closed once per worker, the rerun skips both

	ts := newTestServer(t)
	ts.configureAcme(t)
	ts.createShift(t, "u1", "2024-03-04", "08:00", "16:00")
	ts.createShift(t, "u2", "2024-03-05", "20:00", "02:00")
	ts.createShift(t, "u1", "2024-04-01", "08:00", "12:00")

	closed, skipped, err := ts.handler.Scheduler.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, closed)
	assert.Equal(t, 0, skipped)

	recs, err := ts.store.ListPayrollRecords(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "2024-03-01", recs[0].Period.Start.Time.Format(dateLayout))
	assert.Equal(t, payroll.ClosedByScheduler, recs[0].ClosedBy)
	assert.Len(t, recs[0].ShiftIDs, 1, "April shift stays open")

	closed, skipped, err = ts.handler.Scheduler.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, closed)
	assert.Equal(t, 2, skipped)
}

func TestCloseScheduler_AdminEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.configureAcme(t)
	ts.createShift(t, "u1", "2024-03-04", "08:00", "16:00")

	rec := ts.do(t, http.MethodPost, "/api/admin/close-periods", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, map[string]int{"closed": 1, "skipped": 0}, decode[map[string]int](t, rec))

	ts.handler.Scheduler = nil
	rec = ts.do(t, http.MethodPost, "/api/admin/close-periods", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCloseScheduler_StartStop(t *testing.T) {
	ts := newTestServer(t)
	ts.configureAcme(t)
	ts.createShift(t, "u1", "2024-03-04", "08:00", "16:00")

	cs := ts.handler.Scheduler

	// Disabled schedulers never run.
	cs.Start()
	cs.Stop()
	recs, err := ts.store.ListPayrollRecords(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, recs)

	cs.Enabled = true
	cs.CheckInterval = time.Hour
	cs.Start()
	defer cs.Stop()

	require.Eventually(t, func() bool {
		recs, err := ts.store.ListPayrollRecords(context.Background(), "u1")
		return err == nil && len(recs) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
