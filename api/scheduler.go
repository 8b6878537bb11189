/*
scheduler.go - Automated period-close scheduler

PURPOSE:
  Periodically closes payroll periods that have ended, so every worker's
  summary is frozen as a PayrollRecord without a manual call.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - For each configured company, closes the period preceding today's
  - Periods that are already closed are skipped, so reruns are harmless
  - A failing company is logged and does not stop the others

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: false)

USAGE:
  scheduler := NewCloseScheduler(repo, calc, logger)
  scheduler.Enabled = true
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: ClosePayroll endpoint (manual close)
  - payroll/service.go: CloseEndedPeriods
*/
package api

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/warp/shift-payroll/generic"
	"github.com/warp/shift-payroll/payroll"
)

// CloseScheduler handles automated period closing.
type CloseScheduler struct {
	Settings      payroll.SettingsStore
	Calc          *payroll.Calculator
	Logger        *slog.Logger
	CheckInterval time.Duration
	Enabled       bool

	// Today is replaceable in tests.
	Today func() generic.TimePoint

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewCloseScheduler creates a new scheduler. It starts disabled.
func NewCloseScheduler(settings payroll.SettingsStore, calc *payroll.Calculator, logger *slog.Logger) *CloseScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CloseScheduler{
		Settings:      settings,
		Calc:          calc,
		Logger:        logger,
		CheckInterval: 1 * time.Hour,
		Today:         generic.Today,
		stop:          make(chan struct{}),
	}
}

// Start begins the scheduler.
func (cs *CloseScheduler) Start() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if !cs.Enabled {
		cs.Logger.Info("close scheduler disabled, not starting")
		return
	}
	if cs.ticker != nil {
		return
	}

	cs.ticker = time.NewTicker(cs.CheckInterval)
	cs.stop = make(chan struct{})
	cs.wg.Add(1)

	go cs.run()

	cs.Logger.Info("close scheduler started", "interval", cs.CheckInterval.String())
}

// Stop stops the scheduler.
func (cs *CloseScheduler) Stop() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.ticker != nil {
		cs.ticker.Stop()
		close(cs.stop)
		cs.wg.Wait()
		cs.ticker = nil
		cs.Logger.Info("close scheduler stopped")
	}
}

func (cs *CloseScheduler) run() {
	defer cs.wg.Done()

	// Run immediately on start
	cs.checkAndProcess()

	for {
		select {
		case <-cs.ticker.C:
			cs.checkAndProcess()
		case <-cs.stop:
			return
		}
	}
}

func (cs *CloseScheduler) checkAndProcess() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-cs.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	if _, _, err := cs.RunOnce(ctx); err != nil {
		cs.Logger.Error("close scheduler run failed", "error", err)
	}
}

// RunOnce closes ended periods for every configured company. It returns
// the totals across companies and the joined errors of failing companies.
func (cs *CloseScheduler) RunOnce(ctx context.Context) (closed, skipped int, err error) {
	today := cs.Today()

	companies, err := cs.Settings.ListSettings(ctx)
	if err != nil {
		return 0, 0, err
	}

	var errs []error
	for _, company := range companies {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		c, s, err := cs.Calc.CloseEndedPeriods(ctx, company.CompanyID, today)
		closed += c
		skipped += s
		if err != nil {
			cs.Logger.Warn("closing periods failed", "company_id", company.CompanyID, "error", err)
			errs = append(errs, err)
			continue
		}
		if c > 0 {
			cs.Logger.Info("closed ended periods", "company_id", company.CompanyID, "closed", c, "skipped", s)
		}
	}
	return closed, skipped, errors.Join(errs...)
}
