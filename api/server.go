/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. CORS:          Cross-origin requests for frontend
  2. RequestID:     Unique ID per request for tracing
  3. RequestLogger: Structured request logging (httplog, ECS schema)
  4. CleanPath:     Collapses duplicate slashes
  5. Recoverer:     Panic recovery (500 instead of crash)
  6. Heartbeat:     GET /api/health

ROUTE GROUPS:
  /api/companies/{companyID}/*  Settings, rules, company summaries
  /api/users/{userID}/*         Shifts, summary, voucher, closed periods
  /api/shifts/{id}              Single shift
  /api/holidays/*               Global holiday list
  /api/presets                  Labor-rule presets
  /api/admin/*                  Admin operations
  /api/scenarios/*              Demo scenarios

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"io"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// DefaultCORSOrigins are allowed when no origins are configured.
var DefaultCORSOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// Logger receives request logs. Defaults to the handler's logger.
	Logger *slog.Logger
	// CORSOrigins defaults to DefaultCORSOrigins.
	CORSOrigins []string
	// RequestLogLevel is the level of successful request logs.
	RequestLogLevel slog.Level
}

// NewLogger builds the application logger. JSON output follows the ECS
// field names used by the request logger.
func NewLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	if format == "text" {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	}
	logFormat := httplog.SchemaECS.Concise(false)
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "shift-payroll"),
	)
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = h.Logger
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = DefaultCORSOrigins
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.RequestLogLevel,
		Schema: httplog.SchemaECS,
	}))
	r.Use(middleware.CleanPath)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/api/health"))

	r.Route("/api", func(r chi.Router) {
		// Company routes
		r.Route("/companies/{companyID}", func(r chi.Router) {
			r.Get("/settings", h.GetSettings)
			r.Put("/settings", h.PutSettings)
			r.Post("/settings/preset", h.ApplyPreset)

			r.Get("/benefits", h.ListBenefits)
			r.Post("/benefits", h.CreateBenefit)
			r.Delete("/benefits/{id}", h.DeleteBenefit)

			r.Get("/deductions", h.ListDeductions)
			r.Post("/deductions", h.CreateDeduction)
			r.Delete("/deductions/{id}", h.DeleteDeduction)

			r.Get("/summaries", h.CompanySummaries)
		})

		// Worker routes
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/shifts", h.ListShifts)
			r.Post("/shifts", h.CreateShift)
			r.Get("/summary", h.GetSummary)
			r.Get("/voucher.pdf", h.GetVoucher)
			r.Get("/payrolls", h.ListPayrolls)
			r.Post("/payrolls", h.ClosePayroll)
		})

		// Shift routes
		r.Route("/shifts/{id}", func(r chi.Router) {
			r.Get("/", h.GetShift)
			r.Put("/", h.UpdateShift)
			r.Delete("/", h.DeleteShift)
		})

		// Holiday routes
		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Post("/", h.CreateHoliday)
			r.Delete("/{id}", h.DeleteHoliday)
		})

		r.Get("/presets", h.ListPresets)

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/close-periods", h.ClosePeriods)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}
