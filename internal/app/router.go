package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/amparo-lar/amparo-lar/internal/categories"
	"github.com/amparo-lar/amparo-lar/internal/ledger"
	"github.com/amparo-lar/amparo-lar/internal/payables"
	"github.com/amparo-lar/amparo-lar/internal/receivables"
	"github.com/amparo-lar/amparo-lar/internal/reconciliation"
	reporthttp "github.com/amparo-lar/amparo-lar/internal/reports/http"
	"github.com/amparo-lar/amparo-lar/jobs"
)

// ReportInvalidator drops cached report snapshots after financial writes.
type ReportInvalidator interface {
	Invalidate(ctx context.Context) error
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	ReportInvalidator ReportInvalidator

	LedgerHandler         *ledger.Handler
	CategoriesHandler     *categories.Handler
	PayablesHandler       *payables.Handler
	ReceivablesHandler    *receivables.Handler
	ReconciliationHandler *reconciliation.Handler
	ReportsHandler        *reporthttp.Handler
	JobHandler            *jobs.Handler
}

// NewRouter constructs the chi.Router with the finance routes mounted under
// /finance.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/finance", func(r chi.Router) {
		if params.ReportInvalidator != nil {
			r.Use(invalidateOnWrite(params.ReportInvalidator, params.Logger))
		}
		if params.LedgerHandler != nil {
			r.Route("/ledger", params.LedgerHandler.MountRoutes)
		}
		if params.CategoriesHandler != nil {
			r.Route("/categories", params.CategoriesHandler.MountRoutes)
		}
		if params.PayablesHandler != nil {
			r.Route("/payables", params.PayablesHandler.MountRoutes)
		}
		if params.ReceivablesHandler != nil {
			r.Route("/receivables", params.ReceivablesHandler.MountRoutes)
		}
		if params.ReconciliationHandler != nil {
			r.Route("/reconciliation", params.ReconciliationHandler.MountRoutes)
		}
		if params.ReportsHandler != nil {
			r.Route("/reports", params.ReportsHandler.MountRoutes)
		}
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// invalidateOnWrite bumps the report cache after a successful mutating
// request so dashboards pick up new figures on the next read.
func invalidateOnWrite(invalidator ReportInvalidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			if rec.status < http.StatusBadRequest {
				if err := invalidator.Invalidate(r.Context()); err != nil {
					logger.Warn("report cache invalidation", slog.Any("error", err))
				}
			}
		})
	}
}
