// Package triageapi exposes classification and outcome reporting over JSON.
package triageapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/carepath/internal/authmw"
	"github.com/linnemanlabs/carepath/internal/ratelimit"
	"github.com/linnemanlabs/carepath/internal/triage"
)

// TriageService defines the business operations triageapi needs.
type TriageService interface {
	Classify(ctx context.Context, in triage.Input) triage.Decision
	Outcomes(ctx context.Context, since time.Time) ([]triage.OutcomeCount, error)
}

// Options configures optional API behaviour.
type Options struct {
	// APIToken guards /api/v1/outcomes. Empty leaves the route unregistered.
	APIToken string

	// Limiter throttles /api/v1/classify per client. Nil disables throttling.
	Limiter *ratelimit.Limiter

	// ClientKey picks the rate limit bucket. Defaults to ratelimit.ClientIP.
	ClientKey ratelimit.KeyFunc
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger log.Logger
	svc    TriageService
	opts   Options
	now    func() time.Time
}

// New creates a new API handler.
func New(logger log.Logger, svc TriageService, opts Options) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("triage service is required"))
	}
	return &API{
		logger: logger,
		svc:    svc,
		opts:   opts,
		now:    time.Now,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if a.opts.Limiter != nil {
				r.Use(a.opts.Limiter.Middleware(a.opts.ClientKey))
			}
			r.Post("/classify", a.handleClassify)
		})

		if a.opts.APIToken != "" {
			r.With(authmw.BearerToken(a.opts.APIToken)).Get("/outcomes", a.handleOutcomes)
		}
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// nothing to do with errors here
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
