package triageapi

import (
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/carepath/internal/triage"
)

const (
	defaultDays = 7
	maxDays     = 90
)

type outcomesResponse struct {
	Days     int                   `json:"days"`
	Since    time.Time             `json:"since"`
	Outcomes []triage.OutcomeCount `json:"outcomes"`
}

func (a *API) handleOutcomes(w http.ResponseWriter, r *http.Request) {
	days := defaultDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxDays {
			writeError(w, http.StatusBadRequest, "days must be an integer between 1 and 90")
			return
		}
		days = n
	}

	// today counts as the first day
	since := a.now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -(days - 1))

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.Int("carepath.outcomes.days", days))

	out, err := a.svc.Outcomes(r.Context(), since)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to load outcomes", "days", days)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if out == nil {
		out = []triage.OutcomeCount{}
	}

	span.SetAttributes(attribute.Int("carepath.outcomes.rows", len(out)))

	writeJSON(w, http.StatusOK, outcomesResponse{
		Days:     days,
		Since:    since,
		Outcomes: out,
	})
}
