package triageapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/carepath/internal/triage"
)

type classifyRequest struct {
	Symptoms string `json:"symptoms"`
	Severity string `json:"severity"`
	Duration string `json:"duration"`
}

type classifyResponse struct {
	Urgency  triage.Urgency  `json:"urgency"`
	Rule     string          `json:"rule"`
	Guidance triage.Guidance `json:"guidance"`
}

// validate applies the same requirements the wizard gates enforce.
func (req classifyRequest) validate() (triage.Input, string) {
	in := triage.Input{
		Symptoms: req.Symptoms,
		Severity: triage.Severity(req.Severity),
		Duration: triage.Duration(req.Duration),
	}
	switch {
	case strings.TrimSpace(in.Symptoms) == "":
		return in, "symptoms is required"
	case !in.Severity.Valid():
		return in, "severity must be one of mild, moderate, severe"
	case !in.Duration.Valid():
		return in, "duration must be one of sudden, today, days, week"
	}
	return in, ""
}

func (a *API) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	in, problem := req.validate()
	if problem != "" {
		writeError(w, http.StatusUnprocessableEntity, problem)
		return
	}

	d := a.svc.Classify(r.Context(), in)

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("carepath.urgency", string(d.Urgency)),
		attribute.String("carepath.rule", d.Rule),
	)

	writeJSON(w, http.StatusOK, classifyResponse{
		Urgency:  d.Urgency,
		Rule:     d.Rule,
		Guidance: triage.GuidanceFor(d.Urgency),
	})
}
