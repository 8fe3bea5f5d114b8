// Package webui serves the server-rendered CarePath pages: the landing page
// and the assessment wizard.
package webui

import (
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/carepath/internal/triage"
)

// WizardService defines the assessment operations the web UI needs. owner is
// the browser's owner cookie value.
type WizardService interface {
	Begin(ctx context.Context, owner string) (*triage.Assessment, error)
	Get(ctx context.Context, id, owner string) (*triage.Assessment, error)
	Apply(ctx context.Context, id, owner string, ev triage.Event) (*triage.Assessment, error)
	Discard(ctx context.Context, id, owner string) error
}

// Options tunes the web UI.
type Options struct {
	// SecureCookies marks the CSRF and owner cookies Secure. Disable only for
	// plain-http dev.
	SecureCookies bool
}

// UI holds the parsed templates and handler dependencies.
type UI struct {
	logger log.Logger
	svc    WizardService
	pages  map[string]*template.Template
	static http.Handler
	secure bool
}

// New parses the embedded templates and returns a ready UI.
func New(logger log.Logger, svc WizardService, opts Options) (*UI, error) {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("wizard service is required"))
	}
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	static, err := staticHandler()
	if err != nil {
		return nil, err
	}
	return &UI{
		logger: logger,
		svc:    svc,
		pages:  pages,
		static: static,
		secure: opts.SecureCookies,
	}, nil
}

// RegisterRoutes attaches the page routes to the router.
func (u *UI) RegisterRoutes(r chi.Router) {
	r.Handle("/static/*", u.static)

	r.Group(func(r chi.Router) {
		r.Use(CSRF(u.secure))

		r.Get("/", u.handleLanding)
		r.Post("/assessment", u.handleBegin)

		r.Route("/assessment/{id}", func(r chi.Router) {
			r.Use(middleware.NoCache)
			r.Get("/", u.handleShow)
			r.Post("/", u.handleSubmit)
			r.Post("/exit", u.handleExit)
		})
	})
}

type landingData struct {
	FindCareURL string
}

// stepData backs every wizard page.
type stepData struct {
	ID       string
	Step     triage.Step
	Position int
	Total    int
	Symptoms string
	Severity triage.Severity
	Duration triage.Duration
	Selected string
	Options  []triage.Option
	Guidance triage.Guidance

	// ActionURL may be a tel: link, which html/template would otherwise filter.
	ActionURL template.URL
}

// questionSteps are the steps that count toward the progress indicator.
var questionSteps = map[triage.Step]int{
	triage.StepSymptoms: 1,
	triage.StepSeverity: 2,
	triage.StepDuration: 3,
}

func newStepData(a *triage.Assessment) stepData {
	d := stepData{
		ID:       a.ID,
		Step:     a.Step,
		Position: questionSteps[a.Step],
		Total:    len(questionSteps),
		Symptoms: a.Symptoms,
		Severity: a.Severity,
		Duration: a.Duration,
	}
	switch a.Step {
	case triage.StepSeverity:
		d.Selected = string(a.Severity)
		d.Options = triage.SeverityOptions
	case triage.StepDuration:
		d.Selected = string(a.Duration)
		d.Options = triage.DurationOptions
	case triage.StepResult:
		d.Guidance = triage.GuidanceFor(a.Urgency)
		d.ActionURL = template.URL(d.Guidance.ActionURL) //nolint:gosec // G203: guidance URLs are compile-time constants
	}
	return d
}

func (u *UI) handleLanding(w http.ResponseWriter, r *http.Request) {
	u.render(w, r, http.StatusOK, "landing", "", landingData{
		FindCareURL: triage.GuidanceFor(triage.UrgencyRoutine).ActionURL,
	})
}

func (u *UI) handleBegin(w http.ResponseWriter, r *http.Request) {
	owner, err := u.ensureOwner(w, r)
	if err != nil {
		u.logger.Error(r.Context(), err, "failed to mint owner token")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	a, err := u.svc.Begin(r.Context(), owner)
	if err != nil {
		u.logger.Error(r.Context(), err, "failed to begin assessment")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("carepath.assessment.id", a.ID))
	http.Redirect(w, r, "/assessment/"+a.ID, http.StatusSeeOther)
}

func (u *UI) handleShow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("carepath.assessment.id", id))

	a, err := u.svc.Get(r.Context(), id, ownerToken(r))
	if err != nil {
		u.fail(w, r, err)
		return
	}
	span.SetAttributes(attribute.String("carepath.step", string(a.Step)))
	u.render(w, r, http.StatusOK, string(a.Step), "", newStepData(a))
}

func (u *UI) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("carepath.assessment.id", id))

	// reject forged actions before they reach metric labels
	action := triage.Action(r.PostFormValue("action"))
	switch action {
	case triage.ActionNext, triage.ActionBack, triage.ActionReset:
	default:
		http.Error(w, "invalid action", http.StatusBadRequest)
		return
	}

	owner := ownerToken(r)
	current, err := u.svc.Get(r.Context(), id, owner)
	if err != nil {
		u.fail(w, r, err)
		return
	}

	// each form names the step it was rendered for; a resubmitted form from a
	// step already left goes back to the current one untouched
	posted := triage.Step(r.PostFormValue("step"))
	if posted != "" && posted != current.Step {
		http.Redirect(w, r, "/assessment/"+id, http.StatusSeeOther)
		return
	}

	ev := triage.Event{Action: action, At: posted}
	switch current.Step {
	case triage.StepSymptoms, triage.StepSeverity, triage.StepDuration:
		// the step's input field is named after the step
		if vals, ok := r.PostForm[string(current.Step)]; ok && len(vals) > 0 {
			ev.Value, ev.HasValue = vals[0], true
		}
	}

	span.SetAttributes(
		attribute.String("carepath.step", string(current.Step)),
		attribute.String("carepath.action", string(action)),
	)

	a, err := u.svc.Apply(r.Context(), id, owner, ev)
	var notice *triage.Notice
	switch {
	case err == nil, errors.Is(err, triage.ErrStaleStep):
		http.Redirect(w, r, "/assessment/"+id, http.StatusSeeOther)
	case errors.As(err, &notice):
		u.render(w, r, http.StatusUnprocessableEntity, string(a.Step), notice.Message, newStepData(a))
	default:
		u.fail(w, r, err)
	}
}

func (u *UI) handleExit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := u.svc.Discard(r.Context(), id, ownerToken(r)); err != nil {
		if errors.Is(err, triage.ErrNotFound) {
			u.fail(w, r, err)
			return
		}
		u.logger.Error(r.Context(), err, "failed to discard assessment", "assessment_id", id)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// fail maps service errors onto responses.
func (u *UI) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, triage.ErrNotFound):
		u.render(w, r, http.StatusNotFound, "notfound", "", nil)
	case errors.Is(err, triage.ErrInvalidTransition):
		http.Error(w, "invalid action for this step", http.StatusBadRequest)
	default:
		u.logger.Error(r.Context(), err, "assessment request failed", "assessment_id", chi.URLParam(r, "id"))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
