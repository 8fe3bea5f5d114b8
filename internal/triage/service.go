package triage

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"
)

// Hooks receives lifecycle callbacks from the Service. Nil fields are skipped.
type Hooks struct {
	OnBegin      func()
	OnTransition func(from Step, action Action, outcome string)
	OnNotice     func(step Step)
	OnDecision   func(source string, d Decision)
	OnComplete   func(elapsed float64)
}

// Transition outcomes reported to Hooks.OnTransition.
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
	OutcomeInvalid  = "invalid"
	OutcomeStale    = "stale"
)

// Decision sources reported to Hooks.OnDecision.
const (
	SourceWizard = "wizard"
	SourceAPI    = "api"
)

// Service is the business boundary for assessments.
type Service struct {
	store  Store
	tally  Tally
	logger log.Logger
	hooks  Hooks
	now    func() time.Time
}

// NewService creates a triage service. tally may be nil, in which case
// outcomes are not counted.
func NewService(store Store, tally Tally, logger log.Logger, hooks Hooks) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		store:  store,
		tally:  tally,
		logger: logger,
		hooks:  hooks,
		now:    time.Now,
	}
}

// Begin starts a fresh assessment on the intro step, bound to owner. Every
// later call for the assessment must present the same owner token.
func (s *Service) Begin(ctx context.Context, owner string) (*Assessment, error) {
	if owner == "" {
		return nil, errors.New("begin assessment: owner token required")
	}
	now := s.now()
	a := &Assessment{
		ID:        ulid.Make().String(),
		Step:      StepIntro,
		CreatedAt: now,
		UpdatedAt: now,
		OwnerHash: hashOwner(owner),
	}
	if err := s.store.Put(ctx, a); err != nil {
		return nil, fmt.Errorf("store assessment: %w", err)
	}
	if s.hooks.OnBegin != nil {
		s.hooks.OnBegin()
	}
	return a, nil
}

// Get returns the assessment with the given ID. A missing assessment and one
// begun under a different owner token both return ErrNotFound.
func (s *Service) Get(ctx context.Context, id, owner string) (*Assessment, error) {
	a, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load assessment: %w", err)
	}
	if !ok || !ownedBy(a, owner) {
		return nil, ErrNotFound
	}
	return a, nil
}

// Apply runs one wizard event. It always returns the assessment as it now
// stands. A rejected gate returns a *Notice, and the recorded input is kept
// so the step can be shown again with what the user entered.
func (s *Service) Apply(ctx context.Context, id, owner string, ev Event) (*Assessment, error) {
	a, err := s.Get(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	from := a.Step
	applyErr := Apply(a, ev, s.now())

	var notice *Notice
	switch {
	case applyErr == nil:
		s.transition(from, ev.Action, OutcomeApplied)
	case errors.As(applyErr, &notice):
		s.transition(from, ev.Action, OutcomeRejected)
		if s.hooks.OnNotice != nil {
			s.hooks.OnNotice(notice.Step)
		}
	case errors.Is(applyErr, ErrStaleStep):
		s.transition(from, ev.Action, OutcomeStale)
		return a, applyErr
	default:
		s.transition(from, ev.Action, OutcomeInvalid)
		return a, applyErr
	}

	if err := s.store.Put(ctx, a); err != nil {
		return nil, fmt.Errorf("store assessment: %w", err)
	}

	if applyErr == nil && a.Step == StepResult {
		s.complete(ctx, a)
	}
	return a, applyErr
}

// Discard drops the assessment. Discarding a missing assessment is not an
// error; discarding one held by another owner returns ErrNotFound.
func (s *Service) Discard(ctx context.Context, id, owner string) error {
	a, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load assessment: %w", err)
	}
	if !ok {
		return nil
	}
	if !ownedBy(a, owner) {
		return ErrNotFound
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete assessment: %w", err)
	}
	return nil
}

// Classify decides an urgency tier without any wizard state.
func (s *Service) Classify(_ context.Context, in Input) Decision {
	d := Decide(in)
	if s.hooks.OnDecision != nil {
		s.hooks.OnDecision(SourceAPI, d)
	}
	return d
}

// Outcomes returns tally counts recorded since the given time.
func (s *Service) Outcomes(ctx context.Context, since time.Time) ([]OutcomeCount, error) {
	if s.tally == nil {
		return nil, nil
	}
	out, err := s.tally.Summary(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("outcome summary: %w", err)
	}
	return out, nil
}

func hashOwner(owner string) string {
	sum := sha256.Sum256([]byte(owner))
	return hex.EncodeToString(sum[:])
}

func ownedBy(a *Assessment, owner string) bool {
	if owner == "" || a.OwnerHash == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(hashOwner(owner)), []byte(a.OwnerHash)) == 1
}

func (s *Service) transition(from Step, action Action, outcome string) {
	if s.hooks.OnTransition != nil {
		s.hooks.OnTransition(from, action, outcome)
	}
}

// complete reports a finished assessment. Tally failures are logged and never
// reach the user.
func (s *Service) complete(ctx context.Context, a *Assessment) {
	d := Decision{Urgency: a.Urgency, Rule: a.Rule}
	elapsed := a.UpdatedAt.Sub(a.CreatedAt).Seconds()

	if s.hooks.OnDecision != nil {
		s.hooks.OnDecision(SourceWizard, d)
	}
	if s.hooks.OnComplete != nil {
		s.hooks.OnComplete(elapsed)
	}

	L := s.logger.With("assessment_id", a.ID)
	L.Info(ctx, "assessment complete",
		"urgency", a.Urgency,
		"rule", a.Rule,
		"severity", a.Severity,
		"duration", a.Duration,
		"elapsed_seconds", elapsed,
	)

	if s.tally == nil {
		return
	}
	o := Outcome{
		Day:      a.UpdatedAt.UTC().Truncate(24 * time.Hour),
		Urgency:  a.Urgency,
		Rule:     a.Rule,
		Severity: a.Severity,
		Duration: a.Duration,
	}
	if err := s.tally.Record(ctx, o); err != nil {
		L.Error(ctx, err, "failed to record outcome")
	}
}
