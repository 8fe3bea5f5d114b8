package triage

import (
	"strings"
	"time"

	"github.com/linnemanlabs/go-core/xerrors"
)

// Action is a user command on the wizard.
type Action string

const (
	ActionNext  Action = "next"
	ActionBack  Action = "back"
	ActionReset Action = "reset"
)

var (
	// ErrInvalidTransition is returned for a (step, action) pair the wizard does not define.
	ErrInvalidTransition = xerrors.New("invalid wizard transition")

	// ErrNotFound is returned when an assessment does not exist, has expired
	// or belongs to another browser.
	ErrNotFound = xerrors.New("assessment not found")

	// ErrStaleStep is returned when an event was submitted from a step the
	// assessment has already left, e.g. a double-clicked submit.
	ErrStaleStep = xerrors.New("event submitted from a stale step")
)

// Notice is a rejected forward transition. The assessment stays on Step and
// Message is shown to the user.
type Notice struct {
	Step    Step
	Field   string
	Message string
}

func (n *Notice) Error() string { return n.Message }

// Event is one submission of a wizard step. Value carries the current step's
// input when HasValue is set; it is recorded before the gate runs.
type Event struct {
	Action   Action
	Value    string
	HasValue bool

	// At is the step the event was submitted from. Empty skips the check.
	At Step
}

type transitionKey struct {
	from   Step
	action Action
}

type transition struct {
	to     Step
	gate   func(a *Assessment) *Notice
	effect func(a *Assessment)
}

var transitions = map[transitionKey]transition{
	{StepIntro, ActionNext}: {to: StepSymptoms},
	{StepSymptoms, ActionNext}: {
		to: StepSeverity,
		gate: func(a *Assessment) *Notice {
			if strings.TrimSpace(a.Symptoms) == "" {
				return &Notice{Step: StepSymptoms, Field: "symptoms", Message: "Please describe your symptoms"}
			}
			return nil
		},
	},
	{StepSeverity, ActionNext}: {
		to: StepDuration,
		gate: func(a *Assessment) *Notice {
			if !a.Severity.Valid() {
				return &Notice{Step: StepSeverity, Field: "severity", Message: "Please select severity"}
			}
			return nil
		},
	},
	{StepDuration, ActionNext}: {
		to: StepResult,
		gate: func(a *Assessment) *Notice {
			if !a.Duration.Valid() {
				return &Notice{Step: StepDuration, Field: "duration", Message: "Please select duration"}
			}
			return nil
		},
		effect: func(a *Assessment) {
			d := Decide(a.Input())
			a.Urgency = d.Urgency
			a.Rule = d.Rule
		},
	},
	{StepSymptoms, ActionBack}: {to: StepIntro},
	{StepSeverity, ActionBack}: {to: StepSymptoms},
	{StepDuration, ActionBack}: {to: StepSeverity},
	{StepResult, ActionBack}: {
		to:     StepDuration,
		effect: clearDecision,
	},
	{StepResult, ActionReset}: {
		to: StepIntro,
		effect: func(a *Assessment) {
			a.Symptoms = ""
			a.Severity = ""
			a.Duration = ""
			clearDecision(a)
		},
	},
}

func clearDecision(a *Assessment) {
	a.Urgency = ""
	a.Rule = ""
}

// CanApply reports whether the wizard defines action from step.
func CanApply(step Step, action Action) bool {
	_, ok := transitions[transitionKey{step, action}]
	return ok
}

// Apply runs one event against the assessment. On success the assessment is
// moved to the next step. A gate violation returns a *Notice. An event from a
// step other than the current one returns ErrStaleStep and an undefined
// (step, action) pair returns ErrInvalidTransition; neither mutates a.
func Apply(a *Assessment, ev Event, now time.Time) error {
	if ev.At != "" && ev.At != a.Step {
		return ErrStaleStep
	}
	t, ok := transitions[transitionKey{a.Step, ev.Action}]
	if !ok {
		return ErrInvalidTransition
	}

	if ev.HasValue && ev.Action != ActionReset {
		recordValue(a, ev.Value)
	}
	a.UpdatedAt = now

	if t.gate != nil {
		if n := t.gate(a); n != nil {
			return n
		}
	}
	if t.effect != nil {
		t.effect(a)
	}
	a.Step = t.to
	return nil
}

// recordValue stores v into the field owned by the current step. Unknown
// severity/duration values are stored as unset.
func recordValue(a *Assessment, v string) {
	switch a.Step {
	case StepSymptoms:
		a.Symptoms = v
	case StepSeverity:
		a.Severity = Severity(v)
		if !a.Severity.Valid() {
			a.Severity = ""
		}
	case StepDuration:
		a.Duration = Duration(v)
		if !a.Duration.Valid() {
			a.Duration = ""
		}
	}
}
