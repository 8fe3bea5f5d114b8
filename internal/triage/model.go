package triage

import "time"

// Step is a position in the assessment wizard.
type Step string

const (
	StepIntro    Step = "intro"
	StepSymptoms Step = "symptoms"
	StepSeverity Step = "severity"
	StepDuration Step = "duration"
	StepResult   Step = "result"
)

// Severity is the user's own rating of how bad the symptoms are.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityMild, SeverityModerate, SeveritySevere:
		return true
	}
	return false
}

// Duration is how long ago the symptoms started.
type Duration string

const (
	// DurationSudden means within the last hour
	DurationSudden Duration = "sudden"

	// DurationToday means started earlier today
	DurationToday Duration = "today"

	// DurationDays means a few days
	DurationDays Duration = "days"

	// DurationWeek means a week or more
	DurationWeek Duration = "week"
)

// Valid reports whether d is one of the known durations.
func (d Duration) Valid() bool {
	switch d {
	case DurationSudden, DurationToday, DurationDays, DurationWeek:
		return true
	}
	return false
}

// Urgency is the care tier an assessment resolves to.
type Urgency string

const (
	// UrgencyEmergency means go to the Emergency Department or call 000 now
	UrgencyEmergency Urgency = "emergency"

	// UrgencyUrgent means see a GP within 24 hours
	UrgencyUrgent Urgency = "urgent"

	// UrgencyRoutine means book a routine GP appointment
	UrgencyRoutine Urgency = "routine"
)

// Input is the set of answers the classifier works from.
type Input struct {
	Symptoms string   `json:"symptoms"`
	Severity Severity `json:"severity"`
	Duration Duration `json:"duration"`
}

// Assessment is one pass through the wizard. It is transient: it lives in the
// session store until the user leaves, resets or goes idle.
type Assessment struct {
	ID        string    `json:"id"`
	Step      Step      `json:"step"`
	Symptoms  string    `json:"symptoms"`
	Severity  Severity  `json:"severity,omitempty"`
	Duration  Duration  `json:"duration,omitempty"`
	Urgency   Urgency   `json:"urgency,omitempty"`
	Rule      string    `json:"rule,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// OwnerHash is the SHA-256 of the token held by the browser that began
	// the assessment. The token itself is never stored.
	OwnerHash string `json:"-"`
}

// Input returns the answers collected so far.
func (a *Assessment) Input() Input {
	return Input{
		Symptoms: a.Symptoms,
		Severity: a.Severity,
		Duration: a.Duration,
	}
}

// Outcome is the anonymous record of a completed assessment. It deliberately
// carries no symptom text and no assessment ID.
type Outcome struct {
	Day      time.Time `json:"day"`
	Urgency  Urgency   `json:"urgency"`
	Rule     string    `json:"rule"`
	Severity Severity  `json:"severity"`
	Duration Duration  `json:"duration"`
}

// OutcomeCount is an aggregated row of the outcome tally.
type OutcomeCount struct {
	Outcome
	Count int64 `json:"count"`
}
