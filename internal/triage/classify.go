package triage

import "strings"

// Rule names, recorded on every decision.
const (
	RuleSevereSeverity = "severe-severity"
	RuleRedFlagKeyword = "red-flag-keyword"
	RuleModerateSudden = "moderate-sudden"
	RuleDefault        = "default"
)

// RedFlagKeywords are matched as case-insensitive, unanchored substrings of
// the symptom text. "chest" also matches inside any longer word.
var RedFlagKeywords = []string{"chest", "breathing", "bleeding"}

// Rule is one row of the decision table.
type Rule struct {
	Name    string
	Urgency Urgency
	Match   func(in Input) bool
}

// Decision is the outcome of running the rules against an Input.
type Decision struct {
	Urgency Urgency `json:"urgency"`
	Rule    string  `json:"rule"`
}

// Rules is evaluated top to bottom; the first match wins. The last rule
// always matches so every input gets a tier.
var Rules = []Rule{
	{
		Name:    RuleSevereSeverity,
		Urgency: UrgencyEmergency,
		Match:   func(in Input) bool { return in.Severity == SeveritySevere },
	},
	{
		Name:    RuleRedFlagKeyword,
		Urgency: UrgencyEmergency,
		Match:   func(in Input) bool { return hasRedFlag(in.Symptoms) },
	},
	{
		Name:    RuleModerateSudden,
		Urgency: UrgencyUrgent,
		Match: func(in Input) bool {
			return in.Severity == SeverityModerate && in.Duration == DurationSudden
		},
	},
	{
		Name:    RuleDefault,
		Urgency: UrgencyRoutine,
		Match:   func(Input) bool { return true },
	},
}

// Decide runs the decision table and reports which rule fired.
func Decide(in Input) Decision {
	for _, r := range Rules {
		if r.Match(in) {
			return Decision{Urgency: r.Urgency, Rule: r.Name}
		}
	}
	// unreachable while the default rule is last
	return Decision{Urgency: UrgencyRoutine, Rule: RuleDefault}
}

// Classify maps the answers to an urgency tier.
func Classify(in Input) Urgency {
	return Decide(in).Urgency
}

func hasRedFlag(symptoms string) bool {
	if symptoms == "" {
		return false
	}
	s := strings.ToLower(symptoms)
	for _, kw := range RedFlagKeywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
