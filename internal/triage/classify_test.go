package triage

import (
	"strings"
	"testing"
)

var (
	allSeverities = []Severity{SeverityMild, SeverityModerate, SeveritySevere, "", "extreme"}
	allDurations  = []Duration{DurationSudden, DurationToday, DurationDays, DurationWeek, "", "forever"}
)

func TestDecide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Input
		want Decision
	}{
		{"severe beats everything", Input{"mild itch", SeveritySevere, DurationWeek}, Decision{UrgencyEmergency, RuleSevereSeverity}},
		{"severe with keyword reports severity rule", Input{"chest pain", SeveritySevere, DurationSudden}, Decision{UrgencyEmergency, RuleSevereSeverity}},
		{"chest keyword on mild", Input{"tight chest", SeverityMild, DurationWeek}, Decision{UrgencyEmergency, RuleRedFlagKeyword}},
		{"breathing keyword upper case", Input{"TROUBLE BREATHING", SeverityModerate, DurationDays}, Decision{UrgencyEmergency, RuleRedFlagKeyword}},
		{"bleeding keyword mixed case", Input{"Bleeding gums", SeverityMild, DurationToday}, Decision{UrgencyEmergency, RuleRedFlagKeyword}},
		{"keyword inside longer word", Input{"chestnut allergy", SeverityMild, DurationDays}, Decision{UrgencyEmergency, RuleRedFlagKeyword}},
		{"keyword beats moderate sudden", Input{"breathing hard", SeverityModerate, DurationSudden}, Decision{UrgencyEmergency, RuleRedFlagKeyword}},
		{"moderate sudden", Input{"headache", SeverityModerate, DurationSudden}, Decision{UrgencyUrgent, RuleModerateSudden}},
		{"moderate today", Input{"headache", SeverityModerate, DurationToday}, Decision{UrgencyRoutine, RuleDefault}},
		{"moderate week", Input{"cough", SeverityModerate, DurationWeek}, Decision{UrgencyRoutine, RuleDefault}},
		{"mild sudden", Input{"sneezing", SeverityMild, DurationSudden}, Decision{UrgencyRoutine, RuleDefault}},
		{"empty symptoms mild", Input{"", SeverityMild, DurationDays}, Decision{UrgencyRoutine, RuleDefault}},
		{"empty symptoms severe", Input{"", SeveritySevere, DurationDays}, Decision{UrgencyEmergency, RuleSevereSeverity}},
		{"unknown severity falls through", Input{"rash", "extreme", DurationSudden}, Decision{UrgencyRoutine, RuleDefault}},
		{"unset inputs", Input{}, Decision{UrgencyRoutine, RuleDefault}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Decide(tt.in)
			if got != tt.want {
				t.Errorf("Decide(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
			if c := Classify(tt.in); c != tt.want.Urgency {
				t.Errorf("Classify(%+v) = %q, want %q", tt.in, c, tt.want.Urgency)
			}
		})
	}
}

func TestClassify_TotalAndDeterministic(t *testing.T) {
	t.Parallel()

	texts := []string{"", "   ", "headache", "CHEST", "short of breathing", "bleeding", "fever and chills"}
	for _, text := range texts {
		for _, sev := range allSeverities {
			for _, dur := range allDurations {
				in := Input{Symptoms: text, Severity: sev, Duration: dur}
				first := Classify(in)
				switch first {
				case UrgencyEmergency, UrgencyUrgent, UrgencyRoutine:
				default:
					t.Fatalf("Classify(%+v) = %q, not a tier", in, first)
				}
				if again := Classify(in); again != first {
					t.Fatalf("Classify(%+v) not deterministic: %q then %q", in, first, again)
				}
			}
		}
	}
}

func TestClassify_SevereAlwaysEmergency(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"", "itchy toe", "chest"} {
		for _, dur := range allDurations {
			in := Input{Symptoms: text, Severity: SeveritySevere, Duration: dur}
			if got := Classify(in); got != UrgencyEmergency {
				t.Errorf("Classify(%+v) = %q, want emergency", in, got)
			}
		}
	}
}

func TestClassify_MildWithoutKeywordIsRoutine(t *testing.T) {
	t.Parallel()

	for _, dur := range allDurations {
		in := Input{Symptoms: "runny nose", Severity: SeverityMild, Duration: dur}
		if got := Classify(in); got != UrgencyRoutine {
			t.Errorf("Classify(%+v) = %q, want routine", in, got)
		}
	}
}

func TestClassify_KeywordsAnyCase(t *testing.T) {
	t.Parallel()

	for _, kw := range RedFlagKeywords {
		for _, variant := range []string{kw, strings.ToUpper(kw), "pain in " + kw + " area"} {
			for _, sev := range []Severity{SeverityMild, SeverityModerate} {
				in := Input{Symptoms: variant, Severity: sev, Duration: DurationWeek}
				if got := Classify(in); got != UrgencyEmergency {
					t.Errorf("Classify(%+v) = %q, want emergency", in, got)
				}
			}
		}
	}
}

func TestRules_DefaultIsLast(t *testing.T) {
	t.Parallel()

	last := Rules[len(Rules)-1]
	if last.Name != RuleDefault {
		t.Fatalf("last rule = %q, want %q", last.Name, RuleDefault)
	}
	if !last.Match(Input{}) {
		t.Error("default rule must match every input")
	}
}
