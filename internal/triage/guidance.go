package triage

// Guidance is the advice shown for an urgency tier.
type Guidance struct {
	Urgency     Urgency `json:"urgency"`
	Headline    string  `json:"headline"`
	Advice      string  `json:"advice"`
	ActionLabel string  `json:"action_label"`
	ActionURL   string  `json:"action_url"`
}

// Option is a selectable answer on the severity or duration step.
type Option struct {
	Value       string
	Label       string
	Description string
}

const findGPURL = "https://www.healthdirect.gov.au/australian-health-services"

var guidance = map[Urgency]Guidance{
	UrgencyEmergency: {
		Urgency:     UrgencyEmergency,
		Headline:    "Seek Emergency Care Now",
		Advice:      "Based on your symptoms, you should visit the Emergency Department immediately or call 000 for an ambulance.",
		ActionLabel: "Call 000 Now",
		ActionURL:   "tel:000",
	},
	UrgencyUrgent: {
		Urgency:     UrgencyUrgent,
		Headline:    "See a GP Within 24 Hours",
		Advice:      "Your symptoms suggest you should see your GP soon, ideally within the next 24 hours. If symptoms worsen, consider emergency care.",
		ActionLabel: "Find GP Near Me",
		ActionURL:   findGPURL,
	},
	UrgencyRoutine: {
		Urgency:     UrgencyRoutine,
		Headline:    "Book a Routine GP Appointment",
		Advice:      "Your symptoms can likely be managed with a routine GP appointment. Book when convenient in the next few days.",
		ActionLabel: "Find GP Near Me",
		ActionURL:   findGPURL,
	},
}

// GuidanceFor returns the advice for u. Unknown tiers get the emergency
// advice, never nothing.
func GuidanceFor(u Urgency) Guidance {
	if g, ok := guidance[u]; ok {
		return g
	}
	return guidance[UrgencyEmergency]
}

// SeverityOptions lists the severity answers in display order.
var SeverityOptions = []Option{
	{Value: string(SeverityMild), Label: "Mild", Description: "Noticeable but not interfering with daily activities"},
	{Value: string(SeverityModerate), Label: "Moderate", Description: "Uncomfortable and affecting some activities"},
	{Value: string(SeveritySevere), Label: "Severe", Description: "Very painful or distressing, difficult to function"},
}

// DurationOptions lists the duration answers in display order.
var DurationOptions = []Option{
	{Value: string(DurationSudden), Label: "Just started (within last hour)"},
	{Value: string(DurationToday), Label: "Started today"},
	{Value: string(DurationDays), Label: "A few days"},
	{Value: string(DurationWeek), Label: "A week or more"},
}
