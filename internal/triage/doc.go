// Package triage is the core of CarePath's symptom check. It defines the
// wizard state machine (Apply), the ordered classification rules (Decide),
// the Service that owns assessment lifecycle, and the Store and Tally
// interfaces it persists through.
package triage
