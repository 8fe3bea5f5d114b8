package triage

import (
	"context"
	"time"
)

// Store holds in-flight assessments.
type Store interface {
	Get(ctx context.Context, id string) (*Assessment, bool, error)
	Put(ctx context.Context, a *Assessment) error
	Delete(ctx context.Context, id string) error
}

// Tally counts completed assessments without keeping anything that
// identifies the user.
type Tally interface {
	Record(ctx context.Context, o Outcome) error
	Summary(ctx context.Context, since time.Time) ([]OutcomeCount, error)
}
