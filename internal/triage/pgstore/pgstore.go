// Package pgstore provides a PostgreSQL implementation of triage.Tally.
package pgstore

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/carepath/internal/triage"
)

var tracer = otel.Tracer("github.com/linnemanlabs/carepath/internal/triage/pgstore")

//go:embed schema.sql
var schema string

// Tally persists outcome counts in PostgreSQL. Rows hold only the tier,
// rule and the two enum answers per day; symptom text never reaches the
// database.
type Tally struct {
	pool *pgxpool.Pool
}

// New applies the schema and returns a ready Tally. The caller owns the pool.
func New(ctx context.Context, pool *pgxpool.Pool) (*Tally, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Tally{pool: pool}, nil
}

func startSpan(ctx context.Context, name, op string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", op),
	))
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// Record increments the counter for the outcome's (day, urgency, rule,
// severity, duration) bucket.
func (t *Tally) Record(ctx context.Context, o triage.Outcome) error {
	ctx, span := startSpan(ctx, "pgstore.Record", "UPSERT")
	defer span.End()

	span.SetAttributes(attribute.String("carepath.urgency", string(o.Urgency)))

	_, err := t.pool.Exec(ctx,
		`INSERT INTO triage_outcomes (day, urgency, rule, severity, duration, count, updated_at)
		 VALUES ($1, $2, $3, $4, $5, 1, now())
		 ON CONFLICT (day, urgency, rule, severity, duration) DO UPDATE SET
			count      = triage_outcomes.count + 1,
			updated_at = now()`,
		o.Day.UTC().Truncate(24*time.Hour), string(o.Urgency), o.Rule, string(o.Severity), string(o.Duration),
	)
	if err != nil {
		return fail(span, fmt.Errorf("record outcome: %w", err))
	}
	return nil
}

// Summary returns counts for days on or after since, newest day first.
func (t *Tally) Summary(ctx context.Context, since time.Time) ([]triage.OutcomeCount, error) {
	ctx, span := startSpan(ctx, "pgstore.Summary", "SELECT")
	defer span.End()

	rows, err := t.pool.Query(ctx,
		`SELECT day, urgency, rule, severity, duration, count
		 FROM triage_outcomes
		 WHERE day >= $1
		 ORDER BY day DESC, urgency, rule, severity, duration`,
		since.UTC().Truncate(24*time.Hour),
	)
	if err != nil {
		return nil, fail(span, fmt.Errorf("query outcomes: %w", err))
	}
	defer rows.Close()

	var out []triage.OutcomeCount
	for rows.Next() {
		var (
			oc                          triage.OutcomeCount
			urgency, severity, duration string
		)
		if err := rows.Scan(&oc.Day, &urgency, &oc.Rule, &severity, &duration, &oc.Count); err != nil {
			return nil, fail(span, fmt.Errorf("scan outcome: %w", err))
		}
		oc.Day = oc.Day.UTC()
		oc.Urgency = triage.Urgency(urgency)
		oc.Severity = triage.Severity(severity)
		oc.Duration = triage.Duration(duration)
		out = append(out, oc)
	}
	if err := rows.Err(); err != nil {
		return nil, fail(span, fmt.Errorf("iterate outcomes: %w", err))
	}

	span.SetAttributes(attribute.Int("db.rows", len(out)))
	return out, nil
}

// Reset deletes every tally row. Used by integration tests.
func (t *Tally) Reset(ctx context.Context) error {
	ctx, span := startSpan(ctx, "pgstore.Reset", "DELETE")
	defer span.End()

	if _, err := t.pool.Exec(ctx, `DELETE FROM triage_outcomes`); err != nil {
		return fail(span, fmt.Errorf("reset outcomes: %w", err))
	}
	return nil
}
