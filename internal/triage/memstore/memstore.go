// Package memstore provides in-memory implementations of triage.Store and
// triage.Tally.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/carepath/internal/triage"
)

// Store holds in-flight assessments in memory. Entries idle longer than the
// TTL are treated as gone and removed by Sweep.
type Store struct {
	mu    sync.RWMutex
	items map[string]*triage.Assessment // assessment ID -> assessment
	ttl   time.Duration
	now   func() time.Time
}

// New initializes a new in-memory Store. A ttl <= 0 disables expiry.
func New(ttl time.Duration) *Store {
	return &Store{
		items: make(map[string]*triage.Assessment),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get retrieves an assessment by ID. Returns a copy.
func (s *Store) Get(_ context.Context, id string) (*triage.Assessment, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.items[id]
	if !ok || s.expired(a, s.now()) {
		return nil, false, nil
	}
	cp := *a
	return &cp, true, nil
}

// Put stores a copy of the assessment.
func (s *Store) Put(_ context.Context, a *triage.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.items[a.ID] = &cp
	return nil
}

// Delete removes an assessment. Missing IDs are ignored.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

// Len returns the number of stored assessments, including expired ones not yet swept.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Sweep removes assessments idle past the TTL and returns how many were dropped.
func (s *Store) Sweep(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, a := range s.items {
		if s.expired(a, now) {
			delete(s.items, id)
			n++
		}
	}
	return n
}

// RunJanitor sweeps every interval until ctx is done.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration, logger log.Logger) {
	if logger == nil {
		logger = log.Nop()
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Sweep(now); n > 0 {
				logger.Info(ctx, "expired idle assessments", "count", n)
			}
		}
	}
}

func (s *Store) expired(a *triage.Assessment, now time.Time) bool {
	return s.ttl > 0 && now.Sub(a.UpdatedAt) > s.ttl
}

type tallyKey struct {
	day      time.Time
	urgency  triage.Urgency
	rule     string
	severity triage.Severity
	duration triage.Duration
}

// Tally counts outcomes in memory.
type Tally struct {
	mu     sync.Mutex
	counts map[tallyKey]int64
}

// NewTally initializes an empty in-memory Tally.
func NewTally() *Tally {
	return &Tally{counts: make(map[tallyKey]int64)}
}

// Record increments the count for the outcome's bucket.
func (t *Tally) Record(_ context.Context, o triage.Outcome) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts[keyOf(o)]++
	return nil
}

// Summary returns counts for days on or after since, newest day first.
func (t *Tally) Summary(_ context.Context, since time.Time) ([]triage.OutcomeCount, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	floor := since.UTC().Truncate(24 * time.Hour)
	out := make([]triage.OutcomeCount, 0, len(t.counts))
	for k, n := range t.counts {
		if k.day.Before(floor) {
			continue
		}
		out = append(out, triage.OutcomeCount{
			Outcome: triage.Outcome{
				Day:      k.day,
				Urgency:  k.urgency,
				Rule:     k.rule,
				Severity: k.severity,
				Duration: k.duration,
			},
			Count: n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Day.Equal(b.Day) {
			return a.Day.After(b.Day)
		}
		if a.Urgency != b.Urgency {
			return a.Urgency < b.Urgency
		}
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		if a.Severity != b.Severity {
			return a.Severity < b.Severity
		}
		return a.Duration < b.Duration
	})
	return out, nil
}

func keyOf(o triage.Outcome) tallyKey {
	return tallyKey{
		day:      o.Day.UTC().Truncate(24 * time.Hour),
		urgency:  o.Urgency,
		rule:     o.Rule,
		severity: o.Severity,
		duration: o.Duration,
	}
}
