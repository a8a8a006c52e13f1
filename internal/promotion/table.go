// Package promotion awards points and moves members up the rank ladder.
package promotion

import "github.com/tf416/rosterbot/internal/roster"

// Tier describes how a member leaves a rank.
type Tier struct {
	Next             roster.Rank
	Threshold        int
	NeedsApplication bool
}

// Table maps a rank to the tier that leads out of it.
type Table map[roster.Rank]Tier

// Eligibility is the outcome of checking a points total against the table.
type Eligibility struct {
	Eligible         bool
	From             roster.Rank
	To               roster.Rank
	Threshold        int
	NeedsApplication bool
}

// DefaultTable returns the stock ladder: E1→E2 at 10, E2→E3 at 30,
// E3→E4 at 60, and E4→E5 at 100 through an application.
func DefaultTable() Table {
	return Table{
		roster.E1: {Next: roster.E2, Threshold: 10},
		roster.E2: {Next: roster.E3, Threshold: 30},
		roster.E3: {Next: roster.E4, Threshold: 60},
		roster.E4: {Next: roster.E5, Threshold: 100, NeedsApplication: true},
	}
}

// WithThresholds returns a copy of the table with thresholds overridden by
// rank name ("E1" → points needed to leave E1). Unknown ranks are ignored.
func (t Table) WithThresholds(thresholds map[string]int) Table {
	out := make(Table, len(t))
	for rank, tier := range t {
		out[rank] = tier
	}

	for name, threshold := range thresholds {
		rank := roster.ParseRank(name)
		if tier, ok := out[rank]; ok && threshold > 0 {
			tier.Threshold = threshold
			out[rank] = tier
		}
	}

	return out
}

// Check reports whether a member holding rank with total points may move up.
func (t Table) Check(total int, rank roster.Rank) Eligibility {
	tier, ok := t[rank]
	if !ok {
		return Eligibility{From: rank}
	}

	return Eligibility{
		Eligible:         total >= tier.Threshold,
		From:             rank,
		To:               tier.Next,
		Threshold:        tier.Threshold,
		NeedsApplication: tier.NeedsApplication,
	}
}
