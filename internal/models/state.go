package models

import (
	"time"
)

// StatSnapshot is one time-series sample for a fixture: the per-side
// cumulative totals observed at a match minute. Immutable once recorded.
type StatSnapshot struct {
	Minute  int
	Home    TeamStats
	Away    TeamStats
	TakenAt time.Time
}

// Stats returns the snapshot totals for the given side.
func (s StatSnapshot) Stats(side Side) TeamStats {
	if side == Home {
		return s.Home
	}
	return s.Away
}

// ScoreState tracks the last observed goal tuple and when it changed.
// It drives cooldown duration selection.
type ScoreState struct {
	GoalsHome int
	GoalsAway int
	ChangedAt time.Time
	GoalSeen  bool
}

// FixtureState is the per-fixture aggregate owned by the monitor's registry:
// rolling snapshot history, halftime baseline, score state, outstanding
// signal, and the set of tiers already alerted. Mutated only by the single
// poll loop.
type FixtureState struct {
	FixtureID int

	// History is ordered by insertion, minutes non-decreasing, pruned to a
	// trailing window of match minutes.
	History []StatSnapshot

	// Baseline holds the cumulative totals captured the first time the
	// fixture was seen at/after halftime. Nil while still in the first half.
	BaselineHome *TeamStats
	BaselineAway *TeamStats

	Score ScoreState

	Pending *PendingSignal

	// AlertedTiers records which tiers have already produced a signal.
	// With upgrades disabled any entry blocks further signals.
	AlertedTiers map[Tier]bool

	LastSeen      time.Time
	NextRecheckAt time.Time
}

// Alerted reports whether the fixture has produced at least one signal.
func (st *FixtureState) Alerted() bool {
	return len(st.AlertedTiers) > 0
}

// HighestAlertedTier returns the strongest tier already signalled, or
// TierNone if the fixture never alerted.
func (st *FixtureState) HighestAlertedTier() Tier {
	best := TierNone
	for t := range st.AlertedTiers {
		if t > best {
			best = t
		}
	}
	return best
}

// PendingSignal is one outstanding emitted alert awaiting resolution.
// The goal tuple is the score at emission time.
type PendingSignal struct {
	FixtureID int
	Side      Side
	Tier      Tier
	HomeTeam  string
	AwayTeam  string
	GoalsHome int
	GoalsAway int
	Minute    int
	EmittedAt time.Time
}

// PredictedTeam returns the name of the team the signal backs.
func (p PendingSignal) PredictedTeam() string {
	if p.Side == Home {
		return p.HomeTeam
	}
	return p.AwayTeam
}
