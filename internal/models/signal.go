package models

import (
	"time"
)

// Tier is the quality classification of an emitted signal. Ordering matters:
// higher value means stricter thresholds were cleared.
type Tier int

const (
	TierNone Tier = iota
	TierNormal
	TierPremium
	TierExtreme
)

func (t Tier) String() string {
	switch t {
	case TierNormal:
		return "NORMAL"
	case TierPremium:
		return "PREMIUM"
	case TierExtreme:
		return "EXTREME"
	default:
		return "NONE"
	}
}

// Outcome is the terminal label of a resolved signal.
type Outcome string

const (
	OutcomeHit  Outcome = "HIT"
	OutcomeMiss Outcome = "MISS"
)

// Signal is one classified alert, carrying everything a collaborator needs
// to render a message and append an analytics row.
type Signal struct {
	FixtureID int
	Tier      Tier
	Side      Side
	Team      string
	Opponent  string
	Minute    int
	GoalsHome int
	GoalsAway int

	DominantScore float64
	Gap           float64
	Confidence    float64

	// Half/window-relative figures behind the classification, dominant
	// side first.
	SOTHalf      int
	OppSOTHalf   int
	ShotsHalf    int
	OppShotsHalf int

	// Odds is the best-effort match-winner price for the predicted side,
	// zero when the lookup failed or returned nothing.
	Odds float64

	DetectedAt time.Time
}

// Resolution is the terminal record for a signal: HIT or MISS plus the
// before/after score and the minute it resolved.
type Resolution struct {
	FixtureID int
	Tier      Tier
	Side      Side
	Team      string
	Outcome   Outcome
	Minute    int

	GoalsHomeBefore int
	GoalsAwayBefore int
	GoalsHomeAfter  int
	GoalsAwayAfter  int

	ResolvedAt time.Time
}
