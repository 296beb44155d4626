package monitor

import (
	"github.com/zuenet070/livebets/internal/models"
)

// TierThresholds is one tier's predicate set. Zero-valued optional fields
// (MinSOTDiff, MinConfidence, pace floors, FirstHalfMaxMinute) disable the
// corresponding check.
type TierThresholds struct {
	ScoreFloor  float64 `mapstructure:"score_floor"`
	GapFloor    float64 `mapstructure:"gap_floor"`
	OppSOTMax   int     `mapstructure:"opp_sot_max"`
	OppShotsMax int     `mapstructure:"opp_shots_max"`

	MinSOTDiff    int     `mapstructure:"min_sot_diff"`
	MinConfidence float64 `mapstructure:"min_confidence"`

	MinPaceShots int `mapstructure:"min_pace_shots"`
	MinPaceSOT   int `mapstructure:"min_pace_sot"`

	// First-half signals past this minute are suppressed for the tier; the
	// stretch right before added time is a known false-positive cluster.
	FirstHalfMaxMinute int `mapstructure:"first_half_max_minute"`
}

// ClassifierConfig holds the three independent tier predicate sets plus the
// scoreboard invariants that block every tier.
type ClassifierConfig struct {
	Normal  TierThresholds `mapstructure:"normal"`
	Premium TierThresholds `mapstructure:"premium"`
	Extreme TierThresholds `mapstructure:"extreme"`

	// MaxDeficit is the largest goal deficit a dominant side may have and
	// still classify. A team down by more is not "about to equalize" under
	// this model's assumptions.
	MaxDeficit int `mapstructure:"max_deficit"`
}

// Candidate is a scored, gated fixture/side awaiting classification. Self
// and Opp carry half/window-relative statistics for the dominant side and
// its opponent.
type Candidate struct {
	Dom        Dominance
	Self       models.TeamStats
	Opp        models.TeamStats
	Confidence float64
	Pace       Pace
	Minute     int

	GoalsFor     int // dominant side's goals
	GoalsAgainst int
}

// Classify maps a candidate to a tier, trying EXTREME, then PREMIUM, then
// NORMAL; first match wins, no match means no signal. The scoreboard
// invariants run first: a dominant side that is already leading never
// classifies, nor one trailing by more than MaxDeficit.
func (cc ClassifierConfig) Classify(c Candidate) models.Tier {
	if c.GoalsFor > c.GoalsAgainst {
		return models.TierNone
	}
	if c.GoalsAgainst-c.GoalsFor > cc.MaxDeficit {
		return models.TierNone
	}

	if cc.Extreme.matches(c) {
		return models.TierExtreme
	}
	if cc.Premium.matches(c) {
		return models.TierPremium
	}
	if cc.Normal.matches(c) {
		return models.TierNormal
	}
	return models.TierNone
}

func (th TierThresholds) matches(c Candidate) bool {
	if c.Dom.Score < th.ScoreFloor || c.Dom.Gap < th.GapFloor {
		return false
	}
	// Opponent must be weak on both axes; a threat on either disqualifies.
	if c.Opp.ShotsOnTarget > th.OppSOTMax || c.Opp.TotalShots > th.OppShotsMax {
		return false
	}
	if th.MinSOTDiff > 0 && c.Self.ShotsOnTarget-c.Opp.ShotsOnTarget < th.MinSOTDiff {
		return false
	}
	if th.MinConfidence > 0 && c.Confidence < th.MinConfidence {
		return false
	}
	if th.MinPaceShots > 0 || th.MinPaceSOT > 0 {
		if c.Pace.Shots < th.MinPaceShots && c.Pace.SOT < th.MinPaceSOT {
			return false
		}
	}
	if th.FirstHalfMaxMinute > 0 && c.Minute <= halftimeMinute && c.Minute > th.FirstHalfMaxMinute {
		return false
	}
	return true
}
