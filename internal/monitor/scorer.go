package monitor

import (
	"github.com/zuenet070/livebets/internal/models"
)

// Weights parameterize the dominance score. They are tuning data, loaded
// from configuration and injected into the monitor.
type Weights struct {
	SOT        float64 `mapstructure:"sot"`
	Shots      float64 `mapstructure:"shots"`
	Corners    float64 `mapstructure:"corners"`
	Possession float64 `mapstructure:"possession"`
	RedBonus   float64 `mapstructure:"red_bonus"`
}

// Score computes one side's dominance score from half/window-relative
// statistics. Only a red-card advantage contributes the bonus; being the
// side with more red cards is not penalized beyond the opponent's bonus.
func (w Weights) Score(self, opp models.TeamStats) float64 {
	s := w.SOT*float64(self.ShotsOnTarget-opp.ShotsOnTarget) +
		w.Shots*float64(self.TotalShots-opp.TotalShots) +
		w.Corners*float64(self.Corners-opp.Corners) +
		w.Possession*float64(self.Possession-50)
	if adv := opp.RedCards - self.RedCards; adv > 0 {
		s += w.RedBonus * float64(adv)
	}
	return s
}

// Dominance describes which side is on top and by how much.
type Dominance struct {
	Side     models.Side
	Score    float64 // dominant side's score
	OppScore float64
	Gap      float64 // always non-negative
}

// Dominant scores both sides and picks the stronger one. Exact ties go to
// AWAY: the comparison is strictly home > away, matching the long-observed
// behavior of this model rather than any principled choice.
func (w Weights) Dominant(home, away models.TeamStats) Dominance {
	sh := w.Score(home, away)
	sa := w.Score(away, home)
	if sh > sa {
		return Dominance{Side: models.Home, Score: sh, OppScore: sa, Gap: sh - sa}
	}
	return Dominance{Side: models.Away, Score: sa, OppScore: sh, Gap: sa - sh}
}

// ConfidenceTerm is one weighted, individually capped contribution to the
// confidence score. Capping per term keeps any single extreme input from
// saturating confidence on its own.
type ConfidenceTerm struct {
	Weight float64 `mapstructure:"weight"`
	Cap    float64 `mapstructure:"cap"`
}

func (t ConfidenceTerm) apply(v float64) float64 {
	x := v * t.Weight
	if x < 0 {
		return 0
	}
	if x > t.Cap {
		return t.Cap
	}
	return x
}

// ConfidenceWeights parameterize the confidence score's five terms.
type ConfidenceWeights struct {
	Margin   ConfidenceTerm `mapstructure:"margin"`
	Gap      ConfidenceTerm `mapstructure:"gap"`
	SOTDiff  ConfidenceTerm `mapstructure:"sot_diff"`
	RedCards ConfidenceTerm `mapstructure:"red_cards"`
	Pace     ConfidenceTerm `mapstructure:"pace"`
}

// Confidence combines score margin over the NORMAL floor, gap, SOT
// differential, red-card advantage, and recent pace magnitude into a
// bounded [0, 100] score. Each term is capped before summing.
func (cw ConfidenceWeights) Confidence(dom Dominance, normalScoreFloor float64, sotDiff, redAdvantage int, pace Pace) float64 {
	c := cw.Margin.apply(dom.Score - normalScoreFloor)
	c += cw.Gap.apply(dom.Gap)
	c += cw.SOTDiff.apply(float64(sotDiff))
	c += cw.RedCards.apply(float64(redAdvantage))
	c += cw.Pace.apply(float64(pace.Shots + pace.SOT))
	if c > 100 {
		return 100
	}
	return c
}
