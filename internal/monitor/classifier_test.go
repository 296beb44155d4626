package monitor

import (
	"testing"

	"github.com/zuenet070/livebets/internal/models"
)

// strongCandidate is the minute-40 0-0 reference situation: home presses
// with sot=4 shots=9 corners=5 possession=62 against a toothless away side.
func strongCandidate() Candidate {
	w := defaultWeights()
	home := models.TeamStats{ShotsOnTarget: 4, TotalShots: 9, Corners: 5, Possession: 62}
	away := models.TeamStats{ShotsOnTarget: 0, TotalShots: 3, Corners: 1, Possession: 38}
	dom := w.Dominant(home, away)
	return Candidate{
		Dom:          dom,
		Self:         home,
		Opp:          away,
		Confidence:   85,
		Pace:         Pace{Shots: 4, SOT: 2},
		Minute:       40,
		GoalsFor:     0,
		GoalsAgainst: 0,
	}
}

func TestClassifyStrongCandidate(t *testing.T) {
	cc := DefaultConfig().Tiers

	c := strongCandidate()
	if c.Dom.Side != models.Home {
		t.Fatalf("reference candidate must be HOME dominant, got %v", c.Dom.Side)
	}

	tier := cc.Classify(c)
	if tier != models.TierExtreme && tier != models.TierPremium {
		t.Errorf("expected PREMIUM or EXTREME, got %v", tier)
	}
}

func TestClassifyLeadingSideNeverClassifies(t *testing.T) {
	cc := DefaultConfig().Tiers

	for lead := 1; lead <= 5; lead++ {
		for behind := 0; behind < lead; behind++ {
			c := strongCandidate()
			c.GoalsFor = lead
			c.GoalsAgainst = behind
			if got := cc.Classify(c); got != models.TierNone {
				t.Errorf("leading %d-%d must never classify, got %v", lead, behind, got)
			}
		}
	}
}

func TestClassifyDeficitCap(t *testing.T) {
	cc := DefaultConfig().Tiers

	c := strongCandidate()
	c.GoalsFor = 0
	c.GoalsAgainst = cc.MaxDeficit
	if cc.Classify(c) == models.TierNone {
		t.Errorf("deficit of %d should still classify", cc.MaxDeficit)
	}

	c.GoalsAgainst = cc.MaxDeficit + 1
	if got := cc.Classify(c); got != models.TierNone {
		t.Errorf("deficit beyond the cap must not classify, got %v", got)
	}
}

func TestClassifyOpponentThreatCeiling(t *testing.T) {
	cc := DefaultConfig().Tiers

	// A single threat axis over the ceiling disqualifies the tier even if
	// the other axis is quiet.
	c := strongCandidate()
	c.Opp.ShotsOnTarget = cc.Normal.OppSOTMax + 1
	c.Opp.TotalShots = 0
	if got := cc.Classify(c); got != models.TierNone {
		t.Errorf("opponent SOT over every ceiling must not classify, got %v", got)
	}

	c = strongCandidate()
	c.Opp.ShotsOnTarget = 0
	c.Opp.TotalShots = cc.Normal.OppShotsMax + 1
	if got := cc.Classify(c); got != models.TierNone {
		t.Errorf("opponent shots over every ceiling must not classify, got %v", got)
	}
}

func TestClassifyTierOrderFirstMatchWins(t *testing.T) {
	cc := DefaultConfig().Tiers

	// Kill the EXTREME pace floor: the candidate falls through to PREMIUM.
	c := strongCandidate()
	c.Pace = Pace{Shots: 2, SOT: 0}
	if got := cc.Classify(c); got != models.TierPremium {
		t.Errorf("expected fall-through to PREMIUM, got %v", got)
	}

	// Kill PREMIUM confidence too: falls through to NORMAL, but at minute
	// 40 the NORMAL first-half cap (35) bites, so no signal at all.
	c.Confidence = 10
	if got := cc.Classify(c); got != models.TierNone {
		t.Errorf("expected NONE past the NORMAL first-half cap, got %v", got)
	}

	// Earlier in the half NORMAL is reachable.
	c.Minute = 33
	if got := cc.Classify(c); got != models.TierNormal {
		t.Errorf("expected NORMAL at minute 33, got %v", got)
	}
}

func TestClassifyPremiumRequiresSOTDifferential(t *testing.T) {
	cc := DefaultConfig().Tiers

	c := strongCandidate()
	c.Pace = Pace{Shots: 2, SOT: 0} // below EXTREME pace floor
	c.Self.ShotsOnTarget = c.Opp.ShotsOnTarget + cc.Premium.MinSOTDiff - 1
	c.Dom = defaultWeights().Dominant(c.Self, c.Opp)
	if got := cc.Classify(c); got == models.TierPremium || got == models.TierExtreme {
		t.Errorf("thin SOT differential must not reach PREMIUM, got %v", got)
	}
}

func TestClassifyFirstHalfCapIgnoredInSecondHalf(t *testing.T) {
	cc := DefaultConfig().Tiers

	c := strongCandidate()
	c.Minute = 60
	if got := cc.Classify(c); got == models.TierNone {
		t.Error("first-half caps must not apply in the second half")
	}
}
