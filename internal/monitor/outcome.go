package monitor

import (
	"time"

	"github.com/zuenet070/livebets/internal/models"
)

// resolvePending evaluates a PENDING signal against the latest fixture
// record and returns the terminal resolution, or nil while still pending.
//
// Rules, in order:
//  1. Either side's goal count increased since emission: HIT when the
//     predicted side scored, MISS otherwise.
//  2. The fixture reached a terminal status with no goal since emission:
//     MISS. Cancelled/abandoned fixtures count as terminal here too; they
//     are cleaned up as unresolved misses.
//
// A resolved signal never transitions again: the caller removes the
// pending record, so a second call for the same fixture is a no-op.
func resolvePending(st *models.FixtureState, fx models.Fixture, now time.Time) *models.Resolution {
	p := st.Pending
	if p == nil {
		return nil
	}

	goalScored := fx.GoalsHome > p.GoalsHome || fx.GoalsAway > p.GoalsAway
	finished := models.IsTerminalStatus(fx.Status)
	if !goalScored && !finished {
		return nil
	}

	outcome := models.OutcomeMiss
	if goalScored && fx.Goals(p.Side) > goalsAtEmission(p, p.Side) {
		outcome = models.OutcomeHit
	}

	minute := p.Minute
	if fx.HasMinute {
		minute = fx.Minute
	}

	res := &models.Resolution{
		FixtureID:       p.FixtureID,
		Tier:            p.Tier,
		Side:            p.Side,
		Team:            p.PredictedTeam(),
		Outcome:         outcome,
		Minute:          minute,
		GoalsHomeBefore: p.GoalsHome,
		GoalsAwayBefore: p.GoalsAway,
		GoalsHomeAfter:  fx.GoalsHome,
		GoalsAwayAfter:  fx.GoalsAway,
		ResolvedAt:      now,
	}
	st.Pending = nil
	return res
}

func goalsAtEmission(p *models.PendingSignal, side models.Side) int {
	if side == models.Home {
		return p.GoalsHome
	}
	return p.GoalsAway
}
