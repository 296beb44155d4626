package monitor

import (
	"github.com/zuenet070/livebets/internal/models"
)

// halftimeMinute is the cutoff past which a fixture without an explicit HT
// status is still treated as having reached the break.
const halftimeMinute = 45

// MaybeCaptureBaseline records the cumulative totals the first time the
// fixture is observed at halftime or at/after minute 45. Later calls are
// no-ops: the baseline is captured exactly once and never mutated.
func MaybeCaptureBaseline(st *models.FixtureState, status string, minute int, home, away models.TeamStats) {
	if st.BaselineHome != nil {
		return
	}
	if status != models.StatusHalftime && minute < halftimeMinute {
		return
	}
	h, a := home, away
	st.BaselineHome = &h
	st.BaselineAway = &a
}

// SecondHalfOnly converts cumulative totals to second-half-only figures by
// subtracting the halftime baseline, floored at zero per field. Before a
// baseline exists the raw totals are returned unchanged.
func SecondHalfOnly(st *models.FixtureState, side models.Side, totals models.TeamStats) models.TeamStats {
	base := st.BaselineHome
	if side == models.Away {
		base = st.BaselineAway
	}
	if base == nil {
		return totals
	}
	return totals.Sub(*base)
}
