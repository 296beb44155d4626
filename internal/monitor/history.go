package monitor

import (
	"time"

	"github.com/zuenet070/livebets/internal/models"
)

// RecordSnapshot appends the per-side totals for a match minute to the
// fixture's rolling history. A sample for an already-recorded minute
// replaces the previous one; a minute lower than the newest sample is
// dropped to keep the series non-decreasing. History older than
// retainMinutes behind the new sample is pruned.
func RecordSnapshot(st *models.FixtureState, minute int, home, away models.TeamStats, retainMinutes int, now time.Time) {
	snap := models.StatSnapshot{Minute: minute, Home: home, Away: away, TakenAt: now}

	if n := len(st.History); n > 0 {
		last := st.History[n-1].Minute
		if minute < last {
			return
		}
		if minute == last {
			st.History[n-1] = snap
		} else {
			st.History = append(st.History, snap)
		}
	} else {
		st.History = append(st.History, snap)
	}

	cutoff := minute - retainMinutes
	drop := 0
	for drop < len(st.History) && st.History[drop].Minute < cutoff {
		drop++
	}
	if drop > 0 {
		st.History = append(st.History[:0], st.History[drop:]...)
	}
}

// DeltaOverWindow returns the (shots, shots-on-target) delta for one side
// over the trailing window: the newest snapshot minus the latest snapshot
// at or before currentMinute-windowMinutes. Returns (0, 0) when fewer than
// two snapshots exist or no snapshot is old enough. Deltas are clamped at
// zero to absorb late-arriving feed corrections.
func DeltaOverWindow(st *models.FixtureState, currentMinute, windowMinutes int, side models.Side) (shots, sot int) {
	if len(st.History) < 2 {
		return 0, 0
	}

	threshold := currentMinute - windowMinutes
	baseIdx := -1
	for i := len(st.History) - 1; i >= 0; i-- {
		if st.History[i].Minute <= threshold {
			baseIdx = i
			break
		}
	}
	if baseIdx < 0 {
		return 0, 0
	}

	cur := st.History[len(st.History)-1].Stats(side)
	base := st.History[baseIdx].Stats(side)

	shots = clampNonNegative(cur.TotalShots - base.TotalShots)
	sot = clampNonNegative(cur.ShotsOnTarget - base.ShotsOnTarget)
	return shots, sot
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
