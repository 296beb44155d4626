package monitor

import (
	"testing"

	"github.com/zuenet070/livebets/internal/models"
)

func TestSecondHalfOnlyBeforeBaseline(t *testing.T) {
	st := newState()
	totals := models.TeamStats{ShotsOnTarget: 3, TotalShots: 8, Corners: 4, Possession: 57}

	got := SecondHalfOnly(st, models.Home, totals)
	if got != totals {
		t.Errorf("raw totals must pass through before a baseline exists, got %+v", got)
	}
}

func TestMaybeCaptureBaselineAtHalftime(t *testing.T) {
	st := newState()
	home := models.TeamStats{ShotsOnTarget: 3, TotalShots: 8, Corners: 4, Possession: 57}
	away := models.TeamStats{ShotsOnTarget: 1, TotalShots: 4, Corners: 2, Possession: 43}

	MaybeCaptureBaseline(st, models.StatusFirstHalf, 30, home, away)
	if st.BaselineHome != nil {
		t.Fatal("baseline must not be captured in the first half")
	}

	MaybeCaptureBaseline(st, models.StatusHalftime, 45, home, away)
	if st.BaselineHome == nil || st.BaselineAway == nil {
		t.Fatal("baseline must be captured at halftime")
	}

	// Second capture attempt with different totals is a no-op.
	bigger := models.TeamStats{ShotsOnTarget: 9, TotalShots: 20}
	MaybeCaptureBaseline(st, models.StatusSecondHalf, 60, bigger, bigger)
	if st.BaselineHome.ShotsOnTarget != 3 {
		t.Error("baseline must be captured exactly once")
	}
}

func TestMaybeCaptureBaselineByMinute(t *testing.T) {
	st := newState()
	home := models.TeamStats{TotalShots: 10}

	// Some feeds skip the HT status but report minute 45+.
	MaybeCaptureBaseline(st, models.StatusFirstHalf, 46, home, models.TeamStats{})
	if st.BaselineHome == nil {
		t.Fatal("minute >= 45 must capture the baseline without an HT status")
	}
}

func TestSecondHalfOnlyAfterBaseline(t *testing.T) {
	st := newState()
	halfHome := models.TeamStats{ShotsOnTarget: 3, TotalShots: 8, Corners: 4, Possession: 57}
	halfAway := models.TeamStats{ShotsOnTarget: 1, TotalShots: 4, Corners: 2, Possession: 43}
	MaybeCaptureBaseline(st, models.StatusHalftime, 45, halfHome, halfAway)

	cur := models.TeamStats{ShotsOnTarget: 5, TotalShots: 13, Corners: 6, Possession: 61}
	got := SecondHalfOnly(st, models.Home, cur)
	if got.ShotsOnTarget != 2 || got.TotalShots != 5 || got.Corners != 2 {
		t.Errorf("unexpected second-half figures: %+v", got)
	}
	if got.Possession != 61 {
		t.Errorf("possession must stay the current share, got %d", got.Possession)
	}

	// Noisy totals below the baseline floor at zero.
	noisy := SecondHalfOnly(st, models.Away, models.TeamStats{ShotsOnTarget: 0, TotalShots: 3})
	if noisy.ShotsOnTarget != 0 || noisy.TotalShots != 0 {
		t.Errorf("second-half figures must floor at zero, got %+v", noisy)
	}
}
