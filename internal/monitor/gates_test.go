package monitor

import (
	"testing"
	"time"

	"github.com/zuenet070/livebets/internal/models"
)

func defaultPace() PaceConfig {
	return DefaultConfig().Pace
}

func TestPaceGateFloor(t *testing.T) {
	cfg := defaultPace()

	if ok, _ := cfg.Allow(Pace{Shots: 0, SOT: 0}, 50, 1, 0); ok {
		t.Error("dead game must be rejected")
	}
	if ok, reason := cfg.Allow(Pace{Shots: 3, SOT: 0}, 50, 1, 0); !ok {
		t.Errorf("shot floor alone should pass: %s", reason)
	}
	if ok, reason := cfg.Allow(Pace{Shots: 0, SOT: 1}, 50, 1, 0); !ok {
		t.Errorf("SOT floor alone should pass: %s", reason)
	}
}

func TestPaceGateLateGameKillSwitch(t *testing.T) {
	cfg := defaultPace()

	// Minute 85, 1-1, 10-minute delta of one shot and no SOT: rejected no
	// matter how dominant the side looks.
	if ok, _ := cfg.Allow(Pace{Shots: 1, SOT: 0}, 85, 1, 1); ok {
		t.Error("late-game low pace must be rejected")
	}

	if ok, reason := cfg.Allow(Pace{Shots: 4, SOT: 2}, 85, 1, 1); !ok {
		t.Errorf("late game with real pace should pass: %s", reason)
	}
}

func TestPaceGateScorelessGuard(t *testing.T) {
	cfg := defaultPace()

	// 0-0 past the scoreless checkpoint needs the stronger shot floor.
	if ok, _ := cfg.Allow(Pace{Shots: 2, SOT: 1}, 40, 0, 0); ok {
		t.Error("0-0 at minute 40 with 2 shots in window must be rejected")
	}
	if ok, reason := cfg.Allow(Pace{Shots: 3, SOT: 1}, 40, 0, 0); !ok {
		t.Errorf("0-0 with 3 shots in window should pass: %s", reason)
	}
	// Same weak pace is fine before the checkpoint.
	if ok, reason := cfg.Allow(Pace{Shots: 2, SOT: 1}, 25, 0, 0); !ok {
		t.Errorf("scoreless guard must not apply before its minute: %s", reason)
	}
	// And with a goal on the board the guard does not apply.
	if ok, reason := cfg.Allow(Pace{Shots: 2, SOT: 1}, 40, 1, 0); !ok {
		t.Errorf("scoreless guard must not apply at 1-0: %s", reason)
	}
}

func TestPaceGateCoolingTrend(t *testing.T) {
	cfg := defaultPace()
	cfg.RequireRisingTrend = true

	// 10-minute window: 5 shots + 2 SOT. Recent half has 1 shot, earlier
	// half had 4 shots and 2 SOT: cooling.
	cooling := Pace{Shots: 5, SOT: 2, RecentShots: 1, RecentSOT: 0}
	if ok, _ := cfg.Allow(cooling, 60, 0, 1); ok {
		t.Error("cooling trend must be rejected in strict configuration")
	}

	rising := Pace{Shots: 5, SOT: 2, RecentShots: 4, RecentSOT: 2}
	if ok, reason := cfg.Allow(rising, 60, 0, 1); !ok {
		t.Errorf("rising trend should pass: %s", reason)
	}

	// The lax configuration ignores the trend entirely.
	cfg.RequireRisingTrend = false
	if ok, reason := cfg.Allow(cooling, 60, 0, 1); !ok {
		t.Errorf("trend must be ignored when disabled: %s", reason)
	}
}

func TestCooldownBeforeAnyGoal(t *testing.T) {
	cd := CooldownConfig{Normal: 90 * time.Second, PostGoal: 7 * time.Minute}
	start := time.Now()

	st := newState()
	st.Score = models.ScoreState{GoalsHome: 0, GoalsAway: 0, ChangedAt: start}

	if gated, _ := cd.Gated(st, start.Add(30*time.Second)); !gated {
		t.Error("fixture must be gated within the normal cooldown after first sighting")
	}
	if gated, _ := cd.Gated(st, start.Add(2*time.Minute)); gated {
		t.Error("without a goal the gate must lift after the normal cooldown")
	}
}

func TestCooldownAfterGoal(t *testing.T) {
	cd := CooldownConfig{Normal: 90 * time.Second, PostGoal: 7 * time.Minute}
	start := time.Now()

	st := newState()
	st.Score = models.ScoreState{GoalsHome: 0, GoalsAway: 0, ChangedAt: start}

	goalAt := start.Add(10 * time.Minute)
	if !ObserveScore(st, 1, 0, goalAt) {
		t.Fatal("goal tuple change must be reported")
	}

	// Gated for the full post-goal cooldown, well past the normal one.
	if gated, _ := cd.Gated(st, goalAt.Add(5*time.Minute)); !gated {
		t.Error("fixture must still be gated 5m after a goal")
	}
	if gated, _ := cd.Gated(st, goalAt.Add(8*time.Minute)); gated {
		t.Error("gate must lift after the post-goal cooldown")
	}
}

func TestObserveScoreOnlyOnChange(t *testing.T) {
	st := newState()
	t0 := time.Now()
	st.Score = models.ScoreState{GoalsHome: 1, GoalsAway: 0, ChangedAt: t0}

	if ObserveScore(st, 1, 0, t0.Add(time.Minute)) {
		t.Error("identical tuple must not register as a goal")
	}
	if st.Score.ChangedAt != t0 {
		t.Error("change clock must not move without a goal")
	}

	if !ObserveScore(st, 1, 1, t0.Add(2*time.Minute)) {
		t.Error("tuple change must register as a goal")
	}
	if !st.Score.GoalSeen || st.Score.GoalsAway != 1 {
		t.Errorf("score state not updated: %+v", st.Score)
	}
}
