package monitor

import (
	"fmt"
	"time"

	"github.com/zuenet070/livebets/internal/models"
)

// PaceConfig holds the "dead game" filter thresholds. Floors are expressed
// as shot/SOT deltas over the trailing window.
type PaceConfig struct {
	WindowMinutes int `mapstructure:"window_minutes"`
	MinShots      int `mapstructure:"min_shots"`
	MinSOT        int `mapstructure:"min_sot"`

	// When set, the most recent trend window must be at least as active as
	// the one before it.
	RequireRisingTrend bool `mapstructure:"require_rising_trend"`
	TrendWindowMinutes int  `mapstructure:"trend_window_minutes"`

	// Late-game kill switch: past LateMinute a stricter floor applies.
	LateMinute   int `mapstructure:"late_minute"`
	LateMinShots int `mapstructure:"late_min_shots"`
	LateMinSOT   int `mapstructure:"late_min_sot"`

	// Scoreless guard: at 0-0 past ScorelessMinute an even stronger
	// short-window floor applies. Catches teams that dominate territory
	// for half an hour without genuine goal threat.
	ScorelessMinute   int `mapstructure:"scoreless_minute"`
	ScorelessMinShots int `mapstructure:"scoreless_min_shots"`
}

// Pace is the dominant side's recent offensive activity: deltas over the
// full window and over the shorter trend window.
type Pace struct {
	Shots       int
	SOT         int
	RecentShots int
	RecentSOT   int
}

// MeasurePace reads the fixture history for one side's window and
// trend-window deltas.
func MeasurePace(st *models.FixtureState, minute int, cfg PaceConfig, side models.Side) Pace {
	var p Pace
	p.Shots, p.SOT = DeltaOverWindow(st, minute, cfg.WindowMinutes, side)
	p.RecentShots, p.RecentSOT = DeltaOverWindow(st, minute, cfg.TrendWindowMinutes, side)
	return p
}

// Allow applies the pace gate. The returned reason names the failed rule
// for debug logging; it is empty when the candidate passes.
func (cfg PaceConfig) Allow(p Pace, minute, goalsHome, goalsAway int) (bool, string) {
	if p.Shots < cfg.MinShots && p.SOT < cfg.MinSOT {
		return false, fmt.Sprintf("pace floor unmet (%d shots, %d sot in %dm)", p.Shots, p.SOT, cfg.WindowMinutes)
	}

	if cfg.RequireRisingTrend {
		recent := p.RecentShots + p.RecentSOT
		previous := (p.Shots - p.RecentShots) + (p.SOT - p.RecentSOT)
		if recent < previous {
			return false, fmt.Sprintf("pace cooling (%d recent vs %d before)", recent, previous)
		}
	}

	if cfg.LateMinute > 0 && minute >= cfg.LateMinute {
		if p.Shots < cfg.LateMinShots && p.SOT < cfg.LateMinSOT {
			return false, fmt.Sprintf("late-game pace floor unmet at minute %d", minute)
		}
	}

	if cfg.ScorelessMinute > 0 && goalsHome == 0 && goalsAway == 0 && minute >= cfg.ScorelessMinute {
		if p.Shots < cfg.ScorelessMinShots {
			return false, fmt.Sprintf("scoreless at minute %d with %d shots in window", minute, p.Shots)
		}
	}

	return true, ""
}

// CooldownConfig holds the evaluation cooldown durations. PostGoal is
// materially longer than Normal: shot and corner stats spike mechanically
// right after a goal and would otherwise trigger spurious signals.
type CooldownConfig struct {
	Normal   time.Duration `mapstructure:"normal"`
	PostGoal time.Duration `mapstructure:"post_goal"`
}

// ObserveScore compares the observed goal tuple with the stored one and
// resets the change clock when they differ. Reports whether a goal event
// occurred.
func ObserveScore(st *models.FixtureState, goalsHome, goalsAway int, now time.Time) bool {
	sc := &st.Score
	if goalsHome == sc.GoalsHome && goalsAway == sc.GoalsAway {
		return false
	}
	sc.GoalsHome = goalsHome
	sc.GoalsAway = goalsAway
	sc.ChangedAt = now
	sc.GoalSeen = true
	return true
}

// Gated reports whether the fixture is still cooling down, and for how much
// longer. Before any goal the normal cooldown applies from first sighting;
// within the post-goal window the longer duration applies.
func (cfg CooldownConfig) Gated(st *models.FixtureState, now time.Time) (bool, time.Duration) {
	elapsed := now.Sub(st.Score.ChangedAt)
	cooldown := cfg.Normal
	if st.Score.GoalSeen && elapsed < cfg.PostGoal {
		cooldown = cfg.PostGoal
	}
	if elapsed < cooldown {
		return true, cooldown - elapsed
	}
	return false, 0
}
