// Package models defines the core domain entities: fixtures, per-fixture
// monitoring state, and emitted signals.
package models

import (
	"errors"
	"strconv"
	"strings"
)

// Side identifies one of the two teams in a fixture.
type Side int

const (
	Home Side = iota
	Away
)

func (s Side) String() string {
	if s == Home {
		return "HOME"
	}
	return "AWAY"
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Home {
		return Away
	}
	return Home
}

// Live fixture status codes as reported by the feed.
const (
	StatusFirstHalf  = "1H"
	StatusHalftime   = "HT"
	StatusSecondHalf = "2H"
	StatusExtraTime  = "ET"
	StatusPenalties  = "P"
	StatusLive       = "LIVE"
)

var liveStatuses = map[string]bool{
	StatusFirstHalf:  true,
	StatusHalftime:   true,
	StatusSecondHalf: true,
	StatusExtraTime:  true,
	StatusPenalties:  true,
	StatusLive:       true,
}

var finishedStatuses = map[string]bool{
	"FT":  true,
	"AET": true,
	"PEN": true,
}

var abandonedStatuses = map[string]bool{
	"CANC": true,
	"PST":  true,
	"ABD":  true,
	"AWD":  true,
	"WO":   true,
}

// IsLiveStatus reports whether the code means the fixture is in play.
func IsLiveStatus(code string) bool { return liveStatuses[code] }

// IsFinishedStatus reports whether the fixture completed normally.
func IsFinishedStatus(code string) bool { return finishedStatuses[code] }

// IsTerminalStatus reports whether the fixture will never resume:
// finished, cancelled, postponed, abandoned, awarded, or walked over.
func IsTerminalStatus(code string) bool {
	return finishedStatuses[code] || abandonedStatuses[code]
}

// TeamStats holds one side's cumulative statistic totals. Values are either
// the raw feed cumulative totals, or half/window-relative figures after
// reduction by the baseline tracker.
type TeamStats struct {
	ShotsOnTarget int
	TotalShots    int
	Corners       int
	Possession    int // percent, 0-100
	RedCards      int
}

// Sub returns s minus b per field, floored at zero. Feed totals are
// monotonic but noisy near the halftime cutoff.
func (s TeamStats) Sub(b TeamStats) TeamStats {
	return TeamStats{
		ShotsOnTarget: maxInt(0, s.ShotsOnTarget-b.ShotsOnTarget),
		TotalShots:    maxInt(0, s.TotalShots-b.TotalShots),
		Corners:       maxInt(0, s.Corners-b.Corners),
		Possession:    s.Possession, // possession is a share, not a counter
		RedCards:      maxInt(0, s.RedCards-b.RedCards),
	}
}

// Fixture is one live-feed record for a match.
type Fixture struct {
	ID        int
	Status    string
	Minute    int
	HasMinute bool
	HomeTeam  string
	AwayTeam  string
	GoalsHome int
	GoalsAway int
}

// Goals returns the goal count for the given side.
func (f Fixture) Goals(s Side) int {
	if s == Home {
		return f.GoalsHome
	}
	return f.GoalsAway
}

// Team returns the team name for the given side.
func (f Fixture) Team(s Side) string {
	if s == Home {
		return f.HomeTeam
	}
	return f.AwayTeam
}

// Validate checks fixture field constraints.
func (f Fixture) Validate() error {
	if f.ID <= 0 {
		return errors.New("fixture ID must be positive")
	}
	if f.Status == "" {
		return errors.New("fixture status must not be empty")
	}
	if f.HomeTeam == "" || f.AwayTeam == "" {
		return errors.New("both team names must be set")
	}
	if f.GoalsHome < 0 || f.GoalsAway < 0 {
		return errors.New("goal counts must not be negative")
	}
	if f.HasMinute && f.Minute < 0 {
		return errors.New("elapsed minute must not be negative")
	}
	return nil
}

// CoerceStatValue converts a raw feed statistic value to an integer.
// The feed is best-effort telemetry: null becomes 0, percentage strings
// like "62%" drop the suffix, floats truncate, anything unparseable is 0.
func CoerceStatValue(v any) int {
	switch t := v.(type) {
	case nil:
		return 0
	case int:
		return t
	case float64:
		return int(t)
	case string:
		s := strings.TrimSuffix(strings.TrimSpace(t), "%")
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f)
		}
		return 0
	default:
		return 0
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
