// Package monitor holds the signal engine: per-fixture rolling statistics,
// dominance scoring, gating, tier classification, and outcome tracking.
package monitor

import (
	"context"
	"time"

	"github.com/zuenet070/livebets/internal/logger"
	"github.com/zuenet070/livebets/internal/models"
)

// FeedProvider is the slice of the data-feed client the monitor needs:
// on-demand statistics, direct fixture lookup for pending re-checks, and
// best-effort match-winner odds. Implementations own their retry/timeout
// contract; the monitor never retries.
type FeedProvider interface {
	Statistics(ctx context.Context, fixtureID int) (home, away models.TeamStats, err error)
	FixtureByID(ctx context.Context, fixtureID int) (models.Fixture, error)
	WinOdds(ctx context.Context, fixtureID int, side models.Side) (float64, error)
}

// Config holds every tunable of the engine. Thresholds are data, injected
// from configuration, never hard-coded in the decision logic.
type Config struct {
	Weights    Weights           `mapstructure:"weights"`
	Confidence ConfidenceWeights `mapstructure:"confidence"`
	Pace       PaceConfig        `mapstructure:"pace"`
	Cooldown   CooldownConfig    `mapstructure:"cooldown"`
	Tiers      ClassifierConfig  `mapstructure:"tiers"`

	HistoryRetainMinutes  int `mapstructure:"history_retain_minutes"`
	MaxSignalsPerTick     int `mapstructure:"max_signals_per_tick"`
	MaxStatLookupsPerTick int `mapstructure:"max_stat_lookups_per_tick"`

	// AllowTierUpgrades relaxes the one-signal-per-fixture policy to at
	// most one signal per tier, strictly upward. A still-pending signal is
	// replaced when a higher tier emits.
	AllowTierUpgrades bool `mapstructure:"allow_tier_upgrades"`

	// VanishAfter is how long a fixture with a pending signal may be
	// absent from the live feed before a direct re-check; RecheckInterval
	// spaces those re-checks.
	VanishAfter     time.Duration `mapstructure:"vanish_after"`
	RecheckInterval time.Duration `mapstructure:"recheck_interval"`
}

// DefaultConfig returns the tuned production thresholds.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			SOT:        1.5,
			Shots:      1.0,
			Corners:    0.8,
			Possession: 0.1,
			RedBonus:   2.0,
		},
		Confidence: ConfidenceWeights{
			Margin:   ConfidenceTerm{Weight: 2.0, Cap: 25},
			Gap:      ConfidenceTerm{Weight: 1.0, Cap: 25},
			SOTDiff:  ConfidenceTerm{Weight: 5.0, Cap: 20},
			RedCards: ConfidenceTerm{Weight: 10.0, Cap: 10},
			Pace:     ConfidenceTerm{Weight: 4.0, Cap: 20},
		},
		Pace: PaceConfig{
			WindowMinutes:      10,
			MinShots:           2,
			MinSOT:             1,
			RequireRisingTrend: false,
			TrendWindowMinutes: 5,
			LateMinute:         75,
			LateMinShots:       3,
			LateMinSOT:         1,
			ScorelessMinute:    30,
			ScorelessMinShots:  3,
		},
		Cooldown: CooldownConfig{
			Normal:   90 * time.Second,
			PostGoal: 7 * time.Minute,
		},
		Tiers: ClassifierConfig{
			Normal: TierThresholds{
				ScoreFloor:         6,
				GapFloor:           4,
				OppSOTMax:          3,
				OppShotsMax:        8,
				FirstHalfMaxMinute: 35,
			},
			Premium: TierThresholds{
				ScoreFloor:         9,
				GapFloor:           6,
				OppSOTMax:          2,
				OppShotsMax:        6,
				MinSOTDiff:         3,
				MinConfidence:      60,
				FirstHalfMaxMinute: 40,
			},
			Extreme: TierThresholds{
				ScoreFloor:         12,
				GapFloor:           8,
				OppSOTMax:          1,
				OppShotsMax:        4,
				MinSOTDiff:         3,
				MinConfidence:      70,
				MinPaceShots:       3,
				MinPaceSOT:         1,
				FirstHalfMaxMinute: 43,
			},
			MaxDeficit: 2,
		},
		HistoryRetainMinutes:  20,
		MaxSignalsPerTick:     1,
		MaxStatLookupsPerTick: 20,
		AllowTierUpgrades:     false,
		VanishAfter:           3 * time.Minute,
		RecheckInterval:       5 * time.Minute,
	}
}

// Monitor owns all per-fixture state and runs one evaluation pass per poll
// tick. It is single-writer: only the poll loop touches it, so no locking
// is needed.
type Monitor struct {
	feed     FeedProvider
	config   Config
	fixtures map[int]*models.FixtureState
	now      func() time.Time
}

// New creates a monitor over the given feed provider.
func New(feed FeedProvider, config Config) *Monitor {
	return &Monitor{
		feed:     feed,
		config:   config,
		fixtures: make(map[int]*models.FixtureState),
		now:      time.Now,
	}
}

// TrackedFixtures returns how many fixtures currently hold state.
func (m *Monitor) TrackedFixtures() int {
	return len(m.fixtures)
}

// PendingSignals returns how many emitted signals are still unresolved.
func (m *Monitor) PendingSignals() int {
	n := 0
	for _, st := range m.fixtures {
		if st.Pending != nil {
			n++
		}
	}
	return n
}

func (m *Monitor) getOrCreate(fx models.Fixture, now time.Time) *models.FixtureState {
	if st, ok := m.fixtures[fx.ID]; ok {
		return st
	}
	st := &models.FixtureState{
		FixtureID: fx.ID,
		Score: models.ScoreState{
			GoalsHome: fx.GoalsHome,
			GoalsAway: fx.GoalsAway,
			ChangedAt: now,
		},
		AlertedTiers: make(map[models.Tier]bool),
	}
	m.fixtures[fx.ID] = st
	return st
}

// remove drops every piece of state held for a fixture.
func (m *Monitor) remove(fixtureID int) {
	delete(m.fixtures, fixtureID)
}

// ProcessPoll runs one evaluation pass over the live fixtures. Each fixture
// is evaluated to completion before the next; a fault in one fixture
// degrades to "no signal this tick" for that fixture only. Returns the
// signals emitted and the pending signals resolved during the pass.
func (m *Monitor) ProcessPoll(ctx context.Context, live []models.Fixture) ([]models.Signal, []models.Resolution) {
	now := m.now()
	seen := make(map[int]bool, len(live))

	var signals []models.Signal
	var resolutions []models.Resolution
	statLookups := 0

	for _, fx := range live {
		if err := fx.Validate(); err != nil {
			logger.Debug("Skipping malformed fixture record: %v", err)
			continue
		}
		seen[fx.ID] = true

		st := m.getOrCreate(fx, now)
		st.LastSeen = now

		if ObserveScore(st, fx.GoalsHome, fx.GoalsAway, now) {
			logger.Debug("Fixture %d score changed to %d-%d", fx.ID, fx.GoalsHome, fx.GoalsAway)
		}

		if st.Pending != nil {
			if res := resolvePending(st, fx, now); res != nil {
				logger.Info("Fixture %d resolved %s (%s, %s)", fx.ID, res.Outcome, res.Tier, res.Team)
				resolutions = append(resolutions, *res)
			}
		}

		if models.IsTerminalStatus(fx.Status) {
			m.remove(fx.ID)
			continue
		}
		if !models.IsLiveStatus(fx.Status) {
			continue
		}
		if !fx.HasMinute {
			// Missing elapsed minute: skip evaluation this tick only.
			continue
		}
		if st.Pending != nil && !m.config.AllowTierUpgrades {
			continue
		}

		if sig := m.evaluate(ctx, fx, st, now, &statLookups, len(signals)); sig != nil {
			signals = append(signals, *sig)
		}
	}

	resolutions = append(resolutions, m.recheckVanished(ctx, seen, now)...)

	logger.Debug("Pass complete: %d live, %d tracked, %d stat lookups, %d signals, %d resolutions",
		len(live), len(m.fixtures), statLookups, len(signals), len(resolutions))
	return signals, resolutions
}

// evaluate runs one fixture through the gates, scorer, and classifier.
// Returns the emitted signal, or nil.
func (m *Monitor) evaluate(ctx context.Context, fx models.Fixture, st *models.FixtureState, now time.Time, statLookups *int, emitted int) *models.Signal {
	cfg := &m.config

	if !cfg.AllowTierUpgrades && st.Alerted() {
		return nil
	}

	if *statLookups >= cfg.MaxStatLookupsPerTick {
		logger.Debug("Stat lookup cap reached, skipping fixture %d this tick", fx.ID)
		return nil
	}
	*statLookups++
	home, away, err := m.feed.Statistics(ctx, fx.ID)
	if err != nil {
		logger.Debug("No statistics for fixture %d this tick: %v", fx.ID, err)
		return nil
	}

	// History and baseline update every tick, even when a gate then
	// suppresses evaluation: pace deltas need the series.
	RecordSnapshot(st, fx.Minute, home, away, cfg.HistoryRetainMinutes, now)
	MaybeCaptureBaseline(st, fx.Status, fx.Minute, home, away)

	if emitted >= cfg.MaxSignalsPerTick {
		return nil
	}
	if gated, left := cfg.Cooldown.Gated(st, now); gated {
		logger.Debug("Fixture %d cooling down for another %v", fx.ID, left.Round(time.Second))
		return nil
	}

	halfHome := SecondHalfOnly(st, models.Home, home)
	halfAway := SecondHalfOnly(st, models.Away, away)

	dom := cfg.Weights.Dominant(halfHome, halfAway)
	pace := MeasurePace(st, fx.Minute, cfg.Pace, dom.Side)

	if ok, reason := cfg.Pace.Allow(pace, fx.Minute, fx.GoalsHome, fx.GoalsAway); !ok {
		logger.Debug("Fixture %d rejected by pace gate: %s", fx.ID, reason)
		return nil
	}

	self, opp := halfHome, halfAway
	if dom.Side == models.Away {
		self, opp = halfAway, halfHome
	}
	sotDiff := self.ShotsOnTarget - opp.ShotsOnTarget
	redAdvantage := opp.RedCards - self.RedCards
	if redAdvantage < 0 {
		redAdvantage = 0
	}
	confidence := cfg.Confidence.Confidence(dom, cfg.Tiers.Normal.ScoreFloor, sotDiff, redAdvantage, pace)

	tier := cfg.Tiers.Classify(Candidate{
		Dom:          dom,
		Self:         self,
		Opp:          opp,
		Confidence:   confidence,
		Pace:         pace,
		Minute:       fx.Minute,
		GoalsFor:     fx.Goals(dom.Side),
		GoalsAgainst: fx.Goals(dom.Side.Opposite()),
	})
	if tier == models.TierNone {
		return nil
	}
	if cfg.AllowTierUpgrades && tier <= st.HighestAlertedTier() {
		return nil
	}

	odds, err := m.feed.WinOdds(ctx, fx.ID, dom.Side)
	if err != nil {
		logger.Debug("No odds for fixture %d: %v", fx.ID, err)
		odds = 0
	}

	st.Pending = &models.PendingSignal{
		FixtureID: fx.ID,
		Side:      dom.Side,
		Tier:      tier,
		HomeTeam:  fx.HomeTeam,
		AwayTeam:  fx.AwayTeam,
		GoalsHome: fx.GoalsHome,
		GoalsAway: fx.GoalsAway,
		Minute:    fx.Minute,
		EmittedAt: now,
	}
	st.AlertedTiers[tier] = true

	logger.Info("Fixture %d signal %s: %s (score=%.1f gap=%.1f conf=%.0f)",
		fx.ID, tier, fx.Team(dom.Side), dom.Score, dom.Gap, confidence)

	return &models.Signal{
		FixtureID:     fx.ID,
		Tier:          tier,
		Side:          dom.Side,
		Team:          fx.Team(dom.Side),
		Opponent:      fx.Team(dom.Side.Opposite()),
		Minute:        fx.Minute,
		GoalsHome:     fx.GoalsHome,
		GoalsAway:     fx.GoalsAway,
		DominantScore: dom.Score,
		Gap:           dom.Gap,
		Confidence:    confidence,
		SOTHalf:       self.ShotsOnTarget,
		OppSOTHalf:    opp.ShotsOnTarget,
		ShotsHalf:     self.TotalShots,
		OppShotsHalf:  opp.TotalShots,
		Odds:          odds,
		DetectedAt:    now,
	}
}

// recheckVanished handles fixtures that dropped out of the live feed.
// Pending fixtures are re-fetched directly on a bounded interval; if the
// direct lookup never resolves them they remain pending, an accepted leak.
// Stale fixtures without a pending signal are garbage collected.
func (m *Monitor) recheckVanished(ctx context.Context, seen map[int]bool, now time.Time) []models.Resolution {
	var resolutions []models.Resolution

	for id, st := range m.fixtures {
		if seen[id] {
			continue
		}
		absent := now.Sub(st.LastSeen)

		if st.Pending == nil {
			if absent > 2*m.config.VanishAfter {
				m.remove(id)
			}
			continue
		}
		if absent < m.config.VanishAfter || now.Before(st.NextRecheckAt) {
			continue
		}
		st.NextRecheckAt = now.Add(m.config.RecheckInterval)

		fx, err := m.feed.FixtureByID(ctx, id)
		if err != nil {
			logger.Warn("Re-check of vanished fixture %d failed: %v", id, err)
			continue
		}
		if res := resolvePending(st, fx, now); res != nil {
			logger.Info("Vanished fixture %d resolved %s after direct re-check", id, res.Outcome)
			resolutions = append(resolutions, *res)
		}
		if models.IsTerminalStatus(fx.Status) {
			m.remove(id)
		}
	}
	return resolutions
}
