// Package storage provides SQLite-backed persistence for emitted alerts,
// their resolutions, and the hit-rate report derived from them.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/zuenet070/livebets/internal/models"
)

// Storage wraps a SQLite database for all persistence operations.
type Storage struct {
	db        *sql.DB
	maxAlerts int
}

// New opens or creates the SQLite database at dbPath.
// An empty dbPath defaults to $TMPDIR/livebets/data.db.
func New(maxAlerts int, dbPath string) (*Storage, error) {
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "livebets", "data.db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; WAL allows concurrent readers
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	s := &Storage{db: db, maxAlerts: maxAlerts}
	if err := s.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS alerts (
			id              TEXT PRIMARY KEY,
			fixture_id      INTEGER NOT NULL,
			tier            TEXT NOT NULL,
			side            TEXT NOT NULL,
			team            TEXT NOT NULL,
			opponent        TEXT NOT NULL,
			minute          INTEGER NOT NULL,
			goals_home      INTEGER NOT NULL,
			goals_away      INTEGER NOT NULL,
			dominant_score  REAL NOT NULL,
			gap             REAL NOT NULL,
			confidence      REAL NOT NULL,
			sot_half        INTEGER NOT NULL,
			opp_sot_half    INTEGER NOT NULL,
			shots_half      INTEGER NOT NULL,
			opp_shots_half  INTEGER NOT NULL,
			odds            REAL,
			created_at      INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			fixture_id        INTEGER NOT NULL,
			tier              TEXT NOT NULL,
			team              TEXT NOT NULL,
			result            TEXT NOT NULL,
			minute_resolved   INTEGER NOT NULL,
			goals_home_before INTEGER NOT NULL,
			goals_away_before INTEGER NOT NULL,
			goals_home_after  INTEGER NOT NULL,
			goals_away_after  INTEGER NOT NULL,
			created_at        INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_fixture ON alerts(fixture_id)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_created ON alerts(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_results_fixture ON results(fixture_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// AddAlert appends one analytics row for an emitted signal.
func (s *Storage) AddAlert(sig *models.Signal) error {
	_, err := s.db.Exec(`
		INSERT INTO alerts
			(id, fixture_id, tier, side, team, opponent, minute, goals_home, goals_away,
			 dominant_score, gap, confidence, sot_half, opp_sot_half, shots_half, opp_shots_half,
			 odds, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		uuid.New().String(), sig.FixtureID, sig.Tier.String(), sig.Side.String(),
		sig.Team, sig.Opponent, sig.Minute, sig.GoalsHome, sig.GoalsAway,
		sig.DominantScore, sig.Gap, sig.Confidence,
		sig.SOTHalf, sig.OppSOTHalf, sig.ShotsHalf, sig.OppShotsHalf,
		sig.Odds, sig.DetectedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

// AddResolution appends one result row for a resolved signal.
func (s *Storage) AddResolution(res *models.Resolution) error {
	_, err := s.db.Exec(`
		INSERT INTO results
			(fixture_id, tier, team, result, minute_resolved,
			 goals_home_before, goals_away_before, goals_home_after, goals_away_after, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		res.FixtureID, res.Tier.String(), res.Team, string(res.Outcome), res.Minute,
		res.GoalsHomeBefore, res.GoalsAwayBefore, res.GoalsHomeAfter, res.GoalsAwayAfter,
		res.ResolvedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}
	return nil
}

// RotateAlerts keeps at most maxAlerts newest alert rows.
func (s *Storage) RotateAlerts() error {
	_, err := s.db.Exec(`
		DELETE FROM alerts WHERE id NOT IN (
			SELECT id FROM alerts ORDER BY created_at DESC LIMIT ?
		)`, s.maxAlerts)
	if err != nil {
		return fmt.Errorf("failed to rotate alerts: %w", err)
	}
	return nil
}

// TierStats is one row of the per-tier report.
type TierStats struct {
	Tier          string
	Alerts        int
	Hits          int
	Misses        int
	AvgConfidence float64
	AvgGap        float64
	AvgScore      float64
}

// HitRate returns the tier's hit percentage over its resolved signals, or 0
// when none resolved yet.
func (t TierStats) HitRate() float64 {
	resolved := t.Hits + t.Misses
	if resolved == 0 {
		return 0
	}
	return float64(t.Hits) / float64(resolved) * 100
}

// SummaryByTier aggregates alerts joined with their results, one row per
// tier.
func (s *Storage) SummaryByTier() ([]TierStats, error) {
	rows, err := s.db.Query(`
		SELECT a.tier,
		       COUNT(*),
		       COALESCE(SUM(CASE WHEN r.result = 'HIT' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN r.result = 'MISS' THEN 1 ELSE 0 END), 0),
		       COALESCE(AVG(a.confidence), 0),
		       COALESCE(AVG(a.gap), 0),
		       COALESCE(AVG(a.dominant_score), 0)
		FROM alerts a
		LEFT JOIN results r ON r.fixture_id = a.fixture_id AND r.tier = a.tier
		GROUP BY a.tier
		ORDER BY a.tier`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tier summary: %w", err)
	}
	defer rows.Close()

	var out []TierStats
	for rows.Next() {
		var t TierStats
		if err := rows.Scan(&t.Tier, &t.Alerts, &t.Hits, &t.Misses, &t.AvgConfidence, &t.AvgGap, &t.AvgScore); err != nil {
			return nil, fmt.Errorf("failed to scan tier summary: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// MinuteBucketStats is one row of the by-minute-window report.
type MinuteBucketStats struct {
	Bucket string
	Alerts int
	Hits   int
	Misses int
}

// HitRate returns the window's hit percentage over its resolved signals, or
// 0 when none resolved yet.
func (b MinuteBucketStats) HitRate() float64 {
	resolved := b.Hits + b.Misses
	if resolved == 0 {
		return 0
	}
	return float64(b.Hits) / float64(resolved) * 100
}

// minuteBucketExpr maps the emission minute onto the tuning windows. Labels
// are zero-padded so the plain string sort orders them chronologically.
const minuteBucketExpr = `CASE
	WHEN a.minute <= 15 THEN '01-15'
	WHEN a.minute <= 20 THEN '16-20'
	WHEN a.minute <= 25 THEN '21-25'
	WHEN a.minute <= 30 THEN '26-30'
	WHEN a.minute <= 33 THEN '31-33'
	WHEN a.minute <= 35 THEN '34-35'
	WHEN a.minute <= 45 THEN '36-45'
	WHEN a.minute <= 50 THEN '46-50'
	WHEN a.minute <= 60 THEN '51-60'
	WHEN a.minute <= 70 THEN '61-70'
	WHEN a.minute <= 80 THEN '71-80'
	WHEN a.minute <= 90 THEN '81-90'
	ELSE '90+'
END`

// SummaryByMinuteBucket aggregates alerts joined with their results, one row
// per emission-minute window.
func (s *Storage) SummaryByMinuteBucket() ([]MinuteBucketStats, error) {
	rows, err := s.db.Query(`
		SELECT ` + minuteBucketExpr + ` AS bucket,
		       COUNT(*),
		       COALESCE(SUM(CASE WHEN r.result = 'HIT' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN r.result = 'MISS' THEN 1 ELSE 0 END), 0)
		FROM alerts a
		LEFT JOIN results r ON r.fixture_id = a.fixture_id AND r.tier = a.tier
		GROUP BY bucket
		ORDER BY bucket`)
	if err != nil {
		return nil, fmt.Errorf("failed to query minute bucket summary: %w", err)
	}
	defer rows.Close()

	var out []MinuteBucketStats
	for rows.Next() {
		var b MinuteBucketStats
		if err := rows.Scan(&b.Bucket, &b.Alerts, &b.Hits, &b.Misses); err != nil {
			return nil, fmt.Errorf("failed to scan minute bucket summary: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Report renders the overall, per-tier, and per-minute-window hit-rate
// summary as plain text.
func (s *Storage) Report() (string, error) {
	tiers, err := s.SummaryByTier()
	if err != nil {
		return "", err
	}

	var total, hits, misses int
	for _, t := range tiers {
		total += t.Alerts
		hits += t.Hits
		misses += t.Misses
	}
	overall := 0.0
	if hits+misses > 0 {
		overall = float64(hits) / float64(hits+misses) * 100
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Alerts: %d | Resolved: %d | HIT: %d | MISS: %d | Hitrate: %.1f%%\n",
		total, hits+misses, hits, misses, overall)
	for _, t := range tiers {
		fmt.Fprintf(&b, "%s: %d alerts, %d/%d hit (%.1f%%), avg conf %.0f, avg gap %.1f, avg score %.1f\n",
			t.Tier, t.Alerts, t.Hits, t.Hits+t.Misses, t.HitRate(), t.AvgConfidence, t.AvgGap, t.AvgScore)
	}

	buckets, err := s.SummaryByMinuteBucket()
	if err != nil {
		return "", err
	}
	if len(buckets) > 0 {
		b.WriteString("By minute window:\n")
		for _, mb := range buckets {
			fmt.Fprintf(&b, "  %s: %d alerts, %d/%d hit (%.1f%%)\n",
				mb.Bucket, mb.Alerts, mb.Hits, mb.Hits+mb.Misses, mb.HitRate())
		}
	}
	return b.String(), nil
}

// AlertCount returns the number of stored alert rows.
func (s *Storage) AlertCount() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM alerts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}
	return n, nil
}
