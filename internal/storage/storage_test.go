package storage

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zuenet070/livebets/internal/models"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(100, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleSignal(fixtureID int, tier models.Tier) *models.Signal {
	return &models.Signal{
		FixtureID:     fixtureID,
		Tier:          tier,
		Side:          models.Home,
		Team:          "Ajax",
		Opponent:      "PSV",
		Minute:        42,
		DominantScore: 16.4,
		Gap:           32.8,
		Confidence:    85,
		SOTHalf:       4,
		ShotsHalf:     9,
		OppShotsHalf:  3,
		Odds:          1.85,
		DetectedAt:    time.Now(),
	}
}

func sampleResolution(fixtureID int, tier models.Tier, outcome models.Outcome) *models.Resolution {
	return &models.Resolution{
		FixtureID:      fixtureID,
		Tier:           tier,
		Side:           models.Home,
		Team:           "Ajax",
		Outcome:        outcome,
		Minute:         55,
		GoalsHomeAfter: 1,
		ResolvedAt:     time.Now(),
	}
}

func TestAddAlertAndCount(t *testing.T) {
	s := newTestStorage(t)

	if err := s.AddAlert(sampleSignal(101, models.TierPremium)); err != nil {
		t.Fatalf("AddAlert failed: %v", err)
	}
	if err := s.AddAlert(sampleSignal(102, models.TierNormal)); err != nil {
		t.Fatalf("AddAlert failed: %v", err)
	}

	n, err := s.AlertCount()
	if err != nil {
		t.Fatalf("AlertCount failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 alerts, got %d", n)
	}
}

func TestSummaryByTier(t *testing.T) {
	s := newTestStorage(t)

	for id, tier := range map[int]models.Tier{
		101: models.TierPremium,
		102: models.TierPremium,
		103: models.TierNormal,
	} {
		if err := s.AddAlert(sampleSignal(id, tier)); err != nil {
			t.Fatalf("AddAlert failed: %v", err)
		}
	}
	if err := s.AddResolution(sampleResolution(101, models.TierPremium, models.OutcomeHit)); err != nil {
		t.Fatalf("AddResolution failed: %v", err)
	}
	if err := s.AddResolution(sampleResolution(102, models.TierPremium, models.OutcomeMiss)); err != nil {
		t.Fatalf("AddResolution failed: %v", err)
	}

	tiers, err := s.SummaryByTier()
	if err != nil {
		t.Fatalf("SummaryByTier failed: %v", err)
	}

	byName := make(map[string]TierStats)
	for _, ts := range tiers {
		byName[ts.Tier] = ts
	}

	premium := byName["PREMIUM"]
	if premium.Alerts != 2 || premium.Hits != 1 || premium.Misses != 1 {
		t.Errorf("unexpected PREMIUM row: %+v", premium)
	}
	if premium.HitRate() != 50 {
		t.Errorf("expected 50%% hit rate, got %.1f", premium.HitRate())
	}

	normal := byName["NORMAL"]
	if normal.Alerts != 1 || normal.Hits != 0 || normal.Misses != 0 {
		t.Errorf("unexpected NORMAL row: %+v", normal)
	}
	if normal.HitRate() != 0 {
		t.Errorf("unresolved tier hit rate must be 0, got %.1f", normal.HitRate())
	}
}

func TestSummaryByMinuteBucket(t *testing.T) {
	s := newTestStorage(t)

	early := sampleSignal(101, models.TierNormal)
	early.Minute = 14
	mid := sampleSignal(102, models.TierPremium)
	mid.Minute = 42
	mid2 := sampleSignal(103, models.TierPremium)
	mid2.Minute = 45
	late := sampleSignal(104, models.TierExtreme)
	late.Minute = 93

	for _, sig := range []*models.Signal{early, mid, mid2, late} {
		if err := s.AddAlert(sig); err != nil {
			t.Fatalf("AddAlert failed: %v", err)
		}
	}
	if err := s.AddResolution(sampleResolution(102, models.TierPremium, models.OutcomeHit)); err != nil {
		t.Fatalf("AddResolution failed: %v", err)
	}
	if err := s.AddResolution(sampleResolution(103, models.TierPremium, models.OutcomeMiss)); err != nil {
		t.Fatalf("AddResolution failed: %v", err)
	}

	buckets, err := s.SummaryByMinuteBucket()
	if err != nil {
		t.Fatalf("SummaryByMinuteBucket failed: %v", err)
	}

	byBucket := make(map[string]MinuteBucketStats)
	for _, b := range buckets {
		byBucket[b.Bucket] = b
	}

	if b := byBucket["01-15"]; b.Alerts != 1 || b.Hits != 0 || b.Misses != 0 {
		t.Errorf("unexpected 01-15 row: %+v", b)
	}
	window := byBucket["36-45"]
	if window.Alerts != 2 || window.Hits != 1 || window.Misses != 1 {
		t.Errorf("unexpected 36-45 row: %+v", window)
	}
	if window.HitRate() != 50 {
		t.Errorf("expected 50%% hit rate for 36-45, got %.1f", window.HitRate())
	}
	if b := byBucket["90+"]; b.Alerts != 1 {
		t.Errorf("unexpected 90+ row: %+v", b)
	}

	// String order is chronological thanks to the padded labels.
	if buckets[0].Bucket != "01-15" || buckets[len(buckets)-1].Bucket != "90+" {
		t.Errorf("buckets out of order: %+v", buckets)
	}
}

func TestReport(t *testing.T) {
	s := newTestStorage(t)

	if err := s.AddAlert(sampleSignal(101, models.TierExtreme)); err != nil {
		t.Fatalf("AddAlert failed: %v", err)
	}
	if err := s.AddResolution(sampleResolution(101, models.TierExtreme, models.OutcomeHit)); err != nil {
		t.Fatalf("AddResolution failed: %v", err)
	}

	report, err := s.Report()
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if !strings.Contains(report, "HIT: 1") {
		t.Errorf("report missing overall hits: %q", report)
	}
	if !strings.Contains(report, "EXTREME") {
		t.Errorf("report missing tier row: %q", report)
	}
	if !strings.Contains(report, "100.0%") {
		t.Errorf("report missing hit rate: %q", report)
	}
	if !strings.Contains(report, "By minute window:") || !strings.Contains(report, "36-45") {
		t.Errorf("report missing minute window section: %q", report)
	}
}

func TestRotateAlerts(t *testing.T) {
	s, err := New(3, filepath.Join(t.TempDir(), "rotate.db"))
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	defer s.Close()

	for i := 0; i < 10; i++ {
		sig := sampleSignal(200+i, models.TierNormal)
		sig.DetectedAt = time.Now().Add(time.Duration(i) * time.Second)
		if err := s.AddAlert(sig); err != nil {
			t.Fatalf("AddAlert failed: %v", err)
		}
	}
	if err := s.RotateAlerts(); err != nil {
		t.Fatalf("RotateAlerts failed: %v", err)
	}

	n, err := s.AlertCount()
	if err != nil {
		t.Fatalf("AlertCount failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 alerts after rotation, got %d", n)
	}
}
