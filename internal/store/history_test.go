package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/fincast/internal/model"
)

func openTemp(t *testing.T) *History {
	t.Helper()
	h, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func sampleSummary(mean float64) model.EnsembleSummary {
	return model.EnsembleSummary{
		Runs:         100,
		Weeks:        52,
		Seed:         1<<63 + 7, // larger than int64
		InitialTotal: 3100,
		Accounts: map[model.Account]model.DistributionStats{
			model.Current: {Mean: 100},
			model.Savings: {Mean: mean, StdDev: 12.5, P10: mean - 10, P50: mean, P90: mean + 10},
			model.ISA:     {Mean: 1600},
			model.LISA:    {Mean: 1550},
		},
		Liquid: model.DistributionStats{Mean: mean + 100, StdDev: 12.5, FractionBelow: 0.25},
		Total:  model.DistributionStats{Mean: mean + 3250, StdDev: 40, FractionBelow: 0.1},
	}
}

func TestSaveAndListProjections(t *testing.T) {
	h := openTemp(t)
	s := model.DefaultScenario()

	id, err := h.SaveProjection(NewRecord(s, sampleSummary(500)))
	if err != nil {
		t.Fatalf("SaveProjection: %v", err)
	}
	if id == "" {
		t.Fatal("SaveProjection returned empty ID")
	}

	recs, err := h.ListProjections(0)
	if err != nil {
		t.Fatalf("ListProjections: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("ListProjections len = %d, want 1", len(recs))
	}

	got := recs[0]
	if got.ID != id {
		t.Errorf("ID = %q, want %q", got.ID, id)
	}
	if got.Seed != 1<<63+7 {
		t.Errorf("Seed = %d, want %d", got.Seed, uint64(1<<63+7))
	}
	if got.Scenario != s {
		t.Errorf("Scenario = %+v, want %+v", got.Scenario, s)
	}
	if got.Liquid.FractionBelow != 0.25 {
		t.Errorf("Liquid.FractionBelow = %v, want 0.25", got.Liquid.FractionBelow)
	}
	if len(got.Accounts) != 4 {
		t.Fatalf("Accounts len = %d, want 4", len(got.Accounts))
	}
	if got.Accounts[model.Savings].P90 != 510 {
		t.Errorf("Savings P90 = %v, want 510", got.Accounts[model.Savings].P90)
	}
}

func TestLatestForScenario(t *testing.T) {
	h := openTemp(t)
	s := model.DefaultScenario()
	other := s
	other.Name = "other"

	base := time.Date(2026, 1, 5, 6, 0, 0, 0, time.UTC)

	older := NewRecord(s, sampleSummary(100))
	older.CreatedAt = base
	newer := NewRecord(s, sampleSummary(200))
	newer.CreatedAt = base.Add(time.Hour)
	unrelated := NewRecord(other, sampleSummary(300))
	unrelated.CreatedAt = base.Add(2 * time.Hour)

	for _, r := range []Record{older, newer, unrelated} {
		if _, err := h.SaveProjection(r); err != nil {
			t.Fatalf("SaveProjection: %v", err)
		}
	}

	latest, err := h.LatestForScenario("default")
	if err != nil {
		t.Fatalf("LatestForScenario: %v", err)
	}
	if latest == nil {
		t.Fatal("LatestForScenario returned nil")
	}
	if latest.Accounts[model.Savings].Mean != 200 {
		t.Fatalf("latest savings mean = %v, want 200", latest.Accounts[model.Savings].Mean)
	}

	none, err := h.LatestForScenario("missing")
	if err != nil || none != nil {
		t.Fatalf("LatestForScenario(missing) = %v, %v, want nil, nil", none, err)
	}
}

func TestGetAndDeleteProjection(t *testing.T) {
	h := openTemp(t)
	id, err := h.SaveProjection(NewRecord(model.DefaultScenario(), sampleSummary(1)))
	if err != nil {
		t.Fatalf("SaveProjection: %v", err)
	}

	rec, err := h.GetProjection(id[:8])
	if err != nil {
		t.Fatalf("GetProjection(prefix): %v", err)
	}
	if rec.ID != id {
		t.Fatalf("GetProjection ID = %q, want %q", rec.ID, id)
	}

	if err := h.DeleteProjection(id); err != nil {
		t.Fatalf("DeleteProjection: %v", err)
	}
	if err := h.DeleteProjection(id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second DeleteProjection = %v, want ErrNotFound", err)
	}

	n, err := h.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Fatalf("Count = %d, want 0", n)
	}
}

func TestListProjectionsLimit(t *testing.T) {
	h := openTemp(t)
	for i := 0; i < 5; i++ {
		rec := NewRecord(model.DefaultScenario(), sampleSummary(float64(i)))
		rec.CreatedAt = time.Date(2026, 1, 1, 0, i, 0, 0, time.UTC)
		if _, err := h.SaveProjection(rec); err != nil {
			t.Fatalf("SaveProjection: %v", err)
		}
	}

	recs, err := h.ListProjections(2)
	if err != nil {
		t.Fatalf("ListProjections: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("ListProjections(2) len = %d, want 2", len(recs))
	}
	if recs[0].Accounts[model.Savings].Mean != 4 {
		t.Fatalf("first record savings mean = %v, want 4 (most recent)", recs[0].Accounts[model.Savings].Mean)
	}
}
