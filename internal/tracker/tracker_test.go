package tracker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/oscillatelabsllc/sidequest/internal/db"
	"github.com/oscillatelabsllc/sidequest/internal/models"
	"github.com/oscillatelabsllc/sidequest/internal/recommend"
)

func TestLogAdventureValidation(t *testing.T) {
	ctx := context.Background()
	tr, ledgerPath, _ := setupTestTracker(t)

	if err := tr.LogAdventure(ctx, []string{"Amit", "Rahul"}, "Hiking", "2024-01-01"); err != nil {
		t.Fatalf("LogAdventure failed: %v", err)
	}
	before, err := os.ReadFile(ledgerPath)
	if err != nil {
		t.Fatalf("Failed to read ledger: %v", err)
	}

	tests := []struct {
		name         string
		participants []string
		category     string
		date         string
		want         error
	}{
		{"unknown category", []string{"Amit", "Rahul"}, "Skydiving", "2024-01-02", models.ErrInvalidCategory},
		{"blank category", []string{"Amit", "Rahul"}, "  ", "2024-01-02", models.ErrInvalidCategory},
		{"single participant", []string{"Amit"}, "Hiking", "2024-01-02", models.ErrTooFewParticipants},
		{"no participants", nil, "Hiking", "2024-01-02", models.ErrTooFewParticipants},
		{"duplicate participant", []string{"Amit", " Amit "}, "Hiking", "2024-01-02", models.ErrDuplicateParticipant},
		{"blank name", []string{"Amit", " "}, "Hiking", "2024-01-02", models.ErrEmptyName},
		{"missing date", []string{"Amit", "Rahul"}, "Hiking", "", models.ErrEmptyDate},
		{"malformed date", []string{"Amit", "Rahul"}, "Hiking", "01/02/2024", models.ErrInvalidDate},
		{"impossible date", []string{"Amit", "Rahul"}, "Hiking", "2024-02-30", models.ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tr.LogAdventure(ctx, tt.participants, tt.category, tt.date)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	after, err := os.ReadFile(ledgerPath)
	if err != nil {
		t.Fatalf("Failed to read ledger: %v", err)
	}
	if string(before) != string(after) {
		t.Error("Rejected requests modified the persisted ledger")
	}
}

func TestAdventureHistoryScenario(t *testing.T) {
	ctx := context.Background()
	tr, _, _ := setupTestTracker(t)

	if err := tr.LogAdventure(ctx, []string{"Amit", "Rahul"}, "Hiking", "2024-01-01"); err != nil {
		t.Fatalf("LogAdventure failed: %v", err)
	}

	got := tr.AdventureHistory("2024-01-01")
	want := []models.Entry{
		{Date: "2024-01-01", A: "Amit", B: "Rahul", Category: models.CategoryHiking, Count: 1},
		{Date: "2024-01-01", A: "Rahul", B: "Amit", Category: models.CategoryHiking, Count: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %d entries, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Entry %d: got %+v, want %+v", i, got[i], want[i])
		}
	}

	if h := tr.AdventureHistory("1999-01-01"); len(h) != 0 {
		t.Errorf("Expected no history for unknown date, got %v", h)
	}
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	tr, _, _ := setupTestTracker(t)

	t.Run("empty ledger", func(t *testing.T) {
		if got := tr.TopAdventureBuddies("Amit"); len(got) != 0 {
			t.Errorf("Expected no buddies, got %v", got)
		}
		if got := tr.BadgeTier("Amit"); got != models.BadgeNone {
			t.Errorf("Expected no badge, got %v", got)
		}
		if got := tr.CategoryTrend("Amit"); len(got) != 0 {
			t.Errorf("Expected empty trend, got %v", got)
		}
	})

	dates := []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"}
	for _, d := range dates {
		if err := tr.LogAdventure(ctx, []string{"Amit", "Rahul"}, "RoadTrip", d); err != nil {
			t.Fatalf("LogAdventure failed: %v", err)
		}
	}

	t.Run("five dates with one partner", func(t *testing.T) {
		got := tr.TopPartners("Amit", 3)
		if len(got) != 1 || got[0] != (models.Buddy{Name: "Rahul", Count: 10}) {
			t.Errorf("Expected [Rahul/10], got %v", got)
		}
		names := tr.TopAdventureBuddies("Amit")
		if len(names) != 1 || names[0] != "Rahul" {
			t.Errorf("Expected [Rahul], got %v", names)
		}
	})

	t.Run("trend and badge", func(t *testing.T) {
		trend := tr.CategoryTrend("Rahul")
		if trend[models.CategoryRoadTrip] != 10 {
			t.Errorf("Expected 10 road trips, got %v", trend)
		}
		if tr.TotalAdventures("Rahul") != 10 {
			t.Errorf("Expected 10 adventures, got %d", tr.TotalAdventures("Rahul"))
		}
		if got := tr.BadgeTier("Rahul"); got != models.BadgeAdventurer {
			t.Errorf("Expected Adventurer, got %v", got)
		}
	})

	t.Run("top buddies capped at three", func(t *testing.T) {
		for _, friend := range []string{"Bea", "Cal", "Dev", "Eve"} {
			if err := tr.LogAdventure(ctx, []string{"Amit", friend}, "Concert", "2024-02-01"); err != nil {
				t.Fatalf("LogAdventure failed: %v", err)
			}
		}
		got := tr.TopAdventureBuddies("Amit")
		want := []string{"Rahul", "Bea", "Cal"}
		if len(got) != len(want) {
			t.Fatalf("Expected %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Position %d: got %s, want %s", i, got[i], want[i])
			}
		}
	})

	t.Run("status", func(t *testing.T) {
		s := tr.Status(ctx)
		if s.Backend != "file" || s.Dates != 6 || s.ModelState != "no_model" || s.TopN != DefaultTopN {
			t.Errorf("Unexpected status: %+v", s)
		}
	})
}

func TestRecommendActivities(t *testing.T) {
	ctx := context.Background()
	tr, _, modelPath := setupTestTracker(t)

	t.Run("unmatched group returns no data without error", func(t *testing.T) {
		got, err := tr.RecommendActivities(ctx, "Amit-Rahul")
		if err != nil {
			t.Fatalf("RecommendActivities failed: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("Expected no data, got %v", got)
		}
	})

	if err := tr.InvalidateModel(); err != nil {
		t.Fatalf("InvalidateModel failed: %v", err)
	}
	if err := tr.LogAdventure(ctx, []string{"Amit", "Rahul"}, "Hiking", "2024-01-01"); err != nil {
		t.Fatalf("LogAdventure failed: %v", err)
	}

	got, err := tr.RecommendActivities(ctx, "Amit-Rahul")
	if err != nil {
		t.Fatalf("RecommendActivities failed: %v", err)
	}
	if len(got) != 1 || got[0] != models.CategoryHiking {
		t.Errorf("Expected [Hiking], got %v", got)
	}
	if _, err := os.Stat(modelPath); err != nil {
		t.Errorf("Expected model artifact: %v", err)
	}
}

func TestInvalidateOnWrite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := db.Open(ctx, "file", filepath.Join(dir, "adventures.json"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	modelPath := filepath.Join(dir, "model.gob.gz")
	tr := New(store, recommend.New(modelPath, store), WithInvalidateOnWrite(true), WithTopN(5))

	if err := tr.LogAdventure(ctx, []string{"Amit", "Rahul"}, "Hiking", "2024-01-01"); err != nil {
		t.Fatalf("LogAdventure failed: %v", err)
	}
	if _, err := tr.RecommendActivities(ctx, "Amit"); err != nil {
		t.Fatalf("RecommendActivities failed: %v", err)
	}
	if _, err := os.Stat(modelPath); err != nil {
		t.Fatalf("Expected model artifact: %v", err)
	}

	if err := tr.LogAdventure(ctx, []string{"Sara", "Leo"}, "Concert", "2024-01-02"); err != nil {
		t.Fatalf("LogAdventure failed: %v", err)
	}
	if _, err := os.Stat(modelPath); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected model artifact to be removed, got %v", err)
	}

	got, err := tr.RecommendActivities(ctx, "Leo")
	if err != nil {
		t.Fatalf("RecommendActivities failed: %v", err)
	}
	if len(got) != 2 || got[0] != models.CategoryConcert {
		t.Errorf("Expected concert recommendations, got %v", got)
	}
}

func TestImportLegacy(t *testing.T) {
	ctx := context.Background()
	tr, _, _ := setupTestTracker(t)

	src := models.Ledger{}
	src.Add("2023-06-01", models.PairKey{A: "Amit", B: "Rahul", Category: models.CategoryConcert}, 3)
	if err := tr.Import(ctx, src); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if got := tr.TopPartners("Amit", 0); len(got) != 1 || got[0].Count != 3 {
		t.Errorf("Expected imported partner, got %v", got)
	}
}

func setupTestTracker(t *testing.T) (*Tracker, string, string) {
	t.Helper()
	dir := t.TempDir()
	ledgerPath := filepath.Join(dir, "adventures.json")
	modelPath := filepath.Join(dir, "model.gob.gz")

	store, err := db.Open(context.Background(), "file", ledgerPath)
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return New(store, recommend.New(modelPath, store)), ledgerPath, modelPath
}

func TestEveryCategoryLabelIsAccepted(t *testing.T) {
	ctx := context.Background()
	tr, _, _ := setupTestTracker(t)

	for _, c := range models.Categories() {
		t.Run(c.String(), func(t *testing.T) {
			if err := tr.LogAdventure(ctx, []string{"Amit", "Rahul"}, c.String(), "2024-01-01"); err != nil {
				t.Fatalf("LogAdventure(%q) failed: %v", c, err)
			}
			if got := tr.CategoryTrend("Amit")[c]; got != 2 {
				t.Errorf("Expected 2 %s entries for Amit, got %d", c, got)
			}
		})
	}
}

func TestDefaultDate(t *testing.T) {
	orig := now
	t.Cleanup(func() { now = orig })

	local := time.FixedZone("UTC+10", 10*60*60)
	now = func() time.Time { return time.Date(2024, 3, 1, 7, 30, 0, 0, local) }

	t.Run("blank date uses local today", func(t *testing.T) {
		// 2024-02-29 in UTC, 2024-03-01 on the local clock
		if got := DefaultDate("  "); got != "2024-03-01" {
			t.Errorf("Expected 2024-03-01, got %s", got)
		}
	})

	t.Run("explicit date is kept", func(t *testing.T) {
		if got := DefaultDate(" 2023-12-31 "); got != "2023-12-31" {
			t.Errorf("Expected 2023-12-31, got %s", got)
		}
	})

	t.Run("logging with a defaulted date records today", func(t *testing.T) {
		tr, _, _ := setupTestTracker(t)
		if err := tr.LogAdventure(context.Background(), []string{"Amit", "Rahul"}, "Hiking", DefaultDate("")); err != nil {
			t.Fatalf("LogAdventure failed: %v", err)
		}
		if h := tr.AdventureHistory("2024-03-01"); len(h) != 2 {
			t.Errorf("Expected 2 entries on the local date, got %v", h)
		}
	})
}
