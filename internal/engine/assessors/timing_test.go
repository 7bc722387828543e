package assessors

import (
	"context"
	"testing"
	"time"

	"github.com/meridiancredit/sentinel/internal/engine"
	"github.com/meridiancredit/sentinel/internal/history"
)

func addLoginAtHour(mem *history.MemoryAccessor, userID string, daysAgo, hour int) {
	at := assessNow.AddDate(0, 0, -daysAgo)
	at = time.Date(at.Year(), at.Month(), at.Day(), hour, 0, 0, 0, time.UTC)
	addLogin(mem, userID, "Berlin", at)
}

func TestTiming_NoHistory(t *testing.T) {
	got, err := NewTimingAssessor().Assess(context.Background(),
		loginInput(history.NewMemoryAccessor(), engine.User{ID: "u1"}, engine.RiskContext{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.2 {
		t.Errorf("expected 0.2 with no login history, got %v", got)
	}
}

func TestTiming_UnseenHour(t *testing.T) {
	mem := history.NewMemoryAccessor()
	// assessNow is 14:30 UTC; all history at 03:00.
	for day := 1; day <= 5; day++ {
		addLoginAtHour(mem, "u1", day, 3)
	}

	got, err := NewTimingAssessor().Assess(context.Background(),
		loginInput(mem, engine.User{ID: "u1"}, engine.RiskContext{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.5 {
		t.Errorf("expected 0.5 for an unseen hour, got %v", got)
	}
}

func TestTiming_RareHour(t *testing.T) {
	mem := history.NewMemoryAccessor()
	// One login at the current hour, nineteen at another: 1/20 < 10%.
	addLoginAtHour(mem, "u1", 1, 14)
	for i := 0; i < 19; i++ {
		addLoginAtHour(mem, "u1", i%28+1, 9)
	}

	got, err := NewTimingAssessor().Assess(context.Background(),
		loginInput(mem, engine.User{ID: "u1"}, engine.RiskContext{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.3 {
		t.Errorf("expected 0.3 for a rare hour, got %v", got)
	}
}

func TestTiming_CommonHour(t *testing.T) {
	mem := history.NewMemoryAccessor()
	for day := 1; day <= 10; day++ {
		addLoginAtHour(mem, "u1", day, 14)
	}

	got, err := NewTimingAssessor().Assess(context.Background(),
		loginInput(mem, engine.User{ID: "u1"}, engine.RiskContext{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.1 {
		t.Errorf("expected 0.1 for a common hour, got %v", got)
	}
}

// Exactly at the 10% cut the hour counts as usual, not rare.
func TestTiming_BoundaryShare(t *testing.T) {
	mem := history.NewMemoryAccessor()
	// 1 login at the current hour out of 10 total: 1 == 10 * 0.1, not strictly less.
	addLoginAtHour(mem, "u1", 1, 14)
	for i := 0; i < 9; i++ {
		addLoginAtHour(mem, "u1", i+2, 9)
	}

	got, err := NewTimingAssessor().Assess(context.Background(),
		loginInput(mem, engine.User{ID: "u1"}, engine.RiskContext{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.1 {
		t.Errorf("expected 0.1 at exactly the 10%% share, got %v", got)
	}
}
