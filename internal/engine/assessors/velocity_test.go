package assessors

import (
	"context"
	"testing"
	"time"

	"github.com/meridiancredit/sentinel/internal/engine"
	"github.com/meridiancredit/sentinel/internal/history"
)

func addAttempts(mem *history.MemoryAccessor, userID string, kind history.EventKind, n int) {
	for i := 0; i < n; i++ {
		mem.AddEvent(history.SecurityEvent{
			UserID:    userID,
			Kind:      kind,
			CreatedAt: assessNow.Add(-time.Duration(i+1) * time.Minute),
		})
	}
}

func TestVelocity_Buckets(t *testing.T) {
	tests := []struct {
		name     string
		logins   int
		failures int
		want     float64
	}{
		{"no attempts", 0, 0, 0.1},
		{"two attempts", 1, 1, 0.1},
		{"three attempts", 2, 1, 0.4},
		{"five attempts", 3, 2, 0.4},
		{"six attempts", 3, 3, 0.8},
		{"burst", 10, 10, 0.8},
	}
	for _, tt := range tests {
		mem := history.NewMemoryAccessor()
		addAttempts(mem, "u1", history.EventLogin, tt.logins)
		addAttempts(mem, "u1", history.EventFailedLogin, tt.failures)

		got, err := NewVelocityAssessor().Assess(context.Background(),
			loginInput(mem, engine.User{ID: "u1"}, engine.RiskContext{}))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

// Attempts outside the trailing hour do not count.
func TestVelocity_WindowExcludesOldAttempts(t *testing.T) {
	mem := history.NewMemoryAccessor()
	for i := 0; i < 10; i++ {
		mem.AddEvent(history.SecurityEvent{
			UserID:    "u1",
			Kind:      history.EventFailedLogin,
			CreatedAt: assessNow.Add(-2 * time.Hour),
		})
	}

	got, err := NewVelocityAssessor().Assess(context.Background(),
		loginInput(mem, engine.User{ID: "u1"}, engine.RiskContext{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.1 {
		t.Errorf("expected 0.1 when all attempts are outside the window, got %v", got)
	}
}

// Another user's attempts must not raise this user's velocity.
func TestVelocity_ScopedToUser(t *testing.T) {
	mem := history.NewMemoryAccessor()
	addAttempts(mem, "u2", history.EventFailedLogin, 10)

	got, err := NewVelocityAssessor().Assess(context.Background(),
		loginInput(mem, engine.User{ID: "u1"}, engine.RiskContext{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.1 {
		t.Errorf("expected 0.1 for a quiet user, got %v", got)
	}
}
