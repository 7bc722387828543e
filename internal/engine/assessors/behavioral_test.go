package assessors

import (
	"context"
	"testing"
	"time"

	"github.com/meridiancredit/sentinel/internal/engine"
	"github.com/meridiancredit/sentinel/internal/history"
)

func behavioralInput(method string, now time.Time) engine.TransactionInput {
	return engine.TransactionInput{
		User:    engine.User{ID: "u1"},
		Payload: engine.TransactionPayload{Amount: 100, PaymentMethod: method},
		History: history.NewMemoryAccessor(),
		Now:     now,
	}
}

func atHour(hour int) time.Time {
	return time.Date(2026, 8, 30, hour, 30, 0, 0, time.UTC)
}

func TestBehavioral_Scores(t *testing.T) {
	tests := []struct {
		name   string
		method string
		hour   int
		want   float64
	}{
		{"bank transfer daytime", "bank_transfer", 14, 0.0},
		{"card daytime", "card", 10, 0.0},
		{"unrecognized method daytime", "crypto", 14, 0.3},
		{"missing method daytime", "", 14, 0.3},
		{"bank transfer early morning", "bank_transfer", 5, 0.2},
		{"bank transfer late night", "card", 23, 0.2},
		{"unrecognized method off hours", "wallet", 2, 0.5},
	}
	for _, tt := range tests {
		got, err := NewBehavioralAssessor().Assess(context.Background(),
			behavioralInput(tt.method, atHour(tt.hour)))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

// Hour 6 and hour 22 are inside business hours; the branch is strict.
func TestBehavioral_HourBoundaries(t *testing.T) {
	for _, hour := range []int{6, 22} {
		got, err := NewBehavioralAssessor().Assess(context.Background(),
			behavioralInput("card", atHour(hour)))
		if err != nil {
			t.Fatalf("hour %d: unexpected error: %v", hour, err)
		}
		if got != 0.0 {
			t.Errorf("hour %d should score 0.0, got %v", hour, got)
		}
	}
	for _, hour := range []int{5, 23} {
		got, err := NewBehavioralAssessor().Assess(context.Background(),
			behavioralInput("card", atHour(hour)))
		if err != nil {
			t.Fatalf("hour %d: unexpected error: %v", hour, err)
		}
		if got != 0.2 {
			t.Errorf("hour %d should score 0.2, got %v", hour, got)
		}
	}
}

func TestBehavioral_NeverExceedsOne(t *testing.T) {
	got, err := NewBehavioralAssessor().Assess(context.Background(),
		behavioralInput("crypto", atHour(3)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got > 1.0 {
		t.Errorf("score %v exceeds 1.0", got)
	}
}

func TestAssessorFactorSets(t *testing.T) {
	login := ForLogin()
	wantLogin := []engine.Factor{
		engine.FactorLocation, engine.FactorDevice,
		engine.FactorVelocity, engine.FactorTiming,
	}
	if len(login) != len(wantLogin) {
		t.Fatalf("login set has %d signals, want %d", len(login), len(wantLogin))
	}
	for i, s := range login {
		if s.Factor() != wantLogin[i] {
			t.Errorf("login signal %d = %s, want %s", i, s.Factor(), wantLogin[i])
		}
	}

	txn := ForTransaction()
	wantTxn := []engine.Factor{
		engine.FactorAmount, engine.FactorFrequency, engine.FactorBehavioral,
	}
	if len(txn) != len(wantTxn) {
		t.Fatalf("transaction set has %d signals, want %d", len(txn), len(wantTxn))
	}
	for i, s := range txn {
		if s.Factor() != wantTxn[i] {
			t.Errorf("transaction signal %d = %s, want %s", i, s.Factor(), wantTxn[i])
		}
	}
}
