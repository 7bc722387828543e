package assessors

import (
	"context"
	"testing"
	"time"

	"github.com/meridiancredit/sentinel/internal/engine"
	"github.com/meridiancredit/sentinel/internal/history"
)

func addRecentTxns(mem *history.MemoryAccessor, userID string, n int) {
	for i := 0; i < n; i++ {
		mem.AddTransaction(history.Transaction{
			UserID:    userID,
			Amount:    10,
			CreatedAt: assessNow.Add(-time.Duration(i+1) * time.Hour),
		})
	}
}

func TestFrequency_Buckets(t *testing.T) {
	tests := []struct {
		count int
		want  float64
	}{
		{0, 0.2},
		{5, 0.2},
		{6, 0.6},
		{10, 0.6},
		{11, 0.9},
		{50, 0.9},
	}
	for _, tt := range tests {
		mem := history.NewMemoryAccessor()
		// Spread hourly; counts above 23 spill outside the 24h window,
		// so place them minutes apart instead.
		for i := 0; i < tt.count; i++ {
			mem.AddTransaction(history.Transaction{
				UserID:    "u1",
				Amount:    10,
				CreatedAt: assessNow.Add(-time.Duration(i+1) * time.Minute),
			})
		}

		got, err := NewFrequencyAssessor().Assess(context.Background(),
			txnInput(mem, "u1", engine.TransactionPayload{Amount: 10}))
		if err != nil {
			t.Fatalf("count %d: unexpected error: %v", tt.count, err)
		}
		if got != tt.want {
			t.Errorf("count %d: got %v, want %v", tt.count, got, tt.want)
		}
	}
}

// Only the trailing 24 hours count.
func TestFrequency_WindowExcludesOldTransactions(t *testing.T) {
	mem := history.NewMemoryAccessor()
	for i := 0; i < 20; i++ {
		mem.AddTransaction(history.Transaction{
			UserID:    "u1",
			Amount:    10,
			CreatedAt: assessNow.Add(-25 * time.Hour),
		})
	}
	addRecentTxns(mem, "u1", 2)

	got, err := NewFrequencyAssessor().Assess(context.Background(),
		txnInput(mem, "u1", engine.TransactionPayload{Amount: 10}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.2 {
		t.Errorf("expected 0.2 with only 2 transactions in window, got %v", got)
	}
}
