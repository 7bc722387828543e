package assessors

import (
	"context"
	"time"

	"github.com/meridiancredit/sentinel/internal/engine"
)

// frequencyWindow bounds the transaction count used for frequency scoring.
const frequencyWindow = 24 * time.Hour

// FrequencyAssessor scores the number of transactions in the trailing 24h.
type FrequencyAssessor struct{}

func NewFrequencyAssessor() *FrequencyAssessor {
	return &FrequencyAssessor{}
}

func (a *FrequencyAssessor) Factor() engine.Factor {
	return engine.FactorFrequency
}

func (a *FrequencyAssessor) Assess(ctx context.Context, in engine.TransactionInput) (float64, error) {
	txns, err := in.History.TransactionsSince(ctx, in.User.ID, in.Now.Add(-frequencyWindow))
	if err != nil {
		return 0, err
	}

	switch count := len(txns); {
	case count > 10:
		return 0.9, nil
	case count > 5:
		return 0.6, nil
	default:
		return 0.2, nil
	}
}
