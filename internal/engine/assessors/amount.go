package assessors

import (
	"context"

	"github.com/meridiancredit/sentinel/internal/engine"
)

// AmountAssessor scores the transaction amount against the user's 30-day
// spending history. With no history the absolute amount is scored instead.
type AmountAssessor struct{}

func NewAmountAssessor() *AmountAssessor {
	return &AmountAssessor{}
}

func (a *AmountAssessor) Factor() engine.Factor {
	return engine.FactorAmount
}

func (a *AmountAssessor) Assess(ctx context.Context, in engine.TransactionInput) (float64, error) {
	txns, err := in.History.TransactionsSince(ctx, in.User.ID, in.Now.Add(-locationWindow))
	if err != nil {
		return 0, err
	}

	amount := in.Payload.Amount

	if len(txns) == 0 {
		switch {
		case amount > 10000:
			return 0.8, nil
		case amount > 5000:
			return 0.5, nil
		default:
			return 0.2, nil
		}
	}

	var sum float64
	for _, t := range txns {
		sum += t.Amount
	}
	mean := sum / float64(len(txns))

	switch {
	case amount > mean*3:
		return 0.8, nil
	case amount > mean*2:
		return 0.5, nil
	default:
		return 0.2, nil
	}
}
