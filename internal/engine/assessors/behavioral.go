package assessors

import (
	"context"

	"github.com/meridiancredit/sentinel/internal/engine"
)

// lowRiskMethods are the recognized payment channels that add no
// behavioral risk. Anything else — wallets, crypto, or an absent method
// (loan applications declare none) — adds 0.3.
var lowRiskMethods = map[string]bool{
	"bank_transfer": true,
	"card":          true,
}

// BehavioralAssessor scores payment-method and time-of-day anomalies.
//
// The off-hours check uses the evaluation-time clock (in.Now), not any time
// declared on the transaction. For backfilled or asynchronously processed
// transactions this scores the processing hour, not the transaction hour —
// a known inconsistency carried over deliberately because the intended
// semantics are ambiguous.
type BehavioralAssessor struct{}

func NewBehavioralAssessor() *BehavioralAssessor {
	return &BehavioralAssessor{}
}

func (a *BehavioralAssessor) Factor() engine.Factor {
	return engine.FactorBehavioral
}

func (a *BehavioralAssessor) Assess(_ context.Context, in engine.TransactionInput) (float64, error) {
	score := 0.0

	if !lowRiskMethods[in.Payload.PaymentMethod] {
		score += 0.3
	}

	if hour := in.Now.Hour(); hour < 6 || hour > 22 {
		score += 0.2
	}

	if score > 1.0 {
		score = 1.0
	}
	return score, nil
}
