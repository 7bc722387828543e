package engine

import (
	"context"
	"time"

	"github.com/meridiancredit/sentinel/internal/history"
)

// LoginSignal is the interface every login risk assessor must implement.
// Assess returns a risk contribution in [0,1]; higher is riskier. Missing
// optional inputs (no location, empty history) are never an error — each
// assessor has a documented fallback value. An error means the required
// history read itself failed and the whole assessment must fail.
type LoginSignal interface {
	// Factor returns the signal's factor name.
	Factor() Factor

	// Assess computes the risk contribution for this signal.
	Assess(ctx context.Context, in LoginInput) (float64, error)
}

// TransactionSignal is the transaction-side counterpart of LoginSignal.
type TransactionSignal interface {
	Factor() Factor
	Assess(ctx context.Context, in TransactionInput) (float64, error)
}

// LoginInput bundles everything a login signal may look at. History is a
// read-only capability; signals must not mutate user or history state.
type LoginInput struct {
	User    User
	Context RiskContext
	History history.Accessor

	// Now is the evaluation instant, stamped once per assessment by the
	// engine so every signal sees the same clock.
	Now time.Time
}

// TransactionInput bundles everything a transaction signal may look at.
type TransactionInput struct {
	User    User
	Payload TransactionPayload
	History history.Accessor
	Now     time.Time
}
