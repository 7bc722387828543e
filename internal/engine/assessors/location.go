// Package assessors contains the seven risk signals run by the engine.
// Every value each signal can return is part of the scoring contract the
// platform's authentication flows were tuned against — change thresholds
// here only in lockstep with the policy resolver's.
package assessors

import (
	"context"
	"time"

	"github.com/meridiancredit/sentinel/internal/engine"
	"github.com/meridiancredit/sentinel/internal/history"
)

// locationWindow bounds how far back location and timing history is read.
const locationWindow = 30 * 24 * time.Hour

// LocationAssessor scores how novel the login's coarse location is against
// the user's successful logins from the last 30 days.
type LocationAssessor struct{}

func NewLocationAssessor() *LocationAssessor {
	return &LocationAssessor{}
}

func (a *LocationAssessor) Factor() engine.Factor {
	return engine.FactorLocation
}

func (a *LocationAssessor) Assess(ctx context.Context, in engine.LoginInput) (float64, error) {
	if in.Context.Location == "" {
		return 0.2, nil
	}

	events, err := in.History.EventsSince(ctx, in.User.ID,
		[]history.EventKind{history.EventLogin}, in.Now.Add(-locationWindow))
	if err != nil {
		return 0, err
	}

	known := make(map[string]bool)
	for _, e := range events {
		if e.Location != "" {
			known[e.Location] = true
		}
	}

	if len(known) == 0 {
		return 0.3, nil // new user, moderate risk
	}
	if known[in.Context.Location] {
		return 0.1, nil
	}
	return 0.7, nil
}
