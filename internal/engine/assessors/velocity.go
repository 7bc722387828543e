package assessors

import (
	"context"
	"time"

	"github.com/meridiancredit/sentinel/internal/engine"
	"github.com/meridiancredit/sentinel/internal/history"
)

// velocityWindow bounds the attempt count used for velocity scoring.
const velocityWindow = time.Hour

// VelocityAssessor scores the rate of login and failed-login attempts in
// the trailing hour.
type VelocityAssessor struct{}

func NewVelocityAssessor() *VelocityAssessor {
	return &VelocityAssessor{}
}

func (a *VelocityAssessor) Factor() engine.Factor {
	return engine.FactorVelocity
}

func (a *VelocityAssessor) Assess(ctx context.Context, in engine.LoginInput) (float64, error) {
	events, err := in.History.EventsSince(ctx, in.User.ID,
		[]history.EventKind{history.EventLogin, history.EventFailedLogin},
		in.Now.Add(-velocityWindow))
	if err != nil {
		return 0, err
	}

	switch attempts := len(events); {
	case attempts > 5:
		return 0.8, nil
	case attempts > 2:
		return 0.4, nil
	default:
		return 0.1, nil
	}
}
