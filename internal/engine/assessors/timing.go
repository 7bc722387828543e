package assessors

import (
	"context"

	"github.com/meridiancredit/sentinel/internal/engine"
	"github.com/meridiancredit/sentinel/internal/history"
)

// TimingAssessor scores how unusual the login hour is against a histogram
// of the user's successful-login hours from the last 30 days.
type TimingAssessor struct{}

func NewTimingAssessor() *TimingAssessor {
	return &TimingAssessor{}
}

func (a *TimingAssessor) Factor() engine.Factor {
	return engine.FactorTiming
}

func (a *TimingAssessor) Assess(ctx context.Context, in engine.LoginInput) (float64, error) {
	events, err := in.History.EventsSince(ctx, in.User.ID,
		[]history.EventKind{history.EventLogin}, in.Now.Add(-locationWindow))
	if err != nil {
		return 0, err
	}

	if len(events) == 0 {
		return 0.2, nil
	}

	hourCounts := make(map[int]int)
	for _, e := range events {
		hourCounts[e.CreatedAt.UTC().Hour()]++
	}

	currentHour := in.Now.Hour()
	count, seen := hourCounts[currentHour]
	switch {
	case !seen:
		return 0.5, nil
	case float64(count) < float64(len(events))*0.1:
		return 0.3, nil
	default:
		return 0.1, nil
	}
}
