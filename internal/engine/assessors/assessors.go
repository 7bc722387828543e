package assessors

import "github.com/meridiancredit/sentinel/internal/engine"

// ForLogin returns the canonical login signal set in factor order:
// location, device, velocity, timing.
func ForLogin() []engine.LoginSignal {
	return []engine.LoginSignal{
		NewLocationAssessor(),
		NewDeviceAssessor(),
		NewVelocityAssessor(),
		NewTimingAssessor(),
	}
}

// ForTransaction returns the canonical transaction signal set in factor
// order: amount, frequency, behavioral.
func ForTransaction() []engine.TransactionSignal {
	return []engine.TransactionSignal{
		NewAmountAssessor(),
		NewFrequencyAssessor(),
		NewBehavioralAssessor(),
	}
}
