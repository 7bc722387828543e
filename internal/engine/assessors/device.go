package assessors

import (
	"context"

	"github.com/meridiancredit/sentinel/internal/engine"
)

// DeviceAssessor scores the login's device fingerprint against the user's
// registered set. Needs no history read, so it never fails.
type DeviceAssessor struct{}

func NewDeviceAssessor() *DeviceAssessor {
	return &DeviceAssessor{}
}

func (a *DeviceAssessor) Factor() engine.Factor {
	return engine.FactorDevice
}

func (a *DeviceAssessor) Assess(_ context.Context, in engine.LoginInput) (float64, error) {
	if len(in.User.DeviceFingerprints) == 0 {
		return 0.3, nil
	}
	if in.User.HasFingerprint(in.Context.DeviceFingerprint) {
		return 0.1, nil
	}
	return 0.6, nil
}
