package engine

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRiskScore is returned when a caller hands the resolver a score
// outside [0,1]. That is a programming error in the caller; the resolver
// rejects it loudly rather than clamping.
var ErrInvalidRiskScore = errors.New("risk score outside [0,1]")

// Tier is the authentication strength required for an operation.
type Tier int

const (
	TierBasic Tier = iota + 1
	TierMFA
	TierBiometricMFA
)

// String returns the snake_case tier name.
func (t Tier) String() string {
	switch t {
	case TierBasic:
		return "basic"
	case TierMFA:
		return "mfa"
	case TierBiometricMFA:
		return "biometric_mfa"
	default:
		return "unspecified"
	}
}

// Thresholds holds the named risk cut-offs. Low is part of the configured
// set but is not consulted by the three-way Resolve branch; it is retained
// for future tiers and surfaced as configuration rather than hardcoded.
type Thresholds struct {
	Low    float64
	Medium float64
	High   float64
}

// DefaultThresholds returns the production cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{Low: 0.3, Medium: 0.6, High: 0.8}
}

// Validate checks the thresholds are in [0,1] and ordered.
func (t Thresholds) Validate() error {
	for name, v := range map[string]float64{"low": t.Low, "medium": t.Medium, "high": t.High} {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return fmt.Errorf("threshold %s = %v outside [0,1]", name, v)
		}
	}
	if t.Low > t.Medium || t.Medium > t.High {
		return fmt.Errorf("thresholds not ordered: low=%v medium=%v high=%v", t.Low, t.Medium, t.High)
	}
	return nil
}

// Decision is the authentication requirement derived from a risk score.
// Pure value object: never persisted, never cached, recomputed on demand.
type Decision struct {
	Tier                           Tier   `json:"-"`
	AuthLevel                      string `json:"auth_level"`
	RequiresMFA                    bool   `json:"requires_mfa"`
	RequiresBiometric              bool   `json:"requires_biometric"`
	RequiresAdditionalVerification bool   `json:"requires_additional_verification"`
	Message                        string `json:"message"`
}

// Resolver maps an overall risk score to a Decision. It holds an immutable
// threshold set fixed at construction; each call is independent.
type Resolver struct {
	thresholds Thresholds
}

// NewResolver creates a resolver with the given thresholds. Callers should
// validate the thresholds once at startup.
func NewResolver(t Thresholds) *Resolver {
	return &Resolver{thresholds: t}
}

// Resolve maps a risk score to the required authentication tier. Evaluated
// high to low, first match wins; both boundaries are closed lower bounds
// (exactly 0.6 yields mfa, exactly 0.8 yields biometric_mfa).
func (r *Resolver) Resolve(score float64) (Decision, error) {
	if score < 0 || score > 1 || math.IsNaN(score) {
		return Decision{}, fmt.Errorf("%w: %v", ErrInvalidRiskScore, score)
	}

	switch {
	case score >= r.thresholds.High:
		return Decision{
			Tier:                           TierBiometricMFA,
			AuthLevel:                      TierBiometricMFA.String(),
			RequiresMFA:                    true,
			RequiresBiometric:              true,
			RequiresAdditionalVerification: true,
			Message:                        "High-risk activity detected. Enhanced verification required.",
		}, nil
	case score >= r.thresholds.Medium:
		return Decision{
			Tier:        TierMFA,
			AuthLevel:   TierMFA.String(),
			RequiresMFA: true,
			Message:     "Additional verification required for security.",
		}, nil
	default:
		return Decision{
			Tier:      TierBasic,
			AuthLevel: TierBasic.String(),
			Message:   "Standard authentication sufficient.",
		}, nil
	}
}
