package engine

import (
	"errors"
	"math"
	"testing"
)

func defaultResolver() *Resolver {
	return NewResolver(DefaultThresholds())
}

func TestResolve_LowScore_Basic(t *testing.T) {
	dec, err := defaultResolver().Resolve(0.2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Tier != TierBasic {
		t.Errorf("expected basic tier, got %s", dec.Tier)
	}
	if dec.AuthLevel != "basic" {
		t.Errorf("expected auth_level basic, got %s", dec.AuthLevel)
	}
	if dec.RequiresMFA || dec.RequiresBiometric || dec.RequiresAdditionalVerification {
		t.Error("basic tier should set no verification flags")
	}
	if dec.Message != "Standard authentication sufficient." {
		t.Errorf("unexpected message: %q", dec.Message)
	}
}

func TestResolve_MediumScore_MFA(t *testing.T) {
	dec, err := defaultResolver().Resolve(0.7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Tier != TierMFA {
		t.Errorf("expected mfa tier, got %s", dec.Tier)
	}
	if !dec.RequiresMFA {
		t.Error("mfa tier should require MFA")
	}
	if dec.RequiresBiometric || dec.RequiresAdditionalVerification {
		t.Error("mfa tier should not require biometric or additional verification")
	}
	if dec.Message != "Additional verification required for security." {
		t.Errorf("unexpected message: %q", dec.Message)
	}
}

func TestResolve_HighScore_BiometricMFA(t *testing.T) {
	dec, err := defaultResolver().Resolve(0.95)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Tier != TierBiometricMFA {
		t.Errorf("expected biometric_mfa tier, got %s", dec.Tier)
	}
	if !dec.RequiresMFA || !dec.RequiresBiometric || !dec.RequiresAdditionalVerification {
		t.Error("biometric_mfa tier should set all verification flags")
	}
	if dec.Message != "High-risk activity detected. Enhanced verification required." {
		t.Errorf("unexpected message: %q", dec.Message)
	}
}

// The threshold boundaries are closed lower bounds: a score exactly at a
// cut-off lands in the stricter tier.
func TestResolve_BoundaryScores(t *testing.T) {
	tests := []struct {
		score float64
		want  Tier
	}{
		{0.0, TierBasic},
		{0.59999, TierBasic},
		{0.6, TierMFA},
		{0.79999, TierMFA},
		{0.8, TierBiometricMFA},
		{1.0, TierBiometricMFA},
	}
	r := defaultResolver()
	for _, tt := range tests {
		dec, err := r.Resolve(tt.score)
		if err != nil {
			t.Fatalf("Resolve(%v): unexpected error: %v", tt.score, err)
		}
		if dec.Tier != tt.want {
			t.Errorf("Resolve(%v) = %s, want %s", tt.score, dec.Tier, tt.want)
		}
	}
}

func TestResolve_InvalidScores(t *testing.T) {
	for _, score := range []float64{-0.01, 1.01, 5, -3, math.NaN()} {
		_, err := defaultResolver().Resolve(score)
		if !errors.Is(err, ErrInvalidRiskScore) {
			t.Errorf("Resolve(%v): expected ErrInvalidRiskScore, got %v", score, err)
		}
	}
}

// Resolve is a pure function of the score: same input, same decision.
func TestResolve_Idempotent(t *testing.T) {
	r := defaultResolver()
	for _, score := range []float64{0, 0.3, 0.6, 0.8, 1} {
		d1, err1 := r.Resolve(score)
		d2, err2 := r.Resolve(score)
		if err1 != nil || err2 != nil {
			t.Fatalf("Resolve(%v): unexpected errors %v %v", score, err1, err2)
		}
		if d1 != d2 {
			t.Errorf("Resolve(%v) not idempotent: %+v vs %+v", score, d1, d2)
		}
	}
}

// A higher score never yields a weaker tier.
func TestResolve_Monotonic(t *testing.T) {
	r := defaultResolver()
	prev := TierBasic
	for score := 0.0; score <= 1.0; score += 0.01 {
		dec, err := r.Resolve(score)
		if err != nil {
			t.Fatalf("Resolve(%v): unexpected error: %v", score, err)
		}
		if dec.Tier < prev {
			t.Fatalf("tier decreased at score %v: %s after %s", score, dec.Tier, prev)
		}
		prev = dec.Tier
	}
}

func TestThresholds_Validate(t *testing.T) {
	tests := []struct {
		name    string
		th      Thresholds
		wantErr bool
	}{
		{"defaults", DefaultThresholds(), false},
		{"equal values allowed", Thresholds{Low: 0.5, Medium: 0.5, High: 0.5}, false},
		{"negative", Thresholds{Low: -0.1, Medium: 0.6, High: 0.8}, true},
		{"above one", Thresholds{Low: 0.3, Medium: 0.6, High: 1.1}, true},
		{"unordered", Thresholds{Low: 0.9, Medium: 0.6, High: 0.8}, true},
		{"nan", Thresholds{Low: math.NaN(), Medium: 0.6, High: 0.8}, true},
	}
	for _, tt := range tests {
		err := tt.th.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestTier_String(t *testing.T) {
	if TierBasic.String() != "basic" || TierMFA.String() != "mfa" || TierBiometricMFA.String() != "biometric_mfa" {
		t.Error("unexpected tier names")
	}
	if Tier(0).String() != "unspecified" {
		t.Error("zero tier should be unspecified")
	}
}
