package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/sentinel")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %q, want %q", cfg.Port, DefaultPort)
	}
	if cfg.Env != DefaultEnv {
		t.Errorf("Env = %q, want %q", cfg.Env, DefaultEnv)
	}
	if cfg.ThresholdMedium != DefaultThresholdMedium || cfg.ThresholdHigh != DefaultThresholdHigh {
		t.Errorf("thresholds = %v/%v, want defaults", cfg.ThresholdMedium, cfg.ThresholdHigh)
	}
	if cfg.AuthDisabled {
		t.Error("auth should be enabled by default")
	}
	if !cfg.IsDevelopment() {
		t.Error("default env should be development")
	}
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Error("expected error when DATABASE_URL is unset")
	}
}

func TestLoad_ThresholdOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/sentinel")
	t.Setenv("RISK_THRESHOLD_MEDIUM", "0.5")
	t.Setenv("RISK_THRESHOLD_HIGH", "0.9")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ThresholdMedium != 0.5 || cfg.ThresholdHigh != 0.9 {
		t.Errorf("thresholds = %v/%v, want 0.5/0.9", cfg.ThresholdMedium, cfg.ThresholdHigh)
	}
}

func TestValidate_ThresholdOrdering(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/sentinel")
	t.Setenv("RISK_THRESHOLD_MEDIUM", "0.9")
	t.Setenv("RISK_THRESHOLD_HIGH", "0.6")

	if _, err := Load(); err == nil {
		t.Error("expected error for unordered thresholds")
	}
}

func TestValidate_ThresholdRange(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/sentinel")
	t.Setenv("RISK_THRESHOLD_HIGH", "1.5")

	if _, err := Load(); err == nil {
		t.Error("expected error for threshold above 1")
	}
}

func TestValidate_AuthDisabledInProduction(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/sentinel")
	t.Setenv("ENV", "production")
	t.Setenv("AUTH_DISABLED", "true")

	if _, err := Load(); err == nil {
		t.Error("expected error for AUTH_DISABLED in production")
	}
}
