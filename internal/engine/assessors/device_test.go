package assessors

import (
	"context"
	"testing"

	"github.com/meridiancredit/sentinel/internal/engine"
	"github.com/meridiancredit/sentinel/internal/history"
)

func TestDevice_NoRegisteredDevices(t *testing.T) {
	in := loginInput(history.NewMemoryAccessor(), engine.User{ID: "u1"},
		engine.RiskContext{DeviceFingerprint: "fp-1"})

	got, err := NewDeviceAssessor().Assess(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.3 {
		t.Errorf("expected 0.3 for a user with no registered devices, got %v", got)
	}
}

func TestDevice_RecognizedFingerprint(t *testing.T) {
	user := engine.User{ID: "u1", DeviceFingerprints: []string{"fp-1", "fp-2"}}
	in := loginInput(history.NewMemoryAccessor(), user, engine.RiskContext{DeviceFingerprint: "fp-2"})

	got, err := NewDeviceAssessor().Assess(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.1 {
		t.Errorf("expected 0.1 for a recognized fingerprint, got %v", got)
	}
}

func TestDevice_UnrecognizedFingerprint(t *testing.T) {
	user := engine.User{ID: "u1", DeviceFingerprints: []string{"fp-1"}}
	in := loginInput(history.NewMemoryAccessor(), user, engine.RiskContext{DeviceFingerprint: "fp-other"})

	got, err := NewDeviceAssessor().Assess(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.6 {
		t.Errorf("expected 0.6 for an unrecognized fingerprint, got %v", got)
	}
}

// An empty request fingerprint against a registered set is still a mismatch.
func TestDevice_EmptyFingerprintWithRegisteredDevices(t *testing.T) {
	user := engine.User{ID: "u1", DeviceFingerprints: []string{"fp-1"}}
	in := loginInput(history.NewMemoryAccessor(), user, engine.RiskContext{})

	got, err := NewDeviceAssessor().Assess(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.6 {
		t.Errorf("expected 0.6 for a missing fingerprint, got %v", got)
	}
}
