// Package storage persists risk assessments: a synchronous Postgres audit
// trail (the record of truth, fail-closed) and an asynchronous ClickHouse
// mirror for the analytics read side (best-effort, may drop).
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/meridiancredit/sentinel/internal/engine"
)

// PostgresAudit appends assessments to the risk_assessments table.
// One single-statement INSERT per call, so a record is either fully
// written or not written at all.
type PostgresAudit struct {
	db *sql.DB
}

// NewPostgresAudit creates an audit recorder backed by the given pool.
func NewPostgresAudit(db *sql.DB) *PostgresAudit {
	return &PostgresAudit{db: db}
}

// Append implements engine.AuditRecorder. Errors propagate to the engine,
// which fails the assessment rather than returning an unaudited score.
func (p *PostgresAudit) Append(ctx context.Context, a *engine.Assessment) error {
	factors, err := factorsJSON(a)
	if err != nil {
		return fmt.Errorf("Append: %w", err)
	}

	var location, device, velocity, timing, amount, frequency, behavioral float64
	if a.Login != nil {
		location = a.Login.Location
		device = a.Login.Device
		velocity = a.Login.Velocity
		timing = a.Login.Timing
	}
	if a.Transaction != nil {
		amount = a.Transaction.Amount
		frequency = a.Transaction.Frequency
		behavioral = a.Transaction.Behavioral
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO risk_assessments (
			id, user_id, kind,
			location_risk, device_risk, velocity_risk, timing_risk,
			amount_risk, frequency_risk, behavioral_risk,
			overall_risk, factors,
			ip_address, user_agent, device_fingerprint, location,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		a.ID, a.UserID, a.Kind.String(),
		location, device, velocity, timing,
		amount, frequency, behavioral,
		a.OverallRisk, factors,
		a.Context.IPAddress, a.Context.UserAgent, a.Context.DeviceFingerprint, a.Context.Location,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Append: %w", err)
	}
	return nil
}

// factorsJSON serializes the closed factor struct for the JSONB column,
// keyed by factor name exactly as the factor set defines it.
func factorsJSON(a *engine.Assessment) ([]byte, error) {
	switch {
	case a.Login != nil:
		return json.Marshal(a.Login)
	case a.Transaction != nil:
		return json.Marshal(a.Transaction)
	default:
		return nil, fmt.Errorf("assessment %s has no factor set", a.ID)
	}
}
