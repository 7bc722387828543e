package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meridiancredit/sentinel/internal/history"
	"go.uber.org/zap"
)

var (
	// ErrHistoryUnavailable wraps failures of the history read a signal
	// depends on. The engine never substitutes a guessed risk value —
	// defaulting to low risk on a storage failure could mask an attack.
	ErrHistoryUnavailable = errors.New("history unavailable")

	// ErrAuditWrite wraps audit store failures. The computed score is
	// discarded: a security decision without an audit trail is itself a
	// security gap, so the assessment fails closed.
	ErrAuditWrite = errors.New("audit write failed")
)

// Assessment is the immutable audit artifact of one assess call. Exactly one
// of Login / Transaction is set, matching Kind.
type Assessment struct {
	ID          uuid.UUID
	UserID      string
	Kind        Kind
	Login       *LoginFactors
	Transaction *TransactionFactors
	OverallRisk float64
	Context     RiskContext
	CreatedAt   time.Time
}

// AuditRecorder persists assessments. Append must be atomic per call — a
// record is either fully written or not written at all — and must return an
// error on failure rather than dropping the record.
type AuditRecorder interface {
	Append(ctx context.Context, a *Assessment) error
}

// RiskEngine runs the fixed signal set for an assessment kind in parallel,
// combines the results into an overall score, and records the assessment.
type RiskEngine struct {
	login  []LoginSignal
	txn    []TransactionSignal
	hist   history.Accessor
	audit  AuditRecorder
	logger *zap.Logger
	now    func() time.Time
}

// NewRiskEngine creates an engine with the given signal sets. Signals are
// wired by the caller (see cmd/sentinel-server); the engine verifies at
// assessment time that the collected factors form exactly the closed set
// for the kind.
func NewRiskEngine(login []LoginSignal, txn []TransactionSignal, hist history.Accessor, audit AuditRecorder, logger *zap.Logger) *RiskEngine {
	return &RiskEngine{
		login:  login,
		txn:    txn,
		hist:   hist,
		audit:  audit,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the engine's clock. Test hook.
func (e *RiskEngine) WithClock(now func() time.Time) *RiskEngine {
	e.now = now
	return e
}

// signalOutput carries one signal's result back over the fan-out channel.
type signalOutput struct {
	factor Factor
	value  float64
	err    error
}

// AssessLogin runs the login signal set, audits the result, and returns the
// assessment. Unlike a best-effort pipeline there is no partial-result path:
// any signal failure or audit failure fails the whole call.
func (e *RiskEngine) AssessLogin(ctx context.Context, user User, rc RiskContext) (*Assessment, error) {
	now := e.now()
	in := LoginInput{User: user, Context: rc, History: e.hist, Now: now}

	ch := make(chan signalOutput, len(e.login))
	for _, s := range e.login {
		go func(s LoginSignal) {
			v, err := s.Assess(ctx, in)
			ch <- signalOutput{factor: s.Factor(), value: v, err: err}
		}(s)
	}

	collected := make(map[Factor]float64, len(e.login))
	for range e.login {
		out := <-ch
		if out.err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrHistoryUnavailable, out.factor, out.err)
		}
		collected[out.factor] = out.value
	}

	factors, err := loginFactorsFrom(collected)
	if err != nil {
		return nil, err
	}

	a := &Assessment{
		ID:          uuid.New(),
		UserID:      user.ID,
		Kind:        KindLogin,
		Login:       &factors,
		OverallRisk: factors.Mean(),
		Context:     rc,
		CreatedAt:   now,
	}
	if err := e.record(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// AssessTransaction runs the transaction signal set, audits the result, and
// returns the assessment.
func (e *RiskEngine) AssessTransaction(ctx context.Context, user User, payload TransactionPayload, rc RiskContext) (*Assessment, error) {
	now := e.now()
	in := TransactionInput{User: user, Payload: payload, History: e.hist, Now: now}

	ch := make(chan signalOutput, len(e.txn))
	for _, s := range e.txn {
		go func(s TransactionSignal) {
			v, err := s.Assess(ctx, in)
			ch <- signalOutput{factor: s.Factor(), value: v, err: err}
		}(s)
	}

	collected := make(map[Factor]float64, len(e.txn))
	for range e.txn {
		out := <-ch
		if out.err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrHistoryUnavailable, out.factor, out.err)
		}
		collected[out.factor] = out.value
	}

	factors, err := transactionFactorsFrom(collected)
	if err != nil {
		return nil, err
	}

	a := &Assessment{
		ID:          uuid.New(),
		UserID:      user.ID,
		Kind:        KindTransaction,
		Transaction: &factors,
		OverallRisk: factors.Mean(),
		Context:     rc,
		CreatedAt:   now,
	}
	if err := e.record(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// record appends the assessment to the audit store. Every assessment is
// audited unconditionally, not just risky ones.
func (e *RiskEngine) record(ctx context.Context, a *Assessment) error {
	if err := e.audit.Append(ctx, a); err != nil {
		e.logger.Error("audit append failed, discarding assessment",
			zap.String("user_id", a.UserID),
			zap.String("kind", a.Kind.String()),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrAuditWrite, err)
	}
	return nil
}

// loginFactorsFrom maps the collected fan-out results into the closed login
// factor struct. A missing or unexpected factor means the signal set was
// miswired — that is a programming error and fails loudly.
func loginFactorsFrom(collected map[Factor]float64) (LoginFactors, error) {
	if len(collected) != 4 {
		return LoginFactors{}, fmt.Errorf("login signal set produced %d factors, want 4", len(collected))
	}
	var f LoginFactors
	for factor, v := range collected {
		switch factor {
		case FactorLocation:
			f.Location = v
		case FactorDevice:
			f.Device = v
		case FactorVelocity:
			f.Velocity = v
		case FactorTiming:
			f.Timing = v
		default:
			return LoginFactors{}, fmt.Errorf("unexpected login factor %q", factor)
		}
	}
	return f, nil
}

func transactionFactorsFrom(collected map[Factor]float64) (TransactionFactors, error) {
	if len(collected) != 3 {
		return TransactionFactors{}, fmt.Errorf("transaction signal set produced %d factors, want 3", len(collected))
	}
	var f TransactionFactors
	for factor, v := range collected {
		switch factor {
		case FactorAmount:
			f.Amount = v
		case FactorFrequency:
			f.Frequency = v
		case FactorBehavioral:
			f.Behavioral = v
		default:
			return TransactionFactors{}, fmt.Errorf("unexpected transaction factor %q", factor)
		}
	}
	return f, nil
}
