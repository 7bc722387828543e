package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/meridiancredit/sentinel/internal/engine"
	"github.com/meridiancredit/sentinel/internal/metrics"
	"github.com/meridiancredit/sentinel/internal/storage"
	"go.uber.org/zap"
)

// handleAssessLogin implements POST /v1/assess/login.
// Auth middleware has already validated the Bearer token.
func (d *Dependencies) handleAssessLogin(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Failed to read request body"})
		return
	}
	if err := validateBody(loginSchema, body); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: err.Error()})
		return
	}

	var req AssessLoginRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}

	user := engine.User{ID: req.User.ID, DeviceFingerprints: req.User.DeviceFingerprints}
	rc := engine.RiskContext{
		IPAddress:         req.Context.IPAddress,
		UserAgent:         req.Context.UserAgent,
		DeviceFingerprint: req.Context.DeviceFingerprint,
		Location:          req.Context.Location,
	}

	a, err := d.Engine.AssessLogin(r.Context(), user, rc)
	if err != nil {
		d.writeAssessError(w, err)
		return
	}
	if c := clientFromContext(r.Context()); c != nil {
		d.Logger.Debug("login assessed", zap.String("client", c.Name), zap.String("assessment_id", a.ID.String()))
	}

	d.respondAssessment(w, a, map[string]float64{
		engine.FactorLocation.String(): a.Login.Location,
		engine.FactorDevice.String():   a.Login.Device,
		engine.FactorVelocity.String(): a.Login.Velocity,
		engine.FactorTiming.String():   a.Login.Timing,
	})
}

// handleAssessTransaction implements POST /v1/assess/transaction.
func (d *Dependencies) handleAssessTransaction(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Failed to read request body"})
		return
	}
	if err := validateBody(transactionSchema, body); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: err.Error()})
		return
	}

	var req AssessTransactionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}

	user := engine.User{ID: req.User.ID, DeviceFingerprints: req.User.DeviceFingerprints}
	payload := engine.TransactionPayload{
		Amount:        req.Transaction.Amount,
		PaymentMethod: req.Transaction.PaymentMethod,
	}
	rc := engine.RiskContext{
		IPAddress:         req.Context.IPAddress,
		UserAgent:         req.Context.UserAgent,
		DeviceFingerprint: req.Context.DeviceFingerprint,
		Location:          req.Context.Location,
	}

	a, err := d.Engine.AssessTransaction(r.Context(), user, payload, rc)
	if err != nil {
		d.writeAssessError(w, err)
		return
	}
	if c := clientFromContext(r.Context()); c != nil {
		d.Logger.Debug("transaction assessed", zap.String("client", c.Name), zap.String("assessment_id", a.ID.String()))
	}

	d.respondAssessment(w, a, map[string]float64{
		engine.FactorAmount.String():     a.Transaction.Amount,
		engine.FactorFrequency.String():  a.Transaction.Frequency,
		engine.FactorBehavioral.String(): a.Transaction.Behavioral,
	})
}

// handleAuthRequirements implements POST /v1/auth-requirements: resolve a
// caller-supplied score without running an assessment.
func (d *Dependencies) handleAuthRequirements(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Failed to read request body"})
		return
	}
	if err := validateBody(authRequirementsSchema, body); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: err.Error()})
		return
	}

	var req AuthRequirementsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}

	dec, err := d.Resolver.Resolve(req.RiskScore)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidRiskScore) {
			writeJSON(w, http.StatusUnprocessableEntity, ErrorResp{Detail: err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to resolve auth requirements"})
		return
	}

	writeJSON(w, http.StatusOK, AuthRequirementsResponse{
		RiskScore:                      req.RiskScore,
		AuthLevel:                      dec.AuthLevel,
		RequiresMFA:                    dec.RequiresMFA,
		RequiresBiometric:              dec.RequiresBiometric,
		RequiresAdditionalVerification: dec.RequiresAdditionalVerification,
		Message:                        dec.Message,
	})
}

// respondAssessment resolves the decision for an audited assessment, mirrors
// it to the analytics stream, and writes the response.
func (d *Dependencies) respondAssessment(w http.ResponseWriter, a *engine.Assessment, factors map[string]float64) {
	dec, err := d.Resolver.Resolve(a.OverallRisk)
	if err != nil {
		// The engine produces means of values in [0,1]; reaching this is a bug.
		d.Logger.Error("resolve failed for audited assessment",
			zap.String("assessment_id", a.ID.String()),
			zap.Float64("overall_risk", a.OverallRisk),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to resolve auth requirements"})
		return
	}

	metrics.AssessmentsTotal.WithLabelValues(a.Kind.String(), dec.AuthLevel).Inc()
	metrics.RiskScore.WithLabelValues(a.Kind.String()).Observe(a.OverallRisk)

	// Fire-and-forget analytics mirror. The audit record is already durable.
	d.Stream.Write(storage.StreamEvent{
		ID:          a.ID,
		UserID:      a.UserID,
		Kind:        a.Kind.String(),
		OverallRisk: a.OverallRisk,
		AuthLevel:   dec.AuthLevel,
		Location:    a.Context.Location,
		IPAddress:   a.Context.IPAddress,
		CreatedAt:   a.CreatedAt,
	})

	writeJSON(w, http.StatusOK, AssessResponse{
		AssessmentID:                   a.ID.String(),
		Kind:                           a.Kind.String(),
		RiskScore:                      a.OverallRisk,
		RiskFactors:                    factors,
		AuthLevel:                      dec.AuthLevel,
		RequiresMFA:                    dec.RequiresMFA,
		RequiresBiometric:              dec.RequiresBiometric,
		RequiresAdditionalVerification: dec.RequiresAdditionalVerification,
		Message:                        dec.Message,
		AssessedAt:                     a.CreatedAt,
	})
}

// writeAssessError maps engine failures to HTTP statuses. Both failure modes
// are 503: the caller should retry, not receive a guessed risk score.
func (d *Dependencies) writeAssessError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrHistoryUnavailable):
		metrics.AssessmentFailuresTotal.WithLabelValues("history").Inc()
		d.Logger.Error("assessment failed: history unavailable", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, ErrorResp{Detail: "Risk assessment unavailable"})
	case errors.Is(err, engine.ErrAuditWrite):
		metrics.AssessmentFailuresTotal.WithLabelValues("audit").Inc()
		metrics.AuditWriteFailuresTotal.Inc()
		d.Logger.Error("assessment failed: audit write", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, ErrorResp{Detail: "Risk assessment unavailable"})
	default:
		metrics.AssessmentFailuresTotal.WithLabelValues("internal").Inc()
		d.Logger.Error("assessment failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Internal error"})
	}
}
