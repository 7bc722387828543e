package api

import (
	"time"

	"github.com/meridiancredit/sentinel/internal/chread"
)

// --- Assess endpoints ---

// UserReq is the caller's representation of the authenticated user.
type UserReq struct {
	ID                 string   `json:"id"`
	DeviceFingerprints []string `json:"device_fingerprints,omitempty"`
}

// ContextReq carries the per-request risk context.
type ContextReq struct {
	IPAddress         string `json:"ip_address,omitempty"`
	UserAgent         string `json:"user_agent,omitempty"`
	DeviceFingerprint string `json:"device_fingerprint,omitempty"`
	Location          string `json:"location,omitempty"`
}

// AssessLoginRequest is the JSON body for POST /v1/assess/login.
type AssessLoginRequest struct {
	User    UserReq    `json:"user"`
	Context ContextReq `json:"context"`
}

// TransactionReq carries the transaction under assessment.
type TransactionReq struct {
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method,omitempty"`
}

// AssessTransactionRequest is the JSON body for POST /v1/assess/transaction.
type AssessTransactionRequest struct {
	User        UserReq        `json:"user"`
	Transaction TransactionReq `json:"transaction"`
	Context     ContextReq     `json:"context,omitempty"`
}

// AssessResponse is the response for both assess endpoints.
type AssessResponse struct {
	AssessmentID                   string             `json:"assessment_id"`
	Kind                           string             `json:"kind"`
	RiskScore                      float64            `json:"risk_score"`
	RiskFactors                    map[string]float64 `json:"risk_factors"`
	AuthLevel                      string             `json:"auth_level"`
	RequiresMFA                    bool               `json:"requires_mfa"`
	RequiresBiometric              bool               `json:"requires_biometric"`
	RequiresAdditionalVerification bool               `json:"requires_additional_verification"`
	Message                        string             `json:"message"`
	AssessedAt                     time.Time          `json:"assessed_at"`
}

// AuthRequirementsRequest is the JSON body for POST /v1/auth-requirements.
type AuthRequirementsRequest struct {
	RiskScore float64 `json:"risk_score"`
}

// AuthRequirementsResponse mirrors the decision fields of AssessResponse.
type AuthRequirementsResponse struct {
	RiskScore                      float64 `json:"risk_score"`
	AuthLevel                      string  `json:"auth_level"`
	RequiresMFA                    bool    `json:"requires_mfa"`
	RequiresBiometric              bool    `json:"requires_biometric"`
	RequiresAdditionalVerification bool    `json:"requires_additional_verification"`
	Message                        string  `json:"message"`
}

// --- Client CRUD ---

// CreateClientReq is the JSON body for POST /api/sentinel/clients.
type CreateClientReq struct {
	Name string `json:"name"`
}

// CreateClientResp includes the plaintext API key (shown once).
type CreateClientResp struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	APIKey       string    `json:"api_key"`
	APIKeyPrefix string    `json:"api_key_prefix"`
	Disabled     bool      `json:"disabled"`
	CreatedAt    time.Time `json:"created_at"`
}

// UpdateClientReq is the JSON body for PATCH /api/sentinel/clients/{id}.
type UpdateClientReq struct {
	Name     *string `json:"name,omitempty"`
	Disabled *bool   `json:"disabled,omitempty"`
}

// ClientResp is the client view without the plaintext key.
type ClientResp struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	APIKeyPrefix string    `json:"api_key_prefix"`
	Disabled     bool      `json:"disabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RotateKeyResp includes the new plaintext API key (shown once).
type RotateKeyResp struct {
	APIKey       string `json:"api_key"`
	APIKeyPrefix string `json:"api_key_prefix"`
}

// --- Assessment browsing ---

// AssessmentListResp pages assessment events from the analytics mirror.
type AssessmentListResp struct {
	Assessments []chread.AssessmentEvent `json:"assessments"`
	Total       uint64                   `json:"total"`
	Page        int                      `json:"page"`
	PageSize    int                      `json:"page_size"`
}

// ErrorResp is a standard error response body.
type ErrorResp struct {
	Detail string `json:"detail"`
}
