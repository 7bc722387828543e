package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/meridiancredit/sentinel/internal/store"
	"go.uber.org/zap"
)

// handleCreateClient implements POST /api/sentinel/clients.
func (d *Dependencies) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var req CreateClientReq
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "name is required"})
		return
	}

	c, apiKey, err := d.Store.CreateClient(r.Context(), req.Name)
	if err != nil {
		d.Logger.Error("create client failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to create client"})
		return
	}

	writeJSON(w, http.StatusCreated, CreateClientResp{
		ID:           c.ID,
		Name:         c.Name,
		APIKey:       apiKey,
		APIKeyPrefix: c.APIKeyPrefix,
		Disabled:     c.Disabled,
		CreatedAt:    c.CreatedAt,
	})
}

// handleListClients implements GET /api/sentinel/clients.
func (d *Dependencies) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := d.Store.ListClients(r.Context())
	if err != nil {
		d.Logger.Error("list clients failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to list clients"})
		return
	}

	resp := make([]ClientResp, 0, len(clients))
	for _, c := range clients {
		resp = append(resp, clientResp(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetClient implements GET /api/sentinel/clients/{client_id}.
func (d *Dependencies) handleGetClient(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("client_id")

	c, err := d.Store.GetClient(r.Context(), id)
	if err != nil {
		d.Logger.Error("get client failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to get client"})
		return
	}
	if c == nil {
		writeJSON(w, http.StatusNotFound, ErrorResp{Detail: "Client not found"})
		return
	}
	writeJSON(w, http.StatusOK, clientResp(c))
}

// handleUpdateClient implements PATCH /api/sentinel/clients/{client_id}.
func (d *Dependencies) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("client_id")

	var req UpdateClientReq
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}

	c, err := d.Store.UpdateClient(r.Context(), id, store.UpdateClientParams{
		Name:     req.Name,
		Disabled: req.Disabled,
	})
	if err != nil {
		d.Logger.Error("update client failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to update client"})
		return
	}
	if c == nil {
		writeJSON(w, http.StatusNotFound, ErrorResp{Detail: "Client not found"})
		return
	}
	writeJSON(w, http.StatusOK, clientResp(c))
}

// handleDeleteClient implements DELETE /api/sentinel/clients/{client_id}.
func (d *Dependencies) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("client_id")

	err := d.Store.DeleteClient(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, ErrorResp{Detail: "Client not found"})
		return
	}
	if err != nil {
		d.Logger.Error("delete client failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to delete client"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRotateKey implements POST /api/sentinel/clients/{client_id}/rotate-key.
// Existing cached credentials keep working until their cache entry goes stale.
func (d *Dependencies) handleRotateKey(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("client_id")

	c, apiKey, err := d.Store.RotateAPIKey(r.Context(), id)
	if err != nil {
		d.Logger.Error("rotate key failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to rotate key"})
		return
	}

	writeJSON(w, http.StatusOK, RotateKeyResp{
		APIKey:       apiKey,
		APIKeyPrefix: c.APIKeyPrefix,
	})
}

func clientResp(c *store.Client) ClientResp {
	return ClientResp{
		ID:           c.ID,
		Name:         c.Name,
		APIKeyPrefix: c.APIKeyPrefix,
		Disabled:     c.Disabled,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
