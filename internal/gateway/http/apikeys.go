package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/oxleyhq/apigate/internal/gateway/domain"
	"github.com/oxleyhq/apigate/internal/gateway/service"
	"github.com/oxleyhq/apigate/pkg/apierr"
	"github.com/oxleyhq/apigate/pkg/httpx"
	"github.com/oxleyhq/apigate/pkg/slogx"
)

// APIKeysHandler handles the API-key management endpoints.
type APIKeysHandler struct {
	Credentials *service.CredentialService
	Respond     apierr.Responder
}

type apiKeyInfo struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Scopes    []string `json:"scopes"`
	CreatedAt string   `json:"createdAt"`
	Revoked   bool     `json:"revoked"`
}

func toAPIKeyInfo(k domain.APIKey) apiKeyInfo {
	return apiKeyInfo{
		ID:        k.ID,
		Name:      k.Name,
		Scopes:    k.Scopes,
		CreatedAt: k.CreatedAt.Format(time.RFC3339),
		Revoked:   k.Revoked(),
	}
}

type createAPIKeyResponse struct {
	apiKeyInfo

	// Key is the plaintext, returned exactly once at creation. Only its
	// fingerprint survives server-side.
	Key string `json:"key"`
}

// HandleCreate handles POST /v1/apikeys.
func (h *APIKeysHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	reqID := slogx.RequestIDFromContext(ctx)

	var req struct {
		Name   string   `json:"name"`
		Scopes []string `json:"scopes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Respond.Write(w, reqID,
			apierr.New(apierr.CodeValidation, "request body must be valid JSON"))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		h.Respond.Write(w, reqID,
			apierr.New(apierr.CodeValidation, "name is required"))
		return
	}

	key, plaintext, err := h.Credentials.MintAPIKey(ctx, req.Name, req.Scopes)
	if err != nil {
		log.Error("failed to mint api key", "error", err)
		h.Respond.Write(w, reqID,
			apierr.New(apierr.CodeInternal, "failed to create api key"))
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, createAPIKeyResponse{
		apiKeyInfo: toAPIKeyInfo(key),
		Key:        plaintext,
	})
}

// HandleList handles GET /v1/apikeys.
func (h *APIKeysHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := slogx.RequestIDFromContext(ctx)

	keys, err := h.Credentials.ListAPIKeys(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list api keys", "error", err)
		h.Respond.Write(w, reqID,
			apierr.New(apierr.CodeInternal, "failed to list api keys"))
		return
	}

	infos := make([]apiKeyInfo, len(keys))
	for i, k := range keys {
		infos[i] = toAPIKeyInfo(k)
	}

	httpx.WriteJSON(w, http.StatusOK, struct {
		Keys []apiKeyInfo `json:"keys"`
	}{Keys: infos})
}

// HandleRevoke handles DELETE /v1/apikeys/{id}.
func (h *APIKeysHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := slogx.RequestIDFromContext(ctx)

	id := r.PathValue("id")

	if err := h.Credentials.RevokeAPIKey(ctx, id); err != nil {
		switch {
		case errors.Is(err, service.ErrKeyNotFound):
			h.Respond.Write(w, reqID,
				apierr.New(apierr.CodeNotFound, "api key not found"))
		default:
			slogx.FromContext(ctx).Error("failed to revoke api key", "error", err, "key_id", id)
			h.Respond.Write(w, reqID,
				apierr.New(apierr.CodeInternal, "failed to revoke api key"))
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
