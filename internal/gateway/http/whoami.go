package http

import (
	"net/http"

	"github.com/oxleyhq/apigate/pkg/apierr"
	"github.com/oxleyhq/apigate/pkg/httpx"
	"github.com/oxleyhq/apigate/pkg/slogx"
)

type whoamiResponse struct {
	ID     string   `json:"id"`
	Scopes []string `json:"scopes"`
	Type   string   `json:"type"`
}

// WhoamiHandler handles GET /v1/whoami, echoing the authenticated
// identity back to the caller.
type WhoamiHandler struct {
	Respond apierr.Responder
}

func (h *WhoamiHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity := httpx.IdentityFromContext(ctx)
	if identity == nil {
		// Unreachable behind the authentication middleware.
		h.Respond.Write(w, slogx.RequestIDFromContext(ctx),
			apierr.New(apierr.CodeUnauthorized, "missing or invalid credential"))
		return
	}

	httpx.WriteJSON(w, http.StatusOK, whoamiResponse{
		ID:     identity.ID,
		Scopes: identity.Scopes,
		Type:   string(identity.Type),
	})
}
