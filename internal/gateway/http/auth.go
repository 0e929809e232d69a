package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/oxleyhq/apigate/internal/gateway/service"
	"github.com/oxleyhq/apigate/pkg/apierr"
	"github.com/oxleyhq/apigate/pkg/authx"
	"github.com/oxleyhq/apigate/pkg/httpx"
	"github.com/oxleyhq/apigate/pkg/slogx"
	"github.com/oxleyhq/apigate/pkg/tokenx"
)

type tokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
	ExpiresIn int    `json:"expiresIn"`
}

// LoginHandler handles POST /v1/auth/login. Credentials arrive either as
// an Authorization Basic header or as a JSON body.
type LoginHandler struct {
	Credentials *service.CredentialService
	Tokens      *service.TokenService
	Respond     apierr.Responder
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	reqID := slogx.RequestIDFromContext(ctx)

	var username, password string
	if cred, ok := authx.FromHeader(r.Header).(authx.Basic); ok {
		username, password = cred.Username, cred.Password
	} else {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.Respond.Write(w, reqID,
				apierr.New(apierr.CodeValidation, "request body must be valid JSON"))
			return
		}
		username, password = req.Username, req.Password
	}

	if strings.TrimSpace(username) == "" || password == "" {
		h.Respond.Write(w, reqID,
			apierr.New(apierr.CodeValidation, "username and password are required"))
		return
	}

	identity, err := h.Credentials.ValidateBasic(ctx, username, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.Respond.Write(w, reqID,
				apierr.New(apierr.CodeUnauthorized, "invalid credentials"))
			return
		}
		log.Error("login failed", "error", err)
		h.Respond.Write(w, reqID,
			apierr.New(apierr.CodeInternal, "failed to validate credentials"))
		return
	}

	token, expiresIn, err := h.Tokens.IssueUserToken(ctx, identity)
	if err != nil {
		log.Error("failed to issue token", "error", err)
		h.Respond.Write(w, reqID,
			apierr.New(apierr.CodeInternal, "failed to issue token"))
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: expiresIn,
	})
}

// RefreshHandler handles POST /v1/auth/refresh. The old token comes from
// the Authorization Bearer header or a JSON body.
type RefreshHandler struct {
	Tokens  *service.TokenService
	Respond apierr.Responder
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := slogx.RequestIDFromContext(ctx)

	var old string
	if cred, ok := authx.FromHeader(r.Header).(authx.Bearer); ok {
		old = cred.Token
	} else {
		var req struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.Respond.Write(w, reqID,
				apierr.New(apierr.CodeValidation, "request body must be valid JSON"))
			return
		}
		old = req.Token
	}

	if old == "" {
		h.Respond.Write(w, reqID,
			apierr.New(apierr.CodeValidation, "token is required"))
		return
	}

	token, expiresIn, err := h.Tokens.Refresh(ctx, old)
	if err != nil {
		if errors.Is(err, tokenx.ErrInvalid) {
			h.Respond.Write(w, reqID,
				apierr.New(apierr.CodeUnauthorized, "invalid or expired token"))
			return
		}
		slogx.FromContext(ctx).Error("refresh failed", "error", err)
		h.Respond.Write(w, reqID,
			apierr.New(apierr.CodeInternal, "failed to refresh token"))
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: expiresIn,
	})
}

type introspectResponse struct {
	Subject   string   `json:"subject"`
	Scopes    []string `json:"scopes"`
	Type      string   `json:"type"`
	IssuedAt  int64    `json:"issuedAt"`
	ExpiresAt int64    `json:"expiresAt"`
	Expired   bool     `json:"expired"`

	// Verified is always false: this endpoint decodes without checking
	// the signature and its output must never feed authorization.
	Verified bool `json:"verified"`
}

// IntrospectHandler handles GET /v1/auth/introspect. It reports the
// claimed contents of a token without verifying it.
type IntrospectHandler struct {
	Tokens  *service.TokenService
	Respond apierr.Responder
}

func (h *IntrospectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := slogx.RequestIDFromContext(ctx)

	token := r.URL.Query().Get("token")
	if token == "" {
		if cred, ok := authx.FromHeader(r.Header).(authx.Bearer); ok {
			token = cred.Token
		}
	}
	if token == "" {
		h.Respond.Write(w, reqID,
			apierr.New(apierr.CodeValidation, "token is required"))
		return
	}

	claims, err := h.Tokens.Introspect(token)
	if err != nil {
		h.Respond.Write(w, reqID,
			apierr.New(apierr.CodeValidation, "token is not decodable"))
		return
	}

	httpx.WriteJSON(w, http.StatusOK, introspectResponse{
		Subject:   claims.Subject,
		Scopes:    claims.Scopes,
		Type:      string(claims.Type),
		IssuedAt:  claims.IssuedAt,
		ExpiresAt: claims.ExpiresAt,
		Expired:   claims.Expiry().Before(time.Now()),
		Verified:  false,
	})
}
