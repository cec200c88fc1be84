package auth

import (
	"net/http"
	"time"

	"github.com/mehmetcc/travelize/internal/httpx"
	"github.com/mehmetcc/travelize/internal/token"
	"go.uber.org/zap"
)

type Handler struct {
	logger *zap.Logger
	tokens token.TokenService
}

func NewHandler(tokens token.TokenService, l *zap.Logger) *Handler {
	return &Handler{
		logger: l,
		tokens: tokens,
	}
}

// IssueAccessToken signs whatever claim object the client posts.
func (h *Handler) IssueAccessToken(w http.ResponseWriter, r *http.Request) {
	var claims token.Claims
	if err := httpx.DecodeJSON(w, r, &claims); err != nil {
		h.logger.Warn("failed to decode access token request body", zap.Error(err))
		httpx.WriteDecodeError(w, err)
		return
	}
	if claims == nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse{
			Code:    httpx.ErrInvalidJSON,
			Message: "request body must be a JSON object",
		})
		return
	}

	signed, expiresAt, err := h.tokens.Issue(claims)
	if err != nil {
		httpx.Internal(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, accessTokenResponse{
		Token:     signed,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
}

type accessTokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}
