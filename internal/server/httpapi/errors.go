package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/myfinance/finauth/internal/common"
)

var errMissingAuth = errors.New("missing authentication")

// errorBody is the JSON shape of every error response. Kind is a stable
// machine-readable discriminator; Hint tells clients how to recover from
// token-layer failures.
type errorBody struct {
	Error      string   `json:"error"`
	Kind       string   `json:"kind,omitempty"`
	Hint       string   `json:"hint,omitempty"`
	Detail     string   `json:"detail,omitempty"`
	Violations []string `json:"violations,omitempty"`
}

// writeError maps service errors onto the HTTP contract. Unknown errors
// become a generic 500 and are logged with detail server-side only.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var verr *common.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:      "password does not meet the policy",
			Kind:       "validation_failed",
			Violations: verr.Violations,
		})
		return
	}

	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorBody{
			Error: "invalid credentials",
			Kind:  "invalid_credentials",
		})
	case errors.Is(err, common.ErrTokenExpired):
		writeJSON(w, http.StatusUnauthorized, errorBody{
			Error: "token expired",
			Kind:  "token_expired",
			Hint:  "refresh",
		})
	case errors.Is(err, common.ErrTokenRevoked):
		writeJSON(w, http.StatusUnauthorized, errorBody{
			Error: "token revoked",
			Kind:  "token_revoked",
			Hint:  "re-login",
		})
	case errors.Is(err, common.ErrTokenReuseDetected):
		writeJSON(w, http.StatusUnauthorized, errorBody{
			Error: "refresh token already used",
			Kind:  "token_reuse_detected",
			Hint:  "re-login",
		})
	case errors.Is(err, common.ErrInvalidSignature),
		errors.Is(err, common.ErrMalformedToken),
		errors.Is(err, common.ErrWrongTokenKind),
		errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, errMissingAuth):
		writeJSON(w, http.StatusUnauthorized, errorBody{
			Error: "invalid token",
			Kind:  "invalid_token",
		})
	case errors.Is(err, common.ErrorNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{
			Error: "not found",
			Kind:  "not_found",
		})
	case errors.Is(err, common.ErrPersistenceUnavailable):
		h.log.Error(ctx, "persistence unavailable", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorBody{
			Error: "service temporarily unavailable",
			Kind:  "unavailable",
		})
	default:
		h.log.Error(ctx, "request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error: "internal error",
			Kind:  "internal",
		})
	}
}
