// Package httpapi exposes the credential service over a JSON HTTP API.
// Handlers are thin glue: decode, validate, call the service, map errors.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/myfinance/finauth/internal/logging"
	"github.com/myfinance/finauth/internal/server/auth"
	"github.com/myfinance/finauth/internal/server/models"
	"github.com/myfinance/finauth/internal/server/password"
	"github.com/myfinance/finauth/internal/server/services"
)

// Credentials is the service surface the handlers need.
type Credentials interface {
	ValidatePassword(candidate string) password.ValidationResult
	Register(ctx context.Context, req *services.RegisterRequest) (*models.UserProfile, error)
	Login(ctx context.Context, email, plainPassword string) (*models.TokenPair, error)
	Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, resetToken, newPassword string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
}

// Handler serves the /api/v1/auth endpoints.
type Handler struct {
	svc      Credentials
	validate *validator.Validate
	log      logging.Logger
}

// NewHandler constructs a Handler over the credential service.
func NewHandler(svc Credentials, log logging.Logger) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
		log:      log,
	}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	FullName string `json:"full_name" validate:"required"`
	Timezone string `json:"timezone"`
	Currency string `json:"currency"`
	Language string `json:"language"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}

	profile, err := h.svc.Register(r.Context(), &services.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Timezone: req.Timezone,
		Currency: req.Currency,
		Language: req.Language,
	})
	if err != nil {
		h.writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":        profile.ID,
		"email":     profile.Email,
		"full_name": profile.FullName,
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	pair, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(r.Context(), w, err)
		return
	}
	writeTokenPair(w, pair)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !h.decode(w, r, &req) {
		return
	}

	pair, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.writeError(r.Context(), w, err)
		return
	}
	writeTokenPair(w, pair)
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Logout revokes the bearer token from the Authorization header and, when
// provided, the refresh token from the body.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if r.ContentLength > 0 {
		if !h.decode(w, r, &req) {
			return
		}
	}

	if err := h.svc.Logout(r.Context(), bearerToken(r), req.RefreshToken); err != nil {
		h.writeError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type validatePasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

func (h *Handler) ValidatePassword(w http.ResponseWriter, r *http.Request) {
	var req validatePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	res := h.svc.ValidatePassword(req.Password)
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":       res.Valid,
		"score":       res.Score,
		"strength":    password.StrengthDescription(res.Score),
		"errors":      res.Errors,
		"suggestions": password.SuggestImprovements(req.Password),
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword acknowledges every well-formed request identically, whether
// or not the e-mail is registered.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.svc.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"message": "if the e-mail is registered, a reset link has been sent",
	})
}

type resetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.svc.ConfirmPasswordReset(r.Context(), req.Token, req.NewPassword); err != nil {
		h.writeError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		h.writeError(r.Context(), w, errMissingAuth)
		return
	}

	var req changePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.svc.ChangePassword(r.Context(), claims.Subject, req.CurrentPassword, req.NewPassword); err != nil {
		h.writeError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		h.writeError(r.Context(), w, errMissingAuth)
		return
	}

	profile, err := h.svc.GetProfile(r.Context(), claims.Subject)
	if err != nil {
		h.writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":        profile.ID,
		"email":     profile.Email,
		"full_name": profile.FullName,
		"timezone":  profile.Timezone,
		"currency":  profile.Currency,
		"language":  profile.Language,
	})
}

// decode unmarshals and validates the request body, writing a 400 itself when
// either step fails.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body"})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request", Detail: err.Error()})
		return false
	}
	return true
}

func writeTokenPair(w http.ResponseWriter, pair *models.TokenPair) {
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    "Bearer",
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
