package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/credvault/credvault/internal/logger"
	"github.com/credvault/credvault/internal/service"
	"github.com/credvault/credvault/internal/store"
	"github.com/credvault/credvault/internal/utils"
	"github.com/credvault/credvault/models"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		utils.WriteJSONError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	registered, err := h.services.AuthService.Register(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDataProvided):
			log.Err(err).Msg("invalid data provided")
			utils.WriteJSONError(w, "invalid data provided", http.StatusBadRequest)
			return
		case errors.Is(err, store.ErrUsernameTaken):
			log.Err(err).Msg("username already exists")
			utils.WriteJSONError(w, "username already exists", http.StatusConflict)
			return
		default:
			log.Err(err).Msg("unexpected error occurred during user registration")
			utils.WriteJSONError(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}

	// No token here: a fresh account still has to walk the full two-step
	// login before it can touch the vault.
	utils.WriteJSON(w, registered, http.StatusCreated)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		utils.WriteJSONError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	challenge, err := h.services.AuthService.BeginLogin(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDataProvided):
			log.Err(err).Msg("invalid data provided")
			utils.WriteJSONError(w, "invalid data provided", http.StatusBadRequest)
			return
		case errors.Is(err, service.ErrWrongPassword):
			log.Err(err).Msg("wrong username/password")
			utils.WriteJSONError(w, "invalid username/password", http.StatusUnauthorized)
			return
		default:
			log.Err(err).Msg("unexpected error occurred during login")
			utils.WriteJSONError(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}

	utils.WriteJSON(w, models.LoginResponse{
		PendingMarker: challenge.PendingMarker,
		ExpiresAt:     challenge.ExpiresAt,
		TotpSecret:    challenge.TotpSecret,
		TotpURI:       challenge.TotpURI,
	}, http.StatusOK)
}

func (h *Handler) totpVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.TotpVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		utils.WriteJSONError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	issued, err := h.services.AuthService.CompleteLogin(ctx, req.PendingMarker, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDataProvided):
			log.Err(err).Msg("invalid data provided")
			utils.WriteJSONError(w, "invalid data provided", http.StatusBadRequest)
			return
		case errors.Is(err, service.ErrMfaCodeInvalid):
			log.Err(err).Msg("mfa code rejected")
			utils.WriteJSONError(w, "invalid verification code", http.StatusUnauthorized)
			return
		case errors.Is(err, service.ErrMfaInvalid):
			log.Err(err).Msg("pending login expired or invalid")
			utils.WriteJSONError(w, "pending login expired or invalid", http.StatusUnauthorized)
			return
		default:
			log.Err(err).Msg("unexpected error occurred during mfa verification")
			utils.WriteJSONError(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}

	resp := models.TokenResponse{Token: issued.SignedString}
	if issued.ExpiresAt != nil {
		resp.ExpiresAt = issued.ExpiresAt.Time
	}

	utils.WriteJSON(w, resp, http.StatusOK)
}

func (h *Handler) totpRotate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		log.Error().Msg("no user id in context")
		utils.WriteJSONError(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req models.TotpRotateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		utils.WriteJSONError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	challenge, err := h.services.AuthService.RotateTotp(ctx, userID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDataProvided):
			utils.WriteJSONError(w, "invalid data provided", http.StatusBadRequest)
			return
		case errors.Is(err, service.ErrMfaCodeInvalid):
			log.Err(err).Msg("rotation code rejected")
			utils.WriteJSONError(w, "invalid verification code", http.StatusUnauthorized)
			return
		case errors.Is(err, service.ErrNoEnrollment):
			utils.WriteJSONError(w, "no mfa enrollment to rotate", http.StatusConflict)
			return
		default:
			log.Err(err).Msg("unexpected error occurred during totp rotation")
			utils.WriteJSONError(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}

	utils.WriteJSON(w, models.LoginResponse{
		PendingMarker: challenge.PendingMarker,
		ExpiresAt:     challenge.ExpiresAt,
		TotpSecret:    challenge.TotpSecret,
		TotpURI:       challenge.TotpURI,
	}, http.StatusOK)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	// The auth middleware already verified the header; re-extract the raw
	// token so its fingerprint can be deny-listed.
	tokenString, err := getTokenFromAuthHeader(r.Header.Get("Authorization"))
	if err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusUnauthorized)
		return
	}

	parsed, err := h.services.AuthService.ParseToken(ctx, tokenString)
	if err != nil {
		log.Err(err).Msg("token no longer valid at logout")
		utils.WriteJSONError(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	if err := h.services.AuthService.Logout(ctx, parsed); err != nil {
		log.Err(err).Msg("logout failed")
		utils.WriteJSONError(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
