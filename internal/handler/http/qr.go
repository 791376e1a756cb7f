package http

import (
	"errors"
	"image/png"
	"net/http"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"

	"github.com/credvault/credvault/internal/logger"
	"github.com/credvault/credvault/internal/service"
	"github.com/credvault/credvault/internal/utils"
)

const qrImageSize = 256

// totpQR renders the provisioning URI of a pending enrollment as a QR code
// PNG, so an authenticator app can scan it instead of typing the secret.
// The marker id scopes the request; no bearer token exists yet at this
// point of the protocol.
//
// GET /api/auth/totp/qr?marker=<pending marker id>
func (h *Handler) totpQR(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	markerID := r.URL.Query().Get("marker")

	uri, err := h.services.AuthService.EnrollmentURI(ctx, markerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDataProvided):
			utils.WriteJSONError(w, "marker query parameter is required", http.StatusBadRequest)
			return
		case errors.Is(err, service.ErrMfaInvalid):
			utils.WriteJSONError(w, "pending login expired or invalid", http.StatusNotFound)
			return
		case errors.Is(err, service.ErrNoEnrollment):
			utils.WriteJSONError(w, "no enrollment in progress", http.StatusConflict)
			return
		default:
			log.Err(err).Msg("unexpected error building provisioning uri")
			utils.WriteJSONError(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}

	code, err := qr.Encode(uri, qr.M, qr.Auto)
	if err != nil {
		log.Err(err).Msg("qr encoding failed")
		utils.WriteJSONError(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	code, err = barcode.Scale(code, qrImageSize, qrImageSize)
	if err != nil {
		log.Err(err).Msg("qr scaling failed")
		utils.WriteJSONError(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := png.Encode(w, code); err != nil {
		log.Err(err).Msg("qr png write failed")
	}
}
