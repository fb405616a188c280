package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/walletlink/internal/common"
)

// Client-visible error messages.
const (
	msgMissingAuth          = "Missing authorization header"
	msgInvalidToken         = "Invalid authorization token"
	msgInvalidBody          = "Invalid request body"
	msgWalletRequired       = "walletAddress is required"
	msgCompleteFields       = "sessionId, walletAddress, and signature are required"
	msgUnsupportedWallet    = "Unsupported walletType"
	msgWalletMismatch       = "walletAddress mismatch"
	msgSessionExpired       = "Session expired"
	msgSignatureFailed      = "Signature verification failed"
	msgSessionNotFound      = "Session not found"
	msgCreateSessionFailed  = "Failed to create wallet session"
	msgInternal             = "Internal server error"
	msgUnknownFeature       = "Unknown feature"
	msgFeatureOrRequirement = "feature or requirement is required"
	msgPayloadRequired      = "payload is required"
	msgWindowRange          = "windowSeconds must be between 0 and 31536000"
	msgKeyRequired          = "key is required"
	msgBodyTooLarge         = "Request body too large"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// statusFor maps a service error to a status code and a client message.
// Anything outside the known taxonomy is a 500 with fallback as the message.
func statusFor(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, common.ErrSignatureVerification):
		return http.StatusUnauthorized, msgSignatureFailed
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, msgInvalidToken
	case errors.Is(err, common.ErrWalletAddressRequired):
		return http.StatusBadRequest, msgWalletRequired
	case errors.Is(err, common.ErrCompleteFieldsMissing):
		return http.StatusBadRequest, msgCompleteFields
	case errors.Is(err, common.ErrUnsupportedWalletType):
		return http.StatusBadRequest, msgUnsupportedWallet
	case errors.Is(err, common.ErrWalletMismatch):
		return http.StatusBadRequest, msgWalletMismatch
	case errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest, msgInvalidBody
	case errors.Is(err, common.ErrSessionExpired):
		return http.StatusBadRequest, msgSessionExpired
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, msgSessionNotFound
	default:
		return http.StatusInternalServerError, fallback
	}
}
