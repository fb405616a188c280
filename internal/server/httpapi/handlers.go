package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/walletlink/internal/challenge"
	"github.com/dmitrijs2005/walletlink/internal/gate"
	"github.com/dmitrijs2005/walletlink/internal/idempotency"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type startRequest struct {
	WalletAddress string `json:"walletAddress" validate:"required"`
	WalletType    string `json:"walletType"`
}

type startResponse struct {
	SessionID     string `json:"sessionId"`
	Nonce         string `json:"nonce"`
	MessageToSign string `json:"messageToSign"`
	ExpiresAt     string `json:"expiresAt"` // same rendering as in the message
}

type completeRequest struct {
	SessionID     string `json:"sessionId" validate:"required"`
	WalletAddress string `json:"walletAddress" validate:"required"`
	Signature     string `json:"signature" validate:"required"`
}

type completeResponse struct {
	OK            bool   `json:"ok"`
	AlreadyLinked bool   `json:"alreadyLinked,omitempty"`
	WalletAddress string `json:"walletAddress,omitempty"`
}

type walletLinkResponse struct {
	WalletAddress string    `json:"walletAddress"`
	WalletType    string    `json:"walletType"`
	SessionID     string    `json:"sessionId"`
	LinkedAt      time.Time `json:"linkedAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type idempotencyRequest struct {
	Payload       map[string]any `json:"payload" validate:"required"`
	WindowSeconds int            `json:"windowSeconds" validate:"gte=0,lte=31536000"`
}

type idempotencyResponse struct {
	Key       string `json:"key"`
	Duplicate bool   `json:"duplicate"`
}

type gateRequest struct {
	Feature     string            `json:"feature"`
	Requirement *gate.Requirement `json:"requirement"`
	Context     gate.Context      `json:"context"`
}

type gateResponse struct {
	Allowed bool `json:"allowed"`
}

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 64 << 10

// decodeJSON decodes the body into v and writes the 400 or 413 response
// itself when it fails.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
		return false
	}
	writeError(w, http.StatusBadRequest, msgInvalidBody)
	return false
}

func (a *api) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *api) startWalletLink(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.WalletAddress = strings.TrimSpace(req.WalletAddress)
	if err := a.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, msgWalletRequired)
		return
	}

	ctx := r.Context()
	res, err := a.Links.Start(ctx, UserIDFromContext(ctx), req.WalletAddress, req.WalletType)
	if err != nil {
		status, msg := statusFor(err, msgCreateSessionFailed)
		if status == http.StatusInternalServerError {
			a.Logger.Error(ctx, "wallet link start failed", "error", err)
		}
		a.Metrics.linkOutcome("start", outcomeLabel(status))
		writeError(w, status, msg)
		return
	}

	a.Metrics.linkOutcome("start", "ok")
	writeJSON(w, http.StatusOK, startResponse{
		SessionID:     res.SessionID,
		Nonce:         res.Nonce,
		MessageToSign: res.MessageToSign,
		ExpiresAt:     res.ExpiresAt.UTC().Format(challenge.TimeLayout),
	})
}

func (a *api) completeWalletLink(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.SessionID = strings.TrimSpace(req.SessionID)
	req.WalletAddress = strings.TrimSpace(req.WalletAddress)
	req.Signature = strings.TrimSpace(req.Signature)
	if err := a.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, msgCompleteFields)
		return
	}

	ctx := r.Context()
	res, err := a.Links.Complete(ctx, req.SessionID, UserIDFromContext(ctx), req.WalletAddress, req.Signature)
	if err != nil {
		status, msg := statusFor(err, msgInternal)
		if status == http.StatusInternalServerError {
			a.Logger.Error(ctx, "wallet link completion failed", "error", err)
		}
		a.Metrics.linkOutcome("complete", outcomeLabel(status))
		writeError(w, status, msg)
		return
	}

	if res.AlreadyLinked {
		a.Metrics.linkOutcome("complete", "already_linked")
		writeJSON(w, http.StatusOK, completeResponse{OK: true, AlreadyLinked: true})
		return
	}
	a.Metrics.linkOutcome("complete", "ok")
	writeJSON(w, http.StatusOK, completeResponse{OK: true, WalletAddress: res.WalletAddress})
}

func (a *api) listWalletLinks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	links, err := a.Links.ListLinks(ctx, UserIDFromContext(ctx))
	if err != nil {
		status, msg := statusFor(err, msgInternal)
		if status == http.StatusInternalServerError {
			a.Logger.Error(ctx, "listing wallet links failed", "error", err)
		}
		writeError(w, status, msg)
		return
	}

	out := make([]walletLinkResponse, 0, len(links))
	for _, l := range links {
		out = append(out, walletLinkResponse{
			WalletAddress: l.WalletAddress,
			WalletType:    l.WalletType,
			SessionID:     l.SessionID,
			LinkedAt:      l.LinkedAt,
			UpdatedAt:     l.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"links": out})
}

func (a *api) deriveIdempotencyKey(w http.ResponseWriter, r *http.Request) {
	var req idempotencyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := a.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			switch verrs[0].Field() {
			case "Payload":
				writeError(w, http.StatusBadRequest, msgPayloadRequired)
				return
			case "WindowSeconds":
				writeError(w, http.StatusBadRequest, msgWindowRange)
				return
			}
		}
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	window := req.WindowSeconds
	if window == 0 {
		window = int(a.IdempotencyWindow / time.Second)
	}

	ctx := r.Context()
	key, err := a.Deriver.Derive(idempotency.Payload(req.Payload), window)
	if err != nil {
		if errors.Is(err, idempotency.ErrWindowTooLarge) {
			writeError(w, http.StatusBadRequest, msgWindowRange)
			return
		}
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	duplicate := false
	if a.Keys != nil {
		claimed, err := a.Keys.Claim(ctx, UserIDFromContext(ctx)+":"+key, time.Duration(window)*time.Second)
		if err != nil {
			a.Logger.Error(ctx, "idempotency claim failed", "error", err)
			writeError(w, http.StatusInternalServerError, msgInternal)
			return
		}
		duplicate = !claimed
		if duplicate {
			a.Metrics.duplicate.Inc()
		}
	}

	writeJSON(w, http.StatusOK, idempotencyResponse{Key: key, Duplicate: duplicate})
}

// releaseIdempotencyKey forgets a claimed key so the client can resubmit the
// same action after its submission failed downstream.
func (a *api) releaseIdempotencyKey(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(chi.URLParam(r, "key"))
	if key == "" {
		writeError(w, http.StatusBadRequest, msgKeyRequired)
		return
	}

	ctx := r.Context()
	if a.Keys != nil {
		if err := a.Keys.Release(ctx, UserIDFromContext(ctx)+":"+key); err != nil {
			a.Logger.Error(ctx, "idempotency release failed", "error", err)
			writeError(w, http.StatusInternalServerError, msgInternal)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) checkGate(w http.ResponseWriter, r *http.Request) {
	var req gateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Requirement != nil {
		writeJSON(w, http.StatusOK, gateResponse{Allowed: gate.Evaluate(*req.Requirement, req.Context)})
		return
	}
	if strings.TrimSpace(req.Feature) == "" {
		writeError(w, http.StatusBadRequest, msgFeatureOrRequirement)
		return
	}

	allowed, err := a.Gates.Check(req.Feature, req.Context)
	if err != nil {
		if errors.Is(err, gate.ErrUnknownFeature) {
			writeError(w, http.StatusNotFound, msgUnknownFeature)
			return
		}
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, gateResponse{Allowed: allowed})
}

func outcomeLabel(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return "unauthorized"
	case status == http.StatusNotFound:
		return "not_found"
	case status >= 500:
		return "error"
	default:
		return "rejected"
	}
}
