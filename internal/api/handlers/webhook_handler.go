package handlers

import (
	"encoding/json"
	goerrors "errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "gitroute/internal/api/context"
	"gitroute/internal/engine/registry"
	"gitroute/internal/pkg/errors"
	"gitroute/internal/platform/auth"
	"gitroute/internal/platform/models"
)

type WebhookHandler struct {
	svc *registry.Service
}

func NewWebhookHandler(svc *registry.Service) *WebhookHandler {
	return &WebhookHandler{svc: svc}
}

func claimsFrom(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(apiContext.Claims).(*auth.Claims)
	return claims
}

func paramsFrom(r *http.Request) httprouter.Params {
	params, _ := r.Context().Value(apiContext.Params).(httprouter.Params)
	return params
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *WebhookHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var req struct {
		Comment string `json:"comment"`
		Broken  bool   `json:"broken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	id, err := h.svc.CreateWebhook(r.Context(), claims.TenantID, claims.UserID, req.Comment, req.Broken)
	if err != nil {
		// The row exists even when delivery failed; hand the id back
		// alongside the failure so the caller can recover.
		if goerrors.Is(err, errors.ErrUnreachable) && id != "" {
			errors.WriteError(w, http.StatusBadGateway, errors.ErrCodeUnreachable, err.Error(),
				map[string]string{"id": id})
			return
		}
		errors.WriteTaxonomy(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *WebhookHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	views, err := h.svc.ListWebhooks(r.Context(), claims.TenantID)
	if err != nil {
		errors.WriteTaxonomy(w, err)
		return
	}

	writeJSON(w, http.StatusOK, views)
}

func (h *WebhookHandler) Edit(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id := paramsFrom(r).ByName("webhook_id")

	var patch models.WebhookPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if err := h.svc.EditWebhook(r.Context(), id, claims.TenantID, claims.UserID, patch); err != nil {
		errors.WriteTaxonomy(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id := paramsFrom(r).ByName("webhook_id")

	if err := h.svc.DeleteWebhook(r.Context(), id, claims.TenantID); err != nil {
		errors.WriteTaxonomy(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) RotateSecret(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id := paramsFrom(r).ByName("webhook_id")

	if err := h.svc.RotateSecret(r.Context(), id, claims.TenantID, claims.UserID); err != nil {
		errors.WriteTaxonomy(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
