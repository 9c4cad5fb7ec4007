package handlers

import (
	"encoding/json"
	"net/http"

	"gitroute/internal/engine/registry"
	"gitroute/internal/pkg/errors"
)

type RouteHandler struct {
	svc *registry.Service
}

func NewRouteHandler(svc *registry.Service) *RouteHandler {
	return &RouteHandler{svc: svc}
}

func (h *RouteHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	webhookID := paramsFrom(r).ByName("webhook_id")

	var req struct {
		Owner   string `json:"owner"`
		Name    string `json:"name"`
		Channel string `json:"channel"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.Owner == "" || req.Name == "" || req.Channel == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "owner, name and channel are required", nil)
		return
	}

	id, err := h.svc.CreateRoute(r.Context(), webhookID, claims.TenantID, claims.UserID, req.Owner, req.Name, req.Channel)
	if err != nil {
		errors.WriteTaxonomy(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *RouteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id := paramsFrom(r).ByName("route_id")

	if err := h.svc.DeleteRoute(r.Context(), id, claims.TenantID); err != nil {
		errors.WriteTaxonomy(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *RouteHandler) SetChannel(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id := paramsFrom(r).ByName("route_id")

	var req struct {
		Channel string `json:"channel"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Channel == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "channel is required", nil)
		return
	}

	if err := h.svc.SetRouteChannel(r.Context(), id, claims.TenantID, claims.UserID, req.Channel); err != nil {
		errors.WriteTaxonomy(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *RouteHandler) SetEvents(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id := paramsFrom(r).ByName("route_id")

	var req struct {
		Events string `json:"events"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if err := h.svc.SetRouteEvents(r.Context(), id, claims.TenantID, claims.UserID, req.Events); err != nil {
		errors.WriteTaxonomy(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *RouteHandler) ClearEvents(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id := paramsFrom(r).ByName("route_id")

	if err := h.svc.ClearRouteEvents(r.Context(), id, claims.TenantID, claims.UserID); err != nil {
		errors.WriteTaxonomy(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
