package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"gitroute/internal/engine/registry"
	"gitroute/internal/pkg/errors"
)

// Snapshot files are small, but don't let a client stream arbitrary
// amounts into the decoder.
const maxSnapshotBytes = 1 << 20

type BackupHandler struct {
	svc *registry.Service
}

func NewBackupHandler(svc *registry.Service) *BackupHandler {
	return &BackupHandler{svc: svc}
}

func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	webhookID := paramsFrom(r).ByName("webhook_id")

	snap, err := h.svc.ExportBackup(r.Context(), webhookID, claims.TenantID)
	if err != nil {
		errors.WriteTaxonomy(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="routes_`+webhookID+`.json"`)
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(snap)
}

func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	webhookID := paramsFrom(r).ByName("webhook_id")

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxSnapshotBytes))
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Failed to read snapshot", nil)
		return
	}

	result, err := h.svc.ImportBackup(r.Context(), webhookID, claims.TenantID, claims.UserID, raw)
	if err != nil {
		errors.WriteTaxonomy(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
