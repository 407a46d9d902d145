package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/catalog"
	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/observability"
)

// CatalogIndex exposes the live catalog snapshot and its reload.
type CatalogIndex interface {
	SnapshotProvider
	Reload(ctx context.Context) (*catalog.Snapshot, error)
}

// CacheInvalidator drops answers computed against an older catalog.
type CacheInvalidator interface {
	InvalidateCache(ctx context.Context) error
}

// CatalogHandler handles catalog inspection and reload.
type CatalogHandler struct {
	logger      *observability.Logger
	index       CatalogIndex
	invalidator CacheInvalidator
}

// NewCatalogHandler creates a new catalog handler. invalidator may be nil.
func NewCatalogHandler(logger *observability.Logger, index CatalogIndex, invalidator CacheInvalidator) *CatalogHandler {
	return &CatalogHandler{
		logger:      logger,
		index:       index,
		invalidator: invalidator,
	}
}

// CatalogResponseDTO describes the current catalog snapshot.
type CatalogResponseDTO struct {
	Version     int64    `json:"version"`
	Fingerprint string   `json:"fingerprint"`
	LoadedAt    string   `json:"loadedAt"`
	Count       int      `json:"count"`
	Models      []string `json:"models"`
}

// List handles GET /api/v1/catalog.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	snap, err := h.index.Current()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "catalog not loaded", "")
		return
	}
	writeJSON(w, http.StatusOK, toCatalogDTO(snap))
}

// Reload handles POST /api/v1/catalog/reload.
func (h *CatalogHandler) Reload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.WithContext(ctx)

	snap, err := h.index.Reload(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Catalog reload failed")
		writeError(w, http.StatusServiceUnavailable, "catalog reload failed", err.Error())
		return
	}

	if h.invalidator != nil {
		if err := h.invalidator.InvalidateCache(ctx); err != nil {
			logger.Warn().Err(err).Msg("Failed to invalidate answer cache")
		}
	}

	writeJSON(w, http.StatusOK, toCatalogDTO(snap))
}

func toCatalogDTO(snap *catalog.Snapshot) CatalogResponseDTO {
	return CatalogResponseDTO{
		Version:     snap.Version(),
		Fingerprint: snap.Fingerprint(),
		LoadedAt:    snap.LoadedAt().Format(time.RFC3339),
		Count:       snap.Len(),
		Models:      snap.Names(),
	}
}
