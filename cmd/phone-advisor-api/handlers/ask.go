package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/catalog"
	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/observability"
	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/retrieval"
)

// Answerer composes answers against a catalog snapshot.
type Answerer interface {
	Answer(ctx context.Context, snap *catalog.Snapshot, question string) (*retrieval.Answer, error)
}

// SnapshotProvider returns the catalog snapshot to answer against.
type SnapshotProvider interface {
	Current() (*catalog.Snapshot, error)
}

// AskHandler handles question answering requests.
type AskHandler struct {
	logger   *observability.Logger
	answerer Answerer
	catalog  SnapshotProvider
	validate *validator.Validate
}

// NewAskHandler creates a new ask handler.
func NewAskHandler(logger *observability.Logger, answerer Answerer, catalog SnapshotProvider) *AskHandler {
	return &AskHandler{
		logger:   logger,
		answerer: answerer,
		catalog:  catalog,
		validate: validator.New(),
	}
}

// MaxAskBodyBytes caps the POST /ask body. The question itself has no length limit.
const MaxAskBodyBytes = 1 << 20

// AskRequestDTO is the body of POST /ask. Only a missing or null question is
// rejected; empty text is answered with the help message.
type AskRequestDTO struct {
	Question *string `json:"question" validate:"required"`
}

// AskResponseDTO is the reply to POST /ask.
type AskResponseDTO struct {
	Answer string `json:"answer"`
}

// Ask handles POST /ask.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AskRequestDTO
	body := http.MaxBytesReader(w, r.Body, MaxAskBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large", err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "question is required", err.Error())
		return
	}

	snap, err := h.catalog.Current()
	if err != nil {
		h.logger.WithContext(ctx).Error().Err(err).Msg("Catalog unavailable")
		writeError(w, http.StatusServiceUnavailable, "catalog not loaded", "")
		return
	}

	ans, err := h.answerer.Answer(ctx, snap, *req.Question)
	if err != nil {
		// the router already logged the store failure
		if !errors.Is(err, retrieval.ErrUpstreamUnavailable) {
			h.logger.WithContext(ctx).Error().Err(err).Msg("Unexpected answer error")
		}
		writeError(w, http.StatusInternalServerError, "could not answer question", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, AskResponseDTO{Answer: ans.Text})
}
