package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vouch/internal/registry"
	id "vouch/pkg/domain"
	"vouch/pkg/requestcontext"
)

// RegistryService defines the domain registry operations the transport
// needs.
type RegistryService interface {
	CreateDomain(ctx context.Context, title, description string, endorsementWeight, activityWeight, verificationWeight int, minEndorsements int64) (*registry.Domain, error)
	ValidateDomain(ctx context.Context, domainID id.DomainID) (*registry.Domain, error)
}

// RegistryHandler handles domain registry endpoints.
type RegistryHandler struct {
	registry RegistryService
	logger   *slog.Logger
}

func NewRegistryHandler(registry RegistryService, logger *slog.Logger) *RegistryHandler {
	return &RegistryHandler{registry: registry, logger: logger}
}

// Register registers the registry routes with the chi router.
func (h *RegistryHandler) Register(r chi.Router) {
	r.Post("/domains", h.handleCreateDomain)
	r.Get("/domains/{domainID}", h.handleGetDomain)
}

type createDomainRequest struct {
	Title              string `json:"title"`
	Description        string `json:"description"`
	EndorsementWeight  int    `json:"endorsement_weight"`
	ActivityWeight     int    `json:"activity_weight"`
	VerificationWeight int    `json:"verification_weight"`
	MinEndorsements    int64  `json:"min_endorsements"`
}

func (h *RegistryHandler) handleCreateDomain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createDomainRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	domain, err := h.registry.CreateDomain(ctx, req.Title, req.Description,
		req.EndorsementWeight, req.ActivityWeight, req.VerificationWeight, req.MinEndorsements)
	if err != nil {
		h.logger.WarnContext(ctx, "create domain rejected",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, domain)
}

func (h *RegistryHandler) handleGetDomain(w http.ResponseWriter, r *http.Request) {
	domainID, err := domainIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	domain, err := h.registry.ValidateDomain(r.Context(), domainID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domain)
}
