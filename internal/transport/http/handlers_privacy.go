package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vouch/internal/privacy"
	id "vouch/pkg/domain"
	"vouch/pkg/requestcontext"
)

// PrivacyService defines the privacy settings operations the transport
// needs.
type PrivacyService interface {
	Get(ctx context.Context, domainID id.DomainID, account id.AccountID) (*privacy.Settings, error)
	Update(ctx context.Context, domainID id.DomainID, settings privacy.Settings) (*privacy.Settings, error)
}

// PrivacyHandler handles the self-service privacy settings endpoints.
type PrivacyHandler struct {
	settings PrivacyService
	logger   *slog.Logger
}

func NewPrivacyHandler(settings PrivacyService, logger *slog.Logger) *PrivacyHandler {
	return &PrivacyHandler{settings: settings, logger: logger}
}

// Register registers the privacy routes with the chi router.
func (h *PrivacyHandler) Register(r chi.Router) {
	r.Get("/domains/{domainID}/privacy", h.handleGet)
	r.Put("/domains/{domainID}/privacy", h.handleUpdate)
}

type privacyRequest struct {
	ScorePublic         bool     `json:"score_public"`
	EndorsementsPublic  bool     `json:"endorsements_public"`
	ActivitiesPublic    bool     `json:"activities_public"`
	VerificationsPublic bool     `json:"verifications_public"`
	AuthorizedViewers   []string `json:"authorized_viewers,omitempty"`
}

func (h *PrivacyHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	domainID, err := domainIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	settings, err := h.settings.Get(ctx, domainID, requestcontext.Caller(ctx))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

func (h *PrivacyHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	domainID, err := domainIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req privacyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	viewers := make([]id.AccountID, 0, len(req.AuthorizedViewers))
	for _, raw := range req.AuthorizedViewers {
		viewer, err := id.ParseAccountID(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		viewers = append(viewers, viewer)
	}

	settings, err := h.settings.Update(ctx, domainID, privacy.Settings{
		DomainID:            domainID,
		Account:             requestcontext.Caller(ctx),
		ScorePublic:         req.ScorePublic,
		EndorsementsPublic:  req.EndorsementsPublic,
		ActivitiesPublic:    req.ActivitiesPublic,
		VerificationsPublic: req.VerificationsPublic,
		AuthorizedViewers:   viewers,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "privacy update rejected",
			"request_id", requestcontext.RequestID(ctx),
			"domain_id", domainID.String(),
			"error", err.Error(),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, settings)
}
