package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vouch/internal/endorsement"
	id "vouch/pkg/domain"
	"vouch/pkg/requestcontext"
)

// EndorsementService defines the endorsement ledger operations the
// transport needs.
type EndorsementService interface {
	Endorse(ctx context.Context, domainID id.DomainID, endorsee id.AccountID, weight int, note string, tags []string) (int64, error)
	Remove(ctx context.Context, domainID id.DomainID, endorsee id.AccountID) (int64, error)
	ListReceived(ctx context.Context, domainID id.DomainID, endorsee id.AccountID) ([]endorsement.Endorsement, error)
	ListGiven(ctx context.Context, domainID id.DomainID) ([]endorsement.Endorsement, error)
}

// EndorsementHandler handles endorsement ledger endpoints.
type EndorsementHandler struct {
	endorsements EndorsementService
	logger       *slog.Logger
}

func NewEndorsementHandler(endorsements EndorsementService, logger *slog.Logger) *EndorsementHandler {
	return &EndorsementHandler{endorsements: endorsements, logger: logger}
}

// Register registers the endorsement routes with the chi router.
func (h *EndorsementHandler) Register(r chi.Router) {
	r.Post("/domains/{domainID}/endorsements", h.handleEndorse)
	r.Delete("/domains/{domainID}/endorsements/{endorsee}", h.handleRemove)
	r.Get("/domains/{domainID}/endorsements/given", h.handleListGiven)
	r.Get("/domains/{domainID}/accounts/{account}/endorsements", h.handleListReceived)
}

type endorseRequest struct {
	Endorsee string   `json:"endorsee"`
	Weight   int      `json:"weight"`
	Note     string   `json:"note,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

type scoreResponse struct {
	Score int64 `json:"score"`
}

func (h *EndorsementHandler) handleEndorse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	domainID, err := domainIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req endorseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	endorsee, err := id.ParseAccountID(req.Endorsee)
	if err != nil {
		writeError(w, err)
		return
	}

	score, err := h.endorsements.Endorse(ctx, domainID, endorsee, req.Weight, req.Note, req.Tags)
	if err != nil {
		h.logger.WarnContext(ctx, "endorsement rejected",
			"request_id", requestcontext.RequestID(ctx),
			"domain_id", domainID.String(),
			"error", err.Error(),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, scoreResponse{Score: score})
}

func (h *EndorsementHandler) handleRemove(w http.ResponseWriter, r *http.Request) {
	domainID, err := domainIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	endorsee, err := accountParam(r, "endorsee")
	if err != nil {
		writeError(w, err)
		return
	}

	score, err := h.endorsements.Remove(r.Context(), domainID, endorsee)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, scoreResponse{Score: score})
}

func (h *EndorsementHandler) handleListReceived(w http.ResponseWriter, r *http.Request) {
	domainID, err := domainIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	account, err := accountParam(r, "account")
	if err != nil {
		writeError(w, err)
		return
	}

	endorsements, err := h.endorsements.ListReceived(r.Context(), domainID, account)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"endorsements": endorsements})
}

func (h *EndorsementHandler) handleListGiven(w http.ResponseWriter, r *http.Request) {
	domainID, err := domainIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	endorsements, err := h.endorsements.ListGiven(r.Context(), domainID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"endorsements": endorsements})
}
