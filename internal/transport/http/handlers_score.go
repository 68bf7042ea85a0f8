package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vouch/internal/scoring"
	id "vouch/pkg/domain"
)

// ScoreService defines the privacy-gated score read operations the
// transport needs.
type ScoreService interface {
	GetScore(ctx context.Context, domainID id.DomainID, account id.AccountID) (int64, error)
	GetReputation(ctx context.Context, domainID id.DomainID, account id.AccountID) (*scoring.Record, error)
}

// ScoreHandler handles reputation read endpoints.
type ScoreHandler struct {
	scores ScoreService
	logger *slog.Logger
}

func NewScoreHandler(scores ScoreService, logger *slog.Logger) *ScoreHandler {
	return &ScoreHandler{scores: scores, logger: logger}
}

// Register registers the score routes with the chi router.
func (h *ScoreHandler) Register(r chi.Router) {
	r.Get("/domains/{domainID}/accounts/{account}/score", h.handleGetScore)
	r.Get("/domains/{domainID}/accounts/{account}/reputation", h.handleGetReputation)
}

func (h *ScoreHandler) handleGetScore(w http.ResponseWriter, r *http.Request) {
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

	score, err := h.scores.GetScore(r.Context(), domainID, account)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, scoreResponse{Score: score})
}

func (h *ScoreHandler) handleGetReputation(w http.ResponseWriter, r *http.Request) {
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

	record, err := h.scores.GetReputation(r.Context(), domainID, account)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}
