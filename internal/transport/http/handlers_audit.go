package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vouch/internal/audit"
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/requestcontext"
)

// AuditService defines the audit trail read operation the transport needs.
type AuditService interface {
	List(ctx context.Context, domainID id.DomainID, subject id.AccountID) ([]audit.Event, error)
}

// AuditHandler exposes an account's own audit trail.
type AuditHandler struct {
	events AuditService
	logger *slog.Logger
}

func NewAuditHandler(events AuditService, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{events: events, logger: logger}
}

// Register registers the audit routes with the chi router.
func (h *AuditHandler) Register(r chi.Router) {
	r.Get("/domains/{domainID}/accounts/{account}/audit", h.handleList)
}

// handleList returns the events where the account is the subject. Only the
// account itself may read its trail.
func (h *AuditHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
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
	if requestcontext.Caller(ctx) != account {
		writeError(w, dErrors.New(dErrors.CodeUnauthorized, "audit trail is only visible to its subject"))
		return
	}

	events, err := h.events.List(ctx, domainID, account)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}
