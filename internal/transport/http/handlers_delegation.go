package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vouch/internal/delegation"
	id "vouch/pkg/domain"
	"vouch/pkg/requestcontext"
)

// DelegationService defines the delegation and authorization operations the
// transport needs.
type DelegationService interface {
	AddVerificationProvider(ctx context.Context, domainID id.DomainID, account id.AccountID, title string, verificationTypes []string) (*delegation.DelegatedVerifier, error)
	RevokeVerificationProvider(ctx context.Context, domainID id.DomainID, account id.AccountID) error
	GetVerificationProvider(ctx context.Context, domainID id.DomainID, account id.AccountID) (*delegation.DelegatedVerifier, error)
	DelegateReputation(ctx context.Context, domainID id.DomainID, delegate id.AccountID, expiresAt uint64) (*delegation.Delegation, error)
	RemoveDelegation(ctx context.Context, domainID id.DomainID) error
	GetDelegation(ctx context.Context, domainID id.DomainID, delegator id.AccountID) (*delegation.Delegation, error)
}

// DelegationHandler handles verifier-provider and reputation-delegation
// endpoints.
type DelegationHandler struct {
	delegations DelegationService
	logger      *slog.Logger
}

func NewDelegationHandler(delegations DelegationService, logger *slog.Logger) *DelegationHandler {
	return &DelegationHandler{delegations: delegations, logger: logger}
}

// Register registers the delegation routes with the chi router.
func (h *DelegationHandler) Register(r chi.Router) {
	r.Post("/domains/{domainID}/verifiers", h.handleAddProvider)
	r.Delete("/domains/{domainID}/verifiers/{account}", h.handleRevokeProvider)
	r.Get("/domains/{domainID}/verifiers/{account}", h.handleGetProvider)
	r.Post("/domains/{domainID}/delegations", h.handleDelegate)
	r.Delete("/domains/{domainID}/delegations", h.handleRemoveDelegation)
	r.Get("/domains/{domainID}/delegations/{delegator}", h.handleGetDelegation)
}

type addProviderRequest struct {
	Account           string   `json:"account"`
	Title             string   `json:"title"`
	VerificationTypes []string `json:"verification_types"`
}

type delegateRequest struct {
	Delegate  string `json:"delegate"`
	ExpiresAt uint64 `json:"expires_at,omitempty"`
}

func (h *DelegationHandler) handleAddProvider(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	domainID, err := domainIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req addProviderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	account, err := id.ParseAccountID(req.Account)
	if err != nil {
		writeError(w, err)
		return
	}

	verifier, err := h.delegations.AddVerificationProvider(ctx, domainID, account, req.Title, req.VerificationTypes)
	if err != nil {
		h.logger.WarnContext(ctx, "add verification provider rejected",
			"request_id", requestcontext.RequestID(ctx),
			"domain_id", domainID.String(),
			"error", err.Error(),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, verifier)
}

func (h *DelegationHandler) handleRevokeProvider(w http.ResponseWriter, r *http.Request) {
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

	if err := h.delegations.RevokeVerificationProvider(r.Context(), domainID, account); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *DelegationHandler) handleGetProvider(w http.ResponseWriter, r *http.Request) {
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

	verifier, err := h.delegations.GetVerificationProvider(r.Context(), domainID, account)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, verifier)
}

func (h *DelegationHandler) handleDelegate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	domainID, err := domainIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req delegateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	delegate, err := id.ParseAccountID(req.Delegate)
	if err != nil {
		writeError(w, err)
		return
	}

	record, err := h.delegations.DelegateReputation(ctx, domainID, delegate, req.ExpiresAt)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

func (h *DelegationHandler) handleRemoveDelegation(w http.ResponseWriter, r *http.Request) {
	domainID, err := domainIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.delegations.RemoveDelegation(r.Context(), domainID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *DelegationHandler) handleGetDelegation(w http.ResponseWriter, r *http.Request) {
	domainID, err := domainIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	delegator, err := accountParam(r, "delegator")
	if err != nil {
		writeError(w, err)
		return
	}

	record, err := h.delegations.GetDelegation(r.Context(), domainID, delegator)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}
