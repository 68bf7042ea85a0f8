package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vouch/internal/verification"
	id "vouch/pkg/domain"
	"vouch/pkg/requestcontext"
)

// VerificationService defines the verification ledger operations the
// transport needs.
type VerificationService interface {
	Add(ctx context.Context, domainID id.DomainID, account id.AccountID, verificationType string, evidenceHash id.Hash, tier int64, expiresAt uint64) (int64, error)
	Revoke(ctx context.Context, domainID id.DomainID, account id.AccountID, verificationType string) (int64, error)
	Get(ctx context.Context, domainID id.DomainID, account id.AccountID, verificationType string) (*verification.Verification, error)
	ListByAccount(ctx context.Context, domainID id.DomainID, account id.AccountID) ([]verification.Verification, error)
}

// VerificationHandler handles verification ledger endpoints.
type VerificationHandler struct {
	verifications VerificationService
	logger        *slog.Logger
}

func NewVerificationHandler(verifications VerificationService, logger *slog.Logger) *VerificationHandler {
	return &VerificationHandler{verifications: verifications, logger: logger}
}

// Register registers the verification routes with the chi router.
func (h *VerificationHandler) Register(r chi.Router) {
	r.Post("/domains/{domainID}/accounts/{account}/verifications", h.handleAdd)
	r.Delete("/domains/{domainID}/accounts/{account}/verifications/{verificationType}", h.handleRevoke)
	r.Get("/domains/{domainID}/accounts/{account}/verifications/{verificationType}", h.handleGet)
	r.Get("/domains/{domainID}/accounts/{account}/verifications", h.handleListByAccount)
}

type addVerificationRequest struct {
	Type string `json:"type"`
	// EvidenceHash is the hex-encoded 32-byte hash of the off-ledger
	// evidence.
	EvidenceHash string `json:"evidence_hash"`
	Tier         int64  `json:"tier"`
	ExpiresAt    uint64 `json:"expires_at,omitempty"`
}

func (h *VerificationHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
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

	var req addVerificationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	evidenceHash, err := id.ParseHash(req.EvidenceHash)
	if err != nil {
		writeError(w, err)
		return
	}

	score, err := h.verifications.Add(ctx, domainID, account, req.Type, evidenceHash, req.Tier, req.ExpiresAt)
	if err != nil {
		h.logger.WarnContext(ctx, "verification rejected",
			"request_id", requestcontext.RequestID(ctx),
			"domain_id", domainID.String(),
			"error", err.Error(),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, scoreResponse{Score: score})
}

func (h *VerificationHandler) handleRevoke(w http.ResponseWriter, r *http.Request) {
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

	score, err := h.verifications.Revoke(r.Context(), domainID, account, chi.URLParam(r, "verificationType"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, scoreResponse{Score: score})
}

func (h *VerificationHandler) handleGet(w http.ResponseWriter, r *http.Request) {
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

	record, err := h.verifications.Get(r.Context(), domainID, account, chi.URLParam(r, "verificationType"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (h *VerificationHandler) handleListByAccount(w http.ResponseWriter, r *http.Request) {
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

	verifications, err := h.verifications.ListByAccount(r.Context(), domainID, account)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"verifications": verifications})
}
