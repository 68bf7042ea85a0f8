package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"vouch/internal/activity"
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/requestcontext"
)

// ActivityService defines the activity ledger operations the transport
// needs.
type ActivityService interface {
	Record(ctx context.Context, domainID id.DomainID, activityType string, points int64, dataHash id.Hash) (uint64, error)
	Verify(ctx context.Context, domainID id.DomainID, activityID uint64) (int64, error)
	Get(ctx context.Context, domainID id.DomainID, activityID uint64) (*activity.Activity, error)
	ListByAccount(ctx context.Context, domainID id.DomainID, account id.AccountID) ([]activity.Activity, error)
}

// ActivityHandler handles activity ledger endpoints.
type ActivityHandler struct {
	activities ActivityService
	logger     *slog.Logger
}

func NewActivityHandler(activities ActivityService, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{activities: activities, logger: logger}
}

// Register registers the activity routes with the chi router.
func (h *ActivityHandler) Register(r chi.Router) {
	r.Post("/domains/{domainID}/activities", h.handleRecord)
	r.Post("/domains/{domainID}/activities/{activityID}/verify", h.handleVerify)
	r.Get("/domains/{domainID}/activities/{activityID}", h.handleGet)
	r.Get("/domains/{domainID}/accounts/{account}/activities", h.handleListByAccount)
}

type recordActivityRequest struct {
	Type string `json:"type"`
	// DataHash is the hex-encoded 32-byte hash of the off-ledger evidence.
	DataHash string `json:"data_hash"`
	Points   int64  `json:"points"`
}

type recordActivityResponse struct {
	ActivityID uint64 `json:"activity_id"`
}

func (h *ActivityHandler) handleRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	domainID, err := domainIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req recordActivityRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	dataHash, err := id.ParseHash(req.DataHash)
	if err != nil {
		writeError(w, err)
		return
	}

	activityID, err := h.activities.Record(ctx, domainID, req.Type, req.Points, dataHash)
	if err != nil {
		h.logger.WarnContext(ctx, "activity rejected",
			"request_id", requestcontext.RequestID(ctx),
			"domain_id", domainID.String(),
			"error", err.Error(),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, recordActivityResponse{ActivityID: activityID})
}

func (h *ActivityHandler) handleVerify(w http.ResponseWriter, r *http.Request) {
	domainID, err := domainIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	activityID, err := activityIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	score, err := h.activities.Verify(r.Context(), domainID, activityID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, scoreResponse{Score: score})
}

func (h *ActivityHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	domainID, err := domainIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	activityID, err := activityIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	record, err := h.activities.Get(r.Context(), domainID, activityID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (h *ActivityHandler) handleListByAccount(w http.ResponseWriter, r *http.Request) {
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

	activities, err := h.activities.ListByAccount(r.Context(), domainID, account)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"activities": activities})
}

func activityIDParam(r *http.Request) (uint64, error) {
	activityID, err := strconv.ParseUint(chi.URLParam(r, "activityID"), 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid activity id")
	}
	return activityID, nil
}
