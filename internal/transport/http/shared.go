package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
)

// writeJSON encodes the payload with the given status. Encoding failures
// after the header is written can only be logged by the caller.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// writeError translates domain errors into the JSON error envelope.
// Unknown errors map to 500 without leaking their message.
func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)
	message := "internal error"
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		message = domainErr.Message
	}
	writeJSON(w, status, map[string]string{
		"error":   string(code),
		"message": message,
	})
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}

func domainIDParam(r *http.Request) (id.DomainID, error) {
	domainID, err := id.ParseDomainID(chi.URLParam(r, "domainID"))
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid domain id")
	}
	return domainID, nil
}

func accountParam(r *http.Request, name string) (id.AccountID, error) {
	account, err := id.ParseAccountID(chi.URLParam(r, name))
	if err != nil {
		return "", dErrors.New(dErrors.CodeBadRequest, "invalid account")
	}
	return account, nil
}
