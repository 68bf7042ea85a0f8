package activity

import (
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
)

// Activity is a self-reported action, keyed by (domain, activity id).
// The ledger is append-only: ids increase monotonically per domain,
// records are never deleted, and the only mutation is the one-way flip to
// verified.
type Activity struct {
	DomainID   id.DomainID  `json:"domain_id"`
	ID         uint64       `json:"id"`
	Account    id.AccountID `json:"account"`
	Type       string       `json:"type"`
	CreatedAt  uint64       `json:"created_at"`
	Points     int64        `json:"points"`
	DataHash   id.Hash      `json:"data_hash"`
	Verified   bool         `json:"verified"`
	VerifiedBy id.AccountID `json:"verified_by,omitempty"`
}

// Validate enforces field bounds.
func (a *Activity) Validate() error {
	if a.Type == "" {
		return dErrors.New(dErrors.CodeValidation, "activity type is required")
	}
	if len(a.Type) > id.MaxShortCodeLen {
		return dErrors.Newf(dErrors.CodeValidation, "activity type exceeds %d characters", id.MaxShortCodeLen)
	}
	if !a.DataHash.Valid() {
		return dErrors.Newf(dErrors.CodeValidation, "data hash must be %d bytes", id.HashSize)
	}
	if a.Points < 0 {
		return dErrors.New(dErrors.CodeValidation, "points must be non-negative")
	}
	return nil
}
