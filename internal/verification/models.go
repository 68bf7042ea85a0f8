package verification

import (
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
)

// Tier bounds for an issued verification.
const (
	MinTier = 1
	MaxTier = 5
)

// Verification is an authority-issued credential, keyed by (domain,
// account, type). At most one active record per pair: re-verification of
// the same type overwrites. Revocation is a soft delete.
type Verification struct {
	DomainID   id.DomainID  `json:"domain_id"`
	Account    id.AccountID `json:"account"`
	Type       string       `json:"type"`
	VerifiedBy id.AccountID `json:"verified_by"`
	VerifiedAt uint64       `json:"verified_at"`
	// ExpiresAt is a logical height; 0 means no expiry.
	ExpiresAt    uint64  `json:"expires_at,omitempty"`
	EvidenceHash id.Hash `json:"evidence_hash"`
	Tier         int64   `json:"tier"`
	Active       bool    `json:"active"`
}

// Validate enforces tier, type, and hash bounds.
func (v *Verification) Validate() error {
	if v.Type == "" {
		return dErrors.New(dErrors.CodeValidation, "verification type is required")
	}
	if len(v.Type) > id.MaxShortCodeLen {
		return dErrors.Newf(dErrors.CodeValidation, "verification type exceeds %d characters", id.MaxShortCodeLen)
	}
	if !v.EvidenceHash.Valid() {
		return dErrors.Newf(dErrors.CodeValidation, "evidence hash must be %d bytes", id.HashSize)
	}
	if v.Tier < MinTier || v.Tier > MaxTier {
		return dErrors.Newf(dErrors.CodeValidation, "tier must be between %d and %d", MinTier, MaxTier)
	}
	return nil
}

// IsCurrent reports whether the record is active and unexpired at the
// given height.
func (v *Verification) IsCurrent(height uint64) bool {
	if !v.Active {
		return false
	}
	if v.ExpiresAt != 0 && height >= v.ExpiresAt {
		return false
	}
	return true
}
