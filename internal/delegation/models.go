package delegation

import (
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
)

// DelegatedVerifier grants a non-owner account permission to perform
// verification-mutating operations within the listed types. Keyed by
// (domain, verifier account); re-approval overwrites.
type DelegatedVerifier struct {
	DomainID          id.DomainID  `json:"domain_id"`
	Account           id.AccountID `json:"account"`
	Title             string       `json:"title"`
	ApprovedBy        id.AccountID `json:"approved_by"`
	ApprovedAt        uint64       `json:"approved_at"`
	VerificationTypes []string     `json:"verification_types"`
	Active            bool         `json:"active"`
}

// Validate enforces field bounds.
func (v *DelegatedVerifier) Validate() error {
	if v.Title == "" {
		return dErrors.New(dErrors.CodeValidation, "verifier title is required")
	}
	if len(v.Title) > id.MaxTitleLen {
		return dErrors.Newf(dErrors.CodeValidation, "verifier title exceeds %d characters", id.MaxTitleLen)
	}
	if len(v.VerificationTypes) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one verification type is required")
	}
	if len(v.VerificationTypes) > id.MaxVerificationTypes {
		return dErrors.Newf(dErrors.CodeValidation, "verification types exceed %d entries", id.MaxVerificationTypes)
	}
	for _, vt := range v.VerificationTypes {
		if vt == "" {
			return dErrors.New(dErrors.CodeValidation, "verification type is empty")
		}
		if len(vt) > id.MaxShortCodeLen {
			return dErrors.Newf(dErrors.CodeValidation, "verification type exceeds %d characters", id.MaxShortCodeLen)
		}
	}
	return nil
}

// CoversType reports whether the verifier may issue the given verification
// type.
func (v *DelegatedVerifier) CoversType(verificationType string) bool {
	for _, vt := range v.VerificationTypes {
		if vt == verificationType {
			return true
		}
	}
	return false
}

// Delegation records one account authorizing another to manage its own
// reputation-affecting operations. Keyed by (domain, delegator); at most
// one active delegation per pair.
//
// This capability is advisory bookkeeping: it is stored and queryable but
// deliberately not consulted by any authorization check. A delegate does
// not inherit the delegator's powers.
type Delegation struct {
	DomainID    id.DomainID  `json:"domain_id"`
	Delegator   id.AccountID `json:"delegator"`
	Delegate    id.AccountID `json:"delegate"`
	DelegatedAt uint64       `json:"delegated_at"`
	// ExpiresAt is a logical height; 0 means no expiry.
	ExpiresAt uint64 `json:"expires_at,omitempty"`
	Active    bool   `json:"active"`
}

// IsActive reports whether the delegation is active and unexpired at the
// given height.
func (d *Delegation) IsActive(height uint64) bool {
	if !d.Active {
		return false
	}
	if d.ExpiresAt != 0 && height >= d.ExpiresAt {
		return false
	}
	return true
}
