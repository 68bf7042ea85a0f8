package endorsement

import (
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
)

// Weight bounds for a single endorsement.
const (
	MinWeight = 1
	MaxWeight = 10
)

// Endorsement is a weighted peer attestation, keyed by (domain, endorser,
// endorsee). At most one record per pair per domain: re-endorsing
// overwrites weight, note, and tags and reactivates rather than
// duplicating. Removal is a soft delete so the record stays for audit.
type Endorsement struct {
	DomainID  id.DomainID  `json:"domain_id"`
	Endorser  id.AccountID `json:"endorser"`
	Endorsee  id.AccountID `json:"endorsee"`
	Weight    int          `json:"weight"`
	CreatedAt uint64       `json:"created_at"`
	Note      string       `json:"note,omitempty"`
	Tags      []string     `json:"tags,omitempty"`
	Active    bool         `json:"active"`
}

// Validate enforces weight and field bounds.
func (e *Endorsement) Validate() error {
	if e.Weight < MinWeight || e.Weight > MaxWeight {
		return dErrors.Newf(dErrors.CodeValidation, "weight must be between %d and %d", MinWeight, MaxWeight)
	}
	if len(e.Note) > id.MaxNoteLen {
		return dErrors.Newf(dErrors.CodeValidation, "note exceeds %d characters", id.MaxNoteLen)
	}
	if len(e.Tags) > id.MaxTags {
		return dErrors.Newf(dErrors.CodeValidation, "tags exceed %d entries", id.MaxTags)
	}
	for _, tag := range e.Tags {
		if tag == "" {
			return dErrors.New(dErrors.CodeValidation, "tag is empty")
		}
		if len(tag) > id.MaxShortCodeLen {
			return dErrors.Newf(dErrors.CodeValidation, "tag exceeds %d characters", id.MaxShortCodeLen)
		}
	}
	return nil
}
