package registry

import (
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
)

// Domain is an independently configured reputation namespace.
//
// Invariants:
//   - Title is non-empty and at most 64 characters
//   - Description is non-empty and at most 256 characters
//   - EndorsementWeight + ActivityWeight + VerificationWeight <= 100
//   - MinEndorsements >= 1
//   - ID is assigned sequentially starting at 0 and never reused
//
// Configuration is append-only: no update or delete operation exists for a
// domain, and Owner is fixed at creation. Active is checked on every
// mutating call; nothing in this design toggles it after creation.
type Domain struct {
	ID                 id.DomainID  `json:"id"`
	Title              string       `json:"title"`
	Description        string       `json:"description"`
	Owner              id.AccountID `json:"owner"`
	CreatedAt          uint64       `json:"created_at"`
	Active             bool         `json:"active"`
	EndorsementWeight  int          `json:"endorsement_weight"`
	ActivityWeight     int          `json:"activity_weight"`
	VerificationWeight int          `json:"verification_weight"`
	MinEndorsements    int64        `json:"min_endorsements"`
}

// NewDomain validates invariants and constructs a Domain without an ID;
// the store assigns the sequential ID on append.
func NewDomain(title, description string, owner id.AccountID, createdAt uint64, endorsementWeight, activityWeight, verificationWeight int, minEndorsements int64) (*Domain, error) {
	if title == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if len(title) > id.MaxTitleLen {
		return nil, dErrors.Newf(dErrors.CodeValidation, "title exceeds %d characters", id.MaxTitleLen)
	}
	if description == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "description is required")
	}
	if len(description) > id.MaxDescriptionLen {
		return nil, dErrors.Newf(dErrors.CodeValidation, "description exceeds %d characters", id.MaxDescriptionLen)
	}
	if endorsementWeight < 0 || activityWeight < 0 || verificationWeight < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "weights must be non-negative")
	}
	if endorsementWeight+activityWeight+verificationWeight > 100 {
		return nil, dErrors.New(dErrors.CodeValidation, "weight sum exceeds 100")
	}
	if minEndorsements < 1 {
		return nil, dErrors.New(dErrors.CodeValidation, "min endorsements must be at least 1")
	}
	return &Domain{
		Title:              title,
		Description:        description,
		Owner:              owner,
		CreatedAt:          createdAt,
		Active:             true,
		EndorsementWeight:  endorsementWeight,
		ActivityWeight:     activityWeight,
		VerificationWeight: verificationWeight,
		MinEndorsements:    minEndorsements,
	}, nil
}
