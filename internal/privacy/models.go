package privacy

import (
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
)

// Settings controls who may read an account's ledger data within a domain.
// Absent settings fall back to Default: score and endorsements public,
// activities and verifications private, no authorized viewers.
type Settings struct {
	DomainID            id.DomainID    `json:"domain_id"`
	Account             id.AccountID   `json:"account"`
	ScorePublic         bool           `json:"score_public"`
	EndorsementsPublic  bool           `json:"endorsements_public"`
	ActivitiesPublic    bool           `json:"activities_public"`
	VerificationsPublic bool           `json:"verifications_public"`
	AuthorizedViewers   []id.AccountID `json:"authorized_viewers"`
}

// Default returns the settings applied when an account has never stored
// any.
func Default(domainID id.DomainID, account id.AccountID) *Settings {
	return &Settings{
		DomainID:           domainID,
		Account:            account,
		ScorePublic:        true,
		EndorsementsPublic: true,
	}
}

// Validate enforces the viewer-list bound.
func (s *Settings) Validate() error {
	if len(s.AuthorizedViewers) > id.MaxAuthorizedViewers {
		return dErrors.Newf(dErrors.CodeValidation, "authorized viewers exceed %d entries", id.MaxAuthorizedViewers)
	}
	for _, viewer := range s.AuthorizedViewers {
		if viewer.IsZero() {
			return dErrors.New(dErrors.CodeValidation, "authorized viewer account is empty")
		}
	}
	return nil
}

// Authorizes reports whether the viewer appears in the authorized viewer
// list. The list is bounded small, so a linear scan is the whole story.
func (s *Settings) Authorizes(viewer id.AccountID) bool {
	for _, v := range s.AuthorizedViewers {
		if v == viewer {
			return true
		}
	}
	return false
}
