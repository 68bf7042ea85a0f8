package audit

import (
	"time"

	id "vouch/pkg/domain"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time    `json:"timestamp"`
	Action    Action       `json:"action"`
	DomainID  id.DomainID  `json:"domain_id"`
	// Actor is the authenticated caller performing the action.
	Actor id.AccountID `json:"actor"`
	// Subject is the account whose reputation the action touches. Equal to
	// Actor for self-directed operations.
	Subject id.AccountID `json:"subject"`
	// Height is the logical height at which the action committed.
	Height    uint64 `json:"height"`
	RequestID string `json:"request_id,omitempty"`
	// Detail carries a short free-form qualifier (verification type,
	// activity id) when the composite key alone is ambiguous.
	Detail string `json:"detail,omitempty"`
}

// Action identifies what happened.
type Action string

const (
	EventDomainCreated Action = "domain_created"

	EventEndorsementAdded   Action = "endorsement_added"
	EventEndorsementRemoved Action = "endorsement_removed"

	EventActivityRecorded Action = "activity_recorded"
	EventActivityVerified Action = "activity_verified"

	EventVerificationAdded   Action = "verification_added"
	EventVerificationRevoked Action = "verification_revoked"

	EventVerifierAdded   Action = "verifier_added"
	EventVerifierRevoked Action = "verifier_revoked"

	EventDelegationAdded   Action = "delegation_added"
	EventDelegationRemoved Action = "delegation_removed"

	EventPrivacyUpdated Action = "privacy_updated"
)
