package scoring

import (
	id "vouch/pkg/domain"
)

// DefaultDecayRate is applied to lazily created records: 1% of the weighted
// score per decay period.
const DefaultDecayRate = 10

// Record is the aggregate reputation state for one (domain, account) pair.
// It is lazily created on first touch and never deleted. Score,
// TotalWeightedScore, and LastUpdatedHeight are written exclusively by the
// engine's recompute; the counts and tier are written exclusively by the
// engine's count helpers on behalf of the ledgers.
type Record struct {
	DomainID id.DomainID  `json:"domain_id"`
	Account  id.AccountID `json:"account"`

	// Score is the decayed weighted score in [0, 1000].
	Score int64 `json:"score"`

	// EndorsementCount counts distinct active endorsers.
	EndorsementCount int64 `json:"endorsement_count"`

	// ActivityCount counts recorded activities (verified or not).
	ActivityCount int64 `json:"activity_count"`

	// VerificationTier is the highest active verification tier in [0, 5].
	VerificationTier int64 `json:"verification_tier"`

	// TotalWeightedScore is the pre-decay weighted sum from the last
	// recompute.
	TotalWeightedScore int64 `json:"total_weighted_score"`

	LastUpdatedHeight uint64 `json:"last_updated_height"`

	// DecayRate is per-mille score reduction per 1000-block period.
	DecayRate int64 `json:"decay_rate"`
}

// NewRecord constructs a default record anchored at the given height so a
// freshly touched account does not start pre-decayed.
func NewRecord(domainID id.DomainID, account id.AccountID, height uint64) *Record {
	return &Record{
		DomainID:          domainID,
		Account:           account,
		LastUpdatedHeight: height,
		DecayRate:         DefaultDecayRate,
	}
}
