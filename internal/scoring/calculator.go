package scoring

// Scoring constants. Each component is bounded to [0, maxComponentScore]
// before weighting, so the weighted sum is bounded by the domain's weight
// sum invariant (<= 100) to [0, 1000].
const (
	maxComponentScore = 1000

	// Endorsements score 0..500 linearly until the domain threshold, then
	// a 500 base plus a bonus per extra endorser.
	endorsementBaseScore     = 500
	endorsementBonusPerExtra = 50

	activityPointsPerRecord = 100

	tierScoreMultiplier = 200

	// decayPeriodBlocks is the number of logical-height blocks per decay
	// period; decayRate is per-mille reduction per period.
	decayPeriodBlocks = 1000
	decayRateScale    = 1000
)

// endorsementComponent maps a distinct-endorser count onto [0, 1000] given
// the domain's minimum-endorsement threshold.
func endorsementComponent(count, minEndorsements int64) int64 {
	if count <= 0 {
		return 0
	}
	if count < minEndorsements {
		return count * endorsementBaseScore / minEndorsements
	}
	score := endorsementBaseScore + (count-minEndorsements)*endorsementBonusPerExtra
	return min(score, maxComponentScore)
}

// activityComponent maps an activity count onto [0, 1000].
func activityComponent(count int64) int64 {
	if count <= 0 {
		return 0
	}
	return min(count*activityPointsPerRecord, maxComponentScore)
}

// verificationComponent maps a verification tier in [0, 5] onto [0, 1000].
func verificationComponent(tier int64) int64 {
	if tier <= 0 {
		return 0
	}
	return tier * tierScoreMultiplier
}

// weightedTotal combines the three components using the domain's stored
// weights with truncating integer division.
func weightedTotal(endorsement, activity, verification int64, endorsementWeight, activityWeight, verificationWeight int) int64 {
	return endorsement*int64(endorsementWeight)/100 +
		activity*int64(activityWeight)/100 +
		verification*int64(verificationWeight)/100
}

// decayedScore applies linear (non-compounding) decay: one deduction of
// weighted*rate/1000 per full 1000-block period elapsed, clamped at zero.
// Scores do not move within a period: at 999 elapsed blocks the score is
// unchanged.
func decayedScore(weighted int64, elapsed uint64, decayRate int64) int64 {
	periods := int64(elapsed / decayPeriodBlocks)
	if periods == 0 || decayRate == 0 {
		return weighted
	}
	decayed := weighted - weighted*periods*decayRate/decayRateScale
	return max(decayed, 0)
}
