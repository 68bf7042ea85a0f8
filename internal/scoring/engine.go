package scoring

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"vouch/internal/platform/metrics"
	"vouch/internal/registry"
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/platform/sentinel"
	"vouch/pkg/requestcontext"
)

// DomainSource supplies domain configuration for weighting.
type DomainSource interface {
	ValidateDomain(ctx context.Context, domainID id.DomainID) (*registry.Domain, error)
}

// ScoreCache is an optional read cache invalidated on every recompute.
type ScoreCache interface {
	Get(ctx context.Context, domainID id.DomainID, account id.AccountID) (int64, bool, error)
	Set(ctx context.Context, domainID id.DomainID, account id.AccountID, score int64) error
	Invalidate(ctx context.Context, domainID id.DomainID, account id.AccountID) error
}

// Engine recomputes and persists reputation records. It is the only writer
// of score fields; ledgers adjust counts through its helpers and then call
// Recompute.
//
// Callers must hold the (domain, account) key lock across the triggering
// mutation and the recompute; the engine itself takes no locks.
type Engine struct {
	records RecordStore
	domains DomainSource
	cache   ScoreCache
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type EngineOption func(e *Engine)

func WithCache(cache ScoreCache) EngineOption {
	return func(e *Engine) {
		e.cache = cache
	}
}

func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

func NewEngine(records RecordStore, domains DomainSource, opts ...EngineOption) *Engine {
	e := &Engine{records: records, domains: domains}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IncrementEndorsements adjusts the distinct-endorser count, clamping at
// zero so removal can never drive the endorsement component negative.
func (e *Engine) IncrementEndorsements(ctx context.Context, domainID id.DomainID, account id.AccountID, delta int64) error {
	record, err := e.getOrCreate(ctx, domainID, account)
	if err != nil {
		return err
	}
	record.EndorsementCount = max(record.EndorsementCount+delta, 0)
	return e.save(ctx, record)
}

// IncrementActivities adjusts the activity count.
func (e *Engine) IncrementActivities(ctx context.Context, domainID id.DomainID, account id.AccountID, delta int64) error {
	record, err := e.getOrCreate(ctx, domainID, account)
	if err != nil {
		return err
	}
	record.ActivityCount = max(record.ActivityCount+delta, 0)
	return e.save(ctx, record)
}

// RaiseTier ratchets the verification tier upward to max(current, tier).
// Issuing a lower-tier verification never lowers the stored tier.
func (e *Engine) RaiseTier(ctx context.Context, domainID id.DomainID, account id.AccountID, tier int64) error {
	if tier < 0 || tier > 5 {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "tier %d out of range", tier)
	}
	record, err := e.getOrCreate(ctx, domainID, account)
	if err != nil {
		return err
	}
	if tier > record.VerificationTier {
		record.VerificationTier = tier
	}
	return e.save(ctx, record)
}

// SetTier overwrites the verification tier. Used by revocation after a
// rescan of remaining active verifications.
func (e *Engine) SetTier(ctx context.Context, domainID id.DomainID, account id.AccountID, tier int64) error {
	if tier < 0 || tier > 5 {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "tier %d out of range", tier)
	}
	record, err := e.getOrCreate(ctx, domainID, account)
	if err != nil {
		return err
	}
	record.VerificationTier = tier
	return e.save(ctx, record)
}

// Recompute derives the weighted score from the already-updated ledger
// counts, applies decay for elapsed periods, persists the record stamped at
// the current height, and returns the decayed score.
//
// It must run strictly after the triggering mutation has committed: all
// inputs are read from the record, never from in-flight state.
func (e *Engine) Recompute(ctx context.Context, domainID id.DomainID, account id.AccountID) (int64, error) {
	start := time.Now()

	domain, err := e.domains.ValidateDomain(ctx, domainID)
	if err != nil {
		return 0, err
	}
	record, err := e.getOrCreate(ctx, domainID, account)
	if err != nil {
		return 0, err
	}

	endorsement := endorsementComponent(record.EndorsementCount, domain.MinEndorsements)
	activity := activityComponent(record.ActivityCount)
	verification := verificationComponent(record.VerificationTier)
	weighted := weightedTotal(endorsement, activity, verification,
		domain.EndorsementWeight, domain.ActivityWeight, domain.VerificationWeight)

	height := requestcontext.Height(ctx)
	var elapsed uint64
	if height > record.LastUpdatedHeight {
		elapsed = height - record.LastUpdatedHeight
	}
	score := decayedScore(weighted, elapsed, record.DecayRate)

	record.Score = score
	record.TotalWeightedScore = weighted
	record.LastUpdatedHeight = height
	if err := e.save(ctx, record); err != nil {
		return 0, err
	}

	if e.cache != nil {
		if err := e.cache.Invalidate(ctx, domainID, account); err != nil && e.logger != nil {
			e.logger.WarnContext(ctx, "score cache invalidation failed",
				"domain_id", domainID.String(),
				"account", account.String(),
				"error", err.Error(),
			)
		}
	}
	if e.metrics != nil {
		e.metrics.ScoreRecomputes.Inc()
		e.metrics.RecomputeDuration.Observe(time.Since(start).Seconds())
	}
	if e.logger != nil {
		e.logger.DebugContext(ctx, "score recomputed",
			"domain_id", domainID.String(),
			"account", account.String(),
			"score", score,
			"weighted", weighted,
			"height", height,
		)
	}
	return score, nil
}

// Find returns the stored record, or a default zero-score view for pairs
// never touched by a mutation. Reads never create records.
func (e *Engine) Find(ctx context.Context, domainID id.DomainID, account id.AccountID) (*Record, error) {
	record, err := e.records.Find(ctx, domainID, account)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return NewRecord(domainID, account, requestcontext.Height(ctx)), nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load reputation record")
	}
	return record, nil
}

func (e *Engine) getOrCreate(ctx context.Context, domainID id.DomainID, account id.AccountID) (*Record, error) {
	record, err := e.records.Find(ctx, domainID, account)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return NewRecord(domainID, account, requestcontext.Height(ctx)), nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load reputation record")
	}
	return record, nil
}

func (e *Engine) save(ctx context.Context, record *Record) error {
	if err := e.records.Save(ctx, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist reputation record")
	}
	return nil
}
