package scoring

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/requestcontext"
)

// AccessGate decides whether a viewer may read another account's score.
type AccessGate interface {
	CanViewScore(ctx context.Context, domainID id.DomainID, owner, viewer id.AccountID) bool
}

// Query serves privacy-gated score reads. Public score lookups are the hot
// path, so they go through the optional cache with singleflight collapsing
// concurrent identical misses.
type Query struct {
	engine  *Engine
	domains DomainSource
	gate    AccessGate
	cache   ScoreCache
	group   singleflight.Group
}

func NewQuery(engine *Engine, domains DomainSource, gate AccessGate, cache ScoreCache) *Query {
	return &Query{engine: engine, domains: domains, gate: gate, cache: cache}
}

// GetScore returns the account's current stored score.
func (q *Query) GetScore(ctx context.Context, domainID id.DomainID, account id.AccountID) (int64, error) {
	if _, err := q.domains.ValidateDomain(ctx, domainID); err != nil {
		return 0, err
	}
	if !q.gate.CanViewScore(ctx, domainID, account, requestcontext.Caller(ctx)) {
		return 0, dErrors.New(dErrors.CodeUnauthorized, "score is not visible to caller")
	}

	if q.cache != nil {
		if score, ok, err := q.cache.Get(ctx, domainID, account); err == nil && ok {
			return score, nil
		}
	}

	key := fmt.Sprintf("%s:%s", domainID, account)
	v, err, _ := q.group.Do(key, func() (any, error) {
		record, err := q.engine.Find(ctx, domainID, account)
		if err != nil {
			return int64(0), err
		}
		if q.cache != nil {
			_ = q.cache.Set(ctx, domainID, account, record.Score)
		}
		return record.Score, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// GetReputation returns the full reputation record, gated the same way as
// the score it contains.
func (q *Query) GetReputation(ctx context.Context, domainID id.DomainID, account id.AccountID) (*Record, error) {
	if _, err := q.domains.ValidateDomain(ctx, domainID); err != nil {
		return nil, err
	}
	if !q.gate.CanViewScore(ctx, domainID, account, requestcontext.Caller(ctx)) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "reputation is not visible to caller")
	}
	return q.engine.Find(ctx, domainID, account)
}
