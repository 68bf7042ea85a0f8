package scoring

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"vouch/internal/registry"
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/requestcontext"
)

type EngineSuite struct {
	suite.Suite
	records *InMemoryRecordStore
	domains *registry.Service
	engine  *Engine

	domainID id.DomainID
	account  id.AccountID
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.records = NewInMemoryRecordStore()
	s.domains = registry.New(registry.NewInMemoryStore())
	s.engine = NewEngine(s.records, s.domains)
	s.account = id.AccountID("alice")

	ctx := requestcontext.WithCaller(context.Background(), id.AccountID("owner"))
	domain, err := s.domains.CreateDomain(ctx, "builders", "reputation for builders", 50, 30, 20, 2)
	s.Require().NoError(err)
	s.domainID = domain.ID
}

func (s *EngineSuite) ctxAt(height uint64) context.Context {
	return requestcontext.WithHeight(context.Background(), height)
}

func (s *EngineSuite) TestRecompute() {
	s.Run("unknown domain fails", func() {
		_, err := s.engine.Recompute(s.ctxAt(0), id.DomainID(99), s.account)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidDomain))
	})

	s.Run("reference scenario yields 420", func() {
		ctx := s.ctxAt(100)
		s.Require().NoError(s.engine.IncrementEndorsements(ctx, s.domainID, s.account, 2))
		s.Require().NoError(s.engine.IncrementActivities(ctx, s.domainID, s.account, 3))
		s.Require().NoError(s.engine.RaiseTier(ctx, s.domainID, s.account, 2))

		score, err := s.engine.Recompute(ctx, s.domainID, s.account)
		s.NoError(err)
		s.Equal(int64(420), score)

		record, err := s.engine.Find(ctx, s.domainID, s.account)
		s.Require().NoError(err)
		s.Equal(int64(420), record.Score)
		s.Equal(int64(420), record.TotalWeightedScore)
		s.Equal(uint64(100), record.LastUpdatedHeight)
	})

	s.Run("recompute at same height is idempotent", func() {
		ctx := s.ctxAt(100)
		first, err := s.engine.Recompute(ctx, s.domainID, s.account)
		s.Require().NoError(err)
		second, err := s.engine.Recompute(ctx, s.domainID, s.account)
		s.NoError(err)
		s.Equal(first, second)
	})

	s.Run("no decay at 999 elapsed blocks", func() {
		// Recomputing re-anchors LastUpdatedHeight, so the decay checks
		// each start from a fresh account updated at height 100.
		bob := id.AccountID("bob")
		ctx := s.ctxAt(100)
		s.Require().NoError(s.engine.IncrementEndorsements(ctx, s.domainID, bob, 2))
		s.Require().NoError(s.engine.IncrementActivities(ctx, s.domainID, bob, 3))
		s.Require().NoError(s.engine.RaiseTier(ctx, s.domainID, bob, 2))
		_, err := s.engine.Recompute(ctx, s.domainID, bob)
		s.Require().NoError(err)

		score, err := s.engine.Recompute(s.ctxAt(1099), s.domainID, bob)
		s.NoError(err)
		s.Equal(int64(420), score)
	})

	s.Run("decay applies at a full period", func() {
		carol := id.AccountID("carol")
		ctx := s.ctxAt(100)
		s.Require().NoError(s.engine.IncrementEndorsements(ctx, s.domainID, carol, 2))
		s.Require().NoError(s.engine.IncrementActivities(ctx, s.domainID, carol, 3))
		s.Require().NoError(s.engine.RaiseTier(ctx, s.domainID, carol, 2))
		_, err := s.engine.Recompute(ctx, s.domainID, carol)
		s.Require().NoError(err)

		// 420 - 420*1*10/1000 = 416 after one full period.
		score, err := s.engine.Recompute(s.ctxAt(1100), s.domainID, carol)
		s.NoError(err)
		s.Equal(int64(416), score)
	})
}

func (s *EngineSuite) TestIncrementEndorsements() {
	ctx := s.ctxAt(0)

	s.Run("clamps at zero", func() {
		s.Require().NoError(s.engine.IncrementEndorsements(ctx, s.domainID, s.account, -5))
		record, err := s.engine.Find(ctx, s.domainID, s.account)
		s.Require().NoError(err)
		s.Equal(int64(0), record.EndorsementCount)
	})

	s.Run("accumulates", func() {
		s.Require().NoError(s.engine.IncrementEndorsements(ctx, s.domainID, s.account, 1))
		s.Require().NoError(s.engine.IncrementEndorsements(ctx, s.domainID, s.account, 1))
		record, err := s.engine.Find(ctx, s.domainID, s.account)
		s.Require().NoError(err)
		s.Equal(int64(2), record.EndorsementCount)
	})
}

func (s *EngineSuite) TestTier() {
	ctx := s.ctxAt(0)

	s.Run("raise ratchets upward only", func() {
		s.Require().NoError(s.engine.RaiseTier(ctx, s.domainID, s.account, 3))
		s.Require().NoError(s.engine.RaiseTier(ctx, s.domainID, s.account, 1))
		record, err := s.engine.Find(ctx, s.domainID, s.account)
		s.Require().NoError(err)
		s.Equal(int64(3), record.VerificationTier)
	})

	s.Run("set overwrites downward", func() {
		s.Require().NoError(s.engine.SetTier(ctx, s.domainID, s.account, 1))
		record, err := s.engine.Find(ctx, s.domainID, s.account)
		s.Require().NoError(err)
		s.Equal(int64(1), record.VerificationTier)
	})

	s.Run("out of range tier rejected", func() {
		err := s.engine.RaiseTier(ctx, s.domainID, s.account, 6)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		err = s.engine.SetTier(ctx, s.domainID, s.account, -1)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func (s *EngineSuite) TestFind() {
	s.Run("untouched pair reads as zero score without persisting", func() {
		ctx := s.ctxAt(500)
		record, err := s.engine.Find(ctx, s.domainID, id.AccountID("nobody"))
		s.Require().NoError(err)
		s.Equal(int64(0), record.Score)
		s.Equal(uint64(500), record.LastUpdatedHeight)
		s.Equal(int64(DefaultDecayRate), record.DecayRate)

		_, err = s.records.Find(ctx, s.domainID, id.AccountID("nobody"))
		s.Error(err)
	})
}

func TestKeyLock(t *testing.T) {
	locks := NewKeyLock()
	domainID := id.DomainID(0)
	account := id.AccountID("alice")

	var mu sync.Mutex
	var order []int

	release := locks.Acquire(domainID, account)
	done := make(chan struct{})
	go func() {
		r := locks.Acquire(domainID, account)
		mu.Lock()
		order = append(order, 2)
		mu.Unlock()
		r()
		close(done)
	}()

	mu.Lock()
	order = append(order, 1)
	mu.Unlock()
	release()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("expected holder to finish before waiter, got %v", order)
	}

	// Distinct pairs must not block each other.
	r1 := locks.Acquire(domainID, id.AccountID("bob"))
	r2 := locks.Acquire(id.DomainID(1), account)
	r1()
	r2()
}
