package verification

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"vouch/internal/delegation"
	"vouch/internal/privacy"
	"vouch/internal/registry"
	"vouch/internal/scoring"
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/requestcontext"
)

type VerificationSuite struct {
	suite.Suite
	domains     *registry.Service
	engine      *scoring.Engine
	delegations *delegation.Service
	service     *Service

	domainID id.DomainID
	hash     id.Hash
}

func TestVerificationSuite(t *testing.T) {
	suite.Run(t, new(VerificationSuite))
}

func (s *VerificationSuite) SetupTest() {
	s.domains = registry.New(registry.NewInMemoryStore())
	s.engine = scoring.NewEngine(scoring.NewInMemoryRecordStore(), s.domains)
	s.delegations = delegation.New(delegation.NewInMemoryVerifierStore(), delegation.NewInMemoryDelegationStore(), s.domains)
	viewer := privacy.New(privacy.NewInMemoryStore(), s.domains)
	s.service = New(NewInMemoryStore(), s.domains, s.engine, s.delegations, scoring.NewKeyLock(), viewer)
	s.hash = id.Hash(bytes.Repeat([]byte{0xcd}, id.HashSize))

	ctx := requestcontext.WithCaller(context.Background(), id.AccountID("owner"))
	domain, err := s.domains.CreateDomain(ctx, "builders", "reputation for builders", 50, 30, 20, 2)
	s.Require().NoError(err)
	s.domainID = domain.ID
}

func (s *VerificationSuite) asCaller(account string) context.Context {
	return requestcontext.WithCaller(context.Background(), id.AccountID(account))
}

func (s *VerificationSuite) tierOf(account string) int64 {
	record, err := s.engine.Find(context.Background(), s.domainID, id.AccountID(account))
	s.Require().NoError(err)
	return record.VerificationTier
}

func (s *VerificationSuite) TestAdd() {
	s.Run("tier outside bounds rejected", func() {
		_, err := s.service.Add(s.asCaller("owner"), s.domainID, id.AccountID("alice"), "kyc", s.hash, 0, 0)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		_, err = s.service.Add(s.asCaller("owner"), s.domainID, id.AccountID("alice"), "kyc", s.hash, 6, 0)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("bad evidence hash rejected", func() {
		_, err := s.service.Add(s.asCaller("owner"), s.domainID, id.AccountID("alice"), "kyc", id.Hash{0x01}, 2, 0)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("expiry at or below current height rejected", func() {
		ctx := requestcontext.WithHeight(s.asCaller("owner"), 100)
		_, err := s.service.Add(ctx, s.domainID, id.AccountID("alice"), "kyc", s.hash, 2, 100)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("non-owner non-delegate is unauthorized", func() {
		_, err := s.service.Add(s.asCaller("stranger"), s.domainID, id.AccountID("alice"), "kyc", s.hash, 2, 0)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("owner issues and tier is stored", func() {
		_, err := s.service.Add(s.asCaller("owner"), s.domainID, id.AccountID("alice"), "kyc", s.hash, 2, 0)
		s.Require().NoError(err)
		s.Equal(int64(2), s.tierOf("alice"))
	})

	s.Run("lower tier does not lower the stored tier", func() {
		_, err := s.service.Add(s.asCaller("owner"), s.domainID, id.AccountID("alice"), "email", s.hash, 1, 0)
		s.Require().NoError(err)
		s.Equal(int64(2), s.tierOf("alice"))
	})

	s.Run("delegated verifier succeeds only for covered types", func() {
		_, err := s.delegations.AddVerificationProvider(s.asCaller("owner"), s.domainID, id.AccountID("notary"), "Notary LLC", []string{"kyc"})
		s.Require().NoError(err)

		_, err = s.service.Add(s.asCaller("notary"), s.domainID, id.AccountID("bob"), "employment", s.hash, 1, 0)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

		_, err = s.service.Add(s.asCaller("notary"), s.domainID, id.AccountID("bob"), "kyc", s.hash, 3, 0)
		s.NoError(err)
		s.Equal(int64(3), s.tierOf("bob"))
	})
}

func (s *VerificationSuite) TestRevoke() {
	_, err := s.service.Add(s.asCaller("owner"), s.domainID, id.AccountID("alice"), "kyc", s.hash, 3, 0)
	s.Require().NoError(err)
	_, err = s.service.Add(s.asCaller("owner"), s.domainID, id.AccountID("alice"), "email", s.hash, 1, 0)
	s.Require().NoError(err)

	s.Run("unknown verification is not found", func() {
		_, err := s.service.Revoke(s.asCaller("owner"), s.domainID, id.AccountID("alice"), "employment")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("only the original verifier may revoke", func() {
		_, err := s.delegations.AddVerificationProvider(s.asCaller("owner"), s.domainID, id.AccountID("notary"), "Notary LLC", []string{"kyc"})
		s.Require().NoError(err)

		_, err = s.service.Revoke(s.asCaller("notary"), s.domainID, id.AccountID("alice"), "kyc")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("revoking the top tier rescans to the next active one", func() {
		_, err := s.service.Revoke(s.asCaller("owner"), s.domainID, id.AccountID("alice"), "kyc")
		s.Require().NoError(err)
		s.Equal(int64(1), s.tierOf("alice"))
	})

	s.Run("revoking the last verification drops the tier to zero", func() {
		_, err := s.service.Revoke(s.asCaller("owner"), s.domainID, id.AccountID("alice"), "email")
		s.Require().NoError(err)
		s.Equal(int64(0), s.tierOf("alice"))
	})

	s.Run("revoked verification cannot be revoked again", func() {
		_, err := s.service.Revoke(s.asCaller("owner"), s.domainID, id.AccountID("alice"), "kyc")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("expired verifications do not count in the rescan", func() {
		ctx := requestcontext.WithHeight(s.asCaller("owner"), 100)
		_, err := s.service.Add(ctx, s.domainID, id.AccountID("bob"), "kyc", s.hash, 4, 200)
		s.Require().NoError(err)
		_, err = s.service.Add(ctx, s.domainID, id.AccountID("bob"), "email", s.hash, 2, 0)
		s.Require().NoError(err)

		// Past the kyc expiry the rescan only sees the email verification.
		later := requestcontext.WithHeight(s.asCaller("owner"), 300)
		_, err = s.service.Revoke(later, s.domainID, id.AccountID("bob"), "email")
		s.Require().NoError(err)
		s.Equal(int64(0), s.tierOf("bob"))
	})
}

func (s *VerificationSuite) TestReads() {
	_, err := s.service.Add(s.asCaller("owner"), s.domainID, id.AccountID("alice"), "kyc", s.hash, 2, 0)
	s.Require().NoError(err)

	s.Run("verifications are private by default", func() {
		_, err := s.service.Get(s.asCaller("stranger"), s.domainID, id.AccountID("alice"), "kyc")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("the subject reads their own verifications", func() {
		verifications, err := s.service.ListByAccount(s.asCaller("alice"), s.domainID, id.AccountID("alice"))
		s.Require().NoError(err)
		s.Len(verifications, 1)

		stored, err := s.service.Get(s.asCaller("alice"), s.domainID, id.AccountID("alice"), "kyc")
		s.Require().NoError(err)
		s.Equal(id.AccountID("owner"), stored.VerifiedBy)
		s.True(stored.Active)
	})
}

func (s *VerificationSuite) TestConcurrentRevoke() {
	ctx := requestcontext.WithHeight(s.asCaller("owner"), 100)
	_, err := s.service.Add(ctx, s.domainID, id.AccountID("alice"), "kyc", s.hash, 3, 0)
	s.Require().NoError(err)

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := s.service.Revoke(ctx, s.domainID, id.AccountID("alice"), "kyc")
			errs <- err
		}()
	}

	var failed int
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
			failed++
		}
	}
	s.Equal(1, failed)
	s.Equal(int64(0), s.tierOf("alice"))
}
