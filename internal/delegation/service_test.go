package delegation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"vouch/internal/registry"
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/requestcontext"
)

type DelegationSuite struct {
	suite.Suite
	domains *registry.Service
	service *Service

	domainID id.DomainID
}

func TestDelegationSuite(t *testing.T) {
	suite.Run(t, new(DelegationSuite))
}

func (s *DelegationSuite) SetupTest() {
	s.domains = registry.New(registry.NewInMemoryStore())
	s.service = New(NewInMemoryVerifierStore(), NewInMemoryDelegationStore(), s.domains)

	ctx := requestcontext.WithCaller(context.Background(), id.AccountID("owner"))
	domain, err := s.domains.CreateDomain(ctx, "builders", "reputation for builders", 50, 30, 20, 2)
	s.Require().NoError(err)
	s.domainID = domain.ID
}

func (s *DelegationSuite) asCaller(account string) context.Context {
	return requestcontext.WithCaller(context.Background(), id.AccountID(account))
}

func (s *DelegationSuite) TestVerificationProviders() {
	s.Run("non-owner may not approve", func() {
		_, err := s.service.AddVerificationProvider(s.asCaller("stranger"), s.domainID, id.AccountID("notary"), "Notary LLC", []string{"kyc"})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("empty type list rejected", func() {
		_, err := s.service.AddVerificationProvider(s.asCaller("owner"), s.domainID, id.AccountID("notary"), "Notary LLC", nil)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("owner approves and coverage is type scoped", func() {
		_, err := s.service.AddVerificationProvider(s.asCaller("owner"), s.domainID, id.AccountID("notary"), "Notary LLC", []string{"kyc", "employment"})
		s.Require().NoError(err)

		delegated, err := s.service.IsDelegatedVerifier(context.Background(), s.domainID, id.AccountID("notary"))
		s.Require().NoError(err)
		s.True(delegated)

		covers, err := s.service.CanVerifyType(context.Background(), s.domainID, id.AccountID("notary"), "kyc")
		s.Require().NoError(err)
		s.True(covers)

		covers, err = s.service.CanVerifyType(context.Background(), s.domainID, id.AccountID("notary"), "education")
		s.Require().NoError(err)
		s.False(covers)
	})

	s.Run("re-approval overwrites the type list", func() {
		_, err := s.service.AddVerificationProvider(s.asCaller("owner"), s.domainID, id.AccountID("notary"), "Notary LLC", []string{"education"})
		s.Require().NoError(err)

		covers, err := s.service.CanVerifyType(context.Background(), s.domainID, id.AccountID("notary"), "kyc")
		s.Require().NoError(err)
		s.False(covers)
	})

	s.Run("revocation clears both checks", func() {
		s.Require().NoError(s.service.RevokeVerificationProvider(s.asCaller("owner"), s.domainID, id.AccountID("notary")))

		delegated, err := s.service.IsDelegatedVerifier(context.Background(), s.domainID, id.AccountID("notary"))
		s.Require().NoError(err)
		s.False(delegated)

		covers, err := s.service.CanVerifyType(context.Background(), s.domainID, id.AccountID("notary"), "education")
		s.Require().NoError(err)
		s.False(covers)
	})

	s.Run("revoking an unknown verifier is not found", func() {
		err := s.service.RevokeVerificationProvider(s.asCaller("owner"), s.domainID, id.AccountID("ghost"))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *DelegationSuite) TestReputationDelegation() {
	s.Run("missing caller is unauthorized", func() {
		_, err := s.service.DelegateReputation(context.Background(), s.domainID, id.AccountID("bob"), 0)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("past expiry rejected", func() {
		ctx := requestcontext.WithHeight(s.asCaller("alice"), 500)
		_, err := s.service.DelegateReputation(ctx, s.domainID, id.AccountID("bob"), 500)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("any account may delegate its own reputation", func() {
		record, err := s.service.DelegateReputation(s.asCaller("alice"), s.domainID, id.AccountID("bob"), 0)
		s.Require().NoError(err)
		s.Equal(id.AccountID("alice"), record.Delegator)
		s.Equal(id.AccountID("bob"), record.Delegate)
		s.True(record.Active)
	})

	s.Run("delegation grants the delegate no verifier powers", func() {
		delegated, err := s.service.IsDelegatedVerifier(context.Background(), s.domainID, id.AccountID("bob"))
		s.Require().NoError(err)
		s.False(delegated)

		covers, err := s.service.CanVerifyType(context.Background(), s.domainID, id.AccountID("bob"), "kyc")
		s.Require().NoError(err)
		s.False(covers)
	})

	s.Run("lookup returns the stored delegation", func() {
		record, err := s.service.GetDelegation(context.Background(), s.domainID, id.AccountID("alice"))
		s.Require().NoError(err)
		s.Equal(id.AccountID("bob"), record.Delegate)
	})

	s.Run("only the delegator removes their delegation", func() {
		err := s.service.RemoveDelegation(s.asCaller("bob"), s.domainID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		s.Require().NoError(s.service.RemoveDelegation(s.asCaller("alice"), s.domainID))

		err = s.service.RemoveDelegation(s.asCaller("alice"), s.domainID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *DelegationSuite) TestDelegationExpiry() {
	s.Run("is active respects the expiry height", func() {
		d := Delegation{Active: true, ExpiresAt: 100}
		s.True(d.IsActive(99))
		s.False(d.IsActive(100))

		open := Delegation{Active: true}
		s.True(open.IsActive(1_000_000))
	})
}
