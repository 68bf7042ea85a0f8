package privacy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"vouch/internal/registry"
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/requestcontext"
)

type PrivacySuite struct {
	suite.Suite
	domains *registry.Service
	service *Service

	domainID id.DomainID
}

func TestPrivacySuite(t *testing.T) {
	suite.Run(t, new(PrivacySuite))
}

func (s *PrivacySuite) SetupTest() {
	s.domains = registry.New(registry.NewInMemoryStore())
	s.service = New(NewInMemoryStore(), s.domains)

	ctx := requestcontext.WithCaller(context.Background(), id.AccountID("owner"))
	domain, err := s.domains.CreateDomain(ctx, "builders", "reputation for builders", 50, 30, 20, 2)
	s.Require().NoError(err)
	s.domainID = domain.ID
}

func (s *PrivacySuite) asCaller(account string) context.Context {
	return requestcontext.WithCaller(context.Background(), id.AccountID(account))
}

func (s *PrivacySuite) TestDefaults() {
	ctx := context.Background()
	alice := id.AccountID("alice")

	s.Run("score and endorsements default public", func() {
		s.True(s.service.CanViewScore(ctx, s.domainID, alice, id.AccountID("stranger")))
		s.True(s.service.CanViewEndorsements(ctx, s.domainID, alice, id.AccountID("stranger")))
	})

	s.Run("activities and verifications default private", func() {
		s.False(s.service.CanViewActivities(ctx, s.domainID, alice, id.AccountID("stranger")))
		s.False(s.service.CanViewVerifications(ctx, s.domainID, alice, id.AccountID("stranger")))
	})

	s.Run("the owner always sees everything", func() {
		s.True(s.service.CanViewActivities(ctx, s.domainID, alice, alice))
		s.True(s.service.CanViewVerifications(ctx, s.domainID, alice, alice))
	})
}

func (s *PrivacySuite) TestGet() {
	s.Run("unknown domain rejected", func() {
		_, err := s.service.Get(s.asCaller("alice"), id.DomainID(9), id.AccountID("alice"))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidDomain))
	})

	s.Run("settings are only visible to their owner", func() {
		_, err := s.service.Get(s.asCaller("bob"), s.domainID, id.AccountID("alice"))
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("unstored settings read as defaults", func() {
		settings, err := s.service.Get(s.asCaller("alice"), s.domainID, id.AccountID("alice"))
		s.Require().NoError(err)
		s.True(settings.ScorePublic)
		s.True(settings.EndorsementsPublic)
		s.False(settings.ActivitiesPublic)
		s.False(settings.VerificationsPublic)
	})
}

func (s *PrivacySuite) TestUpdate() {
	s.Run("viewer list over the bound rejected", func() {
		viewers := make([]id.AccountID, id.MaxAuthorizedViewers+1)
		for i := range viewers {
			viewers[i] = id.AccountID("viewer")
		}
		_, err := s.service.Update(s.asCaller("alice"), s.domainID, Settings{AuthorizedViewers: viewers})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("empty viewer entry rejected", func() {
		_, err := s.service.Update(s.asCaller("alice"), s.domainID, Settings{AuthorizedViewers: []id.AccountID{""}})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("update is pinned to the caller", func() {
		settings, err := s.service.Update(s.asCaller("alice"), s.domainID, Settings{
			Account:     id.AccountID("mallory"),
			ScorePublic: false,
		})
		s.Require().NoError(err)
		s.Equal(id.AccountID("alice"), settings.Account)
	})
}

func (s *PrivacySuite) TestVisibilityMatrix() {
	ctx := context.Background()
	alice := id.AccountID("alice")

	_, err := s.service.Update(s.asCaller("alice"), s.domainID, Settings{
		ScorePublic:       false,
		ActivitiesPublic:  true,
		AuthorizedViewers: []id.AccountID{"friend"},
	})
	s.Require().NoError(err)

	s.Run("private score hidden from strangers, open to the list", func() {
		s.False(s.service.CanViewScore(ctx, s.domainID, alice, id.AccountID("stranger")))
		s.True(s.service.CanViewScore(ctx, s.domainID, alice, id.AccountID("friend")))
		s.True(s.service.CanViewScore(ctx, s.domainID, alice, alice))
	})

	s.Run("public flag overrides the viewer list", func() {
		s.True(s.service.CanViewActivities(ctx, s.domainID, alice, id.AccountID("stranger")))
	})

	s.Run("anonymous viewers never gain private access", func() {
		s.False(s.service.CanViewScore(ctx, s.domainID, alice, id.AccountID("")))
	})

	s.Run("invalid domain denies everything", func() {
		s.False(s.service.CanViewPrivate(ctx, id.DomainID(9), alice, alice))
	})
}
