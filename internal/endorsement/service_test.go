package endorsement

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"vouch/internal/privacy"
	"vouch/internal/registry"
	"vouch/internal/scoring"
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/requestcontext"
)

type EndorsementSuite struct {
	suite.Suite
	domains *registry.Service
	engine  *scoring.Engine
	privacy *privacy.Service
	service *Service

	domainID id.DomainID
}

func TestEndorsementSuite(t *testing.T) {
	suite.Run(t, new(EndorsementSuite))
}

func (s *EndorsementSuite) SetupTest() {
	s.domains = registry.New(registry.NewInMemoryStore())
	s.engine = scoring.NewEngine(scoring.NewInMemoryRecordStore(), s.domains)
	s.privacy = privacy.New(privacy.NewInMemoryStore(), s.domains)
	s.service = New(NewInMemoryStore(), s.domains, s.engine, scoring.NewKeyLock(), s.privacy)

	ctx := requestcontext.WithCaller(context.Background(), id.AccountID("owner"))
	domain, err := s.domains.CreateDomain(ctx, "builders", "reputation for builders", 50, 30, 20, 2)
	s.Require().NoError(err)
	s.domainID = domain.ID
}

func (s *EndorsementSuite) asCaller(account string) context.Context {
	return requestcontext.WithCaller(context.Background(), id.AccountID(account))
}

func (s *EndorsementSuite) endorserCount(account string) int64 {
	record, err := s.engine.Find(context.Background(), s.domainID, id.AccountID(account))
	s.Require().NoError(err)
	return record.EndorsementCount
}

func (s *EndorsementSuite) TestEndorse() {
	s.Run("unknown domain rejected", func() {
		_, err := s.service.Endorse(s.asCaller("alice"), id.DomainID(9), id.AccountID("bob"), 5, "", nil)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidDomain))
	})

	s.Run("self endorsement rejected", func() {
		_, err := s.service.Endorse(s.asCaller("alice"), s.domainID, id.AccountID("alice"), 5, "", nil)
		s.True(dErrors.HasCode(err, dErrors.CodeSelfReference))
	})

	s.Run("weight outside bounds rejected", func() {
		_, err := s.service.Endorse(s.asCaller("alice"), s.domainID, id.AccountID("bob"), 0, "", nil)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		_, err = s.service.Endorse(s.asCaller("alice"), s.domainID, id.AccountID("bob"), 11, "", nil)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("note over 140 characters rejected", func() {
		_, err := s.service.Endorse(s.asCaller("alice"), s.domainID, id.AccountID("bob"), 5, strings.Repeat("x", 141), nil)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("first endorsement counts the endorser", func() {
		_, err := s.service.Endorse(s.asCaller("alice"), s.domainID, id.AccountID("bob"), 5, "solid work", []string{"golang"})
		s.Require().NoError(err)
		s.Equal(int64(1), s.endorserCount("bob"))
	})

	s.Run("repeat endorsement by same endorser does not double count", func() {
		_, err := s.service.Endorse(s.asCaller("alice"), s.domainID, id.AccountID("bob"), 8, "even better", nil)
		s.Require().NoError(err)
		s.Equal(int64(1), s.endorserCount("bob"))

		given, err := s.service.ListGiven(s.asCaller("alice"), s.domainID)
		s.Require().NoError(err)
		s.Require().Len(given, 1)
		s.Equal(8, given[0].Weight)
	})

	s.Run("distinct endorsers accumulate", func() {
		_, err := s.service.Endorse(s.asCaller("carol"), s.domainID, id.AccountID("bob"), 3, "", nil)
		s.Require().NoError(err)
		s.Equal(int64(2), s.endorserCount("bob"))
	})
}

func (s *EndorsementSuite) TestRemove() {
	_, err := s.service.Endorse(s.asCaller("alice"), s.domainID, id.AccountID("bob"), 5, "", nil)
	s.Require().NoError(err)

	s.Run("removing an absent endorsement is not found", func() {
		_, err := s.service.Remove(s.asCaller("carol"), s.domainID, id.AccountID("bob"))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("remove decrements the count", func() {
		_, err := s.service.Remove(s.asCaller("alice"), s.domainID, id.AccountID("bob"))
		s.Require().NoError(err)
		s.Equal(int64(0), s.endorserCount("bob"))
	})

	s.Run("second remove is not found", func() {
		_, err := s.service.Remove(s.asCaller("alice"), s.domainID, id.AccountID("bob"))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("re-endorsing after removal counts again", func() {
		_, err := s.service.Endorse(s.asCaller("alice"), s.domainID, id.AccountID("bob"), 7, "", nil)
		s.Require().NoError(err)
		s.Equal(int64(1), s.endorserCount("bob"))
	})
}

func (s *EndorsementSuite) TestList() {
	_, err := s.service.Endorse(s.asCaller("alice"), s.domainID, id.AccountID("bob"), 5, "", nil)
	s.Require().NoError(err)
	_, err = s.service.Endorse(s.asCaller("carol"), s.domainID, id.AccountID("bob"), 4, "", nil)
	s.Require().NoError(err)
	_, err = s.service.Remove(s.asCaller("carol"), s.domainID, id.AccountID("bob"))
	s.Require().NoError(err)

	s.Run("received list holds only active endorsements", func() {
		received, err := s.service.ListReceived(s.asCaller("anyone"), s.domainID, id.AccountID("bob"))
		s.Require().NoError(err)
		s.Require().Len(received, 1)
		s.Equal(id.AccountID("alice"), received[0].Endorser)
	})

	s.Run("given list excludes removed endorsements", func() {
		given, err := s.service.ListGiven(s.asCaller("carol"), s.domainID)
		s.Require().NoError(err)
		s.Empty(given)
	})

	s.Run("hidden endorsements are unauthorized for strangers", func() {
		_, err := s.privacy.Update(s.asCaller("bob"), s.domainID, privacy.Settings{
			EndorsementsPublic: false,
			AuthorizedViewers:  []id.AccountID{"carol"},
		})
		s.Require().NoError(err)

		_, err = s.service.ListReceived(s.asCaller("stranger"), s.domainID, id.AccountID("bob"))
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

		// The owner and an authorized viewer still see the list.
		_, err = s.service.ListReceived(s.asCaller("bob"), s.domainID, id.AccountID("bob"))
		s.NoError(err)
		_, err = s.service.ListReceived(s.asCaller("carol"), s.domainID, id.AccountID("bob"))
		s.NoError(err)
	})
}
