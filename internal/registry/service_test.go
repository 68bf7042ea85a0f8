package registry

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/requestcontext"
)

type RegistrySuite struct {
	suite.Suite
	service *Service
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.service = New(NewInMemoryStore())
}

func (s *RegistrySuite) callerCtx(account string) context.Context {
	return requestcontext.WithCaller(context.Background(), id.AccountID(account))
}

func (s *RegistrySuite) TestCreateDomain() {
	s.Run("missing caller is unauthorized", func() {
		_, err := s.service.CreateDomain(context.Background(), "builders", "desc", 50, 30, 20, 2)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("empty title rejected", func() {
		_, err := s.service.CreateDomain(s.callerCtx("owner"), "", "desc", 50, 30, 20, 2)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("title over 64 characters rejected", func() {
		_, err := s.service.CreateDomain(s.callerCtx("owner"), strings.Repeat("x", 65), "desc", 50, 30, 20, 2)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("empty description rejected", func() {
		_, err := s.service.CreateDomain(s.callerCtx("owner"), "builders", "", 50, 30, 20, 2)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("weight sum over 100 rejected", func() {
		_, err := s.service.CreateDomain(s.callerCtx("owner"), "builders", "desc", 50, 30, 21, 2)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("negative weight rejected", func() {
		_, err := s.service.CreateDomain(s.callerCtx("owner"), "builders", "desc", -1, 30, 20, 2)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("min endorsements below one rejected", func() {
		_, err := s.service.CreateDomain(s.callerCtx("owner"), "builders", "desc", 50, 30, 20, 0)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("ids are sequential from zero", func() {
		ctx := s.callerCtx("owner")
		first, err := s.service.CreateDomain(ctx, "first", "desc", 50, 30, 20, 2)
		s.Require().NoError(err)
		second, err := s.service.CreateDomain(ctx, "second", "desc", 50, 30, 20, 2)
		s.Require().NoError(err)
		s.Equal(id.DomainID(0), first.ID)
		s.Equal(id.DomainID(1), second.ID)
	})

	s.Run("caller becomes owner and domain starts active", func() {
		ctx := requestcontext.WithHeight(s.callerCtx("founder"), 42)
		domain, err := s.service.CreateDomain(ctx, "builders", "desc", 50, 30, 20, 2)
		s.Require().NoError(err)
		s.Equal(id.AccountID("founder"), domain.Owner)
		s.Equal(uint64(42), domain.CreatedAt)
		s.True(domain.Active)
	})
}

func (s *RegistrySuite) TestValidateDomain() {
	s.Run("unknown id maps to invalid domain", func() {
		_, err := s.service.ValidateDomain(context.Background(), id.DomainID(7))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidDomain))
	})

	s.Run("existing id round-trips", func() {
		created, err := s.service.CreateDomain(s.callerCtx("owner"), "builders", "desc", 50, 30, 20, 2)
		s.Require().NoError(err)

		found, err := s.service.ValidateDomain(context.Background(), created.ID)
		s.Require().NoError(err)
		s.Equal(created.Title, found.Title)

		active, err := s.service.ValidateActive(context.Background(), created.ID)
		s.NoError(err)
		s.True(active.Active)
	})
}
