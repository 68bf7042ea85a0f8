package privacy

import (
	"context"
	"errors"
	"log/slog"

	"vouch/internal/audit"
	"vouch/internal/registry"
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/platform/sentinel"
	"vouch/pkg/requestcontext"
)

// Store persists privacy settings keyed by (domain, account).
type Store interface {
	Find(ctx context.Context, domainID id.DomainID, account id.AccountID) (*Settings, error)
	Save(ctx context.Context, settings *Settings) error
}

// DomainSource validates domain existence and activity.
type DomainSource interface {
	ValidateDomain(ctx context.Context, domainID id.DomainID) (*registry.Domain, error)
	ValidateActive(ctx context.Context, domainID id.DomainID) (*registry.Domain, error)
}

// AuditPublisher captures privacy changes.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service mediates all read access to scores, endorsements, activities, and
// verifications, and lets accounts manage their own settings.
type Service struct {
	store          Store
	domains        DomainSource
	logger         *slog.Logger
	auditPublisher AuditPublisher
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func New(store Store, domains DomainSource, opts ...Option) *Service {
	s := &Service{store: store, domains: domains}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the caller's own settings, falling back to defaults when none
// are stored. Accounts cannot read each other's settings.
func (s *Service) Get(ctx context.Context, domainID id.DomainID, account id.AccountID) (*Settings, error) {
	if _, err := s.domains.ValidateDomain(ctx, domainID); err != nil {
		return nil, err
	}
	if requestcontext.Caller(ctx) != account {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "privacy settings are only visible to their owner")
	}
	return s.settingsOrDefault(ctx, domainID, account), nil
}

// Update overwrites the caller's own settings.
func (s *Service) Update(ctx context.Context, domainID id.DomainID, settings Settings) (*Settings, error) {
	if _, err := s.domains.ValidateActive(ctx, domainID); err != nil {
		return nil, err
	}
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}

	settings.DomainID = domainID
	settings.Account = caller
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, &settings); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store privacy settings")
	}

	if s.auditPublisher != nil {
		_ = s.auditPublisher.Emit(ctx, audit.Event{
			Action:    audit.EventPrivacyUpdated,
			DomainID:  domainID,
			Actor:     caller,
			Subject:   caller,
			Height:    requestcontext.Height(ctx),
			RequestID: requestcontext.RequestID(ctx),
		})
	}
	return &settings, nil
}

// CanViewPrivate reports whether the viewer may see the owner's private
// data: the owner always may, authorized viewers may, everyone else may
// not. It never errors; an invalid domain id yields false.
func (s *Service) CanViewPrivate(ctx context.Context, domainID id.DomainID, owner, viewer id.AccountID) bool {
	if _, err := s.domains.ValidateDomain(ctx, domainID); err != nil {
		return false
	}
	if viewer == owner {
		return true
	}
	if viewer.IsZero() {
		return false
	}
	return s.settingsOrDefault(ctx, domainID, owner).Authorizes(viewer)
}

// CanViewScore applies the score visibility flag or private-viewer access.
func (s *Service) CanViewScore(ctx context.Context, domainID id.DomainID, owner, viewer id.AccountID) bool {
	if s.settingsOrDefault(ctx, domainID, owner).ScorePublic {
		return true
	}
	return s.CanViewPrivate(ctx, domainID, owner, viewer)
}

// CanViewEndorsements applies the endorsement visibility flag or
// private-viewer access.
func (s *Service) CanViewEndorsements(ctx context.Context, domainID id.DomainID, owner, viewer id.AccountID) bool {
	if s.settingsOrDefault(ctx, domainID, owner).EndorsementsPublic {
		return true
	}
	return s.CanViewPrivate(ctx, domainID, owner, viewer)
}

// CanViewActivities applies the activity visibility flag or private-viewer
// access. Activities default to private.
func (s *Service) CanViewActivities(ctx context.Context, domainID id.DomainID, owner, viewer id.AccountID) bool {
	if s.settingsOrDefault(ctx, domainID, owner).ActivitiesPublic {
		return true
	}
	return s.CanViewPrivate(ctx, domainID, owner, viewer)
}

// CanViewVerifications applies the verification visibility flag or
// private-viewer access. Verifications default to private.
func (s *Service) CanViewVerifications(ctx context.Context, domainID id.DomainID, owner, viewer id.AccountID) bool {
	if s.settingsOrDefault(ctx, domainID, owner).VerificationsPublic {
		return true
	}
	return s.CanViewPrivate(ctx, domainID, owner, viewer)
}

func (s *Service) settingsOrDefault(ctx context.Context, domainID id.DomainID, account id.AccountID) *Settings {
	settings, err := s.store.Find(ctx, domainID, account)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) && s.logger != nil {
			s.logger.WarnContext(ctx, "privacy settings lookup failed, applying defaults",
				"domain_id", domainID.String(),
				"account", account.String(),
				"error", err.Error(),
			)
		}
		return Default(domainID, account)
	}
	return settings
}
