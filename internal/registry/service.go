package registry

import (
	"context"
	"errors"
	"log/slog"

	"vouch/internal/audit"
	"vouch/internal/platform/metrics"
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/platform/sentinel"
	"vouch/pkg/requestcontext"
)

// Store persists domain configuration. Append assigns the next sequential
// ID and returns it.
type Store interface {
	Append(ctx context.Context, domain *Domain) (id.DomainID, error)
	FindByID(ctx context.Context, domainID id.DomainID) (*Domain, error)
}

// AuditPublisher captures domain lifecycle events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns domain registration and lookup. Every other component
// validates domain existence and activity through it.
type Service struct {
	store          Store
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
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

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateDomain registers a new domain with the caller as owner and returns
// it with its assigned sequential ID.
func (s *Service) CreateDomain(ctx context.Context, title, description string, endorsementWeight, activityWeight, verificationWeight int, minEndorsements int64) (*Domain, error) {
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}

	domain, err := NewDomain(title, description, caller, requestcontext.Height(ctx),
		endorsementWeight, activityWeight, verificationWeight, minEndorsements)
	if err != nil {
		return nil, err
	}

	domainID, err := s.store.Append(ctx, domain)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store domain")
	}
	domain.ID = domainID

	s.emitAudit(ctx, audit.EventDomainCreated, domainID, caller, caller)
	if s.metrics != nil {
		s.metrics.DomainsCreated.Inc()
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "domain created",
			"domain_id", domainID.String(),
			"owner", caller.String(),
			"log_type", "audit",
		)
	}
	return domain, nil
}

// ValidateDomain returns the stored domain or an invalid-domain error when
// the id is out of range.
func (s *Service) ValidateDomain(ctx context.Context, domainID id.DomainID) (*Domain, error) {
	domain, err := s.store.FindByID(ctx, domainID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeInvalidDomain, "domain %s does not exist", domainID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load domain")
	}
	return domain, nil
}

// ValidateActive returns the domain only when it exists and is active.
// Every mutating path goes through this check.
func (s *Service) ValidateActive(ctx context.Context, domainID id.DomainID) (*Domain, error) {
	domain, err := s.ValidateDomain(ctx, domainID)
	if err != nil {
		return nil, err
	}
	if !domain.Active {
		return nil, dErrors.Newf(dErrors.CodeInvalidDomain, "domain %s is inactive", domainID)
	}
	return domain, nil
}

func (s *Service) emitAudit(ctx context.Context, action audit.Action, domainID id.DomainID, actor, subject id.AccountID) {
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		Action:    action,
		DomainID:  domainID,
		Actor:     actor,
		Subject:   subject,
		Height:    requestcontext.Height(ctx),
		RequestID: requestcontext.RequestID(ctx),
	})
}
