package endorsement

import (
	"context"
	"errors"
	"log/slog"

	"vouch/internal/audit"
	"vouch/internal/platform/metrics"
	"vouch/internal/registry"
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/platform/sentinel"
	"vouch/pkg/requestcontext"
)

// Store persists endorsements keyed by (domain, endorser, endorsee).
type Store interface {
	Find(ctx context.Context, domainID id.DomainID, endorser, endorsee id.AccountID) (*Endorsement, error)
	Save(ctx context.Context, endorsement *Endorsement) error
	ListByEndorsee(ctx context.Context, domainID id.DomainID, endorsee id.AccountID) ([]Endorsement, error)
	ListByEndorser(ctx context.Context, domainID id.DomainID, endorser id.AccountID) ([]Endorsement, error)
}

// DomainSource validates domain existence and activity.
type DomainSource interface {
	ValidateActive(ctx context.Context, domainID id.DomainID) (*registry.Domain, error)
}

// ReputationLedger adjusts counts and recomputes the endorsee's score.
type ReputationLedger interface {
	IncrementEndorsements(ctx context.Context, domainID id.DomainID, account id.AccountID, delta int64) error
	Recompute(ctx context.Context, domainID id.DomainID, account id.AccountID) (int64, error)
}

// Locker linearizes mutations per (domain, account).
type Locker interface {
	Acquire(domainID id.DomainID, account id.AccountID) func()
}

// Viewer gates read access to an account's endorsements.
type Viewer interface {
	CanViewEndorsements(ctx context.Context, domainID id.DomainID, owner, viewer id.AccountID) bool
}

// AuditPublisher captures endorsement lifecycle events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns the endorsement ledger.
type Service struct {
	store          Store
	domains        DomainSource
	reputation     ReputationLedger
	locks          Locker
	viewer         Viewer
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

func New(store Store, domains DomainSource, reputation ReputationLedger, locks Locker, viewer Viewer, opts ...Option) *Service {
	s := &Service{store: store, domains: domains, reputation: reputation, locks: locks, viewer: viewer}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Endorse records or overwrites the caller's endorsement of the endorsee
// and returns the endorsee's recomputed score. Only the first active
// endorsement from a given endorser counts toward the endorsee's
// distinct-endorser count.
func (s *Service) Endorse(ctx context.Context, domainID id.DomainID, endorsee id.AccountID, weight int, note string, tags []string) (int64, error) {
	if _, err := s.domains.ValidateActive(ctx, domainID); err != nil {
		return 0, err
	}
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return 0, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if endorsee.IsZero() {
		return 0, dErrors.New(dErrors.CodeValidation, "endorsee account is required")
	}
	if endorsee == caller {
		return 0, dErrors.New(dErrors.CodeSelfReference, "accounts cannot endorse themselves")
	}

	endorsement := &Endorsement{
		DomainID:  domainID,
		Endorser:  caller,
		Endorsee:  endorsee,
		Weight:    weight,
		CreatedAt: requestcontext.Height(ctx),
		Note:      note,
		Tags:      tags,
		Active:    true,
	}
	if err := endorsement.Validate(); err != nil {
		return 0, err
	}

	release := s.locks.Acquire(domainID, endorsee)
	defer release()

	existing, err := s.store.Find(ctx, domainID, caller, endorsee)
	switch {
	case err == nil:
		// Repeat endorsements only count when they reactivate a removed
		// one; the original creation height is preserved for audit.
		endorsement.CreatedAt = existing.CreatedAt
		if !existing.Active {
			if err := s.reputation.IncrementEndorsements(ctx, domainID, endorsee, 1); err != nil {
				return 0, err
			}
		}
	case errors.Is(err, sentinel.ErrNotFound):
		if err := s.reputation.IncrementEndorsements(ctx, domainID, endorsee, 1); err != nil {
			return 0, err
		}
	default:
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load endorsement")
	}

	if err := s.store.Save(ctx, endorsement); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store endorsement")
	}

	score, err := s.reputation.Recompute(ctx, domainID, endorsee)
	if err != nil {
		return 0, err
	}

	s.emitAudit(ctx, audit.EventEndorsementAdded, domainID, caller, endorsee)
	if s.metrics != nil {
		s.metrics.EndorsementsRecorded.Inc()
	}
	return score, nil
}

// Remove soft-deletes the caller's endorsement of the endorsee, decrements
// the endorsee's distinct-endorser count, and recomputes their score.
func (s *Service) Remove(ctx context.Context, domainID id.DomainID, endorsee id.AccountID) (int64, error) {
	if _, err := s.domains.ValidateActive(ctx, domainID); err != nil {
		return 0, err
	}
	caller := requestcontext.Caller(ctx)

	release := s.locks.Acquire(domainID, endorsee)
	defer release()

	endorsement, err := s.store.Find(ctx, domainID, caller, endorsee)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return 0, dErrors.New(dErrors.CodeNotFound, "endorsement not found")
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load endorsement")
	}
	if !endorsement.Active {
		return 0, dErrors.New(dErrors.CodeNotFound, "endorsement not found")
	}

	endorsement.Active = false
	if err := s.store.Save(ctx, endorsement); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store endorsement")
	}
	if err := s.reputation.IncrementEndorsements(ctx, domainID, endorsee, -1); err != nil {
		return 0, err
	}

	score, err := s.reputation.Recompute(ctx, domainID, endorsee)
	if err != nil {
		return 0, err
	}

	s.emitAudit(ctx, audit.EventEndorsementRemoved, domainID, caller, endorsee)
	if s.metrics != nil {
		s.metrics.EndorsementsRemoved.Inc()
	}
	return score, nil
}

// ListReceived returns the active endorsements received by an account,
// subject to the endorsee's privacy settings.
func (s *Service) ListReceived(ctx context.Context, domainID id.DomainID, endorsee id.AccountID) ([]Endorsement, error) {
	if !s.viewer.CanViewEndorsements(ctx, domainID, endorsee, requestcontext.Caller(ctx)) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "endorsements are not visible to caller")
	}
	all, err := s.store.ListByEndorsee(ctx, domainID, endorsee)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list endorsements")
	}
	return filterActive(all), nil
}

// ListGiven returns the active endorsements the caller has given.
func (s *Service) ListGiven(ctx context.Context, domainID id.DomainID) ([]Endorsement, error) {
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	all, err := s.store.ListByEndorser(ctx, domainID, caller)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list endorsements")
	}
	return filterActive(all), nil
}

func filterActive(endorsements []Endorsement) []Endorsement {
	active := make([]Endorsement, 0, len(endorsements))
	for _, e := range endorsements {
		if e.Active {
			active = append(active, e)
		}
	}
	return active
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
