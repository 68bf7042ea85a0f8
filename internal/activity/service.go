package activity

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"vouch/internal/audit"
	"vouch/internal/platform/metrics"
	"vouch/internal/registry"
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/platform/sentinel"
	"vouch/pkg/requestcontext"
)

// Store persists activities append-only with per-domain sequential ids.
type Store interface {
	Append(ctx context.Context, activity *Activity) (uint64, error)
	FindByID(ctx context.Context, domainID id.DomainID, activityID uint64) (*Activity, error)
	Save(ctx context.Context, activity *Activity) error
	ListByAccount(ctx context.Context, domainID id.DomainID, account id.AccountID) ([]Activity, error)
}

// DomainSource validates domain existence and activity.
type DomainSource interface {
	ValidateActive(ctx context.Context, domainID id.DomainID) (*registry.Domain, error)
}

// ReputationLedger adjusts counts and recomputes scores.
type ReputationLedger interface {
	IncrementActivities(ctx context.Context, domainID id.DomainID, account id.AccountID, delta int64) error
	Recompute(ctx context.Context, domainID id.DomainID, account id.AccountID) (int64, error)
}

// Authorizer answers whether an account is an active delegated verifier.
type Authorizer interface {
	IsDelegatedVerifier(ctx context.Context, domainID id.DomainID, account id.AccountID) (bool, error)
}

// Locker linearizes mutations per (domain, account).
type Locker interface {
	Acquire(domainID id.DomainID, account id.AccountID) func()
}

// Viewer gates read access to an account's activities.
type Viewer interface {
	CanViewActivities(ctx context.Context, domainID id.DomainID, owner, viewer id.AccountID) bool
}

// AuditPublisher captures activity lifecycle events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns the activity ledger.
type Service struct {
	store          Store
	domains        DomainSource
	reputation     ReputationLedger
	authorizer     Authorizer
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

func New(store Store, domains DomainSource, reputation ReputationLedger, authorizer Authorizer, locks Locker, viewer Viewer, opts ...Option) *Service {
	s := &Service{store: store, domains: domains, reputation: reputation, authorizer: authorizer, locks: locks, viewer: viewer}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record appends an unverified activity for the caller, increments their
// activity count, recomputes their score, and returns the new activity id.
func (s *Service) Record(ctx context.Context, domainID id.DomainID, activityType string, points int64, dataHash id.Hash) (uint64, error) {
	if _, err := s.domains.ValidateActive(ctx, domainID); err != nil {
		return 0, err
	}
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return 0, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}

	activity := &Activity{
		DomainID:  domainID,
		Account:   caller,
		Type:      activityType,
		CreatedAt: requestcontext.Height(ctx),
		Points:    points,
		DataHash:  dataHash,
	}
	if err := activity.Validate(); err != nil {
		return 0, err
	}

	release := s.locks.Acquire(domainID, caller)
	defer release()

	activityID, err := s.store.Append(ctx, activity)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store activity")
	}
	if err := s.reputation.IncrementActivities(ctx, domainID, caller, 1); err != nil {
		return 0, err
	}
	if _, err := s.reputation.Recompute(ctx, domainID, caller); err != nil {
		return 0, err
	}

	s.emitAudit(ctx, audit.EventActivityRecorded, domainID, caller, caller, activityID)
	if s.metrics != nil {
		s.metrics.ActivitiesRecorded.Inc()
	}
	return activityID, nil
}

// Verify flips an activity to verified once. Only the domain owner or an
// active delegated verifier may verify; the recompute targets the activity
// owner, not the caller. Returns the owner's recomputed score.
func (s *Service) Verify(ctx context.Context, domainID id.DomainID, activityID uint64) (int64, error) {
	domain, err := s.domains.ValidateActive(ctx, domainID)
	if err != nil {
		return 0, err
	}
	caller := requestcontext.Caller(ctx)

	activity, err := s.store.FindByID(ctx, domainID, activityID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return 0, dErrors.New(dErrors.CodeNotFound, "activity not found")
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load activity")
	}
	if activity.Verified {
		return 0, dErrors.New(dErrors.CodeAlreadyVerified, "activity is already verified")
	}

	if caller != domain.Owner {
		delegated, err := s.authorizer.IsDelegatedVerifier(ctx, domainID, caller)
		if err != nil {
			return 0, err
		}
		if !delegated {
			return 0, dErrors.New(dErrors.CodeUnauthorized, "caller may not verify activities in this domain")
		}
	}

	release := s.locks.Acquire(domainID, activity.Account)
	defer release()

	// Reload under the lock: a concurrent verify may have won the race
	// between the first read and the acquire.
	activity, err = s.store.FindByID(ctx, domainID, activityID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load activity")
	}
	if activity.Verified {
		return 0, dErrors.New(dErrors.CodeAlreadyVerified, "activity is already verified")
	}

	activity.Verified = true
	activity.VerifiedBy = caller
	if err := s.store.Save(ctx, activity); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store activity")
	}

	score, err := s.reputation.Recompute(ctx, domainID, activity.Account)
	if err != nil {
		return 0, err
	}

	s.emitAudit(ctx, audit.EventActivityVerified, domainID, caller, activity.Account, activityID)
	if s.metrics != nil {
		s.metrics.ActivitiesVerified.Inc()
	}
	return score, nil
}

// Get returns one activity, subject to the owner's privacy settings.
func (s *Service) Get(ctx context.Context, domainID id.DomainID, activityID uint64) (*Activity, error) {
	activity, err := s.store.FindByID(ctx, domainID, activityID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "activity not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load activity")
	}
	if !s.viewer.CanViewActivities(ctx, domainID, activity.Account, requestcontext.Caller(ctx)) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "activities are not visible to caller")
	}
	return activity, nil
}

// ListByAccount returns an account's activities, subject to their privacy
// settings.
func (s *Service) ListByAccount(ctx context.Context, domainID id.DomainID, account id.AccountID) ([]Activity, error) {
	if !s.viewer.CanViewActivities(ctx, domainID, account, requestcontext.Caller(ctx)) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "activities are not visible to caller")
	}
	activities, err := s.store.ListByAccount(ctx, domainID, account)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list activities")
	}
	return activities, nil
}

func (s *Service) emitAudit(ctx context.Context, action audit.Action, domainID id.DomainID, actor, subject id.AccountID, activityID uint64) {
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
		Detail:    strconv.FormatUint(activityID, 10),
	})
}
