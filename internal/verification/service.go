package verification

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

// Store persists verifications keyed by (domain, account, type).
type Store interface {
	Find(ctx context.Context, domainID id.DomainID, account id.AccountID, verificationType string) (*Verification, error)
	Save(ctx context.Context, verification *Verification) error
	ListByAccount(ctx context.Context, domainID id.DomainID, account id.AccountID) ([]Verification, error)
}

// DomainSource validates domain existence and activity.
type DomainSource interface {
	ValidateActive(ctx context.Context, domainID id.DomainID) (*registry.Domain, error)
}

// ReputationLedger adjusts the stored verification tier and recomputes
// scores.
type ReputationLedger interface {
	RaiseTier(ctx context.Context, domainID id.DomainID, account id.AccountID, tier int64) error
	SetTier(ctx context.Context, domainID id.DomainID, account id.AccountID, tier int64) error
	Recompute(ctx context.Context, domainID id.DomainID, account id.AccountID) (int64, error)
}

// Authorizer answers whether an account may issue a given verification
// type.
type Authorizer interface {
	CanVerifyType(ctx context.Context, domainID id.DomainID, account id.AccountID, verificationType string) (bool, error)
}

// Locker linearizes mutations per (domain, account).
type Locker interface {
	Acquire(domainID id.DomainID, account id.AccountID) func()
}

// Viewer gates read access to an account's verifications.
type Viewer interface {
	CanViewVerifications(ctx context.Context, domainID id.DomainID, owner, viewer id.AccountID) bool
}

// AuditPublisher captures verification lifecycle events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns the verification ledger.
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

// Add upserts a verification for the account and ratchets their stored
// tier upward to max(current, tier). Only the domain owner or a delegated
// verifier covering the type may issue. Returns the account's recomputed
// score.
func (s *Service) Add(ctx context.Context, domainID id.DomainID, account id.AccountID, verificationType string, evidenceHash id.Hash, tier int64, expiresAt uint64) (int64, error) {
	domain, err := s.domains.ValidateActive(ctx, domainID)
	if err != nil {
		return 0, err
	}
	caller := requestcontext.Caller(ctx)
	if account.IsZero() {
		return 0, dErrors.New(dErrors.CodeValidation, "account is required")
	}

	height := requestcontext.Height(ctx)
	verification := &Verification{
		DomainID:     domainID,
		Account:      account,
		Type:         verificationType,
		VerifiedBy:   caller,
		VerifiedAt:   height,
		ExpiresAt:    expiresAt,
		EvidenceHash: evidenceHash,
		Tier:         tier,
		Active:       true,
	}
	if err := verification.Validate(); err != nil {
		return 0, err
	}
	if expiresAt != 0 && expiresAt <= height {
		return 0, dErrors.New(dErrors.CodeValidation, "verification expiry must be in the future")
	}

	if caller != domain.Owner {
		allowed, err := s.authorizer.CanVerifyType(ctx, domainID, caller, verificationType)
		if err != nil {
			return 0, err
		}
		if !allowed {
			return 0, dErrors.New(dErrors.CodeUnauthorized, "caller may not issue this verification type")
		}
	}

	release := s.locks.Acquire(domainID, account)
	defer release()

	if err := s.store.Save(ctx, verification); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store verification")
	}
	if err := s.reputation.RaiseTier(ctx, domainID, account, tier); err != nil {
		return 0, err
	}

	score, err := s.reputation.Recompute(ctx, domainID, account)
	if err != nil {
		return 0, err
	}

	s.emitAudit(ctx, audit.EventVerificationAdded, domainID, caller, account, verificationType)
	if s.metrics != nil {
		s.metrics.VerificationsAdded.Inc()
	}
	return score, nil
}

// Revoke deactivates a verification. Only the original issuer may revoke.
// The account's tier is then recomputed from scratch as the maximum tier
// among remaining active, unexpired verifications (0 if none), followed by
// a score recompute.
func (s *Service) Revoke(ctx context.Context, domainID id.DomainID, account id.AccountID, verificationType string) (int64, error) {
	if _, err := s.domains.ValidateActive(ctx, domainID); err != nil {
		return 0, err
	}
	caller := requestcontext.Caller(ctx)

	release := s.locks.Acquire(domainID, account)
	defer release()

	verification, err := s.store.Find(ctx, domainID, account, verificationType)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return 0, dErrors.New(dErrors.CodeNotFound, "verification not found")
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification")
	}
	if !verification.Active {
		return 0, dErrors.New(dErrors.CodeNotFound, "verification not found")
	}
	if caller != verification.VerifiedBy {
		return 0, dErrors.New(dErrors.CodeUnauthorized, "only the original verifier may revoke")
	}

	verification.Active = false
	if err := s.store.Save(ctx, verification); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store verification")
	}

	tier, err := s.currentMaxTier(ctx, domainID, account)
	if err != nil {
		return 0, err
	}
	if err := s.reputation.SetTier(ctx, domainID, account, tier); err != nil {
		return 0, err
	}

	score, err := s.reputation.Recompute(ctx, domainID, account)
	if err != nil {
		return 0, err
	}

	s.emitAudit(ctx, audit.EventVerificationRevoked, domainID, caller, account, verificationType)
	if s.metrics != nil {
		s.metrics.VerificationsRevoked.Inc()
	}
	return score, nil
}

// Get returns one verification, subject to the account's privacy
// settings.
func (s *Service) Get(ctx context.Context, domainID id.DomainID, account id.AccountID, verificationType string) (*Verification, error) {
	if !s.viewer.CanViewVerifications(ctx, domainID, account, requestcontext.Caller(ctx)) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "verifications are not visible to caller")
	}
	verification, err := s.store.Find(ctx, domainID, account, verificationType)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "verification not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification")
	}
	return verification, nil
}

// ListByAccount returns an account's verifications, subject to their
// privacy settings.
func (s *Service) ListByAccount(ctx context.Context, domainID id.DomainID, account id.AccountID) ([]Verification, error) {
	if !s.viewer.CanViewVerifications(ctx, domainID, account, requestcontext.Caller(ctx)) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "verifications are not visible to caller")
	}
	verifications, err := s.store.ListByAccount(ctx, domainID, account)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list verifications")
	}
	return verifications, nil
}

// currentMaxTier scans all of the account's verifications and returns the
// maximum tier among active, unexpired records, falling back to 0 when
// none remain.
func (s *Service) currentMaxTier(ctx context.Context, domainID id.DomainID, account id.AccountID) (int64, error) {
	verifications, err := s.store.ListByAccount(ctx, domainID, account)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list verifications")
	}
	height := requestcontext.Height(ctx)
	var maxTier int64
	for _, v := range verifications {
		if v.IsCurrent(height) && v.Tier > maxTier {
			maxTier = v.Tier
		}
	}
	return maxTier, nil
}

func (s *Service) emitAudit(ctx context.Context, action audit.Action, domainID id.DomainID, actor, subject id.AccountID, verificationType string) {
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
		Detail:    verificationType,
	})
}
