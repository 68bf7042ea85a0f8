package delegation

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

// VerifierStore persists delegated verifiers keyed by (domain, account).
type VerifierStore interface {
	Find(ctx context.Context, domainID id.DomainID, account id.AccountID) (*DelegatedVerifier, error)
	Save(ctx context.Context, verifier *DelegatedVerifier) error
}

// DelegationStore persists reputation delegations keyed by (domain,
// delegator).
type DelegationStore interface {
	Find(ctx context.Context, domainID id.DomainID, delegator id.AccountID) (*Delegation, error)
	Save(ctx context.Context, delegation *Delegation) error
}

// DomainSource validates domain existence and activity.
type DomainSource interface {
	ValidateActive(ctx context.Context, domainID id.DomainID) (*registry.Domain, error)
}

// AuditPublisher captures delegation lifecycle events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service supplies authorization decisions for the verification-mutating
// paths and stores the advisory reputation delegations.
type Service struct {
	verifiers      VerifierStore
	delegations    DelegationStore
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

func New(verifiers VerifierStore, delegations DelegationStore, domains DomainSource, opts ...Option) *Service {
	s := &Service{verifiers: verifiers, delegations: delegations, domains: domains}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddVerificationProvider approves an account as a delegated verifier for
// the listed types. Owner-only; re-approval overwrites the existing record
// and reactivates it.
func (s *Service) AddVerificationProvider(ctx context.Context, domainID id.DomainID, account id.AccountID, title string, verificationTypes []string) (*DelegatedVerifier, error) {
	domain, err := s.domains.ValidateActive(ctx, domainID)
	if err != nil {
		return nil, err
	}
	caller := requestcontext.Caller(ctx)
	if caller != domain.Owner {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "only the domain owner may approve verifiers")
	}
	if account.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "verifier account is required")
	}

	verifier := &DelegatedVerifier{
		DomainID:          domainID,
		Account:           account,
		Title:             title,
		ApprovedBy:        caller,
		ApprovedAt:        requestcontext.Height(ctx),
		VerificationTypes: verificationTypes,
		Active:            true,
	}
	if err := verifier.Validate(); err != nil {
		return nil, err
	}
	if err := s.verifiers.Save(ctx, verifier); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store verifier")
	}

	s.emitAudit(ctx, audit.EventVerifierAdded, domainID, caller, account, "")
	return verifier, nil
}

// RevokeVerificationProvider deactivates a delegated verifier. Owner-only.
func (s *Service) RevokeVerificationProvider(ctx context.Context, domainID id.DomainID, account id.AccountID) error {
	domain, err := s.domains.ValidateActive(ctx, domainID)
	if err != nil {
		return err
	}
	caller := requestcontext.Caller(ctx)
	if caller != domain.Owner {
		return dErrors.New(dErrors.CodeUnauthorized, "only the domain owner may revoke verifiers")
	}

	verifier, err := s.verifiers.Find(ctx, domainID, account)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "verifier not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verifier")
	}

	verifier.Active = false
	if err := s.verifiers.Save(ctx, verifier); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store verifier")
	}

	s.emitAudit(ctx, audit.EventVerifierRevoked, domainID, caller, account, "")
	return nil
}

// IsDelegatedVerifier reports whether an active delegated-verifier record
// exists for the pair, regardless of type coverage.
func (s *Service) IsDelegatedVerifier(ctx context.Context, domainID id.DomainID, account id.AccountID) (bool, error) {
	verifier, err := s.verifiers.Find(ctx, domainID, account)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verifier")
	}
	return verifier.Active, nil
}

// CanVerifyType reports whether the account is an active delegated
// verifier whose listed types cover the given verification type.
func (s *Service) CanVerifyType(ctx context.Context, domainID id.DomainID, account id.AccountID, verificationType string) (bool, error) {
	verifier, err := s.verifiers.Find(ctx, domainID, account)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verifier")
	}
	return verifier.Active && verifier.CoversType(verificationType), nil
}

// GetVerificationProvider returns the stored verifier record.
func (s *Service) GetVerificationProvider(ctx context.Context, domainID id.DomainID, account id.AccountID) (*DelegatedVerifier, error) {
	verifier, err := s.verifiers.Find(ctx, domainID, account)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "verifier not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verifier")
	}
	return verifier, nil
}

// DelegateReputation records the caller naming a delegate for their own
// reputation-affecting operations. Not gated by domain ownership; at most
// one active delegation per (domain, delegator).
func (s *Service) DelegateReputation(ctx context.Context, domainID id.DomainID, delegate id.AccountID, expiresAt uint64) (*Delegation, error) {
	if _, err := s.domains.ValidateActive(ctx, domainID); err != nil {
		return nil, err
	}
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if delegate.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "delegate account is required")
	}
	height := requestcontext.Height(ctx)
	if expiresAt != 0 && expiresAt <= height {
		return nil, dErrors.New(dErrors.CodeValidation, "delegation expiry must be in the future")
	}

	delegation := &Delegation{
		DomainID:    domainID,
		Delegator:   caller,
		Delegate:    delegate,
		DelegatedAt: height,
		ExpiresAt:   expiresAt,
		Active:      true,
	}
	if err := s.delegations.Save(ctx, delegation); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store delegation")
	}

	s.emitAudit(ctx, audit.EventDelegationAdded, domainID, caller, delegate, "")
	return delegation, nil
}

// RemoveDelegation deactivates the caller's own delegation.
func (s *Service) RemoveDelegation(ctx context.Context, domainID id.DomainID) error {
	if _, err := s.domains.ValidateActive(ctx, domainID); err != nil {
		return err
	}
	caller := requestcontext.Caller(ctx)

	delegation, err := s.delegations.Find(ctx, domainID, caller)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "delegation not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load delegation")
	}
	if !delegation.Active {
		return dErrors.New(dErrors.CodeNotFound, "delegation not found")
	}

	delegation.Active = false
	if err := s.delegations.Save(ctx, delegation); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store delegation")
	}

	s.emitAudit(ctx, audit.EventDelegationRemoved, domainID, caller, delegation.Delegate, "")
	return nil
}

// GetDelegation returns the delegator's stored delegation.
func (s *Service) GetDelegation(ctx context.Context, domainID id.DomainID, delegator id.AccountID) (*Delegation, error) {
	delegation, err := s.delegations.Find(ctx, domainID, delegator)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "delegation not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load delegation")
	}
	return delegation, nil
}

func (s *Service) emitAudit(ctx context.Context, action audit.Action, domainID id.DomainID, actor, subject id.AccountID, detail string) {
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
		Detail:    detail,
	})
}
