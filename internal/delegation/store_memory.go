package delegation

import (
	"context"
	"sync"

	id "vouch/pkg/domain"
	"vouch/pkg/platform/sentinel"
)

type pairKey struct {
	domainID id.DomainID
	account  id.AccountID
}

type InMemoryVerifierStore struct {
	mu        sync.RWMutex
	verifiers map[pairKey]*DelegatedVerifier
}

func NewInMemoryVerifierStore() *InMemoryVerifierStore {
	return &InMemoryVerifierStore{verifiers: make(map[pairKey]*DelegatedVerifier)}
}

func (s *InMemoryVerifierStore) Find(_ context.Context, domainID id.DomainID, account id.AccountID) (*DelegatedVerifier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	verifier, ok := s.verifiers[pairKey{domainID: domainID, account: account}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	found := *verifier
	found.VerificationTypes = append([]string(nil), verifier.VerificationTypes...)
	return &found, nil
}

func (s *InMemoryVerifierStore) Save(_ context.Context, verifier *DelegatedVerifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *verifier
	stored.VerificationTypes = append([]string(nil), verifier.VerificationTypes...)
	s.verifiers[pairKey{domainID: verifier.DomainID, account: verifier.Account}] = &stored
	return nil
}

type InMemoryDelegationStore struct {
	mu          sync.RWMutex
	delegations map[pairKey]*Delegation
}

func NewInMemoryDelegationStore() *InMemoryDelegationStore {
	return &InMemoryDelegationStore{delegations: make(map[pairKey]*Delegation)}
}

func (s *InMemoryDelegationStore) Find(_ context.Context, domainID id.DomainID, delegator id.AccountID) (*Delegation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	delegation, ok := s.delegations[pairKey{domainID: domainID, account: delegator}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	found := *delegation
	return &found, nil
}

func (s *InMemoryDelegationStore) Save(_ context.Context, delegation *Delegation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *delegation
	s.delegations[pairKey{domainID: delegation.DomainID, account: delegation.Delegator}] = &stored
	return nil
}
