package verification

import (
	"context"
	"sync"

	id "vouch/pkg/domain"
	"vouch/pkg/platform/sentinel"
)

type verificationKey struct {
	domainID id.DomainID
	account  id.AccountID
	vtype    string
}

type InMemoryStore struct {
	mu            sync.RWMutex
	verifications map[verificationKey]*Verification
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{verifications: make(map[verificationKey]*Verification)}
}

func (s *InMemoryStore) Find(_ context.Context, domainID id.DomainID, account id.AccountID, verificationType string) (*Verification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	verification, ok := s.verifications[verificationKey{domainID: domainID, account: account, vtype: verificationType}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	found := *verification
	found.EvidenceHash = append(id.Hash(nil), verification.EvidenceHash...)
	return &found, nil
}

func (s *InMemoryStore) Save(_ context.Context, verification *Verification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *verification
	stored.EvidenceHash = append(id.Hash(nil), verification.EvidenceHash...)
	key := verificationKey{domainID: verification.DomainID, account: verification.Account, vtype: verification.Type}
	s.verifications[key] = &stored
	return nil
}

func (s *InMemoryStore) ListByAccount(_ context.Context, domainID id.DomainID, account id.AccountID) ([]Verification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Verification
	for key, v := range s.verifications {
		if key.domainID == domainID && key.account == account {
			out = append(out, *v)
		}
	}
	return out, nil
}
