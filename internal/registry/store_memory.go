package registry

import (
	"context"
	"sync"

	id "vouch/pkg/domain"
	"vouch/pkg/platform/sentinel"
)

// InMemoryStore keeps domains in an append-only slice; the slice index is
// the domain ID, which gives sequential assignment for free.
type InMemoryStore struct {
	mu      sync.RWMutex
	domains []*Domain
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, domain *Domain) (id.DomainID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	assigned := id.DomainID(len(s.domains))
	stored := *domain
	stored.ID = assigned
	s.domains = append(s.domains, &stored)
	return assigned, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, domainID id.DomainID) (*Domain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if uint64(domainID) >= uint64(len(s.domains)) {
		return nil, sentinel.ErrNotFound
	}
	found := *s.domains[domainID]
	return &found, nil
}
