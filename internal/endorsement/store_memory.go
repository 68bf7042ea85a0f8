package endorsement

import (
	"context"
	"sync"

	id "vouch/pkg/domain"
	"vouch/pkg/platform/sentinel"
)

type endorsementKey struct {
	domainID id.DomainID
	endorser id.AccountID
	endorsee id.AccountID
}

type InMemoryStore struct {
	mu           sync.RWMutex
	endorsements map[endorsementKey]*Endorsement
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{endorsements: make(map[endorsementKey]*Endorsement)}
}

func (s *InMemoryStore) Find(_ context.Context, domainID id.DomainID, endorser, endorsee id.AccountID) (*Endorsement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	endorsement, ok := s.endorsements[endorsementKey{domainID: domainID, endorser: endorser, endorsee: endorsee}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyEndorsement(endorsement), nil
}

func (s *InMemoryStore) Save(_ context.Context, endorsement *Endorsement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := endorsementKey{domainID: endorsement.DomainID, endorser: endorsement.Endorser, endorsee: endorsement.Endorsee}
	s.endorsements[key] = copyEndorsement(endorsement)
	return nil
}

func (s *InMemoryStore) ListByEndorsee(_ context.Context, domainID id.DomainID, endorsee id.AccountID) ([]Endorsement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Endorsement
	for key, e := range s.endorsements {
		if key.domainID == domainID && key.endorsee == endorsee {
			out = append(out, *copyEndorsement(e))
		}
	}
	return out, nil
}

func (s *InMemoryStore) ListByEndorser(_ context.Context, domainID id.DomainID, endorser id.AccountID) ([]Endorsement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Endorsement
	for key, e := range s.endorsements {
		if key.domainID == domainID && key.endorser == endorser {
			out = append(out, *copyEndorsement(e))
		}
	}
	return out, nil
}

func copyEndorsement(e *Endorsement) *Endorsement {
	copied := *e
	copied.Tags = append([]string(nil), e.Tags...)
	return &copied
}
