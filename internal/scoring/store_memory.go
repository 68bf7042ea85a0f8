package scoring

import (
	"context"
	"sync"

	id "vouch/pkg/domain"
	"vouch/pkg/platform/sentinel"
)

type recordKey struct {
	domainID id.DomainID
	account  id.AccountID
}

type InMemoryRecordStore struct {
	mu      sync.RWMutex
	records map[recordKey]*Record
}

func NewInMemoryRecordStore() *InMemoryRecordStore {
	return &InMemoryRecordStore{records: make(map[recordKey]*Record)}
}

func (s *InMemoryRecordStore) Find(_ context.Context, domainID id.DomainID, account id.AccountID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[recordKey{domainID: domainID, account: account}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	found := *record
	return &found, nil
}

func (s *InMemoryRecordStore) Save(_ context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *record
	s.records[recordKey{domainID: record.DomainID, account: record.Account}] = &stored
	return nil
}
