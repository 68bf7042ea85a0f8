package privacy

import (
	"context"
	"sync"

	id "vouch/pkg/domain"
	"vouch/pkg/platform/sentinel"
)

type settingsKey struct {
	domainID id.DomainID
	account  id.AccountID
}

type InMemoryStore struct {
	mu       sync.RWMutex
	settings map[settingsKey]*Settings
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{settings: make(map[settingsKey]*Settings)}
}

func (s *InMemoryStore) Find(_ context.Context, domainID id.DomainID, account id.AccountID) (*Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings, ok := s.settings[settingsKey{domainID: domainID, account: account}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	found := *settings
	found.AuthorizedViewers = append([]id.AccountID(nil), settings.AuthorizedViewers...)
	return &found, nil
}

func (s *InMemoryStore) Save(_ context.Context, settings *Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *settings
	stored.AuthorizedViewers = append([]id.AccountID(nil), settings.AuthorizedViewers...)
	s.settings[settingsKey{domainID: settings.DomainID, account: settings.Account}] = &stored
	return nil
}
