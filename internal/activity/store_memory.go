package activity

import (
	"context"
	"sync"

	id "vouch/pkg/domain"
	"vouch/pkg/platform/sentinel"
)

// InMemoryStore keeps activities in per-domain append-only slices; the
// slice index is the activity id, which gives the monotonic per-domain
// counter for free.
type InMemoryStore struct {
	mu         sync.RWMutex
	activities map[id.DomainID][]*Activity
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{activities: make(map[id.DomainID][]*Activity)}
}

func (s *InMemoryStore) Append(_ context.Context, activity *Activity) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	assigned := uint64(len(s.activities[activity.DomainID]))
	stored := *activity
	stored.ID = assigned
	s.activities[activity.DomainID] = append(s.activities[activity.DomainID], &stored)
	return assigned, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, domainID id.DomainID, activityID uint64) (*Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	domainActivities := s.activities[domainID]
	if activityID >= uint64(len(domainActivities)) {
		return nil, sentinel.ErrNotFound
	}
	found := *domainActivities[activityID]
	return &found, nil
}

func (s *InMemoryStore) Save(_ context.Context, activity *Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	domainActivities := s.activities[activity.DomainID]
	if activity.ID >= uint64(len(domainActivities)) {
		return sentinel.ErrNotFound
	}
	stored := *activity
	domainActivities[activity.ID] = &stored
	return nil
}

func (s *InMemoryStore) ListByAccount(_ context.Context, domainID id.DomainID, account id.AccountID) ([]Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Activity
	for _, a := range s.activities[domainID] {
		if a.Account == account {
			out = append(out, *a)
		}
	}
	return out, nil
}
