// Package memory is an in-process repository.UserRepository used for local
// runs without PostgreSQL. It is safe for concurrent use.
package memory

import (
	"context"
	"fmt"
	"sync"

	"respondapi/internal/model"
	"respondapi/internal/repository"
)

// UserStore keeps users in insertion order.
type UserStore struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]model.User
}

// NewUserStore returns an empty store.
func NewUserStore() *UserStore {
	return &UserStore{byID: make(map[string]model.User)}
}

var _ repository.UserRepository = (*UserStore)(nil)

func (s *UserStore) Create(_ context.Context, u *model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[u.ID]; exists {
		return nil, fmt.Errorf("insert user: duplicate id %q", u.ID)
	}
	s.byID[u.ID] = *u
	s.order = append(s.order, u.ID)

	out := *u
	return &out, nil
}

func (s *UserStore) FindByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *UserStore) List(_ context.Context, pq repository.PageQuery) (*repository.PageResult[model.User], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.order)
	start := min(max(pq.Offset, 0), total)
	end := total
	if pq.Limit > 0 {
		end = min(start+pq.Limit, total)
	}

	items := make([]model.User, 0, end-start)
	for _, id := range s.order[start:end] {
		items = append(items, s.byID[id])
	}
	return &repository.PageResult[model.User]{Items: items, Total: total}, nil
}

func (s *UserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
