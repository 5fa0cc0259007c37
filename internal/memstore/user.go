package memstore

import (
	"context"

	"farmdirect-be/internal/user"
)

type userRepo struct {
	s *Store
}

func (r *userRepo) Create(_ context.Context, u user.User) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Username == u.Username {
			return user.User{}, user.ErrUsernameExists
		}
		if existing.Email == u.Email {
			return user.User{}, user.ErrEmailExists
		}
	}

	u.ID = r.s.next("user")
	r.s.users[u.ID] = u
	return u, nil
}

func (r *userRepo) GetByID(_ context.Context, id int64) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *userRepo) FindByUsername(_ context.Context, username string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, id := range sortedIDs(r.s.users) {
		if r.s.users[id].Username == username {
			return r.s.users[id], nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}
