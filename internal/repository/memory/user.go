package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/meetinghours/attendance-backend/internal/domain/user"
)

type userRepositoryImpl struct {
	store *Store
	now   func() time.Time
}

func NewUserRepository(store *Store) user.UserRepository {
	return &userRepositoryImpl{store: store, now: time.Now}
}

func (r *userRepositoryImpl) Create(ctx context.Context, u user.User) (user.User, error) {
	defer r.store.lock(ctx)()

	for _, existing := range r.store.data.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return user.User{}, user.ErrUserEmailExists
		}
	}
	r.store.data.users[u.ID] = u
	return u, nil
}

func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.store.data.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, u := range r.store.data.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *userRepositoryImpl) List(ctx context.Context) ([]user.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]user.User, 0, len(r.store.data.users))
	for _, u := range r.store.data.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *userRepositoryImpl) SetAdmin(ctx context.Context, id string, isAdmin bool) (user.User, error) {
	return r.update(ctx, id, func(u *user.User) {
		u.IsAdmin = isAdmin
	})
}

func (r *userRepositoryImpl) LinkGoogleAccount(ctx context.Context, id string, googleID string) (user.User, error) {
	return r.update(ctx, id, func(u *user.User) {
		provider := "google"
		u.OAuthProvider = &provider
		u.OAuthProviderID = &googleID
	})
}

func (r *userRepositoryImpl) TouchLastLogin(ctx context.Context, id string) error {
	now := r.now().UTC()
	_, err := r.update(ctx, id, func(u *user.User) {
		u.LastLoginAt = &now
	})
	return err
}

func (r *userRepositoryImpl) Delete(ctx context.Context, id string) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.data.users[id]; !ok {
		return user.ErrUserNotFound
	}
	delete(r.store.data.users, id)
	for key := range r.store.data.records {
		if key.userID == id {
			delete(r.store.data.records, key)
		}
	}
	for eid, e := range r.store.data.excuses {
		if e.UserID == id {
			delete(r.store.data.excuses, eid)
		}
	}
	for rid, req := range r.store.data.requests {
		if req.UserID == id {
			delete(r.store.data.requests, rid)
		}
	}
	return nil
}

func (r *userRepositoryImpl) update(ctx context.Context, id string, fn func(u *user.User)) (user.User, error) {
	defer r.store.lock(ctx)()

	u, ok := r.store.data.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	fn(&u)
	u.UpdatedAt = r.now().UTC()
	r.store.data.users[id] = u
	return u, nil
}
