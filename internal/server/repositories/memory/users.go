package memory

import (
	"context"

	"github.com/dmitrijs2005/goalkeeper/internal/common"
	"github.com/dmitrijs2005/goalkeeper/internal/server/models"
)

type userRepo struct {
	h *handle
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.h.do(func(st *state) error {
		if err := checkUnique(st, u); err != nil {
			return err
		}
		if _, ok := st.users[u.ID]; ok {
			return conflict("id", u.ID)
		}
		st.users[u.ID] = u.Clone()
		return nil
	})
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.find(ctx, func(u *models.User) bool { return u.ID == id })
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.find(ctx, func(u *models.User) bool { return u.Username == username })
}

func (r *userRepo) GetNamedByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.find(ctx, func(u *models.User) bool {
		return u.Kind == models.KindNamed && u.Username == username
	})
}

func (r *userRepo) GetGuestByToken(ctx context.Context, token string) (*models.User, error) {
	return r.find(ctx, func(u *models.User) bool {
		return u.Kind == models.KindAnonymous && u.SessionToken != nil && *u.SessionToken == token
	})
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(ctx, func(u *models.User) bool { return u.Email != nil && *u.Email == email })
}

func (r *userRepo) Promote(ctx context.Context, id, username, passwordHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.h.do(func(st *state) error {
		u, ok := st.users[id]
		if !ok || u.Kind != models.KindAnonymous {
			return common.ErrorNotFound
		}
		for _, other := range st.users {
			if other.ID != id && other.Username == username {
				return conflict("username", username)
			}
		}
		u.Kind = models.KindNamed
		u.Username = username
		u.PasswordHash = passwordHash
		u.SessionToken = nil
		return nil
	})
}

func (r *userRepo) UpdateProfile(ctx context.Context, u *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.h.do(func(st *state) error {
		cur, ok := st.users[u.ID]
		if !ok {
			return common.ErrorNotFound
		}
		if u.Email != nil {
			for _, other := range st.users {
				if other.ID != u.ID && other.Email != nil && *other.Email == *u.Email {
					return conflict("email", *u.Email)
				}
			}
		}
		next := u.Clone()
		cur.DisplayName = next.DisplayName
		cur.TimeZone = next.TimeZone
		cur.Email = next.Email
		return nil
	})
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.h.do(func(st *state) error {
		if _, ok := st.users[id]; !ok {
			return common.ErrorNotFound
		}
		delete(st.users, id)
		for gid, g := range st.goals {
			if g.OwnerID == id {
				delete(st.goals, gid)
			}
		}
		return nil
	})
}

func (r *userRepo) find(ctx context.Context, match func(u *models.User) bool) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var found *models.User
	err := r.h.do(func(st *state) error {
		for _, u := range st.users {
			if match(u) {
				found = u.Clone()
				return nil
			}
		}
		return common.ErrorNotFound
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func checkUnique(st *state, u *models.User) error {
	for _, other := range st.users {
		if other.Username == u.Username {
			return conflict("username", u.Username)
		}
		if u.Email != nil && other.Email != nil && *other.Email == *u.Email {
			return conflict("email", *u.Email)
		}
		if u.SessionToken != nil && other.SessionToken != nil && *other.SessionToken == *u.SessionToken {
			return conflict("session_token", *u.SessionToken)
		}
	}
	return nil
}
