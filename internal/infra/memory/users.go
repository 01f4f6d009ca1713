package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"agrimarket/internal/domain/model"
	repo "agrimarket/internal/repository"
)

type userRepo struct{ *txRepos }

func (r userRepo) Create(ctx context.Context, user *model.User) error {
	for _, u := range r.st.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repo.ErrDuplicate
		}
	}
	r.st.seq.users++
	user.ID = r.st.seq.users
	now := r.now()
	stamp(&user.CreatedAt, now)
	stamp(&user.UpdatedAt, now)
	r.st.users[user.ID] = *user
	return nil
}

func (r userRepo) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	u, ok := r.st.users[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range r.st.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r userRepo) Update(ctx context.Context, user *model.User) error {
	if _, ok := r.st.users[user.ID]; !ok {
		return repo.ErrNotFound
	}
	r.st.users[user.ID] = *user
	return nil
}

func (r userRepo) ListPendingSellers(ctx context.Context) ([]model.User, error) {
	out := []model.User{}
	for _, u := range r.st.users {
		if u.Role == model.RoleSeller && !u.IsApproved {
			out = append(out, u)
		}
	}
	slices.SortFunc(out, func(a, b model.User) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r userRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.st.users)), nil
}

// Txが直列なのでロックは存在確認だけ
func (r userRepo) LockByID(ctx context.Context, userID int64) error {
	if _, ok := r.st.users[userID]; !ok {
		return repo.ErrNotFound
	}
	return nil
}
