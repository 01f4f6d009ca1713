package memory

import (
	"cmp"
	"context"
	"slices"

	"agrimarket/internal/domain/model"
	repo "agrimarket/internal/repository"
)

type reviewRepo struct{ *txRepos }

func (r reviewRepo) Create(ctx context.Context, rv model.Review) (model.Review, error) {
	if ok, _ := r.Exists(ctx, rv.UserID, rv.ProductID); ok {
		return model.Review{}, repo.ErrDuplicate
	}
	r.st.seq.reviews++
	rv.ID = r.st.seq.reviews
	stamp(&rv.CreatedAt, r.now())
	r.st.reviews[rv.ID] = rv
	return rv, nil
}

func (r reviewRepo) Exists(ctx context.Context, userID int64, productID int64) (bool, error) {
	for _, rv := range r.st.reviews {
		if rv.UserID == userID && rv.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (r reviewRepo) ListByProductID(ctx context.Context, productID int64) ([]model.Review, error) {
	out := []model.Review{}
	for _, rv := range r.st.reviews {
		if rv.ProductID == productID {
			out = append(out, rv)
		}
	}
	slices.SortFunc(out, func(a, b model.Review) int { return cmp.Compare(b.ID, a.ID) })
	return out, nil
}

type auditLogRepo struct{ *txRepos }

func (r auditLogRepo) Record(ctx context.Context, log model.AuditLog) error {
	r.st.seq.auditLogs++
	log.ID = r.st.seq.auditLogs
	stamp(&log.CreatedAt, r.now())
	r.st.auditLogs = append(r.st.auditLogs, log)
	return nil
}

// 新しい順
func (r auditLogRepo) List(ctx context.Context, q repo.AuditLogQuery) ([]model.AuditLog, error) {
	out := []model.AuditLog{}
	for _, l := range slices.Backward(r.st.auditLogs) {
		if q.Matches(l) {
			out = append(out, l)
		}
	}

	limit, offset := q.Page()
	if offset >= len(out) {
		return []model.AuditLog{}, nil
	}
	return out[offset:min(offset+limit, len(out))], nil
}
