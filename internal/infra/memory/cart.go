package memory

import (
	"cmp"
	"context"
	"slices"

	"agrimarket/internal/domain/model"
	repo "agrimarket/internal/repository"
)

type cartLineRepo struct{ *txRepos }

func (r cartLineRepo) ListByUserID(ctx context.Context, userID int64) ([]model.CartLine, error) {
	out := []model.CartLine{}
	for _, l := range r.st.cartLines {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	slices.SortFunc(out, func(a, b model.CartLine) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r cartLineRepo) FindByID(ctx context.Context, cartLineID int64) (model.CartLine, error) {
	l, ok := r.st.cartLines[cartLineID]
	if !ok {
		return model.CartLine{}, repo.ErrNotFound
	}
	return l, nil
}

func (r cartLineRepo) FindByUserAndProduct(ctx context.Context, userID int64, productID int64) (model.CartLine, bool, error) {
	for _, l := range r.st.cartLines {
		if l.UserID == userID && l.ProductID == productID {
			return l, true, nil
		}
	}
	return model.CartLine{}, false, nil
}

func (r cartLineRepo) Create(ctx context.Context, line model.CartLine) (model.CartLine, error) {
	if _, found, _ := r.FindByUserAndProduct(ctx, line.UserID, line.ProductID); found {
		return model.CartLine{}, repo.ErrDuplicate
	}
	r.st.seq.cartLines++
	line.ID = r.st.seq.cartLines
	now := r.now()
	stamp(&line.CreatedAt, now)
	stamp(&line.UpdatedAt, now)
	r.st.cartLines[line.ID] = line
	return line, nil
}

func (r cartLineRepo) UpdateQuantity(ctx context.Context, cartLineID int64, qty int64) error {
	l, ok := r.st.cartLines[cartLineID]
	if !ok {
		return repo.ErrNotFound
	}
	l.Quantity = qty
	l.UpdatedAt = r.now()
	r.st.cartLines[cartLineID] = l
	return nil
}

func (r cartLineRepo) DeleteByID(ctx context.Context, cartLineID int64) error {
	if _, ok := r.st.cartLines[cartLineID]; !ok {
		return repo.ErrNotFound
	}
	delete(r.st.cartLines, cartLineID)
	return nil
}

func (r cartLineRepo) DeleteByUserID(ctx context.Context, userID int64) error {
	for id, l := range r.st.cartLines {
		if l.UserID == userID {
			delete(r.st.cartLines, id)
		}
	}
	return nil
}

func (r cartLineRepo) DeleteByProductID(ctx context.Context, productID int64) error {
	for id, l := range r.st.cartLines {
		if l.ProductID == productID {
			delete(r.st.cartLines, id)
		}
	}
	return nil
}
