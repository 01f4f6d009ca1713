package memory

import (
	"cmp"
	"context"
	"slices"

	"agrimarket/internal/domain/model"
	repo "agrimarket/internal/repository"
)

type orderRepo struct{ *txRepos }

func (r orderRepo) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	o, ok := r.st.orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (r orderRepo) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	return r.FindByID(ctx, orderID)
}

func (r orderRepo) ListByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	out := []model.Order{}
	for _, o := range r.st.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	slices.SortFunc(out, newestOrderFirst)
	return out, nil
}

func (r orderRepo) Create(ctx context.Context, order model.Order) (int64, error) {
	for _, o := range r.st.orders {
		if o.OrderNumber == order.OrderNumber {
			return 0, repo.ErrDuplicate
		}
	}
	r.st.seq.orders++
	order.ID = r.st.seq.orders
	now := r.now()
	stamp(&order.CreatedAt, now)
	stamp(&order.UpdatedAt, now)
	r.st.orders[order.ID] = order
	return order.ID, nil
}

func (r orderRepo) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	o, ok := r.st.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = r.now()
	r.st.orders[orderID] = o
	return nil
}

func (r orderRepo) MarkPaid(ctx context.Context, orderID int64) error {
	o, ok := r.st.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	o.PaymentStatus = true
	o.UpdatedAt = r.now()
	r.st.orders[orderID] = o
	return nil
}

func (r orderRepo) ExistsByNumber(ctx context.Context, orderNumber string) (bool, error) {
	for _, o := range r.st.orders {
		if o.OrderNumber == orderNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r orderRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.st.orders)), nil
}

func (r orderRepo) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	out := []model.Order{}
	for _, o := range r.st.orders {
		if f.Status != "" && string(o.Status) != f.Status {
			continue
		}
		if f.UserID != nil && o.UserID != *f.UserID {
			continue
		}
		if f.From != nil && o.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && o.CreatedAt.After(*f.To) {
			continue
		}
		out = append(out, o)
	}
	slices.SortFunc(out, func(a, b model.Order) int { return cmp.Compare(b.ID, a.ID) })
	return page(out, f.Page, f.Limit), int64(len(out)), nil
}

func newestOrderFirst(a, b model.Order) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

type orderLineRepo struct{ *txRepos }

func (r orderLineRepo) CreateBulk(ctx context.Context, orderID int64, lines []model.OrderLine) error {
	if _, ok := r.st.orders[orderID]; !ok {
		return repo.ErrNotFound
	}
	for _, l := range lines {
		r.st.seq.orderLines++
		l.ID = r.st.seq.orderLines
		l.OrderID = orderID
		stamp(&l.CreatedAt, r.now())
		r.st.orderLines[l.ID] = l
	}
	return nil
}

func (r orderLineRepo) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
	return r.filter(func(l model.OrderLine) bool { return l.OrderID == orderID }, 1), nil
}

func (r orderLineRepo) ListBySellerID(ctx context.Context, sellerID int64) ([]model.OrderLine, error) {
	return r.filter(func(l model.OrderLine) bool { return l.SellerID == sellerID }, -1), nil
}

func (r orderLineRepo) HasDeliveredPurchase(ctx context.Context, userID int64, productID int64) (bool, error) {
	for _, l := range r.st.orderLines {
		if l.ProductID != productID {
			continue
		}
		o, ok := r.st.orders[l.OrderID]
		if ok && o.UserID == userID && o.Status == model.OrderStatusDelivered {
			return true, nil
		}
	}
	return false, nil
}

// dir=1でid昇順、-1で降順
func (r orderLineRepo) filter(keep func(model.OrderLine) bool, dir int) []model.OrderLine {
	out := []model.OrderLine{}
	for _, l := range r.st.orderLines {
		if keep(l) {
			out = append(out, l)
		}
	}
	slices.SortFunc(out, func(a, b model.OrderLine) int { return dir * cmp.Compare(a.ID, b.ID) })
	return out
}
