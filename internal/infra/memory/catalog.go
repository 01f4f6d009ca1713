package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"agrimarket/internal/domain/model"
	repo "agrimarket/internal/repository"

	"gorm.io/gorm"
)

type categoryRepo struct{ *txRepos }

func (r categoryRepo) List(ctx context.Context) ([]model.Category, error) {
	out := make([]model.Category, 0, len(r.st.categories))
	for _, c := range r.st.categories {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b model.Category) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r categoryRepo) FindByID(ctx context.Context, id int64) (model.Category, error) {
	c, ok := r.st.categories[id]
	if !ok {
		return model.Category{}, repo.ErrNotFound
	}
	return c, nil
}

func (r categoryRepo) GetOrCreate(ctx context.Context, name string, description string) (model.Category, bool, error) {
	for _, c := range r.st.categories {
		if c.Name == name {
			return c, false, nil
		}
	}
	r.st.seq.categories++
	c := model.Category{ID: r.st.seq.categories, Name: name, Description: description, CreatedAt: r.now()}
	r.st.categories[c.ID] = c
	return c, true, nil
}

type productRepo struct{ *txRepos }

func (r productRepo) live(id int64) (model.Product, bool) {
	p, ok := r.st.products[id]
	if !ok || p.DeletedAt.Valid {
		return model.Product{}, false
	}
	return p, true
}

func (r productRepo) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	needle := strings.ToLower(strings.TrimSpace(q.Q))

	matched := []model.Product{}
	for _, p := range r.st.products {
		if p.DeletedAt.Valid || !p.IsActive {
			continue
		}
		if q.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *q.CategoryID) {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			continue
		}
		matched = append(matched, p)
	}

	slices.SortFunc(matched, func(a, b model.Product) int {
		switch q.Sort {
		case repo.SortPriceLow:
			if c := a.Price.Cmp(b.Price.Decimal); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		case repo.SortPriceHigh:
			if c := b.Price.Cmp(a.Price.Decimal); c != 0 {
				return c
			}
			return cmp.Compare(b.ID, a.ID)
		default:
			if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
				return c
			}
			return cmp.Compare(b.ID, a.ID)
		}
	})

	total := int64(len(matched))
	return page(matched, q.Page, q.Limit), total, nil
}

func (r productRepo) ListBySellerID(ctx context.Context, sellerID int64) ([]model.Product, error) {
	out := []model.Product{}
	for _, p := range r.st.products {
		if p.SellerID == sellerID && !p.DeletedAt.Valid {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b model.Product) int { return cmp.Compare(b.ID, a.ID) })
	return out, nil
}

func (r productRepo) FindByID(ctx context.Context, id int64) (model.Product, error) {
	p, ok := r.live(id)
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (r productRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	for _, p := range r.st.products {
		if !p.DeletedAt.Valid {
			n++
		}
	}
	return n, nil
}

func (r productRepo) Create(ctx context.Context, p model.Product) (model.Product, error) {
	r.st.seq.products++
	p.ID = r.st.seq.products
	now := r.now()
	stamp(&p.CreatedAt, now)
	stamp(&p.UpdatedAt, now)
	r.st.products[p.ID] = p
	return p, nil
}

func (r productRepo) Update(ctx context.Context, p model.Product) error {
	cur, ok := r.live(p.ID)
	if !ok {
		return repo.ErrNotFound
	}
	cur.Name = p.Name
	cur.Description = p.Description
	cur.CategoryID = p.CategoryID
	cur.Price = p.Price
	cur.Stock = p.Stock
	cur.IsActive = p.IsActive
	cur.UpdatedAt = r.now()
	r.st.products[p.ID] = cur
	return nil
}

func (r productRepo) SoftDelete(ctx context.Context, id int64) error {
	p, ok := r.live(id)
	if !ok {
		return repo.ErrNotFound
	}
	p.DeletedAt = gorm.DeletedAt{Time: r.now(), Valid: true}
	r.st.products[id] = p
	return nil
}

type inventoryRepo struct{ *txRepos }

func (r inventoryRepo) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	p, ok := productRepo(r).live(productID)
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	r.st.products[productID] = p
	return true, nil
}

// 論理削除済みにも戻す
func (r inventoryRepo) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	p, ok := r.st.products[productID]
	if !ok {
		return repo.ErrNotFound
	}
	p.Stock += qty
	r.st.products[productID] = p
	return nil
}

type wishlistRepo struct{ *txRepos }

func (r wishlistRepo) Find(ctx context.Context, userID int64, productID int64) (model.WishlistItem, bool, error) {
	for _, it := range r.st.wishlist {
		if it.UserID == userID && it.ProductID == productID {
			return it, true, nil
		}
	}
	return model.WishlistItem{}, false, nil
}

func (r wishlistRepo) Create(ctx context.Context, item model.WishlistItem) error {
	if _, found, _ := r.Find(ctx, item.UserID, item.ProductID); found {
		return repo.ErrDuplicate
	}
	r.st.seq.wishlist++
	item.ID = r.st.seq.wishlist
	stamp(&item.CreatedAt, r.now())
	r.st.wishlist[item.ID] = item
	return nil
}

func (r wishlistRepo) DeleteByID(ctx context.Context, id int64) error {
	if _, ok := r.st.wishlist[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.st.wishlist, id)
	return nil
}

func (r wishlistRepo) ListByUserID(ctx context.Context, userID int64) ([]model.WishlistItem, error) {
	out := []model.WishlistItem{}
	for _, it := range r.st.wishlist {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	slices.SortFunc(out, func(a, b model.WishlistItem) int { return cmp.Compare(b.ID, a.ID) })
	return out, nil
}

// 1始まりのページを切り出す
func page[T any](items []T, pageNo int, limit int) []T {
	if limit <= 0 {
		return items
	}
	if pageNo < 1 {
		pageNo = 1
	}
	start := (pageNo - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := min(start+limit, len(items))
	return items[start:end]
}
