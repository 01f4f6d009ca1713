package repository

import (
	"agrimarket/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// 一意制約違反
var ErrDuplicate = errors.New("duplicate")

// 並び順
const (
	SortPriceLow  = "price_low"
	SortPriceHigh = "price_high"
	SortNewest    = "newest"
)

// 一覧検索（単純な条件の絞り込み）
type ProductListQuery struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
	Sort       string
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	ListBySellerID(ctx context.Context, sellerID int64) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	Count(ctx context.Context) (int64, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id int64) error
}

type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id int64) (model.Category, error)
	// 名前で探して無ければ作る。作ったらtrue。
	GetOrCreate(ctx context.Context, name string, description string) (model.Category, bool, error)
}

type WishlistRepository interface {
	Find(ctx context.Context, userID int64, productID int64) (model.WishlistItem, bool, error)
	Create(ctx context.Context, item model.WishlistItem) error
	DeleteByID(ctx context.Context, id int64) error
	ListByUserID(ctx context.Context, userID int64) ([]model.WishlistItem, error)
}
