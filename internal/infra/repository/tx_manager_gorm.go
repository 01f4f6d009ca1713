package repository

import (
	"context"

	repo "agrimarket/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	users      repo.UserRepository
	categories repo.CategoryRepository
	products   repo.ProductRepository
	inventory  repo.InventoryRepository
	wishlist   repo.WishlistRepository
	cartLines  repo.CartLineRepository
	orders     repo.OrderRepository
	orderLines repo.OrderLineRepository
	reviews    repo.ReviewRepository
	auditLogs  repo.AuditLogRepository
}

func (r *txReposGorm) Users() repo.UserRepository           { return r.users }
func (r *txReposGorm) Categories() repo.CategoryRepository  { return r.categories }
func (r *txReposGorm) Products() repo.ProductRepository     { return r.products }
func (r *txReposGorm) Inventory() repo.InventoryRepository  { return r.inventory }
func (r *txReposGorm) Wishlist() repo.WishlistRepository    { return r.wishlist }
func (r *txReposGorm) CartLines() repo.CartLineRepository   { return r.cartLines }
func (r *txReposGorm) Orders() repo.OrderRepository         { return r.orders }
func (r *txReposGorm) OrderLines() repo.OrderLineRepository { return r.orderLines }
func (r *txReposGorm) Reviews() repo.ReviewRepository       { return r.reviews }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository   { return r.auditLogs }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			users:      NewUserGormRepository(tx),
			categories: NewCategoryGormRepository(tx),
			products:   NewProductGormRepository(tx),
			inventory:  NewInventoryGormRepository(tx),
			wishlist:   NewWishlistGormRepository(tx),
			cartLines:  NewCartLineGormRepository(tx),
			orders:     NewOrderGormRepository(tx),
			orderLines: NewOrderLineGormRepository(tx),
			reviews:    NewReviewGormRepository(tx),
			auditLogs:  NewAuditLogGormRepository(tx),
		}
		return fn(r)
	})
}

var _ repo.TransactionManager = (*TxManagerGorm)(nil)
