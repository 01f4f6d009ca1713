// Package memory はDBなしで動くTransactionManager。
// テストと `serve --in-memory` で使う。
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"agrimarket/internal/domain/model"
	repo "agrimarket/internal/repository"
)

type ids struct {
	users, categories, products, wishlist, cartLines, orders, orderLines, reviews, auditLogs int64
}

type state struct {
	seq        ids
	users      map[int64]model.User
	categories map[int64]model.Category
	products   map[int64]model.Product
	wishlist   map[int64]model.WishlistItem
	cartLines  map[int64]model.CartLine
	orders     map[int64]model.Order
	orderLines map[int64]model.OrderLine
	reviews    map[int64]model.Review
	auditLogs  []model.AuditLog
}

func newState() *state {
	return &state{
		users:      map[int64]model.User{},
		categories: map[int64]model.Category{},
		products:   map[int64]model.Product{},
		wishlist:   map[int64]model.WishlistItem{},
		cartLines:  map[int64]model.CartLine{},
		orders:     map[int64]model.Order{},
		orderLines: map[int64]model.OrderLine{},
		reviews:    map[int64]model.Review{},
	}
}

func (s *state) clone() *state {
	return &state{
		seq:        s.seq,
		users:      maps.Clone(s.users),
		categories: maps.Clone(s.categories),
		products:   maps.Clone(s.products),
		wishlist:   maps.Clone(s.wishlist),
		cartLines:  maps.Clone(s.cartLines),
		orders:     maps.Clone(s.orders),
		orderLines: maps.Clone(s.orderLines),
		reviews:    maps.Clone(s.reviews),
		auditLogs:  append([]model.AuditLog(nil), s.auditLogs...),
	}
}

// Store はトランザクションごとに状態をコピーし、成功したときだけ差し替える。
// Txは1本ずつ直列に走る。
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

func NewStore() *Store {
	return &Store{st: newState(), now: time.Now}
}

var _ repo.TransactionManager = (*Store)(nil)

func (s *Store) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(&txRepos{st: work, now: s.now}); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Snapshot はテスト用に現在の状態を読むためのTx（書き込みは捨てる）。
func (s *Store) Snapshot(fn func(r repo.TxRepos)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&txRepos{st: s.st.clone(), now: s.now})
}

type txRepos struct {
	st  *state
	now func() time.Time
}

func (r *txRepos) Users() repo.UserRepository           { return userRepo{r} }
func (r *txRepos) Categories() repo.CategoryRepository  { return categoryRepo{r} }
func (r *txRepos) Products() repo.ProductRepository     { return productRepo{r} }
func (r *txRepos) Inventory() repo.InventoryRepository  { return inventoryRepo{r} }
func (r *txRepos) Wishlist() repo.WishlistRepository    { return wishlistRepo{r} }
func (r *txRepos) CartLines() repo.CartLineRepository   { return cartLineRepo{r} }
func (r *txRepos) Orders() repo.OrderRepository         { return orderRepo{r} }
func (r *txRepos) OrderLines() repo.OrderLineRepository { return orderLineRepo{r} }
func (r *txRepos) Reviews() repo.ReviewRepository       { return reviewRepo{r} }
func (r *txRepos) AuditLogs() repo.AuditLogRepository   { return auditLogRepo{r} }

// 0ならnowで埋める
func stamp(t *time.Time, now time.Time) {
	if t.IsZero() {
		*t = now
	}
}
