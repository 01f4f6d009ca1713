package repository

import (
	"context"
	"time"

	"agrimarket/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	// 更新前に行ロックして取得
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64) ([]model.Order, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	MarkPaid(ctx context.Context, orderID int64) error
	ExistsByNumber(ctx context.Context, orderNumber string) (bool, error)
	Count(ctx context.Context) (int64, error)

	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}

type OrderLineRepository interface {
	CreateBulk(ctx context.Context, orderID int64, lines []model.OrderLine) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderLine, error)
	// 出品者の商品が売れた明細
	ListBySellerID(ctx context.Context, sellerID int64) ([]model.OrderLine, error)
	// deliveredの注文にその商品が含まれているか
	HasDeliveredPurchase(ctx context.Context, userID int64, productID int64) (bool, error)
}
