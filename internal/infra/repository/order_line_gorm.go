package repository

import (
	"context"

	"agrimarket/internal/domain/model"

	"gorm.io/gorm"
)

type OrderLineGormRepository struct {
	db *gorm.DB
}

func NewOrderLineGormRepository(db *gorm.DB) *OrderLineGormRepository {
	return &OrderLineGormRepository{db: db}
}

// 明細をまとめて作る
func (r *OrderLineGormRepository) CreateBulk(ctx context.Context, orderID int64, lines []model.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].OrderID = orderID
	}
	return mapErr(r.db.WithContext(ctx).Create(&lines).Error, "create order lines")
}

func (r *OrderLineGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
	var lines []model.OrderLine
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id asc").
		Find(&lines).Error
	if err != nil {
		return []model.OrderLine{}, mapErr(err, "list order lines")
	}
	return lines, nil
}

func (r *OrderLineGormRepository) ListBySellerID(ctx context.Context, sellerID int64) ([]model.OrderLine, error) {
	var lines []model.OrderLine
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("id desc").
		Find(&lines).Error
	if err != nil {
		return []model.OrderLine{}, mapErr(err, "list seller order lines")
	}
	return lines, nil
}

// deliveredの注文にその商品が含まれるか
func (r *OrderLineGormRepository) HasDeliveredPurchase(ctx context.Context, userID int64, productID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.OrderLine{}).
		Joins("JOIN orders ON orders.id = order_lines.order_id").
		Where("orders.user_id = ? AND order_lines.product_id = ? AND orders.status = ?", userID, productID, model.OrderStatusDelivered).
		Count(&n).Error
	if err != nil {
		return false, mapErr(err, "check delivered purchase")
	}
	return n > 0, nil
}
