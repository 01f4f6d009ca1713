package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// カートの明細。(user, product) で1行だけ。
// 価格は持たず、常に商品の現在価格で計算する。
type CartLine struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"user_id"`
	ProductID int64     `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"`
	Quantity  int64     `gorm:"not null;check:quantity >= 1" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// Subtotal = price × quantity
func Subtotal(price Money, quantity int64) Money {
	return NewMoney(price.Mul(decimal.NewFromInt(quantity)))
}
