package model

import "time"

type PaymentMethod string

const (
	PaymentCOD      PaymentMethod = "cod"
	PaymentRazorpay PaymentMethod = "razorpay"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCOD || m == PaymentRazorpay
}

type Order struct {
	ID              int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber     string        `gorm:"type:varchar(20);not null;uniqueIndex" json:"order_number"`
	UserID          int64         `gorm:"not null;index" json:"user_id"`
	Status          OrderStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentMethod   PaymentMethod `gorm:"type:varchar(20);not null;default:'cod'" json:"payment_method"`
	PaymentStatus   bool          `gorm:"not null;default:false" json:"payment_status"`
	ShippingAddress string        `gorm:"type:text;not null" json:"shipping_address"`
	ShippingPhone   string        `gorm:"type:varchar(15);not null" json:"shipping_phone"`
	TotalAmount     Money         `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	CreatedAt       time.Time     `gorm:"not null;index" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"not null" json:"updated_at"`
}

// 注文明細。商品が消えても履歴が残るように名前・価格・出品者をコピーして持つ。
// ProductIDは参照用（外部キーcascadeなし）。
type OrderLine struct {
	ID                  int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             int64     `gorm:"not null;index" json:"order_id"`
	ProductID           int64     `gorm:"not null;index" json:"product_id"`
	SellerID            int64     `gorm:"not null;index" json:"seller_id"`
	ProductNameSnapshot string    `gorm:"type:varchar(200);not null" json:"product_name"`
	UnitPriceSnapshot   Money     `gorm:"type:numeric(10,2);not null" json:"price"`
	Quantity            int64     `gorm:"not null" json:"quantity"`
	CreatedAt           time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (l OrderLine) Subtotal() Money {
	return Subtotal(l.UnitPriceSnapshot, l.Quantity)
}
