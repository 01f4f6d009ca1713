package model

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// レビューは(user, product)で1件だけ
type Review struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_review_user_product" json:"user_id"`
	ProductID int64     `gorm:"not null;uniqueIndex:idx_review_user_product;index" json:"product_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Body      string    `gorm:"type:text" json:"body"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
