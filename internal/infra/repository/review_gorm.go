package repository

import (
	"context"

	"agrimarket/internal/domain/model"

	"gorm.io/gorm"
)

type ReviewGormRepository struct {
	db *gorm.DB
}

func NewReviewGormRepository(db *gorm.DB) *ReviewGormRepository {
	return &ReviewGormRepository{db: db}
}

// (user, product)の一意制約違反はErrDuplicate
func (r *ReviewGormRepository) Create(ctx context.Context, rv model.Review) (model.Review, error) {
	if err := r.db.WithContext(ctx).Create(&rv).Error; err != nil {
		return model.Review{}, mapErr(err, "create review")
	}
	return rv, nil
}

func (r *ReviewGormRepository) Exists(ctx context.Context, userID int64, productID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&n).Error
	if err != nil {
		return false, mapErr(err, "check review")
	}
	return n > 0, nil
}

func (r *ReviewGormRepository) ListByProductID(ctx context.Context, productID int64) ([]model.Review, error) {
	var items []model.Review
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at desc").Order("id desc").
		Find(&items).Error
	if err != nil {
		return []model.Review{}, mapErr(err, "list reviews")
	}
	return items, nil
}
