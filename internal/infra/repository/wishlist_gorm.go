package repository

import (
	"context"

	"agrimarket/internal/domain/model"
	repo "agrimarket/internal/repository"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type WishlistGormRepository struct {
	db *gorm.DB
}

func NewWishlistGormRepository(db *gorm.DB) *WishlistGormRepository {
	return &WishlistGormRepository{db: db}
}

func (r *WishlistGormRepository) Find(ctx context.Context, userID int64, productID int64) (model.WishlistItem, bool, error) {
	var it model.WishlistItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&it).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.WishlistItem{}, false, nil
	}
	if err != nil {
		return model.WishlistItem{}, false, mapErr(err, "find wishlist item")
	}
	return it, true, nil
}

func (r *WishlistGormRepository) Create(ctx context.Context, item model.WishlistItem) error {
	return mapErr(r.db.WithContext(ctx).Create(&item).Error, "create wishlist item")
}

func (r *WishlistGormRepository) DeleteByID(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Delete(&model.WishlistItem{}, id), "delete wishlist item")
}

func (r *WishlistGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.WishlistItem, error) {
	var items []model.WishlistItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").Order("id desc").
		Find(&items).Error
	if err != nil {
		return []model.WishlistItem{}, mapErr(err, "list wishlist")
	}
	return items, nil
}

var _ repo.WishlistRepository = (*WishlistGormRepository)(nil)
