package repository

import (
	"context"

	"agrimarket/internal/domain/model"
	repo "agrimarket/internal/repository"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartLineGormRepository struct {
	db *gorm.DB
}

func NewCartLineGormRepository(db *gorm.DB) *CartLineGormRepository {
	return &CartLineGormRepository{db: db}
}

// ユーザーの明細一覧。Tx内ではFOR UPDATEで行ロック。
func (r *CartLineGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.CartLine, error) {
	var lines []model.CartLine
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&lines).Error
	if err != nil {
		return []model.CartLine{}, mapErr(err, "list cart lines")
	}
	return lines, nil
}

func (r *CartLineGormRepository) FindByID(ctx context.Context, cartLineID int64) (model.CartLine, error) {
	var l model.CartLine
	if err := r.db.WithContext(ctx).First(&l, cartLineID).Error; err != nil {
		return model.CartLine{}, mapErr(err, "find cart line")
	}
	return l, nil
}

func (r *CartLineGormRepository) FindByUserAndProduct(ctx context.Context, userID int64, productID int64) (model.CartLine, bool, error) {
	var l model.CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CartLine{}, false, nil
	}
	if err != nil {
		return model.CartLine{}, false, mapErr(err, "find cart line by product")
	}
	return l, true, nil
}

func (r *CartLineGormRepository) Create(ctx context.Context, line model.CartLine) (model.CartLine, error) {
	if err := r.db.WithContext(ctx).Create(&line).Error; err != nil {
		return model.CartLine{}, mapErr(err, "create cart line")
	}
	return line, nil
}

func (r *CartLineGormRepository) UpdateQuantity(ctx context.Context, cartLineID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartLine{}).
		Where("id = ?", cartLineID).
		Update("quantity", qty)
	return affected(res, "update cart quantity")
}

func (r *CartLineGormRepository) DeleteByID(ctx context.Context, cartLineID int64) error {
	return affected(r.db.WithContext(ctx).Delete(&model.CartLine{}, cartLineID), "delete cart line")
}

// カートを空にする（0件でもエラーにしない）
func (r *CartLineGormRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CartLine{}).Error
	return mapErr(err, "clear cart")
}

func (r *CartLineGormRepository) DeleteByProductID(ctx context.Context, productID int64) error {
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&model.CartLine{}).Error
	return mapErr(err, "remove product from carts")
}

var _ repo.CartLineRepository = (*CartLineGormRepository)(nil)
