package repository

import (
	"context"

	"agrimarket/internal/domain/model"
)

type CartLineRepository interface {
	// ユーザーの明細一覧（Tx内では行ロック）
	ListByUserID(ctx context.Context, userID int64) ([]model.CartLine, error)
	FindByID(ctx context.Context, cartLineID int64) (model.CartLine, error)
	FindByUserAndProduct(ctx context.Context, userID int64, productID int64) (model.CartLine, bool, error)
	Create(ctx context.Context, line model.CartLine) (model.CartLine, error)
	UpdateQuantity(ctx context.Context, cartLineID int64, qty int64) error
	DeleteByID(ctx context.Context, cartLineID int64) error
	DeleteByUserID(ctx context.Context, userID int64) error
	// 商品の削除・非公開化で全ユーザーのカートから外す
	DeleteByProductID(ctx context.Context, productID int64) error
}
