package repository

import (
	"context"

	"agrimarket/internal/domain/model"
)

type ReviewRepository interface {
	Create(ctx context.Context, r model.Review) (model.Review, error)
	Exists(ctx context.Context, userID int64, productID int64) (bool, error)
	ListByProductID(ctx context.Context, productID int64) ([]model.Review, error)
}
