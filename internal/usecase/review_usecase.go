package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"agrimarket/internal/domain/model"
	repo "agrimarket/internal/repository"
)

type ReviewUsecase struct {
	tx repo.TransactionManager
}

func NewReviewUsecase(tx repo.TransactionManager) *ReviewUsecase {
	return &ReviewUsecase{tx: tx}
}

type AddReviewInput struct {
	Rating int
	Body   string
}

type ReviewOutput struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ProductID int64     `json:"product_id"`
	Rating    int       `json:"rating"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	Message   string    `json:"message,omitempty"`
}

// AddReview はdeliveredの注文で買った商品にだけ、1人1件レビューできる。
func (u *ReviewUsecase) AddReview(ctx context.Context, userID int64, productID int64, in AddReviewInput) (ReviewOutput, error) {
	if userID <= 0 {
		return ReviewOutput{}, newError(ErrUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return ReviewOutput{}, newError(ErrValidation, "invalid product_id")
	}
	if in.Rating < model.MinRating || in.Rating > model.MaxRating {
		return ReviewOutput{}, newError(ErrValidation, "rating must be between 1 and 5")
	}

	var out ReviewOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Products().FindByID(ctx, productID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return newError(ErrNotFound, "Product not found.")
			}
			return dbError(err)
		}

		purchased, err := r.OrderLines().HasDeliveredPurchase(ctx, userID, productID)
		if err != nil {
			return dbError(err)
		}
		if !purchased {
			return newError(ErrNotPurchased, "You can only review products you have purchased.")
		}

		exists, err := r.Reviews().Exists(ctx, userID, productID)
		if err != nil {
			return dbError(err)
		}
		if exists {
			return newError(ErrDuplicateReview, "You have already reviewed this product.")
		}

		created, err := r.Reviews().Create(ctx, model.Review{
			UserID:    userID,
			ProductID: productID,
			Rating:    in.Rating,
			Body:      strings.TrimSpace(in.Body),
			CreatedAt: time.Now(),
		})
		//同時送信で一意制約に当たった場合
		if errors.Is(err, repo.ErrDuplicate) {
			return newError(ErrDuplicateReview, "You have already reviewed this product.")
		}
		if err != nil {
			return dbError(err)
		}

		out = toReviewOutput(created)
		out.Message = "Review added successfully!"
		return nil
	})
	if err != nil {
		return ReviewOutput{}, err
	}
	return out, nil
}

func (u *ReviewUsecase) ListReviews(ctx context.Context, productID int64) ([]ReviewOutput, error) {
	if productID <= 0 {
		return []ReviewOutput{}, newError(ErrValidation, "invalid product_id")
	}

	var outs []ReviewOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		reviews, err := r.Reviews().ListByProductID(ctx, productID)
		if err != nil {
			return dbError(err)
		}
		outs = make([]ReviewOutput, 0, len(reviews))
		for _, rv := range reviews {
			outs = append(outs, toReviewOutput(rv))
		}
		return nil
	})
	if err != nil {
		return []ReviewOutput{}, err
	}
	return outs, nil
}

func toReviewOutput(r model.Review) ReviewOutput {
	return ReviewOutput{
		ID:        r.ID,
		UserID:    r.UserID,
		ProductID: r.ProductID,
		Rating:    r.Rating,
		Body:      r.Body,
		CreatedAt: r.CreatedAt,
	}
}
