package usecase

import (
	"context"
	"errors"

	"agrimarket/internal/domain/model"
	repo "agrimarket/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /cart の業務ロジックです。
// 明細の変更は同じユーザーの行ロックを取ってから行う。
type CartUsecase struct {
	tx repo.TransactionManager
}

func NewCartUsecase(tx repo.TransactionManager) *CartUsecase {
	return &CartUsecase{tx: tx}
}

// price は商品の現在価格。
// 削除・非公開になった商品の明細は available=false（価格0）で返し、idで削除できるようにする。
type CartLineOutput struct {
	ID        int64       `json:"id"`
	ProductID int64       `json:"product_id"`
	Name      string      `json:"name"`
	Price     model.Money `json:"price"`
	Quantity  int64       `json:"quantity"`
	Subtotal  model.Money `json:"subtotal"`
	Available bool        `json:"available"`
}

type CartOutput struct {
	Items   []CartLineOutput `json:"items"`
	Total   model.Money      `json:"total"`
	Message string           `json:"message,omitempty"`
}

// ComputeTotal は購入できる明細の小計の合計。副作用なし。
func ComputeTotal(items []CartLineOutput) model.Money {
	total := decimal.Zero
	for _, it := range items {
		if !it.Available {
			continue
		}
		total = total.Add(it.Subtotal.Decimal)
	}
	return model.NewMoney(total)
}

func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, newError(ErrUnauthorized, "unauthorized")
	}

	var out CartOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		c, err := buildCart(ctx, r, userID)
		if err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return CartOutput{}, err
	}
	return out, nil
}

// AddToCart は1個追加（同一商品は数量+1、在庫を超えるなら何も変えない）。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, productID int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, newError(ErrUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return CartOutput{}, newError(ErrValidation, "invalid product_id")
	}

	var out CartOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := lockOwner(ctx, r, userID); err != nil {
			return err
		}

		// 商品チェック（公開のみ）
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return newError(ErrNotFound, "Product not found.")
		}
		if err != nil {
			return dbError(err)
		}
		if !p.IsActive {
			return newError(ErrNotFound, "Product not found.")
		}
		if p.Stock <= 0 {
			return newError(ErrOutOfStock, "Product is out of stock.")
		}

		line, found, err := r.CartLines().FindByUserAndProduct(ctx, userID, productID)
		if err != nil {
			return dbError(err)
		}

		msg := "Added to cart!"
		if !found {
			if _, err := r.CartLines().Create(ctx, model.CartLine{
				UserID:    userID,
				ProductID: productID,
				Quantity:  1,
			}); err != nil {
				return dbError(err)
			}
		} else {
			if line.Quantity+1 > p.Stock {
				return newError(ErrStockExceeded, "Cannot add more than available stock.")
			}
			if err := r.CartLines().UpdateQuantity(ctx, line.ID, line.Quantity+1); err != nil {
				return dbError(err)
			}
			msg = "Cart updated!"
		}

		c, err := buildCart(ctx, r, userID)
		if err != nil {
			return err
		}
		c.Message = msg
		out = c
		return nil
	})
	if err != nil {
		return CartOutput{}, err
	}
	return out, nil
}

// 数量変更（所有チェック＋在庫チェック）。0以下なら削除。
func (u *CartUsecase) UpdateQuantity(ctx context.Context, userID int64, cartLineID int64, quantity int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, newError(ErrUnauthorized, "unauthorized")
	}
	if cartLineID <= 0 {
		return CartOutput{}, newError(ErrValidation, "invalid id")
	}

	var out CartOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := lockOwner(ctx, r, userID); err != nil {
			return err
		}

		line, err := findOwnedLine(ctx, r, userID, cartLineID)
		if err != nil {
			return err
		}

		msg := "Cart updated!"
		if quantity <= 0 {
			if err := r.CartLines().DeleteByID(ctx, line.ID); err != nil {
				return dbError(err)
			}
			msg = "Item removed from cart."
		} else {
			p, err := r.Products().FindByID(ctx, line.ProductID)
			if errors.Is(err, repo.ErrNotFound) {
				return newError(ErrNotFound, "Product not found.")
			}
			if err != nil {
				return dbError(err)
			}
			if !p.IsActive {
				return newError(ErrNotFound, "Product not found.")
			}
			if quantity > p.Stock {
				return newError(ErrStockExceeded, "Quantity exceeds available stock.")
			}
			if err := r.CartLines().UpdateQuantity(ctx, line.ID, quantity); err != nil {
				return dbError(err)
			}
		}

		c, err := buildCart(ctx, r, userID)
		if err != nil {
			return err
		}
		c.Message = msg
		out = c
		return nil
	})
	if err != nil {
		return CartOutput{}, err
	}
	return out, nil
}

// 明細削除
func (u *CartUsecase) RemoveFromCart(ctx context.Context, userID int64, cartLineID int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, newError(ErrUnauthorized, "unauthorized")
	}
	if cartLineID <= 0 {
		return CartOutput{}, newError(ErrValidation, "invalid id")
	}

	var out CartOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := lockOwner(ctx, r, userID); err != nil {
			return err
		}

		line, err := findOwnedLine(ctx, r, userID, cartLineID)
		if err != nil {
			return err
		}
		if err := r.CartLines().DeleteByID(ctx, line.ID); err != nil && !errors.Is(err, repo.ErrNotFound) {
			return dbError(err)
		}

		c, err := buildCart(ctx, r, userID)
		if err != nil {
			return err
		}
		c.Message = "Item removed from cart."
		out = c
		return nil
	})
	if err != nil {
		return CartOutput{}, err
	}
	return out, nil
}

// 他人の明細は「存在しない扱い」にする
func findOwnedLine(ctx context.Context, r repo.TxRepos, userID int64, cartLineID int64) (model.CartLine, error) {
	line, err := r.CartLines().FindByID(ctx, cartLineID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.CartLine{}, newError(ErrNotFound, "Cart item not found.")
	}
	if err != nil {
		return model.CartLine{}, dbError(err)
	}
	if line.UserID != userID {
		return model.CartLine{}, newError(ErrNotFound, "Cart item not found.")
	}
	return line, nil
}

func lockOwner(ctx context.Context, r repo.TxRepos, userID int64) error {
	err := r.Users().LockByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return newError(ErrUnauthorized, "unauthorized")
	}
	if err != nil {
		return dbError(err)
	}
	return nil
}

// 明細を現在価格でまとめる。消えた商品・非公開の商品も明細としては残す（合計には入れない）。
func buildCart(ctx context.Context, r repo.TxRepos, userID int64) (CartOutput, error) {
	lines, err := r.CartLines().ListByUserID(ctx, userID)
	if err != nil {
		return CartOutput{}, dbError(err)
	}

	items := make([]CartLineOutput, 0, len(lines))
	for _, l := range lines {
		item := CartLineOutput{ID: l.ID, ProductID: l.ProductID, Quantity: l.Quantity}

		p, err := r.Products().FindByID(ctx, l.ProductID)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			item.Name = "Unavailable product"
		case err != nil:
			return CartOutput{}, dbError(err)
		case !p.IsActive:
			item.Name = p.Name
		default:
			item.Name = p.Name
			item.Price = p.Price
			item.Subtotal = model.Subtotal(p.Price, l.Quantity)
			item.Available = true
		}
		items = append(items, item)
	}

	return CartOutput{Items: items, Total: ComputeTotal(items)}, nil
}
