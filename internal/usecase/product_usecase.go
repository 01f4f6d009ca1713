package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"agrimarket/internal/domain/model"
	repo "agrimarket/internal/repository"

	"github.com/shopspring/decimal"
)

// 初期カテゴリ
var DefaultCategories = []model.Category{
	{Name: "Seeds", Description: "High-quality seeds for various crops including wheat, rice, vegetables, and more"},
	{Name: "Fertilizers", Description: "Organic and chemical fertilizers to boost crop growth and yield"},
	{Name: "Pesticides", Description: "Effective pest control solutions for protecting your crops"},
	{Name: "Tools", Description: "Agricultural tools and equipment for farming operations"},
	{Name: "Irrigation", Description: "Irrigation systems and equipment for efficient water management"},
	{Name: "Machinery", Description: "Agricultural machinery and equipment for modern farming"},
}

type ProductUsecase struct {
	tx repo.TransactionManager
}

// DI
func NewProductUsecase(tx repo.TransactionManager) *ProductUsecase {
	return &ProductUsecase{tx: tx}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
	Sort       string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type ProductDetailOutput struct {
	Product   model.Product  `json:"product"`
	Reviews   []ReviewOutput `json:"reviews"`
	CanReview bool           `json:"can_review"`
}

// 出品・更新の入力。priceは文字列の小数（"12.50"）。
type ProductInput struct {
	Name        string
	Description string
	CategoryID  *int64
	Price       string
	Stock       int64
	IsActive    bool
}

type ProductOutput struct {
	Product model.Product `json:"product"`
	Message string        `json:"message"`
}

type WishlistToggleOutput struct {
	ProductID int64  `json:"product_id"`
	Added     bool   `json:"added"`
	Message   string `json:"message"`
}

type SeedResult struct {
	Created  []string `json:"created"`
	Existing []string `json:"existing"`
}

func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, newError(ErrValidation, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, newError(ErrValidation, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, newError(ErrValidation, "q too long")
	}
	switch in.Sort {
	case "", repo.SortPriceLow, repo.SortPriceHigh, repo.SortNewest:
	default:
		return ProductListOutput{}, newError(ErrValidation, "invalid sort")
	}

	var out ProductListOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		items, total, err := r.Products().ListPublic(ctx, repo.ProductListQuery{
			Page:       in.Page,
			Limit:      in.Limit,
			Q:          strings.TrimSpace(in.Q),
			CategoryID: in.CategoryID,
			Sort:       in.Sort,
		})
		if err != nil {
			return dbError(err)
		}
		out = ProductListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}
		return nil
	})
	if err != nil {
		return ProductListOutput{}, err
	}
	return out, nil
}

// 詳細。viewerIDが0なら未ログイン扱い（can_review=false）。
func (u *ProductUsecase) GetProductDetail(ctx context.Context, viewerID int64, productID int64) (ProductDetailOutput, error) {
	if productID <= 0 {
		return ProductDetailOutput{}, newError(ErrValidation, "invalid product id")
	}

	var out ProductDetailOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return newError(ErrNotFound, "not found")
		}
		if err != nil {
			return dbError(err)
		}
		//非公開は出品者本人にだけ見せる
		if !p.IsActive && p.SellerID != viewerID {
			return newError(ErrNotFound, "not found")
		}

		reviews, err := r.Reviews().ListByProductID(ctx, productID)
		if err != nil {
			return dbError(err)
		}
		outs := make([]ReviewOutput, 0, len(reviews))
		for _, rv := range reviews {
			outs = append(outs, toReviewOutput(rv))
		}

		canReview := false
		if viewerID > 0 {
			canReview, err = r.OrderLines().HasDeliveredPurchase(ctx, viewerID, productID)
			if err != nil {
				return dbError(err)
			}
		}

		out = ProductDetailOutput{Product: p, Reviews: outs, CanReview: canReview}
		return nil
	})
	if err != nil {
		return ProductDetailOutput{}, err
	}
	return out, nil
}

func (u *ProductUsecase) ListCategories(ctx context.Context) ([]model.Category, error) {
	var cats []model.Category
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		list, err := r.Categories().List(ctx)
		if err != nil {
			return dbError(err)
		}
		cats = list
		return nil
	})
	if err != nil {
		return []model.Category{}, err
	}
	return cats, nil
}

// SeedCategories は初期カテゴリを作る。既にあればそのまま（何度実行してもよい）。
func (u *ProductUsecase) SeedCategories(ctx context.Context) (SeedResult, error) {
	res := SeedResult{Created: []string{}, Existing: []string{}}
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		for _, c := range DefaultCategories {
			cat, created, err := r.Categories().GetOrCreate(ctx, c.Name, c.Description)
			if err != nil {
				return dbError(err)
			}
			if created {
				res.Created = append(res.Created, cat.Name)
			} else {
				res.Existing = append(res.Existing, cat.Name)
			}
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}
	return res, nil
}

// 出品（承認済みsellerのみ）
func (u *ProductUsecase) CreateProduct(ctx context.Context, actor model.Identity, in ProductInput) (ProductOutput, error) {
	if err := requireSeller(actor); err != nil {
		return ProductOutput{}, err
	}
	name, price, err := validateProductInput(in)
	if err != nil {
		return ProductOutput{}, err
	}

	var out ProductOutput
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := checkCategory(ctx, r, in.CategoryID); err != nil {
			return err
		}

		now := time.Now()
		p, err := r.Products().Create(ctx, model.Product{
			SellerID:    actor.UserID,
			CategoryID:  in.CategoryID,
			Name:        name,
			Description: strings.TrimSpace(in.Description),
			Price:       model.NewMoney(price),
			Stock:       in.Stock,
			IsActive:    in.IsActive,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return dbError(err)
		}
		out = ProductOutput{Product: p, Message: "Product added successfully!"}
		return nil
	})
	if err != nil {
		return ProductOutput{}, err
	}
	return out, nil
}

// 自分の商品だけ更新できる。在庫が変わったら監査ログ。
func (u *ProductUsecase) UpdateProduct(ctx context.Context, actor model.Identity, productID int64, in ProductInput) (ProductOutput, error) {
	if err := requireSeller(actor); err != nil {
		return ProductOutput{}, err
	}
	if productID <= 0 {
		return ProductOutput{}, newError(ErrValidation, "invalid product id")
	}
	name, price, err := validateProductInput(in)
	if err != nil {
		return ProductOutput{}, err
	}

	var out ProductOutput
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := findOwnedProduct(ctx, r, actor.UserID, productID)
		if err != nil {
			return err
		}
		if err := checkCategory(ctx, r, in.CategoryID); err != nil {
			return err
		}

		beforeStock, wasActive := p.Stock, p.IsActive
		p.Name = name
		p.Description = strings.TrimSpace(in.Description)
		p.CategoryID = in.CategoryID
		p.Price = model.NewMoney(price)
		p.Stock = in.Stock
		p.IsActive = in.IsActive
		p.UpdatedAt = time.Now()

		if err := r.Products().Update(ctx, p); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return newError(ErrNotFound, "not found")
			}
			return dbError(err)
		}

		// 非公開にしたら誰のカートにも残さない
		if wasActive && !p.IsActive {
			if err := r.CartLines().DeleteByProductID(ctx, p.ID); err != nil {
				return dbError(err)
			}
		}

		if beforeStock != p.Stock {
			entry := model.NewAuditLog(actor.UserID, model.AuditActionUpdateStock, model.ProductTarget(p.ID),
				"stock", beforeStock, p.Stock, time.Now())
			if err := r.AuditLogs().Record(ctx, entry); err != nil {
				return dbError(err)
			}
		}

		out = ProductOutput{Product: p, Message: "Product updated successfully!"}
		return nil
	})
	if err != nil {
		return ProductOutput{}, err
	}
	return out, nil
}

// 論理削除。過去の注文明細はスナップショットを持つので残る。
func (u *ProductUsecase) DeleteProduct(ctx context.Context, actor model.Identity, productID int64) error {
	if err := requireSeller(actor); err != nil {
		return err
	}
	if productID <= 0 {
		return newError(ErrValidation, "invalid product id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := findOwnedProduct(ctx, r, actor.UserID, productID); err != nil {
			return err
		}
		err := r.Products().SoftDelete(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return newError(ErrNotFound, "not found")
		}
		if err != nil {
			return dbError(err)
		}
		if err := r.CartLines().DeleteByProductID(ctx, productID); err != nil {
			return dbError(err)
		}
		return nil
	})
}

// お気に入りの追加/解除を切り替える
func (u *ProductUsecase) ToggleWishlist(ctx context.Context, userID int64, productID int64) (WishlistToggleOutput, error) {
	if userID <= 0 {
		return WishlistToggleOutput{}, newError(ErrUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return WishlistToggleOutput{}, newError(ErrValidation, "invalid product id")
	}

	var out WishlistToggleOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Products().FindByID(ctx, productID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return newError(ErrNotFound, "not found")
			}
			return dbError(err)
		}

		item, found, err := r.Wishlist().Find(ctx, userID, productID)
		if err != nil {
			return dbError(err)
		}
		if found {
			if err := r.Wishlist().DeleteByID(ctx, item.ID); err != nil {
				return dbError(err)
			}
			out = WishlistToggleOutput{ProductID: productID, Added: false, Message: "Removed from wishlist."}
			return nil
		}

		if err := r.Wishlist().Create(ctx, model.WishlistItem{UserID: userID, ProductID: productID}); err != nil {
			return dbError(err)
		}
		out = WishlistToggleOutput{ProductID: productID, Added: true, Message: "Added to wishlist!"}
		return nil
	})
	if err != nil {
		return WishlistToggleOutput{}, err
	}
	return out, nil
}

func (u *ProductUsecase) ListWishlist(ctx context.Context, userID int64) ([]model.Product, error) {
	if userID <= 0 {
		return []model.Product{}, newError(ErrUnauthorized, "unauthorized")
	}

	var products []model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		items, err := r.Wishlist().ListByUserID(ctx, userID)
		if err != nil {
			return dbError(err)
		}
		products = make([]model.Product, 0, len(items))
		for _, it := range items {
			p, err := r.Products().FindByID(ctx, it.ProductID)
			if errors.Is(err, repo.ErrNotFound) {
				continue
			}
			if err != nil {
				return dbError(err)
			}
			products = append(products, p)
		}
		return nil
	})
	if err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

func requireSeller(actor model.Identity) error {
	if actor.UserID <= 0 {
		return newError(ErrUnauthorized, "unauthorized")
	}
	if !actor.CanSell() {
		return newError(ErrForbidden, "Only approved sellers can manage products.")
	}
	return nil
}

func validateProductInput(in ProductInput) (string, decimal.Decimal, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 200 {
		return "", decimal.Zero, newError(ErrValidation, "name required")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(in.Price))
	if err != nil {
		return "", decimal.Zero, newError(ErrValidation, "invalid price")
	}
	if price.IsNegative() {
		return "", decimal.Zero, newError(ErrValidation, "price must be >= 0")
	}
	//小数点以下2桁まで
	if !price.Equal(price.Round(2)) {
		return "", decimal.Zero, newError(ErrValidation, "price must have at most 2 decimal places")
	}
	if in.Stock < 0 {
		return "", decimal.Zero, newError(ErrValidation, "stock must be >= 0")
	}
	return name, price, nil
}

func checkCategory(ctx context.Context, r repo.TxRepos, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	_, err := r.Categories().FindByID(ctx, *categoryID)
	if errors.Is(err, repo.ErrNotFound) {
		return newError(ErrValidation, "invalid category")
	}
	if err != nil {
		return dbError(err)
	}
	return nil
}

// 他人の商品は「存在しない扱い」
func findOwnedProduct(ctx context.Context, r repo.TxRepos, sellerID int64, productID int64) (model.Product, error) {
	p, err := r.Products().FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, newError(ErrNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, dbError(err)
	}
	if p.SellerID != sellerID {
		return model.Product{}, newError(ErrNotFound, "not found")
	}
	return p, nil
}
