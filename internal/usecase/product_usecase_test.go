package usecase_test

import (
	"context"
	"errors"
	"testing"

	"agrimarket/internal/domain/model"
	"agrimarket/internal/infra/memory"
	repo "agrimarket/internal/repository"
	"agrimarket/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productNames(items []model.Product) []string {
	names := make([]string, 0, len(items))
	for _, p := range items {
		names = append(names, p.Name)
	}
	return names
}

// Test: 初期カテゴリは何度実行しても重複しない
func TestSeedCategories_Idempotent(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewProductUsecase(memory.NewStore())

	first, err := uc.SeedCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, first.Created, len(usecase.DefaultCategories))
	assert.Empty(t, first.Existing)

	second, err := uc.SeedCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, second.Created)
	assert.Len(t, second.Existing, len(usecase.DefaultCategories))

	cats, err := uc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(usecase.DefaultCategories))
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := usecase.NewProductUsecase(store)
	seller := seedUser(t, store, "seller@example.com", model.RoleSeller)
	approved := model.Identity{UserID: seller.ID, Role: model.RoleSeller, IsApproved: true}

	out, err := uc.CreateProduct(ctx, approved, usecase.ProductInput{Name: " Urea ", Price: "12.50", Stock: 3, IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "Urea", out.Product.Name)
	assert.True(t, out.Product.Price.Equal(dec("12.5")))
	assert.Equal(t, "Product added successfully!", out.Message)

	//承認前sellerは出品不可
	_, err = uc.CreateProduct(ctx, seller.Identity(), usecase.ProductInput{Name: "X", Price: "1", Stock: 1})
	assert.True(t, errors.Is(err, usecase.ErrForbidden))

	bad := []usecase.ProductInput{
		{Name: "", Price: "1"},
		{Name: "X", Price: "abc"},
		{Name: "X", Price: "-1"},
		{Name: "X", Price: "1.005"},
		{Name: "X", Price: "1", Stock: -1},
		{Name: "X", Price: "1", CategoryID: new(int64)},
	}
	for _, in := range bad {
		_, err := uc.CreateProduct(ctx, approved, in)
		assert.True(t, errors.Is(err, usecase.ErrValidation), "input %+v", in)
	}
}

// Test: 他人の商品は404、在庫変更は監査ログ
func TestUpdateProduct_OwnershipAndAudit(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := usecase.NewProductUsecase(store)
	owner := seedUser(t, store, "owner@example.com", model.RoleSeller)
	other := seedUser(t, store, "other@example.com", model.RoleSeller)
	p := seedProduct(t, store, owner.ID, "Hoe", "30", 4)

	ownerActor := model.Identity{UserID: owner.ID, Role: model.RoleSeller, IsApproved: true}
	otherActor := model.Identity{UserID: other.ID, Role: model.RoleSeller, IsApproved: true}

	_, err := uc.UpdateProduct(ctx, otherActor, p.ID, usecase.ProductInput{Name: "Stolen", Price: "1", Stock: 0, IsActive: true})
	assert.True(t, errors.Is(err, usecase.ErrNotFound))

	err = uc.DeleteProduct(ctx, otherActor, p.ID)
	assert.True(t, errors.Is(err, usecase.ErrNotFound))

	// 在庫が変わらない更新はログなし
	_, err = uc.UpdateProduct(ctx, ownerActor, p.ID, usecase.ProductInput{Name: "Hoe", Price: "35", Stock: 4, IsActive: true})
	require.NoError(t, err)

	out, err := uc.UpdateProduct(ctx, ownerActor, p.ID, usecase.ProductInput{Name: "Hoe", Price: "35", Stock: 9, IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "Product updated successfully!", out.Message)
	assert.Equal(t, int64(9), stockOf(t, store, p.ID))

	target := model.ProductTarget(p.ID)
	logs, err := usecase.NewAdminOrderUsecase(store, quietLogger()).AuditLogs(ctx, staff, repo.AuditLogQuery{
		Actions: []model.AuditAction{model.AuditActionUpdateStock},
		Target:  &target,
	})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, `{"stock":4}`, logs[0].BeforeJSON)
	assert.Equal(t, `{"stock":9}`, logs[0].AfterJSON)
	assert.Equal(t, owner.ID, logs[0].ActorUserID)
}

// Test: 論理削除した商品は一覧にも詳細にも出ない
func TestDeleteProduct_Soft(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := usecase.NewProductUsecase(store)
	seller := seedUser(t, store, "seller@example.com", model.RoleSeller)
	p := seedProduct(t, store, seller.ID, "Sprayer", "80", 2)

	err := uc.DeleteProduct(ctx, model.Identity{UserID: seller.ID, Role: model.RoleSeller, IsApproved: true}, p.ID)
	require.NoError(t, err)

	_, err = uc.GetProductDetail(ctx, 0, p.ID)
	assert.True(t, errors.Is(err, usecase.ErrNotFound))

	list, err := uc.ListPublicProducts(ctx, usecase.ListProductsInput{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Zero(t, list.Total)
}

func TestListPublicProducts(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := usecase.NewProductUsecase(store)
	seed, err := uc.SeedCategories(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, seed.Created)
	cats, err := uc.ListCategories(ctx)
	require.NoError(t, err)

	seller := seedUser(t, store, "seller@example.com", model.RoleSeller)
	actor := model.Identity{UserID: seller.ID, Role: model.RoleSeller, IsApproved: true}
	catID := cats[0].ID

	for _, in := range []usecase.ProductInput{
		{Name: "Wheat Seeds", Description: "winter wheat", Price: "20", Stock: 5, IsActive: true, CategoryID: &catID},
		{Name: "Rice Seeds", Price: "15", Stock: 5, IsActive: true, CategoryID: &catID},
		{Name: "Shovel", Price: "40", Stock: 5, IsActive: true},
		{Name: "Hidden", Price: "1", Stock: 5, IsActive: false},
	} {
		_, err := uc.CreateProduct(ctx, actor, in)
		require.NoError(t, err)
	}

	tests := []struct {
		name string
		in   usecase.ListProductsInput
		want []string
	}{
		{name: "安い順", in: usecase.ListProductsInput{Page: 1, Limit: 10, Sort: repo.SortPriceLow}, want: []string{"Rice Seeds", "Wheat Seeds", "Shovel"}},
		{name: "高い順", in: usecase.ListProductsInput{Page: 1, Limit: 10, Sort: repo.SortPriceHigh}, want: []string{"Shovel", "Wheat Seeds", "Rice Seeds"}},
		{name: "キーワード（説明も対象）", in: usecase.ListProductsInput{Page: 1, Limit: 10, Q: "WINTER"}, want: []string{"Wheat Seeds"}},
		{name: "カテゴリ", in: usecase.ListProductsInput{Page: 1, Limit: 10, CategoryID: &catID, Sort: repo.SortPriceLow}, want: []string{"Rice Seeds", "Wheat Seeds"}},
		{name: "2ページ目", in: usecase.ListProductsInput{Page: 2, Limit: 2, Sort: repo.SortPriceLow}, want: []string{"Shovel"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := uc.ListPublicProducts(ctx, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, productNames(out.Items))
		})
	}

	_, err = uc.ListPublicProducts(ctx, usecase.ListProductsInput{Page: 1, Limit: 10, Sort: "cheapest"})
	assert.True(t, errors.Is(err, usecase.ErrValidation))
	_, err = uc.ListPublicProducts(ctx, usecase.ListProductsInput{Page: 0, Limit: 10})
	assert.True(t, errors.Is(err, usecase.ErrValidation))
}

// Test: 非公開商品は出品者本人だけ見える。can_reviewは配達済みの購入者だけ。
func TestGetProductDetail(t *testing.T) {
	ctx := context.Background()
	fx := placeOrder(t, 1)
	uc := usecase.NewProductUsecase(fx.store)

	out, err := uc.GetProductDetail(ctx, fx.farmer.ID, fx.product.ID)
	require.NoError(t, err)
	assert.False(t, out.CanReview)

	setOrderStatus(t, fx.store, fx.orderID, model.OrderStatusDelivered)
	out, err = uc.GetProductDetail(ctx, fx.farmer.ID, fx.product.ID)
	require.NoError(t, err)
	assert.True(t, out.CanReview)

	out, err = uc.GetProductDetail(ctx, 0, fx.product.ID)
	require.NoError(t, err)
	assert.False(t, out.CanReview)

	owner := model.Identity{UserID: fx.product.SellerID, Role: model.RoleSeller, IsApproved: true}
	_, err = uc.UpdateProduct(ctx, owner, fx.product.ID, usecase.ProductInput{Name: "Seeds", Price: "10", Stock: 9, IsActive: false})
	require.NoError(t, err)

	_, err = uc.GetProductDetail(ctx, fx.farmer.ID, fx.product.ID)
	assert.True(t, errors.Is(err, usecase.ErrNotFound))
	_, err = uc.GetProductDetail(ctx, owner.UserID, fx.product.ID)
	assert.NoError(t, err)
}

func TestToggleWishlist(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := usecase.NewProductUsecase(store)
	seller := seedUser(t, store, "seller@example.com", model.RoleSeller)
	farmer := seedUser(t, store, "farmer@example.com", model.RoleFarmer)
	p := seedProduct(t, store, seller.ID, "Drip Kit", "55", 3)

	out, err := uc.ToggleWishlist(ctx, farmer.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, out.Added)
	assert.Equal(t, "Added to wishlist!", out.Message)

	list, err := uc.ListWishlist(ctx, farmer.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Drip Kit"}, productNames(list))

	out, err = uc.ToggleWishlist(ctx, farmer.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, out.Added)
	assert.Equal(t, "Removed from wishlist.", out.Message)

	list, err = uc.ListWishlist(ctx, farmer.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = uc.ToggleWishlist(ctx, farmer.ID, 999)
	assert.True(t, errors.Is(err, usecase.ErrNotFound))
}
