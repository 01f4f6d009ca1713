package usecase_test

import (
	"context"
	"errors"
	"testing"

	"agrimarket/internal/domain/model"
	"agrimarket/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard_ByRole(t *testing.T) {
	ctx := context.Background()
	fx := placeOrder(t, 2)
	admin := seedUser(t, fx.store, "admin@example.com", model.RoleAdmin)
	seedUser(t, fx.store, "pending@example.com", model.RoleSeller)
	uc := usecase.NewDashboardUsecase(fx.store)

	t.Run("farmer", func(t *testing.T) {
		out, err := uc.Dashboard(ctx, fx.farmer.Identity())
		require.NoError(t, err)
		assert.Equal(t, "farmer", out.Role)
		require.Len(t, out.Orders, 1)
		assert.Equal(t, fx.orderID, out.Orders[0].ID)
		assert.Nil(t, out.Admin)
		assert.Nil(t, out.Sales)
	})

	t.Run("seller", func(t *testing.T) {
		seller := model.Identity{UserID: fx.product.SellerID, Role: model.RoleSeller, IsApproved: true}
		out, err := uc.Dashboard(ctx, seller)
		require.NoError(t, err)
		require.Len(t, out.Products, 1)
		require.Len(t, out.Sales, 1)
		assert.Equal(t, fx.orderID, out.Sales[0].OrderID)
		assert.Equal(t, int64(2), out.Sales[0].Quantity)
		assert.True(t, out.Sales[0].Subtotal.Equal(dec("20")))
		assert.Nil(t, out.Orders)
	})

	t.Run("admin", func(t *testing.T) {
		out, err := uc.Dashboard(ctx, admin.Identity())
		require.NoError(t, err)
		require.NotNil(t, out.Admin)
		assert.Equal(t, int64(4), out.Admin.TotalUsers)
		assert.Equal(t, int64(1), out.Admin.TotalProducts)
		assert.Equal(t, int64(1), out.Admin.TotalOrders)
		// placeOrderのsellerもpendingのまま
		assert.Len(t, out.Admin.PendingSellers, 2)
	})

	t.Run("未知のロール", func(t *testing.T) {
		_, err := uc.Dashboard(ctx, model.Identity{UserID: admin.ID, Role: "guest"})
		assert.True(t, errors.Is(err, usecase.ErrInternal))
	})

	t.Run("未ログイン", func(t *testing.T) {
		_, err := uc.Dashboard(ctx, model.Identity{})
		assert.True(t, errors.Is(err, usecase.ErrUnauthorized))
	})
}
