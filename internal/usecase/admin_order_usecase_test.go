package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"agrimarket/internal/domain/model"
	"agrimarket/internal/infra/memory"
	repo "agrimarket/internal/repository"
	"agrimarket/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

// AdminOrderUsecase で使うものだけ持つ
type TxReposMock struct {
	orders     repo.OrderRepository
	orderLines repo.OrderLineRepository
	inventory  repo.InventoryRepository
	auditLogs  repo.AuditLogRepository
}

func (r *TxReposMock) Users() repo.UserRepository           { return nil }
func (r *TxReposMock) Categories() repo.CategoryRepository  { return nil }
func (r *TxReposMock) Products() repo.ProductRepository     { return nil }
func (r *TxReposMock) Inventory() repo.InventoryRepository  { return r.inventory }
func (r *TxReposMock) Wishlist() repo.WishlistRepository    { return nil }
func (r *TxReposMock) CartLines() repo.CartLineRepository   { return nil }
func (r *TxReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *TxReposMock) OrderLines() repo.OrderLineRepository { return r.orderLines }
func (r *TxReposMock) Reviews() repo.ReviewRepository       { return nil }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository   { return r.auditLogs }

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	panic("not used in AdminOrderUsecase tests")
}

func (m *OrderRepoMock) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	panic("not used in AdminOrderUsecase tests")
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	panic("not used in AdminOrderUsecase tests")
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) MarkPaid(ctx context.Context, orderID int64) error {
	panic("not used in AdminOrderUsecase tests")
}

func (m *OrderRepoMock) ExistsByNumber(ctx context.Context, orderNumber string) (bool, error) {
	panic("not used in AdminOrderUsecase tests")
}

func (m *OrderRepoMock) Count(ctx context.Context) (int64, error) {
	panic("not used in AdminOrderUsecase tests")
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	panic("not used in AdminOrderUsecase tests")
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Record(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, q repo.AuditLogQuery) ([]model.AuditLog, error) {
	panic("not used in AdminOrderUsecase tests")
}

var staff = model.Identity{UserID: 1, Role: model.RoleAdmin, IsStaff: true, IsApproved: true}

// Test: shipped → packed で UpdateStatus と監査ログが呼ばれる（mock）
func TestRevert_ShippedToPacked_Mock(t *testing.T) {
	ctx := context.Background()

	orders := new(OrderRepoMock)
	audits := new(AuditRepoMock)
	tx := &TxManagerMock{Repos: &TxReposMock{orders: orders, auditLogs: audits}}
	tx.On("WithinTx", mock.Anything).Return()

	orders.On("FindByIDForUpdate", mock.Anything, int64(10)).
		Return(model.Order{ID: 10, OrderNumber: "ORD0000000010", Status: model.OrderStatusShipped}, nil)
	orders.On("UpdateStatus", mock.Anything, int64(10), model.OrderStatusPacked).Return(nil)
	audits.On("Record", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateOrderStatus &&
			l.Target() == model.OrderTarget(10) &&
			l.BeforeJSON == `{"status":"shipped"}` &&
			l.AfterJSON == `{"status":"packed"}`
	})).Return(nil)

	uc := usecase.NewAdminOrderUsecase(tx, quietLogger())
	out, err := uc.Revert(ctx, staff, 10)
	require.NoError(t, err)

	assert.True(t, out.Changed)
	assert.Equal(t, "shipped", out.PreviousStatus)
	assert.Equal(t, "packed", out.Status)
	assert.Equal(t, "Order ORD0000000010 status reverted to packed.", out.Message)

	tx.AssertExpectations(t)
	orders.AssertExpectations(t)
	audits.AssertExpectations(t)
}

// Test: スタッフ以外はTxに入らない（mock）
func TestRevert_NonStaff_Mock(t *testing.T) {
	tx := &TxManagerMock{Repos: &TxReposMock{}}

	uc := usecase.NewAdminOrderUsecase(tx, quietLogger())
	_, err := uc.Revert(context.Background(), model.Identity{UserID: 2, Role: model.RoleFarmer, IsApproved: true}, 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, usecase.ErrPermissionDenied))

	tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

// =====================
// in-memory store を使うシナリオ
// =====================

type orderFixture struct {
	store   *memory.Store
	farmer  model.User
	product model.Product
	orderID int64
}

func placeOrder(t *testing.T, qty int) orderFixture {
	t.Helper()

	ctx := context.Background()
	store := memory.NewStore()
	seller := seedUser(t, store, "seller@example.com", model.RoleSeller)
	farmer := seedUser(t, store, "farmer@example.com", model.RoleFarmer)
	p := seedProduct(t, store, seller.ID, "Seeds", "10", 10)

	cart := usecase.NewCartUsecase(store)
	for i := 0; i < qty; i++ {
		_, err := cart.AddToCart(ctx, farmer.ID, p.ID)
		require.NoError(t, err)
	}
	out, err := newOrderUsecase(store).Checkout(ctx, farmer.ID, usecase.CheckoutInput{})
	require.NoError(t, err)

	return orderFixture{store: store, farmer: farmer, product: p, orderID: out.ID}
}

func TestRevert_Table(t *testing.T) {
	tests := []struct {
		name        string
		from        model.OrderStatus
		wantStatus  model.OrderStatus
		wantChanged bool
	}{
		{name: "pendingは戻せない", from: model.OrderStatusPending, wantStatus: model.OrderStatusPending, wantChanged: false},
		{name: "packed → pending", from: model.OrderStatusPacked, wantStatus: model.OrderStatusPending, wantChanged: true},
		{name: "shipped → packed", from: model.OrderStatusShipped, wantStatus: model.OrderStatusPacked, wantChanged: true},
		{name: "delivered → shipped", from: model.OrderStatusDelivered, wantStatus: model.OrderStatusShipped, wantChanged: true},
		{name: "cancelledは戻せない", from: model.OrderStatusCancelled, wantStatus: model.OrderStatusCancelled, wantChanged: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := placeOrder(t, 1)
			setOrderStatus(t, fx.store, fx.orderID, tt.from)

			uc := usecase.NewAdminOrderUsecase(fx.store, quietLogger())
			out, err := uc.Revert(context.Background(), staff, fx.orderID)
			require.NoError(t, err)

			assert.Equal(t, tt.wantChanged, out.Changed)
			assert.Equal(t, string(tt.wantStatus), out.Status)
			assert.Equal(t, tt.wantStatus, orderStatusOf(t, fx.store, fx.orderID))
			if !tt.wantChanged {
				assert.Contains(t, out.Message, "cannot be reverted")
			}
		})
	}
}

// Test: 一般ユーザーはrevertできず、ステータスも変わらない
func TestRevert_PermissionDenied(t *testing.T) {
	fx := placeOrder(t, 1)
	setOrderStatus(t, fx.store, fx.orderID, model.OrderStatusShipped)

	uc := usecase.NewAdminOrderUsecase(fx.store, quietLogger())

	_, err := uc.Revert(context.Background(), fx.farmer.Identity(), fx.orderID)
	require.Error(t, err)
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, he.Status)
	assert.Equal(t, "You do not have permission to perform this action.", he.Message)

	_, err = uc.Revert(context.Background(), model.Identity{}, fx.orderID)
	assert.True(t, errors.Is(err, usecase.ErrUnauthorized))

	assert.Equal(t, model.OrderStatusShipped, orderStatusOf(t, fx.store, fx.orderID))
}

func TestRevert_NotFound(t *testing.T) {
	fx := placeOrder(t, 1)
	uc := usecase.NewAdminOrderUsecase(fx.store, quietLogger())

	_, err := uc.Revert(context.Background(), staff, 999)
	assert.True(t, errors.Is(err, usecase.ErrNotFound))
}

// Test: 1段階ずつ進んでdeliveredで止まる
func TestAdvance_UntilDelivered(t *testing.T) {
	fx := placeOrder(t, 1)
	uc := usecase.NewAdminOrderUsecase(fx.store, quietLogger())
	ctx := context.Background()

	for _, want := range []model.OrderStatus{model.OrderStatusPacked, model.OrderStatusShipped, model.OrderStatusDelivered} {
		out, err := uc.Advance(ctx, staff, fx.orderID)
		require.NoError(t, err)
		assert.Equal(t, string(want), out.Status)
	}

	_, err := uc.Advance(ctx, staff, fx.orderID)
	assert.True(t, errors.Is(err, usecase.ErrInvalidTransition))
	assert.Equal(t, model.OrderStatusDelivered, orderStatusOf(t, fx.store, fx.orderID))

	// 監査ログは変更した回数だけ
	logs, err := uc.AuditLogs(ctx, staff, repo.AuditLogQuery{})
	require.NoError(t, err)
	assert.Len(t, logs, 3)
	assert.Equal(t, `{"status":"delivered"}`, logs[0].AfterJSON)
}

// Test: キャンセルで在庫が戻る
func TestCancel_RestoresStock(t *testing.T) {
	fx := placeOrder(t, 3)
	assert.Equal(t, int64(7), stockOf(t, fx.store, fx.product.ID))
	setOrderStatus(t, fx.store, fx.orderID, model.OrderStatusShipped)

	uc := usecase.NewAdminOrderUsecase(fx.store, quietLogger())
	out, err := uc.Cancel(context.Background(), staff, fx.orderID)
	require.NoError(t, err)
	assert.Equal(t, string(model.OrderStatusCancelled), out.Status)
	assert.Equal(t, int64(10), stockOf(t, fx.store, fx.product.ID))

	// 2回目は不可
	_, err = uc.Cancel(context.Background(), staff, fx.orderID)
	assert.True(t, errors.Is(err, usecase.ErrInvalidTransition))
	assert.Equal(t, int64(10), stockOf(t, fx.store, fx.product.ID))
}

func TestCancel_DeliveredIsRejected(t *testing.T) {
	fx := placeOrder(t, 1)
	setOrderStatus(t, fx.store, fx.orderID, model.OrderStatusDelivered)

	uc := usecase.NewAdminOrderUsecase(fx.store, quietLogger())
	_, err := uc.Cancel(context.Background(), staff, fx.orderID)
	assert.True(t, errors.Is(err, usecase.ErrInvalidTransition))
	assert.Equal(t, int64(9), stockOf(t, fx.store, fx.product.ID))
}

func TestMarkPaid(t *testing.T) {
	fx := placeOrder(t, 1)
	uc := usecase.NewAdminOrderUsecase(fx.store, quietLogger())

	out, err := uc.MarkPaid(context.Background(), staff, fx.orderID)
	require.NoError(t, err)
	assert.True(t, out.PaymentStatus)
	assert.Equal(t, "Payment recorded.", out.Message)
}

func TestAdminList_Filters(t *testing.T) {
	fx := placeOrder(t, 1)
	uc := usecase.NewAdminOrderUsecase(fx.store, quietLogger())
	ctx := context.Background()

	outs, err := uc.List(ctx, staff, repo.AdminOrderListFilter{Page: 1, Limit: 20, Status: "pending"})
	require.NoError(t, err)
	assert.Len(t, outs, 1)

	outs, err = uc.List(ctx, staff, repo.AdminOrderListFilter{Page: 1, Limit: 20, Status: "shipped"})
	require.NoError(t, err)
	assert.Empty(t, outs)

	_, err = uc.List(ctx, staff, repo.AdminOrderListFilter{Page: 1, Limit: 20, Status: "lost"})
	assert.True(t, errors.Is(err, usecase.ErrValidation))

	_, err = uc.List(ctx, fx.farmer.Identity(), repo.AdminOrderListFilter{Page: 1, Limit: 20})
	assert.True(t, errors.Is(err, usecase.ErrPermissionDenied))
}
