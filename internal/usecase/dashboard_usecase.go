package usecase

import (
	"context"
	"fmt"

	"agrimarket/internal/domain/model"
	repo "agrimarket/internal/repository"
)

type DashboardUsecase struct {
	tx repo.TransactionManager
}

func NewDashboardUsecase(tx repo.TransactionManager) *DashboardUsecase {
	return &DashboardUsecase{tx: tx}
}

type SellerSaleOutput struct {
	OrderID int64 `json:"order_id"`
	OrderLineOutput
}

type AdminStats struct {
	TotalUsers     int64     `json:"total_users"`
	TotalProducts  int64     `json:"total_products"`
	TotalOrders    int64     `json:"total_orders"`
	PendingSellers []UserDTO `json:"pending_sellers"`
}

// ロールごとに中身が変わる。使わない項目はnil。
type DashboardOutput struct {
	Role     string             `json:"role"`
	Orders   []OrderOutput      `json:"orders,omitempty"`
	Products []model.Product    `json:"products,omitempty"`
	Sales    []SellerSaleOutput `json:"sales,omitempty"`
	Admin    *AdminStats        `json:"admin,omitempty"`
}

func (u *DashboardUsecase) Dashboard(ctx context.Context, actor model.Identity) (DashboardOutput, error) {
	if actor.UserID <= 0 {
		return DashboardOutput{}, newError(ErrUnauthorized, "unauthorized")
	}

	out := DashboardOutput{Role: string(actor.Role)}
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		switch actor.Role {
		case model.RoleFarmer:
			return u.farmer(ctx, r, actor, &out)
		case model.RoleSeller:
			return u.seller(ctx, r, actor, &out)
		case model.RoleAdmin:
			return u.admin(ctx, r, &out)
		default:
			return newError(ErrInternal, fmt.Sprintf("unknown role %q", actor.Role))
		}
	})
	if err != nil {
		return DashboardOutput{}, err
	}
	return out, nil
}

// 自分の注文
func (u *DashboardUsecase) farmer(ctx context.Context, r repo.TxRepos, actor model.Identity, out *DashboardOutput) error {
	orders, err := r.Orders().ListByUserID(ctx, actor.UserID)
	if err != nil {
		return dbError(err)
	}
	out.Orders = make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		lines, err := r.OrderLines().ListByOrderID(ctx, o.ID)
		if err != nil {
			return dbError(err)
		}
		out.Orders = append(out.Orders, toOrderOutput(o, lines))
	}
	return nil
}

// 自分の商品と、売れた明細
func (u *DashboardUsecase) seller(ctx context.Context, r repo.TxRepos, actor model.Identity, out *DashboardOutput) error {
	products, err := r.Products().ListBySellerID(ctx, actor.UserID)
	if err != nil {
		return dbError(err)
	}
	out.Products = products

	lines, err := r.OrderLines().ListBySellerID(ctx, actor.UserID)
	if err != nil {
		return dbError(err)
	}
	out.Sales = make([]SellerSaleOutput, 0, len(lines))
	for _, l := range lines {
		out.Sales = append(out.Sales, SellerSaleOutput{
			OrderID: l.OrderID,
			OrderLineOutput: OrderLineOutput{
				ProductID: l.ProductID,
				Name:      l.ProductNameSnapshot,
				Price:     l.UnitPriceSnapshot,
				Quantity:  l.Quantity,
				Subtotal:  l.Subtotal(),
			},
		})
	}
	return nil
}

// 件数と承認待ちseller
func (u *DashboardUsecase) admin(ctx context.Context, r repo.TxRepos, out *DashboardOutput) error {
	stats := &AdminStats{}
	var err error
	if stats.TotalUsers, err = r.Users().Count(ctx); err != nil {
		return dbError(err)
	}
	if stats.TotalProducts, err = r.Products().Count(ctx); err != nil {
		return dbError(err)
	}
	if stats.TotalOrders, err = r.Orders().Count(ctx); err != nil {
		return dbError(err)
	}
	pending, err := r.Users().ListPendingSellers(ctx)
	if err != nil {
		return dbError(err)
	}
	stats.PendingSellers = make([]UserDTO, 0, len(pending))
	for _, p := range pending {
		stats.PendingSellers = append(stats.PendingSellers, toUserDTO(p))
	}
	out.Admin = stats
	return nil
}
