package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agrimarket/internal/domain/model"
	repo "agrimarket/internal/repository"

	"github.com/sirupsen/logrus"
)

const permissionDeniedMessage = "You do not have permission to perform this action."

type AdminOrderUsecase struct {
	tx  repo.TransactionManager
	log logrus.FieldLogger
}

func NewAdminOrderUsecase(tx repo.TransactionManager, log logrus.FieldLogger) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, log: log}
}

// ステータス操作の結果。Changed=falseは「何もしなかった」。
type StatusChangeOutput struct {
	OrderID        int64  `json:"order_id"`
	OrderNumber    string `json:"order_number"`
	PreviousStatus string `json:"previous_status"`
	Status         string `json:"status"`
	Changed        bool   `json:"changed"`
	Message        string `json:"message"`
}

// 注文一覧
func (u *AdminOrderUsecase) List(ctx context.Context, actor model.Identity, f repo.AdminOrderListFilter) ([]OrderOutput, error) {
	if err := requireStaff(actor); err != nil {
		return []OrderOutput{}, err
	}
	// page/limitの最低限チェック
	if f.Page < 1 {
		return []OrderOutput{}, newError(ErrValidation, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return []OrderOutput{}, newError(ErrValidation, "invalid limit")
	}
	if f.Status != "" && !model.OrderStatus(f.Status).Valid() {
		return []OrderOutput{}, newError(ErrValidation, "invalid status")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return dbError(err)
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			lines, err := r.OrderLines().ListByOrderID(ctx, o.ID)
			if err != nil {
				return dbError(err)
			}
			outs = append(outs, toOrderOutput(o, lines))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// Revert は1段階だけ戻す。戻せない状態ならエラーにせず Changed=false を返す。
func (u *AdminOrderUsecase) Revert(ctx context.Context, actor model.Identity, orderID int64) (StatusChangeOutput, error) {
	if err := requireStaff(actor); err != nil {
		return StatusChangeOutput{}, err
	}
	if orderID <= 0 {
		return StatusChangeOutput{}, newError(ErrValidation, "invalid id")
	}

	var out StatusChangeOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := findOrderForUpdate(ctx, r, orderID)
		if err != nil {
			return err
		}

		before := o.Status
		out = StatusChangeOutput{
			OrderID:        o.ID,
			OrderNumber:    o.OrderNumber,
			PreviousStatus: string(before),
			Status:         string(before),
		}

		if !o.RevertStatus() {
			out.Message = fmt.Sprintf("Order %s cannot be reverted from %s.", o.OrderNumber, before)
			return nil
		}

		if err := u.saveStatus(ctx, r, actor, o, before); err != nil {
			return err
		}

		out.Status = string(o.Status)
		out.Changed = true
		out.Message = fmt.Sprintf("Order %s status reverted to %s.", o.OrderNumber, o.Status)
		return nil
	})

	if err != nil {
		return StatusChangeOutput{}, err
	}
	return out, nil
}

// Advance は1段階だけ進める。
func (u *AdminOrderUsecase) Advance(ctx context.Context, actor model.Identity, orderID int64) (StatusChangeOutput, error) {
	if err := requireStaff(actor); err != nil {
		return StatusChangeOutput{}, err
	}
	if orderID <= 0 {
		return StatusChangeOutput{}, newError(ErrValidation, "invalid id")
	}

	var out StatusChangeOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := findOrderForUpdate(ctx, r, orderID)
		if err != nil {
			return err
		}

		before := o.Status
		if !o.AdvanceStatus() {
			return newError(ErrInvalidTransition, fmt.Sprintf("cannot advance %s order", before))
		}

		if err := u.saveStatus(ctx, r, actor, o, before); err != nil {
			return err
		}

		out = StatusChangeOutput{
			OrderID:        o.ID,
			OrderNumber:    o.OrderNumber,
			PreviousStatus: string(before),
			Status:         string(o.Status),
			Changed:        true,
			Message:        fmt.Sprintf("Order %s status updated to %s.", o.OrderNumber, o.Status),
		}
		return nil
	})

	if err != nil {
		return StatusChangeOutput{}, err
	}
	return out, nil
}

// Cancel はpending/packed/shippedからcancelledへ。在庫を戻す。
func (u *AdminOrderUsecase) Cancel(ctx context.Context, actor model.Identity, orderID int64) (StatusChangeOutput, error) {
	if err := requireStaff(actor); err != nil {
		return StatusChangeOutput{}, err
	}
	if orderID <= 0 {
		return StatusChangeOutput{}, newError(ErrValidation, "invalid id")
	}

	var out StatusChangeOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := findOrderForUpdate(ctx, r, orderID)
		if err != nil {
			return err
		}

		before := o.Status
		if !o.Cancel() {
			return newError(ErrInvalidTransition, fmt.Sprintf("cannot cancel %s order", before))
		}

		lines, err := r.OrderLines().ListByOrderID(ctx, o.ID)
		if err != nil {
			return dbError(err)
		}
		for _, l := range lines {
			// 商品が物理削除されていたら戻し先がないのでスキップ
			if err := r.Inventory().IncreaseStock(ctx, l.ProductID, l.Quantity); err != nil && !errors.Is(err, repo.ErrNotFound) {
				return dbError(err)
			}
		}

		if err := u.saveStatus(ctx, r, actor, o, before); err != nil {
			return err
		}

		out = StatusChangeOutput{
			OrderID:        o.ID,
			OrderNumber:    o.OrderNumber,
			PreviousStatus: string(before),
			Status:         string(o.Status),
			Changed:        true,
			Message:        fmt.Sprintf("Order %s cancelled.", o.OrderNumber),
		}
		return nil
	})

	if err != nil {
		return StatusChangeOutput{}, err
	}
	return out, nil
}

// MarkPaid は支払い済みフラグを立てる（決済連携はしない）。
func (u *AdminOrderUsecase) MarkPaid(ctx context.Context, actor model.Identity, orderID int64) (OrderOutput, error) {
	if err := requireStaff(actor); err != nil {
		return OrderOutput{}, err
	}
	if orderID <= 0 {
		return OrderOutput{}, newError(ErrValidation, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := findOrderForUpdate(ctx, r, orderID)
		if err != nil {
			return err
		}
		if o.Status == model.OrderStatusCancelled {
			return newError(ErrInvalidTransition, "cannot mark cancelled order as paid")
		}

		if !o.PaymentStatus {
			if err := r.Orders().MarkPaid(ctx, o.ID); err != nil {
				return dbError(err)
			}
			o.PaymentStatus = true
		}

		lines, err := r.OrderLines().ListByOrderID(ctx, o.ID)
		if err != nil {
			return dbError(err)
		}
		out = toOrderOutput(o, lines)
		out.Message = "Payment recorded."
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// ステータス更新と監査ログ（UPDATE_ORDER_STATUS）
func (u *AdminOrderUsecase) saveStatus(ctx context.Context, r repo.TxRepos, actor model.Identity, o model.Order, before model.OrderStatus) error {
	if err := r.Orders().UpdateStatus(ctx, o.ID, o.Status); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return newError(ErrNotFound, "not found")
		}
		return dbError(err)
	}

	entry := model.NewAuditLog(actor.UserID, model.AuditActionUpdateOrderStatus, model.OrderTarget(o.ID),
		"status", before, o.Status, time.Now())
	if err := r.AuditLogs().Record(ctx, entry); err != nil {
		return dbError(err)
	}

	u.log.WithFields(logrus.Fields{
		"order_id": o.ID,
		"actor_id": actor.UserID,
		"from":     before,
		"to":       o.Status,
	}).Info("order status changed")
	return nil
}

func findOrderForUpdate(ctx context.Context, r repo.TxRepos, orderID int64) (model.Order, error) {
	o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, newError(ErrNotFound, "not found")
	}
	if err != nil {
		return model.Order{}, dbError(err)
	}
	return o, nil
}

// 未ログインは401、スタッフ以外は403
func requireStaff(actor model.Identity) error {
	if actor.UserID <= 0 {
		return newError(ErrUnauthorized, "unauthorized")
	}
	if !actor.IsStaff {
		return newError(ErrPermissionDenied, permissionDeniedMessage)
	}
	return nil
}

// AuditLogs は監査ログを新しい順に返す（スタッフのみ）。
func (u *AdminOrderUsecase) AuditLogs(ctx context.Context, actor model.Identity, q repo.AuditLogQuery) ([]model.AuditLog, error) {
	if err := requireStaff(actor); err != nil {
		return []model.AuditLog{}, err
	}
	if q.Limit < 0 || q.Limit > repo.MaxAuditLogLimit || q.Offset < 0 {
		return []model.AuditLog{}, newError(ErrValidation, "invalid limit/offset")
	}

	var logs []model.AuditLog
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		list, err := r.AuditLogs().List(ctx, q)
		if err != nil {
			return dbError(err)
		}
		logs = list
		return nil
	})
	if err != nil {
		return []model.AuditLog{}, err
	}
	return logs, nil
}
