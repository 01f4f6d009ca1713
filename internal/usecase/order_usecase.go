package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"agrimarket/internal/domain/model"
	repo "agrimarket/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// 注文番号は "ORD" + 英大文字・数字10桁
const OrderNumberPrefix = "ORD"

// 注文番号が既存と衝突したときの再生成回数
const orderNumberAttempts = 5

// 注文番号を作る約束
type OrderNumberGenerator interface {
	NewOrderNumber() string
}

type uuidOrderNumberGenerator struct{}

func NewUUIDOrderNumberGenerator() OrderNumberGenerator {
	return uuidOrderNumberGenerator{}
}

// UUIDv4のhex先頭10桁（40bit分の乱数）
func (uuidOrderNumberGenerator) NewOrderNumber() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return OrderNumberPrefix + strings.ToUpper(hex[:10])
}

type OrderUsecase struct {
	tx      repo.TransactionManager
	numbers OrderNumberGenerator
	log     logrus.FieldLogger
}

func NewOrderUsecase(tx repo.TransactionManager, numbers OrderNumberGenerator, log logrus.FieldLogger) *OrderUsecase {
	return &OrderUsecase{tx: tx, numbers: numbers, log: log}
}

type CheckoutInput struct {
	ShippingAddress string
	ShippingPhone   string
	PaymentMethod   string
}

type OrderLineOutput struct {
	ProductID int64       `json:"product_id"`
	Name      string      `json:"name"`
	Price     model.Money `json:"price"`
	Quantity  int64       `json:"quantity"`
	Subtotal  model.Money `json:"subtotal"`
}

type OrderOutput struct {
	ID              int64             `json:"id"`
	OrderNumber     string            `json:"order_number"`
	UserID          int64             `json:"user_id"`
	Status          string            `json:"status"`
	PaymentMethod   string            `json:"payment_method"`
	PaymentStatus   bool              `json:"payment_status"`
	ShippingAddress string            `json:"shipping_address"`
	ShippingPhone   string            `json:"shipping_phone"`
	TotalAmount     model.Money       `json:"total_amount"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	Items           []OrderLineOutput `json:"items"`
	Message         string            `json:"message,omitempty"`
}

// Checkout はカートを注文に変える。
// 在庫減算・注文作成・明細作成・カート削除は1トランザクションで、どこかで失敗したら全部戻す。
func (u *OrderUsecase) Checkout(ctx context.Context, userID int64, in CheckoutInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, newError(ErrUnauthorized, "unauthorized")
	}

	method := model.PaymentMethod(strings.ToLower(strings.TrimSpace(in.PaymentMethod)))
	if method == "" {
		method = model.PaymentCOD
	}
	if !method.Valid() {
		return OrderOutput{}, newError(ErrValidation, "invalid payment_method")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//同じユーザーの二重送信を直列にする
		if err := lockOwner(ctx, r, userID); err != nil {
			return err
		}

		user, err := r.Users().FindByID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return newError(ErrUnauthorized, "unauthorized")
		}
		if err != nil {
			return dbError(err)
		}

		cartLines, err := r.CartLines().ListByUserID(ctx, userID)
		if err != nil {
			return dbError(err)
		}
		if len(cartLines) == 0 {
			return newError(ErrEmptyCart, "Your cart is empty.")
		}

		//未入力ならプロフィールの住所・電話を使う
		address := strings.TrimSpace(in.ShippingAddress)
		if address == "" {
			address = user.Address
		}
		phone := strings.TrimSpace(in.ShippingPhone)
		if phone == "" {
			phone = user.Phone
		}
		if address == "" {
			return newError(ErrValidation, "shipping_address is required")
		}
		if phone == "" || len(phone) > 15 {
			return newError(ErrValidation, "invalid shipping_phone")
		}

		//在庫を確定時に再チェックして減らす。価格は現在の商品価格をコピー。
		lines := make([]model.OrderLine, 0, len(cartLines))
		total := decimal.Zero

		for _, cl := range cartLines {
			p, err := r.Products().FindByID(ctx, cl.ProductID)
			if errors.Is(err, repo.ErrNotFound) {
				return checkoutFailed(ErrNotFound, fmt.Sprintf("A product in your cart is no longer available (id=%d). Remove it from your cart.", cl.ProductID))
			}
			if err != nil {
				return dbError(err)
			}
			if !p.IsActive {
				return checkoutFailed(ErrNotFound, p.Name+" is no longer available. Remove it from your cart.")
			}

			//在庫減算（足りないなら false）
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, p.ID, cl.Quantity)
			if err != nil {
				return dbError(err)
			}
			if !ok {
				return checkoutFailed(ErrStockExceeded, "Not enough stock for "+p.Name+".")
			}

			lines = append(lines, model.OrderLine{
				ProductID:           p.ID,
				SellerID:            p.SellerID,
				ProductNameSnapshot: p.Name,
				UnitPriceSnapshot:   p.Price,
				Quantity:            cl.Quantity,
			})
			total = total.Add(model.Subtotal(p.Price, cl.Quantity).Decimal)
		}

		number, err := u.uniqueOrderNumber(ctx, r)
		if err != nil {
			return err
		}

		now := time.Now()
		order := model.Order{
			OrderNumber:     number,
			UserID:          userID,
			Status:          model.OrderStatusPending,
			PaymentMethod:   method,
			PaymentStatus:   false,
			ShippingAddress: address,
			ShippingPhone:   phone,
			TotalAmount:     model.NewMoney(total),
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		orderID, err := r.Orders().Create(ctx, order)
		if errors.Is(err, repo.ErrDuplicate) {
			return checkoutFailed(ErrConflict, "Could not allocate an order number. Please try again.")
		}
		if err != nil {
			return dbError(err)
		}
		order.ID = orderID

		//注文明細一括作成
		if err := r.OrderLines().CreateBulk(ctx, orderID, lines); err != nil {
			return dbError(err)
		}

		//カートを空にする
		if err := r.CartLines().DeleteByUserID(ctx, userID); err != nil {
			return dbError(err)
		}

		out = toOrderOutput(order, lines)
		out.Message = "Order placed successfully! Order number: " + order.OrderNumber
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrCheckoutFailed) {
			u.log.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Warn("checkout rolled back")
		}
		return OrderOutput{}, err
	}

	u.log.WithFields(logrus.Fields{
		"user_id":      userID,
		"order_id":     out.ID,
		"order_number": out.OrderNumber,
		"total":        out.TotalAmount.StringFixed(2),
	}).Info("order placed")
	return out, nil
}

// 既存の番号と重ならない注文番号を作る
func (u *OrderUsecase) uniqueOrderNumber(ctx context.Context, r repo.TxRepos) (string, error) {
	for i := 0; i < orderNumberAttempts; i++ {
		number := u.numbers.NewOrderNumber()
		exists, err := r.Orders().ExistsByNumber(ctx, number)
		if err != nil {
			return "", dbError(err)
		}
		if !exists {
			return number, nil
		}
	}
	return "", checkoutFailed(ErrConflict, "Could not allocate an order number. Please try again.")
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, newError(ErrUnauthorized, "unauthorized")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListByUserID(ctx, userID)
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

func (u *OrderUsecase) GetMyOrder(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, newError(ErrUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, newError(ErrValidation, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return newError(ErrNotFound, "not found")
		}
		if err != nil {
			return dbError(err)
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return newError(ErrNotFound, "not found")
		}

		lines, err := r.OrderLines().ListByOrderID(ctx, orderID)
		if err != nil {
			return dbError(err)
		}

		out = toOrderOutput(o, lines)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// チェックアウトのロールバック。ErrCheckoutFailedと原因の両方でerrors.Isできる。
func checkoutFailed(cause error, message string) error {
	return &HTTPError{
		Status:  http.StatusConflict,
		Message: message,
		Err:     fmt.Errorf("%w: %w", ErrCheckoutFailed, cause),
	}
}

func toOrderOutput(o model.Order, lines []model.OrderLine) OrderOutput {
	items := make([]OrderLineOutput, 0, len(lines))
	for _, l := range lines {
		items = append(items, OrderLineOutput{
			ProductID: l.ProductID,
			Name:      l.ProductNameSnapshot,
			Price:     l.UnitPriceSnapshot,
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal(),
		})
	}

	return OrderOutput{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		Status:          string(o.Status),
		PaymentMethod:   string(o.PaymentMethod),
		PaymentStatus:   o.PaymentStatus,
		ShippingAddress: o.ShippingAddress,
		ShippingPhone:   o.ShippingPhone,
		TotalAmount:     o.TotalAmount,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Items:           items,
	}
}
