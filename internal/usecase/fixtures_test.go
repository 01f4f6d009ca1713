package usecase_test

import (
	"context"
	"io"
	"testing"
	"time"

	"agrimarket/internal/domain/model"
	"agrimarket/internal/infra/memory"
	repo "agrimarket/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// =====================
// fixtures（in-memory store）
// =====================

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func seedUser(t *testing.T, store *memory.Store, email string, role model.Role) model.User {
	t.Helper()

	u := model.NewUser(email, "hash", "name "+email, role, time.Now())
	u.Address = "1 Farm Road"
	u.Phone = "9000000000"
	err := store.WithinTx(context.Background(), func(r repo.TxRepos) error {
		return r.Users().Create(context.Background(), &u)
	})
	require.NoError(t, err)
	return u
}

func seedProduct(t *testing.T, store *memory.Store, sellerID int64, name string, price string, stock int64) model.Product {
	t.Helper()

	var p model.Product
	err := store.WithinTx(context.Background(), func(r repo.TxRepos) error {
		var err error
		p, err = r.Products().Create(context.Background(), model.Product{
			SellerID: sellerID,
			Name:     name,
			Price:    model.NewMoney(decimal.RequireFromString(price)),
			Stock:    stock,
			IsActive: true,
		})
		return err
	})
	require.NoError(t, err)
	return p
}

func stockOf(t *testing.T, store *memory.Store, productID int64) int64 {
	t.Helper()

	var stock int64
	store.Snapshot(func(r repo.TxRepos) {
		p, err := r.Products().FindByID(context.Background(), productID)
		require.NoError(t, err)
		stock = p.Stock
	})
	return stock
}

func orderStatusOf(t *testing.T, store *memory.Store, orderID int64) model.OrderStatus {
	t.Helper()

	var status model.OrderStatus
	store.Snapshot(func(r repo.TxRepos) {
		o, err := r.Orders().FindByID(context.Background(), orderID)
		require.NoError(t, err)
		status = o.Status
	})
	return status
}

func setOrderStatus(t *testing.T, store *memory.Store, orderID int64, status model.OrderStatus) {
	t.Helper()

	err := store.WithinTx(context.Background(), func(r repo.TxRepos) error {
		return r.Orders().UpdateStatus(context.Background(), orderID, status)
	})
	require.NoError(t, err)
}

func cartLinesOf(t *testing.T, store *memory.Store, userID int64) []model.CartLine {
	t.Helper()

	var lines []model.CartLine
	store.Snapshot(func(r repo.TxRepos) {
		var err error
		lines, err = r.CartLines().ListByUserID(context.Background(), userID)
		require.NoError(t, err)
	})
	return lines
}

func orderCount(t *testing.T, store *memory.Store) int64 {
	t.Helper()

	var n int64
	store.Snapshot(func(r repo.TxRepos) {
		var err error
		n, err = r.Orders().Count(context.Background())
		require.NoError(t, err)
	})
	return n
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// 連番の注文番号（テストで再現できるように）
type seqNumbers struct {
	n       int
	numbers []string
}

func (s *seqNumbers) NewOrderNumber() string {
	v := s.numbers[s.n%len(s.numbers)]
	s.n++
	return v
}
