package repository_test

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"agrimarket/internal/config"
	"agrimarket/internal/domain/model"
	"agrimarket/internal/infra/db"
	infraRepo "agrimarket/internal/infra/repository"
	repo "agrimarket/internal/repository"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// 実DBを使う。TEST_DATABASE_DSN がなければskip。
func openTestDB(t *testing.T) (*gorm.DB, *sql.DB) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN is not set")
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	gdb, err := db.Connect(config.Config{DatabaseURL: dsn}, log)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	raw, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })

	return gdb, raw
}

// 在庫1を同時に買っても成功は1件だけ、監査ログも残る
func TestPostgres_StockDecrementAndAudit(t *testing.T) {
	gdb, raw := openTestDB(t)
	ctx := context.Background()
	tx := infraRepo.NewTxManagerGorm(gdb)

	suffix := time.Now().Format("20060102150405.000000000")
	seller := model.NewUser(fmt.Sprintf("seller-%s@example.com", suffix), "hash", "Seller", model.RoleSeller, time.Now())

	var productID int64
	require.NoError(t, tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Users().Create(ctx, &seller); err != nil {
			return err
		}
		p, err := r.Products().Create(ctx, model.Product{
			SellerID: seller.ID,
			Name:     "IT-Tiller-" + suffix,
			Price:    model.NewMoney(decimal.RequireFromString("199.99")),
			Stock:    1,
			IsActive: true,
		})
		productID = p.ID
		return err
	}))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tx.WithinTx(ctx, func(r repo.TxRepos) error {
				ok, err := r.Inventory().DecreaseStockIfEnough(ctx, productID, 1)
				if err != nil || !ok {
					return err
				}
				mu.Lock()
				wins++
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)

	var stock int64
	require.NoError(t, raw.QueryRowContext(ctx, `select stock from products where id = $1`, productID).Scan(&stock))
	assert.Zero(t, stock)

	require.NoError(t, tx.WithinTx(ctx, func(r repo.TxRepos) error {
		return r.AuditLogs().Record(ctx, model.NewAuditLog(seller.ID, model.AuditActionUpdateStock,
			model.ProductTarget(productID), "stock", 1, 0, time.Now()))
	}))

	var action string
	require.NoError(t, raw.QueryRowContext(ctx,
		`select action from audit_logs where resource_id = $1 order by id desc limit 1`, productID,
	).Scan(&action))
	assert.Equal(t, "UPDATE_STOCK", action)
}
