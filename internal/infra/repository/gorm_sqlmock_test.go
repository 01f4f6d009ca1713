package repository

import (
	"context"
	"testing"
	"time"

	"agrimarket/internal/domain/model"
	repo "agrimarket/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var fixedTime = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

// sqlmockの上でpostgres方言のgormを開く
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 gormlogger.Discard,
	})
	require.NoError(t, err)
	return gdb, mock
}

func TestDecreaseStockIfEnough(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "在庫あり", affected: 1, want: true},
		{name: "在庫不足", affected: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gdb, mock := newMockDB(t)
			mock.ExpectExec(`UPDATE "products" SET "stock"=stock - \$1.*WHERE \(id = \$\d+ AND stock >= \$\d+\)`).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			ok, err := NewInventoryGormRepository(gdb).DecreaseStockIfEnough(context.Background(), 7, 2)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// 一意制約違反はErrDuplicateにそろう
func TestUserCreate_DuplicateEmail(t *testing.T) {
	gdb, mock := newMockDB(t)
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	u := model.NewUser("a@example.com", "hash", "A", model.RoleFarmer, fixedTime)
	err := NewUserGormRepository(gdb).Create(context.Background(), &u)
	assert.ErrorIs(t, err, repo.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderFindByID_NotFound(t *testing.T) {
	gdb, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewOrderGormRepository(gdb).FindByID(context.Background(), 42)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderUpdateStatus(t *testing.T) {
	gdb, mock := newMockDB(t)
	mock.ExpectExec(`UPDATE "orders" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "orders" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	r := NewOrderGormRepository(gdb)
	require.NoError(t, r.UpdateStatus(context.Background(), 1, model.OrderStatusPacked))
	assert.ErrorIs(t, r.UpdateStatus(context.Background(), 2, model.OrderStatusPacked), repo.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// その他のDBエラーは操作名付きで包む
func TestMapErr_WrapsUnknown(t *testing.T) {
	cause := errors.New("connection reset")
	err := mapErr(cause, "count orders")
	assert.EqualError(t, err, "count orders: connection reset")
	assert.Equal(t, cause, errors.Cause(err))
	assert.Nil(t, mapErr(nil, "noop"))
}

func TestAuditLogList_Query(t *testing.T) {
	gdb, mock := newMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "actor_user_id", "action", "resource_type", "resource_id", "before_json", "after_json", "created_at"}).
		AddRow(3, 1, "UPDATE_ORDER_STATUS", "order", 5, `{"status":"shipped"}`, `{"status":"packed"}`, fixedTime)
	mock.ExpectQuery(`SELECT \* FROM "audit_logs" WHERE .*action IN \(\$1,\$2\).*resource_type = \$3 AND resource_id = \$4.*ORDER BY id DESC LIMIT`).
		WillReturnRows(rows)

	target := model.OrderTarget(5)
	logs, err := NewAuditLogGormRepository(gdb).List(context.Background(), repo.AuditLogQuery{
		Actions: []model.AuditAction{model.AuditActionUpdateOrderStatus, model.AuditActionUpdateStock},
		Target:  &target,
	})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, target, logs[0].Target())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartLineDeleteByProductID(t *testing.T) {
	gdb, mock := newMockDB(t)
	mock.ExpectExec(`DELETE FROM "cart_lines" WHERE product_id = \$1`).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, NewCartLineGormRepository(gdb).DeleteByProductID(context.Background(), 9))
	assert.NoError(t, mock.ExpectationsWereMet())
}
