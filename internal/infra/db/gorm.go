package db

import (
	"time"

	"agrimarket/internal/config"
	"agrimarket/internal/domain/model"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
// TranslateErrorで一意制約違反を gorm.ErrDuplicatedKey にそろえる。
func Connect(cfg config.Config, log logrus.FieldLogger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.GoEnv == "dev" && cfg.LogLevel == "debug" {
		level = gormlogger.Info
	}

	gdb, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql.DB")
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return gdb, nil
}

// Models はAutoMigrate対象。
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Category{},
		&model.Product{},
		&model.WishlistItem{},
		&model.CartLine{},
		&model.Order{},
		&model.OrderLine{},
		&model.Review{},
		&model.AuditLog{},
	}
}

func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(Models()...); err != nil {
		return errors.Wrap(err, "auto migrate")
	}
	return nil
}
