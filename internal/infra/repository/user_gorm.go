package repository

import (
	"context"

	"agrimarket/internal/domain/model"
	domainrepo "agrimarket/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userGormRepository struct {
	db *gorm.DB
}

// DI
// main.goでこれをnewしてusecaseに注入します。
func NewUserGormRepository(db *gorm.DB) domainrepo.UserRepository {
	return &userGormRepository{db: db}
}

// Create はユーザーを新規作成（email重複はErrDuplicate）
func (r *userGormRepository) Create(ctx context.Context, user *model.User) error {
	return mapErr(r.db.WithContext(ctx).Create(user).Error, "create user")
}

// emailでユーザーを1件取得
func (r *userGormRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		First(&u).Error
	if err != nil {
		return nil, mapErr(err, "find user by email")
	}
	return &u, nil
}

// IDでユーザーを1件取得
func (r *userGormRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&u).Error
	if err != nil {
		return nil, mapErr(err, "find user")
	}
	return &u, nil
}

// ユーザーを更新。
func (r *userGormRepository) Update(ctx context.Context, user *model.User) error {
	return mapErr(r.db.WithContext(ctx).Save(user).Error, "update user")
}

// 承認待ちseller（古い順）
func (r *userGormRepository) ListPendingSellers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND is_approved = ?", model.RoleSeller, false).
		Order("created_at asc").Order("id asc").
		Find(&users).Error
	if err != nil {
		return []model.User{}, mapErr(err, "list pending sellers")
	}
	return users, nil
}

func (r *userGormRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&n).Error; err != nil {
		return 0, mapErr(err, "count users")
	}
	return n, nil
}

// SELECT ... FOR UPDATE でユーザー行をロックする（Tx内で使う）
func (r *userGormRepository) LockByID(ctx context.Context, userID int64) error {
	var u model.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", userID).
		First(&u).Error
	return mapErr(err, "lock user")
}
