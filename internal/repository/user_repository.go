package repository

import (
	"agrimarket/internal/domain/model"
	"context"
)

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成（emailが重複ならErrDuplicate）
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	ListPendingSellers(ctx context.Context) ([]model.User, error)
	Count(ctx context.Context) (int64, error)

	// 同じユーザーの操作を直列にするための行ロック
	LockByID(ctx context.Context, userID int64) error
}
