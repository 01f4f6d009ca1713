package repository

import (
	repo "agrimarket/internal/repository"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// gormのエラーをrepositoryのエラーにそろえる。それ以外は操作名を付けて包む。
func mapErr(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repo.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repo.ErrDuplicate
	}
	return errors.Wrap(err, op)
}

// UPDATE/DELETEで0件なら ErrNotFound
func affected(res *gorm.DB, op string) error {
	if res.Error != nil {
		return mapErr(res.Error, op)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
