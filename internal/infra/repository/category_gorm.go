package repository

import (
	"context"

	"agrimarket/internal/domain/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type CategoryGormRepository struct {
	db *gorm.DB
}

func NewCategoryGormRepository(db *gorm.DB) *CategoryGormRepository {
	return &CategoryGormRepository{db: db}
}

func (r *CategoryGormRepository) List(ctx context.Context) ([]model.Category, error) {
	var cats []model.Category
	if err := r.db.WithContext(ctx).Order("name asc").Find(&cats).Error; err != nil {
		return []model.Category{}, mapErr(err, "list categories")
	}
	return cats, nil
}

func (r *CategoryGormRepository) FindByID(ctx context.Context, id int64) (model.Category, error) {
	var c model.Category
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return model.Category{}, mapErr(err, "find category")
	}
	return c, nil
}

// 名前で探して、なければ作る。createdは新規作成したときtrue。
func (r *CategoryGormRepository) GetOrCreate(ctx context.Context, name string, description string) (model.Category, bool, error) {
	var c model.Category
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&c).Error
	if err == nil {
		return c, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Category{}, false, mapErr(err, "find category by name")
	}

	c = model.Category{Name: name, Description: description}
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.Category{}, false, mapErr(err, "create category")
	}
	return c, true, nil
}
