package dao

import (
	"context"

	"go-portfolio/internal/domain/model"

	"gorm.io/gorm"
)

type UserDAO struct{ DB *gorm.DB }

func NewUserDAO(db *gorm.DB) *UserDAO { return &UserDAO{DB: db} }

// Create 插入后 m.ID 为新分配的 id
func (d *UserDAO) Create(ctx context.Context, m *model.User) error {
	return d.DB.WithContext(ctx).Create(m).Error
}

// List 全量按 id 倒序，无分页
func (d *UserDAO) List(ctx context.Context) ([]model.User, error) {
	list := make([]model.User, 0)
	if err := d.DB.WithContext(ctx).Order("id DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Delete 不存在的 id 不报错
func (d *UserDAO) Delete(ctx context.Context, id int64) error {
	return d.DB.WithContext(ctx).Delete(&model.User{}, id).Error
}
