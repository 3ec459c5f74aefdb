package dao

import (
	"context"

	"go-portfolio/internal/domain/model"

	"gorm.io/gorm"
)

type ProjectDAO struct{ DB *gorm.DB }

func NewProjectDAO(db *gorm.DB) *ProjectDAO { return &ProjectDAO{DB: db} }

func (d *ProjectDAO) Create(ctx context.Context, m *model.Project) error {
	return d.DB.WithContext(ctx).Create(m).Error
}

func (d *ProjectDAO) List(ctx context.Context) ([]model.Project, error) {
	list := make([]model.Project, 0)
	if err := d.DB.WithContext(ctx).Order("id DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (d *ProjectDAO) Delete(ctx context.Context, id int64) error {
	return d.DB.WithContext(ctx).Delete(&model.Project{}, id).Error
}
