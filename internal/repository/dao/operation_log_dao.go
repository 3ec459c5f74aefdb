package dao

import (
	"context"

	"go-portfolio/internal/domain/model"

	"gorm.io/gorm"
)

type OperationLogDAO struct{ DB *gorm.DB }

func NewOperationLogDAO(db *gorm.DB) *OperationLogDAO { return &OperationLogDAO{DB: db} }

func (d *OperationLogDAO) Create(ctx context.Context, m *model.OperationLog) error {
	return d.DB.WithContext(ctx).Create(m).Error
}

// Recent 最新的 limit 条，按 id 倒序
func (d *OperationLogDAO) Recent(ctx context.Context, limit int) ([]model.OperationLog, error) {
	list := make([]model.OperationLog, 0, limit)
	if err := d.DB.WithContext(ctx).Order("id DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
