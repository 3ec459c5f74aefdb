package model

// Project 项目表，与 User 无关联
type Project struct {
	ID          int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        *string `gorm:"column:name" json:"name"`
	URL         *string `gorm:"column:url" json:"url"`
	Description *string `gorm:"column:description" json:"description"`
}

func (Project) TableName() string { return "projects" }
