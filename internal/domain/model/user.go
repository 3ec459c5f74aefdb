package model

// User 用户表
// 可选字段使用指针，缺失时写入 NULL，由表约束决定是否拒绝
type User struct {
	ID          int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email       *string `gorm:"column:email" json:"email"`
	Age         *int64  `gorm:"column:age" json:"age"`
	Designation *string `gorm:"column:designation" json:"designation"`
	Experience  *string `gorm:"column:experience" json:"experience"`
}

func (User) TableName() string { return "users" }
