package db

import "gorm.io/gorm"

// ContactMessage 保存站内联系表单提交的留言
type ContactMessage struct {
	gorm.Model
	Name    string `gorm:"size:80" json:"name"`
	Email   string `gorm:"size:120;not null" json:"email"`
	Message string `gorm:"size:2000;not null" json:"message"`
}
