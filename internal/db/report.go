package db

import "gorm.io/gorm"

// Report 记录对帖子的举报，创建时状态固定为 pending
type Report struct {
	gorm.Model
	PostID     uint   `gorm:"index;not null" json:"post_id"`
	ReporterID uint   `gorm:"index;not null" json:"reporter_id"`
	Status     string `gorm:"size:20;not null;default:pending" json:"status"`
}
