package db

import "gorm.io/gorm"

// Comment 定义了评论模型
// ParentCommentID 非空时表示对另一条评论的回复
type Comment struct {
	gorm.Model
	PostID          uint   `gorm:"index;not null" json:"post_id"`
	UserID          uint   `gorm:"index;not null" json:"user_id"`
	Body            string `gorm:"size:2000;not null" json:"body"`
	ParentCommentID *uint  `gorm:"index" json:"parent_comment_id"`
}

// CommentLike 与 PostLike 同构，针对评论
type CommentLike struct {
	gorm.Model
	CommentID uint `gorm:"not null;uniqueIndex:idx_comment_likes_comment_user" json:"comment_id"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_comment_likes_comment_user" json:"user_id"`
}
