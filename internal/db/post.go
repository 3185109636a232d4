package db

import "gorm.io/gorm"

// Post 定义了内容模型，归属于其作者
// Tags 以 JSON 序列化保存，保持输入顺序
// 点赞集合与评论数均为派生数据，见 PostLike 与 Comment
type Post struct {
	gorm.Model
	Title    string   `gorm:"size:200;not null" json:"title"`
	Body     string   `gorm:"size:5000;not null" json:"body"`
	Tags     []string `gorm:"serializer:json" json:"tags"`
	Category string   `gorm:"size:80;not null;default:Other" json:"category"`
	ImageURL string   `gorm:"size:255" json:"image_url"`
	UserID   uint     `gorm:"index;not null" json:"user_id"`
	User     User     `json:"-"`
}

// PostLike 表示点赞集合中的一个成员
// (post_id, user_id) 上的唯一索引保证同一用户最多一条记录，
// 插入/删除因此成为集合的原子增删原语
type PostLike struct {
	gorm.Model
	PostID uint `gorm:"not null;uniqueIndex:idx_post_likes_post_user" json:"post_id"`
	UserID uint `gorm:"not null;uniqueIndex:idx_post_likes_post_user" json:"user_id"`
}
