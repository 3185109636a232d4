package service

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openshare/internal/db"
)

func setupServiceTestDB(t *testing.T, name string) (*gorm.DB, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s-%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := gdb.AutoMigrate(
		&db.User{},
		&db.Post{},
		&db.PostLike{},
		&db.Comment{},
		&db.CommentLike{},
		&db.Report{},
		&db.ContactMessage{},
	); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	}
}

func seedUser(t *testing.T, gdb *gorm.DB, username string) db.User {
	t.Helper()

	user := db.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
	return user
}

func seedPost(t *testing.T, gdb *gorm.DB, authorID uint, title string, createdAt time.Time) db.Post {
	t.Helper()

	post := db.Post{
		Title:    title,
		Body:     "body of " + title,
		Category: "Other",
		UserID:   authorID,
	}
	post.CreatedAt = createdAt
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("failed to seed post %s: %v", title, err)
	}
	return post
}
