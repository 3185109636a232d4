package db

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User 定义了用户模型，一个身份对应一条资料
type User struct {
	gorm.Model
	Username  string `gorm:"size:80;uniqueIndex;not null" json:"username"`
	Email     string `gorm:"size:120;uniqueIndex;not null" json:"email"`
	Password  string `gorm:"not null" json:"-"`
	FirstName string `gorm:"size:80" json:"first_name"`
	LastName  string `gorm:"size:80" json:"last_name"`
	Bio       string `gorm:"size:500" json:"bio"`
	AvatarURL string `gorm:"size:255" json:"avatar_url"`
}

// EnsureUser 存在性检查：若提供的用户名与密码均非空且不存在对应账号，则创建一个 bcrypt 哈希的用户。
// 用于启动时注入超级账号，避免空库无法登录。
func EnsureUser(username, email, password string) error {
	trimmedUser := strings.TrimSpace(username)
	trimmedEmail := strings.TrimSpace(email)
	trimmedPassword := strings.TrimSpace(password)
	if trimmedUser == "" || trimmedPassword == "" {
		return nil
	}
	if trimmedEmail == "" {
		trimmedEmail = trimmedUser + "@localhost"
	}

	if DB == nil {
		return errors.New("database not initialized")
	}

	var existing User
	if err := DB.Where("username = ?", trimmedUser).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(trimmedPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		return DB.Create(&User{Username: trimmedUser, Email: trimmedEmail, Password: string(hashed)}).Error
	}

	return nil
}
