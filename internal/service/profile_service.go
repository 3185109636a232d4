package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"gorm.io/gorm"

	"github.com/openshare/internal/db"
	"github.com/openshare/internal/upload"
)

// ProfileInput 描述更新个人资料时可设置的字段
type ProfileInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Bio       string
}

// ProfileService maintains the viewer's own profile: display fields and the
// avatar image.
type ProfileService struct {
	db               *gorm.DB
	uploader         upload.Uploader
	defaultAvatarURL string
}

// NewProfileService creates a ProfileService instance.
func NewProfileService(gdb *gorm.DB, uploader upload.Uploader, defaultAvatarURL string) *ProfileService {
	return &ProfileService{db: gdb, uploader: uploader, defaultAvatarURL: defaultAvatarURL}
}

// Get returns the profile for a user id. An empty avatar is substituted with
// the configured default for display; the substitution is never persisted.
func (s *ProfileService) Get(ctx context.Context, userID uint) (*db.User, error) {
	var user db.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, retrievalErr("load profile", err)
	}

	if user.AvatarURL == "" {
		user.AvatarURL = s.defaultAvatarURL
	}
	return &user, nil
}

// Update applies profile fields for the owning user. Username and email stay
// unique across accounts.
func (s *ProfileService) Update(ctx context.Context, userID uint, input ProfileInput) (*db.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" || email == "" {
		return nil, validationErr("username and email are required")
	}

	var user db.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, retrievalErr("load profile", err)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&db.User{}).
		Where("username = ? AND id <> ?", username, userID).
		Count(&count).Error; err != nil {
		return nil, retrievalErr("check username", err)
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	if err := s.db.WithContext(ctx).Model(&db.User{}).
		Where("email = ? AND id <> ?", email, userID).
		Count(&count).Error; err != nil {
		return nil, retrievalErr("check email", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	user.Username = username
	user.Email = email
	user.FirstName = strings.TrimSpace(input.FirstName)
	user.LastName = strings.TrimSpace(input.LastName)
	user.Bio = strings.TrimSpace(input.Bio)

	if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
		return nil, writeErr("update profile", err)
	}

	return &user, nil
}

// UpdateAvatar uploads a new avatar and stores its URL. A failed upload
// leaves the profile untouched; the replaced image is not removed from
// storage.
func (s *ProfileService) UpdateAvatar(ctx context.Context, userID uint, file *multipart.FileHeader) (*db.User, error) {
	var user db.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, retrievalErr("load profile", err)
	}

	url, err := s.uploader.Upload(ctx, file)
	if err != nil {
		return nil, uploadErr("upload avatar", err)
	}
	if url == "" {
		return nil, uploadErr("upload avatar", upload.ErrEmptyURL)
	}

	user.AvatarURL = url
	if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
		return nil, writeErr("update avatar", err)
	}

	return &user, nil
}
