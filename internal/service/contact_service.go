package service

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/openshare/internal/db"
)

// ContactService 保存联系表单留言
type ContactService struct {
	db *gorm.DB
}

// NewContactService 构造 ContactService
func NewContactService(gdb *gorm.DB) *ContactService {
	return &ContactService{db: gdb}
}

// Submit stores a contact message after validating the required fields.
func (s *ContactService) Submit(ctx context.Context, name, email, message string) (*db.ContactMessage, error) {
	email = strings.TrimSpace(email)
	message = strings.TrimSpace(message)
	if email == "" || message == "" {
		return nil, validationErr("email and message are required")
	}

	record := db.ContactMessage{
		Name:    strings.TrimSpace(name),
		Email:   email,
		Message: message,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, writeErr("create contact message", err)
	}

	return &record, nil
}
