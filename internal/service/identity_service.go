package service

import (
	"context"
	"errors"

	"github.com/openshare/internal/db"
	"gorm.io/gorm"
)

const (
	// UnknownAuthorName 是帖子作者缺失时的占位显示名
	UnknownAuthorName = "Unknown User"
	// AnonymousAuthorName 是评论作者缺失时的占位显示名
	AnonymousAuthorName = "Anonymous"
)

// AuthorProfile 是用于装饰帖子与评论的轻量作者信息。
// Known 为 false 表示对应用户文档不存在，此时 Username 为占位值。
type AuthorProfile struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
	Known     bool   `json:"-"`
}

// IdentityService resolves author references into display profiles.
// It is read-only; lookups may be batched per call but results are never
// cached across calls, so profile edits show up on the next fetch.
type IdentityService struct {
	db *gorm.DB
}

// NewIdentityService creates an IdentityService instance.
func NewIdentityService(gdb *gorm.DB) *IdentityService {
	return &IdentityService{db: gdb}
}

// Resolve returns the profile for a single author reference. A missing user
// yields the "Unknown User" sentinel profile instead of an error; only a
// failed read surfaces as an error.
func (s *IdentityService) Resolve(ctx context.Context, userID uint) (AuthorProfile, error) {
	var user db.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return unknownAuthor(userID), nil
		}
		return unknownAuthor(userID), retrievalErr("resolve author", err)
	}

	return AuthorProfile{
		ID:        user.ID,
		Username:  user.Username,
		AvatarURL: user.AvatarURL,
		Known:     true,
	}, nil
}

// ResolveAll resolves every distinct author id in one query. Ids without a
// matching user map to the sentinel profile. The returned map acts as the
// per-call cache the feed assembler uses.
func (s *IdentityService) ResolveAll(ctx context.Context, ids []uint) (map[uint]AuthorProfile, error) {
	resolved := make(map[uint]AuthorProfile, len(ids))
	distinct := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, seen := resolved[id]; seen {
			continue
		}
		resolved[id] = unknownAuthor(id)
		distinct = append(distinct, id)
	}
	if len(distinct) == 0 {
		return resolved, nil
	}

	var users []db.User
	if err := s.db.WithContext(ctx).Where("id IN ?", distinct).Find(&users).Error; err != nil {
		return nil, retrievalErr("resolve authors", err)
	}

	for _, user := range users {
		resolved[user.ID] = AuthorProfile{
			ID:        user.ID,
			Username:  user.Username,
			AvatarURL: user.AvatarURL,
			Known:     true,
		}
	}

	return resolved, nil
}

func unknownAuthor(id uint) AuthorProfile {
	return AuthorProfile{ID: id, Username: UnknownAuthorName}
}
