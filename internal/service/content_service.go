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

const (
	maxBodyLength = 5000
	// defaultCategory 是分类留空时写入的字面值
	defaultCategory = "Other"
)

// PostDraft represents fields accepted when creating or updating a post.
// Tags carries the raw comma-separated input; it is split and trimmed here.
type PostDraft struct {
	Title    string
	Body     string
	Tags     string
	Category string
}

// ContentService creates, edits and deletes posts. When a draft carries an
// image, the upload to object storage runs first and any failure aborts the
// record write: creation is all-or-nothing, no record without a resolvable
// image URL.
type ContentService struct {
	db       *gorm.DB
	uploader upload.Uploader
}

// NewContentService creates a ContentService instance.
func NewContentService(gdb *gorm.DB, uploader upload.Uploader) *ContentService {
	return &ContentService{db: gdb, uploader: uploader}
}

// Create validates the draft, uploads the optional image and persists the
// post.
func (s *ContentService) Create(ctx context.Context, authorID uint, draft PostDraft, image *multipart.FileHeader) (*db.Post, error) {
	title, body, category, err := normalizeDraft(draft)
	if err != nil {
		return nil, err
	}

	imageURL := ""
	if image != nil {
		url, err := s.uploader.Upload(ctx, image)
		if err != nil {
			return nil, uploadErr("upload post image", err)
		}
		if url == "" {
			return nil, uploadErr("upload post image", upload.ErrEmptyURL)
		}
		imageURL = url
	}

	post := db.Post{
		Title:    title,
		Body:     body,
		Tags:     SplitTags(draft.Tags),
		Category: category,
		ImageURL: imageURL,
		UserID:   authorID,
	}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, writeErr("create post", err)
	}

	return &post, nil
}

// Update applies the draft to an existing post. Only the owner may edit; a
// replacement image is uploaded before any write so a failed upload leaves
// the record untouched. The previous image is not removed from storage.
func (s *ContentService) Update(ctx context.Context, postID, requesterID uint, draft PostDraft, newImage *multipart.FileHeader) (*db.Post, error) {
	var post db.Post
	if err := s.db.WithContext(ctx).First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, retrievalErr("load post", err)
	}

	if post.UserID != requesterID {
		return nil, ErrForbidden
	}

	title, body, category, err := normalizeDraft(draft)
	if err != nil {
		return nil, err
	}

	if newImage != nil {
		url, err := s.uploader.Upload(ctx, newImage)
		if err != nil {
			return nil, uploadErr("upload replacement image", err)
		}
		if url == "" {
			return nil, uploadErr("upload replacement image", upload.ErrEmptyURL)
		}
		post.ImageURL = url
	}

	post.Title = title
	post.Body = body
	post.Tags = SplitTags(draft.Tags)
	post.Category = category

	if err := s.db.WithContext(ctx).Save(&post).Error; err != nil {
		return nil, writeErr("update post", err)
	}

	return &post, nil
}

// Delete removes a post and its like rows. Only the owner may delete.
// Comments are intentionally left in place, matching the original system;
// they reference a post that no longer exists.
func (s *ContentService) Delete(ctx context.Context, postID, requesterID uint) error {
	var post db.Post
	if err := s.db.WithContext(ctx).First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return retrievalErr("load post", err)
	}

	if post.UserID != requesterID {
		return ErrForbidden
	}

	if err := s.db.WithContext(ctx).Delete(&post).Error; err != nil {
		return writeErr("delete post", err)
	}
	if err := s.db.WithContext(ctx).Unscoped().
		Where("post_id = ?", postID).
		Delete(&db.PostLike{}).Error; err != nil {
		return writeErr("delete post likes", err)
	}

	return nil
}

func normalizeDraft(draft PostDraft) (title, body, category string, err error) {
	title = strings.TrimSpace(draft.Title)
	if title == "" {
		return "", "", "", validationErr("title must not be empty")
	}

	body = strings.TrimSpace(draft.Body)
	if body == "" {
		return "", "", "", validationErr("body must not be empty")
	}
	if len(body) > maxBodyLength {
		return "", "", "", validationErr("body exceeds the maximum length")
	}

	category = strings.TrimSpace(draft.Category)
	if category == "" {
		category = defaultCategory
	}

	return title, body, category, nil
}

// SplitTags 按逗号拆分标签并去除空白段，保持输入顺序。
func SplitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		tags = append(tags, trimmed)
	}
	return tags
}
