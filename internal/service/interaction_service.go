package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/openshare/internal/db"
)

// CommentView 将评论与解析后的作者及点赞状态组合成展示条目。
type CommentView struct {
	Comment        db.Comment `json:"comment"`
	AuthorName     string     `json:"author_name"`
	AuthorAvatar   string     `json:"author_avatar"`
	LikeCount      int        `json:"like_count"`
	ViewerHasLiked bool       `json:"viewer_has_liked"`
}

// InteractionService owns the like sets and comment collections attached to
// posts. Every mutation re-derives counts and viewer membership from freshly
// read state instead of trusting the caller's prior view, and mutations on
// the same record are serialized through a keyed mutex so two concurrent
// toggles cannot interleave their read and write phases.
type InteractionService struct {
	db       *gorm.DB
	identity *IdentityService

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewInteractionService creates an InteractionService instance.
func NewInteractionService(gdb *gorm.DB, identity *IdentityService) *InteractionService {
	return &InteractionService{
		db:       gdb,
		identity: identity,
		locks:    make(map[string]*sync.Mutex),
	}
}

// lockRecord 返回按记录键序列化的解锁函数。
func (s *InteractionService) lockRecord(key string) func() {
	s.mu.Lock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// TogglePostLike adds the viewer to the post's like set when absent and
// removes them when present, then recomputes the derived view state from the
// store. Membership is a row in post_likes; insert and delete are atomic, so
// no whole-set overwrite can drop a concurrent writer's change.
func (s *InteractionService) TogglePostLike(ctx context.Context, postID, viewerID uint) (ViewState, error) {
	unlock := s.lockRecord(fmt.Sprintf("post:%d", postID))
	defer unlock()

	var post db.Post
	if err := s.db.WithContext(ctx).First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ViewState{}, ErrPostNotFound
		}
		return ViewState{}, retrievalErr("load post", err)
	}

	var existing db.PostLike
	err := s.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, viewerID).
		First(&existing).Error
	switch {
	case err == nil:
		// 硬删除，避免软删除残留占用唯一索引
		if err := s.db.WithContext(ctx).Unscoped().Delete(&existing).Error; err != nil {
			return ViewState{}, writeErr("remove like", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		like := db.PostLike{PostID: postID, UserID: viewerID}
		if err := s.db.WithContext(ctx).Create(&like).Error; err != nil {
			return ViewState{}, writeErr("add like", err)
		}
	default:
		return ViewState{}, retrievalErr("check like membership", err)
	}

	return s.postViewState(ctx, post, viewerID)
}

// postViewState 以写后新读的数据重算派生状态。
func (s *InteractionService) postViewState(ctx context.Context, post db.Post, viewerID uint) (ViewState, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&db.PostLike{}).
		Where("post_id = ?", post.ID).
		Count(&count).Error; err != nil {
		return ViewState{}, retrievalErr("count likes", err)
	}

	var membership int64
	if viewerID != 0 {
		if err := s.db.WithContext(ctx).
			Model(&db.PostLike{}).
			Where("post_id = ? AND user_id = ?", post.ID, viewerID).
			Count(&membership).Error; err != nil {
			return ViewState{}, retrievalErr("check like membership", err)
		}
	}

	author, err := s.identity.Resolve(ctx, post.UserID)
	if err != nil {
		return ViewState{}, err
	}

	return ViewState{
		LikeCount:      int(count),
		ViewerHasLiked: membership > 0,
		AuthorName:     author.Username,
		AuthorAvatar:   author.AvatarURL,
	}, nil
}

// ToggleCommentLike flips the viewer's membership in a comment's like set
// and returns the freshly derived count and membership.
func (s *InteractionService) ToggleCommentLike(ctx context.Context, commentID, viewerID uint) (int, bool, error) {
	unlock := s.lockRecord(fmt.Sprintf("comment:%d", commentID))
	defer unlock()

	var comment db.Comment
	if err := s.db.WithContext(ctx).First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, ErrCommentNotFound
		}
		return 0, false, retrievalErr("load comment", err)
	}

	var existing db.CommentLike
	err := s.db.WithContext(ctx).
		Where("comment_id = ? AND user_id = ?", commentID, viewerID).
		First(&existing).Error
	switch {
	case err == nil:
		if err := s.db.WithContext(ctx).Unscoped().Delete(&existing).Error; err != nil {
			return 0, false, writeErr("remove comment like", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		like := db.CommentLike{CommentID: commentID, UserID: viewerID}
		if err := s.db.WithContext(ctx).Create(&like).Error; err != nil {
			return 0, false, writeErr("add comment like", err)
		}
	default:
		return 0, false, retrievalErr("check comment like membership", err)
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&db.CommentLike{}).
		Where("comment_id = ?", commentID).
		Count(&count).Error; err != nil {
		return 0, false, retrievalErr("count comment likes", err)
	}

	var membership int64
	if err := s.db.WithContext(ctx).
		Model(&db.CommentLike{}).
		Where("comment_id = ? AND user_id = ?", commentID, viewerID).
		Count(&membership).Error; err != nil {
		return 0, false, retrievalErr("check comment like membership", err)
	}

	return int(count), membership > 0, nil
}

// AddComment validates and stores a comment. An empty trimmed body is
// rejected before any store call; a reply's parent must belong to the same
// post. Callers re-fetch the full list afterwards instead of appending
// locally, so denormalized author names stay consistent.
func (s *InteractionService) AddComment(ctx context.Context, postID, authorID uint, body string, parentID *uint) (*db.Comment, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return nil, validationErr("comment body must not be empty")
	}

	var post db.Post
	if err := s.db.WithContext(ctx).First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, retrievalErr("load post", err)
	}

	if parentID != nil {
		var parent db.Comment
		if err := s.db.WithContext(ctx).First(&parent, *parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, validationErr("parent comment does not exist")
			}
			return nil, retrievalErr("load parent comment", err)
		}
		if parent.PostID != postID {
			return nil, validationErr("parent comment belongs to another post")
		}
	}

	comment := db.Comment{
		PostID:          postID,
		UserID:          authorID,
		Body:            trimmed,
		ParentCommentID: parentID,
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, writeErr("create comment", err)
	}

	return &comment, nil
}

// ListComments returns the post's comments newest first with denormalized
// author identity and like state for the current viewer.
func (s *InteractionService) ListComments(ctx context.Context, postID, viewerID uint) ([]CommentView, error) {
	var comments []db.Comment
	if err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at desc, id desc").
		Find(&comments).Error; err != nil {
		return nil, retrievalErr("list comments", err)
	}
	if len(comments) == 0 {
		return []CommentView{}, nil
	}

	commentIDs := make([]uint, 0, len(comments))
	authorIDs := make([]uint, 0, len(comments))
	for _, comment := range comments {
		commentIDs = append(commentIDs, comment.ID)
		authorIDs = append(authorIDs, comment.UserID)
	}

	type likeCountRow struct {
		CommentID uint
		Total     int
	}
	var rows []likeCountRow
	if err := s.db.WithContext(ctx).
		Model(&db.CommentLike{}).
		Select("comment_id, count(*) as total").
		Where("comment_id IN ?", commentIDs).
		Group("comment_id").
		Scan(&rows).Error; err != nil {
		return nil, retrievalErr("count comment likes", err)
	}
	counts := make(map[uint]int, len(rows))
	for _, row := range rows {
		counts[row.CommentID] = row.Total
	}

	liked := make(map[uint]bool)
	if viewerID != 0 {
		var likes []db.CommentLike
		if err := s.db.WithContext(ctx).
			Where("user_id = ? AND comment_id IN ?", viewerID, commentIDs).
			Find(&likes).Error; err != nil {
			return nil, retrievalErr("load viewer comment likes", err)
		}
		for _, like := range likes {
			liked[like.CommentID] = true
		}
	}

	authors, err := s.identity.ResolveAll(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	views := make([]CommentView, 0, len(comments))
	for _, comment := range comments {
		author := authors[comment.UserID]
		name := author.Username
		if !author.Known {
			// 评论沿用原有的匿名占位，而非信息流的 Unknown User
			name = AnonymousAuthorName
		}
		views = append(views, CommentView{
			Comment:        comment,
			AuthorName:     name,
			AuthorAvatar:   author.AvatarURL,
			LikeCount:      counts[comment.ID],
			ViewerHasLiked: liked[comment.ID],
		})
	}

	return views, nil
}

// DeleteComment removes a comment and its like rows. Only the comment's
// author may delete it.
func (s *InteractionService) DeleteComment(ctx context.Context, commentID, requesterID uint) error {
	var comment db.Comment
	if err := s.db.WithContext(ctx).First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return retrievalErr("load comment", err)
	}

	if comment.UserID != requesterID {
		return ErrForbidden
	}

	if err := s.db.WithContext(ctx).Delete(&comment).Error; err != nil {
		return writeErr("delete comment", err)
	}
	if err := s.db.WithContext(ctx).Unscoped().
		Where("comment_id = ?", commentID).
		Delete(&db.CommentLike{}).Error; err != nil {
		return writeErr("delete comment likes", err)
	}

	return nil
}
