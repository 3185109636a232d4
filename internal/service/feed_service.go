package service

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"gorm.io/gorm"

	"github.com/openshare/internal/db"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// SortMode 表示公共信息流的排序方式
type SortMode string

const (
	SortRecent  SortMode = "recent"
	SortPopular SortMode = "popular"
	SortOldest  SortMode = "oldest"
)

// ParseSortMode 将请求参数归一化为合法排序方式，未知值回退到 recent。
func ParseSortMode(raw string) SortMode {
	switch SortMode(strings.ToLower(strings.TrimSpace(raw))) {
	case SortPopular:
		return SortPopular
	case SortOldest:
		return SortOldest
	default:
		return SortRecent
	}
}

// ViewState 是每条帖子的派生展示状态，随每次读取重新计算，从不持久化。
type ViewState struct {
	LikeCount      int    `json:"like_count"`
	ViewerHasLiked bool   `json:"viewer_has_liked"`
	AuthorName     string `json:"author_name"`
	AuthorAvatar   string `json:"author_avatar"`
}

// FeedEntry 将帖子、渲染后的正文与派生状态组合成一条信息流条目。
type FeedEntry struct {
	Post     db.Post       `json:"post"`
	BodyHTML template.HTML `json:"body_html"`
	State    ViewState     `json:"state"`
}

// FeedService assembles the public feed: it fetches posts in the selected
// order, joins author identity onto each record, derives like state for the
// current viewer and applies the local substring filter.
type FeedService struct {
	db       *gorm.DB
	identity *IdentityService
}

// NewFeedService creates a FeedService instance.
func NewFeedService(gdb *gorm.DB, identity *IdentityService) *FeedService {
	return &FeedService{db: gdb, identity: identity}
}

// List returns feed entries sorted by mode and filtered by search.
// viewerID may be zero for anonymous viewers. A failed retrieval fails the
// whole call; no partial feed is ever returned.
func (s *FeedService) List(ctx context.Context, mode SortMode, search string, viewerID uint) ([]FeedEntry, error) {
	query := s.db.WithContext(ctx).Model(&db.Post{})
	switch mode {
	case SortOldest:
		query = query.Order("created_at asc, id asc")
	default:
		// popular 在派生点赞数就绪后于内存中重排，先按 recent 取出
		query = query.Order("created_at desc, id desc")
	}

	var posts []db.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, retrievalErr("list feed", err)
	}

	entries, err := s.assemble(ctx, posts, viewerID)
	if err != nil {
		return nil, err
	}

	if mode == SortPopular {
		// 排序键是派生的 |likes|，并列时新帖在前
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].State.LikeCount > entries[j].State.LikeCount
		})
	}

	return filterEntries(entries, search), nil
}

// ListByAuthor returns the author's own posts, newest first, with the same
// derived state as the public feed.
func (s *FeedService) ListByAuthor(ctx context.Context, authorID, viewerID uint) ([]FeedEntry, error) {
	var posts []db.Post
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", authorID).
		Order("created_at desc, id desc").
		Find(&posts).Error; err != nil {
		return nil, retrievalErr("list posts by author", err)
	}

	return s.assemble(ctx, posts, viewerID)
}

// Get returns a single post as a feed entry for the full view.
func (s *FeedService) Get(ctx context.Context, postID, viewerID uint) (*FeedEntry, error) {
	var post db.Post
	if err := s.db.WithContext(ctx).First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, retrievalErr("get post", err)
	}

	entries, err := s.assemble(ctx, []db.Post{post}, viewerID)
	if err != nil {
		return nil, err
	}
	return &entries[0], nil
}

// assemble 为一批帖子计算派生状态：点赞数、当前浏览者是否已赞、作者信息。
// 三类查询各走一次批量读取，作者解析结果只在本次调用内复用。
func (s *FeedService) assemble(ctx context.Context, posts []db.Post, viewerID uint) ([]FeedEntry, error) {
	if len(posts) == 0 {
		return []FeedEntry{}, nil
	}

	postIDs := make([]uint, 0, len(posts))
	authorIDs := make([]uint, 0, len(posts))
	for _, post := range posts {
		postIDs = append(postIDs, post.ID)
		authorIDs = append(authorIDs, post.UserID)
	}

	likeCounts, err := s.likeCounts(ctx, postIDs)
	if err != nil {
		return nil, err
	}

	viewerLiked, err := s.viewerLiked(ctx, postIDs, viewerID)
	if err != nil {
		return nil, err
	}

	authors, err := s.identity.ResolveAll(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	entries := make([]FeedEntry, 0, len(posts))
	for _, post := range posts {
		author := authors[post.UserID]
		entries = append(entries, FeedEntry{
			Post:     post,
			BodyHTML: RenderBody(post.Body),
			State: ViewState{
				LikeCount:      likeCounts[post.ID],
				ViewerHasLiked: viewerLiked[post.ID],
				AuthorName:     author.Username,
				AuthorAvatar:   author.AvatarURL,
			},
		})
	}

	return entries, nil
}

func (s *FeedService) likeCounts(ctx context.Context, postIDs []uint) (map[uint]int, error) {
	type likeCountRow struct {
		PostID uint
		Total  int
	}

	var rows []likeCountRow
	if err := s.db.WithContext(ctx).
		Model(&db.PostLike{}).
		Select("post_id, count(*) as total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error; err != nil {
		return nil, retrievalErr("count likes", err)
	}

	counts := make(map[uint]int, len(rows))
	for _, row := range rows {
		counts[row.PostID] = row.Total
	}
	return counts, nil
}

func (s *FeedService) viewerLiked(ctx context.Context, postIDs []uint, viewerID uint) (map[uint]bool, error) {
	liked := make(map[uint]bool)
	if viewerID == 0 {
		return liked, nil
	}

	var rows []db.PostLike
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND post_id IN ?", viewerID, postIDs).
		Find(&rows).Error; err != nil {
		return nil, retrievalErr("load viewer likes", err)
	}

	for _, row := range rows {
		liked[row.PostID] = true
	}
	return liked, nil
}

// filterEntries 在取回之后本地执行大小写不敏感的子串过滤，
// 匹配标题、正文与解析后的作者名；过滤只影响展示，不改变取数。
func filterEntries(entries []FeedEntry, search string) []FeedEntry {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return entries
	}

	filtered := make([]FeedEntry, 0, len(entries))
	for _, entry := range entries {
		if strings.Contains(strings.ToLower(entry.Post.Title), needle) ||
			strings.Contains(strings.ToLower(entry.Post.Body), needle) ||
			strings.Contains(strings.ToLower(entry.State.AuthorName), needle) {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

// RenderBody 将 Markdown 正文渲染为净化后的 HTML，渲染失败时回退到转义文本。
func RenderBody(body string) template.HTML {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(body), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(body))
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes()))
}
