package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openshare/internal/db"
)

func TestTogglePostLikeRoundTrip(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t, "toggle-roundtrip")
	defer cleanup()

	alice := seedUser(t, gdb, "alice")
	bob := seedUser(t, gdb, "bob")
	post := seedPost(t, gdb, alice.ID, "hello", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	svc := NewInteractionService(gdb, NewIdentityService(gdb))

	state, err := svc.TogglePostLike(context.Background(), post.ID, bob.ID)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if state.LikeCount != 1 || !state.ViewerHasLiked {
		t.Fatalf("expected like_count=1 and membership after first toggle, got %+v", state)
	}

	state, err = svc.TogglePostLike(context.Background(), post.ID, bob.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if state.LikeCount != 0 || state.ViewerHasLiked {
		t.Fatalf("expected the initial membership restored, got %+v", state)
	}

	var rows int64
	if err := gdb.Model(&db.PostLike{}).Where("post_id = ?", post.ID).Count(&rows).Error; err != nil {
		t.Fatalf("count likes: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected no like rows after round trip, got %d", rows)
	}
}

func TestTogglePostLikeTwoViewers(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t, "toggle-two")
	defer cleanup()

	alice := seedUser(t, gdb, "alice")
	bob := seedUser(t, gdb, "bob")
	carol := seedUser(t, gdb, "carol")
	post := seedPost(t, gdb, alice.ID, "hello", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	svc := NewInteractionService(gdb, NewIdentityService(gdb))

	if _, err := svc.TogglePostLike(context.Background(), post.ID, bob.ID); err != nil {
		t.Fatalf("bob toggle: %v", err)
	}
	state, err := svc.TogglePostLike(context.Background(), post.ID, carol.ID)
	if err != nil {
		t.Fatalf("carol toggle: %v", err)
	}
	if state.LikeCount != 2 {
		t.Fatalf("expected both likes counted, got %+v", state)
	}

	// carol 取消点赞不影响 bob 的成员资格
	state, err = svc.TogglePostLike(context.Background(), post.ID, carol.ID)
	if err != nil {
		t.Fatalf("carol untoggle: %v", err)
	}
	if state.LikeCount != 1 {
		t.Fatalf("expected bob's like preserved, got %+v", state)
	}
}

func TestTogglePostLikeMissingPost(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t, "toggle-missing")
	defer cleanup()

	bob := seedUser(t, gdb, "bob")
	svc := NewInteractionService(gdb, NewIdentityService(gdb))

	if _, err := svc.TogglePostLike(context.Background(), 999, bob.ID); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestAddCommentEmptyBodyFails(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t, "comment-empty")
	defer cleanup()

	alice := seedUser(t, gdb, "alice")
	post := seedPost(t, gdb, alice.ID, "hello", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	svc := NewInteractionService(gdb, NewIdentityService(gdb))

	if _, err := svc.AddComment(context.Background(), post.ID, alice.ID, "   ", nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for blank body, got %v", err)
	}

	var rows int64
	if err := gdb.Model(&db.Comment{}).Count(&rows).Error; err != nil {
		t.Fatalf("count comments: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected no comment rows, got %d", rows)
	}
}

func TestAddCommentReplyParentMustMatchPost(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t, "comment-parent")
	defer cleanup()

	alice := seedUser(t, gdb, "alice")
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	postA := seedPost(t, gdb, alice.ID, "first", base)
	postB := seedPost(t, gdb, alice.ID, "second", base.Add(time.Hour))

	svc := NewInteractionService(gdb, NewIdentityService(gdb))

	parent, err := svc.AddComment(context.Background(), postA.ID, alice.ID, "top level", nil)
	if err != nil {
		t.Fatalf("add parent comment: %v", err)
	}

	if _, err := svc.AddComment(context.Background(), postB.ID, alice.ID, "reply", &parent.ID); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for cross-post reply, got %v", err)
	}

	reply, err := svc.AddComment(context.Background(), postA.ID, alice.ID, "reply", &parent.ID)
	if err != nil {
		t.Fatalf("add reply: %v", err)
	}
	if reply.ParentCommentID == nil || *reply.ParentCommentID != parent.ID {
		t.Fatalf("expected reply threaded under %d, got %+v", parent.ID, reply)
	}
}

func TestListCommentsNewestFirstWithAuthors(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t, "comment-list")
	defer cleanup()

	alice := seedUser(t, gdb, "alice")
	bob := seedUser(t, gdb, "bob")
	post := seedPost(t, gdb, alice.ID, "hello", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	svc := NewInteractionService(gdb, NewIdentityService(gdb))

	first, err := svc.AddComment(context.Background(), post.ID, alice.ID, "first", nil)
	if err != nil {
		t.Fatalf("add first comment: %v", err)
	}
	if err := gdb.Model(&db.Comment{}).Where("id = ?", first.ID).
		Update("created_at", time.Now().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("backdate comment: %v", err)
	}
	if _, err := svc.AddComment(context.Background(), post.ID, bob.ID, "second", nil); err != nil {
		t.Fatalf("add second comment: %v", err)
	}

	views, err := svc.ListComments(context.Background(), post.ID, 0)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}

	if len(views) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(views))
	}
	if views[0].Comment.Body != "second" || views[0].AuthorName != "bob" {
		t.Fatalf("expected newest comment by bob first, got %+v", views[0])
	}
	if views[1].AuthorName != "alice" {
		t.Fatalf("expected alice on the older comment, got %+v", views[1])
	}
}

func TestListCommentsAnonymousFallback(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t, "comment-anon")
	defer cleanup()

	alice := seedUser(t, gdb, "alice")
	post := seedPost(t, gdb, alice.ID, "hello", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	svc := NewInteractionService(gdb, NewIdentityService(gdb))

	comment := db.Comment{PostID: post.ID, UserID: 4242, Body: "ghost"}
	if err := gdb.Create(&comment).Error; err != nil {
		t.Fatalf("seed comment: %v", err)
	}

	views, err := svc.ListComments(context.Background(), post.ID, 0)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if views[0].AuthorName != AnonymousAuthorName {
		t.Fatalf("expected %q fallback, got %q", AnonymousAuthorName, views[0].AuthorName)
	}
}

func TestDeleteCommentForbiddenForNonAuthor(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t, "comment-forbidden")
	defer cleanup()

	alice := seedUser(t, gdb, "alice")
	bob := seedUser(t, gdb, "bob")
	post := seedPost(t, gdb, alice.ID, "hello", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	svc := NewInteractionService(gdb, NewIdentityService(gdb))

	comment, err := svc.AddComment(context.Background(), post.ID, alice.ID, "mine", nil)
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}

	if err := svc.DeleteComment(context.Background(), comment.ID, bob.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	var rows int64
	if err := gdb.Model(&db.Comment{}).Where("id = ?", comment.ID).Count(&rows).Error; err != nil {
		t.Fatalf("count comments: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected the comment untouched, got %d rows", rows)
	}

	if err := svc.DeleteComment(context.Background(), comment.ID, alice.ID); err != nil {
		t.Fatalf("author delete: %v", err)
	}
}

func TestToggleCommentLikeRoundTrip(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t, "comment-like")
	defer cleanup()

	alice := seedUser(t, gdb, "alice")
	bob := seedUser(t, gdb, "bob")
	post := seedPost(t, gdb, alice.ID, "hello", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	svc := NewInteractionService(gdb, NewIdentityService(gdb))

	comment, err := svc.AddComment(context.Background(), post.ID, alice.ID, "nice", nil)
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}

	count, liked, err := svc.ToggleCommentLike(context.Background(), comment.ID, bob.ID)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if count != 1 || !liked {
		t.Fatalf("expected count=1 liked=true, got %d %v", count, liked)
	}

	count, liked, err = svc.ToggleCommentLike(context.Background(), comment.ID, bob.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if count != 0 || liked {
		t.Fatalf("expected count=0 liked=false, got %d %v", count, liked)
	}
}
