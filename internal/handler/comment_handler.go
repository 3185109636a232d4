package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type commentPayload struct {
	Body     string `json:"body" binding:"required"`
	ParentID *uint  `json:"parent_comment_id"`
}

// ListComments 返回帖子的评论列表（最新在前）
func (a *API) ListComments(c *gin.Context) {
	postID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	comments, err := a.interactions.ListComments(c.Request.Context(), postID, currentViewerID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// CreateComment 新增评论后重新拉取完整评论列表返回
func (a *API) CreateComment(c *gin.Context) {
	postID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload commentPayload
	if !bindJSON(c, &payload, "comment body is required") {
		return
	}

	viewerID := currentViewerID(c)
	comment, err := a.interactions.AddComment(c.Request.Context(), postID, viewerID, payload.Body, payload.ParentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// 全量重取代替本地追加，保证作者名等派生数据一致
	comments, err := a.interactions.ListComments(c.Request.Context(), postID, viewerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"comment": comment, "comments": comments})
}

// DeleteComment 删除自己的评论
func (a *API) DeleteComment(c *gin.Context) {
	commentID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.interactions.DeleteComment(c.Request.Context(), commentID, currentViewerID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}

// ToggleCommentLike 切换当前用户对评论的点赞
func (a *API) ToggleCommentLike(c *gin.Context) {
	commentID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	count, liked, err := a.interactions.ToggleCommentLike(c.Request.Context(), commentID, currentViewerID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"like_count": count, "viewer_has_liked": liked})
}
