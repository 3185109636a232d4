package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshare/internal/service"
)

// draftFromForm 从 multipart 表单提取帖子草稿字段
func draftFromForm(c *gin.Context) service.PostDraft {
	return service.PostDraft{
		Title:    c.PostForm("title"),
		Body:     c.PostForm("body"),
		Tags:     c.PostForm("tags"),
		Category: c.PostForm("category"),
	}
}

// CreatePost 处理 multipart 表单创建帖子，image 字段可选
func (a *API) CreatePost(c *gin.Context) {
	draft := draftFromForm(c)

	// 未附带图片不是错误
	image, err := c.FormFile("image")
	if err != nil {
		image = nil
	}

	post, err := a.content.Create(c.Request.Context(), currentViewerID(c), draft, image)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// UpdatePost 编辑自己的帖子，新的 image 字段会替换旧图
func (a *API) UpdatePost(c *gin.Context) {
	postID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	draft := draftFromForm(c)
	image, err := c.FormFile("image")
	if err != nil {
		image = nil
	}

	post, err := a.content.Update(c.Request.Context(), postID, currentViewerID(c), draft, image)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post})
}

// DeletePost 删除自己的帖子
func (a *API) DeletePost(c *gin.Context) {
	postID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.content.Delete(c.Request.Context(), postID, currentViewerID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

// TogglePostLike 切换当前用户对帖子的点赞并返回最新派生状态
func (a *API) TogglePostLike(c *gin.Context) {
	postID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	state, err := a.interactions.TogglePostLike(c.Request.Context(), postID, currentViewerID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": state})
}

// ReportPost 对帖子提交举报
func (a *API) ReportPost(c *gin.Context) {
	postID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	report, err := a.reports.Report(c.Request.Context(), postID, currentViewerID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"report": report})
}
