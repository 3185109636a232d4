package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshare/internal/service"
)

// GetFeed 返回公共信息流，支持 sort 与 search 查询参数
func (a *API) GetFeed(c *gin.Context) {
	mode := service.ParseSortMode(c.Query("sort"))
	search := c.Query("search")
	viewerID := currentViewerID(c)

	entries, err := a.feed.List(c.Request.Context(), mode, search, viewerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries, "sort": mode})
}

// GetPost 返回单个帖子的完整视图
func (a *API) GetPost(c *gin.Context) {
	postID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := a.feed.Get(c.Request.Context(), postID, currentViewerID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// GetMyPosts 返回当前用户自己的帖子
func (a *API) GetMyPosts(c *gin.Context) {
	viewerID := currentViewerID(c)

	entries, err := a.feed.ListByAuthor(c.Request.Context(), viewerID, viewerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
