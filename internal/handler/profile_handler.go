package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshare/internal/service"
)

type profilePayload struct {
	Username  string `json:"username" binding:"required,username"`
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
}

// GetProfile 返回当前用户的个人资料
func (a *API) GetProfile(c *gin.Context) {
	user, err := a.profiles.Get(c.Request.Context(), currentViewerID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateProfile 更新当前用户的个人资料
func (a *API) UpdateProfile(c *gin.Context) {
	var payload profilePayload
	if !bindJSON(c, &payload, "username and a valid email are required") {
		return
	}

	user, err := a.profiles.Update(c.Request.Context(), currentViewerID(c), service.ProfileInput{
		Username:  payload.Username,
		Email:     payload.Email,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Bio:       payload.Bio,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateAvatar 上传并替换头像
func (a *API) UpdateAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		respondError(c, http.StatusBadRequest, "avatar file is required")
		return
	}

	user, err := a.profiles.UpdateAvatar(c.Request.Context(), currentViewerID(c), file)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
