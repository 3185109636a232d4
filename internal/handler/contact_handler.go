package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type contactPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

// SubmitContact 接收联系表单留言
func (a *API) SubmitContact(c *gin.Context) {
	var payload contactPayload
	if !bindJSON(c, &payload, "a valid email and a message are required") {
		return
	}

	message, err := a.contacts.Submit(c.Request.Context(), payload.Name, payload.Email, payload.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": message})
}
