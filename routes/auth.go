package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventhub/middlewares"
	"eventhub/utils"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/login
func (d *deps) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	user, err := d.users.ValidateCredentials(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	token, err := d.tokens.GenerateToken(utils.Principal{
		ID:    user.ID,
		Email: user.Email,
		Role:  string(user.Role),
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"email":    user.Email,
			"role":     user.Role,
			"fullName": user.FullName,
		},
	})
}

// GET /api/auth/me
func (d *deps) me(c *gin.Context) {
	user, err := d.users.GetByID(c.Request.Context(), middlewares.CurrentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":        user.ID,
		"email":     user.Email,
		"role":      user.Role,
		"fullName":  user.FullName,
		"createdAt": user.CreatedAt,
	})
}
