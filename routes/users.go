package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventhub/middlewares"
	"eventhub/models"
)

type createUserRequest struct {
	Email    string      `json:"email" binding:"required,email,max=255"`
	Password string      `json:"password" binding:"required,min=6"`
	Role     models.Role `json:"role" binding:"required,oneof=admin staff"`
	FullName string      `json:"fullName" binding:"required,max=200"`
}

type updateUserRequest struct {
	Email    *string      `json:"email" binding:"omitnil,email,max=255"`
	Password *string      `json:"password" binding:"omitnil,min=6"`
	Role     *models.Role `json:"role" binding:"omitnil,oneof=admin staff"`
	FullName *string      `json:"fullName" binding:"omitnil,min=1,max=200"`
}

func (d *deps) listUsers(c *gin.Context) {
	users, err := d.users.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (d *deps) getUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	u, err := d.users.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (d *deps) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	u := models.User{Email: req.Email, Password: req.Password, Role: req.Role, FullName: req.FullName}
	if err := d.users.Create(c.Request.Context(), &u); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (d *deps) updateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	u, err := d.users.Update(c.Request.Context(), id, models.UserPatch{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		FullName: req.FullName,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// DELETE /api/users/:id. An admin cannot delete their own account.
func (d *deps) deleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if id == middlewares.CurrentUserID(c) {
		fail(c, models.InvalidState("Cannot delete your own account"))
		return
	}

	if err := d.users.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
