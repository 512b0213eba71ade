package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventhub/models"
)

type createParticipantRequest struct {
	FullName string  `json:"fullName" binding:"required,max=200"`
	Email    string  `json:"email" binding:"required,email,max=255"`
	Phone    *string `json:"phone" binding:"omitnil,max=50"`
}

type updateParticipantRequest struct {
	FullName *string `json:"fullName" binding:"omitnil,min=1,max=200"`
	Email    *string `json:"email" binding:"omitnil,email,max=255"`
	Phone    *string `json:"phone" binding:"omitnil,max=50"`
}

func (d *deps) createParticipant(c *gin.Context) {
	var req createParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	p := models.Participant{FullName: req.FullName, Email: req.Email, Phone: req.Phone}
	if err := d.parts.Create(c.Request.Context(), &p); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// GET /api/participants?search=
func (d *deps) listParticipants(c *gin.Context) {
	list, err := d.parts.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (d *deps) getParticipant(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := d.parts.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (d *deps) updateParticipant(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	p, err := d.parts.Update(c.Request.Context(), id, models.ParticipantPatch{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
