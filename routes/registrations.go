package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"eventhub/models"
)

type createRegistrationRequest struct {
	EventID       string                    `json:"eventId" binding:"required,uuid"`
	ParticipantID string                    `json:"participantId" binding:"required,uuid"`
	Status        models.RegistrationStatus `json:"status" binding:"omitempty,oneof=pending confirmed cancelled"`
}

type registrationStatusRequest struct {
	Status models.RegistrationStatus `json:"status" binding:"required,oneof=pending confirmed cancelled"`
}

// POST /api/registrations
//
// 201 with the new row; 404 unknown event or participant; 400 event not
// published or full; 409 participant already registered.
func (d *deps) createRegistration(c *gin.Context) {
	var req createRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	reg, err := d.regs.Create(c.Request.Context(),
		uuid.MustParse(req.EventID), uuid.MustParse(req.ParticipantID), req.Status)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, reg)
}

// GET /api/registrations?eventId=&status=
func (d *deps) listRegistrations(c *gin.Context) {
	var f models.RegistrationFilter
	if s := c.Query("eventId"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			fail(c, models.Validation("Invalid event ID"))
			return
		}
		f.EventID = &id
	}
	if s := c.Query("status"); s != "" {
		st := models.RegistrationStatus(s)
		if !st.Valid() {
			fail(c, models.Validation("Status must be pending, confirmed, or cancelled"))
			return
		}
		f.Status = &st
	}

	list, err := d.regs.List(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// PATCH /api/registrations/:id/status
func (d *deps) setRegistrationStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req registrationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	reg, err := d.regs.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reg)
}
