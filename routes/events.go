package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"eventhub/middlewares"
	"eventhub/models"
)

type createEventRequest struct {
	Title           string             `json:"title" binding:"required,max=200"`
	Description     *string            `json:"description"`
	Location        string             `json:"location" binding:"required,max=255"`
	EventDate       time.Time          `json:"eventDate" binding:"required"`
	MaxParticipants int                `json:"maxParticipants" binding:"required,gt=0"`
	Status          models.EventStatus `json:"status" binding:"omitempty,oneof=draft published cancelled"`
}

type updateEventRequest struct {
	Title           *string    `json:"title" binding:"omitnil,min=1,max=200"`
	Description     *string    `json:"description"`
	Location        *string    `json:"location" binding:"omitnil,min=1,max=255"`
	EventDate       *time.Time `json:"eventDate"`
	MaxParticipants *int       `json:"maxParticipants" binding:"omitnil,gt=0"`
}

type eventStatusRequest struct {
	Status models.EventStatus `json:"status" binding:"required,oneof=draft published cancelled"`
}

// GET /api/events?status=&date=YYYY-MM-DD
func (d *deps) listEvents(c *gin.Context) {
	var f models.EventFilter
	if s := c.Query("status"); s != "" {
		st := models.EventStatus(s)
		if !st.Valid() {
			fail(c, models.Validation("Status must be draft, published, or cancelled"))
			return
		}
		f.Status = &st
	}
	if s := c.Query("date"); s != "" {
		day, err := time.Parse("2006-01-02", s)
		if err != nil {
			fail(c, models.Validation("Date must be formatted as YYYY-MM-DD"))
			return
		}
		f.Date = &day
	}

	events, err := d.events.List(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// GET /api/events/:id
func (d *deps) getEvent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	event, err := d.events.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// POST /api/events
func (d *deps) createEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	creator := middlewares.CurrentUserID(c)
	event := models.Event{
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
		EventDate:       req.EventDate,
		MaxParticipants: req.MaxParticipants,
		Status:          req.Status,
		CreatedBy:       &creator,
	}
	if err := d.events.Create(c.Request.Context(), &event); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// PUT /api/events/:id
func (d *deps) updateEvent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	event, err := d.events.Update(c.Request.Context(), id, models.EventPatch{
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
		EventDate:       req.EventDate,
		MaxParticipants: req.MaxParticipants,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// PATCH /api/events/:id/status
func (d *deps) setEventStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req eventStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	event, err := d.events.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}
