package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/dashboard
func (d *deps) dashboard(c *gin.Context) {
	stats, err := d.dash.Stats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
