package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (d *deps) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "EventHub API is running"})
}

// healthDB pings the store with a short deadline.
func (d *deps) healthDB(c *gin.Context) {
	if d.ping == nil {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "No database configured"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := d.ping(ctx); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "ERROR",
			"message": "Database connection failed",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "Database connected successfully"})
}
