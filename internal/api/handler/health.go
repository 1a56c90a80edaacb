package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const livenessMessage = "Parking lot service is running"

// GET /
func Liveness(c *gin.Context) {
	c.String(http.StatusOK, livenessMessage)
}
