package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// healthHandler reports that the server is running. It is deliberately
// unauthenticated so a load balancer can poll it.
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
