package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// HomeHandler renders the landing page
func HomeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		render(c, http.StatusOK, "home.html", nil)
	}
}
