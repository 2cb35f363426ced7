package middleware

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// RequireLogin redirects anonymous requests to the login page, remembering the
// originally requested URL so login can return there.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := GetSession(c) // Session loaded by LoadSession
		// Check for an authenticated principal
		if sess == nil || !sess.LoggedIn() {
			if sess != nil {
				sess.ReturnTo = c.Request.URL.RequestURI() // Come back here after login
				sess.AddFlash("error", "You must be signed in!")
			}
			// Redirect to the login page
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next() // Proceed to the next handler
	}
}
